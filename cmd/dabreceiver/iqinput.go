package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jeongseonghan/dabradio/internal/iqsource"
	"github.com/jeongseonghan/dabradio/internal/ofdm"
)

// openIQSource opens path (or stdin, for "-") and wraps it in the
// iqsource.Source matching mode. The returned close func closes the
// underlying file, if any.
func openIQSource(path, mode string) (iqsource.Source, func() error, error) {
	var f *os.File
	if path == "-" {
		f = os.Stdin
	} else {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", path, err)
		}
	}
	closeFn := func() error {
		if f == os.Stdin {
			return nil
		}
		return f.Close()
	}

	r := bufio.NewReaderSize(f, 1<<20)

	if strings.EqualFold(mode, "wav") {
		src, _, err := iqsource.OpenWAV(r)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		return src, closeFn, nil
	}

	format, ok := iqsource.ParseRawFormat(strings.ToLower(mode))
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("unrecognised input mode %q", mode)
	}
	return iqsource.NewRaw(r, format), closeFn, nil
}

// parseTransmissionMode maps a CLI mode string ("I".."IV") to ofdm.Mode.
func parseTransmissionMode(s string) (ofdm.Mode, error) {
	switch strings.ToUpper(s) {
	case "I", "1":
		return ofdm.ModeI, nil
	case "II", "2":
		return ofdm.ModeII, nil
	case "III", "3":
		return ofdm.ModeIII, nil
	case "IV", "4":
		return ofdm.ModeIV, nil
	default:
		return 0, fmt.Errorf("unrecognised transmission mode %q (want I, II, III, or IV)", s)
	}
}
