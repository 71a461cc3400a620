package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/jeongseonghan/dabradio/internal/iqsource"
	"github.com/jeongseonghan/dabradio/internal/ofdm"
	"github.com/jeongseonghan/dabradio/internal/pad"
	"github.com/jeongseonghan/dabradio/internal/radio"
	"github.com/jeongseonghan/dabradio/internal/scraper"
	"github.com/jeongseonghan/dabradio/internal/server"
	"github.com/spf13/cobra"
)

const feedChunkSamples = 8192

func newReceiveCommand() *cobra.Command {
	var (
		inputPath  string
		inputMode  string
		mode       string
		scrapeRoot string
		httpAddr   string
	)

	cmd := &cobra.Command{
		Use:   "receive",
		Short: "Tune an IQ source and run the demod/FIC/MSC/PAD pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReceive(receiveOptions{
				inputPath:  inputPath,
				inputMode:  inputMode,
				mode:       mode,
				scrapeRoot: scrapeRoot,
				httpAddr:   httpAddr,
			})
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "IQ stream path, or - for stdin")
	cmd.Flags().StringVarP(&inputMode, "input-mode", "f", "wav", "input format: wav, raw_u8, raw_s8, raw_s16l, raw_s16b, raw_u16l, raw_u16b, raw_s32l, raw_s32b, raw_u32l, raw_u32b, raw_f32l, raw_f32b, raw_f64l, raw_f64b")
	cmd.Flags().StringVarP(&mode, "mode", "m", "I", "DAB transmission mode: I, II, III, IV")
	cmd.Flags().StringVarP(&scrapeRoot, "scrape-root", "o", "./scraped", "directory scraped audio/MOT/slideshow artifacts are written under")
	cmd.Flags().StringVar(&httpAddr, "http-addr", "", "if set, serve the observer bridge (/api/status, /api/devices, /ws/events) on this address")

	return cmd
}

type receiveOptions struct {
	inputPath  string
	inputMode  string
	mode       string
	scrapeRoot string
	httpAddr   string
}

func runReceive(opts receiveOptions) error {
	txMode, err := parseTransmissionMode(opts.mode)
	if err != nil {
		return err
	}

	src, closeSrc, err := openIQSource(opts.inputPath, opts.inputMode)
	if err != nil {
		return fmt.Errorf("dabreceiver: open input: %w", err)
	}
	defer closeSrc()

	rad := radio.New(radio.Config{OFDM: ofdm.Config{Params: ofdm.ParamsFor(txMode)}})
	defer rad.Stop()

	writer := scraper.NewWriter(opts.scrapeRoot)
	writer.SetProgressCallback(func(kind string, n int64, status string) {
		log.Printf("scraper: %s", status)
	})

	wireScraping(rad, writer)

	if opts.httpAddr != "" {
		handlers := server.NewHandlers(rad)
		srv := server.NewServer(opts.httpAddr, handlers, "")
		go func() {
			if err := srv.Start(); err != nil {
				log.Printf("observer bridge error: %v", err)
			}
		}()
	}

	log.Printf("dabreceiver: decoding %s as mode %s", opts.inputPath, opts.mode)
	return feedLoop(src, rad)
}

// wireScraping persists MOT/slideshow objects to disk and the raw decoded
// AAC access units (PCM decode is the out-of-scope AAC codec collaborator,
// per spec.md §1) to one file per subchannel. Radio's OnMOTEntity/
// OnLabelChange streams aren't themselves tagged with the subchannel they
// came from (see DESIGN.md), so MOT objects are attributed to the most
// recently bound channel — correct for the common single-tuned-service
// case, approximate when several services are bound at once.
func wireScraping(rad *radio.Radio, writer *scraper.Writer) {
	var mu sync.Mutex
	var current radio.Channel
	aacFiles := make(map[uint8]*os.File)

	rad.OnDABPlusChannel.Subscribe(func(c radio.Channel) {
		mu.Lock()
		current = c
		mu.Unlock()
		log.Printf("bound DAB+ channel: subchannel=%d service=0x%x component=%d", c.SubchannelID, c.ServiceRef, c.ComponentID)
	})

	rad.OnLabelChange.Subscribe(func(e pad.LabelEvent) {
		log.Printf("dynamic label: %q", e.Text)
	})

	rad.OnMOTEntity.Subscribe(func(m pad.MOTEntity) {
		mu.Lock()
		c := current
		mu.Unlock()
		path, err := writer.WriteMOTEntity(c.ServiceRef, c.ComponentID, m.TransportID, m.ContentName, m.ContentType, m.ContentSubType, m.Body)
		if err != nil {
			log.Printf("scraper: write MOT entity: %v", err)
			return
		}
		log.Printf("scraper: wrote %s", path)
	})

	rad.OnAudioData.Subscribe(func(a radio.AudioData) {
		mu.Lock()
		c := current
		f, ok := aacFiles[a.SubchannelID]
		if !ok {
			dir := filepath.Join(writer.Root(), fmt.Sprintf("service_%d", c.ServiceRef), fmt.Sprintf("component_%d", c.ComponentID), "audio")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				mu.Unlock()
				log.Printf("scraper: create audio directory: %v", err)
				return
			}
			path := filepath.Join(dir, fmt.Sprintf("subchannel_%d.aac", a.SubchannelID))
			var err error
			f, err = os.Create(path)
			if err != nil {
				mu.Unlock()
				log.Printf("scraper: create audio access-unit file: %v", err)
				return
			}
			aacFiles[a.SubchannelID] = f
		}
		mu.Unlock()

		if _, err := f.Write(a.Data); err != nil {
			log.Printf("scraper: write audio access unit: %v", err)
		}
	})
}

// feedLoop reads IQ samples from src in fixed-size chunks and feeds each
// chunk to rad's demodulator until the source is exhausted.
func feedLoop(src iqsource.Source, rad *radio.Radio) error {
	buf := make([]complex128, feedChunkSamples)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			rad.Demod.Feed(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("dabreceiver: read IQ stream: %w", err)
		}
	}
}
