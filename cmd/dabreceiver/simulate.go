package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"os"

	"github.com/jeongseonghan/dabradio/internal/ofdm"
	"github.com/spf13/cobra"
)

func newSimulateTransmitterCommand() *cobra.Command {
	var (
		output    string
		mode      string
		numFrames int
	)

	cmd := &cobra.Command{
		Use:   "simulate-transmitter",
		Short: "Emit a synthetic null-period + unit-magnitude IQ stream for testing",
		Long: "simulate-transmitter writes a synthetic DAB-like IQ stream: each frame " +
			"is a null period of silence (unity-power-relative zero samples) followed " +
			"by unit-magnitude, random-phase data symbols, matching the frame shape " +
			"the OFDM null detector looks for (spec.md §8 scenario 4). It is a test " +
			"fixture, not a DAB modulator: no real carriers, FIC, or MSC content is " +
			"encoded into the output.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulateTransmitter(output, mode, numFrames)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "output path for raw_f32l interleaved IQ samples, or - for stdout")
	cmd.Flags().StringVarP(&mode, "mode", "m", "I", "DAB transmission mode: I, II, III, IV")
	cmd.Flags().IntVarP(&numFrames, "frames", "n", 1, "number of frames to emit")

	return cmd
}

func runSimulateTransmitter(output, mode string, numFrames int) error {
	txMode, err := parseTransmissionMode(mode)
	if err != nil {
		return err
	}
	if numFrames <= 0 {
		return fmt.Errorf("simulate-transmitter: --frames must be positive")
	}
	params := ofdm.ParamsFor(txMode)

	var f *os.File
	if output == "-" {
		f = os.Stdout
	} else {
		f, err = os.Create(output)
		if err != nil {
			return fmt.Errorf("simulate-transmitter: create output: %w", err)
		}
		defer f.Close()
	}
	w := bufio.NewWriterSize(f, 1<<20)
	defer w.Flush()

	rng := rand.New(rand.NewSource(1))
	sampleBuf := make([]byte, 8)

	writeSample := func(v complex128) error {
		binary.LittleEndian.PutUint32(sampleBuf[0:4], math.Float32bits(float32(real(v))))
		binary.LittleEndian.PutUint32(sampleBuf[4:8], math.Float32bits(float32(imag(v))))
		_, err := w.Write(sampleBuf)
		return err
	}

	for frame := 0; frame < numFrames; frame++ {
		for i := 0; i < params.NumNullPeriod; i++ {
			if err := writeSample(0); err != nil {
				return fmt.Errorf("simulate-transmitter: write null period: %w", err)
			}
		}
		numDataSamples := params.NumFrameSymbols * params.NumSymbolPeriod
		for i := 0; i < numDataSamples; i++ {
			phase := rng.Float64() * 2 * math.Pi
			if err := writeSample(cmplx.Rect(1, phase)); err != nil {
				return fmt.Errorf("simulate-transmitter: write data symbol: %w", err)
			}
		}
	}

	return nil
}
