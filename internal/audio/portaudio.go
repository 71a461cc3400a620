// Package audio wraps PortAudio for the receiver's PCM playback sink. The
// receiver never records from a microphone — its input is an IQ stream via
// internal/iqsource — so this package is output-only, adapted from the
// teacher's original full-duplex AudioIO down to OpenOutput/Write/
// WriteSamples.
package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const (
	// SampleRate is the PCM output rate the (out-of-scope) AAC decoder
	// collaborator is expected to resample to before handing frames here.
	SampleRate   = 48000
	FramesPerBuf = 1024
	NumChannels  = 2 // DAB+ audio is typically stereo
)

// AudioOut wraps a PortAudio output stream for decoded PCM playback.
type AudioOut struct {
	stream      *portaudio.Stream
	outputBuf   []float32
	mu          sync.Mutex
	initialized bool
}

// Init initializes PortAudio.
func Init() error {
	return portaudio.Initialize()
}

// Terminate cleans up PortAudio.
func Terminate() error {
	return portaudio.Terminate()
}

// NewAudioOut creates a new AudioOut instance.
func NewAudioOut() *AudioOut {
	return &AudioOut{
		outputBuf: make([]float32, FramesPerBuf*NumChannels),
	}
}

// OpenOutput opens the default output stream.
func (a *AudioOut) OpenOutput() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	stream, err := portaudio.OpenDefaultStream(
		0,           // input channels
		NumChannels, // output channels
		float64(SampleRate),
		FramesPerBuf,
		a.outputBuf,
	)
	if err != nil {
		return fmt.Errorf("open output stream: %w", err)
	}
	a.stream = stream
	a.initialized = true
	return nil
}

// Start starts the output stream.
func (a *AudioOut) Start() error {
	if a.stream == nil {
		return fmt.Errorf("output stream not opened")
	}
	return a.stream.Start()
}

// Stop stops the output stream.
func (a *AudioOut) Stop() error {
	if a.stream == nil {
		return nil
	}
	return a.stream.Stop()
}

// Write writes one buffer of interleaved PCM samples (length must equal
// FramesPerBuf*NumChannels) to the output stream.
func (a *AudioOut) Write(samples []float32) error {
	if a.stream == nil {
		return fmt.Errorf("output stream not opened")
	}
	copy(a.outputBuf, samples)
	return a.stream.Write()
}

// WriteSamples writes a larger buffer of interleaved PCM samples in
// FramesPerBuf*NumChannels chunks, zero-padding the final partial chunk.
func (a *AudioOut) WriteSamples(samples []float32) error {
	chunkLen := FramesPerBuf * NumChannels
	for i := 0; i < len(samples); i += chunkLen {
		end := i + chunkLen
		if end > len(samples) {
			chunk := make([]float32, chunkLen)
			copy(chunk, samples[i:])
			if err := a.Write(chunk); err != nil {
				return err
			}
		} else {
			if err := a.Write(samples[i:end]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes the output stream.
func (a *AudioOut) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stream == nil {
		return nil
	}
	err := a.stream.Close()
	a.stream = nil
	if err != nil {
		return fmt.Errorf("close output stream: %w", err)
	}
	return nil
}
