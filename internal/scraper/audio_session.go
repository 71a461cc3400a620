package scraper

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// AudioSession is a single live WAV file for one audio subchannel's
// session, with its ChunkSize/Subchunk2Size header fields updated in place
// as PCM bytes arrive — spec.md §6: "Audio is a single WAV per session
// with live-updating ChunkSize/Subchunk2Size". Header layout grounded on
// ausocean-av/codec/wav.WAV.Write's 44-byte PCM header byte offsets,
// adapted from that package's single buffered write into an open,
// seekable file rewritten incrementally.
type AudioSession struct {
	f          *os.File
	path       string
	channels   int
	sampleRate int
	bitDepth   int
	dataBytes  uint32
}

// NewAudioSession opens (creating directories as needed) a new WAV file
// under root/service_{id}/component_{id}/audio/ and writes its initial
// zero-length header.
func (w *Writer) NewAudioSession(serviceRef uint32, componentID uint8, transportID uint16, label string, channels, sampleRate, bitDepth int) (*AudioSession, error) {
	dir := w.componentDir(serviceRef, componentID, "audio")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("scraper: create audio directory: %w", err)
	}
	path := filepath.Join(dir, artifactName(now(), transportID, label, "wav"))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("scraper: create audio session file: %w", err)
	}

	s := &AudioSession{f: f, path: path, channels: channels, sampleRate: sampleRate, bitDepth: bitDepth}
	if err := s.writeHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// Append writes pcm (raw little-endian samples at the session's configured
// bit depth) to the end of the data chunk and rewrites the header's
// running size fields.
func (s *AudioSession) Append(pcm []byte) error {
	if _, err := s.f.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("scraper: seek to audio data end: %w", err)
	}
	if _, err := s.f.Write(pcm); err != nil {
		return fmt.Errorf("scraper: append audio samples: %w", err)
	}
	s.dataBytes += uint32(len(pcm))
	return s.writeHeader()
}

// Close closes the underlying file. The header already reflects every
// Append, since each Append rewrites it.
func (s *AudioSession) Close() error {
	return s.f.Close()
}

// Path returns the session's WAV file path.
func (s *AudioSession) Path() string { return s.path }

func (s *AudioSession) writeHeader() error {
	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], s.dataBytes+36)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(s.channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(s.sampleRate))
	byteRate := uint32(s.sampleRate * s.channels * s.bitDepth / 8)
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	blockAlign := uint16(s.channels * s.bitDepth / 8)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], uint16(s.bitDepth))
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], s.dataBytes)

	if _, err := s.f.WriteAt(header, 0); err != nil {
		return fmt.Errorf("scraper: write wav header: %w", err)
	}
	return nil
}
