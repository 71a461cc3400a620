// Package scraper implements spec.md §6's "Scraper output layout"
// collaborator: it persists decoded audio, slideshow, and MOT artifacts
// under root/service_{id}/component_{id}/{kind}/{timestamp}_{transport_id}
// _{label}.{ext}. Adapted from
// playok-audio-modem/pc/internal/protocol/file_transfer.go's FileSender/
// ProgressCallback pattern: instead of ARQ file transfer with MD5
// verification, each write reports its own progress through the same
// callback shape, repurposed for "bytes persisted" rather than "bytes
// sent".
package scraper

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ProgressCallback mirrors the teacher's transfer-progress callback shape,
// repurposed to report scraper writes.
type ProgressCallback func(kind string, bytesWritten int64, status string)

// Writer persists decoded artifacts under a root directory using spec.md
// §6's literal scraper output layout.
type Writer struct {
	root       string
	onProgress ProgressCallback
}

// NewWriter returns a Writer rooted at root. The directory tree under root
// is created lazily, per component and kind, as artifacts arrive.
func NewWriter(root string) *Writer {
	return &Writer{root: root}
}

// SetProgressCallback sets the progress notification callback.
func (w *Writer) SetProgressCallback(cb ProgressCallback) {
	w.onProgress = cb
}

// Root returns the directory artifacts are persisted under.
func (w *Writer) Root() string { return w.root }

func (w *Writer) progress(kind string, n int64, status string) {
	if w.onProgress != nil {
		w.onProgress(kind, n, status)
	}
}

func (w *Writer) componentDir(serviceRef uint32, componentID uint8, kind string) string {
	return filepath.Join(w.root,
		fmt.Sprintf("service_%d", serviceRef),
		fmt.Sprintf("component_%d", componentID),
		kind)
}

// artifactName builds the "{timestamp}_{transport_id}_{label}.{ext}"
// filename spec.md §6 specifies, with ISO-like local timestamps.
func artifactName(ts time.Time, transportID uint16, label, ext string) string {
	stamp := ts.Format("2006-01-02T15-04-05")
	return fmt.Sprintf("%s_%d_%s.%s", stamp, transportID, sanitizeLabel(label), ext)
}

func sanitizeLabel(label string) string {
	if label == "" {
		return "untitled"
	}
	out := make([]byte, len(label))
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			out[i] = c
		default:
			out[i] = '_'
		}
	}
	return string(out)
}

// WriteMOTEntity persists one reassembled MOT object under the "slideshow"
// kind directory when contentType is MOT's image type (2), and "MOT"
// otherwise, per spec.md §6's {audio|slideshow|MOT} layout.
func (w *Writer) WriteMOTEntity(serviceRef uint32, componentID uint8, transportID uint16, label string, contentType uint8, contentSubType uint16, body []byte) (string, error) {
	kind := "MOT"
	ext := "bin"
	if contentType == motContentTypeImage {
		kind = "slideshow"
		ext = imageExtension(contentSubType)
	}

	dir := w.componentDir(serviceRef, componentID, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("scraper: create %s directory: %w", kind, err)
	}
	path := filepath.Join(dir, artifactName(now(), transportID, label, ext))
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("scraper: write %s artifact: %w", kind, err)
	}
	w.progress(kind, int64(len(body)), fmt.Sprintf("wrote %s", path))
	return path, nil
}

const motContentTypeImage uint8 = 2

// imageExtension maps the ETSI MOT image content sub-type to a file
// extension; unrecognised sub-types fall back to "img".
func imageExtension(subType uint16) string {
	switch subType {
	case 1:
		return "gif"
	case 2:
		return "jpg"
	case 3:
		return "bmp"
	case 4:
		return "png"
	default:
		return "img"
	}
}

var now = time.Now
