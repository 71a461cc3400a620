package scraper

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSanitizeLabel_ReplacesUnsafeCharacters(t *testing.T) {
	got := sanitizeLabel("Radio 1 / News!")
	for _, c := range got {
		isSafe := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_'
		if !isSafe {
			t.Fatalf("sanitizeLabel left unsafe rune %q in %q", c, got)
		}
	}
	if sanitizeLabel("") != "untitled" {
		t.Fatalf("sanitizeLabel(\"\") = %q, want untitled", sanitizeLabel(""))
	}
}

func TestWriteMOTEntity_SplitsSlideshowFromMOTByContentType(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root)

	var calls []string
	w.SetProgressCallback(func(kind string, n int64, status string) { calls = append(calls, kind) })

	jpegPath, err := w.WriteMOTEntity(1, 0, 5, "cover.jpg", motContentTypeImage, 2, []byte{0xFF, 0xD8, 0xFF})
	if err != nil {
		t.Fatalf("WriteMOTEntity (image): %v", err)
	}
	if filepath.Ext(jpegPath) != ".jpg" {
		t.Fatalf("jpeg path = %s, want .jpg extension", jpegPath)
	}
	if filepath.Base(filepath.Dir(jpegPath)) != "slideshow" {
		t.Fatalf("jpeg path = %s, want to live under a slideshow directory", jpegPath)
	}

	objPath, err := w.WriteMOTEntity(1, 0, 6, "manual.pdf", 0, 0, []byte("not an image"))
	if err != nil {
		t.Fatalf("WriteMOTEntity (generic): %v", err)
	}
	if filepath.Base(filepath.Dir(objPath)) != "MOT" {
		t.Fatalf("generic object path = %s, want to live under a MOT directory", objPath)
	}

	if len(calls) != 2 || calls[0] != "slideshow" || calls[1] != "MOT" {
		t.Fatalf("progress callback kinds = %v, want [slideshow MOT]", calls)
	}

	wantDir := filepath.Join(root, "service_1", "component_0")
	if _, err := os.Stat(filepath.Join(wantDir, "slideshow")); err != nil {
		t.Fatalf("slideshow directory missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(wantDir, "MOT")); err != nil {
		t.Fatalf("MOT directory missing: %v", err)
	}
}

func TestAudioSession_HeaderReflectsAppendedBytes(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root)

	session, err := w.NewAudioSession(2, 1, 9, "News", 2, 48000, 16)
	if err != nil {
		t.Fatalf("NewAudioSession: %v", err)
	}

	chunk := make([]byte, 400) // 100 stereo 16-bit frames
	if err := session.Append(chunk); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := session.Append(chunk); err != nil {
		t.Fatalf("second Append: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw, err := os.ReadFile(session.Path())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(raw) != 44+800 {
		t.Fatalf("file length = %d, want %d", len(raw), 44+800)
	}
	riffSize := uint32(raw[4]) | uint32(raw[5])<<8 | uint32(raw[6])<<16 | uint32(raw[7])<<24
	if riffSize != 800+36 {
		t.Fatalf("RIFF chunk size = %d, want %d", riffSize, 800+36)
	}
	dataSize := uint32(raw[40]) | uint32(raw[41])<<8 | uint32(raw[42])<<16 | uint32(raw[43])<<24
	if dataSize != 800 {
		t.Fatalf("data chunk size = %d, want 800", dataSize)
	}
}

func TestArtifactName_UsesISOLikeLocalTimestamp(t *testing.T) {
	ts := time.Date(2026, 7, 31, 14, 5, 9, 0, time.Local)
	name := artifactName(ts, 42, "Label", "jpg")
	want := "2026-07-31T14-05-09_42_Label.jpg"
	if name != want {
		t.Fatalf("artifactName = %q, want %q", name, want)
	}
}
