package media

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeWAV(t *testing.T, path string, sampleRate, channels int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	defer f.Close()

	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:   make([]int, sampleRate*channels/10),
	}
	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close wav: %v", err)
	}
}

func TestInspectWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	writeWAV(t, path, 16000, 1)

	info, err := InspectWAV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.SampleRate != 16000 || info.Channels != 1 || info.BitDepth != 16 {
		t.Fatalf("unexpected info %+v", info)
	}
	if err := info.Check(16000, 1); err != nil {
		t.Fatalf("expected format to match: %v", err)
	}
	if err := info.Check(44100, 2); err == nil {
		t.Fatal("expected format mismatch")
	}
}

func TestInspectWAVRejectsOtherFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, []byte("definitely not audio"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := InspectWAV(path); !errors.Is(err, ErrNotWAV) {
		t.Fatalf("expected ErrNotWAV, got %v", err)
	}
}

func TestSaveUpload(t *testing.T) {
	scratch := t.TempDir()
	path, err := SaveUpload(bytes.NewBufferString("movie"), "Holiday Clip.MOV", scratch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "uploaded.MOV" {
		t.Fatalf("expected original extension kept, got %q", path)
	}
	if !strings.HasPrefix(path, scratch) {
		t.Fatalf("expected upload under scratch dir, got %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "movie" {
		t.Fatalf("unexpected content %q (%v)", data, err)
	}
}

func TestAllowedUpload(t *testing.T) {
	for name, want := range map[string]bool{
		"a.mp4":  true,
		"b.WEBM": true,
		"c.avi":  true,
		"d.mov":  true,
		"e.mkv":  false,
		"noext":  false,
	} {
		if got := AllowedUpload(name); got != want {
			t.Fatalf("AllowedUpload(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestExtractorArgs(t *testing.T) {
	e, err := NewExtractor(`ffmpeg -hide_banner -loglevel "error" -y`, 16000, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := e.args("/in/video.mp4", "/out/video.wav")
	want := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", "/in/video.mp4", "-vn", "-ac", "1", "-ar", "16000", "-acodec", "pcm_s16le",
		"/out/video.wav",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("args = %v, want %v", got, want)
	}
	if e.cmd[0] != "ffmpeg" {
		t.Fatalf("expected ffmpeg binary, got %q", e.cmd[0])
	}
}

func TestNewExtractorErrors(t *testing.T) {
	if _, err := NewExtractor("   ", 16000, 1); err == nil {
		t.Fatal("expected error for empty command")
	}
	if _, err := NewExtractor(`ffmpeg "unterminated`, 16000, 1); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := NewExtractor("ffmpeg", 0, 1); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestOutputPath(t *testing.T) {
	if got := OutputPath("/a/b/video.mp4", "/tmp/x"); got != filepath.Join("/tmp/x", "video.wav") {
		t.Fatalf("unexpected output path %q", got)
	}
}

func TestExtractRunsCommand(t *testing.T) {
	// the fake extractor touches its last argument, the output path
	e, err := NewExtractor(`sh -c 'for a; do out=$a; done; : > "$out"' extract`, 16000, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dir := t.TempDir()
	path, err := e.Extract(context.Background(), "/videos/talk.webm", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != filepath.Join(dir, "talk.wav") {
		t.Fatalf("unexpected path %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
}

func TestExtractFailure(t *testing.T) {
	e, err := NewExtractor(`sh -c 'echo decoder exploded >&2; exit 1' extract`, 16000, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = e.Extract(context.Background(), "in.mp4", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "decoder exploded") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}
