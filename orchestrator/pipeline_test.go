package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/midhat81/Accent-Detection/accent"
	"github.com/midhat81/Accent-Detection/clients"
	cfg "github.com/midhat81/Accent-Detection/config"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type fakeFetcher struct {
	calls int
	err   error
}

func (f *fakeFetcher) Download(_ context.Context, url, destDir string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(destDir, "video"+clients.VideoExt(url))
	return path, os.WriteFile(path, []byte("video"), 0o644)
}

// fakeExtractor writes a short silent WAV in the requested format.
type fakeExtractor struct {
	sampleRate, channels int
	err                  error
}

func (f *fakeExtractor) Extract(_ context.Context, videoPath, outDir string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(outDir, "audio.wav")
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()
	enc := wav.NewEncoder(out, f.sampleRate, 16, f.channels, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: f.channels, SampleRate: f.sampleRate},
		Data:   make([]int, 1600*f.channels),
	}
	if err := enc.Write(buf); err != nil {
		return "", err
	}
	return path, enc.Close()
}

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(context.Context, string) (string, error) {
	f.calls++
	return f.text, f.err
}

func newTestPipeline(t *testing.T, c *cfg.Root, opts ...Option) (*Pipeline, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	opts = append([]Option{WithLogger(logger)}, opts...)
	p, err := NewPipeline(c, opts...)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	return p, hook
}

func localVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	return path
}

func TestRunLocalFile(t *testing.T) {
	c := cfg.Default()
	c.Paths.Scratch = t.TempDir()
	tr := &fakeTranscriber{text: "the water is better and the butter melted, really quite hard to tell"}
	p, _ := newTestPipeline(t, c,
		WithExtractor(&fakeExtractor{sampleRate: 16000, channels: 1}),
		WithTranscriber(tr),
	)

	res := p.Run(context.Background(), localVideo(t))
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Accent != accent.American || res.Confidence != 75 {
		t.Fatalf("unexpected classification %+v", res)
	}
	if res.WordCount != 13 {
		t.Fatalf("expected 13 words, got %d", res.WordCount)
	}
	if !strings.HasPrefix(res.Explanation, "Features: keyword: really") {
		t.Fatalf("unexpected explanation %q", res.Explanation)
	}
	if !strings.HasPrefix(res.SessionID, "session_") {
		t.Fatalf("unexpected session id %q", res.SessionID)
	}
	if entries, _ := os.ReadDir(c.Paths.Scratch); len(entries) != 0 {
		t.Fatalf("expected scratch dir cleaned up, found %d entries", len(entries))
	}
}

func TestRunURLUsesFetcher(t *testing.T) {
	c := cfg.Default()
	f := &fakeFetcher{}
	p, _ := newTestPipeline(t, c,
		WithFetcher(f),
		WithExtractor(&fakeExtractor{sampleRate: 16000, channels: 1}),
		WithTranscriber(&fakeTranscriber{text: "mate, today is a lovely day, let's go this way"}),
	)

	res := p.Run(context.Background(), "https://videos.test/clip.mp4")
	if f.calls != 1 {
		t.Fatalf("expected one download, got %d", f.calls)
	}
	if !res.Success || res.Accent != accent.Australian {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestRunStageFailures(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name   string
		source string
		opts   []Option
		stage  string
	}{
		{
			name:   "missing file",
			source: "/does/not/exist.mp4",
			stage:  StageAcquire,
		},
		{
			name:   "download error",
			source: "https://videos.test/a.mp4",
			opts:   []Option{WithFetcher(&fakeFetcher{err: boom})},
			stage:  StageAcquire,
		},
		{
			name:  "extraction error",
			opts:  []Option{WithExtractor(&fakeExtractor{err: boom})},
			stage: StageExtract,
		},
		{
			name:  "wrong audio format",
			opts:  []Option{WithExtractor(&fakeExtractor{sampleRate: 44100, channels: 2})},
			stage: StageInspect,
		},
		{
			name: "no speech",
			opts: []Option{
				WithExtractor(&fakeExtractor{sampleRate: 16000, channels: 1}),
				WithTranscriber(&fakeTranscriber{err: clients.ErrNoSpeech}),
			},
			stage: StageTranscribe,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := &fakeTranscriber{text: "never scored"}
			opts := append([]Option{
				WithFetcher(&fakeFetcher{}),
				WithExtractor(&fakeExtractor{sampleRate: 16000, channels: 1}),
				WithTranscriber(tr),
			}, tc.opts...)
			p, hook := newTestPipeline(t, cfg.Default(), opts...)

			source := tc.source
			if source == "" {
				source = localVideo(t)
			}
			res := p.Run(context.Background(), source)
			if res.Success {
				t.Fatalf("expected failure, got %+v", res)
			}
			if res.Stage != tc.stage || !strings.HasPrefix(res.Error, tc.stage+": ") {
				t.Fatalf("expected %s failure, got stage=%q error=%q", tc.stage, res.Stage, res.Error)
			}
			if res.Accent != "" || res.Confidence != 0 {
				t.Fatalf("scorer must not run after a failure: %+v", res)
			}
			last := hook.LastEntry()
			if last == nil || last.Level != logrus.ErrorLevel || last.Data["stage"] != tc.stage {
				t.Fatalf("expected error log for stage %s, got %+v", tc.stage, last)
			}
		})
	}
}

func TestRunPersistsResult(t *testing.T) {
	c := cfg.Default()
	c.Paths.Outputs = t.TempDir()
	p, _ := newTestPipeline(t, c,
		WithExtractor(&fakeExtractor{sampleRate: 16000, channels: 1}),
		WithTranscriber(&fakeTranscriber{text: "hello there how are you"}),
	)

	res := p.Run(context.Background(), localVideo(t))
	if !res.Success || res.Accent != accent.Uncertain || res.Explanation != accent.ExplanationLowConfidence {
		t.Fatalf("unexpected result %+v", res)
	}

	data, err := os.ReadFile(filepath.Join(c.Paths.Outputs, res.SessionID, "result.json"))
	if err != nil {
		t.Fatalf("read persisted result: %v", err)
	}
	var bundle PersistBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		t.Fatalf("decode persisted result: %v", err)
	}
	if bundle.SessionID != res.SessionID || bundle.Result == nil || bundle.Result.Confidence != res.Confidence {
		t.Fatalf("unexpected bundle %+v", bundle)
	}
}

func TestNewPipelineRejectsBadExtractor(t *testing.T) {
	c := cfg.Default()
	c.Extractor.Command = `ffmpeg "oops`
	if _, err := NewPipeline(c); err == nil {
		t.Fatal("expected extractor parse error")
	}
}

func TestRunUsesProvidedScorer(t *testing.T) {
	scorer, err := accent.NewScorerWithProfiles([]accent.Profile{
		{Label: "Scottish", Keywords: []string{"wee", "bairn"}},
	})
	if err != nil {
		t.Fatalf("scorer: %v", err)
	}
	p, _ := newTestPipeline(t, cfg.Default(),
		WithScorer(scorer),
		WithExtractor(&fakeExtractor{sampleRate: 16000, channels: 1}),
		WithTranscriber(&fakeTranscriber{text: "a wee bairn"}),
	)

	res := p.Run(context.Background(), localVideo(t))
	if !res.Success || res.Accent != "Scottish" || res.Confidence != 30 {
		t.Fatalf("unexpected result %+v", res)
	}
}
