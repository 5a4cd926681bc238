package orchestrator

import (
	"context"

	"github.com/midhat81/Accent-Detection/accent"
)

// Stage names, used in logs and failure messages.
const (
	StageAcquire    = "acquire"
	StageExtract    = "extract"
	StageInspect    = "inspect"
	StageTranscribe = "transcribe"
	StageClassify   = "classify"
)

type Fetcher interface {
	Download(ctx context.Context, url, destDir string) (string, error)
}

type AudioExtractor interface {
	Extract(ctx context.Context, videoPath, outDir string) (string, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) (string, error)
}

// Result is what a pipeline run reports. On failure only Error (and the
// stage that failed) is meaningful.
type Result struct {
	Success       bool         `json:"success"`
	Accent        accent.Label `json:"accent,omitempty"`
	Confidence    int          `json:"confidence"`
	Explanation   string       `json:"explanation,omitempty"`
	Transcription string       `json:"transcription,omitempty"`
	WordCount     int          `json:"word_count"`
	SessionID     string       `json:"session_id,omitempty"`
	Stage         string       `json:"stage,omitempty"`
	Error         string       `json:"error,omitempty"`
}
