package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"
)

// Extractor pulls a mono PCM WAV track out of a video by running an
// ffmpeg-compatible command.
type Extractor struct {
	cmd        []string
	sampleRate int
	channels   int
}

// NewExtractor parses command (e.g. "ffmpeg -hide_banner -y") into argv.
func NewExtractor(command string, sampleRate, channels int) (*Extractor, error) {
	args, err := shellwords.NewParser().Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse extractor command: %w", err)
	}
	if len(args) == 0 {
		return nil, errors.New("extractor command is empty")
	}
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("invalid audio format %d Hz x %d ch", sampleRate, channels)
	}
	return &Extractor{cmd: args, sampleRate: sampleRate, channels: channels}, nil
}

// OutputPath is where Extract writes the track for videoPath.
func OutputPath(videoPath, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	return filepath.Join(outDir, base+".wav")
}

func (e *Extractor) args(videoPath, wavPath string) []string {
	out := append([]string{}, e.cmd[1:]...)
	return append(out,
		"-i", videoPath,
		"-vn",
		"-ac", strconv.Itoa(e.channels),
		"-ar", strconv.Itoa(e.sampleRate),
		"-acodec", "pcm_s16le",
		wavPath,
	)
}

// Extract writes outDir/<video base>.wav and returns its path.
func (e *Extractor) Extract(ctx context.Context, videoPath, outDir string) (string, error) {
	wavPath := OutputPath(videoPath, outDir)

	command := exec.CommandContext(ctx, e.cmd[0], e.args(videoPath, wavPath)...)
	var stderr bytes.Buffer
	command.Stderr = &stderr
	if err := command.Run(); err != nil {
		return "", fmt.Errorf("audio extraction error: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return wavPath, nil
}
