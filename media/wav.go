package media

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"
)

var ErrNotWAV = errors.New("not a wav file")

type WAVInfo struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
}

// InspectWAV reads the header of the WAV file at path.
func InspectWAV(path string) (WAVInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return WAVInfo{}, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return WAVInfo{}, fmt.Errorf("%w: %s", ErrNotWAV, path)
	}
	info := WAVInfo{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
	}
	// duration is informational; a header without a usable size leaves it zero
	if dur, err := d.Duration(); err == nil {
		info.Duration = dur
	}
	return info, nil
}

// Check fails unless info matches the expected rate and channel count.
func (i WAVInfo) Check(sampleRate, channels int) error {
	if i.SampleRate != sampleRate || i.Channels != channels {
		return fmt.Errorf("unexpected audio format %d Hz x %d ch, want %d Hz x %d ch",
			i.SampleRate, i.Channels, sampleRate, channels)
	}
	return nil
}
