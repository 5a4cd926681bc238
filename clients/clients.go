// Package clients talks to the outside world over HTTP: it downloads source
// videos and sends extracted audio to the speech-to-text service.
package clients

import (
	"errors"
	"net/http"
	"time"
)

var (
	// ErrNoSpeech means the ASR service returned no usable text.
	ErrNoSpeech = errors.New("speech not understood")
	// ErrInvalidURL means a download URL is not http(s).
	ErrInvalidURL = errors.New("invalid video url")
	// ErrTooLarge means a download exceeded the configured byte limit.
	ErrTooLarge = errors.New("download exceeds size limit")
)

type HTTP struct {
	c         *http.Client
	userAgent string
	maxBytes  int64
}

type Option func(*HTTP)

func WithTimeout(d time.Duration) Option {
	return func(h *HTTP) {
		if d > 0 {
			h.c.Timeout = d
		}
	}
}

func WithUserAgent(ua string) Option { return func(h *HTTP) { h.userAgent = ua } }

// WithMaxBytes caps download size. Zero disables the cap.
func WithMaxBytes(n int64) Option { return func(h *HTTP) { h.maxBytes = n } }

func NewHTTP(opts ...Option) *HTTP {
	h := &HTTP{c: &http.Client{Timeout: 60 * time.Second}, userAgent: "Mozilla/5.0"}
	for _, o := range opts {
		o(h)
	}
	return h
}

const bodyPreview = 512
