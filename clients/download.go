package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// IsVideoURL reports whether s looks like something Download accepts.
func IsVideoURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// VideoExt guesses a container extension from the URL text.
func VideoExt(url string) string {
	switch {
	case strings.Contains(url, ".mp4"):
		return ".mp4"
	case strings.Contains(url, ".webm"):
		return ".webm"
	default:
		return ".avi"
	}
}

// Download streams url into destDir/video<ext> and returns the file path.
func (h *HTTP) Download(ctx context.Context, url, destDir string) (string, error) {
	if !IsVideoURL(url) {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, url)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, bodyPreview))
		return "", fmt.Errorf("download %s: %s", resp.Status, string(body))
	}
	if h.maxBytes > 0 && resp.ContentLength > h.maxBytes {
		return "", fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, resp.ContentLength, h.maxBytes)
	}

	path := filepath.Join(destDir, "video"+VideoExt(url))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	var src io.Reader = resp.Body
	if h.maxBytes > 0 {
		src = io.LimitReader(resp.Body, h.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && h.maxBytes > 0 && n > h.maxBytes {
		err = fmt.Errorf("%w: more than %d bytes", ErrTooLarge, h.maxBytes)
	}
	if err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
