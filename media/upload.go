// Package media handles local media files: saving uploaded videos,
// extracting a speech-ready WAV track and checking its format.
package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// UploadExts lists the video containers accepted for upload.
var UploadExts = []string{".mp4", ".webm", ".avi", ".mov"}

// AllowedUpload reports whether name has an accepted video extension.
func AllowedUpload(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range UploadExts {
		if ext == e {
			return true
		}
	}
	return false
}

// SaveUpload copies r into a fresh directory under scratchDir as
// uploaded<ext>, keeping the extension of name. It returns the file path;
// the caller owns the parent directory.
func SaveUpload(r io.Reader, name, scratchDir string) (string, error) {
	dir, err := os.MkdirTemp(scratchDir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("file saving error: %w", err)
	}
	path := filepath.Join(dir, "uploaded"+filepath.Ext(name))
	f, err := os.Create(path)
	if err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("file saving error: %w", err)
	}
	_, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("file saving error: %w", err)
	}
	return path, nil
}
