package orchestrator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

type PersistBundle struct {
	SessionID   string    `json:"session_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Result      *Result   `json:"result"`
}

func newSessionID() string {
	ts := time.Now().Format("20060102-150405")
	return "session_" + ts + "_" + uuid.NewString()[:8]
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func persist(outputsRoot string, res *Result) (string, error) {
	dir := filepath.Join(outputsRoot, res.SessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "result.json")
	bundle := PersistBundle{
		SessionID:   res.SessionID,
		GeneratedAt: time.Now(),
		Result:      res,
	}
	if err := writeJSON(path, bundle); err != nil {
		return "", err
	}
	return path, nil
}
