package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Metadata describes a persisted CSV and is written next to it as <stem>_metadata.json.
type Metadata struct {
	Description    string   `json:"description"`
	SeriesID       string   `json:"series_id,omitempty"`
	Source         string   `json:"source,omitempty"`
	RowCount       int      `json:"row_count"`
	Columns        []string `json:"columns"`
	FileSizeBytes  int64    `json:"file_size_bytes"`
	SHA256         string   `json:"sha256"`
	RetrievedAtUTC string   `json:"retrieved_at_utc"`
	RunID          string   `json:"run_id"`
}

// Store writes artifacts atomically: content goes to a temp file in the
// target directory and is renamed into place once complete.
type Store struct {
	runID string
	now   func() time.Time
}

// NewStore creates a Store tagging metadata with runID.
func NewStore(runID string) *Store {
	return &Store{runID: runID, now: time.Now}
}

// writeFile streams content into path and returns its size and SHA-256.
func (s *Store) writeFile(path string, write func(io.Writer) error) (int64, string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, "", fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return 0, "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	h := sha256.New()
	cw := &countingWriter{w: io.MultiWriter(tmp, h)}
	if err := write(cw); err != nil {
		tmp.Close()
		return 0, "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return 0, "", err
	}
	if err := tmp.Close(); err != nil {
		return 0, "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, "", fmt.Errorf("rename into %s: %w", path, err)
	}
	return cw.n, hex.EncodeToString(h.Sum(nil)), nil
}

// WriteCSV writes a CSV artifact followed by its metadata sidecar.
// meta's size, checksum, timestamp and run id are filled in.
func (s *Store) WriteCSV(path string, meta Metadata, write func(io.Writer) error) (*Metadata, error) {
	size, sum, err := s.writeFile(path, write)
	if err != nil {
		return nil, err
	}

	meta.FileSizeBytes = size
	meta.SHA256 = sum
	meta.RetrievedAtUTC = s.now().UTC().Format(time.RFC3339)
	meta.RunID = s.runID

	if err := s.WriteJSON(MetadataPath(path), meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// WriteJSON writes v as indented JSON.
func (s *Store) WriteJSON(path string, v any) error {
	_, _, err := s.writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
	return err
}

// WriteText writes a plain-text artifact.
func (s *Store) WriteText(path, text string) error {
	_, _, err := s.writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, text)
		return err
	})
	return err
}

// MetadataPath returns the sidecar path for a CSV artifact.
func MetadataPath(csvPath string) string {
	ext := filepath.Ext(csvPath)
	return strings.TrimSuffix(csvPath, ext) + "_metadata.json"
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
