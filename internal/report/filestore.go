package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// fileRecord is a single session summary written to the file store.
type fileRecord struct {
	Timestamp     time.Time `json:"timestamp"`
	StartedAt     time.Time `json:"started_at"`
	DurationMS    int64     `json:"duration_ms"`
	Locale        string    `json:"locale,omitempty"`
	Total         int       `json:"total"`
	Correct       int       `json:"correct"`
	Hesitated     int       `json:"hesitated"`
	Skipped       int       `json:"skipped"`
	Missed        int       `json:"missed"`
	Prompted      int       `json:"prompted"`
	Accuracy      float64   `json:"accuracy"`
	DeliveryScore float64   `json:"delivery_score"`
}

// FileStore persists session summaries as JSON lines in a local file. It is
// the offline alternative to the PostgreSQL [Store] for practice on the go.
// Thread-safe for concurrent use.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore that appends to the given path.
// The file is created on first write if it does not exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save appends r's summary as one JSON line.
func (fs *FileStore) Save(r Report) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	record := fileRecord{
		Timestamp:     time.Now().UTC(),
		StartedAt:     r.StartedAt,
		DurationMS:    r.Duration.Milliseconds(),
		Locale:        r.Locale,
		Total:         r.Summary.Total,
		Correct:       r.Summary.Correct,
		Hesitated:     r.Summary.Hesitated,
		Skipped:       r.Summary.Skipped,
		Missed:        r.Summary.Missed,
		Prompted:      r.Summary.Prompted,
		Accuracy:      r.Summary.Accuracy,
		DeliveryScore: r.Summary.DeliveryScore,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("report file store: marshal: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(fs.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("report file store: open file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("report file store: write: %w", err)
	}
	return nil
}
