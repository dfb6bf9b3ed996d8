package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Ebbbabebba/sermable/internal/align"
)

func TestFileStore_SaveAppendsJSONLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sessions.jsonl")
	fs := NewFileStore(path)

	r := sampleFileReport()
	if err := fs.Save(r); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := fs.Save(r); err != nil {
		t.Fatalf("Save() second error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening store file: %v", err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
		var record fileRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines, err)
		}
		if record.Total != 3 {
			t.Errorf("record.Total = %d, want 3", record.Total)
		}
		if record.Locale != "en-US" {
			t.Errorf("record.Locale = %q, want %q", record.Locale, "en-US")
		}
		if record.DurationMS != 90000 {
			t.Errorf("record.DurationMS = %d, want 90000", record.DurationMS)
		}
		if record.Timestamp.IsZero() {
			t.Error("record.Timestamp is zero")
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scanning store file: %v", err)
	}
	if lines != 2 {
		t.Errorf("got %d lines, want 2", lines)
	}
}

func TestFileStore_CreatesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "new.jsonl")
	fs := NewFileStore(path)

	if err := fs.Save(sampleFileReport()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("store file not created: %v", err)
	}
}

func TestFileStore_ConcurrentSaves(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "concurrent.jsonl")
	fs := NewFileStore(path)

	const n = 20
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fs.Save(sampleFileReport()); err != nil {
				t.Errorf("Save() error = %v", err)
			}
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading store file: %v", err)
	}
	var lines int
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var record fileRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("interleaved write produced invalid JSON: %v", err)
		}
		lines++
	}
	if lines != n {
		t.Errorf("got %d lines, want %d", lines, n)
	}
}

func TestFileStore_SaveErrorOnBadPath(t *testing.T) {
	t.Parallel()

	fs := NewFileStore(filepath.Join(t.TempDir(), "missing", "dir", "x.jsonl"))
	if err := fs.Save(sampleFileReport()); err == nil {
		t.Error("Save() error = nil, want error for unwritable path")
	}
}

func sampleFileReport() Report {
	words := []align.WordPerformance{
		{Index: 0, Word: "to", Status: align.StatusCorrect, TimeToSpeak: time.Second},
		{Index: 1, Word: "be", Status: align.StatusHesitated, TimeToSpeak: 2 * time.Second, Prompted: true},
		{Index: 2, Word: "or", Status: align.StatusMissed},
	}
	return New(words, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), 90*time.Second, "en-US")
}
