package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"purchaseScope/internal/model"
)

// JSONLWriter streams purchase events to a writer, one JSON object per line.
type JSONLWriter struct {
	mu sync.Mutex
	w  io.Writer
}

var _ Sink = (*JSONLWriter)(nil)

func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{w: w}
}

// WriteEvents renders the events as JSON lines.
func (s *JSONLWriter) WriteEvents(events []model.PurchaseEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	writer := bufio.NewWriter(s.w)
	if err := writeLines(writer, events); err != nil {
		return err
	}
	return writer.Flush()
}

// JSONLFile appends purchase events to a JSONL file, creating parent
// directories on first write.
type JSONLFile struct {
	path string
	mu   sync.Mutex
}

var _ Sink = (*JSONLFile)(nil)

func NewJSONLFile(path string) *JSONLFile {
	return &JSONLFile{path: path}
}

// WriteEvents appends a batch of events as JSON lines.
func (s *JSONLFile) WriteEvents(events []model.PurchaseEvent) error {
	if len(events) == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := writeLines(writer, events); err != nil {
		return err
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}

func writeLines(writer *bufio.Writer, events []model.PurchaseEvent) error {
	for _, event := range events {
		line, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal purchase event: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write purchase event: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}
	return nil
}
