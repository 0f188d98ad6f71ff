package output

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"
)

// Writer outputs JSONL records.
//
// Implementations must be safe for concurrent use from multiple
// goroutines. Each Write* method emits a complete record as a single line
// of JSON followed by a newline.
type Writer interface {
	// WriteEntry emits a listing entry record.
	WriteEntry(ctx context.Context, e *EntryRecord) error

	// WriteResult emits a read result record.
	WriteResult(ctx context.Context, r *ResultRecord) error

	// WriteError emits an error record.
	WriteError(ctx context.Context, e *ErrorRecord) error

	// WriteSummary emits a summary record.
	WriteSummary(ctx context.Context, s *SummaryRecord) error

	// Close flushes any buffered output and releases resources.
	Close() error
}

// ErrWriterClosed is returned when writing after Close.
var ErrWriterClosed = errors.New("output writer is closed")

// JSONLWriter writes records as newline-delimited JSON to an io.Writer.
//
// JSONLWriter is safe for concurrent use. Writes are serialized using a
// mutex to ensure atomic line writes (no interleaved output).
type JSONLWriter struct {
	w       io.Writer
	jobID   string
	backend string
	mu      sync.Mutex
	closed  bool
}

var _ Writer = (*JSONLWriter)(nil)

// NewJSONLWriter creates a new JSONL writer.
//
// Parameters:
//   - w: The underlying writer (stdout, file, etc.)
//   - jobID: Correlation ID for this invocation
//   - backend: Storage backend identifier (e.g., "s3")
func NewJSONLWriter(w io.Writer, jobID, backend string) *JSONLWriter {
	return &JSONLWriter{
		w:       w,
		jobID:   jobID,
		backend: backend,
	}
}

// WriteEntry emits a listing entry record.
func (jw *JSONLWriter) WriteEntry(ctx context.Context, e *EntryRecord) error {
	return jw.writeRecord(ctx, TypeEntry, e)
}

// WriteResult emits a read result record.
func (jw *JSONLWriter) WriteResult(ctx context.Context, r *ResultRecord) error {
	return jw.writeRecord(ctx, TypeResult, r)
}

// WriteError emits an error record.
func (jw *JSONLWriter) WriteError(ctx context.Context, e *ErrorRecord) error {
	return jw.writeRecord(ctx, TypeError, e)
}

// WriteSummary emits a summary record.
func (jw *JSONLWriter) WriteSummary(ctx context.Context, s *SummaryRecord) error {
	return jw.writeRecord(ctx, TypeSummary, s)
}

// Close marks the writer as closed.
//
// If the underlying writer implements io.Closer, it is NOT closed.
// The caller is responsible for closing the underlying writer.
func (jw *JSONLWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	jw.closed = true
	return nil
}

// writeRecord marshals data and writes a complete record line.
//
// This method holds the mutex for the entire operation to ensure atomic
// line writes.
func (jw *JSONLWriter) writeRecord(ctx context.Context, recordType string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	rec := Record{
		Type:    recordType,
		TS:      time.Now().UTC(),
		JobID:   jw.jobID,
		Backend: jw.backend,
		Data:    payload,
	}

	line, err := json.Marshal(&rec)
	if err != nil {
		return err
	}

	jw.mu.Lock()
	defer jw.mu.Unlock()

	if jw.closed {
		return ErrWriterClosed
	}

	if _, err := jw.w.Write(line); err != nil {
		return err
	}
	_, err = jw.w.Write([]byte{'\n'})
	return err
}
