// Package output provides JSONL output for listing and read results.
//
// Output is structured as typed record envelopes containing entries, read
// results, errors, and summaries. Each line is a self-contained JSON object
// that can be parsed independently.
package output

import (
	"encoding/json"
	"time"
)

// Record type constants define the envelope types for JSONL output.
// These follow the pattern: distread.<type>.v<version>
const (
	// TypeEntry identifies listing entry records.
	TypeEntry = "distread.entry.v1"

	// TypeResult identifies per-key read result records.
	TypeResult = "distread.result.v1"

	// TypeError identifies error records.
	TypeError = "distread.error.v1"

	// TypeSummary identifies final summary records.
	TypeSummary = "distread.summary.v1"
)

// Record is the envelope for all JSONL output.
//
// Each line of JSONL output contains a Record with a type-specific payload
// in the Data field. The type field determines how to interpret the Data
// payload.
type Record struct {
	// Type identifies the record type (e.g., "distread.entry.v1").
	Type string `json:"type"`

	// TS is the timestamp when the record was created (RFC3339Nano).
	TS time.Time `json:"ts"`

	// JobID is the correlation ID for this invocation.
	JobID string `json:"job_id"`

	// Backend identifies the storage backend (e.g., "s3").
	Backend string `json:"backend"`

	// Data contains the type-specific payload as raw JSON.
	Data json.RawMessage `json:"data"`
}

// EntryRecord is the data payload for listing entries.
type EntryRecord struct {
	// Key is the object key, or the collapsed prefix for groups.
	Key string `json:"key"`

	// Size is the object size in bytes. Omitted for groups.
	Size int64 `json:"size,omitempty"`

	// ETag is the entity tag. Omitted for groups.
	ETag string `json:"etag,omitempty"`

	// LastModified is when the object was last modified. Omitted for groups.
	LastModified *time.Time `json:"last_modified,omitempty"`

	// IsGroup marks collapsed common-prefix entries.
	IsGroup bool `json:"is_group,omitempty"`
}

// ResultRecord is the data payload for one realized read.
type ResultRecord struct {
	// Key is the object key that was read.
	Key string `json:"key"`

	// TaskID correlates the result with its submitted task.
	TaskID string `json:"task_id"`

	// Bytes is the content length returned by the read.
	Bytes int64 `json:"bytes"`
}

// ErrorRecord is the data payload for errors.
//
// Per-key failures are emitted as records rather than failing the entire
// batch, allowing partial results when some reads fail.
type ErrorRecord struct {
	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Key is the object key related to this error, if applicable.
	Key string `json:"key,omitempty"`

	// Prefix is the prefix being processed when the error occurred.
	Prefix string `json:"prefix,omitempty"`
}

// SummaryRecord is the data payload for the final summary.
type SummaryRecord struct {
	// KeysListed is the number of keys the fan-out enumerated.
	KeysListed int64 `json:"keys_listed"`

	// TasksGathered is the number of tasks realized by gather.
	TasksGathered int64 `json:"tasks_gathered"`

	// BytesTotal is the cumulative size of successful reads.
	BytesTotal int64 `json:"bytes_total"`

	// Errors is the number of failed tasks.
	Errors int64 `json:"errors"`

	// Mode records the execution mode ("eager" or "lazy").
	Mode string `json:"mode,omitempty"`

	// Duration is the wall-clock duration in nanoseconds.
	Duration time.Duration `json:"duration_ns"`

	// DurationHuman is the duration in human-readable form.
	DurationHuman string `json:"duration"`
}

// Error code constants for ErrorRecord.Code.
const (
	ErrCodeObjectNotFound = "object_not_found"
	ErrCodeBucketNotFound = "bucket_not_found"
	ErrCodeAccessDenied   = "access_denied"
	ErrCodeTransient      = "transient"
	ErrCodePartialBatch   = "partial_batch_failure"
	ErrCodeInternal       = "internal"
)
