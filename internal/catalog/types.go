package catalog

import "time"

// Status is the outcome of a conversion run.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Conversion is one recorded run.
type Conversion struct {
	ID     string
	Input  string
	Digest string // sha256 of the input document

	// Model summary; empty for failed runs.
	ModelName string
	Algorithm string
	Function  string
	Fields    []string

	Status    Status
	ErrorKind string
	Error     string

	Duration  time.Duration
	CreatedAt time.Time
}
