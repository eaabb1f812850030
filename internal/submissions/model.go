package submissions

import "time"

// Status is the terminal outcome of an archived request.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Submission is the audit record of one analyze request. It never carries
// the analysis payload.
type Submission struct {
	ID           string
	RequestID    string
	FileName     string
	SizeBytes    int64
	ContentHash  string
	StorageKey   string
	Status       Status
	ErrorCode    string
	RiskScore    *int
	IssueCount   int
	RedlineCount int
	DurationMs   int64
	CreatedAt    time.Time
}
