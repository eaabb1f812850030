package submissions

import "time"

// SubmissionResponse is the outward-facing representation of a submission.
type SubmissionResponse struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"request_id,omitempty"`
	FileName     string    `json:"file_name"`
	SizeBytes    int64     `json:"size_bytes"`
	ContentHash  string    `json:"content_hash"`
	Archived     bool      `json:"archived"`
	Status       Status    `json:"status"`
	ErrorCode    string    `json:"error_code,omitempty"`
	RiskScore    *int      `json:"risk_score,omitempty"`
	IssueCount   int       `json:"issue_count"`
	RedlineCount int       `json:"redline_count"`
	DurationMs   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

func toResponse(sub Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           sub.ID,
		RequestID:    sub.RequestID,
		FileName:     sub.FileName,
		SizeBytes:    sub.SizeBytes,
		ContentHash:  sub.ContentHash,
		Archived:     sub.StorageKey != "",
		Status:       sub.Status,
		ErrorCode:    sub.ErrorCode,
		RiskScore:    sub.RiskScore,
		IssueCount:   sub.IssueCount,
		RedlineCount: sub.RedlineCount,
		DurationMs:   sub.DurationMs,
		CreatedAt:    sub.CreatedAt,
	}
}
