package submissions

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"contract-validator/internal/contracts"
	"contract-validator/internal/shared/storage/object"
	"contract-validator/internal/shared/telemetry"
	"contract-validator/internal/shared/util"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Outcome describes a finished analyze request.
type Outcome struct {
	RequestID string
	FileName  string
	Data      []byte
	Analysis  *contracts.ContractAnalysis
	ErrorCode string
	Duration  time.Duration
}

// Service archives uploads and records submission metadata.
type Service struct {
	Repo  Repo
	Store object.ObjectStore
	Now   func() time.Time
	NewID func() string
}

// NewService constructs a Service. store may be nil, in which case only
// metadata is recorded.
func NewService(repo Repo, store object.ObjectStore) *Service {
	return &Service{
		Repo:  repo,
		Store: store,
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

// Record stores the uploaded bytes and writes a Submission row. A failed
// upload is logged and the row is still written without a storage key.
func (s *Service) Record(ctx context.Context, out Outcome) (Submission, error) {
	if strings.TrimSpace(out.FileName) == "" {
		return Submission{}, ErrInvalidInput
	}

	sub := Submission{
		ID:          s.NewID(),
		RequestID:   out.RequestID,
		FileName:    out.FileName,
		SizeBytes:   int64(len(out.Data)),
		ContentHash: util.ContentHash(out.Data),
		Status:      StatusSucceeded,
		ErrorCode:   out.ErrorCode,
		DurationMs:  out.Duration.Milliseconds(),
		CreatedAt:   s.Now().UTC(),
	}
	if out.ErrorCode != "" || out.Analysis == nil {
		sub.Status = StatusFailed
	}
	if out.Analysis != nil {
		score := out.Analysis.RiskScore
		sub.RiskScore = &score
		sub.IssueCount = len(out.Analysis.Issues)
		sub.RedlineCount = len(out.Analysis.Redlines)
	}

	if s.Store != nil && len(out.Data) > 0 {
		key, _, err := s.Store.Save(ctx, sub.ID, out.FileName, docxContentType, bytes.NewReader(out.Data))
		if err != nil {
			telemetry.Warn("submissions.store.failed", map[string]any{
				"submission_id": sub.ID,
				"request_id":    out.RequestID,
				"error":         err,
			})
		} else {
			sub.StorageKey = key
		}
	}

	if err := s.Repo.Create(ctx, sub); err != nil {
		return Submission{}, fmt.Errorf("create submission: %w", err)
	}
	telemetry.Info("submissions.recorded", map[string]any{
		"submission_id": sub.ID,
		"request_id":    sub.RequestID,
		"status":        string(sub.Status),
		"storage_key":   sub.StorageKey,
	})
	return sub, nil
}

// Get returns one submission.
func (s *Service) Get(ctx context.Context, id string) (Submission, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Submission{}, ErrInvalidInput
	}
	if _, err := uuid.Parse(id); err != nil {
		return Submission{}, ErrNotFound
	}
	return s.Repo.Get(ctx, id)
}

// List returns submissions newest-first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Submission, error) {
	return s.Repo.List(ctx, limit, offset)
}
