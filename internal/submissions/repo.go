package submissions

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("submission not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Repo defines persistence operations for submissions.
type Repo interface {
	Create(ctx context.Context, sub Submission) error
	Get(ctx context.Context, id string) (Submission, error)
	List(ctx context.Context, limit, offset int) ([]Submission, error)
}
