package submissions

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const submissionColumns = `id, request_id, file_name, size_bytes, content_hash, storage_key, status, error_code, risk_score, issue_count, redline_count, duration_ms, created_at`

// Create inserts a new submission.
func (r *PGRepo) Create(ctx context.Context, sub Submission) error {
	const query = `
INSERT INTO submissions (
    id,
    request_id,
    file_name,
    size_bytes,
    content_hash,
    storage_key,
    status,
    error_code,
    risk_score,
    issue_count,
    redline_count,
    duration_ms,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	var storageKey sql.NullString
	if sub.StorageKey != "" {
		storageKey = sql.NullString{String: sub.StorageKey, Valid: true}
	}
	var errorCode sql.NullString
	if sub.ErrorCode != "" {
		errorCode = sql.NullString{String: sub.ErrorCode, Valid: true}
	}
	var riskScore sql.NullInt64
	if sub.RiskScore != nil {
		riskScore = sql.NullInt64{Int64: int64(*sub.RiskScore), Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		sub.ID,
		sub.RequestID,
		sub.FileName,
		sub.SizeBytes,
		sub.ContentHash,
		storageKey,
		string(sub.Status),
		errorCode,
		riskScore,
		sub.IssueCount,
		sub.RedlineCount,
		sub.DurationMs,
		sub.CreatedAt,
	)
	return err
}

// Get fetches a submission by ID.
func (r *PGRepo) Get(ctx context.Context, id string) (Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1 LIMIT 1`
	sub, err := scanSubmission(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, ErrNotFound
		}
		return Submission{}, err
	}
	return sub, nil
}

// List lists submissions ordered newest-first.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Submission, error) {
	limit, offset = clampPage(limit, offset)
	query := `SELECT ` + submissionColumns + ` FROM submissions ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (Submission, error) {
	var sub Submission
	var status string
	var storageKey sql.NullString
	var errorCode sql.NullString
	var riskScore sql.NullInt64
	if err := row.Scan(
		&sub.ID,
		&sub.RequestID,
		&sub.FileName,
		&sub.SizeBytes,
		&sub.ContentHash,
		&storageKey,
		&status,
		&errorCode,
		&riskScore,
		&sub.IssueCount,
		&sub.RedlineCount,
		&sub.DurationMs,
		&sub.CreatedAt,
	); err != nil {
		return Submission{}, err
	}
	sub.Status = Status(status)
	if storageKey.Valid {
		sub.StorageKey = storageKey.String
	}
	if errorCode.Valid {
		sub.ErrorCode = errorCode.String
	}
	if riskScore.Valid {
		score := int(riskScore.Int64)
		sub.RiskScore = &score
	}
	return sub, nil
}

var _ Repo = (*PGRepo)(nil)
