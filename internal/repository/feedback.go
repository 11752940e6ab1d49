package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/resume-screener/internal/common"
	"github.com/joseph-ayodele/resume-screener/internal/entity"
)

// UpsertFeedbackRequest wraps parameters for storing an evaluation result.
type UpsertFeedbackRequest struct {
	ApplicationID uuid.UUID
	FeedbackText  string
	SectionsJSON  []byte
	TextSource    string
	PageCount     int
	Model         string
}

type FeedbackRepository interface {
	Upsert(ctx context.Context, req *UpsertFeedbackRequest) (*entity.Feedback, error)
	GetByApplicationID(ctx context.Context, applicationID uuid.UUID) (*entity.Feedback, error)
	ListFeedback(ctx context.Context, fromDate, toDate *time.Time) ([]*entity.Feedback, error)
}

type feedbackRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewFeedbackRepository(pool *pgxpool.Pool, logger *slog.Logger) FeedbackRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &feedbackRepository{
		pool:   pool,
		logger: logger,
	}
}

const feedbackSchema = `
CREATE TABLE IF NOT EXISTS screening_feedback (
	id             UUID PRIMARY KEY,
	application_id UUID NOT NULL UNIQUE,
	feedback_text  TEXT NOT NULL,
	sections       JSONB,
	text_source    TEXT NOT NULL DEFAULT '',
	page_count     INT NOT NULL DEFAULT 0,
	model          TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsureSchema creates the feedback table if it does not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	if _, err := pool.Exec(ctx, feedbackSchema); err != nil {
		logger.Error("failed to ensure feedback schema", "error", err)
		return err
	}
	return nil
}

const upsertFeedbackSQL = `
INSERT INTO screening_feedback
	(id, application_id, feedback_text, sections, text_source, page_count, model, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
ON CONFLICT (application_id) DO UPDATE SET
	feedback_text = EXCLUDED.feedback_text,
	sections      = EXCLUDED.sections,
	text_source   = EXCLUDED.text_source,
	page_count    = EXCLUDED.page_count,
	model         = EXCLUDED.model,
	updated_at    = now()
RETURNING id, application_id, feedback_text, sections, text_source, page_count, model, created_at, updated_at`

func (r *feedbackRepository) Upsert(ctx context.Context, req *UpsertFeedbackRequest) (*entity.Feedback, error) {
	row := r.pool.QueryRow(ctx, upsertFeedbackSQL,
		uuid.New(), req.ApplicationID, req.FeedbackText, req.SectionsJSON,
		req.TextSource, req.PageCount, req.Model)

	fb, err := scanFeedback(row)
	if err != nil {
		r.logger.Error("failed to upsert feedback", "application_id", req.ApplicationID, "error", err)
		return nil, common.DatabaseError(err, "failed to upsert feedback")
	}
	return fb, nil
}

const getFeedbackSQL = `
SELECT id, application_id, feedback_text, sections, text_source, page_count, model, created_at, updated_at
FROM screening_feedback
WHERE application_id = $1`

func (r *feedbackRepository) GetByApplicationID(ctx context.Context, applicationID uuid.UUID) (*entity.Feedback, error) {
	fb, err := scanFeedback(r.pool.QueryRow(ctx, getFeedbackSQL, applicationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		r.logger.Error("failed to get feedback", "application_id", applicationID, "error", err)
		return nil, common.DatabaseError(err, "failed to get feedback")
	}
	return fb, nil
}

func (r *feedbackRepository) ListFeedback(ctx context.Context, fromDate, toDate *time.Time) ([]*entity.Feedback, error) {
	q := `SELECT id, application_id, feedback_text, sections, text_source, page_count, model, created_at, updated_at
FROM screening_feedback WHERE 1=1`
	args := make([]any, 0, 2)
	if fromDate != nil {
		args = append(args, *fromDate)
		q += ` AND updated_at >= $1`
	}
	if toDate != nil {
		args = append(args, *toDate)
		if len(args) == 2 {
			q += ` AND updated_at <= $2`
		} else {
			q += ` AND updated_at <= $1`
		}
	}
	q += ` ORDER BY updated_at`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list feedback", "error", err)
		return nil, common.DatabaseError(err, "failed to list feedback")
	}
	defer rows.Close()

	var result []*entity.Feedback
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, common.DatabaseError(err, "failed to scan feedback row")
		}
		result = append(result, fb)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeedback(row rowScanner) (*entity.Feedback, error) {
	var fb entity.Feedback
	err := row.Scan(&fb.ID, &fb.ApplicationID, &fb.FeedbackText, &fb.SectionsJSON,
		&fb.TextSource, &fb.PageCount, &fb.Model, &fb.CreatedAt, &fb.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &fb, nil
}
