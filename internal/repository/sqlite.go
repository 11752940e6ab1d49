package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/resume-screener/internal/common"
	"github.com/joseph-ayodele/resume-screener/internal/entity"
)

// SQLiteFeedbackRepository is a file-backed store for local one-shot runs.
// It satisfies the same contract as the postgres repository.
type SQLiteFeedbackRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// sqliteTimeLayout is fixed-width, unlike RFC3339Nano which trims trailing
// fractional zeros; lexicographic comparison on the TEXT column must agree
// with chronological order for the range filters and ORDER BY.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const sqliteFeedbackSchema = `
CREATE TABLE IF NOT EXISTS screening_feedback (
	id             TEXT PRIMARY KEY,
	application_id TEXT NOT NULL UNIQUE,
	feedback_text  TEXT NOT NULL,
	sections       BLOB,
	text_source    TEXT NOT NULL DEFAULT '',
	page_count     INTEGER NOT NULL DEFAULT 0,
	model          TEXT NOT NULL DEFAULT '',
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
)`

func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteFeedbackRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.DatabaseError(err, "failed to open sqlite store")
	}
	if _, err := db.ExecContext(ctx, sqliteFeedbackSchema); err != nil {
		_ = db.Close()
		return nil, common.DatabaseError(err, "failed to ensure sqlite schema")
	}
	return &SQLiteFeedbackRepository{db: db, logger: logger}, nil
}

func (r *SQLiteFeedbackRepository) Close() error {
	return r.db.Close()
}

const sqliteUpsertSQL = `
INSERT INTO screening_feedback
	(id, application_id, feedback_text, sections, text_source, page_count, model, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (application_id) DO UPDATE SET
	feedback_text = excluded.feedback_text,
	sections      = excluded.sections,
	text_source   = excluded.text_source,
	page_count    = excluded.page_count,
	model         = excluded.model,
	updated_at    = excluded.updated_at`

func (r *SQLiteFeedbackRepository) Upsert(ctx context.Context, req *UpsertFeedbackRequest) (*entity.Feedback, error) {
	now := time.Now().UTC().Format(sqliteTimeLayout)
	_, err := r.db.ExecContext(ctx, sqliteUpsertSQL,
		uuid.NewString(), req.ApplicationID.String(), req.FeedbackText, req.SectionsJSON,
		req.TextSource, req.PageCount, req.Model, now, now)
	if err != nil {
		r.logger.Error("failed to upsert feedback", "application_id", req.ApplicationID, "error", err)
		return nil, common.DatabaseError(err, "failed to upsert feedback")
	}
	return r.GetByApplicationID(ctx, req.ApplicationID)
}

const sqliteGetSQL = `
SELECT id, application_id, feedback_text, sections, text_source, page_count, model, created_at, updated_at
FROM screening_feedback
WHERE application_id = ?`

func (r *SQLiteFeedbackRepository) GetByApplicationID(ctx context.Context, applicationID uuid.UUID) (*entity.Feedback, error) {
	fb, err := scanSQLiteFeedback(r.db.QueryRowContext(ctx, sqliteGetSQL, applicationID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		r.logger.Error("failed to get feedback", "application_id", applicationID, "error", err)
		return nil, common.DatabaseError(err, "failed to get feedback")
	}
	return fb, nil
}

func (r *SQLiteFeedbackRepository) ListFeedback(ctx context.Context, fromDate, toDate *time.Time) ([]*entity.Feedback, error) {
	q := `SELECT id, application_id, feedback_text, sections, text_source, page_count, model, created_at, updated_at
FROM screening_feedback WHERE 1=1`
	args := make([]any, 0, 2)
	if fromDate != nil {
		q += ` AND updated_at >= ?`
		args = append(args, fromDate.UTC().Format(sqliteTimeLayout))
	}
	if toDate != nil {
		q += ` AND updated_at <= ?`
		args = append(args, toDate.UTC().Format(sqliteTimeLayout))
	}
	q += ` ORDER BY updated_at`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list feedback", "error", err)
		return nil, common.DatabaseError(err, "failed to list feedback")
	}
	defer rows.Close()

	var result []*entity.Feedback
	for rows.Next() {
		fb, err := scanSQLiteFeedback(rows)
		if err != nil {
			return nil, common.DatabaseError(err, "failed to scan feedback row")
		}
		result = append(result, fb)
	}
	return result, rows.Err()
}

func scanSQLiteFeedback(row rowScanner) (*entity.Feedback, error) {
	var (
		fb                          entity.Feedback
		id, appID, created, updated string
	)
	err := row.Scan(&id, &appID, &fb.FeedbackText, &fb.SectionsJSON,
		&fb.TextSource, &fb.PageCount, &fb.Model, &created, &updated)
	if err != nil {
		return nil, err
	}
	if fb.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if fb.ApplicationID, err = uuid.Parse(appID); err != nil {
		return nil, err
	}
	if fb.CreatedAt, err = time.Parse(sqliteTimeLayout, created); err != nil {
		return nil, err
	}
	if fb.UpdatedAt, err = time.Parse(sqliteTimeLayout, updated); err != nil {
		return nil, err
	}
	return &fb, nil
}
