package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/resume-screener/internal/services/screening"
)

// ErrQueueClosed is returned by Enqueue after Shutdown has started.
var ErrQueueClosed = errors.New("screening queue is closed")

// Job is one queued screening submission.
type Job struct {
	ApplicationID uuid.UUID
	Request       screening.Request
	SubmittedAt   time.Time
	RequestID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
