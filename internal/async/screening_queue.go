package async

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/resume-screener/constants"
	"github.com/joseph-ayodele/resume-screener/internal/common"
	"github.com/joseph-ayodele/resume-screener/internal/services/screening"
)

// ScreeningQueue runs submissions through a fixed pool of workers.
// Enqueue blocks when the buffer is full, which is the backpressure
// contract for the batch endpoint.
type ScreeningQueue struct {
	svc     *screening.Service
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu      sync.Mutex
	closed  bool
	status  map[uuid.UUID]constants.ScreeningStatus
	senders sync.WaitGroup // Enqueue calls past the closed check; Shutdown waits for them before closing ch
}

type Option func(*ScreeningQueue)

func WithWorkers(n int) Option {
	return func(q *ScreeningQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ScreeningQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithJobTimeout(d time.Duration) Option {
	return func(q *ScreeningQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewScreeningQueue(svc *screening.Service, logger *slog.Logger, opts ...Option) *ScreeningQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ScreeningQueue{
		svc:     svc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 64),
		status:  make(map[uuid.UUID]constants.ScreeningStatus),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ScreeningQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					q.setStatus(job.ApplicationID, constants.ScreeningRunning)
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					ctx = common.WithRequestID(ctx, job.RequestID)
					ctx = common.WithApplicationID(ctx, job.ApplicationID.String())
					_, err := q.svc.Screen(ctx, job.Request)
					cancel()

					if err != nil {
						q.setStatus(job.ApplicationID, constants.ScreeningFailed)
						q.logger.Error("screening failed", "worker_id", workerID, "application_id", job.ApplicationID, "error", err)
					} else {
						q.setStatus(job.ApplicationID, constants.ScreeningDone)
						q.logger.Info("screening succeeded", "worker_id", workerID, "application_id", job.ApplicationID)
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ScreeningQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("cannot enqueue: queue is shutting down", "application_id", job.ApplicationID)
		return ErrQueueClosed
	}
	q.status[job.ApplicationID] = constants.ScreeningQueued
	q.senders.Add(1)
	q.mu.Unlock()
	defer q.senders.Done()

	select {
	case q.ch <- job:
		q.logger.Info("queued screening", "application_id", job.ApplicationID)
	default:
		q.logger.Warn("queue full, applying backpressure", "application_id", job.ApplicationID)
		q.ch <- job
	}
	return nil
}

// Status reports the last observed state for an application, or false if
// it was never enqueued on this instance.
func (q *ScreeningQueue) Status(applicationID uuid.UUID) (constants.ScreeningStatus, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	st, ok := q.status[applicationID]
	return st, ok
}

func (q *ScreeningQueue) setStatus(id uuid.UUID, st constants.ScreeningStatus) {
	q.mu.Lock()
	q.status[id] = st
	q.mu.Unlock()
}

func (q *ScreeningQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	// A sender blocked on a full buffer finishes once a worker drains a
	// slot; only then is the channel safe to close.
	q.senders.Wait()
	close(q.ch)

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
