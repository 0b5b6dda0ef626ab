package async

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/tabilog-dev/receipt-engine/internal/core"
)

// ScanJob is one receipt image waiting for background processing.
type ScanJob struct {
	ID           uuid.UUID
	Image        []byte
	ContentType  string
	ExchangeRate float64
	SubmittedAt  time.Time
}

// ScanQueue fans scan jobs out to a fixed pool of workers. Enqueue blocks when
// the buffer is full rather than dropping work.
type ScanQueue struct {
	proc    *core.Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan ScanJob
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ScanQueue)

func WithWorkers(n int) Option {
	return func(q *ScanQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ScanQueue) {
		if n > 0 {
			q.ch = make(chan ScanJob, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ScanQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewScanQueue(proc *core.Processor, logger *slog.Logger, opts ...Option) *ScanQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ScanQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 2 * time.Minute,
		ch:      make(chan ScanJob, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ScanQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("scan worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					rec, err := q.proc.ProcessScan(ctx, job.Image, job.ExchangeRate)
					cancel()

					if err != nil {
						q.logger.Error("scan processing failed", "worker_id", workerID, "job_id", job.ID, "error", err)
					} else {
						q.logger.Info("scan processed", "worker_id", workerID, "job_id", job.ID, "record_id", rec.ID)
					}
				}

				q.logger.Info("scan worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ScanQueue) Enqueue(_ context.Context, job ScanJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "job_id", job.ID)
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued scan", "job_id", job.ID, "bytes", len(job.Image))
	default:
		q.logger.Warn("queue full, applying backpressure", "job_id", job.ID)
		q.ch <- job
	}
	return nil
}

func (q *ScanQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
