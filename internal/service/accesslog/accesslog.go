package accesslog

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Mahendrakumar19/streamgate/internal/logger"
	"github.com/Mahendrakumar19/streamgate/internal/models"
)

const defaultQueueSize = 256

// Record of one served asset
type Record struct {
	UserID    int64
	CourseID  int64
	ModuleID  int64
	AssetType models.AssetType
	FileName  string
	At        time.Time
}

// Recorder accepts access records without ever blocking the response path.
// Records go into a bounded queue drained by a background goroutine,
// on overflow they are dropped and counted.
type Recorder struct {
	records chan Record
	dropped atomic.Int64
	logger  logger.Logger
}

func New(logger logger.Logger) *Recorder {
	return &Recorder{
		records: make(chan Record, defaultQueueSize),
		logger:  logger,
	}
}

// Record enqueues without blocking, drops when the queue is full
func (r *Recorder) Record(rec Record) {
	select {
	case r.records <- rec:
	default:
		r.dropped.Add(1)
	}
}

// Dropped returns how many records were lost to queue overflow
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Drain starts the background writer and returns a channel that closes when
// it has flushed everything after ctx is cancelled
func (r *Recorder) Drain(ctx context.Context) <-chan struct{} {
	idleStopped := make(chan struct{})
	r.logger.Debug("Starting access log drain", "queue_size", cap(r.records))

	go func() {
		defer close(idleStopped)

		for {
			select {
			case <-ctx.Done():
				// Flush whatever is queued, then stop
				for {
					select {
					case rec := <-r.records:
						r.write(rec)
					default:
						if n := r.dropped.Load(); n > 0 {
							r.logger.Warn("Access log records dropped", "count", n)
						}
						r.logger.Debug("Access log drain stopped")
						return
					}
				}

			case rec := <-r.records:
				r.write(rec)
			}
		}
	}()

	return idleStopped
}

func (r *Recorder) write(rec Record) {
	r.logger.Info("Video asset served",
		"user_id", rec.UserID,
		"course_id", rec.CourseID,
		"module_id", rec.ModuleID,
		"asset_type", string(rec.AssetType),
		"file", rec.FileName,
		"at", rec.At.Format(time.RFC3339),
	)
}
