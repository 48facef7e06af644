package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskboard/taskboard/internal/api/metrics"
	"github.com/taskboard/taskboard/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes projection-refresh jobs to a fixed set of workers using
// consistent hashing on the project id, so refreshes of the same project are
// serialized and never race each other.
type Dispatcher struct {
	workers   []chan string
	refresher ports.ProjectionRefresher
	log       zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, refresher ports.ProjectionRefresher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan string, numWorkers),
		refresher: refresher,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a project id to the worker responsible for it. Non-blocking
// up to channelBuffer capacity; a full shard drops the job, the TTL on the
// cache entry bounds the resulting staleness.
func (d *Dispatcher) Enqueue(projectID string) {
	i := d.shardIndex(projectID)
	select {
	case d.workers[i] <- projectID:
		metrics.ProjectionQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
	default:
		d.log.Warn().
			Str("project_id", projectID).
			Int("worker_id", i).
			Msg("refresh queue full, job dropped")
	}
}

// shardIndex maps a project id deterministically to a worker index.
func (d *Dispatcher) shardIndex(projectID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(projectID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case projectID, ok := <-ch:
			if !ok {
				return
			}
			metrics.ProjectionQueueDepth.WithLabelValues(label).Set(float64(len(ch)))

			start := time.Now()
			result := "ok"
			if err := d.refresher.Refresh(ctx, projectID); err != nil {
				result = "error"
				d.log.Error().Err(err).
					Str("project_id", projectID).
					Int("worker_id", id).
					Msg("projection refresh failed")
			}
			metrics.ProjectionRefreshDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
		}
	}
}
