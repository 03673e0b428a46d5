// Package router decides which file changes trigger a rebuild and announces each
// finished rebuild to connected clients.
package router

import (
	"context"
	"fmt"
	"iter"
	"path/filepath"
	"sync"
	"time"

	"go.trai.ch/jig/internal/core/domain"
	"go.trai.ch/jig/internal/core/ports"
	"go.trai.ch/jig/internal/engine/queue"
)

// Enqueuer accepts build operations for serialized execution.
type Enqueuer interface {
	Enqueue(op queue.Operation) *queue.Result
}

// Router turns path events into queued rebuilds followed by reload notifications.
type Router struct {
	globs    domain.GlobSet
	policy   domain.RefreshPolicy
	queue    Enqueuer
	builder  ports.Builder
	command  *domain.BuildCommand
	notifier ports.Notifier
	logger   ports.Logger
	fallback func(path string)

	mu sync.Mutex
	// observed holds the Results that already have a notification scheduled. A coalescing
	// queue hands the same Result to several events.
	observed map[*queue.Result]struct{}

	wg sync.WaitGroup
}

// New creates a Router. Every accepted event runs command through builder on q.
func New(
	globs domain.GlobSet,
	policy domain.RefreshPolicy,
	q Enqueuer,
	builder ports.Builder,
	command *domain.BuildCommand,
	notifier ports.Notifier,
	logger ports.Logger,
) *Router {
	return &Router{
		globs:    globs,
		policy:   policy,
		queue:    q,
		builder:  builder,
		command:  command,
		notifier: notifier,
		logger:   logger,
		observed: make(map[*queue.Result]struct{}),
	}
}

// SetFallback registers fn to receive create and write events for paths that do not
// trigger a rebuild. It must be called before Watch.
func (r *Router) SetFallback(fn func(path string)) {
	r.fallback = fn
}

// Classify reports whether a change to path should trigger a rebuild.
func (r *Router) Classify(path string) bool {
	return r.globs.Match(path)
}

// ShouldSuppressUpdate reports whether the incremental update for path must be skipped
// because the path gets a full rebuild and reload instead.
func (r *Router) ShouldSuppressUpdate(path string) bool {
	return r.Classify(path)
}

// OnPathEvent schedules a rebuild for path if it classifies.
//
// The build is enqueued before OnPathEvent returns, so builds run in event order.
// The notification that follows is sent asynchronously once the build settles and the
// configured delay has passed. A failed build is logged and still announced.
// Events that share a pending build are announced once, for the first path.
func (r *Router) OnPathEvent(ctx context.Context, path string) bool {
	if !r.Classify(path) {
		return false
	}
	abs := domain.NormalizePaths(r.globs.Root(), path)[0]

	start := time.Now()
	result := r.queue.Enqueue(func() error {
		return r.builder.Build(ctx, r.command)
	})
	if !r.observe(result) {
		return true
	}

	r.wg.Go(func() {
		defer r.release(result)
		r.notify(ctx, abs, start, result)
	})
	return true
}

// observe marks result as watched. It reports false if it already was.
func (r *Router) observe(result *queue.Result) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.observed[result]; ok {
		return false
	}
	r.observed[result] = struct{}{}
	return true
}

func (r *Router) release(result *queue.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.observed, result)
}

func (r *Router) notify(ctx context.Context, path string, start time.Time, result *queue.Result) {
	select {
	case <-result.Done():
	case <-ctx.Done():
		return
	}
	if err := result.Err(); err != nil {
		r.logger.Error(err)
	}
	elapsed := time.Since(start)

	if r.policy.Delay > 0 {
		timer := time.NewTimer(r.policy.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return
		}
	}

	r.logger.Announce(
		fmt.Sprintf("full reload for %s - build: %d ms", r.relative(path), elapsed.Milliseconds()),
		true,
	)
	r.notifier.Broadcast(r.policy.FullReload(path))
}

// Watch routes create and write events to OnPathEvent until events is exhausted.
// Events that do not classify go to the fallback, if any.
func (r *Router) Watch(ctx context.Context, events iter.Seq[ports.WatchEvent]) {
	for event := range events {
		if ctx.Err() != nil {
			return
		}
		if event.Operation != ports.OpCreate && event.Operation != ports.OpWrite {
			continue
		}
		if !r.OnPathEvent(ctx, event.Path) && r.fallback != nil {
			r.fallback(event.Path)
		}
	}
}

// Wait blocks until every scheduled notification has been sent or abandoned.
func (r *Router) Wait() {
	r.wg.Wait()
}

// relative returns the normalized path abs relative to the project root.
func (r *Router) relative(abs string) string {
	rel, err := filepath.Rel(r.globs.Root(), filepath.FromSlash(abs))
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}
