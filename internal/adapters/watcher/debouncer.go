package watcher

import (
	"context"
	"iter"
	"slices"
	"sync"
	"time"
	"unique"

	"go.trai.ch/jig/internal/core/ports"
)

// Debouncer collapses repeated events for the same path. Paths are released together
// once no new event arrived for the length of the window.
type Debouncer struct {
	mu       sync.Mutex
	pending  map[unique.Handle[string]]struct{}
	timer    *time.Timer
	window   time.Duration
	callback func(paths []string)
}

// NewDebouncer creates a debouncer that hands settled paths to callback in sorted order.
func NewDebouncer(window time.Duration, callback func(paths []string)) *Debouncer {
	return &Debouncer{
		pending:  make(map[unique.Handle[string]]struct{}),
		window:   window,
		callback: callback,
	}
}

// Add records path and restarts the window.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[unique.Make(path)] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	d.timer = nil
	paths := d.drainLocked()
	d.mu.Unlock()

	if len(paths) > 0 && d.callback != nil {
		d.callback(paths)
	}
}

// Flush releases pending paths immediately and waits for the callback. It does nothing
// when the window already expired and the timer is delivering.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		if !d.timer.Stop() {
			d.mu.Unlock()
			return
		}
		d.timer = nil
	}
	paths := d.drainLocked()
	d.mu.Unlock()

	if len(paths) > 0 && d.callback != nil {
		d.callback(paths)
	}
}

// Stop discards pending paths without calling back.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	clear(d.pending)
}

func (d *Debouncer) drainLocked() []string {
	paths := make([]string, 0, len(d.pending))
	for handle := range d.pending {
		paths = append(paths, handle.Value())
	}
	clear(d.pending)
	slices.Sort(paths)
	return paths
}

// Debounce wraps events so that create and write events are released as write events
// once their paths settled for window. Other operations pass through unchanged.
// Paths still pending when events ends are dropped.
func Debounce(ctx context.Context, events iter.Seq[ports.WatchEvent], window time.Duration) iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		settled := make(chan []string)
		d := NewDebouncer(window, func(paths []string) {
			select {
			case settled <- paths:
			case <-ctx.Done():
			}
		})
		defer d.Stop()

		source := make(chan ports.WatchEvent)
		go func() {
			defer close(source)
			for event := range events {
				select {
				case source <- event:
				case <-ctx.Done():
					return
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-source:
				if !ok {
					return
				}
				if event.Operation == ports.OpCreate || event.Operation == ports.OpWrite {
					d.Add(event.Path)
					continue
				}
				if !yield(event) {
					return
				}
			case paths := <-settled:
				for _, path := range paths {
					if !yield(ports.WatchEvent{Path: path, Operation: ports.OpWrite}) {
						return
					}
				}
			}
		}
	}
}
