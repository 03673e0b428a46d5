package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/jig/internal/core/domain"
)

// BuildObserver receives finished builds.
type BuildObserver interface {
	ObserveBuild(d time.Duration, failed bool)
}

// Bridge implements sdktrace.SpanProcessor, turning ended build spans into metrics.
type Bridge struct {
	observer BuildObserver
}

// NewBridge returns a new Bridge.
func NewBridge(observer BuildObserver) *Bridge {
	return &Bridge{observer: observer}
}

// OnStart does nothing. Builds are recorded once they end.
func (b *Bridge) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd is called when a span ends.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.observer == nil || s.Name() != domain.BuildSpanName {
		return
	}
	if !s.SpanContext().IsValid() {
		return
	}

	b.observer.ObserveBuild(s.EndTime().Sub(s.StartTime()), s.Status().Code == codes.Error)
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}
