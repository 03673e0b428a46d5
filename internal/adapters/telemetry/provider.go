package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Setup installs a global tracer provider whose spans feed observer.
// The returned function flushes and shuts the provider down.
func Setup(observer BuildObserver) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewBridge(observer)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}
