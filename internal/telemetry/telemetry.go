// Package telemetry is the ambient observability stack: OpenTelemetry
// tracing for the uploader's cycles and Prometheus counters/gauges for the
// capture and upload paths.
//
// Tracer setup is adapted from the teacher's internal/telemetry/
// telemetry.go (stdouttrace exporter, tracecontext propagator). The
// teacher prints straight to stdout "for development"; here the exporter
// writes through internal/xlog instead, since a deployed node's only
// console is whatever is attached to its serial/log sink, not a terminal.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/daugt/trailsense-edge/internal/xlog"
)

// logWriter adapts internal/xlog to the io.Writer the stdout exporter
// expects.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	xlog.Infof("%s", p)
	return len(p), nil
}

// InitTracer initializes the OpenTelemetry tracer provider for this node.
// It returns a shutdown function that should be called before the process
// exits.
func InitTracer(edgeID string) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(logWriter{}),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName("trailsense-edge"),
			semconv.ServiceInstanceID(edgeID),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// Tracer returns the tracer the uploader uses for its cycle and
// post-attempt spans.
func Tracer() trace.Tracer {
	return otel.Tracer("trailsense-edge/uploader")
}
