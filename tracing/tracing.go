package tracing

import (
	"context"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/viant/jobrunner"

// Init configures OpenTelemetry with the stdout exporter writing to
// outputFile. An empty outputFile leaves tracing disabled. The first
// successful initialisation wins.
func Init(serviceName, serviceVersion, outputFile string) error {
	if outputFile == "" {
		return nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	return initWithWriter(serviceName, serviceVersion, f)
}

func initWithWriter(serviceName, serviceVersion string, w io.Writer) error {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return err
	}
	return installProvider(serviceName, serviceVersion, exporter)
}

// InitWithExporter configures OpenTelemetry using the supplied SpanExporter.
func InitWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	return installProvider(serviceName, serviceVersion, exporter)
}

var (
	providerOnce sync.Once
	providerErr  error
	provider     *sdktrace.TracerProvider
)

func installProvider(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	if exporter == nil {
		return nil
	}
	providerOnce.Do(func() {
		res, err := resource.New(context.Background(),
			resource.WithAttributes(
				attribute.String("service.name", serviceName),
				attribute.String("service.version", serviceVersion),
			),
		)
		if err != nil {
			providerErr = err
			return
		}
		provider = sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(provider)
	})
	return providerErr
}

// Shutdown flushes and stops the installed provider, if any.
func Shutdown(ctx context.Context) error {
	if provider == nil {
		return nil
	}
	return provider.Shutdown(ctx)
}

// Attribute keys recorded on run spans.
const (
	RunIDKey   = attribute.Key("jobrunner.run_id")
	WorkDirKey = attribute.Key("jobrunner.work_dir")
	TaskKey    = attribute.Key("jobrunner.task")
	PhaseKey   = attribute.Key("jobrunner.phase")
)

// Span wraps an OpenTelemetry span. A nil *Span is valid and does nothing.
type Span struct {
	span trace.Span
}

// Set records string attributes on the span. Empty values are skipped.
func (s *Span) Set(key attribute.Key, value string) *Span {
	if s == nil || value == "" {
		return s
	}
	s.span.SetAttributes(key.String(value))
	return s
}

// SetStatus marks the span failed when err is set, otherwise OK.
func (s *Span) SetStatus(err error) {
	if s == nil {
		return
	}
	if err == nil {
		s.span.SetStatus(codes.Ok, "")
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// StartSpan starts an internal span named name as a child of any span in ctx.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
	return ctx, &Span{span: span}
}

// StartPhase starts the span of one run phase.
func StartPhase(ctx context.Context, phase string) (context.Context, *Span) {
	ctx, span := StartSpan(ctx, "jobrunner."+phase)
	return ctx, span.Set(PhaseKey, phase)
}

// EndSpan records the status for err and ends the span.
func EndSpan(span *Span, err error) {
	if span == nil {
		return
	}
	span.SetStatus(err)
	span.span.End()
}
