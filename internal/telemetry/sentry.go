// Package telemetry wraps Sentry tracing for the QA pipeline. HTTP
// transactions are opened by the server middleware; services attach child
// spans and error captures through the helpers here.
package telemetry

import (
	"context"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
)

const serviceName = "studyhall"

// Config holds the Sentry initialization settings.
type Config struct {
	DSN              string
	Environment      string
	TracesSampleRate float64
	Debug            bool
}

// Init initializes Sentry with tracing enabled and returns a shutdown
// function that flushes pending events. With an empty DSN every helper in
// this package degrades to a no-op.
func Init(cfg Config) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.TracesSampleRate == 0 {
		cfg.TracesSampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		EnableTracing:    true,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
		ServerName:       serviceName,
		TracesSampler: sentry.TracesSampler(func(ctx sentry.SamplingContext) float64 {
			// health probes are never sampled
			if ctx.Span.Name == "GET /healthz" || ctx.Span.Op == "http.server GET /healthz" {
				return 0.0
			}
			// child spans follow their parent's sampling decision
			var emptySpanID sentry.SpanID
			if ctx.Span.ParentSpanID != emptySpanID {
				if ctx.Span.Sampled.Bool() {
					return 1.0
				}
				return 0.0
			}
			return cfg.TracesSampleRate
		}),
	})
	if err != nil {
		log.Printf("sentry: failed to initialize (continuing without tracing): %v", err)
		return func() {}, nil
	}

	log.Printf("sentry: tracing initialized (environment: %s, sample_rate: %.2f)", cfg.Environment, cfg.TracesSampleRate)
	return func() { sentry.Flush(5 * time.Second) }, nil
}

// SpanAttributes carries the identifiers pipeline spans are tagged with.
// Empty fields are skipped.
type SpanAttributes struct {
	CourseID   string
	UserID     string
	QALogID    string
	DocumentID string
	Operation  string
}

func (a SpanAttributes) apply(span *sentry.Span) {
	if a.CourseID != "" {
		span.SetTag("course_id", a.CourseID)
	}
	if a.UserID != "" {
		span.SetTag("user_id", a.UserID)
	}
	if a.QALogID != "" {
		span.SetTag("qa_log_id", a.QALogID)
	}
	if a.DocumentID != "" {
		span.SetTag("document_id", a.DocumentID)
	}
	if a.Operation != "" {
		span.SetData("operation", a.Operation)
	}
}

// Span is a thin wrapper so services need no sentry import of their own.
type Span struct {
	inner *sentry.Span
}

// End finishes the span.
func (s *Span) End() {
	if s.inner != nil {
		s.inner.Finish()
	}
}

// SetError marks the span failed and captures the exception.
func (s *Span) SetError(err error) {
	if s.inner == nil {
		return
	}
	s.inner.Status = sentry.SpanStatusInternalError
	if hub := sentry.GetHubFromContext(s.inner.Context()); hub != nil {
		hub.CaptureException(err)
	}
}

// StartSpan opens a child span under the transaction in ctx, or a fresh
// transaction when there is none (worker loops, CLI paths).
func StartSpan(ctx context.Context, name string, attrs SpanAttributes) (context.Context, *Span) {
	parent := sentry.SpanFromContext(ctx)

	var span *sentry.Span
	if parent != nil {
		span = parent.StartChild(name)
	} else {
		span = sentry.StartSpan(ctx, name, sentry.WithTransactionName(name))
	}

	attrs.apply(span)

	return span.Context(), &Span{inner: span}
}

// CaptureError reports an error against the hub in ctx, falling back to the
// global hub.
func CaptureError(ctx context.Context, err error) {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}

// AddBreadcrumb records a pipeline event on the request scope, giving
// captured errors their trail (provider fallbacks, degraded confidence
// paths).
func AddBreadcrumb(ctx context.Context, category, message string) {
	breadcrumb := &sentry.Breadcrumb{
		Type:      "default",
		Category:  category,
		Message:   message,
		Level:     sentry.LevelInfo,
		Timestamp: time.Now(),
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.AddBreadcrumb(breadcrumb, nil)
		return
	}
	sentry.AddBreadcrumb(breadcrumb)
}
