package api

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName       = "taskboard-api/api"
	tasksEventName   = "tasks.fetch"
	tasksEventDomain = "taskboard"
	tasksRoute       = "/api/tasks"
)

type taskRequestMetrics struct {
	logger         *log.Logger
	span           trace.Span
	start          time.Time
	fetchDuration  time.Duration
	encodeDuration time.Duration
	tasksReturned  int
	errorStage     string
}

// newTaskRequestMetrics starts a span for the task-list read path and
// returns the recorder along with the span context the request should
// continue with.
func newTaskRequestMetrics(ctx context.Context, logger *log.Logger) (*taskRequestMetrics, context.Context) {
	m := &taskRequestMetrics{logger: logger, start: time.Now()}
	spanCtx, span := otel.Tracer(tracerName).Start(ctx, "GET "+tasksRoute)
	m.span = span
	return m, spanCtx
}

func (m *taskRequestMetrics) ObserveFetch(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.fetchDuration = duration
}

func (m *taskRequestMetrics) ObserveEncode(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.encodeDuration = duration
}

func (m *taskRequestMetrics) SetTasksReturned(count int) {
	if count < 0 {
		count = 0
	}
	m.tasksReturned = count
}

func (m *taskRequestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

// Log finalizes the span and emits one structured observability event for
// the request.
func (m *taskRequestMetrics) Log(status int, err error) {
	if m == nil {
		return
	}

	if m.span != nil {
		m.span.SetAttributes(
			attribute.String("http.route", tasksRoute),
			attribute.Int("http.status_code", status),
			attribute.Int("taskboard.tasks.returned", m.tasksReturned),
		)
		if m.errorStage != "" {
			m.span.SetAttributes(attribute.String("taskboard.tasks.error_stage", m.errorStage))
		}
		if err != nil {
			m.span.RecordError(err)
			m.span.SetStatus(codes.Error, err.Error())
		} else {
			m.span.SetStatus(codes.Ok, "")
		}
		m.span.End()
	}

	if m.logger == nil {
		return
	}

	attrs := map[string]any{
		"http.route":               tasksRoute,
		"http.status_code":         status,
		"taskboard.tasks.returned": m.tasksReturned,
		"taskboard.tasks.total_ms": durationToMillis(time.Since(m.start)),
	}
	if m.fetchDuration > 0 {
		attrs["taskboard.tasks.fetch_ms"] = durationToMillis(m.fetchDuration)
	}
	if m.encodeDuration > 0 {
		attrs["taskboard.tasks.encode_ms"] = durationToMillis(m.encodeDuration)
	}
	if m.errorStage != "" {
		attrs["taskboard.tasks.error_stage"] = m.errorStage
	}
	if err != nil {
		attrs["error"] = err.Error()
	}

	m.logger.WithFields(log.Fields{
		"event.name":   tasksEventName,
		"event.domain": tasksEventDomain,
		"attributes":   attrs,
	}).Info("observability.event")
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
