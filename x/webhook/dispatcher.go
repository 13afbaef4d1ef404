package webhook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hmnpros/gateway/core"
)

// HandlerFunc processes one normalized event. Implementations report
// failure through the result, never by panicking or leaking errors.
type HandlerFunc func(ctx context.Context, event core.NormalizedEvent) core.HandlerResult

// Dispatcher routes normalized events to registered handlers by kind.
// Registration happens once at startup; the table is read-only during
// request processing.
type Dispatcher struct {
	handlers map[core.EventKind]HandlerFunc
	fallback HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[core.EventKind]HandlerFunc),
	}
}

func (d *Dispatcher) Register(kind core.EventKind, fn HandlerFunc) {
	d.handlers[kind] = fn
}

func (d *Dispatcher) RegisterDefault(fn HandlerFunc) {
	d.fallback = fn
}

// Dispatch invokes the handler for the event's kind, falling back to the
// default handler for unregistered kinds. A missing default means the
// event is logged and ignored. Panics inside handlers are contained
// here; nothing escapes the dispatcher boundary.
func (d *Dispatcher) Dispatch(ctx context.Context, event core.NormalizedEvent) (result core.HandlerResult) {
	ctx, span := tracer.Start(ctx, "Webhook.Dispatcher.Dispatch")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("handler panicked: %v", r)
			span.RecordError(err)
			slog.ErrorContext(ctx, "webhook handler panicked",
				slog.String("module", "webhook"),
				slog.String("eventKind", string(event.Kind)),
				slog.String("subjectId", event.SubjectID),
				slog.Any("panic", r),
			)
			result = core.HandlerResult{Success: false, SubjectID: event.SubjectID, Error: err.Error()}
		}
	}()

	fn, ok := d.handlers[event.Kind]
	if !ok {
		if d.fallback == nil {
			slog.InfoContext(ctx, "no handler registered for event, ignoring",
				slog.String("module", "webhook"),
				slog.String("eventKind", string(event.Kind)),
			)
			return core.HandlerResult{Success: true, SubjectID: event.SubjectID, Action: "ignored"}
		}
		fn = d.fallback
	}

	result = fn(ctx, event)
	if !result.Success {
		slog.ErrorContext(ctx, "webhook handler failed",
			slog.String("module", "webhook"),
			slog.String("eventKind", string(event.Kind)),
			slog.String("subjectId", event.SubjectID),
			slog.String("error", result.Error),
		)
	}
	return result
}
