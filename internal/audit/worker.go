package audit

import (
	"context"
)

// Sink consumes mirrored audit entries. Satisfied by Publisher.
type Sink interface {
	Publish(ctx context.Context, entry Entry)
}

// Worker drains the mirror inbox and hands entries to the sink. It keeps
// background publishing off the request path without wiring queue
// implementations into the service.
type Worker struct {
	sink  Sink
	inbox <-chan Entry
}

func NewWorker(sink Sink, inbox <-chan Entry) *Worker {
	return &Worker{sink: sink, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case entry := <-w.inbox:
			w.sink.Publish(ctx, entry)
		}
	}
}
