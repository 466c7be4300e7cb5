package driven

import (
	"context"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

// ReasoningAgent is a tool-using language model that audits one context window.
//
// The agent may call the style-guide search tool any number of times before
// answering. Implementations must report every tool call in the returned trace
// and should wrap connectivity failures in domain.ErrAgentUnavailable.
type ReasoningAgent interface {
	// Invoke runs the agent on the given input and returns its final text and
	// the tool invocations it made. The sink may be nil.
	Invoke(ctx context.Context, input string, sink StatusSink) (string, []domain.ToolInvocation, error)
}

// Pinger is implemented by agents that can verify their runtime is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusSink receives human-readable progress messages.
// Notifications are fire-and-forget and never affect control flow.
type StatusSink interface {
	Status(message string)
}

// StatusFunc adapts a function to StatusSink.
type StatusFunc func(message string)

// Status calls f(message).
func (f StatusFunc) Status(message string) {
	f(message)
}

// Notify sends message to sink if it is non-nil.
func Notify(sink StatusSink, message string) {
	if sink != nil {
		sink.Status(message)
	}
}

// ProgressSink is a StatusSink that also tracks the position within a run.
type ProgressSink interface {
	StatusSink
	Progress(current, total int)
}

// NotifyProgress reports that item current of total is starting, if sink
// tracks progress.
func NotifyProgress(sink StatusSink, current, total int) {
	if p, ok := sink.(ProgressSink); ok {
		p.Progress(current, total)
	}
}
