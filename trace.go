package dash_interpreter

import (
	"context"
	"sync"

	"github.com/tokenized/logger"
)

// Tracer receives diagnostic messages while scripts are verified.
type Tracer interface {
	AddMessage(message string)
}

// TraceRecorder collects trace messages. Record collects the messages of a nested operation
// separately while still adding them to the recorder.
type TraceRecorder struct {
	messages []string

	lock sync.Mutex
}

func NewTraceRecorder() *TraceRecorder {
	return &TraceRecorder{}
}

func (r *TraceRecorder) AddMessage(message string) {
	r.lock.Lock()
	r.messages = append(r.messages, message)
	r.lock.Unlock()
}

// Messages returns a copy of all recorded messages.
func (r *TraceRecorder) Messages() []string {
	r.lock.Lock()
	defer r.lock.Unlock()

	result := make([]string, len(r.messages))
	copy(result, r.messages)
	return result
}

// LastMessage returns the most recent message or an empty string.
func (r *TraceRecorder) LastMessage() string {
	r.lock.Lock()
	defer r.lock.Unlock()

	if len(r.messages) == 0 {
		return ""
	}
	return r.messages[len(r.messages)-1]
}

// Record calls f with a new recorder and returns the messages added to it. The messages are also
// appended to r.
func (r *TraceRecorder) Record(f func(Tracer)) []string {
	nested := NewTraceRecorder()
	f(nested)

	result := nested.Messages()

	r.lock.Lock()
	r.messages = append(r.messages, result...)
	r.lock.Unlock()

	return result
}

// LogTracer writes trace messages to the logger in the context at the verbose level.
type LogTracer struct {
	ctx context.Context
}

func NewLogTracer(ctx context.Context) *LogTracer {
	return &LogTracer{ctx: ctx}
}

func (t *LogTracer) AddMessage(message string) {
	logger.Verbose(t.ctx, "%s", message)
}

type nopTracer struct{}

func (nopTracer) AddMessage(string) {}
