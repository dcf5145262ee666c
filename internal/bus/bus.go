// Package bus provides the synchronous command/event dispatch that serializes
// every container-tree mutation. Commands route to exactly one handler keyed
// by the command's runtime type; events fan out to zero or more subscribers.
// Dispatch is single-threaded: handlers run on the caller's goroutine, and
// nested Invoke calls complete before the outer call resumes.
package bus

import (
	"fmt"
	"log/slog"
	"reflect"
)

// Response is the result of a command invocation. It is minimally "ok" with
// room for failure payloads later.
type Response struct {
	Ok bool
}

// Ok is the standard success response.
var Ok = Response{Ok: true}

// Bus dispatches typed commands and events. Not safe for concurrent use; the
// daemon loop is responsible for serializing callers onto one goroutine.
type Bus struct {
	handlers    map[reflect.Type]func(any) Response
	subscribers map[reflect.Type][]func(any)
	logger      *slog.Logger
}

// New returns an empty bus. The logger is used to report recovered subscriber
// panics during Emit.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		handlers:    make(map[reflect.Type]func(any) Response),
		subscribers: make(map[reflect.Type][]func(any)),
		logger:      logger,
	}
}

// Handle registers the single handler for command type C. Registering a
// second handler for the same type is a wiring bug and panics.
func Handle[C any](b *Bus, fn func(C) Response) {
	t := reflect.TypeOf((*C)(nil)).Elem()
	if _, exists := b.handlers[t]; exists {
		panic(fmt.Sprintf("bus: duplicate handler for %v", t))
	}
	b.handlers[t] = func(cmd any) Response { return fn(cmd.(C)) }
}

// Invoke routes a command to its registered handler and returns the response.
// The handler runs synchronously; handlers may Invoke further commands, which
// nest on the call stack. A command type with no handler is a broken contract
// between components and panics.
func (b *Bus) Invoke(cmd any) Response {
	t := reflect.TypeOf(cmd)
	handler, ok := b.handlers[t]
	if !ok {
		panic(fmt.Sprintf("bus: no handler registered for command %v", t))
	}
	return handler(cmd)
}

// Subscribe registers a handler for event type E. Subscribers are notified in
// subscription order.
func Subscribe[E any](b *Bus, fn func(E)) {
	t := reflect.TypeOf((*E)(nil)).Elem()
	b.subscribers[t] = append(b.subscribers[t], func(ev any) { fn(ev.(E)) })
}

// Emit notifies all subscribers of the event, synchronously and in
// subscription order. Isolation policy: a panicking subscriber is recovered
// and logged, and delivery continues to the remaining subscribers — one
// misbehaving consumer must not starve the others.
func (b *Bus) Emit(event any) {
	t := reflect.TypeOf(event)
	for _, fn := range b.subscribers[t] {
		b.deliver(t, fn, event)
	}
}

func (b *Bus) deliver(t reflect.Type, fn func(any), event any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event subscriber panicked", "event", t.String(), "panic", r)
		}
	}()
	fn(event)
}
