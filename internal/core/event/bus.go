package event

import (
	"reflect"
	"sync"
)

type queued struct {
	key reflect.Type
	ev  any
}

// Bus is a double-buffered event bus. Events emitted while a command is
// being applied become visible after the next SwapBuffers, so handlers never
// observe a half-applied session. Delivery follows emission order.
type Bus struct {
	mu       sync.Mutex // only protects handler registration
	front    []queued
	back     []queued
	handlers map[reflect.Type][]func(any)
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[reflect.Type][]func(any))}
}

func keyOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event into the back buffer.
func Emit[T any](b *Bus, event T) {
	b.back = append(b.back, queued{key: keyOf[T](), ev: event})
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := keyOf[T]()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// SwapBuffers rotates back->front and clears the new back buffer.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front[:0]
}

// Pending is the number of events waiting in the back buffer.
func (b *Bus) Pending() int { return len(b.back) }

// DispatchAll delivers all front-buffer events to their handlers and
// returns how many events were delivered.
func (b *Bus) DispatchAll() int {
	for _, q := range b.front {
		for _, h := range b.handlers[q.key] {
			h(q.ev)
		}
	}
	n := len(b.front)
	clear(b.front)
	b.front = b.front[:0]
	return n
}

// Flush swaps and dispatches until no more events are queued. Handlers may
// emit follow-up events; those are delivered in later rounds.
func (b *Bus) Flush() int {
	total := 0
	for b.Pending() > 0 {
		b.SwapBuffers()
		total += b.DispatchAll()
	}
	return total
}
