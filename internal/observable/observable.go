// Package observable provides a value holder that replays its current value
// to every new subscriber and then streams each subsequent change.
package observable

import "sync"

// Value holds the latest T and notifies subscribers on every Set.
// The zero value is not usable; create instances with New.
type Value[T any] struct {
	mu      sync.Mutex
	current T
	nextID  int
	subs    map[int]func(T)
	order   []int
}

// New returns a Value initialised with initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{
		current: initial,
		subs:    make(map[int]func(T)),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Set stores val and delivers it to every subscriber in registration order.
// Delivery happens under the value's lock, so subscribers must not call Set
// or Subscribe on the same Value.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.current = val
	for _, id := range v.order {
		v.subs[id](val)
	}
}

// Update applies fn to the current value and publishes the result.
func (v *Value[T]) Update(fn func(T) T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.current = fn(v.current)
	for _, id := range v.order {
		v.subs[id](v.current)
	}
}

// Subscribe registers fn, calls it immediately with the current value and
// then on every change. The returned function removes the subscription.
func (v *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	v.order = append(v.order, id)

	fn(v.current)

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()

			delete(v.subs, id)
			for i, sid := range v.order {
				if sid == id {
					v.order = append(v.order[:i], v.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Stream is a fan-out event source without replay, used for one-shot events
// such as notifications.
type Stream[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(T)
	order  []int
}

// NewStream returns an empty Stream.
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{subs: make(map[int]func(T))}
}

// Publish delivers event to the current subscribers.
func (s *Stream[T]) Publish(event T) {
	s.mu.Lock()
	handlers := make([]func(T), 0, len(s.order))
	for _, id := range s.order {
		handlers = append(handlers, s.subs[id])
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}

// Subscribe registers fn for future events.
func (s *Stream[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			delete(s.subs, id)
			for i, sid := range s.order {
				if sid == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}
