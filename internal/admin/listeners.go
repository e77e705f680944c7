package admin

import (
	"sort"
	"sync"
)

// KeyListener receives key names such as "enter" or "esc".
type KeyListener func(key string)

// Listeners is a key-press subscription registry. Each Attach hands back the
// matching detach func, so subscriptions can be tied to a lifetime.
type Listeners struct {
	mu   sync.Mutex
	next int
	fns  map[int]KeyListener
}

// Attach subscribes fn and returns a func that removes it. Calling the
// returned func more than once is a no-op.
func (l *Listeners) Attach(fn KeyListener) (detach func()) {
	if fn == nil {
		return func() {}
	}
	l.mu.Lock()
	if l.fns == nil {
		l.fns = make(map[int]KeyListener)
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

// Dispatch delivers key to every attached listener in attach order and
// returns how many were called.
func (l *Listeners) Dispatch(key string) int {
	l.mu.Lock()
	ids := make([]int, 0, len(l.fns))
	for id := range l.fns {
		ids = append(ids, id)
	}
	fns := make([]KeyListener, 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, l.fns[id])
	}
	l.mu.Unlock()

	// listeners may attach or detach while running
	for _, fn := range fns {
		fn(key)
	}
	return len(fns)
}

// Len returns the number of attached listeners.
func (l *Listeners) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}
