// guard.go provides Guard, the default FatalEventSource, which turns panics
// in goroutines and failed background tasks into fatal events.

package flytrap

import (
	"sync"
)

// DefaultGuard is the process-wide fatal-event source used by the
// package-level Go, GoErr, Recover and Reject helpers.
var DefaultGuard = NewGuard()

// Guard publishes recovered panics and task failures to its subscribers.
// With no subscriber, a recovered panic is re-raised so the process behaves
// as if the Guard were not there.
type Guard struct {
	mu       sync.RWMutex
	handlers map[uint64]FatalHandler
	nextID   uint64
}

// NewGuard creates a Guard with no subscribers.
func NewGuard() *Guard {
	return &Guard{handlers: make(map[uint64]FatalHandler)}
}

// Subscribe registers h and returns a function that removes it.
func (g *Guard) Subscribe(h FatalHandler) func() {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.handlers[id] = h
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.handlers, id)
			g.mu.Unlock()
		})
	}
}

// Go runs fn on a new goroutine; a panic in fn becomes an uncaught event.
func (g *Guard) Go(fn func()) {
	go func() {
		defer g.Recover()
		fn()
	}()
}

// GoErr runs fn on a new goroutine; a non-nil error returned by fn becomes
// an unhandled rejection and a panic becomes an uncaught event.
func (g *Guard) GoErr(fn func() error) {
	go func() {
		defer g.Recover()
		if err := fn(); err != nil {
			g.Reject(err)
		}
	}()
}

// Recover must be deferred directly:
//
//	defer guard.Recover()
//
// It publishes a recovered panic as an uncaught event and does not re-panic
// unless the Guard has no subscribers.
func (g *Guard) Recover() {
	if r := recover(); r != nil {
		g.handlePanic(r)
	}
}

// Reject publishes reason as an unhandled rejection. It reports whether any
// subscriber received it.
func (g *Guard) Reject(reason any) bool {
	handlers := g.snapshot()
	if len(handlers) == 0 {
		return false
	}
	stack := captureStack()
	for _, h := range handlers {
		h.HandleRejection(reason, stack)
	}
	return true
}

func (g *Guard) handlePanic(recovered any) {
	handlers := g.snapshot()
	if len(handlers) == 0 {
		panic(recovered)
	}
	err := asError(recovered)
	stack := captureStack()
	for _, h := range handlers {
		h.HandleUncaught(err, stack)
	}
}

func (g *Guard) snapshot() []FatalHandler {
	g.mu.RLock()
	defer g.mu.RUnlock()
	handlers := make([]FatalHandler, 0, len(g.handlers))
	for _, h := range g.handlers {
		handlers = append(handlers, h)
	}
	return handlers
}

// Go runs fn on a new goroutine guarded by DefaultGuard.
func Go(fn func()) {
	DefaultGuard.Go(fn)
}

// GoErr runs fn on a new goroutine guarded by DefaultGuard.
func GoErr(fn func() error) {
	DefaultGuard.GoErr(fn)
}

// Recover is Guard.Recover for DefaultGuard. It must be deferred directly.
func Recover() {
	if r := recover(); r != nil {
		DefaultGuard.handlePanic(r)
	}
}

// Reject publishes reason to DefaultGuard's subscribers.
func Reject(reason any) bool {
	return DefaultGuard.Reject(reason)
}
