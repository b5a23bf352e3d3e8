// hooks.go installs the client on a fatal-event source and dispatches
// fatal events to detached deliveries.

package flytrap

import (
	"context"
	"log/slog"
	"sync"
)

// FatalHandler receives fatal events from a FatalEventSource.
// Handlers must return quickly; they run on the failing goroutine.
type FatalHandler interface {
	// HandleUncaught is called for a recovered panic.
	HandleUncaught(err error, stack string)

	// HandleRejection is called when a detached task fails with reason,
	// which may be an error or any other value.
	HandleRejection(reason any, stack string)
}

// FatalEventSource is the process-wide channel of uncaught panics and
// unhandled task failures. Guard is the default implementation.
type FatalEventSource interface {
	Subscribe(h FatalHandler) (unsubscribe func())
}

// Install subscribes the client to src. It returns true when the client
// moved from uninstalled to installed, and false when it was already
// installed, in which case the call is a no-op and src is ignored.
// A nil src means DefaultGuard.
func (c *Client) Install(src FatalEventSource) bool {
	if src == nil {
		src = DefaultGuard
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unsubscribe != nil {
		c.logger.Debug("hooks already installed")
		return false
	}
	c.unsubscribe = src.Subscribe(dispatcher{c: c})
	return true
}

// Uninstall removes the client's subscription. It returns false when the
// client was not installed.
func (c *Client) Uninstall() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unsubscribe == nil {
		return false
	}
	c.unsubscribe()
	c.unsubscribe = nil
	return true
}

// Installed reports whether the client is subscribed to a source.
func (c *Client) Installed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unsubscribe != nil
}

// dispatcher adapts a Client to FatalHandler.
type dispatcher struct {
	c *Client
}

func (d dispatcher) HandleUncaught(err error, stack string) {
	if err == nil {
		return
	}
	if IsInternal(err) {
		d.c.dropInternal(err)
		return
	}
	d.c.dispatch(context.Background(), NewErrorEvent(err, stack), true)
}

func (d dispatcher) HandleRejection(reason any, stack string) {
	if err, ok := reason.(error); ok {
		if IsInternal(err) {
			d.c.dropInternal(err)
			return
		}
		d.c.dispatch(context.Background(), NewErrorEvent(err, stack), false)
		return
	}
	d.c.dispatch(context.Background(), NewRejectionEvent(reason), false)
}

func (c *Client) dropInternal(err error) {
	c.logger.Debug("dropping self-originated error", slog.Any("error", err))
}

// dispatch delivers an unhandled event on a detached goroutine. Delivery
// errors are already logged by capture and are swallowed here. When fatal
// is set and ExitOnFatal is configured, it waits for delivery and exits.
func (c *Client) dispatch(ctx context.Context, event CapturedEvent, fatal bool) {
	c.pending.add()
	go func() {
		defer c.pending.done()
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("panic while delivering report", slog.Any("panic", r))
			}
		}()
		_ = c.capture(ctx, event, false, nil)
	}()

	if fatal && c.cfg.ExitOnFatal {
		<-c.pending.idle()
		c.exit(1)
	}
}

// inflight counts detached deliveries. Unlike sync.WaitGroup it allows add
// while another goroutine is waiting for idle.
type inflight struct {
	mu     sync.Mutex
	n      int
	idleCh chan struct{}
}

var closedCh = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

func (f *inflight) add() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.n == 0 {
		f.idleCh = make(chan struct{})
	}
	f.n++
}

func (f *inflight) done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n--
	if f.n == 0 {
		close(f.idleCh)
	}
}

// idle returns a channel closed once the count drops to zero. Deliveries
// added after the call are not waited for.
func (f *inflight) idle() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.n == 0 {
		return closedCh
	}
	return f.idleCh
}
