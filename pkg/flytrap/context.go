// context.go propagates the inbound request through context.Context.

package flytrap

import "context"

// Context key type (unexported to avoid collisions)
type requestKey struct{}

// WithRequest returns a context carrying req. The manual capture API and the
// middleware use it when no request is passed explicitly.
func WithRequest(ctx context.Context, req Request) context.Context {
	return context.WithValue(ctx, requestKey{}, req)
}

// RequestFromContext extracts the request attached by WithRequest.
// Returns nil and false if none is set.
func RequestFromContext(ctx context.Context) (Request, bool) {
	if ctx == nil {
		return nil, false
	}
	req, ok := ctx.Value(requestKey{}).(Request)
	return req, ok && req != nil
}
