// middleware.go recovers panics in HTTP handlers and reports them with the
// request's method, path and client address.

package flytrap

import (
	"context"
	"net/http"
)

// Middleware attaches the request to the handler context so manual captures
// pick up its metadata, and reports handler panics as unhandled errors.
// The client answers 500 after a panic. http.ErrAbortHandler is re-raised
// untouched.
func (c *Client) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithRequest(r.Context(), FromHTTPRequest(r))

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			err := asError(rec)
			if IsInternal(err) {
				c.dropInternal(err)
			} else {
				// The request context is cancelled once the handler returns.
				c.dispatch(context.WithoutCancel(ctx), NewErrorEvent(err, captureStack()), false)
			}
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
