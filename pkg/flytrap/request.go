// request.go describes the inbound request whose metadata enriches a report.

package flytrap

import (
	"net"
	"net/http"
	"strings"
)

// Request is the read-only view of an inbound request.
// Implementations for other frameworks only need these three accessors.
type Request interface {
	Method() string
	Path() string
	ClientIP() string
}

// FromHTTPRequest adapts a *http.Request. It returns nil for a nil request.
func FromHTTPRequest(r *http.Request) Request {
	if r == nil {
		return nil
	}
	return httpRequest{r: r}
}

type httpRequest struct {
	r *http.Request
}

func (h httpRequest) Method() string {
	return h.r.Method
}

func (h httpRequest) Path() string {
	if h.r.URL == nil {
		return ""
	}
	return h.r.URL.Path
}

// ClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// host part of RemoteAddr.
func (h httpRequest) ClientIP() string {
	if xff := h.r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(h.r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(h.r.RemoteAddr)
	if err != nil {
		return h.r.RemoteAddr
	}
	return host
}
