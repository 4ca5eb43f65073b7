package transport

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/mistcall/strangerchat/internal/logging"
	"go.uber.org/zap"
)

// validateOrigin checks a WebSocket upgrade request's Origin header
// against an allow-list, comparing scheme and host. A missing Origin
// header is allowed through (non-browser clients, local testing), the
// same policy the teacher applies (hub_helpers.go), minus the JWT-specific
// branches this domain doesn't have.
func validateOrigin(r *http.Request, allowedOrigins []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		logging.Warn(context.Background(), "invalid origin header", zap.String("origin", origin))
		return false
	}

	for _, allowed := range allowedOrigins {
		allowed = strings.TrimSpace(allowed)
		if allowed == "" {
			continue
		}
		allowedURL, err := url.Parse(allowed)
		if err != nil {
			continue
		}
		if originURL.Scheme == allowedURL.Scheme && originURL.Host == allowedURL.Host {
			return true
		}
	}
	return false
}
