// Package gateway guards every upstream call: a request origin must pass the
// allowlist before the client's rate-limit quota is even consulted, and a
// rejected origin never consumes quota.
package gateway

import (
	"net/http"
	"time"
)

// Config describes one gateway instance. Each endpoint gets its own instance
// with an independent limiter so a chatty audio client cannot starve story
// generation, and vice versa.
type Config struct {
	Strict         bool
	AllowPreviews  bool
	AllowedOrigins []string
	Limit          int
	Window         time.Duration
}

// Decision is the outcome of authorizing one request.
type Decision struct {
	Allowed           bool
	Status            int
	RetryAfterSeconds int
	OriginAllowed     bool
}

type Gateway struct {
	strict        bool
	allowPreviews bool
	allowed       map[string]struct{}
	limiter       *Limiter
}

// New builds a gateway. Allowlist entries are normalized to
// scheme://host[:port]; entries that do not parse are dropped.
func New(cfg Config) *Gateway {
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		if normalized := NormalizeOrigin(origin); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return &Gateway{
		strict:        cfg.Strict,
		allowPreviews: cfg.AllowPreviews,
		allowed:       allowed,
		limiter:       NewLimiter(cfg.Limit, cfg.Window),
	}
}

// Strict reports whether strict origin checking is enabled.
func (g *Gateway) Strict() bool { return g.strict }

// OriginAllowed reports whether the normalized origin would pass the origin
// check. Used for building CORS headers without consuming quota.
func (g *Gateway) OriginAllowed(origin string) bool {
	return g.originAllowed(origin)
}

// Authorize runs the origin check and then, only if the origin passed, the
// rate check for the given client key.
func (g *Gateway) Authorize(origin, clientKey string) Decision {
	if !g.originAllowed(origin) {
		return Decision{Allowed: false, Status: http.StatusForbidden}
	}

	result := g.limiter.Check(clientKey)
	if !result.Allowed {
		return Decision{
			Allowed:           false,
			Status:            http.StatusTooManyRequests,
			RetryAfterSeconds: result.RetryAfterSeconds,
			OriginAllowed:     true,
		}
	}

	return Decision{Allowed: true, Status: http.StatusOK, OriginAllowed: true}
}
