package gateway

import (
	"net/url"
	"strings"
)

// previewSuffix matches deploy-preview hostnames that may be allowed without
// an explicit allowlist entry.
const previewSuffix = ".netlify.app"

// NormalizeOrigin reduces an origin to scheme://host[:port], dropping any
// path, query or fragment. Unparseable or schemeless input normalizes to "".
func NormalizeOrigin(origin string) string {
	if origin == "" {
		return ""
	}

	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}

	return u.Scheme + "://" + u.Host
}

// isPreviewOrigin reports whether the origin points at a preview deployment.
func isPreviewOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.HasSuffix(u.Hostname(), previewSuffix)
}

// originAllowed applies the strict-mode origin policy. Outside strict mode
// every origin passes; the origin value is only echoed back in CORS headers.
func (g *Gateway) originAllowed(origin string) bool {
	if !g.strict {
		return true
	}
	if origin == "" {
		return false
	}
	if _, ok := g.allowed[origin]; ok {
		return true
	}
	if g.allowPreviews && isPreviewOrigin(origin) {
		return true
	}
	return false
}
