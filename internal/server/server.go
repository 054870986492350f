// Package server exposes the two gateway-guarded HTTP endpoints: story
// composition and speech synthesis.
package server

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"cuentadinos/internal/backend"
	"cuentadinos/internal/gateway"
)

type Config struct {
	Composer    backend.Composer
	Synthesizer backend.Synthesizer
	StoryGate   *gateway.Gateway
	AudioGate   *gateway.Gateway

	// MaxAudioKB caps the base64 payload size of JSON-mode audio responses.
	MaxAudioKB float64
}

type Server struct {
	cfg Config
	mux *http.ServeMux
}

func New(cfg Config) *Server {
	s := &Server{cfg: cfg, mux: http.NewServeMux()}
	s.mux.HandleFunc("/api/story", s.guarded(cfg.StoryGate, s.handleStory))
	s.mux.HandleFunc("/api/audio", s.guarded(cfg.AudioGate, s.handleAudio))
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	logrus.WithField("addr", addr).Info("cuentadinos gateway listening")
	srv := &http.Server{Addr: addr, Handler: s.mux}
	return srv.ListenAndServe()
}

// guarded wraps an endpoint with the shared gateway preamble: CORS headers on
// every response, preflight handling, strict-origin rejection, method check,
// then the rate check. An origin rejection never consumes quota.
func (s *Server) guarded(gate *gateway.Gateway, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := gateway.NormalizeOrigin(r.Header.Get("Origin"))
		originAllowed := gate.OriginAllowed(origin)
		setCORSHeaders(w, origin, gate.Strict(), originAllowed)

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if gate.Strict() && !originAllowed {
			writeError(w, http.StatusForbidden, "Forbidden origin")
			return
		}

		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		decision := gate.Authorize(origin, clientKey(r))
		if !decision.Allowed {
			if decision.Status == http.StatusTooManyRequests {
				w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfterSeconds))
				writeError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			writeError(w, decision.Status, "Forbidden origin")
			return
		}

		next(w, r)
	}
}

// clientKey identifies the caller for rate limiting: the first forwarded-for
// address, else the direct connection's host. Clients with neither share the
// single "unknown" bucket on purpose.
func clientKey(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return "unknown"
}

func setCORSHeaders(w http.ResponseWriter, origin string, strict, originAllowed bool) {
	if !strict {
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Vary", "Origin")
		return
	}

	if originAllowed && origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Vary", "Origin")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Warn("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
