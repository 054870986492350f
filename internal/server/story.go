package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"cuentadinos/internal/backend"
	"cuentadinos/internal/story/tale"
)

type storyRequest struct {
	Dinosaur string `json:"dinosaur"`
	Style    string `json:"style"`
	Lesson   string `json:"lesson"`
}

func (s *Server) handleStory(w http.ResponseWriter, r *http.Request) {
	var req storyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.Dinosaur == "" || req.Style == "" || req.Lesson == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	prompt := tale.Prompt(req.Dinosaur, req.Style, req.Lesson)

	story, err := s.cfg.Composer.Compose(r.Context(), prompt)
	if err != nil {
		s.writeUpstreamError(w, err, "Error generating story")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"story": story})
}

// writeUpstreamError maps backend failures onto the response contract:
// missing credentials are a configuration problem (500), everything the
// upstream did wrong is a 502.
func (s *Server) writeUpstreamError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, backend.ErrNotConfigured):
		logrus.WithError(err).Error("backend not configured")
		writeError(w, http.StatusInternalServerError, "Service unavailable")
	case errors.Is(err, backend.ErrBadPayload):
		logrus.WithError(err).Warn("malformed upstream payload")
		writeError(w, http.StatusBadGateway, "Invalid upstream response")
	default:
		var status *backend.StatusError
		if errors.As(err, &status) {
			logrus.WithField("status", status.Code).Warn("upstream service error")
			writeError(w, http.StatusBadGateway, "Upstream service error")
			return
		}
		logrus.WithError(err).Error(fallback)
		writeError(w, http.StatusBadGateway, fallback)
	}
}
