package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type audioRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	var req audioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	audio, err := s.cfg.Synthesizer.Synthesize(r.Context(), req.Text)
	if err != nil {
		s.writeUpstreamError(w, err, "Error generating audio")
		return
	}

	if r.URL.Query().Get("format") == "binary" {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.WriteHeader(http.StatusOK)
		w.Write(audio)
		return
	}

	encoded := base64.StdEncoding.EncodeToString(audio)
	sizeKB := float64(len(encoded)) / 1024

	if s.cfg.MaxAudioKB > 0 && sizeKB > s.cfg.MaxAudioKB {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
			"error":   "Payload Too Large",
			"message": "Audio file exceeds size limit. Please use chunk mode.",
			"sizeKB":  fmt.Sprintf("%.2f", sizeKB),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"audioBase64": encoded,
		"audioUrl":    "data:audio/mpeg;base64," + encoded,
	})
}
