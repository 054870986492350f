package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultClarifaiBase = "https://api.clarifai.com"

// Fixed model coordinates for the ElevenLabs speech model hosted on Clarifai.
const (
	speechUserID    = "eleven-labs"
	speechAppID     = "audio-generation"
	speechModelID   = "speech-synthesis"
	speechVersionID = "f2cead3a965f4c419a61a4a9b501095c"
)

// ClarifaiConfig carries the credentials and model coordinates for the text
// model. The speech model coordinates are fixed.
type ClarifaiConfig struct {
	APIKey         string
	UserID         string
	AppID          string
	ModelID        string
	ModelVersionID string

	// BaseURL overrides the API host, for tests.
	BaseURL string
}

// Clarifai implements Composer and Synthesizer against the Clarifai API.
type Clarifai struct {
	cfg        ClarifaiConfig
	baseURL    string
	httpClient *http.Client
}

func NewClarifai(cfg ClarifaiConfig) *Clarifai {
	base := cfg.BaseURL
	if base == "" {
		base = defaultClarifaiBase
	}
	return &Clarifai{
		cfg:     cfg,
		baseURL: base,
		// No timeout here: an unresponsive upstream is only abandoned when
		// the request context is cancelled.
		httpClient: &http.Client{},
	}
}

type clarifaiRequest struct {
	UserAppID clarifaiUserAppID `json:"user_app_id"`
	Inputs    []clarifaiInput   `json:"inputs"`
}

type clarifaiUserAppID struct {
	UserID string `json:"user_id"`
	AppID  string `json:"app_id"`
}

type clarifaiInput struct {
	Data clarifaiData `json:"data"`
}

type clarifaiData struct {
	Text clarifaiText `json:"text"`
}

type clarifaiText struct {
	Raw string `json:"raw"`
}

type clarifaiResponse struct {
	Outputs []struct {
		Data struct {
			Text *struct {
				Raw string `json:"raw"`
			} `json:"text"`
			Audio *struct {
				Base64 string `json:"base64"`
			} `json:"audio"`
		} `json:"data"`
	} `json:"outputs"`
}

// Compose asks the configured text model for a story.
func (c *Clarifai) Compose(ctx context.Context, prompt string) (string, error) {
	if c.cfg.APIKey == "" || c.cfg.UserID == "" || c.cfg.AppID == "" {
		return "", ErrNotConfigured
	}

	base := fmt.Sprintf("%s/v2/users/%s/apps/%s/models/%s",
		c.baseURL,
		url.PathEscape(c.cfg.UserID),
		url.PathEscape(c.cfg.AppID),
		url.PathEscape(c.cfg.ModelID))

	endpoint := base + "/outputs"
	if c.cfg.ModelVersionID != "" {
		endpoint = fmt.Sprintf("%s/versions/%s/outputs", base, url.PathEscape(c.cfg.ModelVersionID))
	}

	parsed, err := c.call(ctx, endpoint, clarifaiUserAppID{UserID: c.cfg.UserID, AppID: c.cfg.AppID}, prompt)
	if err != nil {
		return "", err
	}

	if len(parsed.Outputs) == 0 || parsed.Outputs[0].Data.Text == nil || parsed.Outputs[0].Data.Text.Raw == "" {
		return "", ErrBadPayload
	}
	return parsed.Outputs[0].Data.Text.Raw, nil
}

// Synthesize sends one text segment to the speech model and returns the MP3
// bytes it produced.
func (c *Clarifai) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/v2/users/%s/apps/%s/models/%s/versions/%s/outputs",
		c.baseURL, speechUserID, speechAppID, speechModelID, speechVersionID)

	logrus.WithField("chars", len(text)).Debug("calling speech synthesis upstream")

	parsed, err := c.call(ctx, endpoint, clarifaiUserAppID{UserID: speechUserID, AppID: speechAppID}, text)
	if err != nil {
		return nil, err
	}

	if len(parsed.Outputs) == 0 || parsed.Outputs[0].Data.Audio == nil || parsed.Outputs[0].Data.Audio.Base64 == "" {
		return nil, ErrBadPayload
	}

	audio, err := base64.StdEncoding.DecodeString(parsed.Outputs[0].Data.Audio.Base64)
	if err != nil {
		return nil, fmt.Errorf("%w: audio payload is not valid base64", ErrBadPayload)
	}
	return audio, nil
}

func (c *Clarifai) call(ctx context.Context, endpoint string, id clarifaiUserAppID, raw string) (*clarifaiResponse, error) {
	payload, err := json.Marshal(clarifaiRequest{
		UserAppID: id,
		Inputs:    []clarifaiInput{{Data: clarifaiData{Text: clarifaiText{Raw: raw}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Key "+c.cfg.APIKey)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		logrus.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(body),
		}).Warn("clarifai upstream error")
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var parsed clarifaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	logrus.WithField("elapsed", time.Since(started)).Debug("clarifai call finished")
	return &parsed, nil
}
