package backend

import (
	"context"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"
)

// GoogleSynthesizer produces MP3 audio through the Google Cloud
// Text-to-Speech API. Requires GOOGLE_APPLICATION_CREDENTIALS.
type GoogleSynthesizer struct {
	client       *texttospeech.Client
	languageCode string
	voice        string
}

func NewGoogleSynthesizer(ctx context.Context, languageCode, voice string) (*GoogleSynthesizer, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create TTS client: %w", err)
	}

	if languageCode == "" {
		languageCode = "es-ES"
	}
	if voice == "" {
		voice = "es-ES-Chirp3-HD-Charon"
	}

	return &GoogleSynthesizer{
		client:       client,
		languageCode: languageCode,
		voice:        voice,
	}, nil
}

func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: g.languageCode,
			Name:         g.voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}

	resp, err := g.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}
	return resp.AudioContent, nil
}

// Close releases the underlying gRPC connection.
func (g *GoogleSynthesizer) Close() error {
	return g.client.Close()
}
