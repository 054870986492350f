package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SetDefaults registers every configuration key with the value the app ships
// with. Environment variables from the original deployment override them, so
// an existing .env keeps working unchanged.
func SetDefaults() {
	viper.SetDefault("server.addr", ":8888")

	viper.SetDefault("security.strict", false)
	viper.SetDefault("security.allow_previews", true)
	viper.SetDefault("security.allowed_origins", "")

	viper.SetDefault("ratelimit.story_per_min", 10)
	viper.SetDefault("ratelimit.audio_per_min", 20)

	viper.SetDefault("synthesis.engine", "clarifai")
	viper.SetDefault("audio.max_kb", 5000)

	viper.SetDefault("playback.segment_pause", time.Second)
	viper.SetDefault("playback.prime_duration", 100*time.Millisecond)

	viper.SetDefault("clarifai.api_key", "")
	viper.SetDefault("clarifai.user_id", "")
	viper.SetDefault("clarifai.app_id", "")
	viper.SetDefault("clarifai.model_id", "GPT-4")
	viper.SetDefault("clarifai.model_version_id", "")

	bindEnvs()
}

func bindEnvs() {
	viper.BindEnv("security.strict", "SECURITY_STRICT")
	viper.BindEnv("security.allow_previews", "ALLOW_NETLIFY_PREVIEWS")
	viper.BindEnv("security.allowed_origins", "ALLOWED_ORIGINS")
	viper.BindEnv("ratelimit.story_per_min", "RATE_LIMIT_STORY_PER_MIN")
	viper.BindEnv("ratelimit.audio_per_min", "RATE_LIMIT_AUDIO_PER_MIN")
	viper.BindEnv("clarifai.api_key", "CLARIFAI_API_KEY")
	viper.BindEnv("clarifai.user_id", "CLARIFAI_USER_ID")
	viper.BindEnv("clarifai.app_id", "CLARIFAI_APP_ID")
	viper.BindEnv("clarifai.model_id", "CLARIFAI_MODEL_ID")
	viper.BindEnv("clarifai.model_version_id", "CLARIFAI_MODEL_VERSION_ID")
}

// AllowedOrigins returns the comma-separated extra origins as a slice,
// whitespace trimmed and empties dropped.
func AllowedOrigins() []string {
	raw := viper.GetString("security.allowed_origins")
	if raw == "" {
		return nil
	}

	var origins []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
