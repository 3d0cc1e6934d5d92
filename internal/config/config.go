package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config contains all runtime settings for the seminar gateway.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string
	LogLevel         string
	LogFormat        string

	ElevenLabsAPIKey        string
	ElevenLabsAgentID       string
	ElevenLabsAPIBaseURL    string
	ElevenLabsSignedURLMode string
	AgentDispatchURL        string

	LiveKitURL       string
	LiveKitAPIKey    string
	LiveKitAPISecret string

	RoomNamePrefix          string
	StudentTokenTTL         time.Duration
	AgentTokenTTL           time.Duration
	CompensateOnMintFailure bool

	DatabaseURL string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "seminar"),
		LogLevel:         envOrDefault("APP_LOG_LEVEL", "info"),
		LogFormat:        envOrDefault("APP_LOG_FORMAT", "text"),
		ElevenLabsAPIKey: stringsTrimSpace("ELEVENLABS_API_KEY"),
		// Agent the seminar UI was built against; override per deployment.
		ElevenLabsAgentID:       envOrDefault("ELEVENLABS_AGENT_ID", "agent_4601ka9befc7evebb2pmh2kpana4"),
		ElevenLabsAPIBaseURL:    envOrDefault("ELEVENLABS_API_BASE_URL", "https://api.elevenlabs.io"),
		ElevenLabsSignedURLMode: strings.ToLower(envOrDefault("ELEVENLABS_SIGNED_URL_METHOD", "post")),
		AgentDispatchURL:        stringsTrimSpace("AGENT_DISPATCH_URL"),
		LiveKitURL:              stringsTrimSpace("LIVEKIT_URL"),
		LiveKitAPIKey:           stringsTrimSpace("LIVEKIT_API_KEY"),
		LiveKitAPISecret:        stringsTrimSpace("LIVEKIT_API_SECRET"),
		RoomNamePrefix:          envOrDefault("ROOM_NAME_PREFIX", "seminar"),
		DatabaseURL:             stringsTrimSpace("DATABASE_URL"),
		ShutdownTimeout:         15 * time.Second,
		StudentTokenTTL:         time.Hour,
		AgentTokenTTL:           time.Hour,
		CompensateOnMintFailure: true,
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.StudentTokenTTL, err = durationFromEnv("STUDENT_TOKEN_TTL", cfg.StudentTokenTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.AgentTokenTTL, err = durationFromEnv("AGENT_TOKEN_TTL", cfg.AgentTokenTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.CompensateOnMintFailure, err = boolFromEnv("ROOM_COMPENSATE_ON_FAILURE", cfg.CompensateOnMintFailure)
	if err != nil {
		return Config{}, err
	}

	if cfg.StudentTokenTTL < time.Minute {
		return Config{}, fmt.Errorf("STUDENT_TOKEN_TTL must be at least 1m")
	}
	if cfg.AgentTokenTTL < time.Minute {
		return Config{}, fmt.Errorf("AGENT_TOKEN_TTL must be at least 1m")
	}
	switch cfg.ElevenLabsSignedURLMode {
	case "post", "get":
	default:
		return Config{}, fmt.Errorf("ELEVENLABS_SIGNED_URL_METHOD must be post or get, got %q", cfg.ElevenLabsSignedURLMode)
	}
	if strings.TrimSpace(cfg.RoomNamePrefix) == "" {
		return Config{}, fmt.Errorf("ROOM_NAME_PREFIX must not be blank")
	}

	return cfg, nil
}

// MissingSessionCredentials lists the settings session provisioning needs
// that are currently unset. Order is stable for error messages.
func (c Config) MissingSessionCredentials() []string {
	var missing []string
	if c.ElevenLabsAPIKey == "" {
		missing = append(missing, "ELEVENLABS_API_KEY")
	}
	if strings.TrimSpace(c.ElevenLabsAgentID) == "" {
		missing = append(missing, "ELEVENLABS_AGENT_ID")
	}
	if c.LiveKitURL == "" {
		missing = append(missing, "LIVEKIT_URL")
	}
	if c.LiveKitAPIKey == "" {
		missing = append(missing, "LIVEKIT_API_KEY")
	}
	if c.LiveKitAPISecret == "" {
		missing = append(missing, "LIVEKIT_API_SECRET")
	}
	return missing
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
