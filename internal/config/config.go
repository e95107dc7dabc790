package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	GatewayBaseURL string
	GatewayWSURL   string

	BotPrefix string
	BotToken  string

	GameAPIURL string
	GameWebURL string

	XAIAPIKey  string
	RoastModel string

	RedisURL    string
	DatabaseURL string

	AllowedGuilds []string

	GameAPITimeoutSec int
	RoastTimeoutSec   int
	DefaultMaxPlayers int
	DefaultGameMode   string
	InviteQRSize      int
	SessionTTLSec     int
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		GameAPIURL:        "http://localhost:5000",
		GameWebURL:        "https://play.thats.wtf",
		RoastModel:        "grok-2-1212",
		GameAPITimeoutSec: 10,
		RoastTimeoutSec:   15,
		DefaultMaxPlayers: 4,
		DefaultGameMode:   "roast",
		InviteQRSize:      256,
		SessionTTLSec:     86400,
	}

	cfg.GatewayBaseURL = strings.TrimSpace(os.Getenv("GATEWAY_BASE_URL"))
	cfg.GatewayWSURL = strings.TrimSpace(os.Getenv("GATEWAY_WS_URL"))
	cfg.BotPrefix = strings.TrimSpace(os.Getenv("BOT_PREFIX"))
	cfg.BotToken = strings.TrimSpace(os.Getenv("DISCORD_BOT_TOKEN"))

	if v := strings.TrimSpace(os.Getenv("GAME_API_URL")); v != "" {
		cfg.GameAPIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("GAME_WEB_URL")); v != "" {
		cfg.GameWebURL = v
	}

	cfg.XAIAPIKey = strings.TrimSpace(os.Getenv("XAI_API_KEY"))
	if v := strings.TrimSpace(os.Getenv("ROAST_MODEL")); v != "" {
		cfg.RoastModel = v
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("ALLOWED_GUILDS")); v != "" {
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				cfg.AllowedGuilds = append(cfg.AllowedGuilds, s)
			}
		}
	}

	if v := strings.TrimSpace(os.Getenv("GAME_API_TIMEOUT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.GameAPITimeoutSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ROAST_TIMEOUT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RoastTimeoutSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("DEFAULT_MAX_PLAYERS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 2 && n <= 8 {
			cfg.DefaultMaxPlayers = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("DEFAULT_GAME_MODE")); v != "" {
		cfg.DefaultGameMode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("INVITE_QR_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.InviteQRSize = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("SESSION_TTL")); v != "" { // seconds
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SessionTTLSec = n
		}
	}

	if cfg.GatewayBaseURL == "" {
		return nil, errors.New("GATEWAY_BASE_URL is required")
	}
	if cfg.GatewayWSURL == "" {
		return nil, errors.New("GATEWAY_WS_URL is required")
	}
	if cfg.BotPrefix == "" {
		return nil, errors.New("BOT_PREFIX is required")
	}
	if cfg.BotToken == "" {
		return nil, errors.New("DISCORD_BOT_TOKEN is required")
	}

	return cfg, nil
}
