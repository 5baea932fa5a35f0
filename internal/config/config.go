package config

import (
	"fmt"
	"time"

	"burningtown/internal/registry"
)

// This file defines the configuration structures used by viper_config.go
// The actual loading is handled by viper in viper_config.go

// ServerConfig represents the bot process configuration
type ServerConfig struct {
	Server   ServerSettings   `yaml:"server"`
	Bot      BotSettings      `yaml:"bot"`
	Game     GameSettings     `yaml:"game"`
	Registry RegistrySettings `yaml:"registry"`
}

// ServerSettings contains the HTTP status server settings
type ServerSettings struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"` // Empty disables the status server
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`

	// Rate limiting (using golang.org/x/time/rate)
	RateLimit      float64 `yaml:"rateLimit"`      // requests per second
	RateLimitBurst int     `yaml:"rateLimitBurst"` // burst size

	LogLevel string `yaml:"logLevel"`
}

// BotSettings contains the chat transport settings
type BotSettings struct {
	Token       string        `yaml:"token"`
	Username    string        `yaml:"username"` // Used for the registration link
	PollTimeout time.Duration `yaml:"pollTimeout"`
	RetryDelay  time.Duration `yaml:"retryDelay"`

	// Outbound message limits
	SendRate     float64 `yaml:"sendRate"`
	SendBurst    int     `yaml:"sendBurst"`
	PerChatRate  float64 `yaml:"perChatRate"`
	PerChatBurst int     `yaml:"perChatBurst"`
}

// GameSettings contains the game rules that may be tuned
type GameSettings struct {
	MinPlayers         int           `yaml:"minPlayers"`
	MaxConcurrentGames int           `yaml:"maxConcurrentGames"`
	ActionTimeout      time.Duration `yaml:"actionTimeout"` // 0 waits forever
	InboxSize          int           `yaml:"inboxSize"`
}

// RegistrySettings selects where registered chat ids are stored
type RegistrySettings struct {
	Backend string `yaml:"backend"` // "file" or "sqlite"
	Path    string `yaml:"path"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Host:            "",
			Port:            "",
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  30 * time.Second,
			RateLimit:       5,
			RateLimitBurst:  10,
			LogLevel:        "info",
		},
		Bot: BotSettings{
			Token:        "", // Must be set via env
			PollTimeout:  60 * time.Second,
			RetryDelay:   10 * time.Second,
			SendRate:     20,
			SendBurst:    5,
			PerChatRate:  1,
			PerChatBurst: 20,
		},
		Game: GameSettings{
			MinPlayers:         4,
			MaxConcurrentGames: 1,
			ActionTimeout:      0,
			InboxSize:          64,
		},
		Registry: RegistrySettings{
			Backend: registry.BackendFile,
			Path:    "telegram-users.txt",
		},
	}
}

// Validate checks if the configuration is valid
func (c *ServerConfig) Validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("TELEGRAM_TOKEN environment variable must be set")
	}
	if c.Bot.RetryDelay <= 0 {
		return fmt.Errorf("bot.retryDelay must be positive")
	}
	if c.Bot.SendRate <= 0 || c.Bot.PerChatRate <= 0 {
		return fmt.Errorf("send rates must be positive")
	}
	if c.Bot.SendBurst < 1 || c.Bot.PerChatBurst < 1 {
		return fmt.Errorf("send bursts must be at least 1")
	}

	if c.Game.MinPlayers < 4 {
		return fmt.Errorf("game.minPlayers must be at least 4")
	}
	if c.Game.MaxConcurrentGames < 1 {
		return fmt.Errorf("game.maxConcurrentGames must be at least 1")
	}
	if c.Game.ActionTimeout < 0 {
		return fmt.Errorf("game.actionTimeout cannot be negative")
	}
	if c.Game.InboxSize < 1 {
		return fmt.Errorf("game.inboxSize must be at least 1")
	}

	switch c.Registry.Backend {
	case registry.BackendFile, registry.BackendSQLite:
	default:
		return fmt.Errorf("unknown registry backend %q", c.Registry.Backend)
	}
	if c.Registry.Path == "" {
		return fmt.Errorf("registry.path must be set")
	}

	if c.Server.Port != "" && c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("server.rateLimitBurst must be at least 1")
	}

	return nil
}

// StatusServerEnabled reports whether the HTTP status server should run
func (c *ServerConfig) StatusServerEnabled() bool {
	return c.Server.Port != ""
}

// Debug reports whether verbose logging is enabled
func (c *ServerConfig) Debug() bool {
	return c.Server.LogLevel == "debug"
}
