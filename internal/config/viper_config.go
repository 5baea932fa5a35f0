package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadConfig loads configuration using Viper
// Priority order: Environment variables > Config file > Defaults
func LoadConfig(configPath string) (*ServerConfig, error) {
	// A .env file is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("⚠️ could not load .env file: %v", err)
	}

	v := viper.New()

	// Set config file details
	v.SetConfigName("bot")
	v.SetConfigType("yaml")

	// Add config paths
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/burningtown")
	}

	// Enable environment variable binding
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind the short environment variable names
	v.BindEnv("bot.token", "TELEGRAM_TOKEN")
	v.BindEnv("bot.username", "BOT_USERNAME")
	v.BindEnv("server.host", "HOST")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.loglevel", "LOG_LEVEL")
	v.BindEnv("registry.backend", "REGISTRY_BACKEND")
	v.BindEnv("registry.path", "REGISTRY_PATH")
	v.BindEnv("game.actiontimeout", "ACTION_TIMEOUT")

	setDefaults(v)

	// Try to read config file (it's optional)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &ServerConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.shutdowntimeout", d.Server.ShutdownTimeout.String())
	v.SetDefault("server.requesttimeout", d.Server.RequestTimeout.String())
	v.SetDefault("server.ratelimit", d.Server.RateLimit)
	v.SetDefault("server.ratelimitburst", d.Server.RateLimitBurst)
	v.SetDefault("server.loglevel", d.Server.LogLevel)

	v.SetDefault("bot.token", d.Bot.Token)
	v.SetDefault("bot.username", d.Bot.Username)
	v.SetDefault("bot.polltimeout", d.Bot.PollTimeout.String())
	v.SetDefault("bot.retrydelay", d.Bot.RetryDelay.String())
	v.SetDefault("bot.sendrate", d.Bot.SendRate)
	v.SetDefault("bot.sendburst", d.Bot.SendBurst)
	v.SetDefault("bot.perchatrate", d.Bot.PerChatRate)
	v.SetDefault("bot.perchatburst", d.Bot.PerChatBurst)

	v.SetDefault("game.minplayers", d.Game.MinPlayers)
	v.SetDefault("game.maxconcurrentgames", d.Game.MaxConcurrentGames)
	v.SetDefault("game.actiontimeout", d.Game.ActionTimeout.String())
	v.SetDefault("game.inboxsize", d.Game.InboxSize)

	v.SetDefault("registry.backend", d.Registry.Backend)
	v.SetDefault("registry.path", d.Registry.Path)
}
