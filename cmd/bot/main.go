package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"burningtown/internal/config"
	"burningtown/internal/handlers"
	"burningtown/internal/messages"
	"burningtown/internal/moderator"
	"burningtown/internal/registry"
	"burningtown/internal/store"
	"burningtown/internal/throttle"
	"burningtown/internal/transport"
	"burningtown/internal/transport/telegram"
)

const (
	limiterPruneInterval = time.Minute
	limiterIdle          = 10 * time.Minute
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	log.Printf("Loaded configuration: min players = %d, max games = %d, action timeout = %v",
		cfg.Game.MinPlayers, cfg.Game.MaxConcurrentGames, cfg.Game.ActionTimeout)

	msgs, err := messages.Default()
	if err != nil {
		log.Fatal("Failed to load message catalog: ", err)
	}

	reg, err := registry.Open(cfg.Registry.Backend, cfg.Registry.Path)
	if err != nil {
		log.Fatal("Failed to open registration store: ", err)
	}
	defer reg.Close()

	s := store.NewMemoryStore(cfg.Game.MaxConcurrentGames, cfg.Game.MinPlayers)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpLimits := throttle.NewKeyed(cfg.Server.RateLimit, cfg.Server.RateLimitBurst)
	chatLimits := throttle.NewKeyed(cfg.Bot.PerChatRate, cfg.Bot.PerChatBurst)
	go throttle.PruneEvery(ctx, limiterPruneInterval, limiterIdle, httpLimits, chatLimits)

	h := handlers.New(s, cfg.Bot.Username)
	var connected atomic.Bool
	h.SetReadyCheck(connected.Load)

	var server *http.Server
	if cfg.StatusServerEnabled() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		server = &http.Server{
			Addr:    addr,
			Handler: SetupServer(cfg, h, httpLimits),
		}
		go func() {
			log.Printf("Starting status server on %s", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal("Server failed to start:", err)
			}
		}()
	}

	bot, err := connect(ctx, cfg)
	if err != nil {
		log.Println("Shutting down before the bot connected")
		shutdown(server, cfg.Server.ShutdownTimeout)
		return
	}
	connected.Store(true)

	sender := transport.NewThrottled(bot,
		rate.NewLimiter(rate.Limit(cfg.Bot.SendRate), cfg.Bot.SendBurst),
		chatLimits,
	)

	m := moderator.New(moderator.Config{
		Store:         s,
		Registry:      reg,
		Sender:        sender,
		Messages:      msgs,
		ActionTimeout: cfg.Game.ActionTimeout,
		InboxSize:     cfg.Game.InboxSize,
		Rand:          rand.New(rand.NewSource(time.Now().UnixNano())),
		Debug:         cfg.Debug(),
	})

	log.Printf("🚀 Moderating games as @%s", bot.Username())
	transport.Run(ctx, bot, m.Handle, cfg.Bot.RetryDelay)

	log.Println("Shutting down...")
	m.Close()
	shutdown(server, cfg.Server.ShutdownTimeout)
	log.Println("Bot gracefully stopped")
}

// connect retries the initial authorization until it succeeds or ctx is done
func connect(ctx context.Context, cfg *config.ServerConfig) (*telegram.Bot, error) {
	for {
		bot, err := telegram.New(cfg.Bot.Token, cfg.Bot.PollTimeout, cfg.Debug())
		if err == nil {
			return bot, nil
		}
		log.Printf("📡 %v, retrying in %v", err, cfg.Bot.RetryDelay)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.Bot.RetryDelay):
		}
	}
}

func shutdown(server *http.Server, timeout time.Duration) {
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
