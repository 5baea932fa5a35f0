// Package telegram adapts the Telegram Bot API to the transport interfaces.
package telegram

import (
	"context"
	"fmt"
	"log"
	"time"

	"burningtown/internal/transport"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// client is the part of *tgbotapi.BotAPI the bot uses
type client interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot is a long-polling Telegram client
type Bot struct {
	api         client
	username    string
	pollTimeout time.Duration
	offset      int // next update id to ask for
}

// New authenticates with token
func New(token string, pollTimeout time.Duration, debug bool) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	api.Debug = debug
	log.Printf("🤖 Authorized on account %s", api.Self.UserName)

	return newBot(api, api.Self.UserName, pollTimeout), nil
}

func newBot(api client, username string, pollTimeout time.Duration) *Bot {
	return &Bot{api: api, username: username, pollTimeout: pollTimeout}
}

// Username returns the bot's account name
func (b *Bot) Username() string {
	return b.username
}

// Send posts text to a group or private chat
func (b *Bot) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send to chat %d: %w", chatID, err)
	}
	return nil
}

// Listen long-polls for updates and hands text messages to handle. It
// returns the first polling error so the caller can back off and retry;
// the offset survives, so a retry resumes after the last handled update.
func (b *Bot) Listen(ctx context.Context, handle transport.Handler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		u := tgbotapi.NewUpdate(b.offset)
		u.Timeout = int(b.pollTimeout / time.Second)

		updates, err := b.poll(ctx, u)
		if err != nil {
			return err
		}
		for _, update := range updates {
			if update.UpdateID >= b.offset {
				b.offset = update.UpdateID + 1
			}
			if ev, ok := toEvent(update); ok {
				handle(ctx, ev)
			}
		}
	}
}

type pollResult struct {
	updates []tgbotapi.Update
	err     error
}

// poll runs one GetUpdates call, giving up early when ctx is done. The
// library call itself cannot be cancelled; it finishes in the background.
func (b *Bot) poll(ctx context.Context, u tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	result := make(chan pollResult, 1)
	go func() {
		updates, err := b.api.GetUpdates(u)
		result <- pollResult{updates: updates, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-result:
		if r.err != nil {
			return nil, fmt.Errorf("get updates: %w", r.err)
		}
		return r.updates, nil
	}
}

// toEvent converts an update, skipping anything that is not a text
// message in a group or private chat
func toEvent(update tgbotapi.Update) (transport.Event, bool) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || msg.Text == "" {
		return transport.Event{}, false
	}

	var kind transport.ChatKind
	switch {
	case msg.Chat.IsPrivate():
		kind = transport.ChatPrivate
	case msg.Chat.IsGroup(), msg.Chat.IsSuperGroup():
		kind = transport.ChatGroup
	default:
		return transport.Event{}, false
	}

	return transport.Event{
		SenderID:   int64(msg.From.ID),
		SenderName: msg.From.FirstName,
		ChatID:     msg.Chat.ID,
		Kind:       kind,
		Text:       msg.Text,
	}, true
}
