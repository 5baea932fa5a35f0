// Package transport connects the moderator to a chat service.
package transport

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"burningtown/internal/throttle"

	"golang.org/x/time/rate"
)

// ChatKind tells group chats from private chats
type ChatKind string

const (
	ChatGroup   ChatKind = "group"
	ChatPrivate ChatKind = "private"
)

// Event is one inbound text message
type Event struct {
	SenderID   int64
	SenderName string
	ChatID     int64
	Kind       ChatKind
	Text       string
}

// Sender delivers text to a group or private chat
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Handler consumes inbound events
type Handler func(ctx context.Context, ev Event)

// Source delivers inbound events to handle until it fails or ctx is done
type Source interface {
	Listen(ctx context.Context, handle Handler) error
}

// Run keeps src listening. Failures are logged and retried after
// retryDelay; Run only returns once ctx is done.
func Run(ctx context.Context, src Source, handle Handler, retryDelay time.Duration) error {
	for {
		err := src.Listen(ctx, handle)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			err = errors.New("listener stopped")
		}
		log.Printf("📡 transport failure, retrying in %v: %v", retryDelay, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}
}

// Throttled wraps a Sender with a global and a per-chat send budget
type Throttled struct {
	next    Sender
	global  *rate.Limiter
	perChat *throttle.Keyed
}

// NewThrottled limits next to perSecond messages overall and perChat
// messages per chat
func NewThrottled(next Sender, global *rate.Limiter, perChat *throttle.Keyed) *Throttled {
	return &Throttled{next: next, global: global, perChat: perChat}
}

func (t *Throttled) Send(ctx context.Context, chatID int64, text string) error {
	if t.perChat != nil {
		if err := t.perChat.Wait(ctx, strconv.FormatInt(chatID, 10)); err != nil {
			return err
		}
	}
	if t.global != nil {
		if err := t.global.Wait(ctx); err != nil {
			return err
		}
	}
	return t.next.Send(ctx, chatID, text)
}
