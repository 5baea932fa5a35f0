// Package moderator runs games in group chats. Moderator.Handle is the
// single entry point for inbound messages: group commands and
// registrations are handled directly, everything addressed to an active
// game goes to that game's Orchestrator.
package moderator

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"burningtown/internal/game"
	"burningtown/internal/messages"
	"burningtown/internal/registry"
	"burningtown/internal/store"
	"burningtown/internal/transport"
)

const (
	cmdGame    = "!game"
	cmdJoin    = "!join"
	cmdStart   = "!start"
	cmdStop    = "!stop"
	cmdPlayers = "!players"
)

const defaultInboxSize = 64

// Config wires a Moderator to its collaborators
type Config struct {
	Store         *store.MemoryStore
	Registry      registry.Store
	Sender        transport.Sender
	Messages      *messages.Catalog
	ActionTimeout time.Duration // 0 waits forever
	InboxSize     int
	Rand          *rand.Rand
	Debug         bool
}

// Moderator dispatches inbound messages and owns the game goroutines
type Moderator struct {
	store    *store.MemoryStore
	registry registry.Store
	sender   transport.Sender
	msgs     *messages.Catalog
	timeout  time.Duration
	inbox    int
	debug    bool

	rngMu sync.Mutex
	rng   *rand.Rand

	mu      sync.Mutex
	running map[int64]*Orchestrator // by group chat id
	wg      sync.WaitGroup
}

// New creates a Moderator
func New(cfg Config) *Moderator {
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = defaultInboxSize
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Messages == nil {
		cfg.Messages = messages.MustDefault()
	}
	return &Moderator{
		store:    cfg.Store,
		registry: cfg.Registry,
		sender:   cfg.Sender,
		msgs:     cfg.Messages,
		timeout:  cfg.ActionTimeout,
		inbox:    cfg.InboxSize,
		debug:    cfg.Debug,
		rng:      cfg.Rand,
		running:  make(map[int64]*Orchestrator),
	}
}

// Handle interprets one inbound message
func (m *Moderator) Handle(ctx context.Context, ev transport.Event) {
	if m.debug {
		log.Printf("📨 %s message from %d (%s) in %d: %q", ev.Kind, ev.SenderID, ev.SenderName, ev.ChatID, ev.Text)
	}

	switch ev.Kind {
	case transport.ChatPrivate:
		m.handlePrivate(ctx, ev)
	case transport.ChatGroup:
		m.handleGroup(ctx, ev)
	}
}

func (m *Moderator) handlePrivate(ctx context.Context, ev transport.Event) {
	added, err := m.registry.Register(ctx, ev.SenderID)
	if err != nil {
		log.Printf("❌ failed to register %d: %v", ev.SenderID, err)
	} else if added {
		log.Printf("📝 registered %s (%d)", ev.SenderName, ev.SenderID)
		m.send(ctx, ev.SenderID, m.msgs.RegisteredFor(ev.SenderName))
		return
	}

	session, ok := m.store.FindActiveByPlayer(ev.SenderID)
	if !ok {
		return
	}
	m.forward(session.GroupID, ev)
}

func (m *Moderator) handleGroup(ctx context.Context, ev transport.Event) {
	switch command(ev.Text) {
	case cmdGame:
		m.openGame(ctx, ev)
	case cmdJoin:
		m.join(ctx, ev)
	case cmdStart:
		m.start(ctx, ev)
	case cmdStop:
		m.stop(ctx, ev)
	case cmdPlayers:
		m.players(ctx, ev)
	default:
		m.forward(ev.ChatID, ev)
	}
}

// command returns the bot command in text, without any @botname suffix
func command(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "!") {
		return ""
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(cmd)
}

func (m *Moderator) openGame(ctx context.Context, ev transport.Event) {
	session, opened, err := m.store.OpenSession(ev.ChatID)
	if errors.Is(err, store.ErrTooManyGames) {
		m.send(ctx, ev.ChatID, m.msgs.TooManyGames)
		return
	}
	if err != nil {
		log.Printf("❌ failed to open game in %d: %v", ev.ChatID, err)
		return
	}
	if opened {
		log.Printf("🎲 game %s recruiting in %d", session.ID, ev.ChatID)
		m.send(ctx, ev.ChatID, m.msgs.Intro)
	}
	if session.Status() == game.StatusRecruiting {
		m.addPlayer(ctx, session, ev)
	}
}

func (m *Moderator) join(ctx context.Context, ev transport.Event) {
	session, err := m.store.GetSession(ev.ChatID)
	if err != nil || session.Status() != game.StatusRecruiting {
		return
	}
	m.addPlayer(ctx, session, ev)
}

func (m *Moderator) addPlayer(ctx context.Context, session *game.Session, ev transport.Event) {
	registered, err := m.registry.HasRegistered(ctx, ev.SenderID)
	if err != nil {
		log.Printf("❌ registration lookup for %d failed: %v", ev.SenderID, err)
		return
	}
	if !registered {
		m.send(ctx, ev.ChatID, m.msgs.RegisterFirstFor(ev.SenderName))
		return
	}
	if m.store.PlayingElsewhere(ev.SenderID, session.GroupID) {
		m.send(ctx, ev.ChatID, m.msgs.AlreadyPlayingFor(ev.SenderName))
		return
	}

	player, err := session.AddPlayer(ev.SenderID, ev.SenderName)
	switch {
	case errors.Is(err, game.ErrDuplicateName), errors.Is(err, game.ErrAlreadyJoined):
		return
	case err != nil:
		log.Printf("⚠️ %s could not join game %s: %v", ev.SenderName, session.ID, err)
		return
	}
	log.Printf("👤 %s joined game %s", player.Name, session.ID)
	m.send(ctx, ev.ChatID, m.msgs.JoinedFor(player.Name))
}

func (m *Moderator) start(ctx context.Context, ev transport.Event) {
	session, err := m.store.GetSession(ev.ChatID)
	if err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.rngMu.Lock()
	players, err := session.Start(m.rng)
	m.rngMu.Unlock()
	switch {
	case errors.Is(err, game.ErrNotEnoughPlayers):
		m.send(ctx, ev.ChatID, m.msgs.NotEnoughPlayersFor(session.MinPlayers))
		return
	case err != nil:
		if m.debug {
			log.Printf("⚠️ cannot start game %s: %v", session.ID, err)
		}
		return
	}

	log.Printf("🚀 game %s started in %d with %d players", session.ID, ev.ChatID, len(players))
	m.send(ctx, ev.ChatID, m.msgs.Started)

	orch := newOrchestrator(session, m.sender, m.msgs, m.timeout, m.inbox, m.debug)
	gameCtx, cancel := context.WithCancel(context.Background())
	orch.cancel = cancel
	m.running[ev.ChatID] = orch

	m.wg.Add(1)
	go m.play(gameCtx, orch, players)
}

// play runs one game to its end and resets the session when a team wins
func (m *Moderator) play(ctx context.Context, orch *Orchestrator, players game.Roster) {
	defer m.wg.Done()
	defer close(orch.done)
	defer orch.cancel()
	defer func() {
		m.mu.Lock()
		if m.running[orch.session.GroupID] == orch {
			delete(m.running, orch.session.GroupID)
		}
		m.mu.Unlock()
	}()

	winner, err := orch.Run(ctx, players)
	if err != nil {
		log.Printf("🛑 game %s ended: %v", orch.session.ID, err)
		return
	}

	// Sends here outlive the inbound message that started the game
	m.send(context.Background(), orch.session.GroupID, m.msgs.GameOverFor(string(winner)))
	m.store.ResetSession(orch.session)
}

func (m *Moderator) stop(ctx context.Context, ev transport.Event) {
	session, err := m.store.GetSession(ev.ChatID)
	if err != nil || session.Status() == game.StatusIdle {
		return
	}

	m.mu.Lock()
	orch := m.running[ev.ChatID]
	m.mu.Unlock()
	if orch != nil && orch.session == session {
		orch.cancel()
		<-orch.done
	}

	m.store.ResetSession(session)
	log.Printf("🛑 game %s stopped in %d", session.ID, ev.ChatID)
	m.send(ctx, ev.ChatID, m.msgs.Stopped)
}

func (m *Moderator) players(ctx context.Context, ev transport.Event) {
	session, err := m.store.GetSession(ev.ChatID)
	if err != nil || session.Status() == game.StatusIdle {
		return
	}
	m.send(ctx, ev.ChatID, m.msgs.Players(session.AliveNames()))
}

func (m *Moderator) forward(groupID int64, ev transport.Event) {
	m.mu.Lock()
	orch := m.running[groupID]
	m.mu.Unlock()
	if orch != nil {
		orch.Deliver(ev)
	}
}

// Running reports whether a game is being played in groupID
func (m *Moderator) Running(groupID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.running[groupID]
	return ok
}

// Close stops every running game and waits for them to exit
func (m *Moderator) Close() {
	m.mu.Lock()
	for _, orch := range m.running {
		orch.cancel()
	}
	m.mu.Unlock()
	m.wg.Wait()
}

func (m *Moderator) send(ctx context.Context, chatID int64, text string) {
	if err := m.sender.Send(ctx, chatID, text); err != nil {
		log.Printf("❌ send to %d failed: %v", chatID, err)
	}
}
