package moderator

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"burningtown/internal/game"
	"burningtown/internal/messages"
	"burningtown/internal/registry"
	"burningtown/internal/store"
	"burningtown/internal/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const groupID int64 = -100

type sent struct {
	chatID int64
	text   string
}

type recordingSender struct {
	mu   sync.Mutex
	msgs []sent
}

func (r *recordingSender) Send(ctx context.Context, chatID int64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, sent{chatID: chatID, text: text})
	return nil
}

func (r *recordingSender) texts(chatID int64) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for _, m := range r.msgs {
		if m.chatID == chatID {
			out = append(out, m.text)
		}
	}
	return out
}

func (r *recordingSender) has(chatID int64, text string) bool {
	for _, t := range r.texts(chatID) {
		if t == text {
			return true
		}
	}
	return false
}

type harness struct {
	t        *testing.T
	m        *Moderator
	store    *store.MemoryStore
	registry *registry.MemoryStore
	sender   *recordingSender
	msgs     *messages.Catalog
}

func newHarness(t *testing.T, timeout time.Duration, registered ...int64) *harness {
	return newHarnessWithGames(t, 1, timeout, registered...)
}

func newHarnessWithGames(t *testing.T, maxGames int, timeout time.Duration, registered ...int64) *harness {
	h := &harness{
		t:        t,
		store:    store.NewMemoryStore(maxGames, game.MinPlayers),
		registry: registry.NewMemoryStore(registered...),
		sender:   &recordingSender{},
		msgs:     messages.MustDefault(),
	}
	h.m = New(Config{
		Store:         h.store,
		Registry:      h.registry,
		Sender:        h.sender,
		Messages:      h.msgs,
		ActionTimeout: timeout,
		Rand:          rand.New(rand.NewSource(1)),
	})
	t.Cleanup(h.m.Close)
	return h
}

func name(id int64) string { return fmt.Sprintf("P%d", id) }

func (h *harness) group(id int64, text string) {
	h.groupIn(groupID, id, text)
}

func (h *harness) groupIn(chatID, id int64, text string) {
	h.m.Handle(context.Background(), transport.Event{
		SenderID: id, SenderName: name(id), ChatID: chatID, Kind: transport.ChatGroup, Text: text,
	})
}

func (h *harness) private(id int64, text string) {
	h.m.Handle(context.Background(), transport.Event{
		SenderID: id, SenderName: name(id), ChatID: id, Kind: transport.ChatPrivate, Text: text,
	})
}

// startGame opens a game, joins players 1..n and starts it
func (h *harness) startGame(n int) *game.Session {
	h.group(1, "!game")
	for id := int64(2); id <= int64(n); id++ {
		h.group(id, "!join")
	}
	h.group(1, "!start")

	session, err := h.store.GetSession(groupID)
	require.NoError(h.t, err)
	require.Equal(h.t, game.StatusActive, session.Status())
	return session
}

func (h *harness) waitPhase(session *game.Session, phase game.Phase) {
	require.Eventually(h.t, func() bool {
		return session.Phase() == phase
	}, 2*time.Second, 5*time.Millisecond, "waiting for phase %q", phase)
}

// citizens returns the alive citizens of session
func citizens(session *game.Session) []*game.Player {
	var out []*game.Player
	for _, p := range session.Players() {
		if p.Role == game.RoleCitizen {
			out = append(out, p)
		}
	}
	return out
}

func ids(n int) []int64 {
	out := make([]int64, 0, n)
	for i := int64(1); i <= int64(n); i++ {
		out = append(out, i)
	}
	return out
}

func TestPrivateMessageRegisters(t *testing.T) {
	h := newHarness(t, 0)

	h.private(7, "hello")
	ok, err := h.registry.HasRegistered(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{h.msgs.RegisteredFor("P7")}, h.sender.texts(7))

	h.private(7, "hello again")
	assert.Len(t, h.sender.texts(7), 1, "confirmation is sent once")
}

func TestJoinRequiresRegistration(t *testing.T) {
	h := newHarness(t, 0, 1)

	h.group(1, "!game")
	h.group(2, "!join")

	texts := h.sender.texts(groupID)
	assert.Contains(t, texts, h.msgs.Intro)
	assert.Contains(t, texts, h.msgs.JoinedFor("P1"))
	assert.Contains(t, texts, h.msgs.RegisterFirstFor("P2"))

	session, err := h.store.GetSession(groupID)
	require.NoError(t, err)
	assert.Len(t, session.Players(), 1)

	h.private(2, "hi")
	h.group(2, "!join")
	assert.Len(t, session.Players(), 2)
}

func TestDuplicateJoinIsIgnored(t *testing.T) {
	h := newHarness(t, 0, 1, 2)

	h.group(1, "!game")
	h.group(2, "!join")
	h.group(2, "!join")
	h.group(1, "!game")

	session, err := h.store.GetSession(groupID)
	require.NoError(t, err)
	assert.Len(t, session.Players(), 2)

	joined := 0
	for _, text := range h.sender.texts(groupID) {
		if strings.HasSuffix(text, "joined the game.") {
			joined++
		}
	}
	assert.Equal(t, 2, joined)
}

func TestStartWithTooFewPlayers(t *testing.T) {
	h := newHarness(t, 0, ids(3)...)

	h.group(1, "!game")
	h.group(2, "!join")
	h.group(3, "!join")
	h.group(1, "!start")

	assert.True(t, h.sender.has(groupID, h.msgs.NotEnoughPlayersFor(4)))
	session, err := h.store.GetSession(groupID)
	require.NoError(t, err)
	assert.Equal(t, game.StatusRecruiting, session.Status())
	assert.False(t, h.m.Running(groupID))
}

func TestSecondGameIsRejected(t *testing.T) {
	h := newHarness(t, 0, 1)

	h.group(1, "!game")
	h.m.Handle(context.Background(), transport.Event{
		SenderID: 1, SenderName: "P1", ChatID: -200, Kind: transport.ChatGroup, Text: "!game",
	})

	assert.Equal(t, []string{h.msgs.TooManyGames}, h.sender.texts(-200))
}

func TestPlayerCannotJoinTwoGames(t *testing.T) {
	const otherGroup int64 = -200
	h := newHarnessWithGames(t, 2, 0, ids(8)...)
	session := h.startGame(4)

	h.groupIn(otherGroup, 5, "!game")
	h.groupIn(otherGroup, 1, "!join")
	assert.True(t, h.sender.has(otherGroup, h.msgs.AlreadyPlayingFor("P1")))

	for id := int64(6); id <= 8; id++ {
		h.groupIn(otherGroup, id, "!join")
	}
	h.groupIn(otherGroup, 5, "!start")
	other, err := h.store.GetSession(otherGroup)
	require.NoError(t, err)
	require.Equal(t, game.StatusActive, other.Status())
	assert.Nil(t, other.Player(1))

	// Private night actions reach the game the murderer actually plays in
	murderer := session.Murderer()
	victim := citizens(session)[0]
	h.waitPhase(session, game.PhaseNightMurder)
	h.waitPhase(other, game.PhaseNightMurder)
	h.private(murderer.ID, victim.Name)
	h.waitPhase(session, game.PhaseNightDetective)
	assert.False(t, session.Player(victim.ID).Alive)
	assert.Equal(t, game.PhaseNightMurder, other.Phase(), "the other game still waits for its murderer")
}

func TestRolesAreSentPrivately(t *testing.T) {
	h := newHarness(t, 0, ids(4)...)
	session := h.startGame(4)

	require.Eventually(t, func() bool {
		for _, p := range session.Players() {
			if !h.sender.has(p.ID, h.msgs.RoleFor(string(p.Role), p.Role.Emoji())) {
				return false
			}
		}
		return true
	}, time.Second, 5*time.Millisecond)
	assert.True(t, h.sender.has(groupID, h.msgs.Started))
}

func TestDetectiveDetainsMurderer(t *testing.T) {
	h := newHarness(t, 0, ids(4)...)
	session := h.startGame(4)
	murderer, detective := session.Murderer(), session.Detective()
	victim := citizens(session)[0]

	h.waitPhase(session, game.PhaseNightMurder)
	h.private(murderer.ID, "Nobody")
	require.Eventually(t, func() bool {
		return h.sender.has(murderer.ID, h.msgs.InvalidTarget)
	}, time.Second, 5*time.Millisecond, "invalid target is re-prompted")

	h.private(murderer.ID, victim.Name)
	h.waitPhase(session, game.PhaseNightDetective)
	h.private(detective.ID, murderer.Name)

	require.Eventually(t, func() bool {
		return h.sender.has(groupID, h.msgs.GameOverFor("citizens"))
	}, 2*time.Second, 5*time.Millisecond)

	assert.True(t, h.sender.has(groupID, h.msgs.DeadFor(victim)))
	assert.False(t, h.sender.has(groupID, h.msgs.VoteStart), "no vote once the murderer is detained")
	require.Eventually(t, func() bool {
		return session.Status() == game.StatusIdle && !h.m.Running(groupID)
	}, time.Second, 5*time.Millisecond)
}

func TestDayVoteEliminatesMurderer(t *testing.T) {
	h := newHarness(t, 0, ids(5)...)
	session := h.startGame(5)
	murderer, detective := session.Murderer(), session.Detective()
	cs := citizens(session)
	victim, suspect := cs[0], cs[1]

	h.waitPhase(session, game.PhaseNightMurder)
	h.private(murderer.ID, victim.Name)
	h.waitPhase(session, game.PhaseNightDetective)
	h.private(detective.ID, suspect.Name)
	h.waitPhase(session, game.PhaseDayVote)

	h.group(victim.ID, murderer.Name)
	h.group(detective.ID, murderer.Name)
	h.group(suspect.ID, murderer.Name)
	h.group(cs[2].ID, murderer.Name)

	require.Eventually(t, func() bool {
		return h.sender.has(groupID, h.msgs.GameOverFor("citizens"))
	}, 2*time.Second, 5*time.Millisecond)

	assert.False(t, h.sender.has(groupID, h.msgs.VotedFor(victim.Name, murderer.Name)), "dead players cannot vote")
	assert.True(t, h.sender.has(groupID, h.msgs.VotedFor(detective.Name, murderer.Name)))
	assert.True(t, h.sender.has(groupID, h.msgs.DeadFor(murderer)))
}

func TestMafiaWins(t *testing.T) {
	h := newHarness(t, 0, ids(4)...)
	session := h.startGame(4)
	murderer, detective := session.Murderer(), session.Detective()
	cs := citizens(session)

	h.waitPhase(session, game.PhaseNightMurder)
	h.private(murderer.ID, cs[0].Name)
	h.waitPhase(session, game.PhaseNightDetective)
	h.private(detective.ID, cs[1].Name)
	h.waitPhase(session, game.PhaseDayVote)

	h.group(murderer.ID, cs[1].Name)
	h.group(detective.ID, cs[1].Name)

	require.Eventually(t, func() bool {
		return h.sender.has(groupID, h.msgs.GameOverFor("mafia"))
	}, 2*time.Second, 5*time.Millisecond)
}

func TestStopDuringGame(t *testing.T) {
	h := newHarness(t, 0, ids(4)...)
	session := h.startGame(4)
	h.waitPhase(session, game.PhaseNightMurder)

	h.group(2, "!stop")

	assert.Equal(t, game.StatusIdle, session.Status())
	assert.False(t, h.m.Running(groupID))
	assert.True(t, h.sender.has(groupID, h.msgs.Stopped))

	_, err := h.store.GetSession(groupID)
	assert.ErrorIs(t, err, store.ErrGameNotFound)

	h.group(1, "!game")
	next, err := h.store.GetSession(groupID)
	require.NoError(t, err)
	assert.NotEqual(t, session.ID, next.ID)
}

func TestPlayersCommand(t *testing.T) {
	h := newHarness(t, 0, ids(2)...)

	h.group(1, "!players")
	assert.Empty(t, h.sender.texts(groupID), "no game, no answer")

	h.group(1, "!game")
	h.group(2, "!join@burningtown_bot")
	h.group(1, "!players")
	assert.True(t, h.sender.has(groupID, h.msgs.Players("P1, P2")))
}

func TestActionTimeout(t *testing.T) {
	h := newHarness(t, 20*time.Millisecond, ids(4)...)
	session := h.startGame(4)

	require.Eventually(t, func() bool {
		return h.sender.has(groupID, h.msgs.TurnTimeoutFor("mafia")) &&
			h.sender.has(groupID, h.msgs.TurnTimeoutFor("policeman")) &&
			h.sender.has(groupID, h.msgs.VoteTimeout) &&
			h.sender.has(groupID, h.msgs.Draw)
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, 4, session.CountAlive())
	assert.Equal(t, game.StatusActive, session.Status())
}

func TestCommand(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"!game", cmdGame},
		{"  !JOIN  ", cmdJoin},
		{"!start@burningtown_bot", cmdStart},
		{"!stop now", cmdStop},
		{"P1", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, command(tt.text))
		})
	}
}
