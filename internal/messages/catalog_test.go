package messages

import (
	"testing"

	"burningtown/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Contains(t, c.Intro, "!join")
	assert.Equal(t, "It's the mafia turn", c.MafiaTurn)
	assert.Equal(t, "Game over! Team citizens had won!", c.GameOverFor(string(game.WinnerCitizens)))
	assert.Equal(t, "Alice voted for Bob", c.VotedFor("Alice", "Bob"))
	assert.Contains(t, c.AlreadyPlayingFor("Alice"), "Alice, you are already playing")
	assert.Equal(t, "Playing players:\nAlice, Bob", c.Players("Alice, Bob"))
	assert.Contains(t, c.NotEnoughPlayersFor(4), "at least 4 players")
}

func TestCatalog_DeadFor(t *testing.T) {
	c := MustDefault()
	p := game.NewPlayer(1, "Alice")
	p.Role = game.RoleDetective

	assert.Equal(t, "Alice, policeman \U0001F46E is now dead", c.DeadFor(p))
}

func TestLoad(t *testing.T) {
	t.Run("rejects invalid yaml", func(t *testing.T) {
		_, err := Load([]byte("intro: [unterminated"))
		assert.Error(t, err)
	})

	t.Run("rejects missing messages", func(t *testing.T) {
		_, err := Load([]byte("intro: hello\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "registerFirst")
	})
}
