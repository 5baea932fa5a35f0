package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoster_FindByName(t *testing.T) {
	roster := newRoster(3)
	assert.Same(t, roster[1], roster.FindByName("P2"))
	assert.Nil(t, roster.FindByName("nobody"))
	assert.Nil(t, roster.FindByName("p2"), "names are case sensitive")

	roster[1].Alive = false
	assert.Nil(t, roster.FindByName("P2"), "dead players never match")
}

func TestRoster_CountAlive(t *testing.T) {
	roster := newRoster(5)
	assert.Equal(t, 5, roster.CountAlive())

	roster[0].Alive = false
	roster[4].Alive = false
	assert.Equal(t, 3, roster.CountAlive())
	assert.Equal(t, "P2, P3, P4", roster.Alive().Names())
}

func TestRoster_Add(t *testing.T) {
	var roster Roster

	roster, p, err := roster.add(1, "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name)

	roster, _, err = roster.add(2, "Bob")
	require.NoError(t, err)

	_, _, err = roster.add(3, "Alice")
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, _, err = roster.add(2, "Robert")
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	roster[0].Alive = false
	roster, p, err = roster.add(3, "Alice")
	require.NoError(t, err, "a dead player's name can be reused")
	assert.Equal(t, int64(3), p.ID)

	assert.Equal(t, "Alice, Bob, Alice", roster.Names(), "join order is preserved")

	roster, _, err = roster.add(1, "Ally")
	require.NoError(t, err, "an id only blocks a rejoin while its player is alive")
	assert.Len(t, roster, 4)
}
