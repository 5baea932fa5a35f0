package game

import (
	"math/rand"
)

// Role tags a player with the part they play
type Role string

const (
	RoleCitizen   Role = "citizen"
	RoleMurderer  Role = "murderer"
	RoleDetective Role = "policeman"
)

// MinPlayers is the smallest roster a game can be played with
const MinPlayers = 4

// Emoji returns the icon shown next to the role
func (r Role) Emoji() string {
	switch r {
	case RoleMurderer:
		return "\U0001F9DB"
	case RoleDetective:
		return "\U0001F46E"
	default:
		return "\U0001F477"
	}
}

// AssignRoles picks the murderer and the detective uniformly at random.
// Everyone else is reset to citizen. rng may be nil.
func AssignRoles(players []*Player, rng *rand.Rand) (murderer, detective *Player, err error) {
	if len(players) < MinPlayers {
		return nil, nil, ErrNotEnoughPlayers
	}

	var perm []int
	if rng != nil {
		perm = rng.Perm(len(players))
	} else {
		perm = rand.Perm(len(players))
	}

	for _, p := range players {
		p.Role = RoleCitizen
		p.Detained = false
	}

	murderer = players[perm[0]]
	murderer.Role = RoleMurderer
	detective = players[perm[1]]
	detective.Role = RoleDetective

	return murderer, detective, nil
}

// Kill marks target as dead. There is no protection or self-target check.
func Kill(target *Player) {
	target.Alive = false
}

// Detain reports whether target is the murderer and, if so, marks them detained.
// A dead murderer can still be detained.
func Detain(target *Player) bool {
	if target.Role != RoleMurderer {
		return false
	}
	target.Detained = true
	return true
}

// NightResult is the outcome of one night action
type NightResult struct {
	Actor    *Player
	Target   *Player
	Killed   bool
	Detained bool
}

// PerformNightAction dispatches on the actor's role
func PerformNightAction(actor, target *Player) (NightResult, error) {
	res := NightResult{Actor: actor, Target: target}
	switch actor.Role {
	case RoleMurderer:
		Kill(target)
		res.Killed = true
	case RoleDetective:
		res.Detained = Detain(target)
	default:
		return res, ErrNoNightAction
	}
	return res, nil
}
