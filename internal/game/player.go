package game

import "fmt"

// Player represents a player in the game
type Player struct {
	ID       int64 // External chat id, also the player's private chat
	Name     string
	Role     Role
	Alive    bool
	Detained bool // Only meaningful for RoleMurderer
	Voted    bool // Voted in the current round
}

// NewPlayer creates a new alive citizen
func NewPlayer(id int64, name string) *Player {
	return &Player{
		ID:    id,
		Name:  name,
		Role:  RoleCitizen,
		Alive: true,
	}
}

// String renders the player the way death announcements show them
func (p *Player) String() string {
	return fmt.Sprintf("%s, %s %s", p.Name, p.Role, p.Role.Emoji())
}
