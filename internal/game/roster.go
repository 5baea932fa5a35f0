package game

import "strings"

// Roster is the ordered list of players, in join order
type Roster []*Player

// CountAlive returns the number of alive players
func (r Roster) CountAlive() int {
	count := 0
	for _, p := range r {
		if p.Alive {
			count++
		}
	}
	return count
}

// FindByName returns the alive player holding name, or nil.
// Dead players never match so their names can be reused.
func (r Roster) FindByName(name string) *Player {
	for _, p := range r {
		if p.Alive && p.Name == name {
			return p
		}
	}
	return nil
}

// FindByID returns the player with the given external id, alive or not
func (r Roster) FindByID(id int64) *Player {
	for _, p := range r {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Alive returns the alive players in join order
func (r Roster) Alive() Roster {
	alive := make(Roster, 0, len(r))
	for _, p := range r {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	return alive
}

// Names returns the display names joined with ", "
func (r Roster) Names() string {
	names := make([]string, 0, len(r))
	for _, p := range r {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

// add appends a new citizen unless an alive player already has the name
func (r Roster) add(id int64, name string) (Roster, *Player, error) {
	if r.FindByName(name) != nil {
		return r, nil, ErrDuplicateName
	}
	if p := r.FindByID(id); p != nil && p.Alive {
		return r, nil, ErrAlreadyJoined
	}
	p := NewPlayer(id, name)
	return append(r, p), p, nil
}
