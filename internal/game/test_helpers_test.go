package game

import "fmt"

// newRoster creates n alive citizens named P1..Pn with ids 1..n
func newRoster(n int) Roster {
	roster := make(Roster, 0, n)
	for i := 1; i <= n; i++ {
		roster = append(roster, NewPlayer(int64(i), fmt.Sprintf("P%d", i)))
	}
	return roster
}

// recruitingSession returns a recruiting session holding P1..Pn
func recruitingSession(n int) *Session {
	s := NewSession(-100, MinPlayers)
	if err := s.OpenRecruiting(); err != nil {
		panic(err)
	}
	for i := 1; i <= n; i++ {
		if _, err := s.AddPlayer(int64(i), fmt.Sprintf("P%d", i)); err != nil {
			panic(err)
		}
	}
	return s
}

// forceRoles overrides the random assignment with a known murderer and detective
func (s *Session) forceRoles(murdererID, detectiveID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.roster {
		p.Role = RoleCitizen
	}
	s.murderer = s.roster.FindByID(murdererID)
	s.murderer.Role = RoleMurderer
	s.detective = s.roster.FindByID(detectiveID)
	s.detective.Role = RoleDetective
}
