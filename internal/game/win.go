package game

// Winner names the winning team, if any
type Winner string

const (
	WinnerNone     Winner = ""
	WinnerCitizens Winner = "citizens"
	WinnerMafia    Winner = "mafia"
)

// Evaluate checks whether the game is over.
// Citizens win as soon as the murderer is dead or detained; otherwise the
// mafia wins once two or fewer players are alive.
func Evaluate(murderer *Player, roster Roster) Winner {
	if murderer == nil {
		return WinnerNone
	}
	if !murderer.Alive || murderer.Detained {
		return WinnerCitizens
	}
	if roster.CountAlive() <= 2 {
		return WinnerMafia
	}
	return WinnerNone
}
