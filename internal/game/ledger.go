package game

import "sort"

// Standing is one target's tally in the current round
type Standing struct {
	Target *Player
	Votes  int
}

// Resolution is the outcome of a day vote
type Resolution struct {
	Draw       bool
	Eliminated *Player
	Standings  []Standing
}

// Ledger tallies the day votes of a single round
type Ledger struct {
	tallies map[*Player]int
	order   []*Player // first vote order, keeps Standings deterministic
	cast    int
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{tallies: make(map[*Player]int)}
}

// Cast records voter's vote for the alive player named targetName.
// The tally is left untouched when the voter is ineligible or the name
// does not resolve.
func (l *Ledger) Cast(roster Roster, voter *Player, targetName string) (*Player, error) {
	if voter == nil || !voter.Alive || voter.Voted {
		return nil, ErrIneligibleVoter
	}
	target := roster.FindByName(targetName)
	if target == nil {
		return nil, ErrInvalidTarget
	}

	if _, seen := l.tallies[target]; !seen {
		l.order = append(l.order, target)
	}
	l.tallies[target]++
	l.cast++
	voter.Voted = true
	return target, nil
}

// Standings returns the tallies ordered by descending votes
func (l *Ledger) Standings() []Standing {
	standings := make([]Standing, 0, len(l.order))
	for _, p := range l.order {
		standings = append(standings, Standing{Target: p, Votes: l.tallies[p]})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Votes > standings[j].Votes
	})
	return standings
}

// EarlyMajority reports whether the leading target has more than half of
// the alive players' votes
func (l *Ledger) EarlyMajority(roster Roster) bool {
	standings := l.Standings()
	if len(standings) == 0 {
		return false
	}
	return float64(standings[0].Votes) > float64(roster.CountAlive())/2
}

// Complete reports whether voting is over: every alive player has voted
// or a majority has already been reached
func (l *Ledger) Complete(roster Roster) bool {
	return l.cast >= roster.CountAlive() || l.EarlyMajority(roster)
}

// Resolve eliminates the top target unless the top two tallies are tied.
// A single candidate is not a tie; no votes at all is a draw.
func (l *Ledger) Resolve() Resolution {
	standings := l.Standings()
	res := Resolution{Standings: standings}
	if len(standings) == 0 {
		res.Draw = true
		return res
	}
	if len(standings) > 1 && standings[0].Votes == standings[1].Votes {
		res.Draw = true
		return res
	}
	res.Eliminated = standings[0].Target
	Kill(res.Eliminated)
	return res
}

// ResetRound clears all tallies and the voted flag of every alive player
func (l *Ledger) ResetRound(roster Roster) {
	l.tallies = make(map[*Player]int)
	l.order = nil
	l.cast = 0
	for _, p := range roster {
		if p.Alive {
			p.Voted = false
		}
	}
}
