package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a session
type Status string

const (
	StatusIdle       Status = "idle"
	StatusRecruiting Status = "recruiting"
	StatusActive     Status = "active"
	StatusConcluded  Status = "concluded"
)

// Phase is the step of the current round while the session is active
type Phase string

const (
	PhaseNone           Phase = ""
	PhaseNightMurder    Phase = "night_murder"
	PhaseNightDetective Phase = "night_detective"
	PhaseDayVote        Phase = "day_vote"
	PhaseRoundEnd       Phase = "round_end"
)

var transitions = map[Status]Status{
	StatusIdle:       StatusRecruiting,
	StatusRecruiting: StatusActive,
	StatusActive:     StatusConcluded,
}

// Session is one game played in one group chat.
// All methods are safe for concurrent use.
type Session struct {
	ID         string
	GroupID    int64
	MinPlayers int
	CreatedAt  time.Time
	StartedAt  time.Time

	status     Status
	phase      Phase
	roster     Roster
	murderer   *Player
	detective  *Player
	turnHolder *Player
	ledger     *Ledger
	round      uint64
	winner     Winner

	mu sync.RWMutex
}

// Snapshot is a copy of the public session state. Roles are never included.
type Snapshot struct {
	ID      string   `json:"id"`
	GroupID int64    `json:"groupId"`
	Status  Status   `json:"status"`
	Phase   Phase    `json:"phase,omitempty"`
	Round   uint64   `json:"round"`
	Players int      `json:"players"`
	Alive   []string `json:"alive"`
	Winner  Winner   `json:"winner,omitempty"`

	CreatedAt time.Time  `json:"createdAt"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
}

// NewSession creates an idle session for a group chat
func NewSession(groupID int64, minPlayers int) *Session {
	if minPlayers < MinPlayers {
		minPlayers = MinPlayers
	}
	return &Session{
		ID:         uuid.NewString(),
		GroupID:    groupID,
		MinPlayers: minPlayers,
		CreatedAt:  time.Now(),
		status:     StatusIdle,
		ledger:     NewLedger(),
	}
}

func (s *Session) transition(to Status) error {
	if transitions[s.status] != to {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.status, to)
	}
	s.status = to
	return nil
}

// Status returns the current status
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Phase returns the current round phase
func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Round returns the round token. It increases at every round boundary.
func (s *Session) Round() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.round
}

// Winner returns the winning team once the session has concluded
func (s *Session) Winner() Winner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.winner
}

// OpenRecruiting moves an idle session to recruiting
func (s *Session) OpenRecruiting() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transition(StatusRecruiting)
}

// AddPlayer adds a player while recruiting
func (s *Session) AddPlayer(id int64, name string) (*Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusRecruiting {
		return nil, ErrNotRecruiting
	}
	roster, p, err := s.roster.add(id, name)
	if err != nil {
		return nil, err
	}
	s.roster = roster
	return p, nil
}

// Players returns a copy of the roster slice
func (s *Session) Players() Roster {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := make(Roster, len(s.roster))
	copy(players, s.roster)
	return players
}

// Player returns the player with the given external id, or nil
func (s *Session) Player(id int64) *Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roster.FindByID(id)
}

// CountAlive returns the number of alive players
func (s *Session) CountAlive() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roster.CountAlive()
}

// AliveNames returns the alive players' names joined with ", "
func (s *Session) AliveNames() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roster.Alive().Names()
}

// Murderer returns the murderer once roles are assigned
func (s *Session) Murderer() *Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.murderer
}

// Detective returns the detective once roles are assigned
func (s *Session) Detective() *Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detective
}

// TurnHolder returns the player whose night action is awaited, or nil
func (s *Session) TurnHolder() *Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.turnHolder
}

// Start assigns roles and activates the session. The session stays
// recruiting when there are not enough players.
func (s *Session) Start(rng *rand.Rand) (Roster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case StatusRecruiting:
	case StatusActive, StatusConcluded:
		return nil, ErrGameAlreadyStarted
	default:
		return nil, ErrNotRecruiting
	}
	if len(s.roster) < s.MinPlayers {
		return nil, ErrNotEnoughPlayers
	}

	murderer, detective, err := AssignRoles(s.roster, rng)
	if err != nil {
		return nil, err
	}
	if err := s.transition(StatusActive); err != nil {
		return nil, err
	}
	s.murderer = murderer
	s.detective = detective
	s.StartedAt = time.Now()
	s.ledger.ResetRound(s.roster)

	players := make(Roster, len(s.roster))
	copy(players, s.roster)
	return players, nil
}

// BeginPhase enters a round phase and returns the player whose action is
// awaited, if any
func (s *Session) BeginPhase(phase Phase) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = phase
	switch phase {
	case PhaseNightMurder:
		s.turnHolder = s.murderer
	case PhaseNightDetective:
		s.turnHolder = s.detective
	default:
		s.turnHolder = nil
	}
	return s.turnHolder
}

// DetectiveCanAct reports whether the detective's night step is played
func (s *Session) DetectiveCanAct() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detective != nil && s.detective.Alive && s.roster.CountAlive() > 2
}

// VoteNeeded reports whether the day vote is played
func (s *Session) VoteNeeded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.murderer != nil && !s.murderer.Detained && s.roster.CountAlive() > 2
}

// NightAction applies the turn holder's action to the alive player named
// targetName
func (s *Session) NightAction(actorID int64, targetName string) (NightResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.turnHolder == nil || s.turnHolder.ID != actorID {
		return NightResult{}, ErrNotYourTurn
	}
	target := s.roster.FindByName(targetName)
	if target == nil {
		return NightResult{Actor: s.turnHolder}, ErrInvalidTarget
	}
	return PerformNightAction(s.turnHolder, target)
}

// CastVote records a day vote from the player with external id voterID
func (s *Session) CastVote(voterID int64, targetName string) (voter, target *Player, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseDayVote {
		return nil, nil, ErrIneligibleVoter
	}
	voter = s.roster.FindByID(voterID)
	target, err = s.ledger.Cast(s.roster, voter, targetName)
	if err != nil {
		return nil, nil, err
	}
	return voter, target, nil
}

// VotingComplete reports whether the day vote can be resolved
func (s *Session) VotingComplete() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Complete(s.roster)
}

// ResolveVotes applies the day vote outcome
func (s *Session) ResolveVotes() Resolution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Resolve()
}

// EndRound resets the ledger, advances the round token and evaluates the
// win condition. A winner concludes the session.
func (s *Session) EndRound() Winner {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = PhaseRoundEnd
	s.turnHolder = nil
	s.ledger.ResetRound(s.roster)
	s.round++

	winner := Evaluate(s.murderer, s.roster)
	if winner != WinnerNone {
		if err := s.transition(StatusConcluded); err == nil {
			s.winner = winner
			s.phase = PhaseNone
		}
	}
	return winner
}

// Reset discards the roster and roles and returns the session to idle.
// It is allowed from any status.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = StatusIdle
	s.phase = PhaseNone
	s.roster = nil
	s.murderer = nil
	s.detective = nil
	s.turnHolder = nil
	s.ledger = NewLedger()
	s.winner = WinnerNone
	s.StartedAt = time.Time{}
	s.round++
}

// Snapshot returns a copy of the public state
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alive := s.roster.Alive()
	names := make([]string, 0, len(alive))
	for _, p := range alive {
		names = append(names, p.Name)
	}
	snap := Snapshot{
		ID:        s.ID,
		GroupID:   s.GroupID,
		Status:    s.status,
		Phase:     s.phase,
		Round:     s.round,
		Players:   len(s.roster),
		Alive:     names,
		Winner:    s.winner,
		CreatedAt: s.CreatedAt,
	}
	if !s.StartedAt.IsZero() {
		started := s.StartedAt
		snap.StartedAt = &started
	}
	return snap
}
