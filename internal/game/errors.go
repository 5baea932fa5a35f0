package game

import "errors"

var (
	ErrNotEnoughPlayers   = errors.New("not enough players to start")
	ErrGameAlreadyStarted = errors.New("game has already started")
	ErrNotRecruiting      = errors.New("game is not recruiting players")
	ErrDuplicateName      = errors.New("an alive player with that name already exists")
	ErrAlreadyJoined      = errors.New("player has already joined")
	ErrInvalidTarget      = errors.New("no alive player with that name")
	ErrIneligibleVoter    = errors.New("voter is dead, not playing or already voted")
	ErrNoNightAction      = errors.New("role has no night action")
	ErrNotYourTurn        = errors.New("it is not this player's turn")
	ErrInvalidTransition  = errors.New("invalid game status transition")
)
