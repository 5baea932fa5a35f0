package moderator

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"burningtown/internal/game"
	"burningtown/internal/messages"
	"burningtown/internal/transport"
)

var (
	ErrGameStopped = errors.New("game stopped")
	errTimeout     = errors.New("action timed out")
)

type inbound struct {
	ev    transport.Event
	round uint64
}

// Orchestrator plays the rounds of one active session. It is the only
// goroutine that mutates the session while it is active.
type Orchestrator struct {
	session *game.Session
	sender  transport.Sender
	msgs    *messages.Catalog
	timeout time.Duration
	debug   bool

	inbox  chan inbound
	cancel context.CancelFunc
	done   chan struct{}
}

func newOrchestrator(session *game.Session, sender transport.Sender, msgs *messages.Catalog, timeout time.Duration, inboxSize int, debug bool) *Orchestrator {
	return &Orchestrator{
		session: session,
		sender:  sender,
		msgs:    msgs,
		timeout: timeout,
		debug:   debug,
		inbox:   make(chan inbound, inboxSize),
		done:    make(chan struct{}),
	}
}

// Deliver queues an inbound message, stamped with the current round.
// It never blocks; a full inbox drops the message.
func (o *Orchestrator) Deliver(ev transport.Event) bool {
	select {
	case o.inbox <- inbound{ev: ev, round: o.session.Round()}:
		return true
	default:
		log.Printf("⚠️ game %s inbox full, dropping message from %d", o.session.ID, ev.SenderID)
		return false
	}
}

// Run notifies every player of their role, then plays rounds until a team
// wins or ctx is cancelled
func (o *Orchestrator) Run(ctx context.Context, players game.Roster) (game.Winner, error) {
	for _, p := range players {
		o.send(ctx, p.ID, o.msgs.RoleFor(string(p.Role), p.Role.Emoji()))
	}

	for {
		o.send(ctx, o.session.GroupID, o.msgs.Players(o.session.AliveNames()))

		if err := o.playRound(ctx); err != nil {
			return game.WinnerNone, err
		}
		if winner := o.session.EndRound(); winner != game.WinnerNone {
			log.Printf("🏁 game %s won by %s after %d rounds", o.session.ID, winner, o.session.Round())
			return winner, nil
		}
	}
}

func (o *Orchestrator) playRound(ctx context.Context) error {
	if err := o.nightMurder(ctx); err != nil {
		return err
	}
	if o.session.DetectiveCanAct() {
		if err := o.nightDetective(ctx); err != nil {
			return err
		}
	}
	if o.session.VoteNeeded() {
		if err := o.dayVote(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) nightMurder(ctx context.Context) error {
	actor := o.session.BeginPhase(game.PhaseNightMurder)
	o.send(ctx, o.session.GroupID, o.msgs.MafiaTurn)
	o.send(ctx, actor.ID, o.msgs.MafiaPrompt)

	res, err := o.awaitNightAction(ctx)
	if errors.Is(err, errTimeout) {
		o.send(ctx, o.session.GroupID, o.msgs.TurnTimeoutFor("mafia"))
		return nil
	}
	if err != nil {
		return err
	}

	o.send(ctx, o.session.GroupID, o.msgs.DeadFor(res.Target))
	return nil
}

func (o *Orchestrator) nightDetective(ctx context.Context) error {
	actor := o.session.BeginPhase(game.PhaseNightDetective)
	o.send(ctx, o.session.GroupID, o.msgs.DetectiveTurn)
	o.send(ctx, actor.ID, o.msgs.DetectivePrompt)

	res, err := o.awaitNightAction(ctx)
	if errors.Is(err, errTimeout) {
		o.send(ctx, o.session.GroupID, o.msgs.TurnTimeoutFor("policeman"))
		return nil
	}
	if err != nil {
		return err
	}

	if o.debug {
		log.Printf("🔍 game %s: detective suspected %s, detained=%v", o.session.ID, res.Target.Name, res.Detained)
	}
	return nil
}

// awaitNightAction blocks until the turn holder names an alive player in
// their private chat. Invalid names are answered with a re-prompt.
func (o *Orchestrator) awaitNightAction(ctx context.Context) (game.NightResult, error) {
	deadline := o.deadline()
	for {
		ev, err := o.next(ctx, deadline)
		if err != nil {
			return game.NightResult{}, err
		}
		holder := o.session.TurnHolder()
		if holder == nil || ev.Kind != transport.ChatPrivate || ev.SenderID != holder.ID {
			continue
		}

		res, err := o.session.NightAction(holder.ID, strings.TrimSpace(ev.Text))
		switch {
		case errors.Is(err, game.ErrInvalidTarget):
			o.send(ctx, holder.ID, o.msgs.InvalidTarget)
			continue
		case err != nil:
			log.Printf("⚠️ game %s: night action rejected: %v", o.session.ID, err)
			continue
		}
		return res, nil
	}
}

func (o *Orchestrator) dayVote(ctx context.Context) error {
	o.session.BeginPhase(game.PhaseDayVote)
	o.send(ctx, o.session.GroupID, o.msgs.VoteStart)

	deadline := o.deadline()
	for !o.session.VotingComplete() {
		ev, err := o.next(ctx, deadline)
		if errors.Is(err, errTimeout) {
			o.send(ctx, o.session.GroupID, o.msgs.VoteTimeout)
			break
		}
		if err != nil {
			return err
		}
		if ev.Kind != transport.ChatGroup || ev.ChatID != o.session.GroupID {
			continue
		}

		// Ineligible voters and unknown names are ignored without a reply
		voter, target, err := o.session.CastVote(ev.SenderID, strings.TrimSpace(ev.Text))
		if err != nil {
			continue
		}
		o.send(ctx, o.session.GroupID, o.msgs.VotedFor(voter.Name, target.Name))
	}

	res := o.session.ResolveVotes()
	if res.Draw {
		o.send(ctx, o.session.GroupID, o.msgs.Draw)
		return nil
	}
	o.send(ctx, o.session.GroupID, o.msgs.DeadFor(res.Eliminated))
	return nil
}

// next returns the next message of the current round
func (o *Orchestrator) next(ctx context.Context, deadline <-chan time.Time) (transport.Event, error) {
	for {
		select {
		case <-ctx.Done():
			return transport.Event{}, ErrGameStopped
		case <-deadline:
			return transport.Event{}, errTimeout
		case in := <-o.inbox:
			if in.round != o.session.Round() {
				if o.debug {
					log.Printf("🗑️ game %s: discarding message from round %d", o.session.ID, in.round)
				}
				continue
			}
			return in.ev, nil
		}
	}
}

// deadline is nil, blocking forever, when no timeout is configured
func (o *Orchestrator) deadline() <-chan time.Time {
	if o.timeout <= 0 {
		return nil
	}
	return time.After(o.timeout)
}

func (o *Orchestrator) send(ctx context.Context, chatID int64, text string) {
	if err := o.sender.Send(ctx, chatID, text); err != nil {
		log.Printf("❌ game %s: send to %d failed: %v", o.session.ID, chatID, err)
	}
}
