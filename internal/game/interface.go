// Package game defines the interactive game machine interface and the
// registry that routes session actions to the right machine.
package game

import (
	"errors"

	"casino-core/internal/pkg/rng"
)

// Kind tags the game a session is running.
type Kind string

// Interactive game kinds.
const (
	KindBlackjack Kind = "blackjack"
	KindMines     Kind = "mines"
	KindTicTacToe Kind = "tictactoe"
)

// ErrBadState is returned when a machine receives a state payload of the
// wrong type for its kind.
var ErrBadState = errors.New("state payload does not match game kind")

// Outcome classifies a terminal step.
type Outcome string

// Terminal outcomes. None means the game continues.
const (
	OutcomeNone Outcome = ""
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
	OutcomePush Outcome = "push"
	OutcomeDraw Outcome = "draw"
)

// Step is the effect of applying one action to a game. The zero value is
// a no-op acknowledgment: unrecognized action codes return it unchanged.
// Machines never touch the ledger; the caller applies Payout exactly once
// when Done is set.
type Step struct {
	Done    bool    // terminal: the session should end
	Outcome Outcome // win/lose/push/draw when Done
	Payout  int64   // total amount to credit back (stake + net profit)
	Profit  int64   // net profit after fee; negative means the stake is lost
	Note    string  // short status line for rendering
}

// Machine is one interactive game's transition logic. Advance mutates the
// given state in place and reports the resulting effects; it must not
// perform any I/O.
type Machine interface {
	// Kind returns the game kind this machine handles.
	Kind() Kind

	// Advance applies one action to the game state.
	Advance(state any, action string, src rng.Source) (Step, error)
}
