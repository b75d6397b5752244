// Package rounds implements the single-interaction chance games: each
// round is a pure function of a bet and a random source, returning a
// gross profit for the shared settle path to fee and credit.
package rounds

import (
	"fmt"

	"casino-core/internal/game"
	"casino-core/internal/pkg/rng"
)

// Result is the outcome of one round. Profit is gross, before the house
// fee; a losing round carries the negated stake.
type Result struct {
	Outcome game.Outcome
	Profit  int64
	Detail  string
}

func lose(bet int64, detail string) Result {
	return Result{Outcome: game.OutcomeLose, Profit: -bet, Detail: detail}
}

func win(profit int64, detail string) Result {
	return Result{Outcome: game.OutcomeWin, Profit: profit, Detail: detail}
}

func push(detail string) Result {
	return Result{Outcome: game.OutcomePush, Detail: detail}
}

// Gamble is a 50/50 coin gamble at even money.
func Gamble(src rng.Source, bet int64) (Result, error) {
	n, err := src.Int(0, 1)
	if err != nil {
		return Result{}, err
	}
	if n == 1 {
		return win(bet, "win"), nil
	}
	return lose(bet, "lose"), nil
}

// HighLow picks. The next card must beat (or undercut) the first.
const (
	PickHigher = "higher"
	PickLower  = "lower"
)

// ErrBadHighLowPick is returned for a pick other than higher/lower.
var ErrBadHighLowPick = fmt.Errorf("pick must be %q or %q", PickHigher, PickLower)

// cardName renders a 2-14 card value with court names.
func cardName(v int) string {
	switch v {
	case 11:
		return "J"
	case 12:
		return "Q"
	case 13:
		return "K"
	case 14:
		return "A"
	}
	return fmt.Sprintf("%d", v)
}

// HighLow draws two cards (2-14); a tie pushes, a correct call pays even
// money.
func HighLow(src rng.Source, bet int64, pick string) (Result, error) {
	if pick != PickHigher && pick != PickLower {
		return Result{}, ErrBadHighLowPick
	}

	a, err := src.Int(2, 14)
	if err != nil {
		return Result{}, err
	}
	b, err := src.Int(2, 14)
	if err != nil {
		return Result{}, err
	}

	detail := fmt.Sprintf("%s → %s", cardName(a), cardName(b))
	switch {
	case b == a:
		return push(detail), nil
	case (b > a) == (pick == PickHigher):
		return win(bet, detail), nil
	}
	return lose(bet, detail), nil
}
