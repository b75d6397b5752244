// Package mines implements the interactive mines state machine: a 5x5
// grid where each safe reveal raises a cash-out multiplier and any mine
// ends the round as a total loss.
package mines

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"casino-core/internal/game"
	"casino-core/internal/pkg/rng"
	"casino-core/internal/wager"
)

// Grid and mine count bounds.
const (
	Cells    = 25
	MinMines = 1
	MaxMines = 12

	// MaxMultiplier caps the cash-out multiplier.
	MaxMultiplier = 100.0
)

// Actions understood by the machine. Tiles are addressed as "t<idx>".
const (
	ActionCashout = "cashout"
	ActionQuit    = "quit"

	tilePrefix = "t"
)

// ErrBadMineCount is returned for a mine count outside [MinMines, MaxMines].
var ErrBadMineCount = fmt.Errorf("mine count must be %d-%d", MinMines, MaxMines)

// State is one mines round.
type State struct {
	Bet         int64
	MineCount   int
	Mines       map[int]bool
	Revealed    [Cells]bool
	SafeReveals int
	Done        bool
}

// Chance returns the probability of revealing k safe cells in a row from
// a fresh board with the given number of safe cells among total.
func Chance(total, safe, k int) float64 {
	p := 1.0
	for i := 0; i < k; i++ {
		p *= float64(safe-i) / float64(total-i)
	}
	return p
}

// Multiplier is the cash-out multiplier after k safe reveals: the inverse
// of the chance of getting there, clamped to [1, MaxMultiplier].
func Multiplier(total, safe, k int) float64 {
	p := Chance(total, safe, k)
	if !(p > 0) {
		return 1
	}
	return math.Min(MaxMultiplier, math.Max(1, 1/p))
}

// Multiplier returns the state's current cash-out multiplier.
func (s *State) Multiplier() float64 {
	return Multiplier(Cells, Cells-s.MineCount, s.SafeReveals)
}

// Machine implements game.Machine for mines.
type Machine struct {
	feePct float64
}

// New creates a mines machine with the given house fee.
func New(feePct float64) *Machine {
	return &Machine{feePct: feePct}
}

// Kind returns the game kind this machine handles.
func (m *Machine) Kind() game.Kind {
	return game.KindMines
}

// Seed builds a fresh round with mineCount mines placed without
// replacement over the grid.
func (m *Machine) Seed(bet int64, mineCount int, src rng.Source) (*State, error) {
	if mineCount < MinMines || mineCount > MaxMines {
		return nil, ErrBadMineCount
	}

	minesSet := make(map[int]bool, mineCount)
	for len(minesSet) < mineCount {
		idx, err := src.Int(0, Cells-1)
		if err != nil {
			return nil, fmt.Errorf("failed to place mines: %w", err)
		}
		minesSet[idx] = true
	}

	return &State{Bet: bet, MineCount: mineCount, Mines: minesSet}, nil
}

// Advance applies one action: a tile reveal, a cash-out, or a quit.
func (m *Machine) Advance(state any, action string, src rng.Source) (game.Step, error) {
	st, ok := state.(*State)
	if !ok {
		return game.Step{}, game.ErrBadState
	}
	if st.Done {
		return game.Step{}, nil
	}

	switch {
	case action == ActionQuit:
		st.Done = true
		return game.Step{
			Done:    true,
			Outcome: game.OutcomeLose,
			Profit:  -st.Bet,
			Note:    "quit",
		}, nil

	case action == ActionCashout:
		return m.cashout(st), nil

	case strings.HasPrefix(action, tilePrefix):
		idx, err := strconv.Atoi(action[len(tilePrefix):])
		if err != nil || idx < 0 || idx >= Cells {
			return game.Step{}, nil
		}
		return m.reveal(st, idx), nil
	}

	return game.Step{}, nil
}

func (m *Machine) reveal(st *State, idx int) game.Step {
	if st.Revealed[idx] {
		return game.Step{}
	}
	st.Revealed[idx] = true

	if st.Mines[idx] {
		// Expose the whole board on a hit.
		for i := 0; i < Cells; i++ {
			st.Revealed[i] = true
		}
		st.Done = true
		return game.Step{
			Done:    true,
			Outcome: game.OutcomeLose,
			Profit:  -st.Bet,
			Note:    "hit a mine",
		}
	}

	st.SafeReveals++
	return game.Step{
		Note: fmt.Sprintf("safe, x%.2f", st.Multiplier()),
	}
}

// cashout settles at the current multiplier. With zero safe reveals the
// stake comes back untouched: neither a loss nor a gain.
func (m *Machine) cashout(st *State) game.Step {
	st.Done = true

	if st.SafeReveals == 0 {
		return game.Step{
			Done:    true,
			Outcome: game.OutcomePush,
			Payout:  st.Bet,
			Note:    "cashed out with nothing revealed",
		}
	}

	mult := st.Multiplier()
	gross := int64(math.Floor(float64(st.Bet) * (mult - 1)))
	profit := wager.HouseFee(gross, m.feePct)
	return game.Step{
		Done:    true,
		Outcome: game.OutcomeWin,
		Payout:  st.Bet + profit,
		Profit:  profit,
		Note:    fmt.Sprintf("cashed out at x%.2f", mult),
	}
}
