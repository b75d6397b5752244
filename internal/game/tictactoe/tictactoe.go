// Package tictactoe implements the free-entry tic-tac-toe machine with a
// rule-based bot opponent.
package tictactoe

import (
	"strconv"
	"strings"

	"casino-core/internal/game"
	"casino-core/internal/pkg/rng"
)

// Mark is one cell's content.
type Mark byte

// Cell states. The human always plays X and always moves first.
const (
	Empty Mark = iota
	PlayerMark
	BotMark
)

// Actions. Cells are addressed as "t<idx>" with idx in [0, 8].
const (
	ActionQuit = "quit"

	tilePrefix = "t"
)

// lines are the eight ways to win.
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

var corners = []int{0, 2, 6, 8}

// State is one tic-tac-toe round.
type State struct {
	Board [9]Mark
	Done  bool
}

// Winner returns the mark completing a line, or Empty.
func (s *State) Winner() Mark {
	for _, l := range lines {
		m := s.Board[l[0]]
		if m != Empty && m == s.Board[l[1]] && m == s.Board[l[2]] {
			return m
		}
	}
	return Empty
}

// Full reports whether every cell is taken.
func (s *State) Full() bool {
	for _, m := range s.Board {
		if m == Empty {
			return false
		}
	}
	return true
}

// Machine implements game.Machine for tic-tac-toe. Entry is free; a
// player win or a draw credits a fixed reward.
type Machine struct {
	winReward  int64
	drawReward int64
}

// New creates a tic-tac-toe machine with the given rewards.
func New(winReward, drawReward int64) *Machine {
	return &Machine{winReward: winReward, drawReward: drawReward}
}

// Kind returns the game kind this machine handles.
func (m *Machine) Kind() game.Kind {
	return game.KindTicTacToe
}

// NewState starts an empty board.
func (m *Machine) NewState() *State {
	return &State{}
}

// Advance places the player's mark, then lets the bot respond.
func (m *Machine) Advance(state any, action string, src rng.Source) (game.Step, error) {
	st, ok := state.(*State)
	if !ok {
		return game.Step{}, game.ErrBadState
	}
	if st.Done {
		return game.Step{}, nil
	}

	if action == ActionQuit {
		st.Done = true
		return game.Step{Done: true, Outcome: game.OutcomeLose, Note: "quit"}, nil
	}

	if !strings.HasPrefix(action, tilePrefix) {
		return game.Step{}, nil
	}
	idx, err := strconv.Atoi(action[len(tilePrefix):])
	if err != nil || idx < 0 || idx > 8 || st.Board[idx] != Empty {
		return game.Step{}, nil
	}

	st.Board[idx] = PlayerMark
	if st.Winner() == PlayerMark {
		st.Done = true
		return game.Step{
			Done:    true,
			Outcome: game.OutcomeWin,
			Payout:  m.winReward,
			Profit:  m.winReward,
			Note:    "you win",
		}, nil
	}
	if st.Full() {
		return m.draw(st), nil
	}

	bot, err := BotMove(st.Board, src)
	if err != nil {
		return game.Step{}, err
	}
	st.Board[bot] = BotMark
	if st.Winner() == BotMark {
		st.Done = true
		return game.Step{Done: true, Outcome: game.OutcomeLose, Note: "bot wins"}, nil
	}
	if st.Full() {
		return m.draw(st), nil
	}

	return game.Step{Note: "your move"}, nil
}

func (m *Machine) draw(st *State) game.Step {
	st.Done = true
	return game.Step{
		Done:    true,
		Outcome: game.OutcomeDraw,
		Payout:  m.drawReward,
		Profit:  m.drawReward,
		Note:    "draw",
	}
}

// BotMove picks the bot's cell: complete a winning line, block the
// player's winning line, take the center, take a random free corner, or
// fall back to any random free cell.
func BotMove(board [9]Mark, src rng.Source) (int, error) {
	if idx, ok := completing(board, BotMark); ok {
		return idx, nil
	}
	if idx, ok := completing(board, PlayerMark); ok {
		return idx, nil
	}
	if board[4] == Empty {
		return 4, nil
	}

	var free []int
	for _, c := range corners {
		if board[c] == Empty {
			free = append(free, c)
		}
	}
	if len(free) == 0 {
		for i, m := range board {
			if m == Empty {
				free = append(free, i)
			}
		}
	}
	pick, err := src.Int(0, len(free)-1)
	if err != nil {
		return 0, err
	}
	return free[pick], nil
}

// completing finds a cell that finishes three-in-a-row for the mark.
func completing(board [9]Mark, mark Mark) (int, bool) {
	for _, l := range lines {
		count, empty := 0, -1
		for _, i := range l {
			switch board[i] {
			case mark:
				count++
			case Empty:
				empty = i
			}
		}
		if count == 2 && empty >= 0 {
			return empty, true
		}
	}
	return 0, false
}
