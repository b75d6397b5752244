package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"casino-core/internal/game"
	"casino-core/internal/pkg/rng"
)

// board builds a position from a compact string: X player, O bot,
// anything else empty.
func board(s string) [9]Mark {
	var b [9]Mark
	for i, c := range s {
		switch c {
		case 'X':
			b[i] = PlayerMark
		case 'O':
			b[i] = BotMark
		}
	}
	return b
}

func TestBotMove(t *testing.T) {
	tests := []struct {
		name  string
		board string
		want  int
	}{
		{"completes own line", "OO.XX....", 2},
		{"blocks the player", "X.X......", 1},
		{"win beats block", "OO.X.XX..", 2},
		{"takes the center", "X........", 4},
		{"blocks a diagonal", "X...X....", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BotMove(board(tt.board), rng.NewCryptoSource())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBotMove_PrefersCorners(t *testing.T) {
	// Center taken, no threats: the bot picks among the free corners.
	b := board("....O....")
	b[4] = BotMark
	b[1] = PlayerMark

	for i := 0; i < 50; i++ {
		got, err := BotMove(b, rng.NewCryptoSource())
		require.NoError(t, err)
		assert.Contains(t, []int{0, 2, 6, 8}, got)
	}
}

func TestBotMove_FallsBackToAnyFreeCell(t *testing.T) {
	// Artificial position: corners and center taken, no line with two
	// marks and an empty, so only the edge fallback remains.
	b := board("X.O.O.O.X")

	got, err := BotMove(b, &rng.SeqSource{Ints: []int{0}})
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestState_Winner(t *testing.T) {
	assert.Equal(t, PlayerMark, (&State{Board: board("XXX......")}).Winner())
	assert.Equal(t, BotMark, (&State{Board: board("O...O...O")}).Winner())
	assert.Equal(t, Empty, (&State{Board: board("XOXOXO...")}).Winner())
}

func TestMachine_Advance(t *testing.T) {
	m := New(100, 25)

	t.Run("completing a line wins the reward", func(t *testing.T) {
		st := &State{Board: board("XX.OO....")}
		step, err := m.Advance(st, "t2", rng.NewCryptoSource())
		require.NoError(t, err)
		require.True(t, step.Done)
		assert.Equal(t, game.OutcomeWin, step.Outcome)
		assert.Equal(t, int64(100), step.Payout)
	})

	t.Run("filling the last cell draws", func(t *testing.T) {
		// X O X / X O O / O _ X: taking the last free cell completes
		// nothing for either side.
		st := &State{Board: board("XOXXOOO.X")}
		step, err := m.Advance(st, "t7", rng.NewCryptoSource())
		require.NoError(t, err)
		require.True(t, step.Done)
		assert.Equal(t, game.OutcomeDraw, step.Outcome)
		assert.Equal(t, int64(25), step.Payout)
	})

	t.Run("bot takes its winning line", func(t *testing.T) {
		st := &State{Board: board("OO.XX....")}
		// The corner move completes nothing; the bot takes the top row.
		step, err := m.Advance(st, "t8", rng.NewCryptoSource())
		require.NoError(t, err)
		require.True(t, step.Done)
		assert.Equal(t, game.OutcomeLose, step.Outcome)
		assert.Equal(t, int64(0), step.Payout)
	})

	t.Run("quit loses without reward", func(t *testing.T) {
		st := &State{}
		step, err := m.Advance(st, ActionQuit, rng.NewCryptoSource())
		require.NoError(t, err)
		assert.Equal(t, game.OutcomeLose, step.Outcome)
		assert.Equal(t, int64(0), step.Payout)
	})

	t.Run("occupied and junk cells are no-op acks", func(t *testing.T) {
		st := &State{Board: board("X........")}
		for _, action := range []string{"t0", "t9", "t-1", "tx", "noop"} {
			step, err := m.Advance(st, action, rng.NewCryptoSource())
			require.NoError(t, err)
			assert.Equal(t, game.Step{}, step, "action %q", action)
		}
	})

	t.Run("finished board ignores actions", func(t *testing.T) {
		st := &State{Done: true}
		step, err := m.Advance(st, "t0", rng.NewCryptoSource())
		require.NoError(t, err)
		assert.Equal(t, game.Step{}, step)
	})

	t.Run("wrong state type", func(t *testing.T) {
		_, err := m.Advance([9]Mark{}, "t0", rng.NewCryptoSource())
		assert.ErrorIs(t, err, game.ErrBadState)
	})
}

// Property: a full random game always terminates with a win, loss, or
// draw, and the reward matches the outcome.
func TestMachine_GameAlwaysTerminates(t *testing.T) {
	m := New(100, 25)
	src := rng.NewCryptoSource()

	rapid.Check(t, func(t *rapid.T) {
		st := m.NewState()

		var step game.Step
		var err error
		for moves := 0; !step.Done; moves++ {
			require.Less(t, moves, 9, "game ran past a full board")

			var free []int
			for i, mark := range st.Board {
				if mark == Empty {
					free = append(free, i)
				}
			}
			require.NotEmpty(t, free)

			idx := rapid.SampledFrom(free).Draw(t, "cell")
			step, err = m.Advance(st, tileAction(idx), src)
			require.NoError(t, err)
		}

		switch step.Outcome {
		case game.OutcomeWin:
			assert.Equal(t, int64(100), step.Payout)
		case game.OutcomeDraw:
			assert.Equal(t, int64(25), step.Payout)
		case game.OutcomeLose:
			assert.Equal(t, int64(0), step.Payout)
		default:
			t.Fatalf("unexpected outcome %q", step.Outcome)
		}
	})
}

func tileAction(idx int) string {
	return string([]byte{'t', byte('0' + idx)})
}
