package blackjack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"casino-core/internal/game"
	"casino-core/internal/pkg/rng"
	"casino-core/internal/wager"
)

func card(rank string, value int) Card {
	return Card{Rank: rank, Suit: "♠", Value: value}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		hand []Card
		want int
	}{
		{"hard hand", []Card{card("K", 10), card("7", 7)}, 17},
		{"soft ace stays high", []Card{card("A", 11), card("6", 6)}, 17},
		{"ace reduces on bust", []Card{card("A", 11), card("6", 6), card("10", 10)}, 17},
		{"two aces", []Card{card("A", 11), card("A", 11), card("9", 9)}, 21},
		{"all aces reduce when needed", []Card{card("A", 11), card("A", 11), card("A", 11), card("K", 10)}, 13},
		{"natural", []Card{card("A", 11), card("K", 10)}, 21},
		{"bust", []Card{card("K", 10), card("Q", 10), card("5", 5)}, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.hand))
		})
	}
}

func TestIsNatural(t *testing.T) {
	assert.True(t, IsNatural([]Card{card("A", 11), card("K", 10)}))
	assert.False(t, IsNatural([]Card{card("K", 10), card("9", 9)}))
	// Three-card 21 is not a natural.
	assert.False(t, IsNatural([]Card{card("7", 7), card("7", 7), card("7", 7)}))
}

func TestNewDeck(t *testing.T) {
	deck, err := NewDeck(rng.NewCryptoSource())
	require.NoError(t, err)
	require.Len(t, deck, 52)

	seen := make(map[string]bool)
	for _, c := range deck {
		seen[c.String()] = true
	}
	assert.Len(t, seen, 52)
}

// The deck is drawn from the tail, so the last card listed is the next
// one dealt.
func TestMachine_Advance(t *testing.T) {
	m := New(5)

	t.Run("hit into bust loses", func(t *testing.T) {
		st := &State{
			Bet:    100,
			Player: []Card{card("K", 10), card("Q", 10)},
			Dealer: []Card{card("9", 9), card("7", 7)},
			Deck:   []Card{card("5", 5)},
		}
		step, err := m.Advance(st, ActionHit, nil)
		require.NoError(t, err)
		require.True(t, step.Done)
		assert.Equal(t, game.OutcomeLose, step.Outcome)
		assert.Equal(t, int64(0), step.Payout)
		assert.Equal(t, int64(-100), step.Profit)
	})

	t.Run("safe hit keeps the round open", func(t *testing.T) {
		st := &State{
			Bet:    100,
			Player: []Card{card("5", 5), card("6", 6)},
			Dealer: []Card{card("9", 9), card("7", 7)},
			Deck:   []Card{card("9", 9)},
		}
		step, err := m.Advance(st, ActionHit, nil)
		require.NoError(t, err)
		assert.False(t, step.Done)
		assert.Equal(t, 20, Score(st.Player))
	})

	t.Run("stand: dealer draws to seventeen and loses", func(t *testing.T) {
		st := &State{
			Bet:    100,
			Player: []Card{card("10", 10), card("9", 9)},
			Dealer: []Card{card("10", 10), card("2", 2)},
			Deck:   []Card{card("5", 5)},
		}
		step, err := m.Advance(st, ActionStand, nil)
		require.NoError(t, err)
		require.True(t, step.Done)
		assert.Equal(t, game.OutcomeWin, step.Outcome)
		assert.Equal(t, 17, Score(st.Dealer))
		// Even-money profit after the 5% fee, stake on top.
		assert.Equal(t, int64(195), step.Payout)
		assert.Equal(t, int64(95), step.Profit)
	})

	t.Run("stand: dealer busts", func(t *testing.T) {
		st := &State{
			Bet:    100,
			Player: []Card{card("10", 10), card("8", 8)},
			Dealer: []Card{card("10", 10), card("6", 6)},
			Deck:   []Card{card("10", 10)},
		}
		step, err := m.Advance(st, ActionStand, nil)
		require.NoError(t, err)
		assert.Equal(t, game.OutcomeWin, step.Outcome)
		assert.Equal(t, int64(195), step.Payout)
	})

	t.Run("stand: equal scores push the stake back", func(t *testing.T) {
		st := &State{
			Bet:    100,
			Player: []Card{card("10", 10), card("8", 8)},
			Dealer: []Card{card("9", 9), card("9", 9)},
		}
		step, err := m.Advance(st, ActionStand, nil)
		require.NoError(t, err)
		assert.Equal(t, game.OutcomePush, step.Outcome)
		assert.Equal(t, int64(100), step.Payout)
		assert.Equal(t, int64(0), step.Profit)
	})

	t.Run("quit forfeits the stake", func(t *testing.T) {
		st := &State{
			Bet:    100,
			Player: []Card{card("10", 10), card("8", 8)},
			Dealer: []Card{card("9", 9), card("9", 9)},
		}
		step, err := m.Advance(st, ActionQuit, nil)
		require.NoError(t, err)
		assert.Equal(t, game.OutcomeLose, step.Outcome)
		assert.Equal(t, int64(-100), step.Profit)
	})

	t.Run("unknown action is a no-op ack", func(t *testing.T) {
		st := &State{
			Bet:    100,
			Player: []Card{card("10", 10), card("8", 8)},
			Dealer: []Card{card("9", 9), card("9", 9)},
			Deck:   []Card{card("5", 5)},
		}
		step, err := m.Advance(st, "double", nil)
		require.NoError(t, err)
		assert.Equal(t, game.Step{}, step)
		assert.Len(t, st.Player, 2)
	})

	t.Run("resolved round ignores further actions", func(t *testing.T) {
		st := &State{Bet: 100, Resolved: true}
		step, err := m.Advance(st, ActionHit, nil)
		require.NoError(t, err)
		assert.Equal(t, game.Step{}, step)
	})

	t.Run("wrong state type", func(t *testing.T) {
		_, err := m.Advance("not a state", ActionHit, nil)
		assert.ErrorIs(t, err, game.ErrBadState)
	})
}

// Deal repeatedly until the rare terminal deals show up, then check
// their settlement. Naturals land roughly one deal in twenty, so a few
// thousand deals make missing one implausible.
func TestMachine_DealNaturals(t *testing.T) {
	m := New(5)
	src := rng.NewCryptoSource()

	const searchBet = 100
	// floor(100 * 3/2) = 150 gross, 5% fee leaves 142.
	wantNaturalPayout := searchBet + wager.HouseFee(150, 5)

	var sawPlayerBJ, sawDealerBJ, sawOpen bool
	for i := 0; i < 5000 && !(sawPlayerBJ && sawDealerBJ && sawOpen); i++ {
		st, step, err := m.Deal(searchBet, src)
		require.NoError(t, err)

		switch {
		case step.Done && step.Outcome == game.OutcomeWin:
			require.True(t, IsNatural(st.Player))
			assert.Equal(t, int64(wantNaturalPayout), step.Payout)
			sawPlayerBJ = true
		case step.Done && step.Outcome == game.OutcomeLose:
			require.True(t, IsNatural(st.Dealer))
			assert.Equal(t, int64(0), step.Payout)
			sawDealerBJ = true
		case step.Done && step.Outcome == game.OutcomePush:
			require.True(t, IsNatural(st.Player))
			require.True(t, IsNatural(st.Dealer))
			assert.Equal(t, int64(searchBet), step.Payout)
		default:
			require.Len(t, st.Player, 2)
			require.Len(t, st.Dealer, 2)
			sawOpen = true
		}
	}

	assert.True(t, sawPlayerBJ, "never dealt a player natural")
	assert.True(t, sawDealerBJ, "never dealt a dealer natural")
	assert.True(t, sawOpen, "never dealt an open hand")
}

// Property: however a round plays out, the settlement matches the
// outcome exactly.
func TestMachine_SettlementProperty(t *testing.T) {
	m := New(5)
	src := rng.NewCryptoSource()

	rapid.Check(t, func(t *rapid.T) {
		bet := rapid.Int64Range(1, 100000).Draw(t, "bet")

		st, step, err := m.Deal(bet, src)
		require.NoError(t, err)

		for !step.Done {
			action := rapid.SampledFrom([]string{ActionHit, ActionStand}).Draw(t, "action")
			step, err = m.Advance(st, action, src)
			require.NoError(t, err)
		}

		switch step.Outcome {
		case game.OutcomeLose:
			assert.Equal(t, int64(0), step.Payout)
			assert.Equal(t, -bet, step.Profit)
		case game.OutcomePush:
			assert.Equal(t, bet, step.Payout)
		case game.OutcomeWin:
			assert.Equal(t, bet+step.Profit, step.Payout)
			assert.LessOrEqual(t, step.Profit, int64(float64(bet)*1.5))
		}
	})
}
