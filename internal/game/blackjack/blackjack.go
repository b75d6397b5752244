// Package blackjack implements the interactive blackjack state machine.
package blackjack

import (
	"fmt"
	"math"

	"casino-core/internal/game"
	"casino-core/internal/pkg/rng"
	"casino-core/internal/wager"
)

// Actions understood by the machine. Anything else is a no-op ack.
const (
	ActionHit   = "hit"
	ActionStand = "stand"
	ActionQuit  = "quit"
)

// DealerStand is the score at which the dealer stops drawing.
const DealerStand = 17

// naturalProfitNum/Den encode the 3:2 profit on a two-card 21.
const (
	naturalProfitNum = 3
	naturalProfitDen = 2
)

var suits = []string{"♠", "♥", "♦", "♣"}

var ranks = []struct {
	Rank  string
	Value int
}{
	{"A", 11}, {"2", 2}, {"3", 3}, {"4", 4}, {"5", 5}, {"6", 6}, {"7", 7},
	{"8", 8}, {"9", 9}, {"10", 10}, {"J", 10}, {"Q", 10}, {"K", 10},
}

// Card is one playing card. Value is the blackjack count with Ace as 11.
type Card struct {
	Rank  string
	Suit  string
	Value int
}

// String renders the card as rank plus suit, e.g. "A♠".
func (c Card) String() string {
	return c.Rank + c.Suit
}

// State is one blackjack round. The deck is drawn from the tail.
type State struct {
	Bet      int64
	Deck     []Card
	Player   []Card
	Dealer   []Card
	Resolved bool
}

// NewDeck builds a shuffled 52-card deck.
func NewDeck(src rng.Source) ([]Card, error) {
	deck := make([]Card, 0, 52)
	for _, s := range suits {
		for _, r := range ranks {
			deck = append(deck, Card{Rank: r.Rank, Suit: s, Value: r.Value})
		}
	}
	for i := len(deck) - 1; i > 0; i-- {
		j, err := src.Int(0, i)
		if err != nil {
			return nil, fmt.Errorf("failed to shuffle deck: %w", err)
		}
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck, nil
}

// Score returns the best value of a hand: aces count 11 and are reduced
// to 1 one at a time while the hand would otherwise bust.
func Score(hand []Card) int {
	score := 0
	aces := 0
	for _, c := range hand {
		score += c.Value
		if c.Rank == "A" {
			aces++
		}
	}
	for score > 21 && aces > 0 {
		score -= 10
		aces--
	}
	return score
}

// IsNatural reports a two-card 21.
func IsNatural(hand []Card) bool {
	return len(hand) == 2 && Score(hand) == 21
}

func (s *State) draw() Card {
	c := s.Deck[len(s.Deck)-1]
	s.Deck = s.Deck[:len(s.Deck)-1]
	return c
}

// Machine implements game.Machine for blackjack.
type Machine struct {
	feePct float64
}

// New creates a blackjack machine with the given house fee.
func New(feePct float64) *Machine {
	return &Machine{feePct: feePct}
}

// Kind returns the game kind this machine handles.
func (m *Machine) Kind() game.Kind {
	return game.KindBlackjack
}

// Deal starts a round: both sides draw two cards. If either side holds a
// natural the returned step is already terminal and no session is needed.
func (m *Machine) Deal(bet int64, src rng.Source) (*State, game.Step, error) {
	deck, err := NewDeck(src)
	if err != nil {
		return nil, game.Step{}, err
	}

	st := &State{Bet: bet, Deck: deck}
	st.Player = append(st.Player, st.draw(), st.draw())
	st.Dealer = append(st.Dealer, st.draw(), st.draw())

	playerBJ := IsNatural(st.Player)
	dealerBJ := IsNatural(st.Dealer)

	switch {
	case playerBJ && dealerBJ:
		return st, m.resolve(st, game.OutcomePush, "both have blackjack"), nil
	case playerBJ:
		return st, m.resolveNatural(st), nil
	case dealerBJ:
		return st, m.resolve(st, game.OutcomeLose, "dealer blackjack"), nil
	}

	return st, game.Step{Note: "your move"}, nil
}

// Advance applies one player action.
func (m *Machine) Advance(state any, action string, src rng.Source) (game.Step, error) {
	st, ok := state.(*State)
	if !ok {
		return game.Step{}, game.ErrBadState
	}
	if st.Resolved {
		return game.Step{}, nil
	}

	switch action {
	case ActionHit:
		st.Player = append(st.Player, st.draw())
		if Score(st.Player) > 21 {
			return m.resolve(st, game.OutcomeLose, "bust"), nil
		}
		return game.Step{Note: "your move"}, nil

	case ActionStand:
		m.dealerPlay(st)
		return m.compare(st), nil

	case ActionQuit:
		return m.resolve(st, game.OutcomeLose, "quit"), nil
	}

	return game.Step{}, nil
}

// dealerPlay draws until the dealer's best score reaches DealerStand.
func (m *Machine) dealerPlay(st *State) {
	for Score(st.Dealer) < DealerStand {
		st.Dealer = append(st.Dealer, st.draw())
	}
}

func (m *Machine) compare(st *State) game.Step {
	ps := Score(st.Player)
	ds := Score(st.Dealer)

	switch {
	case ps > 21:
		return m.resolve(st, game.OutcomeLose, "bust")
	case ds > 21:
		return m.resolve(st, game.OutcomeWin, "dealer busts")
	case ps > ds:
		return m.resolve(st, game.OutcomeWin, fmt.Sprintf("%d beats %d", ps, ds))
	case ps < ds:
		return m.resolve(st, game.OutcomeLose, fmt.Sprintf("%d loses to %d", ps, ds))
	}
	return m.resolve(st, game.OutcomePush, fmt.Sprintf("push at %d", ps))
}

// resolveNatural settles a player blackjack at 3:2 before the house fee.
func (m *Machine) resolveNatural(st *State) game.Step {
	st.Resolved = true
	gross := int64(math.Floor(float64(st.Bet) * naturalProfitNum / naturalProfitDen))
	profit := wager.HouseFee(gross, m.feePct)
	return game.Step{
		Done:    true,
		Outcome: game.OutcomeWin,
		Payout:  st.Bet + profit,
		Profit:  profit,
		Note:    "blackjack",
	}
}

func (m *Machine) resolve(st *State, outcome game.Outcome, note string) game.Step {
	st.Resolved = true
	step := game.Step{Done: true, Outcome: outcome, Note: note}

	switch outcome {
	case game.OutcomeWin:
		step.Profit = wager.HouseFee(st.Bet, m.feePct)
		step.Payout = st.Bet + step.Profit
	case game.OutcomePush:
		step.Payout = st.Bet
	case game.OutcomeLose:
		step.Profit = -st.Bet
	}
	return step
}
