package rounds

import (
	"errors"
	"fmt"

	"casino-core/internal/pkg/rng"
)

// Roulette bet types.
const (
	RouletteRed    = "red"
	RouletteBlack  = "black"
	RouletteEven   = "even"
	RouletteOdd    = "odd"
	RouletteLow    = "low"
	RouletteHigh   = "high"
	RouletteGreen  = "green"
	RouletteNumber = "number"
)

// Roulette validation errors.
var (
	ErrBadRouletteBet    = errors.New("unknown roulette bet type")
	ErrBadRouletteNumber = errors.New("roulette number must be 0-36")
)

// redNumbers is the European red layout.
var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true,
	16: true, 18: true, 19: true, 21: true, 23: true, 25: true, 27: true,
	30: true, 32: true, 34: true, 36: true,
}

// RouletteColor returns "green" for 0, else "red" or "black".
func RouletteColor(n int) string {
	if n == 0 {
		return "green"
	}
	if redNumbers[n] {
		return "red"
	}
	return "black"
}

// Roulette spins 0-36 and settles one bet. Even-money bets pay 1x profit,
// green pays 13x and a straight number 35x.
func Roulette(src rng.Source, bet int64, betType string, number int) (Result, error) {
	if betType == RouletteNumber && (number < 0 || number > 36) {
		return Result{}, ErrBadRouletteNumber
	}

	spin, err := src.Int(0, 36)
	if err != nil {
		return Result{}, err
	}
	color := RouletteColor(spin)
	detail := fmt.Sprintf("%d (%s)", spin, color)

	var hit bool
	var profit int64
	switch betType {
	case RouletteRed, RouletteBlack:
		hit, profit = color == betType, bet
	case RouletteGreen:
		hit, profit = spin == 0, bet*13
	case RouletteEven:
		hit, profit = spin != 0 && spin%2 == 0, bet
	case RouletteOdd:
		hit, profit = spin%2 == 1, bet
	case RouletteLow:
		hit, profit = spin >= 1 && spin <= 18, bet
	case RouletteHigh:
		hit, profit = spin >= 19 && spin <= 36, bet
	case RouletteNumber:
		hit, profit = spin == number, bet*35
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrBadRouletteBet, betType)
	}

	if hit {
		return win(profit, detail), nil
	}
	return lose(bet, detail), nil
}

// Lottery draws a 2-digit number 0-99 against the player's pick: exact
// match pays x80, within ±2 pays x5, a matching last digit pays x3.
// A nil pick plays a random number.
func Lottery(src rng.Source, bet int64, pick *int) (Result, error) {
	chosen := 0
	if pick != nil {
		chosen = *pick
	} else {
		n, err := src.Int(0, 99)
		if err != nil {
			return Result{}, err
		}
		chosen = n
	}
	if chosen < 0 || chosen > 99 {
		return Result{}, errors.New("lottery pick must be 0-99")
	}

	draw, err := src.Int(0, 99)
	if err != nil {
		return Result{}, err
	}

	var mult int64
	switch {
	case draw == chosen:
		mult = 80
	case abs(draw-chosen) <= 2:
		mult = 5
	case draw%10 == chosen%10:
		mult = 3
	}

	detail := fmt.Sprintf("pick %02d draw %02d (x%d)", chosen, draw, mult)
	if mult == 0 {
		return lose(bet, detail), nil
	}
	return win(bet*(mult-1), detail), nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
