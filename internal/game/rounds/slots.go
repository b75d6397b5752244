package rounds

import (
	"fmt"
	"strings"

	"casino-core/internal/pkg/rng"
)

var slotSymbols = []string{"🍒", "🍋", "🍉", "⭐", "💎"}

// slotDiamond is the jackpot symbol: a triple pays x5 instead of x3.
const slotDiamond = "💎"

// Slots spins three reels. A triple pays x3 of the bet as profit (x5 for
// diamonds), any pair returns even money.
func Slots(src rng.Source, bet int64) (Result, error) {
	reels := make([]string, 3)
	for i := range reels {
		n, err := src.Int(0, len(slotSymbols)-1)
		if err != nil {
			return Result{}, err
		}
		reels[i] = slotSymbols[n]
	}
	detail := strings.Join(reels, " ")

	var mult int64
	switch {
	case reels[0] == reels[1] && reels[1] == reels[2]:
		mult = 3
		if reels[0] == slotDiamond {
			mult = 5
		}
	case reels[0] == reels[1] || reels[1] == reels[2] || reels[0] == reels[2]:
		mult = 1
	}

	if mult == 0 {
		return lose(bet, detail), nil
	}
	return win(bet*mult, detail), nil
}

// wheelSegments are the wheel multipliers and their weights.
var wheelSegments = []struct {
	Mult   int64
	Weight float64
}{
	{0, 45},
	{2, 35},
	{3, 12},
	{5, 6},
	{10, 2},
}

// Wheel spins a weighted multiplier wheel.
func Wheel(src rng.Source, bet int64) (Result, error) {
	weights := make([]float64, len(wheelSegments))
	for i, s := range wheelSegments {
		weights[i] = s.Weight
	}
	idx, err := rng.WeightedPick(src, weights)
	if err != nil {
		return Result{}, err
	}

	mult := wheelSegments[idx].Mult
	detail := fmt.Sprintf("x%d", mult)
	if mult == 0 {
		return lose(bet, detail), nil
	}
	return win(bet*(mult-1), detail), nil
}

// scratchTiers are the scratch card prize tiers and their weights.
var scratchTiers = []struct {
	Name   string
	Mult   int64
	Weight float64
}{
	{"No win", 0, 65},
	{"Small", 2, 25},
	{"Medium", 5, 7.5},
	{"Big", 10, 2.2},
	{"Jackpot", 25, 0.3},
}

// Scratch draws a weighted prize tier.
func Scratch(src rng.Source, bet int64) (Result, error) {
	weights := make([]float64, len(scratchTiers))
	for i, t := range scratchTiers {
		weights[i] = t.Weight
	}
	idx, err := rng.WeightedPick(src, weights)
	if err != nil {
		return Result{}, err
	}

	tier := scratchTiers[idx]
	detail := fmt.Sprintf("%s (x%d)", tier.Name, tier.Mult)
	if tier.Mult == 0 {
		return lose(bet, detail), nil
	}
	return win(bet*(tier.Mult-1), detail), nil
}
