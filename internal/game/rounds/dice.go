package rounds

import (
	"fmt"
	"sort"

	"casino-core/internal/pkg/rng"
)

// DiceHand names a five-dice poker hand and its payout multiplier.
type DiceHand struct {
	Name string
	Mult int64
}

// ScoreDice classifies five dice into a poker hand.
func ScoreDice(dice []int) DiceHand {
	counts := make(map[int]int)
	for _, d := range dice {
		counts[d]++
	}

	byCount := make([]int, 0, len(counts))
	uniq := make([]int, 0, len(counts))
	for v, c := range counts {
		byCount = append(byCount, c)
		uniq = append(uniq, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(byCount)))
	sort.Ints(uniq)

	straight := len(uniq) == 5 && uniq[4]-uniq[0] == 4

	switch {
	case byCount[0] == 5:
		return DiceHand{"Five of a kind", 50}
	case byCount[0] == 4:
		return DiceHand{"Four of a kind", 15}
	case byCount[0] == 3 && byCount[1] == 2:
		return DiceHand{"Full house", 8}
	case straight:
		return DiceHand{"Straight", 6}
	case byCount[0] == 3:
		return DiceHand{"Three of a kind", 4}
	case byCount[0] == 2 && byCount[1] == 2:
		return DiceHand{"Two pair", 3}
	case byCount[0] == 2:
		return DiceHand{"One pair", 2}
	}
	return DiceHand{"Bust", 0}
}

// DicePoker rolls five dice and pays by poker hand.
func DicePoker(src rng.Source, bet int64) (Result, error) {
	dice := make([]int, 5)
	for i := range dice {
		d, err := src.Int(1, 6)
		if err != nil {
			return Result{}, err
		}
		dice[i] = d
	}
	sort.Ints(dice)

	hand := ScoreDice(dice)
	detail := fmt.Sprintf("%v %s (x%d)", dice, hand.Name, hand.Mult)
	if hand.Mult == 0 {
		return lose(bet, detail), nil
	}
	return win(bet*(hand.Mult-1), detail), nil
}
