package rounds

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"casino-core/internal/pkg/rng"
)

// Keno bounds.
const (
	KenoMinPicks = 1
	KenoMaxPicks = 10
	KenoMaxNum   = 40
	KenoDrawSize = 10
)

// Keno pick parsing errors. Each failure mode has its own message so the
// caller can report exactly what was wrong.
var (
	ErrKenoNoPicks    = fmt.Errorf("pick %d-%d numbers (1-%d)", KenoMinPicks, KenoMaxPicks, KenoMaxNum)
	ErrKenoNotNumber  = errors.New("only numbers are allowed")
	ErrKenoOutOfRange = fmt.Errorf("numbers must be 1-%d", KenoMaxNum)
	ErrKenoDuplicate  = errors.New("no duplicate numbers")
)

// kenoPayout maps pick count to hits to multiplier.
var kenoPayout = map[int]map[int]int64{
	1:  {1: 3},
	2:  {2: 9, 1: 1},
	3:  {3: 16, 2: 2},
	4:  {4: 50, 3: 5, 2: 1},
	5:  {5: 150, 4: 15, 3: 2},
	6:  {6: 400, 5: 60, 4: 5, 3: 1},
	7:  {7: 800, 6: 200, 5: 20, 4: 2},
	8:  {8: 2000, 7: 500, 6: 70, 5: 10, 4: 2},
	9:  {9: 5000, 8: 1000, 7: 200, 6: 20, 5: 5},
	10: {10: 10000, 9: 2000, 8: 500, 7: 50, 6: 10, 5: 2},
}

var kenoSplit = regexp.MustCompile(`[\s,]+`)

// ParseKenoPicks parses free text into 1-10 distinct numbers in [1, 40].
// Tokens are separated by commas and/or whitespace.
func ParseKenoPicks(s string) ([]int, error) {
	parts := kenoSplit.Split(s, -1)
	nums := make([]int, 0, KenoMaxPicks)
	seen := make(map[int]bool)

	for _, p := range parts {
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, ErrKenoNotNumber
		}
		if n < 1 || n > KenoMaxNum {
			return nil, ErrKenoOutOfRange
		}
		if seen[n] {
			return nil, ErrKenoDuplicate
		}
		seen[n] = true
		nums = append(nums, n)
	}

	if len(nums) < KenoMinPicks || len(nums) > KenoMaxPicks {
		return nil, ErrKenoNoPicks
	}
	return nums, nil
}

// KenoDraw draws 10 distinct numbers in [1, 40], sorted.
func KenoDraw(src rng.Source) ([]int, error) {
	drawn := make(map[int]bool, KenoDrawSize)
	for len(drawn) < KenoDrawSize {
		n, err := src.Int(1, KenoMaxNum)
		if err != nil {
			return nil, err
		}
		drawn[n] = true
	}

	out := make([]int, 0, KenoDrawSize)
	for n := range drawn {
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}

// Keno settles a parsed pick set against a fresh draw.
func Keno(src rng.Source, bet int64, picks []int) (Result, error) {
	if len(picks) < KenoMinPicks || len(picks) > KenoMaxPicks {
		return Result{}, ErrKenoNoPicks
	}

	draw, err := KenoDraw(src)
	if err != nil {
		return Result{}, err
	}
	inDraw := make(map[int]bool, len(draw))
	for _, n := range draw {
		inDraw[n] = true
	}

	hits := 0
	for _, n := range picks {
		if inDraw[n] {
			hits++
		}
	}

	mult := kenoPayout[len(picks)][hits]
	detail := fmt.Sprintf("%d hits (x%d)", hits, mult)
	if mult == 0 {
		return lose(bet, detail), nil
	}
	return win(bet*mult-bet, detail), nil
}
