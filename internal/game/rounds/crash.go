package rounds

import (
	"fmt"
	"math"

	"casino-core/internal/pkg/rng"
)

// Crash cashout target bounds.
const (
	CrashMinTarget = 1.01
	CrashMaxTarget = 50.0
	CrashDefault   = 2.0
)

// ErrBadCrashTarget is returned for a cashout target outside the bounds.
var ErrBadCrashTarget = fmt.Errorf("cashout must be between %.2f and %.0f", CrashMinTarget, CrashMaxTarget)

// CrashPoint draws the multiplier at which the round crashes:
// 1/(1-u) truncated to two decimals and clamped to [1, 50].
func CrashPoint(src rng.Source) float64 {
	u := src.Float()
	raw := 1 / (1 - u)
	return math.Min(CrashMaxTarget, math.Max(1, math.Floor(raw*100)/100))
}

// Crash settles a pre-committed cashout target against a fresh crash
// point. The player wins when the round survives to the target.
func Crash(src rng.Source, bet int64, target float64) (Result, error) {
	if math.IsNaN(target) || target < CrashMinTarget || target > CrashMaxTarget {
		return Result{}, ErrBadCrashTarget
	}

	point := CrashPoint(src)
	detail := fmt.Sprintf("cashout x%.2f, crash x%.2f", target, point)
	if target > point {
		return lose(bet, detail), nil
	}

	gross := int64(math.Floor(float64(bet) * target))
	profit := gross - bet
	if profit < 0 {
		profit = 0
	}
	return win(profit, detail), nil
}

// Plinko risk tables: multipliers per landing bin after an 8-row walk.
var plinkoTables = map[string][9]int64{
	"low":  {0, 0, 1, 1, 2, 1, 1, 0, 0},
	"mid":  {0, 0, 1, 2, 4, 2, 1, 0, 0},
	"high": {0, 0, 0, 2, 8, 2, 0, 0, 0},
}

// Plinko drops a ball from the center bin; each row nudges it left or
// right. An unknown risk falls back to "mid".
func Plinko(src rng.Source, bet int64, risk string) (Result, error) {
	table, ok := plinkoTables[risk]
	if !ok {
		risk = "mid"
		table = plinkoTables[risk]
	}

	pos := 4
	path := make([]byte, 0, 8)
	for i := 0; i < 8; i++ {
		n, err := src.Int(0, 1)
		if err != nil {
			return Result{}, err
		}
		if n == 0 {
			pos--
			path = append(path, 'L')
		} else {
			pos++
			path = append(path, 'R')
		}
		if pos < 0 {
			pos = 0
		}
		if pos > 8 {
			pos = 8
		}
	}

	mult := table[pos]
	detail := fmt.Sprintf("%s bin %d (x%d)", path, pos+1, mult)
	if mult == 0 {
		return lose(bet, detail), nil
	}
	return win(bet*(mult-1), detail), nil
}
