// Package wager implements bet validation and house-edge payout math.
// All functions are pure; they never touch the ledger or any random source.
package wager

import (
	"errors"
	"fmt"
	"math"
)

// Default bet bounds applied when Options fields are zero.
const (
	DefaultBet    int64 = 1
	DefaultMinBet int64 = 1
	DefaultMaxBet int64 = 100000

	// DefaultFeePct is the house fee skimmed off positive profit.
	DefaultFeePct float64 = 5
)

// ErrBetOutOfRange is returned when a bet falls outside the game's bounds.
var ErrBetOutOfRange = errors.New("bet out of range")

// Options bounds a bet for one game. Zero fields fall back to the
// package defaults.
type Options struct {
	Min     int64
	Max     int64
	Default int64
}

func (o Options) min() int64 {
	if o.Min > 0 {
		return o.Min
	}
	return DefaultMinBet
}

func (o Options) max() int64 {
	if o.Max > 0 {
		return o.Max
	}
	return DefaultMaxBet
}

func (o Options) def() int64 {
	if o.Default > 0 {
		return o.Default
	}
	return DefaultBet
}

// Normalize validates a possibly absent user-supplied bet.
// A nil raw yields the default bet; otherwise the value must lie within
// [min, max]. Validation failures carry the bounds in the error message.
func Normalize(raw *int64, opts Options) (int64, error) {
	if raw == nil {
		return opts.def(), nil
	}
	if *raw < opts.min() || *raw > opts.max() {
		return 0, fmt.Errorf("%w: bet must be %d-%d", ErrBetOutOfRange, opts.min(), opts.max())
	}
	return *raw, nil
}

// HouseFee applies the house fee to a profit. Non-positive profit maps
// to 0: the house never profits from losses beyond the stake wagered.
func HouseFee(profit int64, feePct float64) int64 {
	if profit <= 0 {
		return 0
	}
	keep := 1 - feePct/100
	return int64(math.Floor(float64(profit) * keep))
}

// Payout returns the total amount credited back for a resolved game:
// the stake plus the fee-adjusted profit, floored at 0.
func Payout(bet, profit int64, feePct float64) int64 {
	p := bet + HouseFee(profit, feePct)
	if p < 0 {
		return 0
	}
	return p
}
