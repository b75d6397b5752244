package wager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func intPtr(n int64) *int64 { return &n }

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     *int64
		opts    Options
		want    int64
		wantErr bool
	}{
		{"nil uses default", nil, Options{}, 1, false},
		{"nil uses custom default", nil, Options{Default: 50}, 50, false},
		{"min is accepted", intPtr(1), Options{}, 1, false},
		{"max is accepted", intPtr(100000), Options{}, 100000, false},
		{"zero rejected", intPtr(0), Options{}, 0, true},
		{"negative rejected", intPtr(-5), Options{}, 0, true},
		{"over max rejected", intPtr(100001), Options{}, 0, true},
		{"custom bounds accept", intPtr(500), Options{Min: 10, Max: 500}, 500, false},
		{"custom bounds reject", intPtr(501), Options{Min: 10, Max: 500}, 0, true},
		{"under custom min rejected", intPtr(9), Options{Min: 10, Max: 500}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw, tt.opts)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBetOutOfRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHouseFee(t *testing.T) {
	tests := []struct {
		name   string
		profit int64
		feePct float64
		want   int64
	}{
		{"even hundred", 100, 5, 95},
		{"floors fractions", 13, 5, 12},
		{"tiny profit rounds to zero", 1, 5, 0},
		{"zero profit", 0, 5, 0},
		{"loss untouched", -50, 5, 0},
		{"no fee", 100, 0, 100},
		{"blackjack natural", 150, 5, 142},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HouseFee(tt.profit, tt.feePct))
		})
	}
}

func TestPayout(t *testing.T) {
	tests := []struct {
		name   string
		bet    int64
		profit int64
		want   int64
	}{
		{"even money win", 100, 100, 195},
		{"push returns stake", 100, 0, 100},
		{"loss still returns stake", 100, -100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Payout(tt.bet, tt.profit, 5))
		})
	}
}

// Property: the fee never turns a profit negative, never exceeds the
// gross profit, and the payout never drops below zero.
func TestPayoutProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bet := rapid.Int64Range(1, 100000).Draw(t, "bet")
		profit := rapid.Int64Range(-100000, 10000000).Draw(t, "profit")
		feePct := rapid.Float64Range(0, 100).Draw(t, "feePct")

		fee := HouseFee(profit, feePct)
		assert.GreaterOrEqual(t, fee, int64(0))
		if profit > 0 {
			assert.LessOrEqual(t, fee, profit)
		}

		assert.GreaterOrEqual(t, Payout(bet, profit, feePct), int64(0))
	})
}
