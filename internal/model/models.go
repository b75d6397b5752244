// Package model defines the data models for the casino core.
package model

import "time"

// LedgerRow is the per-guild, per-user balance record. Rows are created
// lazily on first reference and never deleted; coins never go negative.
type LedgerRow struct {
	GuildID   int64      `db:"guild_id"`
	UserID    int64      `db:"user_id"`
	Coins     int64      `db:"coins"`
	DailyAt   *time.Time `db:"daily_at"`
	WeeklyAt  *time.Time `db:"weekly_at"`
	FishAt    *time.Time `db:"fish_at"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// Transaction is one balance change in the audit history.
type Transaction struct {
	ID          int64     `db:"id"`
	GuildID     int64     `db:"guild_id"`
	UserID      int64     `db:"user_id"`
	Amount      int64     `db:"amount"`
	Type        string    `db:"type"`
	Description *string   `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// Claim fields gating periodic rewards. SetClaim only accepts these;
// the allow-list keeps callers from writing arbitrary columns.
const (
	ClaimDaily  = "daily_at"
	ClaimWeekly = "weekly_at"
	ClaimFish   = "fish_at"
)

// Transaction types for categorizing balance changes.
const (
	TxTypeBet    = "bet"    // Stake debited when a game starts
	TxTypePayout = "payout" // Winnings credited at resolution
	TxTypeRefund = "refund" // Stake returned (push, zero-reveal cashout)
	TxTypeReward = "reward" // Free-entry game reward (tic-tac-toe)
	TxTypeDaily  = "daily"  // Daily claim
	TxTypeWeekly = "weekly" // Weekly claim
	TxTypeFish   = "fish"   // Fishing outcome
)
