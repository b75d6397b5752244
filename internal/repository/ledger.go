// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"casino-core/internal/model"
)

// Common errors for repository operations.
var (
	ErrRowNotFound   = errors.New("ledger row not found")
	ErrBadClaimField = errors.New("unknown claim field")
)

// LedgerRepository persists per-guild, per-user coin balances.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository instance.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// GetOrCreate returns the ledger row for (guildID, userID), inserting a
// zero-balance row first if none exists. Rows are never deleted.
func (r *LedgerRepository) GetOrCreate(ctx context.Context, guildID, userID int64) (*model.LedgerRow, error) {
	const insert = `
		INSERT INTO user_stats (guild_id, user_id, coins, created_at, updated_at)
		VALUES ($1, $2, 0, NOW(), NOW())
		ON CONFLICT (guild_id, user_id) DO NOTHING
	`
	const query = `
		SELECT guild_id, user_id, coins, daily_at, weekly_at, fish_at, created_at, updated_at
		FROM user_stats
		WHERE guild_id = $1 AND user_id = $2
	`

	if _, err := r.pool.Exec(ctx, insert, guildID, userID); err != nil {
		return nil, fmt.Errorf("failed to ensure ledger row: %w", err)
	}

	var row model.LedgerRow
	err := r.pool.QueryRow(ctx, query, guildID, userID).Scan(
		&row.GuildID,
		&row.UserID,
		&row.Coins,
		&row.DailyAt,
		&row.WeeklyAt,
		&row.FishAt,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger row: %w", err)
	}

	return &row, nil
}

// Credit adds amount to the balance, clamping the result at zero.
// The amount can be negative for unconditional debits.
// Returns the updated balance.
func (r *LedgerRepository) Credit(ctx context.Context, guildID, userID, amount int64) (int64, error) {
	const query = `
		INSERT INTO user_stats (guild_id, user_id, coins, created_at, updated_at)
		VALUES ($1, $2, GREATEST($3, 0), NOW(), NOW())
		ON CONFLICT (guild_id, user_id) DO UPDATE
		SET coins = GREATEST(user_stats.coins + $3, 0), updated_at = NOW()
		RETURNING coins
	`

	var coins int64
	err := r.pool.QueryRow(ctx, query, guildID, userID, amount).Scan(&coins)
	if err != nil {
		return 0, fmt.Errorf("failed to credit ledger row: %w", err)
	}

	return coins, nil
}

// TrySpend debits amount only if the current balance covers it. Returns
// (newBalance, true) on success or (currentBalance, false) with no side
// effect when funds are insufficient. The guard and the debit are one
// UPDATE, so concurrent spends against the same row cannot both pass
// the same coins.
func (r *LedgerRepository) TrySpend(ctx context.Context, guildID, userID, amount int64) (int64, bool, error) {
	const ensure = `
		INSERT INTO user_stats (guild_id, user_id, coins, created_at, updated_at)
		VALUES ($1, $2, 0, NOW(), NOW())
		ON CONFLICT (guild_id, user_id) DO NOTHING
	`
	const spend = `
		UPDATE user_stats
		SET coins = coins - $3, updated_at = NOW()
		WHERE guild_id = $1 AND user_id = $2 AND coins >= $3
		RETURNING coins
	`
	const balance = `
		SELECT coins FROM user_stats WHERE guild_id = $1 AND user_id = $2
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("failed to begin spend: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, ensure, guildID, userID); err != nil {
		return 0, false, fmt.Errorf("failed to ensure ledger row: %w", err)
	}

	var coins int64
	err = tx.QueryRow(ctx, spend, guildID, userID, amount).Scan(&coins)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, false, fmt.Errorf("failed to spend: %w", err)
		}
		// Guard rejected the debit. Report the balance that blocked it.
		if err := tx.QueryRow(ctx, balance, guildID, userID).Scan(&coins); err != nil {
			return 0, false, fmt.Errorf("failed to read balance: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return 0, false, fmt.Errorf("failed to commit spend: %w", err)
		}
		return coins, false, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, false, fmt.Errorf("failed to commit spend: %w", err)
	}

	return coins, true, nil
}

// SetClaim stamps one of the claim timestamps with the current server
// time. The field must be one of the model.Claim* constants; anything
// else is rejected before touching SQL since the field name is spliced
// into the statement.
func (r *LedgerRepository) SetClaim(ctx context.Context, guildID, userID int64, field string) (time.Time, error) {
	switch field {
	case model.ClaimDaily, model.ClaimWeekly, model.ClaimFish:
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadClaimField, field)
	}

	query := fmt.Sprintf(`
		UPDATE user_stats
		SET %s = NOW(), updated_at = NOW()
		WHERE guild_id = $1 AND user_id = $2
		RETURNING %s
	`, field, field)

	var at time.Time
	err := r.pool.QueryRow(ctx, query, guildID, userID).Scan(&at)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, ErrRowNotFound
		}
		return time.Time{}, fmt.Errorf("failed to set claim %s: %w", field, err)
	}

	return at, nil
}

// GetTop retrieves the top N balances in a guild, richest first.
func (r *LedgerRepository) GetTop(ctx context.Context, guildID int64, limit int) ([]*model.LedgerRow, error) {
	const query = `
		SELECT guild_id, user_id, coins, daily_at, weekly_at, fish_at, created_at, updated_at
		FROM user_stats
		WHERE guild_id = $1
		ORDER BY coins DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top balances: %w", err)
	}
	defer rows.Close()

	var out []*model.LedgerRow
	for rows.Next() {
		var row model.LedgerRow
		err := rows.Scan(
			&row.GuildID,
			&row.UserID,
			&row.Coins,
			&row.DailyAt,
			&row.WeeklyAt,
			&row.FishAt,
			&row.CreatedAt,
			&row.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		out = append(out, &row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger rows: %w", err)
	}

	return out, nil
}

// CooldownReady reports whether a claim stamped at last is off cooldown.
// A nil last means the claim was never taken.
func CooldownReady(last *time.Time, window time.Duration) bool {
	if last == nil {
		return true
	}
	return time.Since(*last) >= window
}
