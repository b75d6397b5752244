package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"casino-core/internal/model"
)

// TransactionRepository persists the balance-change audit history.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository instance.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create records one balance change.
func (r *TransactionRepository) Create(ctx context.Context, guildID, userID, amount int64, txType string, description *string) (*model.Transaction, error) {
	const query = `
		INSERT INTO transactions (guild_id, user_id, amount, type, description, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, guild_id, user_id, amount, type, description, created_at
	`

	var tx model.Transaction
	err := r.pool.QueryRow(ctx, query, guildID, userID, amount, txType, description).Scan(
		&tx.ID,
		&tx.GuildID,
		&tx.UserID,
		&tx.Amount,
		&tx.Type,
		&tx.Description,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	return &tx, nil
}

// GetByUser retrieves a user's transactions in a guild, newest first.
func (r *TransactionRepository) GetByUser(ctx context.Context, guildID, userID int64, limit int) ([]*model.Transaction, error) {
	const query = `
		SELECT id, guild_id, user_id, amount, type, description, created_at
		FROM transactions
		WHERE guild_id = $1 AND user_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, guildID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*model.Transaction
	for rows.Next() {
		var tx model.Transaction
		err := rows.Scan(
			&tx.ID,
			&tx.GuildID,
			&tx.UserID,
			&tx.Amount,
			&tx.Type,
			&tx.Description,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// GetNetSince sums a user's balance changes in a guild from a point in
// time, across all transaction types.
func (r *TransactionRepository) GetNetSince(ctx context.Context, guildID, userID int64, since time.Time) (int64, error) {
	const query = `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE guild_id = $1 AND user_id = $2 AND created_at >= $3
	`

	var net int64
	err := r.pool.QueryRow(ctx, query, guildID, userID, since).Scan(&net)
	if err != nil {
		return 0, fmt.Errorf("failed to get net amount: %w", err)
	}

	return net, nil
}
