// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"casino-core/internal/config"
	"casino-core/internal/model"
	"casino-core/internal/pkg/rng"
	"casino-core/internal/repository"
)

// Common errors for economy operations.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrOnCooldown        = errors.New("claim on cooldown")
)

// Ledger is the balance store the services run against. The repository
// satisfies it; tests swap in an in-memory fake.
type Ledger interface {
	GetOrCreate(ctx context.Context, guildID, userID int64) (*model.LedgerRow, error)
	Credit(ctx context.Context, guildID, userID, amount int64) (int64, error)
	TrySpend(ctx context.Context, guildID, userID, amount int64) (int64, bool, error)
	SetClaim(ctx context.Context, guildID, userID int64, field string) (time.Time, error)
	GetTop(ctx context.Context, guildID int64, limit int) ([]*model.LedgerRow, error)
}

// AuditLog records balance changes for history.
type AuditLog interface {
	Create(ctx context.Context, guildID, userID, amount int64, txType string, description *string) (*model.Transaction, error)
	GetByUser(ctx context.Context, guildID, userID int64, limit int) ([]*model.Transaction, error)
	GetNetSince(ctx context.Context, guildID, userID int64, since time.Time) (int64, error)
}

// EconomyService handles balances, stakes, payouts, and periodic claims.
type EconomyService struct {
	ledger Ledger
	audit  AuditLog
	claims config.ClaimsConfig
	src    rng.Source
}

// NewEconomyService creates a new EconomyService instance.
func NewEconomyService(ledger Ledger, audit AuditLog, claims config.ClaimsConfig, src rng.Source) *EconomyService {
	return &EconomyService{
		ledger: ledger,
		audit:  audit,
		claims: claims,
		src:    src,
	}
}

// Balance returns the user's current balance, creating the ledger row if
// this is their first touch.
func (s *EconomyService) Balance(ctx context.Context, guildID, userID int64) (int64, error) {
	row, err := s.ledger.GetOrCreate(ctx, guildID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return row.Coins, nil
}

// SpendBet debits a stake if the balance covers it and records the
// debit. Returns ErrInsufficientFunds, with the blocking balance in the
// message, when it does not.
func (s *EconomyService) SpendBet(ctx context.Context, guildID, userID, amount int64, game string) (int64, error) {
	coins, ok, err := s.ledger.TrySpend(ctx, guildID, userID, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to spend bet: %w", err)
	}
	if !ok {
		return coins, fmt.Errorf("%w: balance %d, bet %d", ErrInsufficientFunds, coins, amount)
	}

	s.record(ctx, guildID, userID, -amount, model.TxTypeBet, game)
	return coins, nil
}

// CreditPayout adds winnings to the balance and records them.
func (s *EconomyService) CreditPayout(ctx context.Context, guildID, userID, amount int64, txType, game string) (int64, error) {
	coins, err := s.ledger.Credit(ctx, guildID, userID, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to credit payout: %w", err)
	}

	s.record(ctx, guildID, userID, amount, txType, game)
	return coins, nil
}

// Refund returns a stake after a round that never ran.
func (s *EconomyService) Refund(ctx context.Context, guildID, userID, amount int64, game string) (int64, error) {
	return s.CreditPayout(ctx, guildID, userID, amount, model.TxTypeRefund, game)
}

// Top returns the richest balances in a guild.
func (s *EconomyService) Top(ctx context.Context, guildID int64, limit int) ([]*model.LedgerRow, error) {
	return s.ledger.GetTop(ctx, guildID, limit)
}

// History returns the user's recent balance changes, newest first.
func (s *EconomyService) History(ctx context.Context, guildID, userID int64, limit int) ([]*model.Transaction, error) {
	return s.audit.GetByUser(ctx, guildID, userID, limit)
}

// NetSince reports the user's net coin movement over the trailing
// window, summed across every transaction type.
func (s *EconomyService) NetSince(ctx context.Context, guildID, userID int64, window time.Duration) (int64, error) {
	return s.audit.GetNetSince(ctx, guildID, userID, time.Now().Add(-window))
}

// ClaimResult reports a successful periodic claim.
type ClaimResult struct {
	Amount  int64
	Balance int64
}

// ClaimDaily grants the daily reward once per cooldown window.
func (s *EconomyService) ClaimDaily(ctx context.Context, guildID, userID int64) (*ClaimResult, error) {
	return s.claim(ctx, guildID, userID, model.ClaimDaily, model.TxTypeDaily, s.claims.DailyReward, s.claims.DailyCooldown)
}

// ClaimWeekly grants the weekly reward once per cooldown window.
func (s *EconomyService) ClaimWeekly(ctx context.Context, guildID, userID int64) (*ClaimResult, error) {
	return s.claim(ctx, guildID, userID, model.ClaimWeekly, model.TxTypeWeekly, s.claims.WeeklyReward, s.claims.WeeklyCooldown)
}

func (s *EconomyService) claim(ctx context.Context, guildID, userID int64, field, txType string, reward int64, window time.Duration) (*ClaimResult, error) {
	row, err := s.ledger.GetOrCreate(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger row: %w", err)
	}

	last := claimStamp(row, field)
	if !repository.CooldownReady(last, window) {
		return nil, cooldownErr(last, window)
	}

	if _, err := s.ledger.SetClaim(ctx, guildID, userID, field); err != nil {
		return nil, fmt.Errorf("failed to stamp claim: %w", err)
	}
	coins, err := s.ledger.Credit(ctx, guildID, userID, reward)
	if err != nil {
		return nil, fmt.Errorf("failed to credit claim: %w", err)
	}

	s.record(ctx, guildID, userID, reward, txType, "")
	return &ClaimResult{Amount: reward, Balance: coins}, nil
}

// fishCatches is the uniform outcome table for one cast.
var fishCatches = []struct {
	Name   string
	Amount int64
}{
	{"small fish", 20},
	{"big fish", 60},
	{"old boot", 0},
	{"treasure chest", 120},
	{"nothing at all", 0},
}

// FishResult reports one fishing cast.
type FishResult struct {
	Catch   string
	Amount  int64
	Balance int64
}

// Fish plays the fishing minigame: free, cooldown-gated, uniform catch
// table. Empty-handed casts still consume the cooldown.
func (s *EconomyService) Fish(ctx context.Context, guildID, userID int64) (*FishResult, error) {
	row, err := s.ledger.GetOrCreate(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger row: %w", err)
	}
	if !repository.CooldownReady(row.FishAt, s.claims.FishCooldown) {
		return nil, cooldownErr(row.FishAt, s.claims.FishCooldown)
	}

	n, err := s.src.Int(0, len(fishCatches)-1)
	if err != nil {
		return nil, fmt.Errorf("failed to draw catch: %w", err)
	}
	catch := fishCatches[n]

	if _, err := s.ledger.SetClaim(ctx, guildID, userID, model.ClaimFish); err != nil {
		return nil, fmt.Errorf("failed to stamp claim: %w", err)
	}

	coins := row.Coins
	if catch.Amount > 0 {
		coins, err = s.ledger.Credit(ctx, guildID, userID, catch.Amount)
		if err != nil {
			return nil, fmt.Errorf("failed to credit catch: %w", err)
		}
		s.record(ctx, guildID, userID, catch.Amount, model.TxTypeFish, catch.Name)
	}

	return &FishResult{Catch: catch.Name, Amount: catch.Amount, Balance: coins}, nil
}

// record writes an audit row. A failed audit write is logged but does
// not undo the balance change it describes.
func (s *EconomyService) record(ctx context.Context, guildID, userID, amount int64, txType, game string) {
	var desc *string
	if game != "" {
		desc = &game
	}
	if _, err := s.audit.Create(ctx, guildID, userID, amount, txType, desc); err != nil {
		log.Error().Err(err).
			Int64("guild_id", guildID).
			Int64("user_id", userID).
			Str("type", txType).
			Msg("failed to record transaction")
	}
}

func claimStamp(row *model.LedgerRow, field string) *time.Time {
	switch field {
	case model.ClaimDaily:
		return row.DailyAt
	case model.ClaimWeekly:
		return row.WeeklyAt
	case model.ClaimFish:
		return row.FishAt
	}
	return nil
}

func cooldownErr(last *time.Time, window time.Duration) error {
	remaining := time.Until(last.Add(window)).Round(time.Second)
	return fmt.Errorf("%w: ready in %s", ErrOnCooldown, remaining)
}
