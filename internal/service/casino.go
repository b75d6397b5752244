package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"casino-core/internal/config"
	"casino-core/internal/game"
	"casino-core/internal/game/blackjack"
	"casino-core/internal/game/mines"
	"casino-core/internal/game/rounds"
	"casino-core/internal/game/tictactoe"
	"casino-core/internal/model"
	"casino-core/internal/pkg/rng"
	"casino-core/internal/session"
	"casino-core/internal/wager"
)

// CasinoService runs the games: it owns the spend-play-credit flow
// around the pure machines and round functions. Every stake is debited
// before the first random draw and every resolution credits exactly
// once.
type CasinoService struct {
	econ     *EconomyService
	sessions *session.Manager
	src      rng.Source

	bets   wager.Options
	feePct float64

	blackjack *blackjack.Machine
	mines     *mines.Machine
	ttt       *tictactoe.Machine
	minesCfg  config.MinesConfig
}

// NewCasinoService creates a new CasinoService instance. The machines
// must be the same ones registered with the session manager's registry.
func NewCasinoService(
	econ *EconomyService,
	sessions *session.Manager,
	src rng.Source,
	house config.HouseConfig,
	minesCfg config.MinesConfig,
	bj *blackjack.Machine,
	mn *mines.Machine,
	ttt *tictactoe.Machine,
) *CasinoService {
	return &CasinoService{
		econ:     econ,
		sessions: sessions,
		src:      src,
		bets: wager.Options{
			Min:     house.MinBet,
			Max:     house.MaxBet,
			Default: house.DefaultBet,
		},
		feePct:    house.FeePct,
		blackjack: bj,
		mines:     mn,
		ttt:       ttt,
		minesCfg:  minesCfg,
	}
}

// Launch is the view returned when a game starts. Done launches (a
// blackjack natural) carry no token; nothing is left to interact with.
type Launch struct {
	Token   string
	Kind    game.Kind
	State   any
	Step    game.Step
	Done    bool
	Balance int64
}

// StartBlackjack debits the stake and deals. Naturals resolve on the
// spot; otherwise the hand becomes a session awaiting hit/stand.
func (s *CasinoService) StartBlackjack(ctx context.Context, guildID, userID int64, bet *int64) (*Launch, error) {
	amount, err := wager.Normalize(bet, s.bets)
	if err != nil {
		return nil, err
	}
	balance, err := s.econ.SpendBet(ctx, guildID, userID, amount, "blackjack")
	if err != nil {
		return nil, err
	}

	st, step, err := s.blackjack.Deal(amount, s.src)
	if err != nil {
		if _, rerr := s.econ.Refund(ctx, guildID, userID, amount, "blackjack"); rerr != nil {
			log.Error().Err(rerr).Int64("user_id", userID).Msg("failed to refund undealt hand")
		}
		return nil, err
	}

	launch := &Launch{Kind: game.KindBlackjack, State: st, Step: step, Balance: balance}
	if step.Done {
		launch.Done = true
		if step.Payout > 0 {
			launch.Balance, err = s.econ.CreditPayout(ctx, guildID, userID, step.Payout, settleType(game.KindBlackjack, step), "blackjack")
			if err != nil {
				return nil, err
			}
		}
		return launch, nil
	}

	launch.Token = s.sessions.Create(session.Descriptor{
		Kind:    game.KindBlackjack,
		OwnerID: userID,
		GuildID: guildID,
		State:   st,
	})
	return launch, nil
}

// StartMines debits the stake and seeds a board. A mineCount of zero
// falls back to the configured default.
func (s *CasinoService) StartMines(ctx context.Context, guildID, userID int64, bet *int64, mineCount int) (*Launch, error) {
	amount, err := wager.Normalize(bet, s.bets)
	if err != nil {
		return nil, err
	}
	if mineCount == 0 {
		mineCount = s.minesCfg.DefaultMines
	}
	if mineCount < mines.MinMines || mineCount > s.minesCfg.MaxMines {
		return nil, mines.ErrBadMineCount
	}

	balance, err := s.econ.SpendBet(ctx, guildID, userID, amount, "mines")
	if err != nil {
		return nil, err
	}

	st, err := s.mines.Seed(amount, mineCount, s.src)
	if err != nil {
		if _, rerr := s.econ.Refund(ctx, guildID, userID, amount, "mines"); rerr != nil {
			log.Error().Err(rerr).Int64("user_id", userID).Msg("failed to refund unseeded board")
		}
		return nil, err
	}

	token := s.sessions.Create(session.Descriptor{
		Kind:    game.KindMines,
		OwnerID: userID,
		GuildID: guildID,
		State:   st,
	})
	return &Launch{Token: token, Kind: game.KindMines, State: st, Balance: balance}, nil
}

// StartTicTacToe opens a free-entry board against the bot.
func (s *CasinoService) StartTicTacToe(ctx context.Context, guildID, userID int64) (*Launch, error) {
	balance, err := s.econ.Balance(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}

	st := s.ttt.NewState()
	token := s.sessions.Create(session.Descriptor{
		Kind:    game.KindTicTacToe,
		OwnerID: userID,
		GuildID: guildID,
		State:   st,
	})
	return &Launch{Token: token, Kind: game.KindTicTacToe, State: st, Balance: balance}, nil
}

// ActionResult is the view after one in-game action.
type ActionResult struct {
	Kind     game.Kind
	Step     game.Step
	State    any
	Credited bool
	Balance  int64
}

// HandleAction routes one interaction to its session and applies the
// resulting effects: a finished round's payout is credited once and the
// session is ended. Session errors pass through untouched for the
// caller to render.
func (s *CasinoService) HandleAction(ctx context.Context, token string, actorID int64, action string) (*ActionResult, error) {
	desc, err := s.sessions.Get(token)
	if err != nil {
		return nil, err
	}

	step, err := s.sessions.Dispatch(ctx, token, actorID, action)
	if err != nil {
		return nil, err
	}

	res := &ActionResult{Kind: desc.Kind, Step: step, State: desc.State}
	if !step.Done {
		return res, nil
	}

	s.sessions.End(token)
	if step.Payout > 0 {
		balance, err := s.econ.CreditPayout(ctx, desc.GuildID, desc.OwnerID, step.Payout, settleType(desc.Kind, step), string(desc.Kind))
		if err != nil {
			return nil, err
		}
		res.Credited = true
		res.Balance = balance
	}
	return res, nil
}

// HandlePayload is HandleAction for the compact encoded form carried by
// UI components.
func (s *CasinoService) HandlePayload(ctx context.Context, actorID int64, data string) (*ActionResult, error) {
	token, action, err := session.ParseAction(data)
	if err != nil {
		return nil, err
	}
	return s.HandleAction(ctx, token, actorID, action)
}

// settleType picks the audit type for a finished round's payout.
// Tic-tac-toe pays a fixed reward rather than a wagered payout, and a
// push is a stake coming home, not a win.
func settleType(kind game.Kind, st game.Step) string {
	if kind == game.KindTicTacToe {
		return model.TxTypeReward
	}
	if st.Outcome == game.OutcomePush {
		return model.TxTypeRefund
	}
	return model.TxTypePayout
}

// PlayResult is the view of one finished one-shot round.
type PlayResult struct {
	Outcome game.Outcome
	Bet     int64
	Payout  int64
	Balance int64
	Detail  string
}

// play is the shared one-shot path: normalize, spend, run the round,
// settle. A round that errors out never ran, so the stake comes back.
func (s *CasinoService) play(ctx context.Context, guildID, userID int64, bet *int64, name string, round func(amount int64) (rounds.Result, error)) (*PlayResult, error) {
	amount, err := wager.Normalize(bet, s.bets)
	if err != nil {
		return nil, err
	}
	balance, err := s.econ.SpendBet(ctx, guildID, userID, amount, name)
	if err != nil {
		return nil, err
	}

	res, err := round(amount)
	if err != nil {
		if balance, rerr := s.econ.Refund(ctx, guildID, userID, amount, name); rerr != nil {
			log.Error().Err(rerr).Int64("user_id", userID).Int64("balance", balance).Str("game", name).Msg("failed to refund failed round")
		}
		return nil, err
	}

	out := &PlayResult{Outcome: res.Outcome, Bet: amount, Balance: balance, Detail: res.Detail}
	switch res.Outcome {
	case game.OutcomePush:
		out.Payout = amount
		out.Balance, err = s.econ.Refund(ctx, guildID, userID, amount, name)
	case game.OutcomeWin:
		out.Payout = wager.Payout(amount, res.Profit, s.feePct)
		out.Balance, err = s.econ.CreditPayout(ctx, guildID, userID, out.Payout, model.TxTypePayout, name)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PlayGamble is a 50/50 double-or-nothing coin gamble.
func (s *CasinoService) PlayGamble(ctx context.Context, guildID, userID int64, bet *int64) (*PlayResult, error) {
	return s.play(ctx, guildID, userID, bet, "gamble", func(amount int64) (rounds.Result, error) {
		return rounds.Gamble(s.src, amount)
	})
}

// PlaySlots spins the three-reel slot machine.
func (s *CasinoService) PlaySlots(ctx context.Context, guildID, userID int64, bet *int64) (*PlayResult, error) {
	return s.play(ctx, guildID, userID, bet, "slots", func(amount int64) (rounds.Result, error) {
		return rounds.Slots(s.src, amount)
	})
}

// PlayRoulette spins the European wheel against one bet.
func (s *CasinoService) PlayRoulette(ctx context.Context, guildID, userID int64, bet *int64, betType string, number int) (*PlayResult, error) {
	return s.play(ctx, guildID, userID, bet, "roulette", func(amount int64) (rounds.Result, error) {
		return rounds.Roulette(s.src, amount, betType, number)
	})
}

// PlayWheel spins the weighted multiplier wheel.
func (s *CasinoService) PlayWheel(ctx context.Context, guildID, userID int64, bet *int64) (*PlayResult, error) {
	return s.play(ctx, guildID, userID, bet, "wheel", func(amount int64) (rounds.Result, error) {
		return rounds.Wheel(s.src, amount)
	})
}

// PlayPlinko drops a ball at the given risk level.
func (s *CasinoService) PlayPlinko(ctx context.Context, guildID, userID int64, bet *int64, risk string) (*PlayResult, error) {
	return s.play(ctx, guildID, userID, bet, "plinko", func(amount int64) (rounds.Result, error) {
		return rounds.Plinko(s.src, amount, risk)
	})
}

// PlayKeno plays a keno card. The picks string is parsed before any
// coins move.
func (s *CasinoService) PlayKeno(ctx context.Context, guildID, userID int64, bet *int64, picks string) (*PlayResult, error) {
	nums, err := rounds.ParseKenoPicks(picks)
	if err != nil {
		return nil, err
	}
	return s.play(ctx, guildID, userID, bet, "keno", func(amount int64) (rounds.Result, error) {
		return rounds.Keno(s.src, amount, nums)
	})
}

// PlayScratch buys one scratch card.
func (s *CasinoService) PlayScratch(ctx context.Context, guildID, userID int64, bet *int64) (*PlayResult, error) {
	return s.play(ctx, guildID, userID, bet, "scratch", func(amount int64) (rounds.Result, error) {
		return rounds.Scratch(s.src, amount)
	})
}

// PlayLottery plays a two-digit lottery ticket. A nil pick draws a
// random ticket.
func (s *CasinoService) PlayLottery(ctx context.Context, guildID, userID int64, bet *int64, pick *int) (*PlayResult, error) {
	return s.play(ctx, guildID, userID, bet, "lottery", func(amount int64) (rounds.Result, error) {
		return rounds.Lottery(s.src, amount, pick)
	})
}

// PlayHighLow calls the next card higher or lower.
func (s *CasinoService) PlayHighLow(ctx context.Context, guildID, userID int64, bet *int64, pick string) (*PlayResult, error) {
	return s.play(ctx, guildID, userID, bet, "highlow", func(amount int64) (rounds.Result, error) {
		return rounds.HighLow(s.src, amount, pick)
	})
}

// PlayDicePoker rolls five dice and pays by poker hand.
func (s *CasinoService) PlayDicePoker(ctx context.Context, guildID, userID int64, bet *int64) (*PlayResult, error) {
	return s.play(ctx, guildID, userID, bet, "dicepoker", func(amount int64) (rounds.Result, error) {
		return rounds.DicePoker(s.src, amount)
	})
}

// PlayCrash rides the curve to a cashout target. A zero target uses the
// default.
func (s *CasinoService) PlayCrash(ctx context.Context, guildID, userID int64, bet *int64, target float64) (*PlayResult, error) {
	if target == 0 {
		target = rounds.CrashDefault
	}
	return s.play(ctx, guildID, userID, bet, "crash", func(amount int64) (rounds.Result, error) {
		return rounds.Crash(s.src, amount, target)
	})
}
