package services

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pphilfre/stake-sub000/internal/games"
	"github.com/pphilfre/stake-sub000/internal/models"
	"github.com/pphilfre/stake-sub000/internal/rng"
)

// ResultSink receives every resolved wager, e.g. for the websocket feed.
type ResultSink func(sessionID string, r *models.GameResult)

// WagerEngine orchestrates one wager: validate against settings, debit the
// stake, draw the bias decision, resolve through the game's outcome rule,
// clamp and credit the payout, then record the result. The debit-resolve-
// credit sequence runs under the session lock as one atomic unit.
type WagerEngine struct {
	settings *SettingsStore
	src      rng.Source
	log      zerolog.Logger
	sink     ResultSink
}

func NewWagerEngine(settings *SettingsStore, src rng.Source, log zerolog.Logger) *WagerEngine {
	return &WagerEngine{
		settings: settings,
		src:      src,
		log:      log.With().Str("component", "wager_engine").Logger(),
	}
}

// OnResult registers a sink invoked after each resolved wager, outside the
// session lock.
func (e *WagerEngine) OnResult(sink ResultSink) {
	e.sink = sink
}

// PlaceWager runs the full Pending -> Validated -> Resolved state machine.
// Rejections happen before any balance mutation; a rule failure after the
// debit rolls the stake back and surfaces as an engine fault.
func (e *WagerEngine) PlaceWager(sess *Session, w *models.Wager) (*models.GameResult, error) {
	settings, rule, err := e.validateWager(w)
	if err != nil {
		return nil, err
	}

	currency, _ := models.GetCurrency(w.Currency)

	sess.mu.Lock()

	balance, err := sess.Balance.Get(w.Currency)
	if err != nil {
		sess.mu.Unlock()
		return nil, fmt.Errorf("%w: balance lookup failed: %v", ErrEngineFault, err)
	}
	if balance.LessThan(w.Stake) {
		sess.mu.Unlock()
		return nil, fmt.Errorf("%w: have %s, need %s %s", ErrInsufficientFunds, balance, w.Stake, w.Currency)
	}
	if err := sess.Balance.Debit(w.Currency, w.Stake); err != nil {
		sess.mu.Unlock()
		return nil, err
	}

	forceWin := e.biasDraw(settings)
	outcome, err := rule.Resolve(w, settings, forceWin, e.src)
	if err != nil {
		// The stake must never be consumed without a resolved result.
		if rbErr := sess.Balance.Credit(w.Currency, w.Stake); rbErr != nil {
			e.log.Error().Err(rbErr).Str("session", sess.ID).Msg("debit rollback failed")
		}
		sess.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", ErrEngineFault, err)
	}

	payout := clampPayout(outcome.Payout, settings.MaxPayout, currency)
	if payout.Sign() > 0 {
		if err := sess.Balance.Credit(w.Currency, payout); err != nil {
			sess.mu.Unlock()
			return nil, fmt.Errorf("%w: payout credit failed: %v", ErrEngineFault, err)
		}
	}

	result, err := models.NewGameResult(w.GameID, w.Currency, w.Stake, payout, outcome.Won, outcome.Detail)
	if err != nil {
		sess.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", ErrEngineFault, err)
	}
	if err := sess.Ledger.Append(result); err != nil {
		e.log.Warn().Err(err).Str("session", sess.ID).Msg("ledger append failed")
	}
	sess.Stats.Record(result)

	sess.mu.Unlock()

	e.log.Info().
		Str("session", sess.ID).
		Str("game", string(w.GameID)).
		Str("stake", w.Stake.String()).
		Str("payout", payout.String()).
		Bool("won", result.Won).
		Msg("wager resolved")

	if e.sink != nil {
		e.sink(sess.ID, result)
	}
	return result, nil
}

// validateWager covers the pre-debit rejections: unknown game or currency,
// disabled game, stake outside the configured bounds, malformed params.
func (e *WagerEngine) validateWager(w *models.Wager) (models.GameSettings, games.Rule, error) {
	if err := w.Validate(); err != nil {
		return models.GameSettings{}, nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	settings, err := e.settings.Get(w.GameID)
	if err != nil {
		return models.GameSettings{}, nil, err
	}
	if !settings.Enabled {
		return models.GameSettings{}, nil, fmt.Errorf("%w: %s", ErrGameDisabled, w.GameID)
	}

	// Bet bounds are USD-denominated; convert the stake at the current rate.
	currency, _ := models.GetCurrency(w.Currency)
	stakeUSD := w.Stake.Mul(currency.USDRate)
	if stakeUSD.LessThan(settings.MinBet) || stakeUSD.GreaterThan(settings.MaxBet) {
		return models.GameSettings{}, nil, fmt.Errorf("%w: %s USD outside [%s, %s]",
			ErrStakeOutOfRange, stakeUSD, settings.MinBet, settings.MaxBet)
	}

	rule, ok := games.Get(w.GameID)
	if !ok {
		return models.GameSettings{}, nil, fmt.Errorf("%w: no rule for game %s", ErrValidation, w.GameID)
	}
	if err := rule.ValidateParams(w.Params); err != nil {
		return models.GameSettings{}, nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return settings, rule, nil
}

// biasDraw is the uniform bias policy: one draw against the configured win
// rate decides whether the rule samples winning or losing outcomes.
func (e *WagerEngine) biasDraw(settings models.GameSettings) bool {
	return e.src.Float64()*100 < settings.WinRate
}

// clampPayout caps a payout at the settings' USD-denominated maximum.
func clampPayout(payout, maxPayoutUSD decimal.Decimal, currency models.Currency) decimal.Decimal {
	limit := maxPayoutUSD.Div(currency.USDRate)
	if payout.GreaterThan(limit) {
		return limit
	}
	return payout
}

// Deposit credits an external deposit to the session balance.
func (e *WagerEngine) Deposit(sess *Session, currencySym string, amount decimal.Decimal) (decimal.Decimal, error) {
	if _, ok := models.GetCurrency(currencySym); !ok {
		return decimal.Zero, fmt.Errorf("%w: unsupported currency %s", ErrValidation, currencySym)
	}
	if amount.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: deposit must be positive", ErrValidation)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.Balance.Credit(currencySym, amount); err != nil {
		return decimal.Zero, err
	}
	return sess.Balance.Get(currencySym)
}

// Withdraw debits the session balance, failing without mutation when funds
// are short.
func (e *WagerEngine) Withdraw(sess *Session, currencySym string, amount decimal.Decimal) (decimal.Decimal, error) {
	if _, ok := models.GetCurrency(currencySym); !ok {
		return decimal.Zero, fmt.Errorf("%w: unsupported currency %s", ErrValidation, currencySym)
	}
	if amount.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: withdrawal must be positive", ErrValidation)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.Balance.Debit(currencySym, amount); err != nil {
		return decimal.Zero, err
	}
	return sess.Balance.Get(currencySym)
}

// openWager performs the pre-resolution half of PlaceWager for interactive
// rounds: full validation plus the stake debit, under the session lock.
func (e *WagerEngine) openWager(sess *Session, w *models.Wager) (models.GameSettings, error) {
	settings, _, err := e.validateWager(w)
	if err != nil {
		return models.GameSettings{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	balance, err := sess.Balance.Get(w.Currency)
	if err != nil {
		return models.GameSettings{}, fmt.Errorf("%w: balance lookup failed: %v", ErrEngineFault, err)
	}
	if balance.LessThan(w.Stake) {
		return models.GameSettings{}, fmt.Errorf("%w: have %s, need %s %s", ErrInsufficientFunds, balance, w.Stake, w.Currency)
	}
	if err := sess.Balance.Debit(w.Currency, w.Stake); err != nil {
		return models.GameSettings{}, err
	}
	return settings, nil
}

// settleRound performs the post-resolution half for interactive rounds:
// clamp, credit, record, notify.
func (e *WagerEngine) settleRound(sess *Session, gameType models.GameType, currencySym string, stake, payout decimal.Decimal, won bool, detail any, settings models.GameSettings) (*models.GameResult, error) {
	currency, _ := models.GetCurrency(currencySym)
	payout = clampPayout(payout, settings.MaxPayout, currency)

	sess.mu.Lock()
	if payout.Sign() > 0 {
		if err := sess.Balance.Credit(currencySym, payout); err != nil {
			sess.mu.Unlock()
			return nil, fmt.Errorf("%w: payout credit failed: %v", ErrEngineFault, err)
		}
	}
	result, err := models.NewGameResult(gameType, currencySym, stake, payout, won, detail)
	if err != nil {
		sess.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", ErrEngineFault, err)
	}
	if err := sess.Ledger.Append(result); err != nil {
		e.log.Warn().Err(err).Str("session", sess.ID).Msg("ledger append failed")
	}
	sess.Stats.Record(result)
	sess.mu.Unlock()

	if e.sink != nil {
		e.sink(sess.ID, result)
	}
	return result, nil
}

// refund returns a debited stake when a round fails to open.
func (e *WagerEngine) refund(sess *Session, currencySym string, stake decimal.Decimal) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.Balance.Credit(currencySym, stake); err != nil {
		e.log.Error().Err(err).Str("session", sess.ID).Msg("stake refund failed")
	}
}
