package services

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pphilfre/stake-sub000/internal/games"
	"github.com/pphilfre/stake-sub000/internal/models"
	"github.com/pphilfre/stake-sub000/internal/rng"
)

// RoundService runs the multi-step games. A round debits its stake when
// opened and credits the payout when it finishes; user actions happen in
// between. One active round per session and game.
type RoundService struct {
	engine *WagerEngine
	src    rng.Source
	log    zerolog.Logger

	mu     sync.Mutex
	mines  map[string]*minesRound
	bjack  map[string]*blackjackRound
	active map[string]string // sessionID+game -> round id
}

func NewRoundService(engine *WagerEngine, src rng.Source, log zerolog.Logger) *RoundService {
	return &RoundService{
		engine: engine,
		src:    src,
		log:    log.With().Str("component", "rounds").Logger(),
		mines:  make(map[string]*minesRound),
		bjack:  make(map[string]*blackjackRound),
		active: make(map[string]string),
	}
}

func activeKey(sessionID string, game models.GameType) string {
	return sessionID + ":" + string(game)
}

// --- Mines ---

// minesRound state is guarded by mu: the finished check, every mutation
// and the settle must happen under it, or two concurrent requests could
// both settle the round.
type minesRound struct {
	ID       string
	sess     *Session
	settings models.GameSettings
	currency string
	stake    decimal.Decimal

	mu       sync.Mutex
	gridSize int
	mines    int
	revealed []int
	finished bool
}

type MinesRoundState struct {
	RoundID    string             `json:"round_id"`
	GridSize   int                `json:"grid_size"`
	Mines      int                `json:"mines"`
	Revealed   []int              `json:"revealed"`
	Multiplier float64            `json:"multiplier"`
	GameOver   bool               `json:"game_over"`
	Result     *models.GameResult `json:"result,omitempty"`
}

// OpenMines starts an interactive mines round: validates and debits like a
// one-shot wager, then waits for reveals.
func (s *RoundService) OpenMines(sess *Session, currency string, stake decimal.Decimal, gridSize, mineCount int) (*MinesRoundState, error) {
	if gridSize == 0 {
		gridSize = games.MinesDefaultGridSize
	}
	if gridSize < 4 || gridSize > 100 {
		return nil, fmt.Errorf("%w: grid_size must be between 4 and 100", ErrValidation)
	}
	if mineCount < 1 || mineCount >= gridSize {
		return nil, fmt.Errorf("%w: mines must be between 1 and %d", ErrValidation, gridSize-1)
	}

	// Reserve the slot before the debit so two concurrent opens cannot
	// both pass the busy check.
	key := activeKey(sess.ID, models.GameTypeMines)
	s.mu.Lock()
	if _, busy := s.active[key]; busy {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: a mines round is already active", ErrValidation)
	}
	s.active[key] = ""
	s.mu.Unlock()

	// Params carry the planned single reveal so the shared validation path
	// covers stake bounds and the enabled flag.
	w := &models.Wager{
		GameID:   models.GameTypeMines,
		Currency: currency,
		Stake:    stake,
		Params:   []byte(fmt.Sprintf(`{"grid_size":%d,"mines":%d,"reveals":1}`, gridSize, mineCount)),
	}
	settings, err := s.engine.openWager(sess, w)
	if err != nil {
		s.mu.Lock()
		delete(s.active, key)
		s.mu.Unlock()
		return nil, err
	}

	round := &minesRound{
		ID:       models.GenerateRoundID(),
		sess:     sess,
		settings: settings,
		currency: currency,
		stake:    stake,
		gridSize: gridSize,
		mines:    mineCount,
	}

	s.mu.Lock()
	s.mines[round.ID] = round
	s.active[key] = round.ID
	s.mu.Unlock()

	round.mu.Lock()
	defer round.mu.Unlock()
	return s.minesState(round, nil), nil
}

// RevealMine uncovers one cell. The bias draw happens per reveal: the
// configured win rate decides whether this step is safe.
func (s *RoundService) RevealMine(sess *Session, roundID string, cell int) (*MinesRoundState, error) {
	s.mu.Lock()
	round, ok := s.mines[roundID]
	s.mu.Unlock()
	if !ok || round.sess.ID != sess.ID {
		return nil, ErrRoundNotFound
	}

	round.mu.Lock()
	defer round.mu.Unlock()
	if round.finished {
		return nil, ErrRoundFinished
	}
	if cell < 0 || cell >= round.gridSize {
		return nil, fmt.Errorf("%w: cell %d outside grid", ErrValidation, cell)
	}
	for _, c := range round.revealed {
		if c == cell {
			return nil, fmt.Errorf("%w: cell %d already revealed", ErrValidation, cell)
		}
	}

	safe := s.engine.biasDraw(round.settings)
	if !safe {
		round.finished = true
		detail := s.minesLossDetail(round, cell)
		result, err := s.engine.settleRound(sess, models.GameTypeMines, round.currency,
			round.stake, decimal.Zero, false, detail, round.settings)
		if err != nil {
			return nil, err
		}
		s.closeRound(sess.ID, models.GameTypeMines, roundID)
		return s.minesState(round, result), nil
	}

	round.revealed = append(round.revealed, cell)
	if len(round.revealed) == round.gridSize-round.mines {
		return s.cashoutMinesLocked(sess, round)
	}
	return s.minesState(round, nil), nil
}

// CashoutMines banks the current multiplier. Cashing out with no gems
// revealed is disallowed.
func (s *RoundService) CashoutMines(sess *Session, roundID string) (*MinesRoundState, error) {
	s.mu.Lock()
	round, ok := s.mines[roundID]
	s.mu.Unlock()
	if !ok || round.sess.ID != sess.ID {
		return nil, ErrRoundNotFound
	}

	round.mu.Lock()
	defer round.mu.Unlock()
	if round.finished {
		return nil, ErrRoundFinished
	}
	if len(round.revealed) == 0 {
		return nil, fmt.Errorf("%w: reveal at least one cell before cashing out", ErrValidation)
	}
	return s.cashoutMinesLocked(sess, round)
}

// cashoutMinesLocked settles the round; round.mu must be held.
func (s *RoundService) cashoutMinesLocked(sess *Session, round *minesRound) (*MinesRoundState, error) {
	round.finished = true

	multiplier := games.MinesMultiplier(round.gridSize, round.mines, len(round.revealed), round.settings.HouseEdge)
	payout := round.stake.Mul(decimal.NewFromFloat(multiplier))

	detail := games.MinesDetail{
		GridSize:  round.gridSize,
		Mines:     s.minePlacement(round, -1),
		Revealed:  round.revealed,
		HitIndex:  -1,
		GemsFound: len(round.revealed),
	}
	result, err := s.engine.settleRound(sess, models.GameTypeMines, round.currency,
		round.stake, payout, true, detail, round.settings)
	if err != nil {
		return nil, err
	}
	s.closeRound(sess.ID, models.GameTypeMines, round.ID)
	return s.minesState(round, result), nil
}

func (s *RoundService) minesLossDetail(round *minesRound, hitCell int) games.MinesDetail {
	return games.MinesDetail{
		GridSize:  round.gridSize,
		Mines:     s.minePlacement(round, hitCell),
		Revealed:  round.revealed,
		HitIndex:  len(round.revealed),
		GemsFound: len(round.revealed),
	}
}

// minePlacement lays out the mines consistently with what the player saw:
// never under a revealed gem, always under the hit cell on a loss.
func (s *RoundService) minePlacement(round *minesRound, hitCell int) []int {
	taken := make(map[int]bool, len(round.revealed)+1)
	for _, c := range round.revealed {
		taken[c] = true
	}

	var mines []int
	if hitCell >= 0 {
		mines = append(mines, hitCell)
		taken[hitCell] = true
	}

	var free []int
	for c := 0; c < round.gridSize; c++ {
		if !taken[c] {
			free = append(free, c)
		}
	}
	s.src.Shuffle(len(free), func(i, j int) {
		free[i], free[j] = free[j], free[i]
	})
	mines = append(mines, free[:round.mines-len(mines)]...)
	return mines
}

func (s *RoundService) minesState(round *minesRound, result *models.GameResult) *MinesRoundState {
	multiplier := 0.0
	if len(round.revealed) > 0 {
		multiplier = games.MinesMultiplier(round.gridSize, round.mines, len(round.revealed), round.settings.HouseEdge)
	}
	return &MinesRoundState{
		RoundID:    round.ID,
		GridSize:   round.gridSize,
		Mines:      round.mines,
		Revealed:   round.revealed,
		Multiplier: multiplier,
		GameOver:   round.finished,
		Result:     result,
	}
}

// --- Blackjack ---

// blackjackRound state is guarded by mu, like minesRound.
type blackjackRound struct {
	ID       string
	sess     *Session
	settings models.GameSettings
	currency string
	stake    decimal.Decimal

	mu       sync.Mutex
	player   []games.Card
	dealer   []games.Card
	natural  bool
	doubled  bool
	finished bool
}

type BlackjackRoundState struct {
	RoundID     string             `json:"round_id"`
	PlayerHand  []games.Card       `json:"player_hand"`
	DealerHand  []games.Card       `json:"dealer_hand"`
	PlayerTotal int                `json:"player_total"`
	CanDouble   bool               `json:"can_double"`
	GameOver    bool               `json:"game_over"`
	Result      *models.GameResult `json:"result,omitempty"`
}

// OpenBlackjack deals a hand. A natural resolves immediately at 2.5x.
func (s *RoundService) OpenBlackjack(sess *Session, currency string, stake decimal.Decimal) (*BlackjackRoundState, error) {
	key := activeKey(sess.ID, models.GameTypeBlackjack)
	s.mu.Lock()
	if _, busy := s.active[key]; busy {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: a blackjack round is already active", ErrValidation)
	}
	s.active[key] = ""
	s.mu.Unlock()

	w := &models.Wager{
		GameID:   models.GameTypeBlackjack,
		Currency: currency,
		Stake:    stake,
	}
	settings, err := s.engine.openWager(sess, w)
	if err != nil {
		s.mu.Lock()
		delete(s.active, key)
		s.mu.Unlock()
		return nil, err
	}

	round := &blackjackRound{
		ID:       models.GenerateRoundID(),
		sess:     sess,
		settings: settings,
		currency: currency,
		stake:    stake,
		player:   []games.Card{games.DrawCard(s.src), games.DrawCard(s.src)},
		dealer:   []games.Card{games.DrawCard(s.src)},
	}
	round.natural = games.IsNatural(round.player)

	s.mu.Lock()
	s.bjack[round.ID] = round
	s.active[key] = round.ID
	s.mu.Unlock()

	round.mu.Lock()
	defer round.mu.Unlock()
	if round.natural {
		return s.resolveBlackjack(sess, round)
	}
	return s.blackjackState(round, nil), nil
}

// HitBlackjack draws one card; a bust resolves the round as a loss.
func (s *RoundService) HitBlackjack(sess *Session, roundID string) (*BlackjackRoundState, error) {
	round, err := s.blackjackFor(sess, roundID)
	if err != nil {
		return nil, err
	}

	round.mu.Lock()
	defer round.mu.Unlock()
	if round.finished {
		return nil, ErrRoundFinished
	}
	if games.HandValue(round.player) >= 21 {
		return nil, fmt.Errorf("%w: cannot hit on %d", ErrValidation, games.HandValue(round.player))
	}

	round.player = append(round.player, games.DrawCard(s.src))
	if games.HandValue(round.player) > 21 {
		return s.resolveBlackjack(sess, round)
	}
	return s.blackjackState(round, nil), nil
}

// StandBlackjack ends the player's turn and plays out the dealer.
func (s *RoundService) StandBlackjack(sess *Session, roundID string) (*BlackjackRoundState, error) {
	round, err := s.blackjackFor(sess, roundID)
	if err != nil {
		return nil, err
	}

	round.mu.Lock()
	defer round.mu.Unlock()
	if round.finished {
		return nil, ErrRoundFinished
	}
	return s.resolveBlackjack(sess, round)
}

// DoubleBlackjack doubles the stake, draws exactly one card and stands.
// Only available on the initial two cards.
func (s *RoundService) DoubleBlackjack(sess *Session, roundID string) (*BlackjackRoundState, error) {
	round, err := s.blackjackFor(sess, roundID)
	if err != nil {
		return nil, err
	}

	round.mu.Lock()
	defer round.mu.Unlock()
	if round.finished {
		return nil, ErrRoundFinished
	}
	if len(round.player) != 2 || round.doubled {
		return nil, fmt.Errorf("%w: double down is only available on the first two cards", ErrValidation)
	}

	sess.mu.Lock()
	if err := sess.Balance.Debit(round.currency, round.stake); err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	sess.mu.Unlock()

	round.doubled = true
	round.player = append(round.player, games.DrawCard(s.src))
	return s.resolveBlackjack(sess, round)
}

func (s *RoundService) blackjackFor(sess *Session, roundID string) (*blackjackRound, error) {
	s.mu.Lock()
	round, ok := s.bjack[roundID]
	s.mu.Unlock()
	if !ok || round.sess.ID != sess.ID {
		return nil, ErrRoundNotFound
	}
	return round, nil
}

// resolveBlackjack plays the dealer under a single bias draw and settles;
// round.mu must be held.
func (s *RoundService) resolveBlackjack(sess *Session, round *blackjackRound) (*BlackjackRoundState, error) {
	round.finished = true

	forceWin := s.engine.biasDraw(round.settings)
	round.dealer = games.RiggedDealerPlay(round.dealer, round.player, round.natural, forceWin, s.src)

	multiplier, label := games.SettleBlackjack(round.player, round.dealer, round.natural)

	totalStake := round.stake
	if round.doubled {
		totalStake = totalStake.Add(round.stake)
	}
	payout := totalStake.Mul(decimal.NewFromFloat(multiplier))

	detail := games.BlackjackDetail{
		PlayerHand:  round.player,
		DealerHand:  round.dealer,
		PlayerTotal: games.HandValue(round.player),
		DealerTotal: games.HandValue(round.dealer),
		Result:      label,
	}
	result, err := s.engine.settleRound(sess, models.GameTypeBlackjack, round.currency,
		totalStake, payout, payout.GreaterThan(totalStake), detail, round.settings)
	if err != nil {
		return nil, err
	}
	s.closeRound(sess.ID, models.GameTypeBlackjack, round.ID)
	return s.blackjackState(round, result), nil
}

func (s *RoundService) blackjackState(round *blackjackRound, result *models.GameResult) *BlackjackRoundState {
	dealer := round.dealer
	if !round.finished {
		// Hole cards stay hidden until resolution.
		dealer = round.dealer[:1]
	}
	return &BlackjackRoundState{
		RoundID:     round.ID,
		PlayerHand:  round.player,
		DealerHand:  dealer,
		PlayerTotal: games.HandValue(round.player),
		CanDouble:   len(round.player) == 2 && !round.doubled && !round.finished,
		GameOver:    round.finished,
		Result:      result,
	}
}

func (s *RoundService) closeRound(sessionID string, game models.GameType, roundID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, activeKey(sessionID, game))
	delete(s.mines, roundID)
	delete(s.bjack, roundID)
}
