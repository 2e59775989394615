package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/pphilfre/stake-sub000/internal/models"
	"github.com/pphilfre/stake-sub000/internal/services"
)

type GameHandler struct {
	engine   *services.WagerEngine
	sessions *services.SessionManager
	settings *services.SettingsStore
}

func NewGameHandler(engine *services.WagerEngine, sessions *services.SessionManager, settings *services.SettingsStore) *GameHandler {
	return &GameHandler{
		engine:   engine,
		sessions: sessions,
		settings: settings,
	}
}

// session resolves the caller's session from the X-Session-ID header,
// creating a guest session when absent.
func (h *GameHandler) session(c *gin.Context) *services.Session {
	return h.sessions.Get(c.GetHeader("X-Session-ID"))
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, services.ErrGameDisabled):
		return http.StatusForbidden
	case errors.Is(err, services.ErrRoundNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrEngineFault):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(httpStatus(err), gin.H{"error": err.Error()})
}

func (h *GameHandler) PlaceWager(c *gin.Context) {
	sess := h.session(c)

	var wager models.Wager
	if err := c.ShouldBindJSON(&wager); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, err := h.engine.PlaceWager(sess, &wager)
	if err != nil {
		abortWithError(c, err)
		return
	}

	balance, _ := sess.Balance.Get(wager.Currency)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": sess.ID,
		"result":  result,
		"balance": balance,
	})
}

func (h *GameHandler) GetBalance(c *gin.Context) {
	sess := h.session(c)

	balances := make(map[string]decimal.Decimal)
	for _, sym := range models.SupportedCurrencies() {
		bal, err := sess.Balance.Get(sym)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read balance"})
			return
		}
		balances[sym] = bal
	}

	c.JSON(http.StatusOK, gin.H{
		"session":  sess.ID,
		"balances": balances,
		"stats":    sess.Stats.Snapshot(),
	})
}

type fundsRequest struct {
	Currency string          `json:"currency" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
}

func (h *GameHandler) Deposit(c *gin.Context) {
	sess := h.session(c)

	var req fundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	balance, err := h.engine.Deposit(sess, req.Currency, req.Amount)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.ID, "currency": req.Currency, "balance": balance})
}

func (h *GameHandler) Withdraw(c *gin.Context) {
	sess := h.session(c)

	var req fundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	balance, err := h.engine.Withdraw(sess, req.Currency, req.Amount)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.ID, "currency": req.Currency, "balance": balance})
}

func (h *GameHandler) GetHistory(c *gin.Context) {
	sess := h.session(c)

	limit := services.DefaultRecentResults
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}

	results, err := sess.Ledger.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": sess.ID,
		"results": results,
		"count":   len(results),
	})
}

func (h *GameHandler) GetSettings(c *gin.Context) {
	gameID := models.GameType(c.Param("game"))
	settings, err := h.settings.Get(gameID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	// Players see bet limits and the enabled flag, not the house bias.
	c.JSON(http.StatusOK, gin.H{
		"game_id": settings.GameID,
		"min_bet": settings.MinBet,
		"max_bet": settings.MaxBet,
		"enabled": settings.Enabled,
	})
}

func (h *GameHandler) ListGames(c *gin.Context) {
	games := lo.Map(models.AllGameTypes(), func(gt models.GameType, _ int) gin.H {
		settings, _ := h.settings.Get(gt)
		return gin.H{"game_id": gt, "enabled": settings.Enabled}
	})
	c.JSON(http.StatusOK, gin.H{"games": games})
}

func (h *GameHandler) ListCurrencies(c *gin.Context) {
	currencies := lo.FilterMap(models.SupportedCurrencies(), func(sym string, _ int) (models.Currency, bool) {
		return models.GetCurrency(sym)
	})
	c.JSON(http.StatusOK, gin.H{"currencies": currencies})
}
