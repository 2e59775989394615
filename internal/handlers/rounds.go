package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/pphilfre/stake-sub000/internal/services"
)

type RoundHandler struct {
	rounds   *services.RoundService
	sessions *services.SessionManager
}

func NewRoundHandler(rounds *services.RoundService, sessions *services.SessionManager) *RoundHandler {
	return &RoundHandler{rounds: rounds, sessions: sessions}
}

func (h *RoundHandler) session(c *gin.Context) *services.Session {
	return h.sessions.Get(c.GetHeader("X-Session-ID"))
}

type openMinesRequest struct {
	Currency string          `json:"currency" binding:"required"`
	Stake    decimal.Decimal `json:"stake" binding:"required"`
	GridSize int             `json:"grid_size"`
	Mines    int             `json:"mines" binding:"required"`
}

func (h *RoundHandler) OpenMines(c *gin.Context) {
	sess := h.session(c)

	var req openMinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	state, err := h.rounds.OpenMines(sess, req.Currency, req.Stake, req.GridSize, req.Mines)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.ID, "round": state})
}

type revealRequest struct {
	RoundID string `json:"round_id" binding:"required"`
	Cell    *int   `json:"cell" binding:"required"`
}

func (h *RoundHandler) RevealMine(c *gin.Context) {
	sess := h.session(c)

	var req revealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	state, err := h.rounds.RevealMine(sess, req.RoundID, *req.Cell)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.ID, "round": state})
}

type roundRequest struct {
	RoundID string `json:"round_id" binding:"required"`
}

func (h *RoundHandler) CashoutMines(c *gin.Context) {
	sess := h.session(c)

	var req roundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	state, err := h.rounds.CashoutMines(sess, req.RoundID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.ID, "round": state})
}

type openBlackjackRequest struct {
	Currency string          `json:"currency" binding:"required"`
	Stake    decimal.Decimal `json:"stake" binding:"required"`
}

func (h *RoundHandler) OpenBlackjack(c *gin.Context) {
	sess := h.session(c)

	var req openBlackjackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	state, err := h.rounds.OpenBlackjack(sess, req.Currency, req.Stake)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.ID, "round": state})
}

func (h *RoundHandler) blackjackAction(c *gin.Context, action func(*services.Session, string) (*services.BlackjackRoundState, error)) {
	sess := h.session(c)

	var req roundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	state, err := action(sess, req.RoundID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.ID, "round": state})
}

func (h *RoundHandler) HitBlackjack(c *gin.Context) {
	h.blackjackAction(c, h.rounds.HitBlackjack)
}

func (h *RoundHandler) StandBlackjack(c *gin.Context) {
	h.blackjackAction(c, h.rounds.StandBlackjack)
}

func (h *RoundHandler) DoubleBlackjack(c *gin.Context) {
	h.blackjackAction(c, h.rounds.DoubleBlackjack)
}
