package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pphilfre/stake-sub000/internal/models"
	"github.com/pphilfre/stake-sub000/internal/services"
)

type AdminHandler struct {
	auth     *services.AuthService
	settings *services.SettingsStore
}

func NewAdminHandler(auth *services.AuthService, settings *services.SettingsStore) *AdminHandler {
	return &AdminHandler{auth: auth, settings: settings}
}

type authRequest struct {
	PIN string `json:"pin" binding:"required"`
}

// Authenticate exchanges the admin PIN for a capability token.
func (h *AdminHandler) Authenticate(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	token, err := h.auth.AuthenticatePIN(req.PIN)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetSettings returns the full admin view, house bias included.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	gameID := models.GameType(c.Param("game"))
	settings, err := h.settings.Get(gameID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	gameID := models.GameType(c.Param("game"))

	var patch models.GameSettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	updated, err := h.settings.Update(gameID, patch, c.GetString("capability"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": updated})
}

func (h *AdminHandler) ResetSettings(c *gin.Context) {
	gameID := models.GameType(c.Param("game"))

	settings, err := h.settings.ResetToDefault(gameID, c.GetString("capability"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
