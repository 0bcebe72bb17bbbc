package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finova/internal/errors"
	"finova/internal/models"
	"finova/internal/services"
)

// AuthHandler handles the household password gate and session state
type AuthHandler struct {
	sessionService services.SessionServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(sessionService services.SessionServicer) *AuthHandler {
	return &AuthHandler{sessionService: sessionService}
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Password string       `json:"password" binding:"required"`
	Owner    models.Owner `json:"owner"`
}

// UpdateSessionRequest switches the viewed owner or privacy mode
type UpdateSessionRequest struct {
	Owner       *models.Owner `json:"owner"`
	PrivacyMode *bool         `json:"privacy_mode"`
}

// SessionResponse describes the current session and household
type SessionResponse struct {
	Owner       models.Owner   `json:"owner"`
	PrivacyMode bool           `json:"privacy_mode"`
	Members     []models.Owner `json:"members"`
}

// Login handles the household password login
// @Summary     Log in
// @Description Check the household password and open a session viewing the given owner
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "Household password and owner"
// @Success     200 {object} services.SessionToken "Session token"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid password"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	token, err := h.sessionService.Login(c.Request.Context(), req.Password, req.Owner)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, token)
}

// GetSession returns the caller's session state
// @Summary     Get session
// @Description Get the current owner view, privacy mode and household members
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} SessionResponse "Session"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /session [get]
func (h *AuthHandler) GetSession(c *gin.Context) {
	sc, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		Owner:       sc.Owner,
		PrivacyMode: sc.PrivacyMode,
		Members:     h.sessionService.Household().Members(),
	})
}

// UpdateSession switches owner view or privacy mode
// @Summary     Update session
// @Description Switch the viewed owner and/or privacy mode; returns a new token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateSessionRequest true "Session changes"
// @Success     200 {object} services.SessionToken "New session token"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /session [put]
func (h *AuthHandler) UpdateSession(c *gin.Context) {
	sc, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	token, err := h.sessionService.Update(c.Request.Context(), sc, req.Owner, req.PrivacyMode)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, token)
}
