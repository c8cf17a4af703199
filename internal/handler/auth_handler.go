package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/campusmarket/campusmarket-backend/internal/common"
	"github.com/campusmarket/campusmarket-backend/internal/config"
	"github.com/campusmarket/campusmarket-backend/internal/middleware"
	"github.com/campusmarket/campusmarket-backend/internal/service"
	"github.com/gin-gonic/gin"
)

const stateCookie = "oauth_state"

// AuthHandler handles the Google sign-in flow
type AuthHandler struct {
	service service.AuthService
	config  *config.Config
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  cfg,
	}
}

// GoogleLogin handles GET /api/v1/auth/google
// @Summary      Start Google sign-in
// @Description  Redirects the browser to the Google consent screen
// @Tags         auth
// @Success      307
// @Router       /auth/google [get]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state, err := randomState()
	if err != nil {
		common.ErrorResponse(c, 500, "Could not start sign-in", err)
		return
	}

	// State lives in a short cookie so the callback can verify it
	c.SetCookie(stateCookie, state, 600, "/", "", !h.config.IsDevelopment(), true)
	c.Redirect(http.StatusTemporaryRedirect, h.service.LoginURL(state))
}

// GoogleCallback handles GET /api/v1/auth/google/callback
// @Summary      Complete Google sign-in
// @Description  Exchanges the authorization code and issues a session token
// @Tags         auth
// @Produce      json
// @Param        code   query  string  true   "authorization code"
// @Param        state  query  string  true   "anti-forgery state"
// @Success      200  {object}  common.APIResponse
// @Failure      401  {object}  common.APIResponse
// @Failure      403  {object}  common.APIResponse
// @Router       /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		common.ErrorResponse(c, 400, "Missing authorization code", nil)
		return
	}

	state := c.Query("state")
	wantState, err := c.Cookie(stateCookie)
	if err != nil || state == "" || state != wantState {
		common.ErrorResponse(c, 401, "State mismatch", nil)
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", !h.config.IsDevelopment(), true)

	result, err := h.service.HandleGoogleCallback(c.Request.Context(), code)
	if errors.Is(err, common.ErrForbidden) {
		common.ErrorResponse(c, 403, "A campus email address is required", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, 401, "Sign-in failed", err)
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{Data: result})
}

// Me handles GET /api/v1/auth/me
// @Summary      Current user profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.APIResponse
// @Failure      401  {object}  common.APIResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.service.GetUser(middleware.GetUserID(c))
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.APIResponse{Data: user})
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
