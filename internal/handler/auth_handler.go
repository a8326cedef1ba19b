package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jorge-Marco5/go-api-template/internal/apperr"
	"github.com/Jorge-Marco5/go-api-template/internal/dto"
	"github.com/Jorge-Marco5/go-api-template/internal/middleware"
	"github.com/Jorge-Marco5/go-api-template/internal/response"
	"github.com/Jorge-Marco5/go-api-template/internal/service"
	"github.com/Jorge-Marco5/go-api-template/internal/token"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService service.AuthService
	codec       *token.Codec
	production  bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService, codec *token.Codec, production bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		codec:       codec,
		production:  production,
	}
}

// Register handles user registration
// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperr.Validation(err.Error()))
		return
	}
	if ok, msg := req.Validate(); !ok {
		_ = c.Error(apperr.Validation(msg))
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Created(c, "user registered successfully", dto.AuthData{
		User:  result.User,
		Token: result.AccessToken,
	})
}

// Login handles user login
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperr.Validation(err.Error()))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.setAccessCookie(c, result.AccessToken)
	h.setRefreshCookie(c, result.RefreshToken)

	response.OKMessage(c, "login successful", dto.AuthData{
		User:         result.User,
		Token:        result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

// Refresh exchanges a refresh token for a new access token
// POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, _ := c.Cookie(middleware.RefreshTokenCookie)
	if refreshToken == "" {
		var req dto.RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}
	if refreshToken == "" {
		_ = c.Error(apperr.Validation("refresh token not provided"))
		return
	}

	accessToken, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.setAccessCookie(c, accessToken)
	response.OK(c, gin.H{"token": accessToken})
}

// Profile returns the calling user
// GET /auth/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	claims, ok := middleware.Caller(c)
	if !ok {
		_ = c.Error(apperr.Unauthenticated("not authenticated"))
		return
	}

	user, err := h.authService.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.OK(c, user)
}

// Logout destroys all the caller's sessions and clears both cookies
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.Caller(c)
	if !ok {
		_ = c.Error(apperr.Unauthenticated("not authenticated"))
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims.UserID); err != nil {
		_ = c.Error(err)
		return
	}

	h.clearCookie(c, middleware.AccessTokenCookie)
	h.clearCookie(c, middleware.RefreshTokenCookie)
	response.OKMessage(c, "logout successful", nil)
}

func (h *AuthHandler) setAccessCookie(c *gin.Context, value string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, value,
		int(h.codec.AccessTTL().Seconds()), "/", "", h.production, true)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.RefreshTokenCookie, value,
		int(h.codec.RefreshTTL().Seconds()), "/", "", h.production, true)
}

func (h *AuthHandler) clearCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", h.production, true)
}
