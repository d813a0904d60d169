package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/projectshelf/internal/domain/auth"
	"github.com/yanqian/projectshelf/internal/domain/portfolio"
	"github.com/yanqian/projectshelf/internal/domain/user"
	"github.com/yanqian/projectshelf/internal/infra/config"
	apperrors "github.com/yanqian/projectshelf/pkg/errors"
	"github.com/yanqian/projectshelf/pkg/metrics"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	authSvc      auth.Service
	userSvc      user.Service
	portfolioSvc portfolio.Service
	cookies      sessionCookies
	metrics      metrics.Recorder
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(cfg *config.Config, authSvc auth.Service, userSvc user.Service, portfolioSvc portfolio.Service, recorder metrics.Recorder, logger *slog.Logger) *Handler {
	return &Handler{
		authSvc:      authSvc,
		userSvc:      userSvc,
		portfolioSvc: portfolioSvc,
		cookies:      newSessionCookies(cfg),
		metrics:      recorder,
		logger:       logger.With("component", "http.handler"),
	}
}

// Login verifies credentials and sets the session cookie pair.
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidBody(err))
		return
	}

	resp, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	h.cookies.set(c, resp.AccessToken, resp.RefreshToken)
	c.JSON(http.StatusOK, resp)
}

// Refresh rotates the token pair. Browsers send the refresh cookie; other
// clients may post {"refreshToken": "..."}. An unreadable body counts as no
// token, so the caller gets the same 401 as a missing cookie.
func (h *Handler) Refresh(c *gin.Context) {
	token := readRefreshCookie(c)
	if token == "" {
		var req auth.RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			token = req.RefreshToken
		}
	}

	resp, err := h.authSvc.Refresh(c.Request.Context(), token)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	h.cookies.set(c, resp.AccessToken, resp.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"message":      "Tokens refreshed successfully",
		"accessToken":  resp.AccessToken,
		"refreshToken": resp.RefreshToken,
	})
}

// Logout clears both cookies. It always succeeds.
func (h *Handler) Logout(c *gin.Context) {
	h.cookies.clear(c)
	h.metrics.RecordAuthEvent(metrics.AuthLogout)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// Me returns the authenticated caller's profile.
func (h *Handler) Me(c *gin.Context) {
	claims, ok := h.requireClaims(c)
	if !ok {
		return
	}
	view, err := h.authSvc.Profile(c.Request.Context(), claims.Subject)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Health is the liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) requireClaims(c *gin.Context) (auth.Claims, bool) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, apperrors.CodeMissingToken, "No token provided", nil))
		return auth.Claims{}, false
	}
	return claims, true
}
