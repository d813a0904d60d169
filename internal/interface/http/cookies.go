package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/projectshelf/internal/infra/config"
)

const (
	accessCookieName  = "access_token"
	refreshCookieName = "refresh_token"
)

// sessionCookies issues and clears the token cookie pair. Both cookies are
// HttpOnly and SameSite=Strict; Secure follows the deployment environment.
type sessionCookies struct {
	accessMaxAge  int
	refreshMaxAge int
	secure        bool
}

func newSessionCookies(cfg *config.Config) sessionCookies {
	return sessionCookies{
		accessMaxAge:  seconds(cfg.Auth.AccessCookieMaxAge),
		refreshMaxAge: seconds(cfg.Auth.RefreshCookieMaxAge),
		secure:        cfg.App.IsProduction(),
	}
}

func (s sessionCookies) set(c *gin.Context, accessToken, refreshToken string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(accessCookieName, accessToken, s.accessMaxAge, "/", "", s.secure, true)
	c.SetCookie(refreshCookieName, refreshToken, s.refreshMaxAge, "/", "", s.secure, true)
}

func (s sessionCookies) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(accessCookieName, "", -1, "/", "", s.secure, true)
	c.SetCookie(refreshCookieName, "", -1, "/", "", s.secure, true)
}

func readRefreshCookie(c *gin.Context) string {
	value, err := c.Cookie(refreshCookieName)
	if err != nil {
		return ""
	}
	return value
}

func seconds(d time.Duration) int {
	return int(d / time.Second)
}
