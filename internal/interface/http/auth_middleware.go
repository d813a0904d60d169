package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/projectshelf/internal/domain/auth"
	apperrors "github.com/yanqian/projectshelf/pkg/errors"
	"github.com/yanqian/projectshelf/pkg/metrics"
)

// sessionMiddleware admits a request only with a valid access token. The
// access_token cookie is tried first and an Authorization Bearer header second,
// so a stale cookie does not shadow a good header.
func sessionMiddleware(svc auth.Service, recorder metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		candidates := accessTokensFrom(c)
		if len(candidates) == 0 {
			recorder.RecordAuthEvent(metrics.AuthTokenRejected)
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, apperrors.CodeMissingToken, "No token provided", nil))
			return
		}
		var lastErr error
		for _, token := range candidates {
			claims, err := svc.Authenticate(c.Request.Context(), token)
			if err == nil {
				setClaims(c, claims)
				c.Next()
				return
			}
			if !apperrors.IsCode(err, apperrors.CodeInvalidToken) {
				abortWithDomainError(c, err)
				return
			}
			lastErr = err
		}
		recorder.RecordAuthEvent(metrics.AuthTokenRejected)
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, apperrors.CodeInvalidToken, "Invalid token", lastErr))
	}
}

func accessTokensFrom(c *gin.Context) []string {
	var tokens []string
	if value, err := c.Cookie(accessCookieName); err == nil && value != "" {
		tokens = append(tokens, value)
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		if bearer := strings.TrimSpace(parts[1]); bearer != "" && (len(tokens) == 0 || bearer != tokens[0]) {
			tokens = append(tokens, bearer)
		}
	}
	return tokens
}
