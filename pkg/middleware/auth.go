package middleware

import (
	"errors"
	"net/http"
	"strings"

	"hirescape/job-api/internal/model"
	"hirescape/job-api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionCookie is the cookie the login handler stores the token in
const SessionCookie = "Authorization"

const sessionKey = "session"

// Session is the authenticated caller. ID and email come from the token,
// the flags from the database.
type Session struct {
	UserID   string
	Email    string
	Verified bool
	IsAdmin  bool
}

// NewAuthMiddleware rejects requests without a valid session token. The
// user is re-read on every request so deleted accounts and changed flags
// take effect before the token expires.
func NewAuthMiddleware(db *gorm.DB, tokens *security.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		candidates := tokensFromRequest(c)
		if len(candidates) == 0 {
			abort(c, http.StatusUnauthorized, "Unauthorized. Please log in to continue.")
			return
		}

		var (
			claims *security.Claims
			err    error
		)
		for _, tok := range candidates {
			if claims, err = tokens.Parse(tok); err == nil {
				break
			}
		}
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid or expired token.")
			return
		}

		var user model.User
		err = db.WithContext(c.Request.Context()).
			Select("id", "verified", "is_admin").
			Where("id = ?", claims.UserID).
			First(&user).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				abort(c, http.StatusUnauthorized, "Invalid or expired token.")
				return
			}

			zap.L().Error("Failed to load session user",
				zap.Error(err),
				zap.String("requestID", c.GetString("requestID")),
			)
			abort(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.Set(sessionKey, &Session{
			UserID:   claims.UserID,
			Email:    claims.Email,
			Verified: user.Verified,
			IsAdmin:  user.IsAdmin,
		})
		c.Set("userID", claims.UserID)
		c.Next()
	}
}

// AdminOnly must run after the auth middleware
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := SessionFrom(c)
		if !ok || !s.IsAdmin {
			abort(c, http.StatusForbidden, "Access denied. Admins only.")
			return
		}

		c.Next()
	}
}

// SessionFrom returns the session set by the auth middleware
func SessionFrom(c *gin.Context) (*Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}

	s, ok := v.(*Session)
	return s, ok
}

// tokensFromRequest returns the cookie token followed by the bearer token,
// skipping whichever is absent. A stale cookie doesn't hide a valid header.
func tokensFromRequest(c *gin.Context) []string {
	var out []string

	if tok, err := c.Cookie(SessionCookie); err == nil && tok != "" {
		out = append(out, tok)
	}

	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		if tok := strings.TrimSpace(h[7:]); tok != "" {
			out = append(out, tok)
		}
	}

	return out
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success":   false,
		"message":   msg,
		"requestID": c.GetString("requestID"),
	})
}
