package auth

import (
	"net/http"

	"hirescape/job-api/app/reply"
	"hirescape/job-api/internal"
	"hirescape/job-api/internal/service"
	"hirescape/job-api/pkg/middleware"
	"hirescape/job-api/pkg/security"

	"github.com/gin-gonic/gin"
)

func Login(c *gin.Context, d *internal.Deps) {
	var data service.LoginInput
	if err := c.ShouldBindJSON(&data); err != nil {
		reply.BadBody(c, err)
		return
	}

	user, token, err := d.Auth.Login(c.Request.Context(), data)
	if err != nil {
		reply.Error(c, err)
		return
	}

	setSessionCookie(c, token, int(security.SessionTTL.Seconds()), d.Cfg.Host.SSL.Enabled)
	reply.OK(c, http.StatusOK, "Logged in successfully", gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout only clears the cookie, issued tokens stay valid until they expire
func Logout(c *gin.Context, d *internal.Deps) {
	setSessionCookie(c, "", -1, d.Cfg.Host.SSL.Enabled)
	reply.OK(c, http.StatusOK, "Logged out successfully", nil)
}

func setSessionCookie(c *gin.Context, token string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", secure, true)
}
