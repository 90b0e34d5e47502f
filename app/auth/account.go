package auth

import (
	"net/http"

	"hirescape/job-api/app/reply"
	"hirescape/job-api/internal"
	"hirescape/job-api/internal/service"

	"github.com/gin-gonic/gin"
)

func ChangePassword(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data service.ChangePasswordInput
	if err := c.ShouldBindJSON(&data); err != nil {
		reply.BadBody(c, err)
		return
	}

	if err := d.Auth.ChangePassword(c.Request.Context(), userID, data); err != nil {
		reply.Error(c, err)
		return
	}

	reply.OK(c, http.StatusOK, "Password updated successfully", nil)
}

func Me(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	user, err := d.Auth.Me(c.Request.Context(), userID)
	if err != nil {
		reply.Error(c, err)
		return
	}

	reply.OK(c, http.StatusOK, "User fetched", gin.H{"user": user})
}
