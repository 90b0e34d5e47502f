// Package auth contains the handlers under /api/auth
package auth

import (
	"hirescape/job-api/app/reply"
	"hirescape/job-api/internal"
	"hirescape/job-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Register(c *gin.Context, d *internal.Deps) {
	var data service.RegisterInput
	if err := c.ShouldBindJSON(&data); err != nil {
		reply.BadBody(c, err)
		return
	}

	user, err := d.Auth.Register(c.Request.Context(), data)
	if err != nil {
		reply.Error(c, err)
		return
	}

	zap.L().Info("User registered", zap.String("userID", user.ID))
	reply.Created(c, "User registered successfully", gin.H{"user": user})
}
