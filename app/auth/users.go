package auth

import (
	"net/http"

	"hirescape/job-api/app/reply"
	"hirescape/job-api/internal"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func ListUsers(c *gin.Context, d *internal.Deps) {
	users, err := d.Users.List(c.Request.Context())
	if err != nil {
		reply.Error(c, err)
		return
	}

	reply.OK(c, http.StatusOK, "Users fetched", gin.H{"users": users})
}

func GetUser(c *gin.Context, d *internal.Deps) {
	user, err := d.Users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		reply.Error(c, err)
		return
	}

	reply.OK(c, http.StatusOK, "User fetched", gin.H{"user": user})
}

func DeleteUser(c *gin.Context, d *internal.Deps) {
	id := c.Param("id")

	jobIDs, err := d.Users.Delete(c.Request.Context(), id)
	if err != nil {
		reply.Error(c, err)
		return
	}

	d.Pages.Forget(jobIDs...)

	zap.L().Info("User deleted",
		zap.String("userID", id),
		zap.String("by", c.MustGet("userID").(string)),
	)
	reply.OK(c, http.StatusOK, "User deleted successfully", nil)
}
