package job

import (
	"net/http"

	"hirescape/job-api/app/reply"
	"hirescape/job-api/internal"
	"hirescape/job-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Create(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data service.JobInput
	if err := c.ShouldBindJSON(&data); err != nil {
		reply.BadBody(c, err)
		return
	}

	job, err := d.Jobs.Create(c.Request.Context(), userID, data)
	if err != nil {
		reply.Error(c, err)
		return
	}

	zap.L().Info("Job created", zap.String("jobID", job.ID), zap.String("userID", userID))
	reply.Created(c, "Job created successfully", gin.H{"job": job})
}

func Update(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data service.JobPatch
	if err := c.ShouldBindJSON(&data); err != nil {
		reply.BadBody(c, err)
		return
	}

	job, err := d.Jobs.Update(c.Request.Context(), userID, c.Param("id"), data)
	if err != nil {
		reply.Error(c, err)
		return
	}

	d.Pages.Forget(job.ID)

	reply.OK(c, http.StatusOK, "Job updated successfully", gin.H{"job": job})
}

func Delete(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)
	jobID := c.Param("id")

	if err := d.Jobs.Delete(c.Request.Context(), userID, jobID); err != nil {
		reply.Error(c, err)
		return
	}

	d.Pages.Forget(jobID)

	zap.L().Info("Job deleted", zap.String("jobID", jobID), zap.String("userID", userID))
	reply.OK(c, http.StatusOK, "Job deleted successfully", nil)
}

func Apply(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)
	jobID := c.Param("id")

	if err := d.Jobs.Apply(c.Request.Context(), userID, jobID); err != nil {
		reply.Error(c, err)
		return
	}

	d.Pages.Forget(jobID)

	reply.OK(c, http.StatusOK, "Applied for job successfully", nil)
}

func Withdraw(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)
	jobID := c.Param("id")

	if err := d.Jobs.Withdraw(c.Request.Context(), userID, jobID); err != nil {
		reply.Error(c, err)
		return
	}

	d.Pages.Forget(jobID)

	reply.OK(c, http.StatusOK, "Application withdrawn successfully", nil)
}
