// Package job contains the handlers under /api/jobs
package job

import (
	"net/http"
	"strconv"

	"hirescape/job-api/app/reply"
	"hirescape/job-api/internal"
	"hirescape/job-api/internal/apperr"
	"hirescape/job-api/internal/service"

	"github.com/gin-gonic/gin"
)

func List(c *gin.Context, d *internal.Deps) {
	limit, err := intQuery(c, "limit")
	if err != nil {
		reply.Error(c, err)
		return
	}

	offset, err := intQuery(c, "offset")
	if err != nil {
		reply.Error(c, err)
		return
	}

	jobs, err := d.Jobs.List(c.Request.Context(), service.JobFilter{
		JobType:         c.Query("jobType"),
		ExperienceLevel: c.Query("experienceLevel"),
		Industry:        c.Query("industry"),
		Location:        c.Query("location"),
		Limit:           limit,
		Offset:          offset,
	})
	if err != nil {
		reply.Error(c, err)
		return
	}

	reply.OK(c, http.StatusOK, "Jobs fetched", gin.H{"jobs": jobs})
}

func Get(c *gin.Context, d *internal.Deps) {
	job, err := d.Jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		reply.Error(c, err)
		return
	}

	reply.OK(c, http.StatusOK, "Job fetched", gin.H{"job": job})
}

// Created lists the jobs posted by the caller
func Created(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	jobs, err := d.Jobs.CreatedBy(c.Request.Context(), userID)
	if err != nil {
		reply.Error(c, err)
		return
	}

	reply.OK(c, http.StatusOK, "Created jobs fetched", gin.H{"jobs": jobs})
}

// Applied lists the jobs the caller applied to
func Applied(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	jobs, err := d.Jobs.AppliedBy(c.Request.Context(), userID)
	if err != nil {
		reply.Error(c, err)
		return
	}

	reply.OK(c, http.StatusOK, "Applied jobs fetched", gin.H{"jobs": jobs})
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Validation(key + " must be a non-negative number")
	}

	return n, nil
}
