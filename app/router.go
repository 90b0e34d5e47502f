// Package app wires the HTTP layer together
package app

import (
	"net/http"
	"time"

	"hirescape/job-api/app/auth"
	"hirescape/job-api/app/job"
	"hirescape/job-api/app/root"
	"hirescape/job-api/internal"
	"hirescape/job-api/pkg/middleware"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const maxBodySize = 1 << 20

// NewRouter builds the engine with every route
func NewRouter(d *internal.Deps) *gin.Engine {
	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     d.Cfg.Host.CorsOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.TurnstileHeader},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: time.RFC3339,
			UTC:        true,
			SkipPaths:  []string{"/api/heartbeat"},
			Context: func(c *gin.Context) []zapcore.Field {
				return []zapcore.Field{
					zap.String("requestID", c.GetString("requestID")),
					zap.String("userID", c.GetString("userID")),
				}
			},
		}),
		ginzap.RecoveryWithZap(zap.L(), true),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success":   false,
			"message":   "Route not found",
			"requestID": c.GetString("requestID"),
		})
	})

	session := middleware.NewAuthMiddleware(d.DB, d.Tokens)
	turnstile := middleware.NewTurnstileMiddleware(d.Cfg.Turnstile)
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: d.Cfg.Security.RateLimit,
		Burst:             d.Cfg.Security.RateLimit * 2,
	})

	// GET / -> Welcome message
	router.GET("/", root.Welcome)

	m := router.Group("/api", rateLimiter.Handler(), middleware.BodySizeLimiter(maxBodySize))
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)
	}

	a := m.Group("/auth")
	{
		// POST /api/auth/register			-> Registers a new user
		a.POST("/register", turnstile, func(c *gin.Context) { auth.Register(c, d) })

		// POST /api/auth/login				-> Logs in a user and sets the session cookie
		a.POST("/login", func(c *gin.Context) { auth.Login(c, d) })

		// POST /api/auth/logout			-> Clears the session cookie
		a.POST("/logout", func(c *gin.Context) { auth.Logout(c, d) })

		// PATCH /api/auth/send-verification-code	-> Mails a verification code
		a.PATCH("/send-verification-code", session, func(c *gin.Context) { auth.SendVerificationCode(c, d) })

		// PATCH /api/auth/verify-verification-code	-> Verifies the account with the mailed code
		a.PATCH("/verify-verification-code", session, func(c *gin.Context) { auth.VerifyVerificationCode(c, d) })

		// PATCH /api/auth/change-password		-> Changes the password of a verified user
		a.PATCH("/change-password", session, func(c *gin.Context) { auth.ChangePassword(c, d) })

		// PATCH /api/auth/forgot-password		-> Mails a password reset code
		a.PATCH("/forgot-password", turnstile, func(c *gin.Context) { auth.SendForgotPasswordCode(c, d) })

		// PATCH /api/auth/verify-forgot-password	-> Resets the password with the mailed code
		a.PATCH("/verify-forgot-password", func(c *gin.Context) { auth.VerifyForgotPasswordCode(c, d) })

		// GET /api/auth/me				-> Returns the current user
		a.GET("/me", session, func(c *gin.Context) { auth.Me(c, d) })

		// GET /api/auth/users				-> Lists every user
		a.GET("/users", session, func(c *gin.Context) { auth.ListUsers(c, d) })

		// GET /api/auth/users/:id			-> Returns a single user
		a.GET("/users/:id", session, func(c *gin.Context) { auth.GetUser(c, d) })

		// DELETE /api/auth/users/:id			-> Deletes a user and everything they own
		a.DELETE("/users/:id", session, middleware.AdminOnly(), func(c *gin.Context) { auth.DeleteUser(c, d) })
	}

	j := m.Group("/jobs")
	{
		// GET /api/jobs				-> Lists jobs, filtered by query
		j.GET("", func(c *gin.Context) { job.List(c, d) })

		// GET /api/jobs/user/created			-> Lists the jobs the caller posted
		j.GET("/user/created", session, func(c *gin.Context) { job.Created(c, d) })

		// GET /api/jobs/user/applied			-> Lists the jobs the caller applied to
		j.GET("/user/applied", session, func(c *gin.Context) { job.Applied(c, d) })

		// GET /api/jobs/:id				-> Returns a single job
		j.GET("/:id", d.Pages.Handler(), func(c *gin.Context) { job.Get(c, d) })

		// POST /api/jobs				-> Creates a job owned by the caller
		j.POST("", session, func(c *gin.Context) { job.Create(c, d) })

		// PUT /api/jobs/:id				-> Updates a job owned by the caller
		j.PUT("/:id", session, func(c *gin.Context) { job.Update(c, d) })

		// DELETE /api/jobs/:id				-> Deletes a job owned by the caller
		j.DELETE("/:id", session, func(c *gin.Context) { job.Delete(c, d) })

		// DELETE /api/jobs/:id/created			-> Same as DELETE /api/jobs/:id
		j.DELETE("/:id/created", session, func(c *gin.Context) { job.Delete(c, d) })

		// POST /api/jobs/:id/apply			-> Applies the caller for a job
		j.POST("/:id/apply", session, func(c *gin.Context) { job.Apply(c, d) })

		// DELETE /api/jobs/:id/applied			-> Withdraws the caller's application
		j.DELETE("/:id/applied", session, func(c *gin.Context) { job.Withdraw(c, d) })
	}

	return router
}
