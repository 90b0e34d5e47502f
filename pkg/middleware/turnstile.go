package middleware

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"hirescape/job-api/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const TurnstileHeader = "TurnstileToken"

type turnstileResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// NewTurnstileMiddleware checks the Cloudflare Turnstile token sent in the
// TurnstileToken header. It does nothing when turnstile is disabled.
func NewTurnstileMiddleware(c config.Turnstile) gin.HandlerFunc {
	if !c.Enabled {
		return func(ctx *gin.Context) { ctx.Next() }
	}

	client := &http.Client{Timeout: 10 * time.Second}

	return func(ctx *gin.Context) {
		token := ctx.GetHeader(TurnstileHeader)
		if token == "" {
			abort(ctx, http.StatusBadRequest, "Missing or invalid turnstile token")
			return
		}

		form := url.Values{
			"secret":   {c.SecretToken},
			"response": {token},
			"remoteip": {ctx.ClientIP()},
		}

		resp, err := client.PostForm(c.VerifyURL, form)
		if err != nil {
			zap.L().Error("Failed to reach turnstile", zap.Error(err))
			abort(ctx, http.StatusUnauthorized, "Unauthorized")
			return
		}
		defer resp.Body.Close()

		var res turnstileResponse
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			zap.L().Error("Failed to decode turnstile response", zap.Error(err))
			abort(ctx, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if !res.Success {
			zap.L().Debug("Turnstile rejected token", zap.Strings("errorCodes", res.ErrorCodes))
			abort(ctx, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx.Next()
	}
}
