package auth

import (
	"net/http"

	"hirescape/job-api/app/reply"
	"hirescape/job-api/internal"
	"hirescape/job-api/internal/service"

	"github.com/gin-gonic/gin"
)

// codeBody accepts the code under either name
type codeBody struct {
	ProvidedCode string `json:"providedCode"`
	Code         string `json:"code"`
}

func (b codeBody) value() string {
	if b.ProvidedCode != "" {
		return b.ProvidedCode
	}

	return b.Code
}

func SendVerificationCode(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	if err := d.Auth.SendVerificationCode(c.Request.Context(), userID); err != nil {
		reply.Error(c, err)
		return
	}

	reply.OK(c, http.StatusOK, "Verification code sent", nil)
}

func VerifyVerificationCode(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data codeBody
	if err := c.ShouldBindJSON(&data); err != nil {
		reply.BadBody(c, err)
		return
	}

	if err := d.Auth.VerifyVerificationCode(c.Request.Context(), userID, data.value()); err != nil {
		reply.Error(c, err)
		return
	}

	reply.OK(c, http.StatusOK, "Your account has been verified", nil)
}

type forgotPasswordBody struct {
	Email string `json:"email"`
}

func SendForgotPasswordCode(c *gin.Context, d *internal.Deps) {
	var data forgotPasswordBody
	if err := c.ShouldBindJSON(&data); err != nil {
		reply.BadBody(c, err)
		return
	}

	if err := d.Auth.SendForgotPasswordCode(c.Request.Context(), data.Email); err != nil {
		reply.Error(c, err)
		return
	}

	reply.OK(c, http.StatusOK, "If the account exists, a password reset code has been sent", nil)
}

type resetPasswordBody struct {
	codeBody
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

func VerifyForgotPasswordCode(c *gin.Context, d *internal.Deps) {
	var data resetPasswordBody
	if err := c.ShouldBindJSON(&data); err != nil {
		reply.BadBody(c, err)
		return
	}

	err := d.Auth.VerifyForgotPasswordCode(c.Request.Context(), service.ResetPasswordInput{
		Email:       data.Email,
		Code:        data.value(),
		NewPassword: data.NewPassword,
	})
	if err != nil {
		reply.Error(c, err)
		return
	}

	reply.OK(c, http.StatusOK, "Password has been reset", nil)
}
