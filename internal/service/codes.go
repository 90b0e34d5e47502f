package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"hirescape/job-api/internal/apperr"
	"hirescape/job-api/internal/model"
	"hirescape/job-api/pkg/validators"

	"go.uber.org/zap"
)

const codeRule = "required,len=6,numeric"

// SendVerificationCode mails a fresh code to the user. The HMAC of the
// code is only stored once the mailer accepted the message.
func (s *AuthService) SendVerificationCode(ctx context.Context, userID string) error {
	user, err := s.loadUser(ctx, "id = ?", userID)
	if err != nil {
		return err
	}

	if user.Verified {
		return ErrAlreadyVerified
	}

	sum, issuedAt, err := s.mailCode(ctx, user.Email, "Verification code", "verify your email")
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"verification_code":           sum,
			"verification_code_issued_at": issuedAt,
		}).
		Error
	if err != nil {
		return apperr.Internal(fmt.Errorf("failed to store verification code, %w", err))
	}

	return nil
}

// VerifyVerificationCode marks the user verified when code matches the
// pending one and is at most CodeTTL old. The code is consumed by the
// same statement that flips the flag.
func (s *AuthService) VerifyVerificationCode(ctx context.Context, userID, code string) error {
	if err := validators.Var(code, codeRule, "code"); err != nil {
		return apperr.Validation(err.Error())
	}

	user, err := s.loadUser(ctx, "id = ?", userID)
	if err != nil {
		return err
	}

	if user.Verified {
		return ErrAlreadyVerified
	}

	if user.VerificationCode == nil || user.VerificationCodeIssuedAt == nil {
		return ErrNoPendingCode
	}

	if s.now().Sub(*user.VerificationCodeIssuedAt) > CodeTTL {
		return ErrCodeExpired
	}

	if !s.codes.Equal(code, *user.VerificationCode) {
		return ErrCodeMismatch
	}

	r := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND verification_code = ?", user.ID, *user.VerificationCode).
		Updates(map[string]any{
			"verified":                    true,
			"verification_code":           nil,
			"verification_code_issued_at": nil,
		})
	if r.Error != nil {
		return apperr.Internal(fmt.Errorf("failed to mark user verified, %w", r.Error))
	}

	// Someone else consumed or replaced the code in between
	if r.RowsAffected == 0 {
		return ErrNoPendingCode
	}

	return nil
}

// SendForgotPasswordCode mails a reset code. Unknown emails are accepted
// silently so the endpoint can't be used to probe for accounts.
func (s *AuthService) SendForgotPasswordCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	if err := validators.Var(email, "required,email", "email"); err != nil {
		return apperr.Validation(err.Error())
	}

	user, err := s.loadUser(ctx, "email = ?", email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			zap.L().Debug("Forgot password code requested for unknown email")
			return nil
		}

		return err
	}

	sum, issuedAt, err := s.mailCode(ctx, user.Email, "Password reset code", "reset your password")
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"forgot_password_code":           sum,
			"forgot_password_code_issued_at": issuedAt,
		}).
		Error
	if err != nil {
		return apperr.Internal(fmt.Errorf("failed to store forgot password code, %w", err))
	}

	return nil
}

type ResetPasswordInput struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"providedCode" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=30,passwd"`
}

// VerifyForgotPasswordCode replaces the password when code matches the
// pending reset code and is at most CodeTTL old
func (s *AuthService) VerifyForgotPasswordCode(ctx context.Context, in ResetPasswordInput) error {
	in.Email = normalizeEmail(in.Email)

	if err := validators.Struct(&in); err != nil {
		return apperr.Validation(err.Error())
	}

	user, err := s.loadUser(ctx, "email = ?", in.Email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return ErrNoPendingCode
		}

		return err
	}

	if user.ForgotPasswordCode == nil || user.ForgotPasswordCodeIssuedAt == nil {
		return ErrNoPendingCode
	}

	if s.now().Sub(*user.ForgotPasswordCodeIssuedAt) > CodeTTL {
		return ErrCodeExpired
	}

	if !s.codes.Equal(in.Code, *user.ForgotPasswordCode) {
		return ErrCodeMismatch
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return apperr.Internal(fmt.Errorf("failed to hash password, %w", err))
	}

	r := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND forgot_password_code = ?", user.ID, *user.ForgotPasswordCode).
		Updates(map[string]any{
			"password_hash":                  hash,
			"forgot_password_code":           nil,
			"forgot_password_code_issued_at": nil,
		})
	if r.Error != nil {
		return apperr.Internal(fmt.Errorf("failed to reset password, %w", r.Error))
	}

	if r.RowsAffected == 0 {
		return ErrNoPendingCode
	}

	return nil
}

func (s *AuthService) mailCode(ctx context.Context, to, subject, purpose string) (string, time.Time, error) {
	code, err := s.codes.Generate()
	if err != nil {
		return "", time.Time{}, apperr.Internal(fmt.Errorf("failed to generate code, %w", err))
	}

	if err := s.mailer.Send(ctx, to, subject, codeMailBody(code, purpose)); err != nil {
		return "", time.Time{}, &apperr.Error{
			Kind:    apperr.KindInternal,
			Status:  http.StatusInternalServerError,
			Message: "Failed to send the code. Please try again later",
			Err:     err,
		}
	}

	return s.codes.Sum(code), s.now(), nil
}
