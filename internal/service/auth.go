// Package service holds the authentication and job flows. Every exported
// method returns an *apperr.Error (or nil) so handlers only need to map
// the kind onto a response.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"hirescape/job-api/config"
	"hirescape/job-api/internal/apperr"
	"hirescape/job-api/internal/model"
	"hirescape/job-api/pkg/security"
	"hirescape/job-api/pkg/validators"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CodeTTL is how long an emailed one-time code stays valid
const CodeTTL = 5 * time.Minute

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var (
	ErrEmailTaken      = apperr.Conflict("User already exists")
	ErrBadCredentials  = apperr.Unauthorized("Invalid email or password")
	ErrAlreadyVerified = apperr.Conflict("You are already verified")
	ErrNoPendingCode   = apperr.InvalidState("No pending code. Please request a new one")
	ErrCodeExpired     = apperr.Expired("Code has expired")
	ErrCodeMismatch    = apperr.Unauthorized("Invalid code").WithStatus(http.StatusBadRequest)
	ErrNotVerified     = apperr.Unauthorized("You must verify your account first")
	ErrWrongPassword   = apperr.Unauthorized("Old password is incorrect")
	ErrUserNotFound    = apperr.NotFound("User not found")
)

type AuthService struct {
	db           *gorm.DB
	hasher       *security.PasswordHasher
	codes        *security.CodeHasher
	tokens       *security.TokenService
	mailer       Mailer
	requireNames bool
	now          func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(db *gorm.DB, hasher *security.PasswordHasher, codes *security.CodeHasher,
	tokens *security.TokenService, mailer Mailer, c config.Auth) *AuthService {
	return &AuthService{
		db:           db,
		hasher:       hasher,
		codes:        codes,
		tokens:       tokens,
		mailer:       mailer,
		requireNames: c.RequireNames,
		now:          time.Now,
	}
}

type RegisterInput struct {
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=8,max=30,passwd"`
	ConfirmPassword string `json:"confirmPassword" validate:"omitempty,eqfield=Password"`
	FirstName       string `json:"firstName" validate:"omitempty,min=2,max=50"`
	LastName        string `json:"lastName" validate:"omitempty,min=2,max=50"`
}

func (s *AuthService) validateRegister(in *RegisterInput) error {
	if err := validators.Struct(in); err != nil {
		return err
	}

	if !s.requireNames {
		return nil
	}

	if err := validators.Var(in.ConfirmPassword, "required", "confirmPassword"); err != nil {
		return err
	}

	if err := validators.Var(in.FirstName, "required", "firstName"); err != nil {
		return err
	}

	return validators.Var(in.LastName, "required", "lastName")
}

// Register creates an unverified user. The returned user never carries
// the password hash.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if err := s.validateRegister(&in); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	db := s.db.WithContext(ctx)

	var found int64
	err := db.
		Model(&model.User{}).
		Where("email = ?", in.Email).
		Count(&found).
		Error
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to check if user is registered, %w", err))
	}

	if found > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to hash password, %w", err))
	}

	userID, err := newID()
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to generate user ID, %w", err))
	}

	user := &model.User{
		ID:           userID,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
	}

	if err := db.Create(user).Error; err != nil {
		// Lost a race with a concurrent registration of the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}

		return nil, apperr.Internal(fmt.Errorf("failed to create user, %w", err))
	}

	user.PasswordHash = ""
	return user, nil
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Login checks the credentials and issues a session token. Unknown emails
// and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*model.User, string, error) {
	in.Email = normalizeEmail(in.Email)

	if err := validators.Struct(&in); err != nil {
		return nil, "", apperr.Validation(err.Error())
	}

	var user model.User
	err := s.db.WithContext(ctx).
		Where("email = ?", in.Email).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Spend the same time as a real comparison
			s.hasher.Verify(in.Password, s.dummy())
			return nil, "", ErrBadCredentials
		}

		return nil, "", apperr.Internal(fmt.Errorf("failed to load user, %w", err))
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return nil, "", apperr.Internal(fmt.Errorf("failed to verify password, %w", err))
	}

	if !ok {
		return nil, "", ErrBadCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Verified, user.IsAdmin)
	if err != nil {
		return nil, "", apperr.Internal(fmt.Errorf("failed to generate JWT auth token, %w", err))
	}

	user.PasswordHash = ""
	return &user, token, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("not-a-real-password")
		if err != nil {
			zap.L().Error("Failed to create dummy hash", zap.Error(err))
		}
		s.dummyHash = h
	})

	return s.dummyHash
}

// Me returns the public profile of the user
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Select(model.PublicUserColumns).
		Where("id = ?", userID).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, apperr.Internal(fmt.Errorf("failed to load user, %w", err))
	}

	return &user, nil
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=30,passwd"`
}

func (s *AuthService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if err := validators.Struct(&in); err != nil {
		return apperr.Validation(err.Error())
	}

	user, err := s.loadUser(ctx, "id = ?", userID)
	if err != nil {
		return err
	}

	if !user.Verified {
		return ErrNotVerified
	}

	ok, err := s.hasher.Verify(in.OldPassword, user.PasswordHash)
	if err != nil {
		return apperr.Internal(fmt.Errorf("failed to verify password, %w", err))
	}

	if !ok {
		return ErrWrongPassword
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return apperr.Internal(fmt.Errorf("failed to hash password, %w", err))
	}

	err = s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"password_hash":                  hash,
			"forgot_password_code":           nil,
			"forgot_password_code_issued_at": nil,
		}).
		Error
	if err != nil {
		return apperr.Internal(fmt.Errorf("failed to update password, %w", err))
	}

	return nil
}

func (s *AuthService) loadUser(ctx context.Context, query string, arg any) (*model.User, error) {
	var user model.User

	err := s.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, apperr.Internal(fmt.Errorf("failed to load user, %w", err))
	}

	return &user, nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func newID() (string, error) {
	return gonanoid.Generate(charset, 16)
}
