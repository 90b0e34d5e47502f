package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"hirescape/job-api/config"
	"hirescape/job-api/internal/apperr"
	"hirescape/job-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)

	u, err := f.auth.Register(context.Background(), RegisterInput{
		Email:    "  Alice@Example.com ",
		Password: testPassword,
	})
	require.NoError(t, err)

	assert.Len(t, u.ID, 16)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.False(t, u.Verified)
	assert.False(t, u.IsAdmin)
	assert.Empty(t, u.PasswordHash)

	stored := f.reload(t, u.ID)
	assert.NotEqual(t, testPassword, stored.PasswordHash)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$2a$"))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com")

	_, err := f.auth.Register(context.Background(), RegisterInput{Email: "ALICE@example.com", Password: testPassword})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	var count int64
	f.db.Model(&model.User{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestRegisterConcurrentSameEmail(t *testing.T) {
	f := newFixture(t)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, dupe int
	)

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := f.auth.Register(context.Background(), RegisterInput{Email: "race@example.com", Password: testPassword})

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if apperr.KindOf(err) == apperr.KindConflict {
				dupe++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 4, dupe)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	cases := map[string]struct {
		in  RegisterInput
		msg string
	}{
		"missing email":    {RegisterInput{Password: testPassword}, "Email is required"},
		"bad email":        {RegisterInput{Email: "nope", Password: testPassword}, "Email must be a valid email address"},
		"short password":   {RegisterInput{Email: "a@x.com", Password: "short"}, "Password must be at least 8 characters long"},
		"long password":    {RegisterInput{Email: "a@x.com", Password: strings.Repeat("a", 31)}, "Password must not exceed 30 characters"},
		"bad charset":      {RegisterInput{Email: "a@x.com", Password: "pass word 123"}, "Password contains invalid characters"},
		"confirm mismatch": {RegisterInput{Email: "a@x.com", Password: testPassword, ConfirmPassword: "Other123!"}, "ConfirmPassword must match password"},
		"short first name": {RegisterInput{Email: "a@x.com", Password: testPassword, FirstName: "A"}, "FirstName must be at least 2 characters long"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.auth.Register(context.Background(), tc.in)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, tc.msg, apperr.From(err).Message)
		})
	}
}

func TestRegisterRequireNames(t *testing.T) {
	f := newFixture(t)
	f.auth.requireNames = true

	_, err := f.auth.Register(context.Background(), RegisterInput{Email: "a@x.com", Password: testPassword, ConfirmPassword: testPassword})
	require.Error(t, err)
	assert.Equal(t, "FirstName is required", apperr.From(err).Message)

	_, err = f.auth.Register(context.Background(), RegisterInput{
		Email:           "a@x.com",
		Password:        testPassword,
		ConfirmPassword: testPassword,
		FirstName:       "Alice",
		LastName:        "Smith",
	})
	assert.NoError(t, err)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice@example.com")

	got, token, err := f.auth.Login(context.Background(), LoginInput{Email: "Alice@example.com", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Empty(t, got.PasswordHash)

	claims, err := f.tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.False(t, claims.Verified)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com")

	_, _, wrongPass := f.auth.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "Wrong123!"})
	_, _, unknown := f.auth.Login(context.Background(), LoginInput{Email: "bob@example.com", Password: testPassword})

	require.Error(t, wrongPass)
	require.Error(t, unknown)
	assert.Equal(t, apperr.From(wrongPass).Message, apperr.From(unknown).Message)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(unknown))
}

func TestLoginValidation(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.auth.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "12345"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestMeHidesSecrets(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice@example.com")
	require.NoError(t, f.auth.SendVerificationCode(context.Background(), u.ID))

	me, err := f.auth.Me(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", me.Email)
	assert.Empty(t, me.PasswordHash)
	assert.Nil(t, me.VerificationCode)

	_, err = f.auth.Me(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestVerificationFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice@example.com")

	err := f.auth.VerifyVerificationCode(ctx, u.ID, "123456")
	assert.ErrorIs(t, err, ErrNoPendingCode)

	require.NoError(t, f.auth.SendVerificationCode(ctx, u.ID))
	code := f.mailer.lastCode(t, "alice@example.com")

	stored := f.reload(t, u.ID)
	require.NotNil(t, stored.VerificationCode)
	assert.NotEqual(t, code, *stored.VerificationCode)
	assert.NotNil(t, stored.VerificationCodeIssuedAt)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	err = f.auth.VerifyVerificationCode(ctx, u.ID, wrong)
	assert.ErrorIs(t, err, ErrCodeMismatch)
	assert.Equal(t, 400, apperr.From(err).Status)
	assert.Equal(t, stored.VerificationCode, f.reload(t, u.ID).VerificationCode)

	require.NoError(t, f.auth.VerifyVerificationCode(ctx, u.ID, code))

	stored = f.reload(t, u.ID)
	assert.True(t, stored.Verified)
	assert.Nil(t, stored.VerificationCode)
	assert.Nil(t, stored.VerificationCodeIssuedAt)

	// Replaying the code can't do anything anymore
	err = f.auth.VerifyVerificationCode(ctx, u.ID, code)
	assert.ErrorIs(t, err, ErrAlreadyVerified)

	err = f.auth.SendVerificationCode(ctx, u.ID)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestVerificationCodeExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice@example.com")

	require.NoError(t, f.auth.SendVerificationCode(ctx, u.ID))
	code := f.mailer.lastCode(t, "alice@example.com")

	f.clock = f.clock.Add(CodeTTL + time.Second)

	err := f.auth.VerifyVerificationCode(ctx, u.ID, code)
	assert.ErrorIs(t, err, ErrCodeExpired)
	assert.False(t, f.reload(t, u.ID).Verified)
}

func TestVerificationCodeValidAtExactTTL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice@example.com")

	f.clock = f.clock.Truncate(time.Second)
	require.NoError(t, f.auth.SendVerificationCode(ctx, u.ID))
	code := f.mailer.lastCode(t, "alice@example.com")

	f.clock = f.clock.Add(CodeTTL)

	require.NoError(t, f.auth.VerifyVerificationCode(ctx, u.ID, code))
	assert.True(t, f.reload(t, u.ID).Verified)
}

func TestVerificationCodeReplacedByNewOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice@example.com")

	require.NoError(t, f.auth.SendVerificationCode(ctx, u.ID))
	first := f.mailer.lastCode(t, "alice@example.com")

	require.NoError(t, f.auth.SendVerificationCode(ctx, u.ID))
	second := f.mailer.lastCode(t, "alice@example.com")

	if first != second {
		assert.ErrorIs(t, f.auth.VerifyVerificationCode(ctx, u.ID, first), ErrCodeMismatch)
	}
	assert.NoError(t, f.auth.VerifyVerificationCode(ctx, u.ID, second))
}

func TestVerificationCodeValidation(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice@example.com")

	for _, code := range []string{"", "12345", "1234567", "12a456"} {
		err := f.auth.VerifyVerificationCode(context.Background(), u.ID, code)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), code)
	}
}

func TestSendCodeMailFailureStoresNothing(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice@example.com")
	f.mailer.fail = true

	err := f.auth.SendVerificationCode(context.Background(), u.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))

	stored := f.reload(t, u.ID)
	assert.Nil(t, stored.VerificationCode)
	assert.Nil(t, stored.VerificationCodeIssuedAt)
}

func TestForgotPasswordFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice@example.com")

	require.NoError(t, f.auth.SendForgotPasswordCode(ctx, "Alice@Example.com"))
	code := f.mailer.lastCode(t, "alice@example.com")

	err := f.auth.VerifyForgotPasswordCode(ctx, ResetPasswordInput{Email: "alice@example.com", Code: code, NewPassword: "N3wPassw0rd!"})
	require.NoError(t, err)

	_, _, err = f.auth.Login(ctx, LoginInput{Email: "alice@example.com", Password: testPassword})
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, _, err = f.auth.Login(ctx, LoginInput{Email: "alice@example.com", Password: "N3wPassw0rd!"})
	assert.NoError(t, err)

	err = f.auth.VerifyForgotPasswordCode(ctx, ResetPasswordInput{Email: "alice@example.com", Code: code, NewPassword: "An0therOne!"})
	assert.ErrorIs(t, err, ErrNoPendingCode)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.auth.SendForgotPasswordCode(context.Background(), "ghost@example.com"))
	assert.Empty(t, f.mailer.sent)

	err := f.auth.VerifyForgotPasswordCode(context.Background(), ResetPasswordInput{
		Email: "ghost@example.com", Code: "123456", NewPassword: "N3wPassw0rd!",
	})
	assert.ErrorIs(t, err, ErrNoPendingCode)
}

func TestForgotPasswordCodeExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice@example.com")

	require.NoError(t, f.auth.SendForgotPasswordCode(ctx, "alice@example.com"))
	code := f.mailer.lastCode(t, "alice@example.com")

	f.clock = f.clock.Add(6 * time.Minute)

	err := f.auth.VerifyForgotPasswordCode(ctx, ResetPasswordInput{Email: "alice@example.com", Code: code, NewPassword: "N3wPassw0rd!"})
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestForgotPasswordCodeValidAtExactTTL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice@example.com")

	f.clock = f.clock.Truncate(time.Second)
	require.NoError(t, f.auth.SendForgotPasswordCode(ctx, "alice@example.com"))
	code := f.mailer.lastCode(t, "alice@example.com")

	f.clock = f.clock.Add(CodeTTL)

	err := f.auth.VerifyForgotPasswordCode(ctx, ResetPasswordInput{Email: "alice@example.com", Code: code, NewPassword: "N3wPassw0rd!"})
	require.NoError(t, err)
}

func TestForgotPasswordWrongCodeKeepsPendingCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice@example.com")

	require.NoError(t, f.auth.SendForgotPasswordCode(ctx, "alice@example.com"))
	code := f.mailer.lastCode(t, "alice@example.com")
	before := f.reload(t, u.ID)
	require.NotNil(t, before.ForgotPasswordCode)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	err := f.auth.VerifyForgotPasswordCode(ctx, ResetPasswordInput{Email: "alice@example.com", Code: wrong, NewPassword: "N3wPassw0rd!"})
	assert.ErrorIs(t, err, ErrCodeMismatch)

	after := f.reload(t, u.ID)
	require.NotNil(t, after.ForgotPasswordCode)
	assert.Equal(t, *before.ForgotPasswordCode, *after.ForgotPasswordCode)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)

	// The right code still works afterwards
	err = f.auth.VerifyForgotPasswordCode(ctx, ResetPasswordInput{Email: "alice@example.com", Code: code, NewPassword: "N3wPassw0rd!"})
	require.NoError(t, err)
	assert.Nil(t, f.reload(t, u.ID).ForgotPasswordCode)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	unverified := f.register(t, "bob@example.com")
	err := f.auth.ChangePassword(ctx, unverified.ID, ChangePasswordInput{OldPassword: testPassword, NewPassword: "N3wPassw0rd!"})
	assert.ErrorIs(t, err, ErrNotVerified)

	u := f.verified(t, "alice@example.com")

	err = f.auth.ChangePassword(ctx, u.ID, ChangePasswordInput{OldPassword: "Wrong123!", NewPassword: "N3wPassw0rd!"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = f.auth.ChangePassword(ctx, u.ID, ChangePasswordInput{OldPassword: testPassword, NewPassword: "bad pass"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, f.auth.ChangePassword(ctx, u.ID, ChangePasswordInput{OldPassword: testPassword, NewPassword: "N3wPassw0rd!"}))

	_, _, err = f.auth.Login(ctx, LoginInput{Email: "alice@example.com", Password: "N3wPassw0rd!"})
	assert.NoError(t, err)
}

func TestArgonHashedUsersCanLogIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	argon := NewAuthService(f.db, newArgonHasher(), f.auth.codes, f.tokens, f.mailer, config.Auth{})
	_, err := argon.Register(ctx, RegisterInput{Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)

	// The bcrypt configured service still accepts the argon2id hash
	_, _, err = f.auth.Login(ctx, LoginInput{Email: "alice@example.com", Password: testPassword})
	assert.NoError(t, err)
}
