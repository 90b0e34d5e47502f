package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"hirescape/job-api/config"
	"hirescape/job-api/db"
	"hirescape/job-api/internal/model"
	"hirescape/job-api/pkg/security"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "Passw0rd!"

var codePattern = regexp.MustCompile(`<h1>(\d{6})</h1>`)

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail {
		return errors.New("smtp: 550 mailbox unavailable")
	}

	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

// lastCode returns the code in the latest mail sent to to
func (m *fakeMailer) lastCode(t *testing.T, to string) string {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].to == to {
			match := codePattern.FindStringSubmatch(m.sent[i].body)
			require.Len(t, match, 2)
			return match[1]
		}
	}

	t.Fatalf("no mail sent to %s", to)
	return ""
}

type fixture struct {
	db     *gorm.DB
	auth   *AuthService
	jobs   *JobService
	users  *UserService
	mailer *fakeMailer
	tokens *security.TokenService
	clock  time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	d, err := db.New(config.Database{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := d.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &fixture{
		db:     d,
		mailer: &fakeMailer{},
		tokens: security.NewTokenService("test-jwt-secret"),
		clock:  time.Now(),
	}

	f.auth = NewAuthService(
		d,
		security.NewPasswordHasher("bcrypt", bcrypt.MinCost),
		security.NewCodeHasher("test-hmac-secret"),
		f.tokens,
		f.mailer,
		config.Auth{},
	)
	f.auth.now = func() time.Time { return f.clock }

	f.jobs = NewJobService(d)
	f.users = NewUserService(d)

	return f
}

func (f *fixture) register(t *testing.T, email string) *model.User {
	t.Helper()

	u, err := f.auth.Register(context.Background(), RegisterInput{Email: email, Password: testPassword})
	require.NoError(t, err)
	return u
}

// verified registers a user and walks them through email verification
func (f *fixture) verified(t *testing.T, email string) *model.User {
	t.Helper()

	ctx := context.Background()
	u := f.register(t, email)

	require.NoError(t, f.auth.SendVerificationCode(ctx, u.ID))
	require.NoError(t, f.auth.VerifyVerificationCode(ctx, u.ID, f.mailer.lastCode(t, email)))

	return u
}

func (f *fixture) reload(t *testing.T, id string) model.User {
	t.Helper()

	var u model.User
	require.NoError(t, f.db.Where("id = ?", id).First(&u).Error)
	return u
}

func jobInput(title string) JobInput {
	deadline := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second)

	return JobInput{
		Title:               title,
		Company:             "Acme Corp",
		Salary:              "$100k",
		Location:            "Berlin, Germany",
		Description:         "Build things",
		JobType:             model.JobTypeFullTime,
		ExperienceLevel:     model.ExperienceMid,
		Industry:            "Software",
		ApplicationDeadline: &deadline,
		RequiredSkills:      []string{"go", "sql"},
	}
}

func newArgonHasher() *security.PasswordHasher {
	return security.NewPasswordHasher("argon2id", 0)
}
