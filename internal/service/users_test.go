package service

import (
	"context"
	"testing"
	"time"

	"hirescape/job-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAndGetUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.verified(t, "owner@example.com")
	f.register(t, "seeker@example.com")

	_, err := f.jobs.Create(ctx, owner.ID, jobInput("Backend"))
	require.NoError(t, err)

	users, err := f.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	for _, u := range users {
		assert.Empty(t, u.PasswordHash)
		assert.Nil(t, u.VerificationCode)
	}

	got, err := f.users.Get(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", got.Email)
	assert.Len(t, got.CreatedJobs, 1)

	_, err = f.users.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUserCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.verified(t, "owner@example.com")
	seeker := f.verified(t, "seeker@example.com")
	bystander := f.verified(t, "bystander@example.com")

	ownJob, err := f.jobs.Create(ctx, owner.ID, jobInput("Backend"))
	require.NoError(t, err)
	otherJob, err := f.jobs.Create(ctx, bystander.ID, jobInput("Frontend"))
	require.NoError(t, err)

	require.NoError(t, f.jobs.Apply(ctx, seeker.ID, ownJob.ID))
	require.NoError(t, f.jobs.Apply(ctx, owner.ID, otherJob.ID))
	require.NoError(t, f.jobs.Apply(ctx, seeker.ID, otherJob.ID))

	touched, err := f.users.Delete(ctx, owner.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{ownJob.ID, otherJob.ID}, touched)

	_, err = f.users.Get(ctx, owner.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.jobs.Get(ctx, ownJob.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)

	// The seeker no longer lists the deleted job
	applied, err := f.jobs.AppliedBy(ctx, seeker.ID)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, otherJob.ID, applied[0].ID)

	// And the owner is gone from the other job's applicants
	got, err := f.jobs.Get(ctx, otherJob.ID)
	require.NoError(t, err)
	require.Len(t, got.Applications, 1)
	assert.Equal(t, seeker.ID, got.Applications[0].UserID)

	_, err = f.users.Delete(ctx, owner.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestClearExpiredCodes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stale := f.register(t, "stale@example.com")
	fresh := f.register(t, "fresh@example.com")

	require.NoError(t, f.auth.SendVerificationCode(ctx, stale.ID))
	require.NoError(t, f.auth.SendForgotPasswordCode(ctx, "stale@example.com"))

	f.clock = f.clock.Add(10 * time.Minute)
	require.NoError(t, f.auth.SendVerificationCode(ctx, fresh.ID))

	n, err := ClearExpiredCodes(f.db, f.clock, CodeTTL)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	var s, fr model.User
	require.NoError(t, f.db.Where("id = ?", stale.ID).First(&s).Error)
	require.NoError(t, f.db.Where("id = ?", fresh.ID).First(&fr).Error)

	assert.Nil(t, s.VerificationCode)
	assert.Nil(t, s.VerificationCodeIssuedAt)
	assert.Nil(t, s.ForgotPasswordCode)
	assert.Nil(t, s.ForgotPasswordCodeIssuedAt)
	assert.NotNil(t, fr.VerificationCode)
	assert.NotNil(t, fr.VerificationCodeIssuedAt)
}
