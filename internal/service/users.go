package service

import (
	"context"
	"errors"
	"fmt"

	"hirescape/job-api/internal/apperr"
	"hirescape/job-api/internal/model"

	"gorm.io/gorm"
)

// UserService backs the admin user endpoints
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users := []model.User{}

	err := s.db.WithContext(ctx).
		Select(model.PublicUserColumns).
		Preload("CreatedJobs").
		Order("created_at asc").
		Find(&users).
		Error
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to list users, %w", err))
	}

	return users, nil
}

func (s *UserService) Get(ctx context.Context, userID string) (*model.User, error) {
	var user model.User

	err := s.db.WithContext(ctx).
		Select(model.PublicUserColumns).
		Preload("CreatedJobs").
		Where("id = ?", userID).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, apperr.Internal(fmt.Errorf("failed to fetch user, %w", err))
	}

	return &user, nil
}

// Delete removes the user together with the jobs they created and every
// application made by them or to their jobs. It returns the IDs of the
// jobs that were removed or lost an applicant.
func (s *UserService) Delete(ctx context.Context, userID string) ([]string, error) {
	var touched []string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&model.User{}).Where("id = ?", userID).Count(&exists).Error; err != nil {
			return err
		}

		if exists == 0 {
			return ErrUserNotFound
		}

		ownJobs := tx.Model(&model.Job{}).Select("id").Where("created_by = ?", userID)

		err := tx.Model(&model.Job{}).
			Where("created_by = ?", userID).
			Or("id IN (?)", tx.Model(&model.JobApplication{}).Select("job_id").Where("user_id = ?", userID)).
			Pluck("id", &touched).
			Error
		if err != nil {
			return err
		}

		err = tx.
			Where("user_id = ? OR job_id IN (?)", userID, ownJobs).
			Delete(&model.JobApplication{}).
			Error
		if err != nil {
			return err
		}

		if err := tx.Where("created_by = ?", userID).Delete(&model.Job{}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", userID).Delete(&model.User{}).Error
	})
	if err != nil {
		return nil, asAppErr(err, "failed to delete user")
	}

	return touched, nil
}
