package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hirescape/job-api/internal/apperr"
	"hirescape/job-api/internal/model"
	"hirescape/job-api/pkg/validators"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

var (
	ErrJobNotFound    = apperr.NotFound("Job not found")
	ErrNotJobOwner    = apperr.Forbidden("You can only modify jobs you created")
	ErrAlreadyApplied = apperr.Conflict("You have already applied for this job")
	ErrEmptyJobUpdate = apperr.Validation("No fields to update")
)

type JobService struct {
	db *gorm.DB
}

func NewJobService(db *gorm.DB) *JobService {
	return &JobService{db: db}
}

type JobInput struct {
	Title               string     `json:"title" validate:"required,max=200"`
	Company             string     `json:"company" validate:"required,max=200"`
	Salary              string     `json:"salary" validate:"required,max=100"`
	Location            string     `json:"location" validate:"required,max=200"`
	Description         string     `json:"description" validate:"required,max=10000"`
	JobType             string     `json:"jobType" validate:"required,oneof=full-time part-time contract internship"`
	ExperienceLevel     string     `json:"experienceLevel" validate:"required,oneof=junior mid senior"`
	Industry            string     `json:"industry" validate:"required,max=100"`
	ApplicationDeadline *time.Time `json:"applicationDeadline" validate:"required"`
	RequiredSkills      []string   `json:"requiredSkills" validate:"max=50,dive,required,max=64,excludesall=0x2C"`
}

func (in *JobInput) trim() {
	in.Title = strings.TrimSpace(in.Title)
	in.Company = strings.TrimSpace(in.Company)
	in.Salary = strings.TrimSpace(in.Salary)
	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
	in.Industry = strings.TrimSpace(in.Industry)
	in.RequiredSkills = trimAll(in.RequiredSkills)
}

// JobPatch is a partial update, nil fields are left untouched. The owner
// and the applicants can't be changed through it.
type JobPatch struct {
	Title               *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Company             *string    `json:"company" validate:"omitempty,min=1,max=200"`
	Salary              *string    `json:"salary" validate:"omitempty,min=1,max=100"`
	Location            *string    `json:"location" validate:"omitempty,min=1,max=200"`
	Description         *string    `json:"description" validate:"omitempty,min=1,max=10000"`
	JobType             *string    `json:"jobType" validate:"omitempty,oneof=full-time part-time contract internship"`
	ExperienceLevel     *string    `json:"experienceLevel" validate:"omitempty,oneof=junior mid senior"`
	Industry            *string    `json:"industry" validate:"omitempty,min=1,max=100"`
	ApplicationDeadline *time.Time `json:"applicationDeadline"`
	RequiredSkills      *[]string  `json:"requiredSkills" validate:"omitempty,max=50,dive,required,max=64,excludesall=0x2C"`
}

func (p *JobPatch) trim() {
	for _, f := range []*string{p.Title, p.Company, p.Salary, p.Location, p.Description, p.Industry} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}

	if p.RequiredSkills != nil {
		skills := trimAll(*p.RequiredSkills)
		p.RequiredSkills = &skills
	}
}

func (p *JobPatch) updates() map[string]any {
	u := map[string]any{}

	set := func(col string, v *string) {
		if v != nil {
			u[col] = *v
		}
	}

	set("title", p.Title)
	set("company", p.Company)
	set("salary", p.Salary)
	set("location", p.Location)
	set("description", p.Description)
	set("job_type", p.JobType)
	set("experience_level", p.ExperienceLevel)
	set("industry", p.Industry)

	if p.ApplicationDeadline != nil {
		u["application_deadline"] = *p.ApplicationDeadline
	}

	if p.RequiredSkills != nil {
		u["required_skills"] = model.StringSlice(*p.RequiredSkills)
	}

	return u
}

type JobFilter struct {
	JobType         string
	ExperienceLevel string
	Industry        string
	Location        string
	Limit           int
	Offset          int
}

func (s *JobService) List(ctx context.Context, f JobFilter) ([]model.Job, error) {
	q := s.withRelations(s.db.WithContext(ctx))

	if f.JobType != "" {
		q = q.Where("job_type = ?", f.JobType)
	}
	if f.ExperienceLevel != "" {
		q = q.Where("experience_level = ?", f.ExperienceLevel)
	}
	if f.Industry != "" {
		q = q.Where("LOWER(industry) = ?", strings.ToLower(f.Industry))
	}
	if f.Location != "" {
		q = q.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(f.Location)+"%")
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)

	jobs := []model.Job{}
	err := q.
		Order("created_at desc").
		Limit(limit).
		Offset(max(f.Offset, 0)).
		Find(&jobs).
		Error
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to list jobs, %w", err))
	}

	return jobs, nil
}

func (s *JobService) Get(ctx context.Context, jobID string) (*model.Job, error) {
	var job model.Job

	err := s.withRelations(s.db.WithContext(ctx)).
		Where("id = ?", jobID).
		First(&job).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}

		return nil, apperr.Internal(fmt.Errorf("failed to fetch job, %w", err))
	}

	return &job, nil
}

func (s *JobService) Create(ctx context.Context, userID string, in JobInput) (*model.Job, error) {
	in.trim()

	if err := validators.Struct(&in); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	jobID, err := newID()
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to generate job ID, %w", err))
	}

	job := &model.Job{
		ID:                  jobID,
		Slug:                slug.Make(in.Title + " " + in.Company),
		Title:               in.Title,
		Company:             in.Company,
		Salary:              in.Salary,
		Location:            in.Location,
		Description:         in.Description,
		JobType:             in.JobType,
		ExperienceLevel:     in.ExperienceLevel,
		Industry:            in.Industry,
		ApplicationDeadline: *in.ApplicationDeadline,
		RequiredSkills:      in.RequiredSkills,
		CreatedBy:           userID,
		Applications:        []model.JobApplication{},
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(job).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to create job, %w", err))
	}

	return job, nil
}

// Update applies p to the job. Existence is checked before ownership, and
// ownership before any write.
func (s *JobService) Update(ctx context.Context, userID, jobID string, p JobPatch) (*model.Job, error) {
	p.trim()

	if err := validators.Struct(&p); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	updates := p.updates()
	if len(updates) == 0 {
		return nil, ErrEmptyJobUpdate
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := ownedJob(tx, userID, jobID)
		if err != nil {
			return err
		}

		title, company := job.Title, job.Company
		if v, ok := updates["title"]; ok {
			title = v.(string)
		}
		if v, ok := updates["company"]; ok {
			company = v.(string)
		}
		updates["slug"] = slug.Make(title + " " + company)

		return tx.
			Model(&model.Job{}).
			Where("id = ? AND created_by = ?", jobID, userID).
			Updates(updates).
			Error
	})
	if err != nil {
		return nil, asAppErr(err, "failed to update job")
	}

	return s.Get(ctx, jobID)
}

// Delete removes the job and every application to it
func (s *JobService) Delete(ctx context.Context, userID, jobID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedJob(tx, userID, jobID); err != nil {
			return err
		}

		if err := tx.Where("job_id = ?", jobID).Delete(&model.JobApplication{}).Error; err != nil {
			return err
		}

		return tx.Where("id = ? AND created_by = ?", jobID, userID).Delete(&model.Job{}).Error
	})
	if err != nil {
		return asAppErr(err, "failed to delete job")
	}

	return nil
}

// Apply adds the user to the job's applicants. The insert itself is the
// duplicate check, so two concurrent applications can't both succeed.
func (s *JobService) Apply(ctx context.Context, userID, jobID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&model.Job{}).Where("id = ?", jobID).Count(&exists).Error; err != nil {
			return err
		}

		if exists == 0 {
			return ErrJobNotFound
		}

		r := tx.
			Clauses(clause.OnConflict{DoNothing: true}).
			Omit(clause.Associations).
			Create(&model.JobApplication{JobID: jobID, UserID: userID})
		if r.Error != nil {
			return r.Error
		}

		if r.RowsAffected == 0 {
			return ErrAlreadyApplied
		}

		return nil
	})
	if err != nil {
		return asAppErr(err, "failed to apply for job")
	}

	return nil
}

// Withdraw removes the user's application. It removes the job from the
// user's applied list and the user from the job's applicants at once,
// and succeeds when there was nothing to remove.
func (s *JobService) Withdraw(ctx context.Context, userID, jobID string) error {
	err := s.db.WithContext(ctx).
		Where("job_id = ? AND user_id = ?", jobID, userID).
		Delete(&model.JobApplication{}).
		Error
	if err != nil {
		return apperr.Internal(fmt.Errorf("failed to withdraw application, %w", err))
	}

	return nil
}

// CreatedBy lists the jobs the user posted
func (s *JobService) CreatedBy(ctx context.Context, userID string) ([]model.Job, error) {
	jobs := []model.Job{}

	err := s.withRelations(s.db.WithContext(ctx)).
		Where("created_by = ?", userID).
		Order("created_at desc").
		Find(&jobs).
		Error
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to fetch created jobs, %w", err))
	}

	return jobs, nil
}

// AppliedBy lists the jobs the user applied to
func (s *JobService) AppliedBy(ctx context.Context, userID string) ([]model.Job, error) {
	jobs := []model.Job{}

	err := s.withRelations(s.db.WithContext(ctx)).
		Where("id IN (?)", s.db.Model(&model.JobApplication{}).Select("job_id").Where("user_id = ?", userID)).
		Order("created_at desc").
		Find(&jobs).
		Error
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to fetch applied jobs, %w", err))
	}

	return jobs, nil
}

func (s *JobService) withRelations(q *gorm.DB) *gorm.DB {
	refColumns := func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "email")
	}

	return q.
		Preload("Creator", refColumns).
		Preload("Applications", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).
		Preload("Applications.User", refColumns)
}

// ownedJob loads the job inside tx and checks that userID created it
func ownedJob(tx *gorm.DB, userID, jobID string) (*model.Job, error) {
	var job model.Job

	err := tx.Select("id", "title", "company", "created_by").Where("id = ?", jobID).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}

		return nil, err
	}

	if job.CreatedBy != userID {
		return nil, ErrNotJobOwner
	}

	return &job, nil
}

// asAppErr passes service errors through and wraps everything else as
// an internal error
func asAppErr(err error, msg string) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e
	}

	return apperr.Internal(fmt.Errorf("%s, %w", msg, err))
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(v)
	}

	return out
}
