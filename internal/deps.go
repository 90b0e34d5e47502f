package internal

import (
	"hirescape/job-api/config"
	"hirescape/job-api/internal/service"
	"hirescape/job-api/pkg/cache"
	"hirescape/job-api/pkg/security"

	"gorm.io/gorm"
)

// Deps is everything a handler may need, built once at startup
type Deps struct {
	Cfg    *config.Config
	DB     *gorm.DB
	Tokens *security.TokenService
	Auth   *service.AuthService
	Jobs   *service.JobService
	Users  *service.UserService
	Pages  *cache.JobPages
}
