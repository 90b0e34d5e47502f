package app

import (
	"context"
	"fmt"
	"time"

	"hirescape/job-api/config"
	"hirescape/job-api/db"
	"hirescape/job-api/internal"
	"hirescape/job-api/internal/service"
	"hirescape/job-api/pkg/cache"
	"hirescape/job-api/pkg/security"

	"github.com/chenyahui/gin-cache/persist"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewDeps opens the database and the response cache and builds the
// services on top of them
func NewDeps(cfg *config.Config) (*internal.Deps, error) {
	conn, err := db.New(cfg.Database)
	if err != nil {
		return nil, err
	}

	store, err := NewCacheStore(cfg.Cache)
	if err != nil {
		return nil, err
	}

	return NewDepsWithMailer(cfg, conn, service.NewMailer(cfg.Mail), store)
}

// NewDepsWithMailer is NewDeps for an already open database, a caller
// provided mailer and cache store. store may be nil.
func NewDepsWithMailer(cfg *config.Config, conn *gorm.DB, mailer service.Mailer, store persist.CacheStore) (*internal.Deps, error) {
	if err := db.PromoteAdmins(conn, cfg.Auth.AdminEmails); err != nil {
		return nil, err
	}

	tokens := security.NewTokenService(cfg.Security.JWTSecret)
	hasher := security.NewPasswordHasher(cfg.Security.PasswordHash, cfg.Security.BcryptCost)
	codes := security.NewCodeHasher(cfg.Security.HMACSecret)

	return &internal.Deps{
		Cfg:    cfg,
		DB:     conn,
		Tokens: tokens,
		Auth:   service.NewAuthService(conn, hasher, codes, tokens, mailer, cfg.Auth),
		Jobs:   service.NewJobService(conn),
		Users:  service.NewUserService(conn),
		Pages:  cache.NewJobPages(store, cfg.Cache.TTL),
	}, nil
}

// NewCacheStore returns the redis store when an address is configured and
// an in-memory one otherwise. It returns nil when caching is disabled.
func NewCacheStore(c config.Cache) (persist.CacheStore, error) {
	if c.TTL <= 0 {
		return nil, nil
	}

	if c.RedisAddr == "" {
		return persist.NewMemoryStore(time.Minute), nil
	}

	s, err := cache.NewRedisStore(context.Background(), c)
	if err != nil {
		return nil, fmt.Errorf("failed to create response cache, %w", err)
	}

	zap.L().Info("Using redis response cache", zap.String("addr", c.RedisAddr))
	return s, nil
}
