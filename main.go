package main

import (
	"fmt"

	"hirescape/job-api/app"
	"hirescape/job-api/config"
	"hirescape/job-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	cfg, err := config.Setup()
	if err != nil {
		panic(err)
	}

	if err := app.SetupLogger(cfg.App.LogLevel); err != nil {
		panic(err)
	}
	defer zap.L().Sync()

	d, err := app.NewDeps(cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize dependencies", zap.Error(err))
	}

	router := app.NewRouter(d)

	go service.CodeCleanup(cfg.Cleanup.Interval, d.DB)

	addr := fmt.Sprintf(":%d", cfg.Host.Port)
	zap.L().Info("Server starting", zap.String("addr", addr), zap.Bool("ssl", cfg.Host.SSL.Enabled))

	if cfg.Host.SSL.Enabled {
		err = router.RunTLS(addr, cfg.Host.SSL.CertificatePath, cfg.Host.SSL.CertificateKeyPath)
	} else {
		err = router.Run(addr)
	}

	if err != nil {
		zap.L().Fatal("Server stopped", zap.Error(err))
	}
}
