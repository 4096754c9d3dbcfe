// Package app assembles the configured server from its parts.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/wednesdayfs/helpdesk/internal/config"
	"github.com/wednesdayfs/helpdesk/internal/db"
	adminapi "github.com/wednesdayfs/helpdesk/internal/http/api/admin"
	portalapi "github.com/wednesdayfs/helpdesk/internal/http/api/portal"
	publicapi "github.com/wednesdayfs/helpdesk/internal/http/api/public"
	"github.com/wednesdayfs/helpdesk/internal/logging"
	"github.com/wednesdayfs/helpdesk/internal/mailer"
	"github.com/wednesdayfs/helpdesk/internal/service"
)

// Migrate opens the database and runs schema migrations.
func Migrate(ctx context.Context, configPath string) error {
	cfg, errLoad := config.Load(configPath)
	if errLoad != nil {
		return errLoad
	}
	logging.Setup(cfg.Log)
	conn, errOpen := db.Open(cfg.DatabaseDSN)
	if errOpen != nil {
		return errOpen
	}
	return db.Migrate(conn.WithContext(ctx))
}

// RunServer boots the HTTP server and blocks until ctx is cancelled.
func RunServer(ctx context.Context, configPath string) error {
	cfg, errLoad := config.Load(configPath)
	if errLoad != nil {
		return errLoad
	}
	logging.Setup(cfg.Log)

	conn, errOpen := db.Open(cfg.DatabaseDSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	sender := mailer.NewSMTPSender(cfg.SMTP)
	adminAuth := service.NewAdminAuthService(conn, cfg, sender)
	customerAuth := service.NewCustomerAuthService(conn, cfg, sender)
	tickets := service.NewTicketService(conn, cfg, sender)

	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	publicapi.RegisterPublicRoutes(engine, tickets)
	adminapi.RegisterAdminRoutes(engine, cfg, adminAuth, tickets)
	portalapi.RegisterPortalRoutes(engine, cfg, customerAuth, tickets)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("helpdesk listening on %s", srv.Addr)
		if errServe := srv.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
		}
	}()

	select {
	case errServe := <-errCh:
		return errServe
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
