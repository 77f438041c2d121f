package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "onboarding/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"onboarding/internal/auth"
	"onboarding/internal/cache"
	"onboarding/internal/config"
	"onboarding/internal/db"
	"onboarding/internal/handler"
	"onboarding/internal/logger"
	"onboarding/internal/model"
	"onboarding/internal/notify"
	"onboarding/internal/repository"
	"onboarding/internal/router"
	"onboarding/internal/service"
)

// @title Onboarding Templates API
// @version 1.0
// @description Onboarding checklists, JTBD resource libraries, versions and invite-link sharing with JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file (overridden by environment)")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := logger.New("info", false)
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	gormDB, err := db.Open(cfg.DBDriver, cfg.MySQLDSN, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("database init")
	}

	// Children first so foreign keys do not block the drop.
	if cfg.ResetDB {
		log.Warn().Msg("RESET_DB set, dropping all tables")
		tables := []interface{}{
			&model.CloneLog{},
			&model.ShareRecord{},
			&model.Resource{},
			&model.ResourceCategory{},
			&model.TemplateItem{},
			&model.Version{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Warn().Err(err).Msg("drop table (may not exist)")
			}
		}
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Version{},
		&model.TemplateItem{},
		&model.ResourceCategory{},
		&model.Resource{},
		&model.ShareRecord{},
		&model.CloneLog{},
	); err != nil {
		log.Fatal().Err(err).Msg("auto-migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(context.Background()); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, running without cache")
	}

	mailer := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	if !mailer.Enabled() {
		log.Info().Msg("SMTP_HOST not set, invite e-mails disabled")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	versionRepo := repository.NewVersionRepository(gormDB)
	templateRepo := repository.NewTemplateRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	shareRepo := repository.NewShareRepository(gormDB)
	cloneLogRepo := repository.NewCloneLogRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	policy, err := service.NewMergePolicy(cfg.ClonePolicy, versionRepo, templateRepo, categoryRepo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("clone policy")
	}
	userService := service.NewUserService(userRepo, cacheClient)
	authService := service.NewAuthService(userRepo, templateRepo, categoryRepo, jwtService, tokenStore, log)
	templateService := service.NewTemplateService(templateRepo, versionRepo)
	resourceService := service.NewResourceService(categoryRepo, versionRepo)
	versionService := service.NewVersionService(versionRepo, templateRepo, categoryRepo, log)
	shareService := service.NewShareService(
		shareRepo, cloneLogRepo, templateRepo, categoryRepo, versionRepo,
		userService, mailer, cfg.PublicBaseURL, log,
	)
	cloneService := service.NewCloneService(shareRepo, cloneLogRepo, templateRepo, categoryRepo, userService, policy, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, userService)
	userHandler := handler.NewUserHandler(userService)
	templateHandler := handler.NewTemplateHandler(templateService)
	resourceHandler := handler.NewResourceHandler(resourceService)
	versionHandler := handler.NewVersionHandler(versionService)
	shareHandler := handler.NewShareHandler(shareService, cloneService)

	e := echo.New()
	router.Register(
		e,
		cfg,
		log,
		tokenStore,
		authHandler,
		userHandler,
		templateHandler,
		resourceHandler,
		versionHandler,
		shareHandler,
	)

	log.Info().Str("url", swaggerURL(cfg)).Msg("swagger documentation available")
	log.Info().Str("policy", policy.Name()).Str("driver", cfg.DBDriver).Msg("clone policy configured")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server start")
		}
	}()

	<-ctx.Done()
	shutdown(e, log)
}

func shutdown(e *echo.Echo, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}

// swaggerURL builds the docs URL. SwaggerHost may already include a scheme.
func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/") + "/swagger/index.html"
}
