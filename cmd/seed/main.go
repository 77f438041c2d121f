package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/pflag"

	"onboarding/internal/auth"
	"onboarding/internal/cache"
	"onboarding/internal/config"
	"onboarding/internal/db"
	"onboarding/internal/errors"
	"onboarding/internal/logger"
	"onboarding/internal/model"
	"onboarding/internal/repository"
	"onboarding/internal/service"
)

// seed provisions a demo account with the default checklist and resource
// library, then issues an invite link for it.
func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file (overridden by environment)")
	email := pflag.String("email", "demo@example.com", "demo account e-mail")
	name := pflag.String("name", "Demo Designer", "demo account display name")
	password := pflag.String("password", "demo-password", "demo account password")
	share := pflag.Bool("share", true, "issue an invite link for the demo content")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := logger.New("info", false)
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty)
	log.Info().Msg("starting seed script")

	gormDB, err := db.Open(cfg.DBDriver, cfg.MySQLDSN, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
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
		log.Fatal().Err(err).Msg("run migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userRepo := repository.NewUserRepository(gormDB)
	templateRepo := repository.NewTemplateRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	versionRepo := repository.NewVersionRepository(gormDB)
	shareRepo := repository.NewShareRepository(gormDB)
	cloneLogRepo := repository.NewCloneLogRepository(gormDB)

	// The cache is optional here; a dead Redis only loses refresh tokens.
	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	authService := service.NewAuthService(
		userRepo, templateRepo, categoryRepo,
		auth.NewJWTService(cfg.JWTSecret), auth.NewTokenStore(cacheClient), log,
	)

	result, err := authService.Register(ctx, *email, *password, *name)
	switch {
	case errors.Is(err, errors.ErrUserAlreadyExists):
		log.Info().Str("email", *email).Msg("demo account already exists, nothing to do")
		os.Exit(0)
	case err != nil:
		log.Fatal().Err(err).Msg("register demo account")
	}
	log.Info().
		Str("email", result.User.Email).
		Str("user_id", result.User.ID.String()).
		Msg("demo account created with default content")

	if !*share {
		return
	}

	userService := service.NewUserService(userRepo, cacheClient)
	shareService := service.NewShareService(
		shareRepo, cloneLogRepo, templateRepo, categoryRepo, versionRepo,
		userService, nil, cfg.PublicBaseURL, log,
	)
	issued, err := shareService.Issue(ctx, result.User.ID, service.IssueShareInput{
		Title:       "Designer onboarding starter kit",
		Description: "Default checklist and resource library",
		Origin:      "http://localhost:" + cfg.ServerPort,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("issue demo invite")
	}
	log.Info().Str("invite_url", issued.InviteURL).Msg("demo invite issued")
}
