package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/plankit/project-service/internal/api/http"
	"github.com/plankit/project-service/internal/api/http/handlers"
	"github.com/plankit/project-service/internal/auth"
	"github.com/plankit/project-service/internal/config"
	"github.com/plankit/project-service/internal/events"
	"github.com/plankit/project-service/internal/mail"
	"github.com/plankit/project-service/internal/oauth"
	"github.com/plankit/project-service/internal/observability"
	"github.com/plankit/project-service/internal/persistence"
	"github.com/plankit/project-service/internal/repository"
	"github.com/plankit/project-service/internal/service"
	"github.com/plankit/project-service/internal/token"
	"github.com/plankit/project-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	tokenRepo := repository.NewTokenRepository(pool)
	membershipRepo := repository.NewMembershipRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	sessions := auth.NewSessionManager(persistence.NewSessionStorage(redis), cfg.Session)
	tokens := token.NewManager(tokenRepo, metrics)
	registry := oauth.NewRegistry(cfg.OAuth, cfg.App.BaseURL, logger)
	stateSigner := oauth.NewStateSigner(cfg.Auth.OAuthStateSecret, cfg.Auth.StateTTL())

	var notifier mail.Notifier
	if cfg.Mail.Host != "" {
		notifier = mail.NewSMTPNotifier(cfg.Mail, cfg.App.BaseURL)
	} else {
		logger.Warn("MAIL_HOST not set; using dev mail notifier")
		notifier = mail.NewLogNotifier(logger, cfg.App.BaseURL)
	}

	authService := service.NewAuthService(cfg.Auth, userRepo, sessions, tokens, notifier, dispatcher, logger)
	verificationService := service.NewVerificationService(cfg.Auth, userRepo, sessions, tokens, notifier, dispatcher, logger)
	passwordService := service.NewPasswordService(cfg.Auth, userRepo, tokens, notifier, dispatcher, logger)
	twoFactorService := service.NewTwoFactorService(cfg.Auth, userRepo, sessions, tokens, notifier, dispatcher, logger)
	inviteService := service.NewInviteService(cfg.Auth, userRepo, projectRepo, membershipRepo, tokens, notifier, dispatcher, logger)
	oauthService := service.NewOAuthService(registry, stateSigner, userRepo, sessions, dispatcher, logger)
	projectService := service.NewProjectService(projectRepo, membershipRepo)

	auditService := service.NewAuditService(dispatcher, logger)
	worker.StartAuditWorker(auditService)

	guard := auth.NewGuard(sessions, userRepo, membershipRepo, metrics)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:       handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:         handlers.NewAuthHandler(authService, sessions),
		OAuth:        handlers.NewOAuthHandler(oauthService, sessions),
		Verification: handlers.NewVerificationHandler(verificationService, sessions),
		Password:     handlers.NewPasswordHandler(passwordService),
		TwoFactor:    handlers.NewTwoFactorHandler(twoFactorService, sessions),
		Projects:     handlers.NewProjectHandler(projectService, inviteService),
		Guard:        guard,
		Registry:     registry,
		Metrics:      metrics,
		RateLimit:    httptransport.NewRateLimiter(cfg.Auth.LoginRatePerMinute, cfg.Auth.LoginRateBurst),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
