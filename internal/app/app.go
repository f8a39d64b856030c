// @title                       Yourgency Sync Gateway API
// @version                     1.0
// @description                 Sales pipeline persistence and AI advisor endpoints.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	_ "github.com/skyaboveme/yourgency/docs"
	"github.com/skyaboveme/yourgency/internal/ai"
	"github.com/skyaboveme/yourgency/internal/cache"
	"github.com/skyaboveme/yourgency/internal/config"
	"github.com/skyaboveme/yourgency/internal/handlers"
	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/observability"
	"github.com/skyaboveme/yourgency/internal/pdf"
	"github.com/skyaboveme/yourgency/internal/repositories"
	"github.com/skyaboveme/yourgency/internal/resilience"
	"github.com/skyaboveme/yourgency/internal/routes"
	"github.com/skyaboveme/yourgency/internal/services"
	"github.com/skyaboveme/yourgency/internal/utils"
)

// App: собранный сервер Sync Gateway.
type App struct {
	Router  *gin.Engine
	Metrics *observability.Metrics

	log     *zap.Logger
	closers []func()
}

// Options подменяют внешние зависимости (тесты).
type Options struct {
	Generator ai.Generator       // nil: Gemini по ключу из конфига
	Notifier  services.Notifier  // nil: Telegram, если настроен
	Email     services.EmailService
}

// New мигрирует схему и собирает репозитории, сервисы, хендлеры и роутер.
func New(ctx context.Context, cfg *config.Config, db *sql.DB, log *zap.Logger, opts Options) (*App, error) {
	if err := repositories.Migrate(ctx, db); err != nil {
		return nil, err
	}
	a := &App{Metrics: observability.NewMetrics(), log: log}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	oppRepo := repositories.NewOpportunityRepository(db)
	accountRepo := repositories.NewAccountRepository(db)
	contactRepo := repositories.NewContactRepository(db)
	activityRepo := repositories.NewActivityRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)

	// === Services ===
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		s, err := utils.RandomHex(32)
		if err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		secret = s
		log.Warn("auth: JWT_SECRET is not set, using a random secret; tokens will not survive a restart")
	}
	authService := services.NewAuthService([]byte(secret), cfg.Auth.TokenTTL)

	emailService := opts.Email
	if emailService == nil && cfg.SMTPEnabled() {
		emailService = services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
	}

	userService := services.NewUserService(userRepo, emailService, authService, log)
	oppService := services.NewOpportunityService(oppRepo, a.Metrics, log)
	accountService := services.NewAccountService(accountRepo)
	contactService := services.NewContactService(contactRepo, accountRepo)
	activityService := services.NewActivityService(activityRepo, oppService, log)
	settingsService := services.NewSettingsService(settingsRepo, log)
	reportService := services.NewReportService(oppService, userRepo, accountRepo, pdf.NewReportGenerator(cfg.Reports.FontPath))

	advisor, err := a.newAdvisor(ctx, cfg, opts.Generator)
	if err != nil {
		return nil, err
	}
	notifier := opts.Notifier
	if notifier == nil && cfg.TelegramEnabled() {
		tg, err := services.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, "", log)
		if err != nil {
			// без алертов сервер работает
			log.Warn("telegram: disabled", zap.Error(err))
		} else {
			notifier = tg
		}
	}
	scores := cache.New[models.LeadScore](cfg.AI.ScoreCacheTTL)
	a.closers = append(a.closers, scores.Stop)

	advisorService := services.NewAdvisorService(services.AdvisorDeps{
		Advisor:  advisor,
		Settings: settingsService,
		Opps:     oppService,
		Email:    emailService,
		Notifier: notifier,
		Scores:   scores,
		Metrics:  a.Metrics,
		Log:      log,
	})

	if err := bootstrapAdmin(ctx, cfg, userService, log); err != nil {
		return nil, err
	}

	// === Gin ===
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(observability.GinLogger(log, a.Metrics))
	router.Use(corsMiddleware())

	// Роуты (JWT/RBAC: внутри SetupRoutes)
	routes.SetupRoutes(router, routes.Handlers{
		Auth:          handlers.NewAuthHandler(userService, log),
		Users:         handlers.NewUserHandler(userService),
		Opportunities: handlers.NewOpportunityHandler(oppService, log),
		Accounts:      handlers.NewAccountHandler(accountService, contactService),
		Activities:    handlers.NewActivityHandler(activityService),
		Config:        handlers.NewConfigHandler(settingsService),
		AI:            handlers.NewAIHandler(advisorService),
		Reports:       handlers.NewReportHandler(reportService),
	}, authService, a.Metrics.Handler())

	a.Router = router
	return a, nil
}

func (a *App) newAdvisor(ctx context.Context, cfg *config.Config, gen ai.Generator) (*ai.Advisor, error) {
	if gen == nil {
		g, err := ai.NewGenAIGenerator(ctx, cfg.AI.APIKey, resilience.NewCircuitBreaker("gemini"), resilience.Config{
			MaxRetries:     cfg.AI.MaxRetries,
			InitialBackoff: 500 * time.Millisecond,
		})
		switch {
		case errors.Is(err, ai.ErrNotConfigured):
			a.log.Warn("ai: GEMINI_API_KEY is not set, AI endpoints will answer 502")
			return nil, nil
		case err != nil:
			return nil, err
		}
		gen = g
	}
	return ai.NewAdvisor(gen, ai.Models{
		Fast:           cfg.AI.FastModel,
		Deep:           cfg.AI.DeepModel,
		Maps:           cfg.AI.MapsModel,
		ThinkingBudget: cfg.AI.ThinkingBudget,
	}, a.Metrics.RecordTokens), nil
}

// bootstrapAdmin создаёт первого админа из конфига, если пользователей нет.
func bootstrapAdmin(ctx context.Context, cfg *config.Config, users services.UserService, log *zap.Logger) error {
	if cfg.Auth.AdminEmail == "" || cfg.Auth.AdminPassword == "" {
		return nil
	}
	n, err := users.GetUserCount(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	admin := &models.User{Name: "Administrator", Email: cfg.Auth.AdminEmail, Role: models.RoleAdmin}
	if err := users.CreateUserWithPassword(ctx, admin, cfg.Auth.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	log.Info("auth: bootstrap admin created", zap.String("email", admin.Email))
	return nil
}

func (a *App) Close() {
	for _, c := range a.closers {
		c()
	}
}

// OpenDB открывает Postgres (lib/pq) или SQLite (modernc) по драйверу из конфига.
func OpenDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	var driver string
	switch cfg.Driver {
	case "postgres":
		driver = "postgres"
	case "sqlite":
		driver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if cfg.DSN == "" {
		return nil, errors.New("database url is not set (DATABASE_URL)")
	}
	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// одна запись за раз; внешние ключи включаются на соединение
		db.SetMaxOpenConns(1)
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite pragma: %w", err)
		}
	}
	return db, nil
}

// Run поднимает сервер и останавливает его, когда ctx отменён.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	shutdownTracer, err := observability.InitTracer(ctx, cfg.Observability.ServiceName, cfg.Observability.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	// === DB ===
	db, err := OpenDB(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("db close failed", zap.Error(err))
		}
	}()
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	a, err := New(ctx, cfg, db, log, Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      5 * time.Minute, // deep analysis бывает долгим
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("server shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
