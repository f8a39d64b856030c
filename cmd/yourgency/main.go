// Command yourgency runs the Sync Gateway server and the pipeline client.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skyaboveme/yourgency/internal/config"
	"github.com/skyaboveme/yourgency/internal/gateway"
	"github.com/skyaboveme/yourgency/internal/observability"
	"github.com/skyaboveme/yourgency/internal/pipeline"
	"github.com/skyaboveme/yourgency/internal/resilience"
	"github.com/skyaboveme/yourgency/internal/session"
)

var (
	configPath string
	email      string
	password   string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "yourgency",
	Short: "Yourgency sales CRM",
	Long: `Yourgency tracks home-service prospects through the sales pipeline.

Server:
  yourgency serve                      Start the Sync Gateway

Client (needs --email/--password or YOURGENCY_EMAIL/YOURGENCY_PASSWORD):
  yourgency pipeline list              Show the board
  yourgency pipeline advance <id>      Move a deal one stage forward
  yourgency prospect score ...         Ask the advisor for a lead score`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $YOURGENCY_CONFIG or "+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&email, "email", os.Getenv("YOURGENCY_EMAIL"), "Login email")
	rootCmd.PersistentFlags().StringVar(&password, "password", os.Getenv("YOURGENCY_PASSWORD"), "Login password")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(prospectCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(briefCmd)
	rootCmd.AddCommand(settingsCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config and builds a logger. Client commands log at
// warn unless --log-level says otherwise.
func loadConfig(defaultLevel string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	level := logLevel
	if level == "" {
		level = defaultLevel
	}
	if level == "" {
		level = cfg.Observability.LogLevel
	}
	log, err := observability.NewLogger(level)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

func newClient(cfg *config.Config, log *zap.Logger) *gateway.Client {
	return gateway.NewClient(
		&http.Client{Timeout: cfg.Gateway.Timeout},
		cfg.Gateway.BaseURL,
		resilience.NewCircuitBreaker("sync-gateway"),
		resilience.Config{MaxRetries: cfg.Gateway.MaxRetries, InitialBackoff: cfg.Gateway.InitialBackoff},
		log,
	)
}

// loggedIn returns a client holding a fresh token.
func loggedIn(ctx context.Context) (*gateway.Client, *zap.Logger, error) {
	cfg, log, err := loadConfig("warn")
	if err != nil {
		return nil, nil, err
	}
	c := newClient(cfg, log)
	if _, err := c.Login(ctx, email, password); err != nil {
		return nil, nil, fmt.Errorf("login: %w", err)
	}
	return c, log, nil
}

// withSession starts a session, runs fn and closes the session, waiting for
// the board's writes.
func withSession(ctx context.Context, fn func(*session.Session) error) error {
	cfg, log, err := loadConfig("warn")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	s, err := session.Start(ctx, newClient(cfg, log), session.Credentials{Email: email, Password: password}, log,
		pipeline.WithPersistTimeout(cfg.Gateway.Timeout),
	)
	if err != nil {
		return err
	}
	runErr := fn(s)

	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Gateway.Timeout+5*time.Second)
	defer cancel()
	if err := s.Close(closeCtx); err != nil && runErr == nil {
		return fmt.Errorf("save pipeline: %w", err)
	}
	return runErr
}
