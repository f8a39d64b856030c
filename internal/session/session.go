// Package session holds the client-side application state: the signed-in
// user and the pipeline board bound to the Sync Gateway. It replaces ambient
// globals with one object that has an explicit start and teardown.
package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/skyaboveme/yourgency/internal/gateway"
	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/pipeline"
)

// Client is the gateway surface a session needs. *gateway.Client satisfies it.
type Client interface {
	pipeline.Store
	Login(ctx context.Context, email, password string) (*gateway.LoginResult, error)
	SetToken(token string)
}

type Credentials struct {
	Email    string
	Password string
}

type Session struct {
	User  models.User
	Board *pipeline.Board

	client Client
	log    *zap.Logger
}

// Start signs in, then builds and loads the board. Extra options are passed
// to pipeline.NewBoard.
func Start(ctx context.Context, client Client, creds Credentials, log *zap.Logger, opts ...pipeline.Option) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if creds.Email == "" || creds.Password == "" {
		return nil, &models.ErrValidation{Field: "email", Message: "email and password are required"}
	}

	res, err := client.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	opts = append([]pipeline.Option{pipeline.WithLogger(log)}, opts...)
	board := pipeline.NewBoard(client, opts...)
	if err := board.Load(ctx); err != nil {
		_ = board.Close()
		client.SetToken("")
		return nil, fmt.Errorf("load pipeline: %w", err)
	}

	log.Info("session: started",
		zap.String("user", res.User.Email),
		zap.Int("deals", len(board.Deals())),
	)
	return &Session{User: res.User, Board: board, client: client, log: log}, nil
}

// Close waits for pending writes (bounded by ctx), stops the board and drops
// the token. The returned error is the last persist failure, if any.
func (s *Session) Close(ctx context.Context) error {
	flushErr := s.Board.Flush(ctx)
	closeErr := s.Board.Close()
	s.client.SetToken("")
	s.log.Info("session: closed", zap.String("user", s.User.Email))

	// a timed-out flush wins over the last persist result
	if errors.Is(flushErr, context.Canceled) || errors.Is(flushErr, context.DeadlineExceeded) {
		return flushErr
	}
	return closeErr
}
