package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/repositories"
)

// LoginResult: ответ на успешный вход.
type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresIn time.Duration
}

type UserService interface {
	CreateUserWithPassword(ctx context.Context, user *models.User, plainPassword string) error
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUserCount(ctx context.Context) (int, error)
}

type userService struct {
	repo         repositories.UserRepository
	emailService EmailService
	authService  AuthService
	log          *zap.Logger
}

func NewUserService(repo repositories.UserRepository, emailService EmailService, authService AuthService, log *zap.Logger) UserService {
	return &userService{
		repo:         repo,
		emailService: emailService,
		authService:  authService,
		log:          log,
	}
}

// CreateUserWithPassword хеширует пароль, сохраняет пользователя и шлёт
// приветственное письмо (ошибка письма не роняет создание).
func (s *userService) CreateUserWithPassword(ctx context.Context, user *models.User, plainPassword string) error {
	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Name == "" {
		return &models.ErrValidation{Field: "name", Message: "name is required"}
	}
	if user.Email == "" || !strings.Contains(user.Email, "@") {
		return &models.ErrValidation{Field: "email", Message: "a valid email is required"}
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if !user.Role.Valid() {
		return &models.ErrValidation{Field: "role", Message: "role must be admin or user"}
	}

	hashedPassword, err := s.authService.HashPassword(plainPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashedPassword

	if err := s.repo.Create(ctx, user); err != nil {
		return err
	}

	if s.emailService != nil {
		if err := s.emailService.SendWelcomeEmail(user.Email, user.Name); err != nil {
			s.log.Warn("users: welcome email failed", zap.String("email", user.Email), zap.Error(err))
		}
	}
	return nil
}

// Login проверяет пароль, выпускает токен и обновляет lastLogin.
func (s *userService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	invalid := &models.ErrUnauthorized{Message: "Invalid email or password"}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		var nf *models.ErrNotFound
		if errors.As(err, &nf) {
			s.log.Info("auth: unknown email", zap.String("email", email))
			return nil, invalid
		}
		return nil, err
	}
	if !s.authService.CheckPassword(user.PasswordHash, password) {
		s.log.Info("auth: password mismatch", zap.String("user_id", user.ID))
		return nil, invalid
	}

	token, ttl, err := s.authService.IssueToken(user)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// вход всё равно успешен
		s.log.Warn("auth: update last login failed", zap.String("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLogin = &now
	}
	return &LoginResult{User: user, Token: token, ExpiresIn: ttl}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *userService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.List(ctx)
}

func (s *userService) GetUserCount(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
