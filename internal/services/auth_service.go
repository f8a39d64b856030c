package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/skyaboveme/yourgency/internal/authz"
	"github.com/skyaboveme/yourgency/internal/models"
)

// AuthService хеширует пароли и выпускает/проверяет JWT.
type AuthService interface {
	HashPassword(plain string) (string, error)
	CheckPassword(hash, plain string) bool
	IssueToken(user *models.User) (token string, ttl time.Duration, err error)
	ParseToken(token string) (*authz.Claims, error)
}

type authService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(secret []byte, ttl time.Duration) AuthService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &authService{secret: secret, ttl: ttl, now: time.Now}
}

func (s *authService) HashPassword(plain string) (string, error) {
	plain = strings.TrimSpace(plain)
	if plain == "" {
		return "", &models.ErrValidation{Field: "password", Message: "password is required"}
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (s *authService) CheckPassword(hash, plain string) bool {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(strings.TrimSpace(plain))) == nil
}

func (s *authService) IssueToken(user *models.User) (string, time.Duration, error) {
	now := s.now()
	claims := &authz.Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", 0, fmt.Errorf("sign access token: %w", err)
	}
	return signed, s.ttl, nil
}

// ParseToken принимает только HMAC-подписи.
func (s *authService) ParseToken(token string) (*authz.Claims, error) {
	claims := &authz.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithLeeway(2*time.Minute), jwt.WithExpirationRequired())
	if err != nil {
		return nil, &models.ErrUnauthorized{Message: "Invalid or expired token"}
	}
	if !parsed.Valid {
		return nil, &models.ErrUnauthorized{Message: "Invalid or expired token"}
	}
	if claims.UserID == "" {
		return nil, &models.ErrUnauthorized{Message: "token has no subject"}
	}
	return claims, nil
}
