package authz

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/skyaboveme/yourgency/internal/models"
)

// Claims: полезная нагрузка access-токена.
type Claims struct {
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Ключи gin-контекста, которые выставляет AuthMiddleware.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

func IsAdmin(role models.Role) bool {
	return role == models.RoleAdmin
}

// CanManageUsers: создавать пользователей может только админ.
func CanManageUsers(role models.Role) bool {
	return IsAdmin(role)
}
