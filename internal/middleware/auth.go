package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skyaboveme/yourgency/internal/authz"
)

// TokenParser проверяет access-токен (services.AuthService).
type TokenParser interface {
	ParseToken(token string) (*authz.Claims, error)
}

// список публичных эндпоинтов, которые не требуют токена
func isPublicPath(path string) bool {
	switch path {
	case "/api/login", "/healthz", "/metrics":
		return true
	}
	return strings.HasPrefix(path, "/swagger")
}

func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1) пропускаем preflight
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		// 2) пропускаем публичные пути
		if isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		// 3) читаем Authorization
		parts := strings.SplitN(strings.TrimSpace(c.GetHeader("Authorization")), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		// 4) парсим и валидируем токен (подпись, срок с leeway)
		claims, err := tokens.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		// 5) прокидываем user/role в контекст
		c.Set(authz.CtxUserID, claims.UserID)
		c.Set(authz.CtxRole, claims.Role)

		c.Next()
	}
}
