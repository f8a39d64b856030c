package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/services"
)

type AuthHandler struct {
	userService services.UserService
	log         *zap.Logger
}

func NewAuthHandler(userService services.UserService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{userService: userService, log: log}
}

// LoginResponse: тело ответа /api/login.
type LoginResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
	Tokens  TokenPair    `json:"tokens"`
}

type TokenPair struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// @Summary      Вход в систему
// @Description  Проверяет email и пароль и возвращает access-токен
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Данные для входа"
// @Success      200    {object}  LoginResponse
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /api/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.log.Info("auth: login rejected", zap.String("email", req.Email), zap.Error(err))
		respondError(c, err)
		return
	}

	// PasswordHash помечен json:"-", наружу не уходит
	c.JSON(http.StatusOK, LoginResponse{
		Message: "Login successful",
		User:    res.User,
		Tokens: TokenPair{
			AccessToken: res.Token,
			ExpiresIn:   int(res.ExpiresIn.Seconds()),
		},
	})
}
