package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skyaboveme/yourgency/internal/authz"
	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/services"
)

type UserHandler struct {
	service services.UserService
}

type createUserRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=6"`
	Role     models.Role `json:"role"`
}

func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// @Summary      Создать пользователя
// @Description  Только для роли admin; новому пользователю уходит приветственное письмо
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        user  body      createUserRequest  true  "Пользователь"
// @Success      201   {object}  models.User
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	_, role := getUserAndRole(c)
	if !authz.CanManageUsers(role) {
		respondError(c, &models.ErrForbidden{Action: "only admin can create users"})
		return
	}

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user := &models.User{Name: req.Name, Email: req.Email, Role: req.Role}
	if err := h.service.CreateUserWithPassword(c.Request.Context(), user, req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// @Summary      Список пользователей
// @Tags         Users
// @Produce      json
// @Success      200  {array}  models.User
// @Security     BearerAuth
// @Router       /api/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	c.JSON(http.StatusOK, users)
}

// Me: текущий пользователь по токену.
func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	user, err := h.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
