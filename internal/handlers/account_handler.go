package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/services"
)

type AccountHandler struct {
	Accounts *services.AccountService
	Contacts *services.ContactService
}

func NewAccountHandler(accounts *services.AccountService, contacts *services.ContactService) *AccountHandler {
	return &AccountHandler{Accounts: accounts, Contacts: contacts}
}

// @Summary      Список аккаунтов
// @Tags         Accounts
// @Produce      json
// @Success      200  {array}  models.Account
// @Security     BearerAuth
// @Router       /api/accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	list, err := h.Accounts.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AccountHandler) GetByID(c *gin.Context) {
	acc, err := h.Accounts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

// @Summary      Создать аккаунт
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Param        account  body      models.Account  true  "Аккаунт"
// @Success      201      {object}  models.Account
// @Failure      400      {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	var acc models.Account
	if err := c.ShouldBindJSON(&acc); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Accounts.Create(c.Request.Context(), &acc); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, acc)
}

// ListContacts: ?accountId= фильтрует по аккаунту.
func (h *AccountHandler) ListContacts(c *gin.Context) {
	list, err := h.Contacts.List(c.Request.Context(), c.Query("accountId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AccountHandler) CreateContact(c *gin.Context) {
	var contact models.Contact
	if err := c.ShouldBindJSON(&contact); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Contacts.Create(c.Request.Context(), &contact); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}
