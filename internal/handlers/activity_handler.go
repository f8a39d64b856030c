package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/services"
)

type ActivityHandler struct {
	Service *services.ActivityService
}

func NewActivityHandler(service *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{Service: service}
}

// @Summary      Таймлайн активностей
// @Tags         Activities
// @Produce      json
// @Param        accountId      query  string  false  "Аккаунт"
// @Param        contactId      query  string  false  "Контакт"
// @Param        opportunityId  query  string  false  "Сделка"
// @Success      200  {array}  models.Activity
// @Security     BearerAuth
// @Router       /api/activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	list, err := h.Service.List(c.Request.Context(), models.ActivityFilter{
		AccountID:     c.Query("accountId"),
		ContactID:     c.Query("contactId"),
		OpportunityID: c.Query("opportunityId"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Записать активность
// @Description  subject по умолчанию "<direction> <type>", status "completed", date = сейчас
// @Tags         Activities
// @Accept       json
// @Produce      json
// @Param        activity  body      models.Activity  true  "Активность"
// @Success      201       {object}  models.Activity
// @Failure      400       {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/activities [post]
func (h *ActivityHandler) Create(c *gin.Context) {
	var a models.Activity
	if err := c.ShouldBindJSON(&a); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Service.Log(c.Request.Context(), &a); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}
