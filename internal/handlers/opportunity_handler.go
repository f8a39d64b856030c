package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skyaboveme/yourgency/internal/services"
	"github.com/skyaboveme/yourgency/internal/wire"
)

// OpportunityHandler: контракт Sync Gateway для сделок. Удаления нет.
type OpportunityHandler struct {
	Service *services.OpportunityService
	log     *zap.Logger
}

func NewOpportunityHandler(service *services.OpportunityService, log *zap.Logger) *OpportunityHandler {
	return &OpportunityHandler{Service: service, log: log}
}

// @Summary      Все сделки
// @Description  Полная коллекция с именем ответственного. При ошибке чтения отдаётся [] со статусом 200.
// @Tags         Opportunities
// @Produce      json
// @Success      200  {array}  wire.Opportunity
// @Security     BearerAuth
// @Router       /api/opportunities [get]
func (h *OpportunityHandler) List(c *gin.Context) {
	list, err := h.Service.List(c.Request.Context())
	if err != nil {
		// клиент не отличает пустую базу от сбоя чтения
		h.log.Error("opportunities: list failed", zap.Error(err))
		c.JSON(http.StatusOK, []wire.Opportunity{})
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Сделка по id
// @Tags         Opportunities
// @Produce      json
// @Param        id   path      string  true  "ID сделки"
// @Success      200  {object}  wire.Opportunity
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/opportunities/{id} [get]
func (h *OpportunityHandler) GetByID(c *gin.Context) {
	o, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary      Массовый upsert
// @Description  Все записи в одной транзакции. Новые id вставляются, у существующих обновляется фиксированный набор полей. Отсутствующие в теле записи не удаляются.
// @Tags         Opportunities
// @Accept       json
// @Produce      json
// @Param        batch  body      []wire.Opportunity  true  "Вся коллекция"
// @Success      200    {object}  wire.UpsertResponse
// @Failure      400    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/opportunities [put]
func (h *OpportunityHandler) BulkUpsert(c *gin.Context) {
	var batch []wire.Opportunity
	if err := c.ShouldBindJSON(&batch); err != nil {
		badRequest(c, err)
		return
	}
	n, err := h.Service.BulkUpsert(c.Request.Context(), batch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.UpsertResponse{Success: true, Count: n})
}

// @Summary      Создать сделку
// @Description  Вставляет ровно одну запись (не upsert). Пустая стадия = PROSPECT.
// @Tags         Opportunities
// @Accept       json
// @Produce      json
// @Param        opportunity  body      wire.Opportunity  true  "Сделка"
// @Success      201          {object}  wire.Opportunity
// @Failure      400          {object}  map[string]string
// @Failure      409          {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/opportunities [post]
func (h *OpportunityHandler) Create(c *gin.Context) {
	var o wire.Opportunity
	if err := c.ShouldBindJSON(&o); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Service.Create(c.Request.Context(), &o); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}
