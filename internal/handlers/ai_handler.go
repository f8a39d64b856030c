package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/services"
)

// AIHandler: эндпоинты AI-советника.
type AIHandler struct {
	service *services.AdvisorService
}

func NewAIHandler(service *services.AdvisorService) *AIHandler {
	return &AIHandler{service: service}
}

// @Summary      Оценка лида
// @Description  Fit/Need/Timing/Readiness 1..10 и композит 0..100. При dealId оценка сохраняется в сделку.
// @Tags         AI
// @Accept       json
// @Produce      json
// @Param        request  body      models.ScoreRequest  true  "Данные о компании"
// @Success      200      {object}  models.LeadScore
// @Failure      502      {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/ai/score [post]
func (h *AIHandler) Score(c *gin.Context) {
	var req models.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	score, err := h.service.Score(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, score)
}

// @Summary      Глубокий анализ
// @Tags         AI
// @Accept       json
// @Produce      json
// @Param        request  body      models.AnalysisRequest  true  "Компания"
// @Success      200      {object}  models.TextReply
// @Security     BearerAuth
// @Router       /api/ai/analysis [post]
func (h *AIHandler) Analysis(c *gin.Context) {
	var req models.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	text, err := h.service.DeepAnalysis(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.TextReply{Text: text})
}

// @Summary      Чат с советником
// @Description  useMaps включает поиск по картам; в ответе будут источники
// @Tags         AI
// @Accept       json
// @Produce      json
// @Param        request  body      models.ChatRequest  true  "Сообщение и история"
// @Success      200      {object}  models.ChatReply
// @Security     BearerAuth
// @Router       /api/ai/chat [post]
func (h *AIHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	reply, err := h.service.Chat(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// @Summary      Черновик письма
// @Tags         AI
// @Accept       json
// @Produce      json
// @Param        request  body      models.OutreachRequest  true  "Компания, стадия, боли"
// @Success      200      {object}  models.TextReply
// @Security     BearerAuth
// @Router       /api/ai/outreach [post]
func (h *AIHandler) DraftOutreach(c *gin.Context) {
	var req models.OutreachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	text, err := h.service.DraftOutreach(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.TextReply{Text: text})
}

// @Summary      Отправить письмо
// @Tags         AI
// @Accept       json
// @Produce      json
// @Param        email  body      models.OutreachEmail  true  "Письмо"
// @Success      200    {object}  map[string]bool
// @Security     BearerAuth
// @Router       /api/ai/outreach/send [post]
func (h *AIHandler) SendOutreach(c *gin.Context) {
	var msg models.OutreachEmail
	if err := c.ShouldBindJSON(&msg); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.service.SendOutreach(c.Request.Context(), msg); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary      Утренний бриф
// @Tags         AI
// @Produce      json
// @Success      200  {object}  models.Brief
// @Security     BearerAuth
// @Router       /api/ai/brief [get]
func (h *AIHandler) Brief(c *gin.Context) {
	brief, err := h.service.MorningBrief(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, brief)
}
