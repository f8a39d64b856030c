package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/services"
)

type ConfigHandler struct {
	Service *services.SettingsService
}

func NewConfigHandler(service *services.SettingsService) *ConfigHandler {
	return &ConfigHandler{Service: service}
}

// @Summary      Настройки рабочего пространства
// @Description  Если ничего не сохранено, отдаются отрасли по умолчанию
// @Tags         Config
// @Produce      json
// @Success      200  {object}  models.Settings
// @Security     BearerAuth
// @Router       /api/config [get]
func (h *ConfigHandler) Get(c *gin.Context) {
	st, err := h.Service.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Сохранить настройки
// @Tags         Config
// @Accept       json
// @Produce      json
// @Param        settings  body      models.Settings  true  "Отрасли и системная инструкция"
// @Success      200       {object}  map[string]bool
// @Security     BearerAuth
// @Router       /api/config [post]
func (h *ConfigHandler) Save(c *gin.Context) {
	var in models.Settings
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	if _, err := h.Service.Save(c.Request.Context(), in); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
