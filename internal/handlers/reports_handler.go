package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skyaboveme/yourgency/internal/services"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: service}
}

// @Summary      KPI дашборда
// @Tags         Reports
// @Produce      json
// @Success      200  {object}  models.Summary
// @Security     BearerAuth
// @Router       /api/reports/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	data, err := h.Service.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// @Summary      Отчёт по воронке (PDF)
// @Tags         Reports
// @Produce      application/pdf
// @Success      200
// @Security     BearerAuth
// @Router       /api/reports/pipeline.pdf [get]
func (h *ReportHandler) PipelinePDF(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.Service.PipelinePDF(c.Request.Context(), &buf); err != nil {
		respondError(c, err)
		return
	}
	name := fmt.Sprintf("pipeline_%s.pdf", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
