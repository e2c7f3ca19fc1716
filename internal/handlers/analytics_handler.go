package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propertystore/internal/pipeline"
	"propertystore/internal/services"
)

// AnalyticsHandler отдаёт агрегаты по воронке. ?refresh=true пересчитывает кэш.
type AnalyticsHandler struct {
	Service *services.AnalyticsService
	Log     logrus.FieldLogger
}

func NewAnalyticsHandler(service *services.AnalyticsService, log logrus.FieldLogger) *AnalyticsHandler {
	return &AnalyticsHandler{Service: service, Log: log}
}

// @Summary      Сводка по воронке
// @Tags         Analytics
// @Produce      json
// @Param        id       path      string  true   "ID воронки"
// @Param        refresh  query     bool    false  "Пересчитать"
// @Success      200      {object}  models.DealAnalytics
// @Security     BearerAuth
// @Router       /deals/pipeline/{id}/analytics [get]
func (h *AnalyticsHandler) PipelineSummary(c *gin.Context) {
	out, err := h.Service.PipelineSummary(c.Request.Context(), c.Param("id"), queryBool(c, "refresh"))
	if err != nil {
		respondError(c, h.Log, "[analytics][summary]", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *AnalyticsHandler) StageStats(c *gin.Context) {
	out, err := h.Service.StageStats(c.Request.Context(), c.Param("id"), queryBool(c, "refresh"))
	if err != nil {
		respondError(c, h.Log, "[analytics][stages]", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      Сделки по типам недвижимости
// @Tags         Analytics
// @Produce      json
// @Param        id       path      string  true   "ID воронки"
// @Param        refresh  query     bool    false  "Пересчитать"
// @Success      200      {array}   models.PropertyTypeAnalytics
// @Security     BearerAuth
// @Router       /deals/pipeline/{id}/property-types [get]
func (h *AnalyticsHandler) PropertyTypes(c *gin.Context) {
	out, err := h.Service.PropertyTypes(c.Request.Context(), c.Param("id"), queryBool(c, "refresh"))
	if err != nil {
		respondError(c, h.Log, "[analytics][property-types]", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *AnalyticsHandler) Funnel(c *gin.Context) {
	out, err := h.Service.Funnel(c.Request.Context(), c.Param("id"), queryBool(c, "refresh"))
	if err != nil {
		respondError(c, h.Log, "[analytics][funnel]", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	out, err := h.Service.Dashboard(c.Request.Context(), queryBool(c, "refresh"))
	if err != nil {
		respondError(c, h.Log, "[analytics][dashboard]", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Trend — GET /deals/trend?period=7days|30days|90days|custom&from=&to=
func (h *AnalyticsHandler) Trend(c *gin.Context) {
	period := pipeline.Period(c.DefaultQuery("period", string(pipeline.Period30Days)))
	switch period {
	case pipeline.Period7Days, pipeline.Period30Days, pipeline.Period90Days, pipeline.PeriodCustom:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown period"})
		return
	}
	from, err := queryTime(c, "from")
	if err != nil {
		badRequest(c, err)
		return
	}
	to, err := queryTime(c, "to")
	if err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.Service.Trend(c.Request.Context(), period, from, to, queryBool(c, "refresh"))
	if err != nil {
		respondError(c, h.Log, "[analytics][trend]", err)
		return
	}
	c.JSON(http.StatusOK, out)
}
