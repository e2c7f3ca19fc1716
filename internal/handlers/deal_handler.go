package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propertystore/internal/models"
	"propertystore/internal/services"
)

type DealHandler struct {
	Service *services.DealService
	Docs    *services.DocumentService
	Log     logrus.FieldLogger
}

func NewDealHandler(service *services.DealService, docs *services.DocumentService, log logrus.FieldLogger) *DealHandler {
	return &DealHandler{Service: service, Docs: docs, Log: log}
}

// @Summary      Создать сделку
// @Tags         Deals
// @Accept       json
// @Produce      json
// @Param        deal  body      models.DealRequest  true  "Сделка"
// @Success      201   {object}  models.Deal
// @Failure      400   {object}  map[string]string
// @Security     BearerAuth
// @Router       /deals [post]
func (h *DealHandler) Create(c *gin.Context) {
	var req models.DealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	deal, err := h.Service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.Log, "[deals][create]", err)
		return
	}
	c.JSON(http.StatusCreated, deal)
}

// Update меняет поля сделки. Этап через этот метод не меняется.
func (h *DealHandler) Update(c *gin.Context) {
	var req models.DealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	deal, err := h.Service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.Log, "[deals][update]", err)
		return
	}
	c.JSON(http.StatusOK, deal)
}

func (h *DealHandler) GetByID(c *gin.Context) {
	deal, err := h.Service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Log, "[deals][get]", err)
		return
	}
	c.JSON(http.StatusOK, deal)
}

// @Summary      Сделка с клиентом, этапом и историей
// @Tags         Deals
// @Produce      json
// @Param        id   path      string  true  "ID сделки"
// @Success      200  {object}  models.Deal
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /deals/{id}/with-details [get]
func (h *DealHandler) WithDetails(c *gin.Context) {
	deal, err := h.Service.GetWithDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Log, "[deals][details]", err)
		return
	}
	c.JSON(http.StatusOK, deal)
}

// List поддерживает фильтры pipelineId, clientId, stageId, active, from, to и пагинацию page/size.
func (h *DealHandler) List(c *gin.Context) {
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
	limit, offset := pageParams(c)
	f := models.DealFilter{
		PipelineID:  queryString(c, "pipelineId"),
		ClientID:    queryString(c, "clientId"),
		StageID:     queryString(c, "stageId"),
		ActiveOnly:  queryBool(c, "active"),
		CreatedFrom: from,
		CreatedTo:   to,
		Limit:       limit,
		Offset:      offset,
	}
	deals, err := h.Service.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.Log, "[deals][list]", err)
		return
	}
	c.JSON(http.StatusOK, deals)
}

func (h *DealHandler) Active(c *gin.Context) {
	deals, err := h.Service.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, "[deals][active]", err)
		return
	}
	c.JSON(http.StatusOK, deals)
}

func (h *DealHandler) ByPipeline(c *gin.Context) {
	deals, err := h.Service.ListByPipeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Log, "[deals][pipeline]", err)
		return
	}
	c.JSON(http.StatusOK, deals)
}

func (h *DealHandler) Overdue(c *gin.Context) {
	deals, err := h.Service.ListOverdue(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, "[deals][overdue]", err)
		return
	}
	c.JSON(http.StatusOK, deals)
}

// @Summary      Перевести сделку в другой этап
// @Description  Закрытая сделка не перемещается (409). Повтор с тем же Idempotency-Key возвращает первый ответ.
// @Tags         Deals
// @Accept       json
// @Produce      json
// @Param        id    path      string                       true  "ID сделки"
// @Param        move  body      models.MoveDealStageRequest  true  "Новый этап"
// @Success      200   {object}  models.Deal
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Security     BearerAuth
// @Router       /deals/{id}/move-stage [put]
func (h *DealHandler) MoveStage(c *gin.Context) {
	var req models.MoveDealStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	deal, err := h.Service.MoveStage(c.Request.Context(), c.Param("id"), req.NewStageID, req.Notes)
	if err != nil {
		respondError(c, h.Log, "[deals][move]", err)
		return
	}
	c.JSON(http.StatusOK, deal)
}

func (h *DealHandler) Close(c *gin.Context) {
	deal, err := h.Service.Close(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Log, "[deals][close]", err)
		return
	}
	c.JSON(http.StatusOK, deal)
}

func (h *DealHandler) Reopen(c *gin.Context) {
	deal, err := h.Service.Reopen(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Log, "[deals][reopen]", err)
		return
	}
	c.JSON(http.StatusOK, deal)
}

func (h *DealHandler) Delete(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.Log, "[deals][delete]", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SummaryPDF отдаёт PDF-сводку. PDF собирается в буфер целиком, чтобы при
// ошибке вернуть нормальный статус, а не обрезанный файл.
func (h *DealHandler) SummaryPDF(c *gin.Context) {
	id := c.Param("id")
	var buf bytes.Buffer
	if err := h.Docs.DealSummary(c.Request.Context(), id, &buf); err != nil {
		respondError(c, h.Log, "[deals][pdf]", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="deal-`+id+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
