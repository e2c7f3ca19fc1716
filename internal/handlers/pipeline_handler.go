package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propertystore/internal/models"
	"propertystore/internal/services"
)

type PipelineHandler struct {
	Service *services.PipelineService
	Log     logrus.FieldLogger
}

func NewPipelineHandler(service *services.PipelineService, log logrus.FieldLogger) *PipelineHandler {
	return &PipelineHandler{Service: service, Log: log}
}

func (h *PipelineHandler) List(c *gin.Context) {
	list, err := h.Service.List(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, "[pipelines][list]", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PipelineHandler) GetByID(c *gin.Context) {
	p, err := h.Service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Log, "[pipelines][get]", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PipelineHandler) Create(c *gin.Context) {
	var body models.Pipeline
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.Service.Create(c.Request.Context(), body)
	if err != nil {
		respondError(c, h.Log, "[pipelines][create]", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Stages — GET /dealstages/pipeline/:pipelineId, этапы по порядку.
func (h *PipelineHandler) Stages(c *gin.Context) {
	stages, err := h.Service.Stages(c.Request.Context(), c.Param("pipelineId"))
	if err != nil {
		respondError(c, h.Log, "[pipelines][stages]", err)
		return
	}
	c.JSON(http.StatusOK, stages)
}

func (h *PipelineHandler) AddStage(c *gin.Context) {
	var body models.DealStage
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	st, err := h.Service.AddStage(c.Request.Context(), c.Param("pipelineId"), body)
	if err != nil {
		respondError(c, h.Log, "[pipelines][add-stage]", err)
		return
	}
	c.JSON(http.StatusCreated, st)
}
