package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propertystore/internal/models"
	"propertystore/internal/services"
)

type RequestHandler struct {
	Service *services.RequestService
	Log     logrus.FieldLogger
}

func NewRequestHandler(service *services.RequestService, log logrus.FieldLogger) *RequestHandler {
	return &RequestHandler{Service: service, Log: log}
}

// @Summary      Оставить заявку
// @Description  Публичная форма сайта. Клиент ищется по телефону или создаётся.
// @Tags         Requests
// @Accept       json
// @Produce      json
// @Param        request  body      models.RequestRequest  true  "Заявка"
// @Success      201      {object}  models.Request
// @Failure      400      {object}  map[string]string
// @Router       /Requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	var req models.RequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.Service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.Log, "[requests][create]", err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// List — все заявки или только со статусом из /status/:status либо ?status=.
func (h *RequestHandler) List(c *gin.Context) {
	var (
		list []models.Request
		err  error
	)
	st := c.Param("status")
	if st == "" {
		st = c.Query("status")
	}
	if st != "" {
		list, err = h.Service.ListByStatus(c.Request.Context(), models.RequestStatus(st))
	} else {
		list, err = h.Service.List(c.Request.Context())
	}
	if err != nil {
		respondError(c, h.Log, "[requests][list]", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *RequestHandler) GetByID(c *gin.Context) {
	out, err := h.Service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Log, "[requests][get]", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type updateRequestStatusBody struct {
	Status models.RequestStatus `json:"status" binding:"required"`
}

func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	var body updateRequestStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	id := c.Param("id")
	if err := h.Service.UpdateStatus(c.Request.Context(), id, body.Status); err != nil {
		respondError(c, h.Log, "[requests][status]", err)
		return
	}
	out, err := h.Service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, "[requests][status]", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Promote создаёт сделку из заявки; заявка становится completed.
func (h *RequestHandler) Promote(c *gin.Context) {
	var body models.PromoteRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	deal, err := h.Service.Promote(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		respondError(c, h.Log, "[requests][promote]", err)
		return
	}
	c.JSON(http.StatusCreated, deal)
}
