package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propertystore/internal/models"
	"propertystore/internal/services"
)

type ClientHandler struct {
	Service        *services.ClientService
	RequestService *services.RequestService
	Log            logrus.FieldLogger
}

func NewClientHandler(service *services.ClientService, requests *services.RequestService, log logrus.FieldLogger) *ClientHandler {
	return &ClientHandler{Service: service, RequestService: requests, Log: log}
}

func (h *ClientHandler) Create(c *gin.Context) {
	var req models.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	client, err := h.Service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.Log, "[clients][create]", err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *ClientHandler) Update(c *gin.Context) {
	var req models.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	client, err := h.Service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.Log, "[clients][update]", err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) GetByID(c *gin.Context) {
	client, err := h.Service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Log, "[clients][get]", err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) List(c *gin.Context) {
	limit, offset := pageParams(c)
	clients, err := h.Service.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, h.Log, "[clients][list]", err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (h *ClientHandler) Delete(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.Log, "[clients][delete]", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Requests — заявки клиента.
func (h *ClientHandler) Requests(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.Service.GetByID(c.Request.Context(), id); err != nil {
		respondError(c, h.Log, "[clients][requests]", err)
		return
	}
	list, err := h.RequestService.ListByClient(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, "[clients][requests]", err)
		return
	}
	c.JSON(http.StatusOK, list)
}
