package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propertystore/internal/services"
)

// PortalHandler — личный кабинет клиента. ID клиента берётся из токена.
type PortalHandler struct {
	Portal *services.PortalService
	Log    logrus.FieldLogger
}

func NewPortalHandler(portal *services.PortalService, log logrus.FieldLogger) *PortalHandler {
	return &PortalHandler{Portal: portal, Log: log}
}

func (h *PortalHandler) Profile(c *gin.Context) {
	clientID, _ := currentUser(c)
	client, err := h.Portal.Profile(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, h.Log, "[portal][profile]", err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *PortalHandler) Deals(c *gin.Context) {
	clientID, _ := currentUser(c)
	deals, err := h.Portal.ListDeals(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, h.Log, "[portal][deals]", err)
		return
	}
	c.JSON(http.StatusOK, deals)
}

func (h *PortalHandler) Deal(c *gin.Context) {
	clientID, _ := currentUser(c)
	deal, err := h.Portal.Deal(c.Request.Context(), clientID, c.Param("id"))
	if err != nil {
		respondError(c, h.Log, "[portal][deal]", err)
		return
	}
	c.JSON(http.StatusOK, deal)
}
