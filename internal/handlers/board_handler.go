package handlers

import (
	"github.com/gin-gonic/gin"

	"propertystore/internal/realtime"
)

type BoardHandler struct {
	Hub *realtime.BoardHub
}

func NewBoardHandler(hub *realtime.BoardHub) *BoardHandler {
	return &BoardHandler{Hub: hub}
}

// ServeWS — /ws/board?pipelineId=... , пуш перемещений сделок по доске.
// Без pipelineId приходят изменения всех воронок.
func (h *BoardHandler) ServeWS(c *gin.Context) {
	h.Hub.ServeWS(c.Writer, c.Request, c.Query("pipelineId"))
}
