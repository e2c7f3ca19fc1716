package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propertystore/internal/authz"
	"propertystore/internal/services"
)

type UserHandler struct {
	Service *services.UserService
	Log     logrus.FieldLogger
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"` // по умолчанию realtor
}

func NewUserHandler(service *services.UserService, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{Service: service, Log: log}
}

// Create — только для admin (проверяется в маршрутах).
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Role == "" {
		req.Role = authz.RoleRealtor
	}
	u, err := h.Service.Create(c.Request.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		respondError(c, h.Log, "[users][create]", err)
		return
	}
	h.Log.WithField("user_id", u.ID).WithField("role", u.Role).Info("[users][create] пользователь создан")
	c.JSON(http.StatusCreated, u)
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := currentUser(c)
	u, err := h.Service.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.Log, "[users][me]", err)
		return
	}
	c.JSON(http.StatusOK, u)
}
