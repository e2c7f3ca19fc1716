package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propertystore/internal/models"
	"propertystore/internal/services"
)

type AuthHandler struct {
	Auth   *services.AuthService
	Portal *services.PortalService
	Log    logrus.FieldLogger
}

func NewAuthHandler(auth *services.AuthService, portal *services.PortalService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Auth: auth, Portal: portal, Log: log}
}

// @Summary      Вход риелтора
// @Description  Возвращает JWT для заголовка Authorization: Bearer
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Данные для входа"
// @Success      200    {object}  models.AuthResponse
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if statusFor(err) == http.StatusUnauthorized {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		respondError(c, h.Log, "[auth][login]", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      Вход клиента в личный кабинет
// @Tags         Client portal
// @Accept       json
// @Produce      json
// @Param        login  body      models.ClientLoginRequest  true  "Телефон и пароль"
// @Success      200    {object}  models.ClientAuthResponse
// @Failure      401    {object}  map[string]string
// @Router       /client/auth/login [post]
func (h *AuthHandler) ClientLogin(c *gin.Context) {
	var req models.ClientLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.Portal.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		if statusFor(err) == http.StatusUnauthorized {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid login or password"})
			return
		}
		respondError(c, h.Log, "[portal][login]", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Activate — риелтор открывает клиенту кабинет: POST /client/auth/activate?clientId=
func (h *AuthHandler) Activate(c *gin.Context) {
	clientID := c.Query("clientId")
	if clientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "clientId is required"})
		return
	}
	var req models.ActivateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	acc, err := h.Portal.Activate(c.Request.Context(), clientID, req.TemporaryPassword)
	if err != nil {
		respondError(c, h.Log, "[portal][activate]", err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	clientID, _ := currentUser(c)
	if err := h.Portal.ChangePassword(c.Request.Context(), clientID, req.NewPassword); err != nil {
		respondError(c, h.Log, "[portal][password]", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Consent(c *gin.Context) {
	var req models.ConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	clientID, _ := currentUser(c)
	if err := h.Portal.Consent(c.Request.Context(), clientID, req, c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondError(c, h.Log, "[portal][consent]", err)
		return
	}
	c.Status(http.StatusNoContent)
}
