package handlers

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propertystore/internal/authz"
	"propertystore/internal/models"
	"propertystore/internal/services"
)

// DocumentHandler обслуживает документы клиента. Клиент работает со своими
// документами (/client/documents), риелтор — с документами любого клиента
// (/clients/:id/documents).
type DocumentHandler struct {
	Service *services.DocumentService
	Log     logrus.FieldLogger
}

func NewDocumentHandler(service *services.DocumentService, log logrus.FieldLogger) *DocumentHandler {
	return &DocumentHandler{Service: service, Log: log}
}

func (h *DocumentHandler) owner(c *gin.Context) (clientID, uploadedBy string) {
	userID, role := currentUser(c)
	if role == authz.RoleClient {
		return userID, models.UploadedByClient
	}
	return c.Param("id"), models.UploadedByRealtor
}

func (h *DocumentHandler) List(c *gin.Context) {
	clientID, _ := h.owner(c)
	docs, err := h.Service.List(c.Request.Context(), clientID, queryString(c, "dealId"))
	if err != nil {
		respondError(c, h.Log, "[documents][list]", err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// @Summary      Загрузить документ
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        file      formData  file    true   "Файл"
// @Param        category  formData  string  false  "passport|contract|certificate|payment|other"
// @Param        dealId    formData  string  false  "ID сделки"
// @Success      201       {object}  models.ClientDocument
// @Failure      400       {object}  map[string]string
// @Security     BearerAuth
// @Router       /client/documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	clientID, uploadedBy := h.owner(c)
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, h.Log, "[documents][upload]", err)
		return
	}
	defer f.Close()

	var dealID *string
	if v := c.PostForm("dealId"); v != "" {
		dealID = &v
	}
	doc, err := h.Service.Upload(c.Request.Context(), clientID, uploadedBy, services.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
		Category:    c.PostForm("category"),
		DealID:      dealID,
	})
	if err != nil {
		respondError(c, h.Log, "[documents][upload]", err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) Download(c *gin.Context) {
	clientID, _ := h.owner(c)
	doc, rc, err := h.Service.Open(c.Request.Context(), clientID, c.Param("docId"))
	if err != nil {
		respondError(c, h.Log, "[documents][download]", err)
		return
	}
	defer rc.Close()

	ct := doc.FileType
	if ct == "" {
		ct = "application/octet-stream"
	}
	c.Header("Content-Type", ct)
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	if doc.FileSize > 0 {
		c.Header("Content-Length", strconv.FormatInt(doc.FileSize, 10))
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.Log.WithError(err).WithField("doc_id", doc.ID).Warn("[documents][download] передача прервана")
	}
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	clientID, _ := h.owner(c)
	if err := h.Service.Delete(c.Request.Context(), clientID, c.Param("docId")); err != nil {
		respondError(c, h.Log, "[documents][delete]", err)
		return
	}
	c.Status(http.StatusNoContent)
}
