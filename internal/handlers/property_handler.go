package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propertystore/internal/models"
	"propertystore/internal/services"
)

type PropertyHandler struct {
	Service *services.PropertyService
	Log     logrus.FieldLogger
}

func NewPropertyHandler(service *services.PropertyService, log logrus.FieldLogger) *PropertyHandler {
	return &PropertyHandler{Service: service, Log: log}
}

// splitQuery собирает значения из повторяющихся и comma-separated параметров.
func splitQuery(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func queryFloat(c *gin.Context, key string) (float64, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0, errors.New("invalid " + key)
	}
	return f, nil
}

func propertyFilter(c *gin.Context) (models.PropertyFilter, error) {
	f := models.PropertyFilter{Types: splitQuery(c, "type")}
	var err error
	for key, dst := range map[string]*float64{
		"priceMin": &f.PriceMin, "priceMax": &f.PriceMax,
		"areaMin": &f.AreaMin, "areaMax": &f.AreaMax,
	} {
		if *dst, err = queryFloat(c, key); err != nil {
			return f, err
		}
	}
	for _, r := range splitQuery(c, "rooms") {
		n, err := strconv.Atoi(r)
		if err != nil || n < 0 {
			return f, errors.New("invalid rooms")
		}
		f.Rooms = append(f.Rooms, n)
	}
	return f, nil
}

// @Summary      Каталог объектов
// @Description  Только активные объекты. Фильтры: type, priceMin, priceMax, areaMin, areaMax, rooms.
// @Tags         Properties
// @Produce      json
// @Param        type      query     string  false  "Типы через запятую"
// @Param        rooms     query     string  false  "Комнатность через запятую"
// @Success      200       {array}   models.Property
// @Failure      400       {object}  map[string]string
// @Router       /Properties [get]
func (h *PropertyHandler) List(c *gin.Context) {
	f, err := propertyFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	f.OnlyActive = true
	h.list(c, f)
}

// ListAll — то же для риелтора, включая снятые с публикации.
func (h *PropertyHandler) ListAll(c *gin.Context) {
	f, err := propertyFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	h.list(c, f)
}

func (h *PropertyHandler) list(c *gin.Context, f models.PropertyFilter) {
	list, err := h.Service.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.Log, "[properties][list]", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetByID публичный: неактивный объект посетителю не показываем.
func (h *PropertyHandler) GetByID(c *gin.Context) {
	p, err := h.Service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Log, "[properties][get]", err)
		return
	}
	if !p.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PropertyHandler) Create(c *gin.Context) {
	var req models.PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.Service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.Log, "[properties][create]", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PropertyHandler) Update(c *gin.Context) {
	var req models.PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.Service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.Log, "[properties][update]", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PropertyHandler) Delete(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.Log, "[properties][delete]", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PropertyHandler) AddImage(c *gin.Context) {
	var req models.PropertyImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	img, err := h.Service.AddImage(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.Log, "[properties][image]", err)
		return
	}
	c.JSON(http.StatusCreated, img)
}

func (h *PropertyHandler) DeleteImage(c *gin.Context) {
	if err := h.Service.DeleteImage(c.Request.Context(), c.Param("id"), c.Param("imageId")); err != nil {
		respondError(c, h.Log, "[properties][image]", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PropertyHandler) SetMainImage(c *gin.Context) {
	if err := h.Service.SetMainImage(c.Request.Context(), c.Param("id"), c.Param("imageId")); err != nil {
		respondError(c, h.Log, "[properties][image]", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImage — POST /FileUpload/property-image, multipart поле "file".
func (h *PropertyHandler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, h.Log, "[properties][upload]", err)
		return
	}
	defer f.Close()

	url, err := h.Service.UploadImage(c.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), fh.Size, f)
	if err != nil {
		respondError(c, h.Log, "[properties][upload]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
