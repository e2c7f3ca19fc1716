package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propertystore/internal/middleware"
	"propertystore/internal/pipeline"
	"propertystore/internal/repositories"
	"propertystore/internal/services"
)

// statusFor переводит ошибку сервиса в HTTP-статус.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, pipeline.ErrTitleRequired),
		errors.Is(err, pipeline.ErrClientRequired),
		errors.Is(err, pipeline.ErrStageRequired),
		errors.Is(err, pipeline.ErrStageMismatch):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound), errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict),
		errors.Is(err, repositories.ErrRequestCompleted),
		errors.Is(err, pipeline.ErrDealClosed),
		errors.Is(err, pipeline.ErrSameStage),
		errors.Is(err, pipeline.ErrDealActive):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError пишет {"error": ...}. Текст внутренних ошибок наружу не отдаётся.
func respondError(c *gin.Context, log logrus.FieldLogger, tag string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		if log != nil {
			log.WithError(err).WithField("path", c.FullPath()).Error(tag + " internal error")
		}
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func currentUser(c *gin.Context) (userID, role string) {
	return middleware.UserID(c), middleware.Role(c)
}

func queryBool(c *gin.Context, key string) bool {
	b, _ := strconv.ParseBool(c.Query(key))
	return b
}

func queryString(c *gin.Context, key string) *string {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil
	}
	return &v
}

// queryTime принимает RFC3339 или просто дату YYYY-MM-DD.
func queryTime(c *gin.Context, key string) (*time.Time, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, errors.New("invalid " + key + ": expected RFC3339 or YYYY-MM-DD")
}

func pageParams(c *gin.Context) (limit, offset int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "100"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 100
	}
	return size, (page - 1) * size
}
