package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propertystore/internal/cache"
)

const IdempotencyHeader = "Idempotency-Key"

type storedResponse struct {
	Pending     bool   `json:"pending"`
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

type recordingWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency повторяет первый ответ на запрос с тем же Idempotency-Key вместо
// повторного выполнения. Пока первый запрос не завершён, дубль получает 409.
// Ответы 5xx не запоминаются.
func Idempotency(c cache.Cache, ttl time.Duration, log logrus.FieldLogger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := ctx.GetHeader(IdempotencyHeader)
		switch ctx.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			key = ""
		}
		if key == "" || c == nil {
			ctx.Next()
			return
		}
		ck := cache.Key("idem", UserID(ctx), ctx.Request.Method, ctx.Request.URL.Path, key)
		rctx := ctx.Request.Context()

		pending, _ := json.Marshal(storedResponse{Pending: true})
		ok, err := c.SetNX(rctx, ck, pending, ttl)
		if err != nil {
			log.WithError(err).Warn("[http][idempotency] cache unavailable")
			ctx.Next()
			return
		}
		if !ok {
			raw, found, err := c.Get(rctx, ck)
			var prev storedResponse
			if err == nil && found && json.Unmarshal(raw, &prev) == nil && !prev.Pending {
				ctx.Header("Idempotent-Replay", "true")
				ctx.Data(prev.Status, prev.ContentType, prev.Body)
				ctx.Abort()
				return
			}
			ctx.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "request with this Idempotency-Key is in progress"})
			return
		}

		// если обработчик упал или ответил 5xx, ключ освобождается для повтора
		stored := false
		defer func() {
			if !stored {
				if err := c.Delete(context.WithoutCancel(rctx), ck); err != nil {
					log.WithError(err).Warn("[http][idempotency] release key failed")
				}
			}
		}()

		rw := &recordingWriter{ResponseWriter: ctx.Writer}
		ctx.Writer = rw
		ctx.Next()

		status := rw.Status()
		if status >= http.StatusInternalServerError {
			return
		}
		done, _ := json.Marshal(storedResponse{
			Status:      status,
			ContentType: rw.Header().Get("Content-Type"),
			Body:        rw.buf.Bytes(),
		})
		if err := c.Set(rctx, ck, done, ttl); err != nil {
			log.WithError(err).Warn("[http][idempotency] store response failed")
			return
		}
		stored = true
	}
}
