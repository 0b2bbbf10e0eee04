package idempotency

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thuexe/service-rental/internal/platform/domain"
)

const (
	// HeaderKey is the request header clients set to make an action safe to retry.
	HeaderKey = "Idempotency-Key"
	// HeaderReplayed marks a response served from the store.
	HeaderReplayed = "Idempotent-Replayed"
)

type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Middleware replays the stored response for a repeated Idempotency-Key.
// Keys are scoped by scope(c) (typically the caller) and the request path.
// The key is claimed before the handler runs, so a concurrent duplicate gets 409
// instead of executing twice. Server errors are not recorded so the client can retry them.
func Middleware(store *Store, scope func(*gin.Context) string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderKey)
		if key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		storeKey := c.Request.URL.Path + "|" + key
		if scope != nil {
			storeKey = scope(c) + "|" + storeKey
		}

		rec, claimed, err := store.Claim(storeKey)
		if err != nil {
			log.Warn("idempotency claim failed", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if !claimed {
			if rec.InFlight {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{
					"success": false,
					"message": "a request with this idempotency key is still in progress",
					"code":    domain.CodeConflict,
				})
				return
			}
			c.Header(HeaderReplayed, "true")
			c.Data(rec.Status, rec.ContentType, rec.Body)
			c.Abort()
			return
		}

		recorded := false
		defer func() {
			if recorded {
				return
			}
			if err := store.Release(storeKey); err != nil {
				log.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
			}
		}()

		w := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		status := w.Status()
		if status >= http.StatusInternalServerError {
			return
		}
		if err := store.Complete(storeKey, Record{
			Status:      status,
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
		}); err != nil {
			log.Warn("failed to record idempotent response", zap.String("key", key), zap.Error(err))
			return
		}
		recorded = true
	}
}
