package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"todo-bot/internal/cache"
	"todo-bot/internal/middleware"
	"todo-bot/internal/models"
	"todo-bot/internal/queue"
	"todo-bot/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Deduper marks deliveries as seen. *cache.Dedup is the production implementation.
type Deduper interface {
	First(ctx context.Context, key string) bool
	Forget(ctx context.Context, key string)
	Ping(ctx context.Context) error
}

// Webhook receives platform events and queues them for the worker.
type Webhook struct {
	AppID  string
	Secret string
	Dedup  Deduper
	Queue  queue.Queue
}

// dedup falls back to a disabled *cache.Dedup when none is configured.
func (w *Webhook) dedup() Deduper {
	if w.Dedup == nil {
		return (*cache.Dedup)(nil)
	}
	return w.Dedup
}

// Receive handles POST /webhook. Everything except verification is answered
// right away; the work happens on the worker.
func (w *Webhook) Receive(c *gin.Context) {
	ctx := c.Request.Context()
	var ev models.Event
	if err := json.Unmarshal(middleware.RawBody(c), &ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event"})
		return
	}
	ctx = logger.WithEventID(ctx, ev.Key())

	if ev.Type == models.EventVerification {
		w.verify(c, ev.Challenge)
		return
	}
	if ev.UserID != "" && ev.UserID == w.AppID {
		c.Status(http.StatusOK)
		return
	}
	if ev.Type != models.EventAnnotationAdded {
		logger.Debug(ctx, "Ignoring event type", "type", ev.Type)
		c.Status(http.StatusOK)
		return
	}
	if err := decodeAnnotation(&ev); err != nil {
		logger.Warn(ctx, "Undecodable annotation payload", "error", err)
		c.Status(http.StatusOK)
		return
	}
	if !w.dedup().First(ctx, ev.Key()) {
		logger.Debug(ctx, "Duplicate delivery")
		c.Status(http.StatusOK)
		return
	}
	if err := w.Queue.Publish(ctx, ev); err != nil {
		logger.Error(ctx, "Event enqueue failed", "error", err)
		// the platform retries on 503; the retry must not look like a duplicate
		w.dedup().Forget(ctx, ev.Key())
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Event not queued"})
		return
	}
	c.Status(http.StatusOK)
}

// verify answers the platform's challenge, signing the exact response body.
func (w *Webhook) verify(c *gin.Context, challenge string) {
	body, err := json.Marshal(gin.H{"response": challenge})
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Header(middleware.SignatureHeader, middleware.Sign(w.Secret, body))
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func decodeAnnotation(ev *models.Event) error {
	var a models.Annotation
	if ev.AnnotationPayload != "" {
		if err := json.Unmarshal([]byte(ev.AnnotationPayload), &a); err != nil {
			return err
		}
	}
	if a.Type == "" {
		a.Type = ev.AnnotationType
	}
	ev.Annotation = &a
	return nil
}

// Health returns 200 if the process is alive. Used by load balancers.
func Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Ready returns 200 if the configured Redis is reachable. Used by K8s readiness probes.
func (w *Webhook) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := w.dedup().Ping(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Warn(ctx, "Readiness check failed", "error", err)
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unavailable"})
		return
	}
	c.String(http.StatusOK, "OK")
}
