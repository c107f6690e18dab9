// Package webhook provides the inbound Messenger webhook endpoints: the
// subscription verification handshake and the signed event receiver
// that fans entries out to the bot processor.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/garyellow/coast-messenger-go/internal/ctxutil"
	apperrors "github.com/garyellow/coast-messenger-go/internal/errors"
	"github.com/garyellow/coast-messenger-go/internal/events"
	"github.com/garyellow/coast-messenger-go/internal/logger"
	"github.com/garyellow/coast-messenger-go/internal/metrics"
)

// eventReceivedBody acknowledges a page webhook delivery.
const eventReceivedBody = "EVENT_RECEIVED"

// EventProcessor consumes one messaging event. *bot.Processor satisfies
// this.
type EventProcessor interface {
	HandleEvent(ctx context.Context, ev *events.Event)
}

// Handler handles Messenger webhook requests.
type Handler struct {
	appSecret   string
	verifyToken string
	processor   EventProcessor
	metrics     *metrics.Metrics
	logger      *logger.Logger

	maxEventsPerWebhook int
	eventTimeout        time.Duration

	wg sync.WaitGroup
}

// HandlerConfig holds configuration for creating a new Handler.
type HandlerConfig struct {
	AppSecret   string
	VerifyToken string
	Processor   EventProcessor
	Metrics     *metrics.Metrics
	Logger      *logger.Logger

	// MaxEventsPerWebhook caps the entries accepted per delivery.
	MaxEventsPerWebhook int

	// EventTimeout bounds the processing of one messaging event.
	EventTimeout time.Duration
}

// NewHandler creates a webhook handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		appSecret:           cfg.AppSecret,
		verifyToken:         cfg.VerifyToken,
		processor:           cfg.Processor,
		metrics:             cfg.Metrics,
		logger:              cfg.Logger.WithModule("webhook"),
		maxEventsPerWebhook: cfg.MaxEventsPerWebhook,
		eventTimeout:        cfg.EventTimeout,
	}
}

// HandleVerify is the Gin handler for the GET verification handshake.
// The platform sends hub.mode=subscribe with the configured verify
// token; a correct token is answered by echoing hub.challenge.
func (h *Handler) HandleVerify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		h.logger.Info("Webhook verified")
		c.String(http.StatusOK, challenge)
		return
	}

	h.logger.WithField("mode", mode).Warn("Webhook verification rejected")
	c.Status(http.StatusForbidden)
}

// HandleEvents is the Gin handler for POST webhook deliveries. The
// signature is checked over the raw body before anything is parsed;
// valid page deliveries are acknowledged immediately and processed
// asynchronously so slow handlers never trigger platform redelivery.
func (h *Handler) HandleEvents(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read webhook body")
		c.Status(http.StatusInternalServerError)
		return
	}

	if err := VerifySignature(h.appSecret, raw, c.GetHeader(SignatureHeader)); err != nil {
		if errors.Is(err, apperrors.ErrMissingSecret) {
			h.logger.Error("App secret not configured; rejecting webhook")
		} else {
			h.logger.Warn("Invalid webhook signature")
		}
		h.metrics.RecordHTTPError("invalid_signature", "webhook")
		c.Status(http.StatusForbidden)
		return
	}

	var body events.Body
	if err := json.Unmarshal(raw, &body); err != nil {
		h.logger.WithError(err).Warn("Malformed webhook body")
		c.Status(http.StatusBadRequest)
		return
	}

	if body.Object != "page" {
		h.logger.WithField("object", body.Object).Debug("Ignoring non-page webhook object")
		c.Status(http.StatusNotFound)
		return
	}

	c.String(http.StatusOK, eventReceivedBody)

	entries := body.Entry
	if len(entries) > h.maxEventsPerWebhook {
		h.logger.WithField("entry_count", len(entries)).
			WithField("limit", h.maxEventsPerWebhook).
			Warn("Too many entries in webhook batch; truncating")
		entries = entries[:h.maxEventsPerWebhook]
	}

	batchID := uuid.NewString()
	h.wg.Go(func() {
		h.processBatch(batchID, entries)
	})
}

// processBatch walks a delivery's entries after the HTTP response has
// been sent. Each event gets its own timeout and recover so one bad
// event cannot take down its siblings.
func (h *Handler) processBatch(batchID string, entries []events.Entry) {
	log := h.logger.WithRequestID(batchID)

	for _, entry := range entries {
		if len(entry.Changes) > 0 {
			log.WithField("page_id", entry.ID).Debug("Skipping feed change entry")
		}
		for i := range entry.Messaging {
			h.processEvent(batchID, log, &entry.Messaging[i])
		}
	}
}

func (h *Handler) processEvent(batchID string, log *logger.Logger, ev *events.Event) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Panic while processing event")
		}
	}()

	ctx := ctxutil.WithRequestID(context.Background(), batchID)
	if key := ev.SenderKey(); key != "" {
		if ev.IsGuestUser() {
			ctx = ctxutil.WithUserRef(ctx, key)
		} else {
			ctx = ctxutil.WithUserID(ctx, key)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, h.eventTimeout)
	defer cancel()

	h.processor.HandleEvent(ctx, ev)
}

// Shutdown waits for in-flight batches to finish, or returns early when
// ctx expires.
func (h *Handler) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.wg.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
