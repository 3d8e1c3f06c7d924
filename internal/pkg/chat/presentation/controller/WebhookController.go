package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	queueport "github.com/imogoapp/whatsapp-webhook/internal/infrastructure/queue/port"
	"github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/task"
	repoAdapter "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/adapter"
	repository "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/port"
)

// WebhookController owns the platform-facing surface: the verification
// handshake and payload ingestion.
type WebhookController struct {
	Repo        repository.ChatRepository
	Q           queueport.Client
	verifyToken string
}

func NewWebhookController(pool *pgxpool.Pool, client queueport.Client, verifyToken string) *WebhookController {
	return &WebhookController{
		Repo:        repoAdapter.NewPgChatRepository(pool),
		Q:           client,
		verifyToken: verifyToken,
	}
}

// HandleVerify answers the subscription handshake: echo the challenge only
// when the presented token matches, otherwise 403.
func (h *WebhookController) HandleVerify() gin.HandlerFunc {
	return func(c *gin.Context) {
		mode := c.Query("hub.mode")
		token := c.Query("hub.verify_token")
		challenge := c.Query("hub.challenge")

		if mode == "subscribe" && token != "" && token == h.verifyToken {
			c.String(http.StatusOK, challenge)
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid verify token"})
	}
}

// HandleReceive persists the raw payload and queues it for processing. The
// response is 200 as soon as the raw write committed; per-item processing
// outcomes are observable via logs only.
func (h *WebhookController) HandleReceive() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}
		if !json.Valid(body) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "body must be valid JSON"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		webhookID, err := h.Repo.SaveWebhook(ctx, body)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to store webhook"})
			return
		}

		payload, err := json.Marshal(task.ProcessWebhookTaskPayload{WebhookID: webhookID, Body: body})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode task payload"})
			return
		}

		opts := queueport.EnqueueOption{Queue: "webhook", MaxRetry: 10}
		if _, err := h.Q.Enqueue(ctx, queueport.Task{Type: task.ProcessWebhookTaskType, Payload: payload}, opts); err != nil {
			// The raw payload is already durable; report success and rely on
			// logs/metrics to catch the stalled processing.
			log.Error().Err(err).Int64("webhook_id", webhookID).Msg("webhook: enqueue failed")
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "webhook_id": webhookID})
	}
}
