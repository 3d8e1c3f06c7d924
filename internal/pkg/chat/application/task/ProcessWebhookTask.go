package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	qport "github.com/imogoapp/whatsapp-webhook/internal/infrastructure/queue/port"
	chat "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/domain"
	"github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/usecase"
)

// ProcessWebhookTaskType is the queue task name for processing a stored
// webhook payload.
const ProcessWebhookTaskType = "webhook:process"

// ProcessWebhookTaskPayload is the JSON payload transported via the queue.
// Body is the raw webhook exactly as received; WebhookID points at the
// already-persisted copy.
type ProcessWebhookTaskPayload struct {
	WebhookID int64           `json:"webhookId"`
	Body      json.RawMessage `json:"body"`
}

// RegisterProcessWebhookTask binds the task handler to the provided server.
// The raw payload was durably stored before enqueueing, so a malformed body
// is dropped rather than retried; only never-decoded garbage ends up here.
func RegisterProcessWebhookTask(srv qport.Server, uc *usecase.ProcessWebhookUseCase) {
	srv.Register(ProcessWebhookTaskType, func(ctx context.Context, t qport.Task) error {
		var p ProcessWebhookTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return err
		}

		var payload chat.WebhookPayload
		if err := json.Unmarshal(p.Body, &payload); err != nil {
			log.Warn().Err(err).Int64("webhook_id", p.WebhookID).Msg("webhook task: undecodable payload, dropped")
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		out := uc.Execute(ctx, payload)
		log.Info().
			Int64("webhook_id", p.WebhookID).
			Int("messages", out.Messages).
			Int("statuses", out.Statuses).
			Int("statuses_skipped", out.StatusesSkipped).
			Int("contacts", out.Contacts).
			Int("failures", out.Failures).
			Msg("webhook task: processed")
		return nil
	})
}
