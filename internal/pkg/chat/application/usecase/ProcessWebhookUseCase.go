package usecase

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	cacheport "github.com/imogoapp/whatsapp-webhook/internal/infrastructure/cache/port"
	"github.com/imogoapp/whatsapp-webhook/internal/infrastructure/realtime"
	chat "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/domain"
	repository "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/port"
)

const settingsCacheTTL = 5 * time.Minute

// ProcessWebhookUseCase is the event processor: it classifies every item in
// an inbound payload (message / status / contact-only), records it through
// the session resolver and repository, and emits fanout events.
//
// One item failing never aborts its siblings; outcomes are accumulated and
// only surfaced through logs and the returned ProcessOutcome.
type ProcessWebhookUseCase struct {
	Repo      repository.ChatRepository
	Cache     cacheport.Cache
	Resolver  *ResolveSessionUseCase
	Publisher Publisher

	now func() time.Time
}

func NewProcessWebhookUseCase(repo repository.ChatRepository, cache cacheport.Cache, resolver *ResolveSessionUseCase, pub Publisher) *ProcessWebhookUseCase {
	return &ProcessWebhookUseCase{
		Repo:      repo,
		Cache:     cache,
		Resolver:  resolver,
		Publisher: pub,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ProcessOutcome counts what happened per payload. Failures are item-level
// and already logged when Execute returns.
type ProcessOutcome struct {
	Messages        int
	Statuses        int
	StatusesSkipped int
	Contacts        int
	Failures        int
}

// Execute walks entries/changes/values and processes every item found.
func (uc *ProcessWebhookUseCase) Execute(ctx context.Context, payload chat.WebhookPayload) ProcessOutcome {
	var out ProcessOutcome
	for _, entry := range payload.Entries {
		for _, change := range entry.Changes {
			value := change.Value
			if len(value.Messages) > 0 {
				uc.processMessages(ctx, value, &out)
			}
			if len(value.Statuses) > 0 {
				uc.processStatuses(ctx, value, &out)
			}
			if len(value.Contacts) > 0 && len(value.Messages) == 0 && len(value.Statuses) == 0 {
				uc.processContactsOnly(ctx, value, &out)
			}
		}
	}
	return out
}

func (uc *ProcessWebhookUseCase) processMessages(ctx context.Context, value chat.ChangeValue, out *ProcessOutcome) {
	meta := value.Metadata
	contactName := ""
	if len(value.Contacts) > 0 {
		contactName = value.Contacts[0].Profile.Name
	}

	for i := range value.Messages {
		msg := &value.Messages[i]
		key := chat.ConversationKey{
			WaID:          msg.From,
			WaIDReceived:  meta.Receiver(),
			PhoneNumberID: meta.PhoneNumberID,
		}
		if !key.Valid() {
			log.Warn().Str("wam_id", msg.ID).Msg("webhook: message item missing conversation key fields, skipped")
			out.Failures++
			continue
		}

		ts := parseEpoch(msg.Timestamp, uc.now())
		name := contactName
		if name == "" {
			name = msg.From
		}

		if _, err := uc.upsertContact(ctx, msg.From, meta.PhoneNumberID, name, ts); err != nil {
			log.Error().Err(err).Str("wa_id", msg.From).Msg("webhook: contact upsert failed, item skipped")
			out.Failures++
			continue
		}

		session, err := uc.Resolver.Execute(ctx, key, ts)
		if err != nil {
			log.Error().Err(err).Str("wa_id", msg.From).Msg("webhook: session resolution failed, item skipped")
			out.Failures++
			continue
		}

		wamID := msg.ID
		m, err := chat.NewSessionMessage(chat.SessionMessage{
			SessionID:     session.ID,
			WaID:          msg.From,
			WaIDReceived:  key.WaIDReceived,
			PhoneNumberID: meta.PhoneNumberID,
			WamID:         &wamID,
			Content:       msg.RenderContent(),
			Payload:       msg.Raw,
			IsUserMessage: true,
			Status:        chat.StatusSent,
			CreatedAt:     ts,
		})
		if err != nil {
			log.Warn().Err(err).Str("wam_id", wamID).Msg("webhook: invalid message item, skipped")
			out.Failures++
			continue
		}

		saved, err := uc.Repo.AppendMessage(ctx, *m)
		if err != nil {
			log.Error().Err(err).Str("wam_id", wamID).Msg("webhook: message write failed, item skipped")
			out.Failures++
			continue
		}
		out.Messages++

		// The write is committed; everything below is best-effort notification.
		event := NewMessageEvent{
			Type:          eventNewMessage,
			PhoneNumberID: meta.PhoneNumberID,
			WaID:          msg.From,
			ContactName:   contactName,
			Message: NewMessageDetail{
				ID:            saved.ID,
				SessionID:     saved.SessionID,
				Content:       saved.Content,
				MessageType:   msg.Type,
				Timestamp:     ts.Unix(),
				IsUserMessage: true,
			},
		}
		uc.Publisher.Publish(realtime.LineTopic(meta.PhoneNumberID), event)
		uc.Publisher.Publish(realtime.TopicGlobal, event)
		uc.Publisher.Publish(realtime.ChatListTopic(meta.PhoneNumberID), ChatUpdatedEvent{
			Type:          eventChatUpdated,
			PhoneNumberID: meta.PhoneNumberID,
			WaID:          msg.From,
			ContactName:   contactName,
			LastMessage:   saved.Content,
			Timestamp:     ts.Unix(),
		})
	}
}

func (uc *ProcessWebhookUseCase) processStatuses(ctx context.Context, value chat.ChangeValue, out *ProcessOutcome) {
	meta := value.Metadata
	for _, st := range value.Statuses {
		if st.ID == "" || !chat.ValidStatus(st.Status) {
			log.Warn().Str("wam_id", st.ID).Str("status", st.Status).Msg("webhook: malformed status item, skipped")
			out.StatusesSkipped++
			continue
		}
		found, err := uc.Repo.UpdateMessageStatusByWamID(ctx, st.ID, chat.MessageStatus(st.Status))
		if err != nil {
			log.Error().Err(err).Str("wam_id", st.ID).Msg("webhook: status update failed, skipped")
			out.StatusesSkipped++
			continue
		}
		if !found {
			log.Info().Str("wam_id", st.ID).Msg("webhook: status references unknown message, skipped")
			out.StatusesSkipped++
			continue
		}
		out.Statuses++
		uc.Publisher.Publish(realtime.LineTopic(meta.PhoneNumberID), MessageStatusEvent{
			Type:          eventMessageStatus,
			PhoneNumberID: meta.PhoneNumberID,
			WamID:         st.ID,
			RecipientID:   st.RecipientID,
			Status:        st.Status,
		})
	}
}

func (uc *ProcessWebhookUseCase) processContactsOnly(ctx context.Context, value chat.ChangeValue, out *ProcessOutcome) {
	meta := value.Metadata
	for _, c := range value.Contacts {
		if c.WaID == "" || meta.PhoneNumberID == "" {
			out.Failures++
			continue
		}
		name := c.Profile.Name
		if name == "" {
			name = c.WaID
		}
		if _, err := uc.upsertContact(ctx, c.WaID, meta.PhoneNumberID, name, uc.now()); err != nil {
			log.Error().Err(err).Str("wa_id", c.WaID).Msg("webhook: contact upsert failed")
			out.Failures++
			continue
		}
		out.Contacts++
	}
}

func (uc *ProcessWebhookUseCase) upsertContact(ctx context.Context, waID, phoneNumberID, name string, ts time.Time) (*chat.Contact, error) {
	settings := uc.lineSettings(ctx, phoneNumberID)
	return uc.Repo.UpsertContact(ctx, chat.Contact{
		WaID:             waID,
		PhoneNumberID:    phoneNumberID,
		Name:             name,
		Profile:          settings.DefaultProfile,
		ActivateBot:      settings.DefaultBot,
		LastMessageEpoch: ts.Unix(),
	})
}

// lineSettings reads per-line configuration through the cache. Any failure
// falls back to conservative defaults: settings only tune how new contacts
// start out, they never gate ingestion.
func (uc *ProcessWebhookUseCase) lineSettings(ctx context.Context, phoneNumberID string) chat.LineSettings {
	defaults := chat.LineSettings{PhoneNumberID: phoneNumberID, DefaultProfile: "human"}

	cacheKey := "settings:" + phoneNumberID
	if uc.Cache != nil {
		if raw, err := uc.Cache.Get(ctx, cacheKey); err == nil {
			var s chat.LineSettings
			if json.Unmarshal([]byte(raw), &s) == nil {
				return s
			}
		}
	}

	s, err := uc.Repo.GetLineSettings(ctx, phoneNumberID)
	if err != nil {
		log.Warn().Err(err).Str("phone_number_id", phoneNumberID).Msg("webhook: line settings lookup failed, using defaults")
		return defaults
	}
	if s == nil {
		return defaults
	}

	if uc.Cache != nil {
		if raw, err := json.Marshal(s); err == nil {
			if err := uc.Cache.Set(ctx, cacheKey, string(raw), settingsCacheTTL); err != nil {
				log.Debug().Err(err).Msg("webhook: settings cache write failed")
			}
		}
	}
	return *s
}

// parseEpoch converts the platform's epoch-seconds string, falling back to
// the provided instant on garbage.
func parseEpoch(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil || sec <= 0 {
		return fallback
	}
	return time.Unix(sec, 0).UTC()
}
