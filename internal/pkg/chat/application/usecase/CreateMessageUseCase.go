package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/imogoapp/whatsapp-webhook/internal/infrastructure/realtime"
	chat "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/domain"
	repository "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/port"
)

// CreateMessageInput carries a message produced inside the platform (operator
// or bot reply) rather than received from the webhook.
type CreateMessageInput struct {
	WaID          string
	WaIDReceived  string
	PhoneNumberID string
	Content       string
	IsUserMessage bool
}

// CreateMessageUseCase appends a message to the conversation's active session,
// resolving or opening the session exactly like webhook ingestion does.
type CreateMessageUseCase struct {
	Repo      repository.ChatRepository
	Resolver  *ResolveSessionUseCase
	Publisher Publisher
}

func NewCreateMessageUseCase(repo repository.ChatRepository, resolver *ResolveSessionUseCase, pub Publisher) *CreateMessageUseCase {
	return &CreateMessageUseCase{Repo: repo, Resolver: resolver, Publisher: pub}
}

func (uc *CreateMessageUseCase) Execute(ctx context.Context, in CreateMessageInput) (*chat.SessionMessage, error) {
	key := chat.ConversationKey{WaID: in.WaID, WaIDReceived: in.WaIDReceived, PhoneNumberID: in.PhoneNumberID}
	if !key.Valid() {
		return nil, chat.ErrMissingIdentity
	}
	if in.Content == "" {
		return nil, fmt.Errorf("content is required")
	}

	now := time.Now().UTC()
	session, err := uc.Resolver.Execute(ctx, key, now)
	if err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(map[string]any{
		"content":         in.Content,
		"is_user_message": in.IsUserMessage,
	})

	m, err := chat.NewSessionMessage(chat.SessionMessage{
		SessionID:     session.ID,
		WaID:          in.WaID,
		WaIDReceived:  in.WaIDReceived,
		PhoneNumberID: in.PhoneNumberID,
		Content:       in.Content,
		Payload:       payload,
		IsUserMessage: in.IsUserMessage,
		Status:        chat.StatusSent,
		CreatedAt:     now,
	})
	if err != nil {
		return nil, err
	}

	saved, err := uc.Repo.AppendMessage(ctx, *m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if uc.Publisher != nil {
		event := NewMessageEvent{
			Type:          eventNewMessage,
			PhoneNumberID: in.PhoneNumberID,
			WaID:          in.WaID,
			Message: NewMessageDetail{
				ID:            saved.ID,
				SessionID:     saved.SessionID,
				Content:       saved.Content,
				MessageType:   "text",
				Timestamp:     now.Unix(),
				IsUserMessage: in.IsUserMessage,
			},
		}
		uc.Publisher.Publish(realtime.LineTopic(in.PhoneNumberID), event)
		uc.Publisher.Publish(realtime.TopicGlobal, event)
		uc.Publisher.Publish(realtime.ChatListTopic(in.PhoneNumberID), ChatUpdatedEvent{
			Type:          eventChatUpdated,
			PhoneNumberID: in.PhoneNumberID,
			WaID:          in.WaID,
			LastMessage:   saved.Content,
			Timestamp:     now.Unix(),
		})
	}
	return saved, nil
}
