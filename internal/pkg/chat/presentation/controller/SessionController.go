package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/domain"
	"github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/usecase"
	repoAdapter "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/adapter"
	repository "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/port"
)

// SessionController serves session and conversation reads.
type SessionController struct {
	userSessionsUC  *usecase.GetUserSessionsUseCase
	messagesUC      *usecase.GetSessionMessagesUseCase
	activeSessionUC *usecase.GetActiveSessionUseCase
	conversationUC  *usecase.GetConversationUseCase
}

func NewSessionController(pool *pgxpool.Pool) *SessionController {
	repo := repoAdapter.NewPgChatRepository(pool)
	return &SessionController{
		userSessionsUC:  usecase.NewGetUserSessionsUseCase(repo),
		messagesUC:      usecase.NewGetSessionMessagesUseCase(repo),
		activeSessionUC: usecase.NewGetActiveSessionUseCase(repo),
		conversationUC:  usecase.NewGetConversationUseCase(repo),
	}
}

// HandleUserSessions lists the latest sessions for a user on a line.
func (h *SessionController) HandleUserSessions() gin.HandlerFunc {
	return func(c *gin.Context) {
		waID := c.Param("waId")
		phoneNumberID := c.Query("phone_number_id")
		limit := intQuery(c, "limit", 10)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		sessions, err := h.userSessionsUC.Execute(ctx, usecase.GetUserSessionsInput{
			WaID: waID, PhoneNumberID: phoneNumberID, Limit: limit,
		})
		if err != nil {
			writeUseCaseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"wa_id":           waID,
			"phone_number_id": phoneNumberID,
			"total":           len(sessions),
			"data":            sessionsJSON(sessions),
		})
	}
}

// HandleSessionMessages lists all messages of a session.
func (h *SessionController) HandleSessionMessages() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("sessionId")

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msgs, err := h.messagesUC.Execute(ctx, sessionID)
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		if err != nil {
			writeUseCaseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"session_id": sessionID,
			"total":      len(msgs),
			"messages":   messagesJSON(msgs),
		})
	}
}

// HandleActiveSession looks up the live session for a conversation key.
func (h *SessionController) HandleActiveSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := chat.ConversationKey{
			WaID:          c.Query("wa_id"),
			WaIDReceived:  c.Query("wa_id_received"),
			PhoneNumberID: c.Query("phone_number_id"),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		session, err := h.activeSessionUC.Execute(ctx, key)
		if err != nil {
			writeUseCaseError(c, err)
			return
		}
		if session == nil {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "no active session", "data": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "active session found", "data": sessionJSON(*session)})
	}
}

// HandleConversation returns the merged message timeline across sessions.
func (h *SessionController) HandleConversation() gin.HandlerFunc {
	return func(c *gin.Context) {
		in := usecase.GetConversationInput{
			WaID:          c.Query("wa_id"),
			PhoneNumberID: c.Query("phone_number_id"),
			Limit:         intQuery(c, "limit", 50),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		conv, err := h.conversationUC.Execute(ctx, in)
		if err != nil {
			writeUseCaseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"wa_id":           in.WaID,
			"phone_number_id": in.PhoneNumberID,
			"total_sessions":  len(conv.Sessions),
			"total_messages":  len(conv.Messages),
			"sessions":        sessionsJSON(conv.Sessions),
			"messages":        messagesJSON(conv.Messages),
		})
	}
}

func sessionJSON(s chat.Session) gin.H {
	return gin.H{
		"session_id":      s.ID,
		"wa_id":           s.WaID,
		"wa_id_received":  s.WaIDReceived,
		"phone_number_id": s.PhoneNumberID,
		"created_at":      s.CreatedAt,
		"expires_at":      s.ExpiresAt,
		"is_active":       s.Active,
	}
}

func sessionsJSON(sessions []chat.Session) []gin.H {
	out := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionJSON(s))
	}
	return out
}

func messagesJSON(msgs []chat.SessionMessage) []gin.H {
	out := make([]gin.H, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, gin.H{
			"id":              m.ID,
			"session_id":      m.SessionID,
			"wa_id":           m.WaID,
			"wa_id_received":  m.WaIDReceived,
			"phone_number_id": m.PhoneNumberID,
			"content":         m.Content,
			"is_user_message": m.IsUserMessage,
			"message_status":  m.Status,
			"bot_replied":     m.BotReplied,
			"is_active":       m.Active,
			"create_in":       m.CreatedAt,
			"updated_at":      m.UpdatedAt,
		})
	}
	return out
}

func intQuery(c *gin.Context, name string, def int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

// writeUseCaseError maps use case failures onto HTTP statuses.
func writeUseCaseError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, usecase.ErrPersistence) {
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
