package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/usecase"
	repoAdapter "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/adapter"
)

// ChatListController serves the active-chats view for a line.
type ChatListController struct {
	UC *usecase.GetActiveChatsUseCase
}

func NewChatListController(pool *pgxpool.Pool) *ChatListController {
	repo := repoAdapter.NewPgChatRepository(pool)
	return &ChatListController{UC: usecase.NewGetActiveChatsUseCase(repo)}
}

func (h *ChatListController) HandleActiveChats() gin.HandlerFunc {
	return func(c *gin.Context) {
		in := usecase.GetActiveChatsInput{
			PhoneNumberID: c.Param("phoneNumberId"),
			Skip:          intQuery(c, "skip", 0),
			Limit:         intQuery(c, "limit", 50),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := h.UC.Execute(ctx, in)
		if err != nil {
			writeUseCaseError(c, err)
			return
		}

		chats := make([]gin.H, 0, len(result.Chats))
		for _, ch := range result.Chats {
			chats = append(chats, gin.H{
				"wa_id":              ch.WaID,
				"contact_name":       ch.ContactName,
				"phone_number_id":    ch.PhoneNumberID,
				"total_sessions":     ch.TotalSessions,
				"total_messages":     ch.TotalMessages,
				"user_messages":      ch.UserMessages,
				"bot_messages":       ch.BotMessages,
				"bot_replies":        ch.BotReplies,
				"has_active_session": ch.HasActiveSession,
				"last_message_at":    ch.LastMessageAt,
				"session_expires_at": ch.SessionExpiresAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"phone_number_id":    in.PhoneNumberID,
			"total_active_chats": result.Total,
			"returned":           len(chats),
			"skip":               in.Skip,
			"limit":              in.Limit,
			"data":               chats,
		})
	}
}
