package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/usecase"
	repoAdapter "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/adapter"
	repository "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/port"
)

// MessageController handles message creation and per-message mutations
// (status, bot-reply mark, flow state).
type MessageController struct {
	createUC     *usecase.CreateMessageUseCase
	statusUC     *usecase.UpdateMessageStatusUseCase
	botRepliedUC *usecase.MarkBotRepliedUseCase
	flowStateUC  *usecase.UpdateFlowStateUseCase
}

func NewMessageController(pool *pgxpool.Pool, resolver *usecase.ResolveSessionUseCase, pub usecase.Publisher) *MessageController {
	repo := repoAdapter.NewPgChatRepository(pool)
	return &MessageController{
		createUC:     usecase.NewCreateMessageUseCase(repo, resolver, pub),
		statusUC:     usecase.NewUpdateMessageStatusUseCase(repo),
		botRepliedUC: usecase.NewMarkBotRepliedUseCase(repo),
		flowStateUC:  usecase.NewUpdateFlowStateUseCase(repo),
	}
}

type createMessageRequest struct {
	WaID          string `json:"wa_id" binding:"required"`
	WaIDReceived  string `json:"wa_id_received" binding:"required"`
	PhoneNumberID string `json:"phone_number_id" binding:"required"`
	Content       string `json:"content" binding:"required"`
	IsUserMessage *bool  `json:"is_user_message"`
}

func (h *MessageController) HandleCreate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		isUser := true
		if req.IsUserMessage != nil {
			isUser = *req.IsUserMessage
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msg, err := h.createUC.Execute(ctx, usecase.CreateMessageInput{
			WaID:          req.WaID,
			WaIDReceived:  req.WaIDReceived,
			PhoneNumberID: req.PhoneNumberID,
			Content:       req.Content,
			IsUserMessage: isUser,
		})
		if err != nil {
			writeUseCaseError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "message created",
			"data": gin.H{
				"id":              msg.ID,
				"session_id":      msg.SessionID,
				"content":         msg.Content,
				"message_status":  msg.Status,
				"is_user_message": msg.IsUserMessage,
				"create_in":       msg.CreatedAt,
			},
		})
	}
}

type statusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *MessageController) HandleStatusUpdate() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := messageID(c)
		if !ok {
			return
		}
		var req statusUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.statusUC.Execute(ctx, id, req.Status); err != nil {
			writeMessageError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message_id": id, "status": req.Status})
	}
}

func (h *MessageController) HandleBotReplied() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := messageID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.botRepliedUC.Execute(ctx, id); err != nil {
			writeMessageError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message_id": id})
	}
}

type flowStateRequest struct {
	FlowState json.RawMessage `json:"flow_state" binding:"required"`
}

func (h *MessageController) HandleFlowState() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := messageID(c)
		if !ok {
			return
		}
		var req flowStateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.flowStateUC.Execute(ctx, id, req.FlowState); err != nil {
			writeMessageError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message_id": id})
	}
}

func messageID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("messageId"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "messageId must be a positive integer"})
		return 0, false
	}
	return id, true
}

func writeMessageError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		return
	}
	writeUseCaseError(c, err)
}
