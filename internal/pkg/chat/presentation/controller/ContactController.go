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

// ContactController is the thin read/update surface over contacts created by
// ingestion.
type ContactController struct {
	getUC    *usecase.GetContactsUseCase
	updateUC *usecase.UpdateContactUseCase
}

func NewContactController(pool *pgxpool.Pool) *ContactController {
	repo := repoAdapter.NewPgChatRepository(pool)
	return &ContactController{
		getUC:    usecase.NewGetContactsUseCase(repo),
		updateUC: usecase.NewUpdateContactUseCase(repo),
	}
}

func (h *ContactController) HandleListByPhone() gin.HandlerFunc {
	return func(c *gin.Context) {
		phoneNumberID := c.Param("phoneNumberId")
		skip := intQuery(c, "skip", 0)
		limit := intQuery(c, "limit", 100)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		contacts, err := h.getUC.ByPhoneNumber(ctx, phoneNumberID, skip, limit)
		if err != nil {
			writeUseCaseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"total": len(contacts),
			"skip":  skip,
			"limit": limit,
			"data":  contactsJSON(contacts),
		})
	}
}

func (h *ContactController) HandleGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := contactID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		contact, err := h.getUC.ByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
			return
		}
		if err != nil {
			writeUseCaseError(c, err)
			return
		}
		c.JSON(http.StatusOK, contactJSON(*contact))
	}
}

type contactNameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *ContactController) HandleRename() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := contactID(c)
		if !ok {
			return
		}
		var req contactNameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.update(c, usecase.UpdateContactInput{ContactID: id, Name: &req.Name})
	}
}

// HandleSetBot flips the bot flag to enabled.
func (h *ContactController) HandleSetBot(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := contactID(c)
		if !ok {
			return
		}
		h.update(c, usecase.UpdateContactInput{ContactID: id, ActivateBot: &enabled})
	}
}

func (h *ContactController) HandleSetAutomaticMessage(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := contactID(c)
		if !ok {
			return
		}
		h.update(c, usecase.UpdateContactInput{ContactID: id, ActivateAutoMsg: &enabled})
	}
}

func (h *ContactController) update(c *gin.Context, in usecase.UpdateContactInput) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	err := h.updateUC.Execute(ctx, in)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
		return
	}
	if err != nil {
		writeUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "contact_id": in.ContactID})
}

func contactID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("contactId"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contactId must be a positive integer"})
		return 0, false
	}
	return id, true
}

func contactJSON(ct chat.Contact) gin.H {
	return gin.H{
		"id":                         ct.ID,
		"wa_id":                      ct.WaID,
		"create_for_phone_number":    ct.PhoneNumberID,
		"name":                       ct.Name,
		"profile":                    ct.Profile,
		"activate_bot":               ct.ActivateBot,
		"activate_automatic_message": ct.ActivateAutoMsg,
		"create_in":                  ct.CreatedAt,
		"last_message":               ct.LastMessageAt,
		"last_message_timestamp":     ct.LastMessageEpoch,
	}
}

func contactsJSON(contacts []chat.Contact) []gin.H {
	out := make([]gin.H, 0, len(contacts))
	for _, ct := range contacts {
		out = append(out, contactJSON(ct))
	}
	return out
}
