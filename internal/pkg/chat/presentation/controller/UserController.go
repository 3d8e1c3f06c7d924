package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	emailport "github.com/imogoapp/whatsapp-webhook/internal/infrastructure/email/port"
	"github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/usecase"
	userAdapter "github.com/imogoapp/whatsapp-webhook/internal/repository/adapter"
	userport "github.com/imogoapp/whatsapp-webhook/internal/repository/port"
)

// UserController exposes the password reset flow for operator accounts.
type UserController struct {
	resetUC *usecase.ResetPasswordUseCase
}

func NewUserController(pool *pgxpool.Pool, sender emailport.Sender) *UserController {
	users := userAdapter.NewPgUserRepository(pool)
	return &UserController{resetUC: usecase.NewResetPasswordUseCase(users, sender)}
}

type resetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// HandleResetPassword rotates the credential and reports whether the
// notification email went out. A failed email still returns 200: the
// password already changed and the caller must know that.
func (h *UserController) HandleResetPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		result, err := h.resetUC.Execute(ctx, req.Email)
		if errors.Is(err, userport.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		if err != nil {
			writeUseCaseError(c, err)
			return
		}

		msg := "password reset and email sent"
		if !result.EmailSent {
			msg = "password reset but email delivery failed"
		}
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"message":    msg,
			"email":      result.Email,
			"email_sent": result.EmailSent,
		})
	}
}
