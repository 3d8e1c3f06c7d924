package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	emailport "github.com/imogoapp/whatsapp-webhook/internal/infrastructure/email/port"
	qport "github.com/imogoapp/whatsapp-webhook/internal/infrastructure/queue/port"
	"github.com/imogoapp/whatsapp-webhook/internal/infrastructure/realtime"
	"github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/usecase"
	"github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/presentation/controller"
)

// RegisterIngestionRoutes mounts the platform-facing endpoints at the engine
// root. The webhook paths are dictated by the platform subscription and the
// websocket paths by deployed clients, so they stay outside the /api/v1 group.
func RegisterIngestionRoutes(r *gin.Engine, pool *pgxpool.Pool, client qport.Client, hub *realtime.Hub, verifyToken string) {
	webhookCtl := controller.NewWebhookController(pool, client, verifyToken)
	socketCtl := controller.NewChatSocketController(hub)

	// GET /webhook -> subscription verification handshake
	r.GET("/webhook", webhookCtl.HandleVerify())

	// POST /webhook -> payload ingestion (store raw, ack, enqueue)
	r.POST("/webhook", webhookCtl.HandleReceive())

	// Realtime subscribe targets
	r.GET("/ws/chat/:phoneNumberId", socketCtl.HandleLine())
	r.GET("/ws/chats/:phoneNumberId", socketCtl.HandleChatList())
	r.GET("/ws/global", socketCtl.HandleGlobal())

	r.GET("/ping", controller.NewPingController().Handle())
}

// RegisterRoutes registers the management/read API under the given router
// group. It constructs per-endpoint controllers and binds them directly to
// routes.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, resolver *usecase.ResolveSessionUseCase, pub usecase.Publisher, sender emailport.Sender) {
	sessionCtl := controller.NewSessionController(pool)
	messageCtl := controller.NewMessageController(pool, resolver, pub)
	chatListCtl := controller.NewChatListController(pool)
	contactCtl := controller.NewContactController(pool)
	userCtl := controller.NewUserController(pool, sender)

	// Sessions and conversation reads
	g.GET("/sessions/user/:waId", sessionCtl.HandleUserSessions())
	g.GET("/sessions/active", sessionCtl.HandleActiveSession())
	g.GET("/sessions/:sessionId/messages", sessionCtl.HandleSessionMessages())
	g.GET("/conversation", sessionCtl.HandleConversation())

	// Active chats overview per line
	g.GET("/chats/:phoneNumberId", chatListCtl.HandleActiveChats())

	// Platform-originated messages and per-message mutations
	g.POST("/messages", messageCtl.HandleCreate())
	g.PUT("/messages/:messageId/status", messageCtl.HandleStatusUpdate())
	g.PUT("/messages/:messageId/bot-replied", messageCtl.HandleBotReplied())
	g.PUT("/messages/:messageId/flow-state", messageCtl.HandleFlowState())

	// Contacts
	g.GET("/contacts/phone/:phoneNumberId", contactCtl.HandleListByPhone())
	g.GET("/contacts/:contactId", contactCtl.HandleGet())
	g.PUT("/contacts/:contactId/name", contactCtl.HandleRename())
	g.PUT("/contacts/:contactId/bot/enable", contactCtl.HandleSetBot(true))
	g.PUT("/contacts/:contactId/bot/disable", contactCtl.HandleSetBot(false))
	g.PUT("/contacts/:contactId/automatic-message/enable", contactCtl.HandleSetAutomaticMessage(true))
	g.PUT("/contacts/:contactId/automatic-message/disable", contactCtl.HandleSetAutomaticMessage(false))

	// Operator accounts
	g.POST("/users/reset-password", userCtl.HandleResetPassword())
}
