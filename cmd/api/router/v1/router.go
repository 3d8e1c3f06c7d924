package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	emailport "github.com/imogoapp/whatsapp-webhook/internal/infrastructure/email/port"
	qport "github.com/imogoapp/whatsapp-webhook/internal/infrastructure/queue/port"
	"github.com/imogoapp/whatsapp-webhook/internal/infrastructure/realtime"
	"github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/usecase"
	httpHandler "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/presentation/http"
)

// RegisterRoutes mounts the ingestion surface at the engine root and all
// version 1 API routes under /api/v1.
func RegisterRoutes(
	r *gin.Engine,
	pool *pgxpool.Pool,
	client qport.Client,
	hub *realtime.Hub,
	resolver *usecase.ResolveSessionUseCase,
	sender emailport.Sender,
	verifyToken string,
) {
	httpHandler.RegisterIngestionRoutes(r, pool, client, hub, verifyToken)

	v1 := r.Group("/api/v1")
	httpHandler.RegisterRoutes(v1, pool, resolver, hub, sender)
}
