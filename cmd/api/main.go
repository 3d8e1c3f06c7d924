package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	v1 "github.com/imogoapp/whatsapp-webhook/cmd/api/router/v1"
	cacheAdapter "github.com/imogoapp/whatsapp-webhook/internal/infrastructure/cache/adapter"
	cacheport "github.com/imogoapp/whatsapp-webhook/internal/infrastructure/cache/port"
	"github.com/imogoapp/whatsapp-webhook/internal/infrastructure/database"
	emailAdapter "github.com/imogoapp/whatsapp-webhook/internal/infrastructure/email/adapter"
	emailport "github.com/imogoapp/whatsapp-webhook/internal/infrastructure/email/port"
	queueAdapter "github.com/imogoapp/whatsapp-webhook/internal/infrastructure/queue/adapter"
	"github.com/imogoapp/whatsapp-webhook/internal/infrastructure/realtime"
	"github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/task"
	"github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/usecase"
	repoAdapter "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/adapter"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg(".env file not found or could not be loaded")
	}
	setupLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	pool, err := database.NewPoolFromEnv(connectCtx)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	// Cache is an optimization only; the service runs without it.
	var cache cacheport.Cache
	if rc, err := cacheAdapter.NewRedisAdapter(); err != nil {
		log.Warn().Err(err).Msg("cache unavailable, settings will be read from the database")
	} else {
		cache = rc
		defer rc.Close()
	}

	// Task queue: client enqueues on ingestion, the in-process server consumes.
	client, err := queueAdapter.NewAsynqClientFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create queue client")
	}
	defer client.Close()

	srv, err := queueAdapter.NewAsynqServer()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create queue server")
	}

	var sender emailport.Sender
	if hs, err := emailAdapter.NewHTTPSenderFromEnv(); err != nil {
		log.Warn().Err(err).Msg("email relay not configured, password resets will report email_sent=false")
		sender = noopSender{}
	} else {
		sender = hs
	}

	// Realtime fanout
	hub := realtime.NewHub()
	go hub.Run(ctx)

	// The resolver is shared between the HTTP layer and the task worker so
	// session creation for one conversation is serialized in-process.
	repo := repoAdapter.NewPgChatRepository(pool)
	resolver := usecase.NewResolveSessionUseCase(repo)
	processor := usecase.NewProcessWebhookUseCase(repo, cache, resolver, hub)
	task.RegisterProcessWebhookTask(srv, processor)

	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Error().Err(err).Msg("queue server stopped")
		}
	}()

	verifyToken := os.Getenv("WEBHOOK_VERIFY_TOKEN")
	if verifyToken == "" {
		log.Warn().Msg("WEBHOOK_VERIFY_TOKEN is not set, webhook verification will always fail")
	}

	r := gin.Default()
	v1.RegisterRoutes(r, pool, client, hub, resolver, sender, verifyToken)

	addr := ":" + envOr("PORT", "8080")
	httpServer := &http.Server{Addr: addr, Handler: r}

	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	_ = srv.Stop(shutdownCtx)
}

func setupLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level := zerolog.InfoLevel
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if l, err := zerolog.ParseLevel(v); err == nil {
			level = l
		}
	}
	zerolog.SetGlobalLevel(level)
	if os.Getenv("LOG_PRETTY") == "1" {
		log.Logger = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// noopSender stands in when EMAIL_API_URL is missing so the reset flow still
// rotates credentials; it reports failure so callers see email_sent=false.
type noopSender struct{}

func (noopSender) SendPasswordReset(ctx context.Context, name, email, password string) error {
	return errors.New("email: relay not configured")
}
