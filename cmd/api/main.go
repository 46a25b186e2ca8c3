package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1 "evento-chat/cmd/api/router/v1"
	"evento-chat/internal/config"
	cacheAdapter "evento-chat/internal/infrastructure/cache/adapter"
	cacheport "evento-chat/internal/infrastructure/cache/port"
	"evento-chat/internal/infrastructure/changefeed"
	"evento-chat/internal/infrastructure/database"
	"evento-chat/internal/infrastructure/pubsub"
	queueAdapter "evento-chat/internal/infrastructure/queue/adapter"
	qport "evento-chat/internal/infrastructure/queue/port"
	"evento-chat/internal/infrastructure/realtime"
	"evento-chat/internal/logger"
	"evento-chat/internal/middleware"
	chat "evento-chat/internal/pkg/chat/application/domain"
	"evento-chat/internal/pkg/chat/application/inbox"
	"evento-chat/internal/pkg/chat/application/task"
	"evento-chat/internal/pkg/chat/application/usecase"
	repoAdapter "evento-chat/internal/pkg/chat/persistence/repository/adapter"
	repository "evento-chat/internal/pkg/chat/persistence/repository/port"
	httpHandler "evento-chat/internal/pkg/chat/presentation/http"
	"evento-chat/internal/pkg/presence"
	profileAdapter "evento-chat/internal/repository/adapter"
	profilerepo "evento-chat/internal/repository/port"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := logger.Initialize(cfg.LogLevel, !cfg.IsProduction()); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	zlog := logger.Log
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	changes := pubsub.NewBroker[chat.ChangeEvent](zlog.Named("changes"), 256)
	defer changes.Close()

	var (
		chats         repository.ChatRepository
		notifications repository.NotificationRepository
		profiles      profilerepo.ProfileRepository
	)
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		pool, err := database.Connect(connectCtx, cfg.DatabaseURL, zlog)
		cancel()
		if err != nil {
			zlog.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		if err := database.Migrate(ctx, pool, zlog); err != nil {
			zlog.Fatal("failed to migrate database", zap.Error(err))
		}
		chats = repoAdapter.NewPgChatRepository(pool)
		notifications = repoAdapter.NewPgNotificationRepository(pool)
		profiles = profileAdapter.NewPgProfileRepository(pool)

		feed := changefeed.NewPgListener(pool, changes, zlog.Named("changefeed"))
		go func() {
			// not restarted: open conversations degrade to non-live
			if err := feed.Run(ctx); err != nil {
				zlog.Error("changefeed stopped", zap.Error(err))
			}
		}()
	default:
		mem := repoAdapter.NewMemoryChatRepository()
		mem.OnChange = func(ev chat.ChangeEvent) { changefeed.Publish(changes, ev) }
		chats, notifications = mem, mem
		profiles = profileAdapter.NewMemoryProfileRepository()
		zlog.Warn("using in-memory store; data is lost on restart")
	}

	var (
		cache   cacheport.Cache
		qClient qport.Client
		qServer qport.Server
	)
	if cfg.RedisURL != "" {
		rc, err := cacheAdapter.NewRedisCache(ctx, cfg.RedisURL, cacheAdapter.WithRedisLogger(zlog))
		if err != nil {
			zlog.Fatal("failed to connect to redis", zap.Error(err))
		}
		cache = rc
		client, err := queueAdapter.NewAsynqClient(cfg.RedisURL)
		if err != nil {
			zlog.Fatal("failed to create queue client", zap.Error(err))
		}
		server, err := queueAdapter.NewAsynqServer(queueAdapter.AsynqServerConfig{
			RedisURL:    cfg.RedisURL,
			Concurrency: cfg.AsynqConcurrency,
			Queues:      cfg.AsynqQueues,
		}, zlog)
		if err != nil {
			zlog.Fatal("failed to create queue server", zap.Error(err))
		}
		qClient, qServer = client, server
	} else {
		cache = cacheAdapter.NewMemoryCache()
		inline := queueAdapter.NewInlineQueue(zlog)
		qClient, qServer = inline, inline
	}
	defer func() { _ = cache.Close() }()
	defer func() { _ = qClient.Close() }()

	task.RegisterNotifyOfflineTask(qServer, notifications, zlog)
	go func() {
		if err := qServer.Run(ctx); err != nil {
			zlog.Error("queue server stopped", zap.Error(err))
		}
	}()

	presenceEvents := pubsub.NewBroker[presence.Event](zlog.Named("presence"), 256)
	defer presenceEvents.Close()
	presenceSvc := presence.NewService(
		presence.NewChannel(presence.DefaultChannel, presenceEvents),
		presence.NewCacheMirror(cache, cfg.PresenceStaleAfter),
		presence.Config{Heartbeat: cfg.PresenceHeartbeat, StaleAfter: cfg.PresenceStaleAfter},
		zlog.Named("presence"),
	)
	go presenceSvc.RunSweeper(ctx)

	sessions := realtime.NewRouter()

	notifier := inbox.NewNotifier(changes, usecase.NewListParticipantsUseCase(chats), sessions, presenceSvc, qClient, zlog.Named("inbox"))
	if err := notifier.Start(); err != nil {
		zlog.Fatal("failed to start inbox notifier", zap.Error(err))
	}
	defer notifier.Stop()

	limiter := middleware.NewUserRateLimiter(cfg.ChatRatePerMin, 10)
	go limiter.Cleanup(ctx)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logger.RequestLogger(zlog), middleware.CORS(cfg.FrontendURL))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
		})
	})

	v1.RegisterRoutes(r, httpHandler.Dependencies{
		Chats:         chats,
		Profiles:      profiles,
		Notifications: notifications,
		Broker:        changes,
		Sessions:      sessions,
		Presence:      presenceSvc,
		Send:          usecase.NewSendMessageUseCase(chats),
		Limiter:       limiter,
		JWTSecret:     cfg.JWTSecret,
		Log:           zlog,
	})
	if cfg.JWTSecret == "" {
		// config rejects this in production
		zlog.Warn("JWT_SECRET is empty; trusting X-User-ID headers")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zlog.Info("http server listening", zap.String("addr", srv.Addr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// hijacked websocket connections are not covered by Shutdown
	sessions.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("http shutdown", zap.Error(err))
	}
	if err := qServer.Stop(shutdownCtx); err != nil {
		zlog.Error("queue shutdown", zap.Error(err))
	}
}
