// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"salescrm-service/internal/config"
	"salescrm-service/internal/db"
	activityHandler "salescrm-service/internal/handlers/activity"
	campaignHandler "salescrm-service/internal/handlers/campaign"
	leadHandler "salescrm-service/internal/handlers/lead"
	notifyHandler "salescrm-service/internal/handlers/notification"
	opportunityHandler "salescrm-service/internal/handlers/opportunity"
	pipelineHandler "salescrm-service/internal/handlers/pipeline"
	wsHandler "salescrm-service/internal/handlers/websocket"
	"salescrm-service/internal/middleware"
	"salescrm-service/internal/pkg/jwt"
	"salescrm-service/internal/pkg/logger"
	"salescrm-service/internal/pkg/session"
	"salescrm-service/internal/repository/postgres"
	activityUsecase "salescrm-service/internal/service/activity"
	campaignUsecase "salescrm-service/internal/service/campaign"
	leadUsecase "salescrm-service/internal/service/lead"
	notifyUsecase "salescrm-service/internal/service/notification"
	opportunityUsecase "salescrm-service/internal/service/opportunity"
	pipelineUsecase "salescrm-service/internal/service/pipeline"
	quoteUsecase "salescrm-service/internal/service/quote"
	"salescrm-service/internal/websocket"
	wsHandlers "salescrm-service/internal/websocket/handler"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger

	http  *http.Server
	pool  *pgxpool.Pool
	redis redis.UniversalClient
	stop  context.CancelFunc
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine, logger: logger.New(cfg.Log)}
}

// Start wires dependencies and serves HTTP until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	log := s.logger

	// ----- Migrations -----
	if err := db.RunMigrations(s.cfg, log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	s.pool = pool

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(ctx, db.RedisConfig{
		Addresses: []string{s.cfg.RedisAddr},
		Password:  s.cfg.RedisPass,
		DB:        s.cfg.RedisDB,
		PoolSize:  10,
	}, log)
	if err != nil {
		return err
	}
	s.redis = redisClient

	// ----- JWT & sessions -----
	verifier, err := jwt.LoadVerifier(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT verifier: %w", err)
	}
	revocations := session.NewRevocationStore(redisClient)

	// ----- Repositories -----
	store := postgres.NewStore(postgres.NewDB(pool))
	activityRepo := postgres.NewActivityRepository(pool)
	notifyRepo := postgres.NewNotificationRepository(pool)
	quoteRepo := postgres.NewQuoteRepository(pool)

	// ----- WebSocket Hub -----
	hubCtx, stop := context.WithCancel(context.Background())
	s.stop = stop
	hub := websocket.NewHub(verifier, revocations, log.Named("ws"))
	go hub.Run(hubCtx)

	// ----- Services (Usecases) -----
	activityService := activityUsecase.NewActivityService(activityRepo, log)
	notifService := notifyUsecase.NewNotificationService(notifyRepo, hub, log)
	quoteService := quoteUsecase.NewQuoteService(quoteRepo, log)
	opportunityService := opportunityUsecase.NewOpportunityService(store, activityService, notifService, quoteService, log)
	leadService := leadUsecase.NewLeadService(store, activityService, log)
	campaignService := campaignUsecase.NewCampaignService(store, log)
	pipelineService := pipelineUsecase.NewPipelineService(
		store,
		pipelineUsecase.NewRedisStageCache(redisClient, s.cfg.StageCacheTTL),
		log,
	)

	hub.RegisterHandler(wsHandlers.NewNotificationHandler(notifService))

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RequestLogger(log),
		middleware.RecoveryMiddleware(log),
		middleware.CORS(s.cfg.CORSAllowedOrigins),
	)

	// ----- Router -----
	SetupRouter(s.engine, &Handlers{
		OpportunityHandler: opportunityHandler.NewOpportunityHandler(opportunityService),
		LeadHandler:        leadHandler.NewLeadHandler(leadService),
		CampaignHandler:    campaignHandler.NewCampaignHandler(campaignService),
		PipelineHandler:    pipelineHandler.NewPipelineHandler(pipelineService),
		ActivityHandler:    activityHandler.NewActivityHandler(activityService),
		NotifHandler:       notifyHandler.NewNotificationHandler(notifService),
		WSHandler:          wsHandler.NewWebSocketHandler(hub, s.cfg.CORSAllowedOrigins, log),
		AuthMiddleware:     middleware.NewAuthMiddleware(verifier, revocations, log),
	})

	// ----- Start HTTP -----
	s.http = &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info("server listening", zap.String("addr", s.cfg.HTTPAddr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains HTTP traffic, then closes the hub and connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	if s.stop != nil {
		s.stop()
	}
	if s.redis != nil {
		s.redis.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	s.logger.Info("server stopped")
	_ = s.logger.Sync()
	return err
}
