package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mediavault/apiserver/config"
	"github.com/mediavault/apiserver/internal/db"
	"github.com/mediavault/apiserver/internal/handlers"
	"github.com/mediavault/apiserver/internal/mq"
	"github.com/mediavault/apiserver/internal/services"
	"github.com/mediavault/apiserver/internal/storage"
	"github.com/mediavault/apiserver/internal/store"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	mq         *mq.MQ
	logger     *zap.SugaredLogger
}

// New constructs a Server with its full dependency graph. Missing
// storage or broker configuration degrades the matching feature and
// logs a warning instead of refusing to start.
func New(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) (*Server, error) {
	for _, warning := range cfg.Warnings() {
		logger.Warnw("configuration incomplete", "detail", warning)
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	objStorage, err := newStorage(ctx, cfg)
	if err != nil {
		logger.Warnw("object storage unavailable", "backend", cfg.StorageBackend, "error", err)
	} else if err := objStorage.EnsureBucket(ctx); err != nil {
		logger.Warnw("bucket check failed", "bucket", objStorage.Bucket(), "error", err)
	}

	broker := newBroker(ctx, cfg, logger)

	userRepo := store.NewUserRepository(dbConn)
	profileRepo := store.NewProfileRepository(dbConn)
	mediaRepo := store.NewMediaRepository(dbConn)
	savedRepo := store.NewSavedRepository(dbConn)
	categoryRepo := store.NewCategoryRepository(dbConn)

	userService := services.NewUserService(userRepo)
	profileService := services.NewProfileService(profileRepo)
	categoryService := services.NewCategoryService(categoryRepo)
	savedService := services.NewSavedService(savedRepo)

	var events services.EventPublisher
	if broker != nil {
		events = broker
	}
	mediaService := services.NewMediaService(mediaRepo, profileService, events, logger)

	var uploadService *services.UploadService
	if objStorage != nil {
		uploadService = services.NewUploadService(objStorage, mediaRepo, events, logger)
	}

	gate := handlers.NewGate(cfg.SessionSecret, profileService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		requestLogger(logger),
		middleware.Timeout(60*time.Second),
	)
	router.Use(gate.Middleware)

	router.Get("/healthz", handlers.Healthz)
	router.Get("/", handlers.HomeHandler(mediaService))
	router.Get("/login", handlers.LoginPageHandler())
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, profileService, cfg.SessionSecret)
	})
	router.Route("/media", func(r chi.Router) {
		handlers.MediaRouter(r, mediaService, savedService)
	})
	router.Route("/categories", func(r chi.Router) {
		handlers.CategoryRouter(r, categoryService)
	})
	router.Route("/saved", func(r chi.Router) {
		r.Use(handlers.RequireUser)
		handlers.SavedRouter(r, savedService)
	})
	router.Route("/profile", func(r chi.Router) {
		r.Use(handlers.RequireUser)
		handlers.ProfileRouter(r, profileService, uploadService)
	})
	router.Route("/admin", func(r chi.Router) {
		r.Use(handlers.RequireAdmin(profileService))
		handlers.AdminRouter(r, mediaService, uploadService)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		mq:         broker,
		logger:     logger,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Infow("server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.mq != nil {
		_ = s.mq.Close()
	}
	return s.httpServer.Close()
}

func newStorage(ctx context.Context, cfg config.Config) (*storage.Storage, error) {
	switch cfg.StorageBackend {
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	case "", "minio":
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// newBroker connects the configured event backend. Events are
// optional; any failure here just disables publishing.
func newBroker(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) *mq.MQ {
	switch cfg.EventBackend {
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			logger.Warnw("rabbitmq unavailable", "error", err)
			return nil
		}
		return mq.New(client)
	case "pubsub":
		client, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			logger.Warnw("pubsub unavailable", "error", err)
			return nil
		}
		return mq.New(client)
	case "":
		return nil
	default:
		logger.Warnw("unknown event backend", "backend", cfg.EventBackend)
		return nil
	}
}

// requestLogger logs one line per request after it completes.
func requestLogger(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Infow("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
