package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/bharath13925/street-view-videos-sub000/docs" // swagger docs

	"github.com/bharath13925/street-view-videos-sub000/internal/auth"
	"github.com/bharath13925/street-view-videos-sub000/internal/cache"
	"github.com/bharath13925/street-view-videos-sub000/internal/config"
	"github.com/bharath13925/street-view-videos-sub000/internal/db"
	"github.com/bharath13925/street-view-videos-sub000/internal/handler"
	"github.com/bharath13925/street-view-videos-sub000/internal/logging"
	"github.com/bharath13925/street-view-videos-sub000/internal/pyservice"
	"github.com/bharath13925/street-view-videos-sub000/internal/repository"
	"github.com/bharath13925/street-view-videos-sub000/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title RouteVision API
// @version 1.0
// @description Street View route videos: frames, heading smoothing, interpolation and video rendering.
// @host localhost:5000
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if cfg.FirebaseProjectID == "" {
		logging.Warn().Msg("FIREBASE_PROJECT_ID not set, every authenticated request will be rejected")
	}

	// storage
	db.InitMongo(cfg)
	cache.InitRedis(cfg)

	// repos
	routeRepo := repository.NewRouteRepository()
	userRepo := repository.NewUserRepository()

	py := pyservice.New(cfg.PythonService, cfg.PythonTimeout)

	// services
	routeSvc := service.NewRouteService(routeRepo, py, cfg.VideoCheckTTL)
	userSvc := service.NewUserService(userRepo)
	verifier := auth.NewVerifier(cfg.FirebaseProjectID, auth.NewCertSource(auth.GoogleCertsURL))

	// handlers
	healthH := handler.NewHealthHandler(map[string]handler.Check{
		"mongo":  db.Ping,
		"redis":  cache.Ping,
		"python": py.Ready,
	})
	userH := handler.NewUserHandler(userSvc)
	routeH := handler.NewRouteHandler(routeSvc)
	pipelineH := handler.NewPipelineHandler(routeSvc, cfg.CORSOrigins)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Range"},
		ExposedHeaders:   []string{"Content-Length", "Content-Range", "Accept-Ranges"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// =============
	// public
	// =============
	r.Get("/health", healthH.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// ===========================
	// Firebase-authenticated
	// ===========================
	r.Route("/api", func(r chi.Router) {
		r.Use(handler.FirebaseAuth(verifier))

		r.Post("/users/sync", userH.Sync)
		r.Get("/users/me", userH.Me)

		r.Get("/videos/{routeId}/{filename}", routeH.StreamVideoByName)

		r.Route("/routes", func(r chi.Router) {
			r.Get("/", routeH.List)

			// expensive: each call fans out to Street View and the encoder
			r.Group(func(r chi.Router) {
				if cfg.PipelineRateLimit > 0 {
					r.Use(httprate.Limit(cfg.PipelineRateLimit, time.Minute,
						httprate.WithKeyFuncs(httprate.KeyByIP),
						httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
							w.Header().Set("Content-Type", "application/json")
							w.WriteHeader(http.StatusTooManyRequests)
							_, _ = w.Write([]byte(`{"error":"too many pipeline requests, try again in a minute"}`))
						}),
					))
				}
				r.Post("/generate-frames", routeH.GenerateFrames)
				r.Post("/process-complete", routeH.ProcessComplete)
				r.Post("/process-complete-video", routeH.ProcessCompleteVideo)
				r.Get("/ws/pipeline", pipelineH.Pipeline)
			})
			r.Post("/check-existing", routeH.CheckExisting)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", routeH.Get)
				r.Delete("/", routeH.Delete)
				r.Post("/smooth", routeH.Smooth)
				r.Post("/regenerate", routeH.Regenerate)
				r.Post("/interpolate", routeH.Interpolate)
				r.Post("/video", routeH.GenerateVideo)
				r.Get("/video", routeH.StreamVideo)
			})
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// no WriteTimeout: pipeline calls and video streams run for minutes
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logging.Info().Str("addr", srv.Addr).Str("python", cfg.PythonService).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP shutdown")
	}
	_ = cache.Close()
	db.Disconnect(shutdownCtx)
}
