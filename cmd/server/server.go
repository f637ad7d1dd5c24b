package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/studyaid/backend/internal/config"
	"github.com/studyaid/backend/internal/database"
	"github.com/studyaid/backend/internal/flashcards"
	"github.com/studyaid/backend/internal/middleware"
	"github.com/studyaid/backend/internal/practice"
	"github.com/studyaid/backend/internal/quizzes"
)

const shutdownTimeout = 15 * time.Second

func runServe(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg.DB)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Services
	cardStore := flashcards.NewStore(db)
	cardService := flashcards.NewService(cardStore)
	manager := practice.NewManager(cfg.Practice.IdleTimeout, practice.SystemClock)
	defer manager.CloseAll()
	practiceService := practice.NewService(cardStore, cardService, practice.NewResultStore(db), manager, cfg.Practice)
	quizService := quizzes.NewService(quizzes.NewStore(db))

	tokens := middleware.NewSessionTokens(cfg.Token.Secret, cfg.Token.TTL)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	handler := newRouter(cfg,
		flashcards.NewHandler(cardService),
		quizzes.NewHandler(quizService),
		practice.NewHandler(practiceService, tokens),
		tokens, limiter)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("[server] starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		manager.StartSweeper(gctx, cfg.Practice.SweepInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("[server] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newRouter(cfg *config.Config, cards *flashcards.Handler, quizHandler *quizzes.Handler, sessions *practice.Handler, tokens *middleware.SessionTokens, limiter *middleware.RateLimiter) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(limiter.Middleware)

	cards.RegisterRoutes(api)
	quizHandler.RegisterRoutes(api)
	sessions.RegisterRoutes(api, tokens.Require("id"))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return c.Handler(r)
}
