package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"notrello/internal/auth"
	"notrello/internal/cards"
	"notrello/internal/categories"
	"notrello/internal/config"
	"notrello/internal/db"
	"notrello/internal/logging"
	"notrello/internal/maintenance"
	mcpserver "notrello/internal/mcp"
	"notrello/internal/metrics"
	"notrello/internal/notes"
	"notrello/internal/users"
	"notrello/internal/web"
)

//go:embed static
var staticFS embed.FS

var version = "dev"

func main() {
	printConfig := flag.Bool("print-config", false, "print the effective configuration and exit")
	flag.Parse()

	cfg, err := config.Load(context.Background())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *printConfig {
		if err := cfg.Dump(os.Stdout); err != nil {
			log.Fatalf("failed to print config: %v", err)
		}
		return
	}

	logger, _, err := logging.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	slots, err := cfg.Slots()
	if err != nil {
		log.Fatalf("invalid timeline: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("invalid timezone: %v", err)
	}

	// Context for startup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("connecting to MongoDB", "database", cfg.MongoDatabase)
	database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	logger.Info("connected to MongoDB")

	// Wire dependencies
	userRepo := users.NewRepo(database)
	catRepo := categories.NewRepo(database)
	cardRepo := cards.NewRepo(database)
	noteRepo := notes.NewRepo(database)
	for name, repo := range map[string]interface{ EnsureIndexes(context.Context) error }{
		"users": userRepo, "categories": catRepo, "cards": cardRepo, "notes": noteRepo,
	} {
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Warn("failed to ensure indexes", "collection", name, "error", err)
		}
	}

	opts := []metrics.Option{}
	if cfg.MetricsEnabled {
		opts = append(opts, metrics.WithGoCollectors())
	}
	mets := metrics.NewManager(opts...)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.SessionTTL)
	authMW := auth.NewMiddleware(tokens, logger)

	userSvc := users.NewService(userRepo, mets)
	catSvc := categories.NewService(catRepo)
	cardSvc := cards.NewService(cardRepo, catSvc, cards.Options{
		Slots:             slots,
		Location:          loc,
		RecurrenceHorizon: time.Duration(cfg.ImportRecurrenceDays) * 24 * time.Hour,
		Observer:          mets,
	})
	catSvc.SetDetacher(cardSvc)
	noteSvc := notes.NewService(noteRepo, cardSvc)

	userHandler := users.NewHandler(userSvc, tokens, cfg.CookieSecure, logger)
	catHandler := categories.NewHandler(catSvc, logger)
	cardHandler := cards.NewHandler(cardSvc, cfg.ImportMaxBytes, logger)
	noteHandler := notes.NewHandler(noteSvc, logger)
	webHandler := web.NewHandler(userSvc, cardSvc, catSvc, noteSvc, web.Options{
		Tokens:       tokens,
		CookieSecure: cfg.CookieSecure,
		WeekStart:    cfg.FirstWeekday(),
		Identify:     authMW.Identify,
	}, logger)

	mcpSrv := mcpserver.NewServer(mcpserver.Services{
		Cards:      cardSvc,
		Categories: catSvc,
		Notes:      noteSvc,
	}, version)

	job := maintenance.NewJob(cardSvc, userSvc, mets, cfg.RetentionDays, logger)
	scheduler, err := maintenance.Schedule(cfg.MaintenanceCron, job, logger)
	if err != nil {
		log.Fatalf("failed to schedule maintenance: %v", err)
	}

	// HTTP router
	mux := http.NewServeMux()

	// Static files
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatalf("failed to get static fs: %v", err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))

	// Accounts
	mux.HandleFunc("POST /api/register", userHandler.Register)
	mux.HandleFunc("POST /api/login", userHandler.Login)
	mux.HandleFunc("POST /api/logout", userHandler.Logout)
	mux.Handle("GET /api/me", authMW.APIFunc(userHandler.Me))
	mux.Handle("GET /api/auth/verify", authMW.APIFunc(userHandler.Verify))
	mux.HandleFunc("GET /api/find-email", userHandler.FindEmail)
	mux.HandleFunc("GET /api/find-pseudo", userHandler.FindPseudo)

	// Cards
	mux.Handle("GET /api/cartes", authMW.APIFunc(cardHandler.List))
	mux.Handle("POST /api/cartes", authMW.APIFunc(cardHandler.Create))
	mux.Handle("POST /api/cartes/bulk-delete", authMW.APIFunc(cardHandler.BulkDelete))
	mux.Handle("DELETE /api/cartes/bulk-delete", authMW.APIFunc(cardHandler.BulkDelete))
	mux.Handle("GET /api/cartes/{id}", authMW.APIFunc(cardHandler.Get))
	mux.Handle("PATCH /api/cartes/{id}", authMW.APIFunc(cardHandler.Update))
	mux.Handle("DELETE /api/cartes/{id}", authMW.APIFunc(cardHandler.Delete))
	mux.Handle("POST /api/cartes/{id}/move", authMW.APIFunc(cardHandler.Move))
	mux.Handle("POST /api/calendar/import", authMW.APIFunc(cardHandler.Import))
	mux.Handle("GET /api/calendar/export.ics", authMW.APIFunc(cardHandler.Export))

	// Categories
	mux.Handle("GET /api/custom-cat", authMW.APIFunc(catHandler.List))
	mux.Handle("POST /api/custom-cat", authMW.APIFunc(catHandler.Create))
	mux.Handle("PATCH /api/custom-cat/{id}", authMW.APIFunc(catHandler.Update))
	mux.Handle("DELETE /api/custom-cat/{id}", authMW.APIFunc(catHandler.Delete))

	// Notes
	mux.Handle("POST /api/notes", authMW.APIFunc(noteHandler.Create))
	mux.Handle("GET /api/notes", authMW.APIFunc(noteHandler.List))
	mux.Handle("GET /api/notes/search", authMW.APIFunc(noteHandler.Search))
	mux.Handle("GET /api/notes/{id}", authMW.APIFunc(noteHandler.Get))
	mux.Handle("PATCH /api/notes/{id}", authMW.APIFunc(noteHandler.Update))
	mux.Handle("DELETE /api/notes/{id}", authMW.APIFunc(noteHandler.Delete))

	// Web UI
	mux.HandleFunc("GET /", webHandler.Home)
	mux.HandleFunc("GET /login", webHandler.LoginPage)
	mux.HandleFunc("POST /login", webHandler.Login)
	mux.HandleFunc("GET /register", webHandler.RegisterPage)
	mux.HandleFunc("POST /register", webHandler.Register)
	mux.HandleFunc("POST /logout", webHandler.Logout)
	mux.Handle("GET /dashboard", authMW.Page(webHandler.Dashboard))
	mux.Handle("GET /dashboard/calendar", authMW.Page(webHandler.Calendar))
	mux.Handle("GET /dashboard/notes", authMW.Page(webHandler.Notes))

	// MCP endpoint (HTTP transport)
	// MCP uses POST for requests and GET for SSE streams
	mcpHTTP := authMW.API(mcpserver.NewHTTPHandler(mcpSrv, authMW.Identify))
	mux.Handle("POST /mcp", mcpHTTP)
	mux.Handle("GET /mcp", mcpHTTP)
	mux.Handle("DELETE /mcp", mcpHTTP)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(pingCtx, database); err != nil {
			logger.Warn("health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var handler http.Handler = mux
	if cfg.MetricsEnabled {
		mux.Handle("GET /metrics", mets.Handler())
		handler = mets.Instrument(mux)
	}
	handler = logging.Requests(logger, handler)

	// Start server
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	scheduler.Start()

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
		if err := scheduler.Stop(shutdownCtx); err != nil {
			logger.Error("maintenance shutdown error", "error", err)
		}
		if err := db.Disconnect(shutdownCtx, database); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
			logger.Error("mongo disconnect error", "error", err)
		}
	}()

	logger.Info("server starting", "addr", cfg.Addr, "version", version)
	logger.Info("endpoints available",
		"web", "/dashboard",
		"api", "/api",
		"mcp", "/mcp",
		"metrics", cfg.MetricsEnabled,
	)

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
	<-done

	logger.Info("server stopped")
}
