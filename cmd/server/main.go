package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/macclone/internal/catalog"
	"github.com/Simplici0/macclone/internal/config"
	"github.com/Simplici0/macclone/internal/db"
	"github.com/Simplici0/macclone/internal/logging"
	"github.com/Simplici0/macclone/internal/migrations"
	"github.com/Simplici0/macclone/internal/seed"
	"github.com/Simplici0/macclone/internal/support"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	log          *zap.Logger
	catalog      *catalog.Repository
	support      *support.Store
	carts        *cartSessions
	shippingCost float64
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet; the config decides its level.
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.IsDev(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := migrations.Up(ctx, database); err != nil {
		return err
	}
	version, err := migrations.Version(ctx, database)
	if err != nil {
		return err
	}
	logger.Info("schema ready", zap.Int64("version", version))

	fixture, err := catalog.DefaultFixture()
	if err != nil {
		return err
	}
	stats, err := seed.Run(ctx, database, fixture)
	if err != nil {
		return err
	}
	logger.Info("catalog seeded", zap.Int("inserts", stats.Inserts), zap.Int("updates", stats.Updates))

	srv := &server{
		log:          logger,
		catalog:      catalog.NewRepository(database),
		support:      support.NewStore(database),
		carts:        newCartSessions(cfg.SessionSecret, !cfg.IsDev()),
		shippingCost: cfg.ShippingCost,
	}

	messages, err := srv.support.Count(ctx)
	if err != nil {
		return err
	}
	logger.Info("support inbox", zap.Int("contact_messages", messages))

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", httpServer.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", s.handleProducts)
		r.Get("/products/{slug}", s.handleProductOverview)
		r.Get("/products/{slug}/configuration", s.handleConfiguration)

		r.Get("/cart", s.handleCart)
		r.Post("/cart/items", s.handleCartAdd)
		r.Patch("/cart/items/{id}", s.handleCartQuantity)
		r.Delete("/cart/items/{id}", s.handleCartRemove)

		r.Get("/specifications", s.handleSpecifications)
		r.Get("/gallery", s.handleGallery)
		r.Get("/gallery/zoom", s.handleZoom)

		r.Get("/support/faq", s.handleFAQ)
		r.Post("/support/contact", s.handleContact)
	})

	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
