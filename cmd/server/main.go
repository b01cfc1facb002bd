package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/delivery_shop/internal/config"
	"github.com/Skotchmaster/delivery_shop/internal/db"
	"github.com/Skotchmaster/delivery_shop/internal/events"
	"github.com/Skotchmaster/delivery_shop/internal/httpserver"
	"github.com/Skotchmaster/delivery_shop/internal/logging"
	authmw "github.com/Skotchmaster/delivery_shop/internal/middleware/auth"
	"github.com/Skotchmaster/delivery_shop/internal/oauth"
	"github.com/Skotchmaster/delivery_shop/internal/repo"
	"github.com/Skotchmaster/delivery_shop/internal/search"
	"github.com/Skotchmaster/delivery_shop/internal/service"
	"github.com/Skotchmaster/delivery_shop/internal/session"
	"github.com/Skotchmaster/delivery_shop/internal/tokens"
)

func main() {
	cfg := config.Load()
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	decimal.MarshalJSONWithoutQuotes = true

	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	gdb, err := db.Open(openCtx, cfg.DatabaseDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	defer db.Close(gdb)

	r := repo.New(gdb)

	var (
		sessions session.Store
		sweeper  *session.DBStore
	)
	if cfg.RedisURL != "" {
		rs, err := session.NewRedisStore(ctx, cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rs.Close()
		sessions = rs
		logger.Info("session store", "backend", "redis")
	} else {
		sweeper = &session.DBStore{Repo: r, TTL: cfg.SessionTTL}
		sessions = sweeper
		logger.Info("session store", "backend", "database")
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := events.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		defer prod.Close()
		publisher = prod
		logger.Info("event publisher", "backend", "kafka", "brokers", cfg.KafkaBrokers)
	}

	catalog := &service.CatalogService{Repo: r, Events: publisher}
	if cfg.ESURL != "" {
		idx, err := search.NewES(cfg.ESURL, cfg.ESUser, cfg.ESPassword, cfg.ESIndex)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		if err := idx.EnsureIndex(ctx); err != nil {
			logger.Warn("search index unavailable, using sql search", "error", err)
		} else {
			catalog.Index = idx
		}
	}

	var provider oauth.Provider
	if cfg.GoogleEnabled() {
		provider = oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL())
	} else {
		logger.Warn("google sign-in disabled", "reason", "GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET missing")
	}

	policy, err := service.ParsePolicy(cfg.RiderPolicy)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	authSvc := &service.AuthService{
		Repo:        r,
		Tokens:      &tokens.Issuer{Secret: cfg.JWTSecret, TTL: cfg.JWTTTL},
		Sessions:    sessions,
		Provider:    provider,
		FrontendURL: cfg.FrontendURL,
		Events:      publisher,
	}
	orders := service.NewOrderService(r, service.NewRiderSelector(time.Now().UnixNano()), policy, publisher)

	e := httpserver.New(logger, httpserver.Options{
		CORSOrigins:  cfg.CORSOrigins,
		CSRF:         cfg.CSRFEnabled,
		CookieSecure: cfg.SessionCookieSecure,
	})
	httpserver.Register(e, &httpserver.Deps{
		Auth:    &httpserver.AuthHTTP{Svc: authSvc, CookieSecure: cfg.SessionCookieSecure},
		Catalog: &httpserver.CatalogHTTP{Svc: catalog},
		Orders:  &httpserver.OrderHTTP{Svc: orders},
		Users:   &httpserver.UserHTTP{Svc: &service.UserService{Repo: r}},
		AuthMW:  authmw.NewAuthenticator(authSvc),
		Ready: func() error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", srv.Addr, "rider_policy", policy)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if sweeper != nil {
		g.Go(func() error {
			sweepSessions(gctx, logger, sweeper)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", "error", err)
		return
	}
	logger.Info("server stopped")
}

// sweepSessions removes expired database sessions every hour.
func sweepSessions(ctx context.Context, l *slog.Logger, s *session.DBStore) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				l.Warn("session sweep failed", "error", err)
				continue
			}
			l.Debug("session sweep", "removed", n)
		}
	}
}
