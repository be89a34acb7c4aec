package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	staticcatalog "skirmish/internal/adapter/catalog/static"
	httpadapter "skirmish/internal/adapter/http"
	metricsinmem "skirmish/internal/adapter/metrics/inmemory"
	gormrepo "skirmish/internal/adapter/repo/gorm"
	memoryrepo "skirmish/internal/adapter/repo/memory"
	wsadapter "skirmish/internal/adapter/transport/ws"
	"skirmish/internal/app/auth"
	"skirmish/internal/app/lobby"
	"skirmish/internal/app/ports"
	"skirmish/internal/platform/config"
	"skirmish/internal/platform/logging"

	"github.com/cloudwego/hertz/pkg/app/server"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

type stores struct {
	catalog  ports.Catalog
	writer   ports.CatalogWriter
	sessions ports.ParticipantSessionRepository
	tx       ports.TxManager
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	st, err := buildStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	seeded, err := staticcatalog.Seed(ctx, st.writer)
	if err != nil {
		return err
	}
	logger.Info("catalog seeded", zap.Int("definitions", seeded))

	kpi := metricsinmem.NewRecorder()
	tokens := buildTokens(cfg)
	deps := lobby.Deps{
		Catalog:         st.catalog,
		Sessions:        st.sessions,
		TxManager:       st.tx,
		MatchMetrics:    kpi,
		ProtocolMetrics: kpi,
		Logger:          logger,
	}
	if tokens.Enabled() {
		deps.Tokens = tokens
	}
	lb := lobby.New(ctx, lobbyConfig(cfg), deps)

	mux := http.NewServeMux()
	mux.Handle("/ws", wsadapter.Handler{Lobby: lb, OriginPatterns: cfg.OriginPatterns, Logger: logger})
	ws := &http.Server{
		Addr:              cfg.WSAddr,
		Handler:           mux,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}
	ops := server.Default(server.WithHostPorts(cfg.OpsAddr))
	httpadapter.Handler{
		Lobby:          lb,
		Tokens:         tokens,
		Sessions:       st.sessions,
		KPI:            kpi,
		OriginPatterns: cfg.OriginPatterns,
	}.RegisterRoutes(ops)

	errc := make(chan error, 2)
	go func() {
		logger.Info("websocket listener started", zap.String("addr", cfg.WSAddr))
		if err := ws.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("websocket listener: %w", err)
		}
	}()
	go func() {
		logger.Info("ops server started", zap.String("addr", cfg.OpsAddr))
		if err := ops.Run(); err != nil {
			errc <- fmt.Errorf("ops server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-errc:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = ws.Shutdown(shutdownCtx)
	_ = ops.Shutdown(shutdownCtx)
	if runErr == nil {
		lb.Wait()
	}
	return runErr
}

func buildStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (stores, error) {
	if cfg.DBDSN == "" {
		logger.Info("no database configured, using in-memory stores")
		store := memoryrepo.NewStore()
		catalog := memoryrepo.NewCatalogRepo(store)
		return stores{
			catalog:  catalog,
			writer:   catalog,
			sessions: memoryrepo.NewParticipantSessionRepo(store),
			tx:       memoryrepo.NewTxManager(store),
		}, nil
	}

	db, err := gormrepo.OpenPostgres(cfg.DBDSN)
	if err != nil {
		return stores{}, fmt.Errorf("open postgres: %w", err)
	}
	applied, err := gormrepo.ApplyMigrations(ctx, db, cfg.MigrationsDir)
	if err != nil {
		return stores{}, err
	}
	if len(applied) > 0 {
		logger.Info("migrations applied", zap.Strings("versions", applied))
	}
	catalog := gormrepo.NewCatalogRepo(db)
	return stores{
		catalog:  catalog,
		writer:   catalog,
		sessions: gormrepo.NewParticipantSessionRepo(db),
		tx:       gormrepo.NewTxManager(db),
	}, nil
}

func buildTokens(cfg config.Config) auth.Tokens {
	var secret []byte
	if cfg.JoinSecret != "" {
		secret = []byte(cfg.JoinSecret)
	}
	return auth.Tokens{Secret: secret, TTL: cfg.JoinTokenTTL}
}

func lobbyConfig(cfg config.Config) lobby.Config {
	return lobby.Config{
		MinPlayers:    cfg.MinPlayers,
		MaxPlayers:    cfg.MaxPlayers,
		Wait:          cfg.LobbyWait,
		AnswerTimeout: cfg.AnswerTimeout,
		Skulls:        cfg.Skulls,
		Seed:          cfg.Seed,
		MaxTurns:      cfg.MaxTurns,
	}
}
