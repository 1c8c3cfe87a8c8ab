package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pharmaproc/internal/config"
	"pharmaproc/internal/database"
	"pharmaproc/internal/metrics"
	"pharmaproc/internal/numbering"
	"pharmaproc/internal/repository"
	"pharmaproc/internal/repository/memory"
	"pharmaproc/internal/service"
	"pharmaproc/internal/websocket"
)

// App owns the HTTP server and the resources it was built from.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	hub     *websocket.Hub
	server  *http.Server
	closers []func() error
}

// NewServices wires the business services over one repository set.
func NewServices(repos repository.Repositories, numbers *numbering.Generator, events service.EventPublisher, m *metrics.Metrics) Services {
	return Services{
		Suppliers:      service.NewSupplierService(repos.Suppliers, repos.Tx),
		Products:       service.NewProductService(repos.Products, repos.Tx),
		PurchaseOrders: service.NewPurchaseOrderService(repos.PurchaseOrders, repos.Suppliers, repos.Products, repos.Tx, numbers, events, m),
		QCReports:      service.NewQCReportService(repos.QCReports, repos.PurchaseOrders, repos.Tx, numbers, events, m),
		Receipts:       service.NewReceiptService(repos.Receipts, repos.QCReports, repos.PurchaseOrders, repos.Tx, numbers, events, m),
	}
}

// New connects the configured store and sequencer and builds the server.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	repos, err := a.openStore()
	if err != nil {
		return nil, err
	}

	sequencer, err := a.openSequencer(ctx, repos)
	if err != nil {
		a.close()
		return nil, err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()
	a.hub = websocket.NewHub(logger.Named("ws"), cfg.CORSAllowedOrigins)
	services := NewServices(repos, numbering.NewGenerator(sequencer), a.hub, m)

	router := NewRouter(RouterOptions{
		APIPrefix:   cfg.APIPrefix,
		CORSOrigins: cfg.CORSAllowedOrigins,
		Production:  cfg.IsProduction(),
		Logger:      logger,
		Metrics:     m,
		Hub:         a.hub,
		Services:    services,
	})

	a.server = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return a, nil
}

func (a *App) openStore() (repository.Repositories, error) {
	if a.cfg.StoreDriver == config.StoreDriverMemory {
		a.logger.Warn("using in-memory store; data is lost on restart")
		return memory.New().Repositories(), nil
	}

	db, err := database.NewConnection(a.cfg.DSN(), a.cfg.LogLevel)
	if err != nil {
		return repository.Repositories{}, fmt.Errorf("app: connect database: %w", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}
	a.logger.Info("connected to PostgreSQL", zap.String("host", a.cfg.DBHost), zap.String("database", a.cfg.DBName))
	return repository.NewRepositories(db), nil
}

func (a *App) openSequencer(ctx context.Context, repos repository.Repositories) (numbering.Sequencer, error) {
	if a.cfg.RedisAddr == "" {
		return repos.Sequences, nil
	}
	client, err := database.NewRedisClient(ctx, a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("app: connect redis: %w", err)
	}
	a.closers = append(a.closers, client.Close)
	a.logger.Info("document numbers backed by redis", zap.String("addr", a.cfg.RedisAddr))
	return numbering.NewRedisSequencer(client, numbering.DefaultRedisTTL), nil
}

// Run serves until ctx is cancelled, then shuts down within the configured
// shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go a.hub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr), zap.String("api", a.cfg.APIPrefix))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("app: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("app: shutdown: %w", err)
	}
	return nil
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
}
