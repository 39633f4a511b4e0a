package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Totarae/TransferRedirect/internal/auth"
	"github.com/Totarae/TransferRedirect/internal/config"
	"github.com/Totarae/TransferRedirect/internal/database"
	"github.com/Totarae/TransferRedirect/internal/feed"
	grpcv2 "github.com/Totarae/TransferRedirect/internal/grpc/v2"
	"github.com/Totarae/TransferRedirect/internal/handlers"
	"github.com/Totarae/TransferRedirect/internal/repositories"
	"github.com/Totarae/TransferRedirect/internal/router"
	"github.com/Totarae/TransferRedirect/internal/service"
	"github.com/Totarae/TransferRedirect/internal/storage"
	"github.com/Totarae/TransferRedirect/internal/transfer"
	"github.com/Totarae/TransferRedirect/internal/util"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	// Инициализация конфигурации
	cfg := config.NewConfig()

	keys, patterns, closeStore, err := newStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Ошибка инициализации хранилищ", zap.Error(err))
	}
	defer closeStore()

	secret := cfg.AuthSecret
	if secret == "" {
		// Без секрета куки не переживут перезапуск, но сервис работает
		secret = uuid.NewString()
		logger.Warn("AUTH_SECRET is not set, sessions will reset on restart")
	}
	authService := auth.New(secret)
	authService.Secure = cfg.EnableHTTPS

	svc := service.NewRedirectService(transfer.NewClient(nil), cfg.ProviderURL, cfg.TransferListURL, logger)
	handler := handlers.NewHandler(svc, keys, cfg.BaseURL, cfg.DefaultAPIKey, logger)
	handler.Patterns = patterns
	handler.Inbox = feed.NewInbox(cfg.InboxSize)

	if cfg.RSSURL != "" {
		watcher := newWatcher(cfg, handler, logger)
		go watcher.Run(ctx)
		logger.Info("Опрос ленты запущен", zap.String("rss_url", cfg.RSSURL), zap.Duration("interval", cfg.CheckInterval))
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           router.NewRouter(handler, authService, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var grpcServer *grpc.Server
	if cfg.GRPCAddress != "" {
		lis, lisErr := net.Listen("tcp", cfg.GRPCAddress)
		if lisErr != nil {
			logger.Fatal("Ошибка запуска gRPC", zap.Error(lisErr))
		}
		grpcServer = grpc.NewServer(grpc.UnaryInterceptor(grpcv2.UnaryLoggingInterceptor(logger)))
		grpcv2.RegisterTransferServiceServer(grpcServer, grpcv2.NewGRPCServer(svc, cfg.DefaultAPIKey, logger))
		go func() {
			logger.Info("gRPC сервер запущен", zap.String("address", cfg.GRPCAddress))
			if serveErr := grpcServer.Serve(lis); serveErr != nil {
				logger.Error("gRPC сервер остановлен", zap.Error(serveErr))
			}
		}()
	}

	go func() {
		logger.Info("Сервер запущен", zap.String("address", cfg.ServerAddress), zap.String("mode", cfg.Mode))
		var serveErr error
		if cfg.EnableHTTPS {
			serveErr = srv.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			serveErr = srv.ListenAndServe()
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("Ошибка при запуске сервера", zap.Error(serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Остановка сервера")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка при остановке сервера", zap.Error(err))
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
}

// newStores выбирает хранилища ключей и подписок по режиму из конфигурации.
func newStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.KeyStore, storage.PatternStore, func(), error) {
	switch cfg.Mode {
	case config.ModeDatabase:
		if err := database.Migrate(cfg.DatabaseDSN, cfg.PgMigrationsPath, logger); err != nil {
			return nil, nil, nil, err
		}
		db, err := database.NewDB(ctx, cfg.DatabaseDSN, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.Ping(ctx); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return repositories.NewKeyRepository(db.Pool), repositories.NewPatternRepository(db.Pool), db.Close, nil
	case config.ModeFile:
		return util.NewKeyStore(cfg.FileStoragePath), util.NewPatternStore(cfg.PatternStoragePath), func() {}, nil
	default:
		return util.NewKeyStore(""), util.NewPatternStore(""), func() {}, nil
	}
}

// newWatcher собирает опрос ленты поверх подписок и ящика уведомлений обработчика.
func newWatcher(cfg *config.Config, handler *handlers.Handler, logger *zap.Logger) *feed.Watcher {
	var state feed.State = feed.NewMemoryState()
	if cfg.Mode != config.ModeMemory && cfg.FeedStatePath != "" {
		state = feed.NewFileState(cfg.FeedStatePath)
	}
	return &feed.Watcher{
		Source:       feed.NewFetcher(cfg.RSSURL, &http.Client{Timeout: 30 * time.Second}, logger),
		Patterns:     handler.Patterns,
		Notifier:     handler.Inbox,
		State:        state,
		BaseURL:      cfg.BaseURL,
		Interval:     cfg.CheckInterval,
		FailInterval: cfg.FailureInterval,
		Logger:       logger,
	}
}
