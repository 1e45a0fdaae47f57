// Package main запускает HTTP-сервер сервиса магазина цифровых товаров.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/eshop-system/internal/config"
	"github.com/mmeshcher/eshop-system/internal/handler"
	"github.com/mmeshcher/eshop-system/internal/middleware"
	"github.com/mmeshcher/eshop-system/internal/repository"
	"github.com/mmeshcher/eshop-system/internal/service"
	"github.com/mmeshcher/eshop-system/internal/storage"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}
	defer repo.Close()

	files, err := storage.NewFileStore(cfg.UploadDir, cfg.MaxFileSize)
	if err != nil {
		sugar.Fatalw("file storage initialization error", "error", err.Error())
	}

	svc := service.NewService(repo, files)
	defer svc.Close()

	if err := svc.EnsureDefaultAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		sugar.Fatalw("admin bootstrap error", "error", err.Error())
	}

	authMiddleware, err := middleware.NewAuthMiddleware(
		cfg.SecretKey,
		cfg.TokenAlgorithm,
		time.Duration(cfg.TokenLifetime)*time.Minute,
		svc,
	)
	if err != nil {
		sugar.Fatalw("auth initialization error", "error", err.Error())
	}

	h := handler.NewHandler(svc, logger, authMiddleware, cfg.MaxFileSize)

	r := h.SetupRouter(cfg.CORSOriginsList())

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting eshop server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
