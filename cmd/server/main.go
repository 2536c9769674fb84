// Package main はAPIサーバーのエントリポイント。
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tag-encryption-service/config"
	"tag-encryption-service/internal/codec"
	"tag-encryption-service/internal/crypto"
	"tag-encryption-service/internal/handler"
	"tag-encryption-service/internal/infra"
	"tag-encryption-service/internal/keystore"
	"tag-encryption-service/internal/repository"
	"tag-encryption-service/internal/usecase"
)

func main() {
	ctx := context.Background()

	// .envファイルを読み込む（存在しない場合は無視）
	// 既存の環境変数は上書きしない
	_ = godotenv.Load()

	// 設定読み込み
	cfg := config.Load()

	// ログレベル設定
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "DEBUG":
		logLevel = slog.LevelDebug
	case "WARN":
		logLevel = slog.LevelWarn
	case "ERROR":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	// トレーサー初期化（ロガー設定の前に実行）
	tp, err := infra.InitTracer(ctx, cfg)
	if err != nil {
		slog.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	if tp != nil {
		defer func() {
			if err := tp.Shutdown(ctx); err != nil {
				slog.Error("failed to shutdown tracer", "error", err)
			}
		}()
	}

	// トレース情報付きロガーを設定
	infra.SetupLogger(cfg, logLevel)

	// DB初期化
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is not set")
		os.Exit(1)
	}
	db, err := infra.NewDB(cfg.DatabaseURL, cfg.OtelEnabled)
	if err != nil {
		slog.Error("failed to init database", "error", err)
		os.Exit(1)
	}

	// スキーマ適用
	if err := repository.Migrate(db); err != nil {
		slog.Error("failed to migrate database schema", "error", err)
		os.Exit(1)
	}

	// KMSクライアント初期化（未設定の場合はラップなしで保存）
	var entryCipher repository.EntryCipher
	if cfg.KMSKeyName != "" {
		kmsClient, err := infra.NewKMSClient(ctx, cfg.KMSKeyName)
		if err != nil {
			slog.Error("failed to init KMS client", "error", err)
			os.Exit(1)
		}
		defer func() {
			if closeErr := kmsClient.Close(); closeErr != nil {
				slog.Error("failed to close KMS client", "error", closeErr)
			}
		}()
		entryCipher = kmsClient
	}

	// DI
	store := repository.NewSecureStoreRepository(db, entryCipher)
	records := repository.NewMigrationRecordRepository(db)
	probe := infra.NewDeviceProbe(cfg)
	keys := keystore.New(store, probe, cfg.KeychainService)
	engine := crypto.NewEngine()
	tagService := usecase.NewTagService(keys, codec.New(engine))
	readinessService := usecase.NewReadinessService(keys, records, probe)
	tagHandler := handler.NewTagHandler(tagService)
	protectionHandler := handler.NewProtectionHandler(readinessService)
	router := handler.NewRouter(tagHandler, protectionHandler, cfg)

	// サーバー起動
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting server", "port", cfg.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
