package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/Lagmas/api-yamdb/internal/account"
	"github.com/Lagmas/api-yamdb/internal/api"
	"github.com/Lagmas/api-yamdb/internal/mailer"
	"github.com/Lagmas/api-yamdb/internal/store"
	"github.com/Lagmas/api-yamdb/pkg/auth"
)

// envOrDefault возвращает значение переменной окружения
// или значение по умолчанию, если она не установлена.
func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// envDuration читает длительность из переменной окружения.
func envDuration(logger *slog.Logger, key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		logger.Warn("Invalid duration in environment, using default",
			slog.String("key", key), slog.String("value", raw))
		return fallback
	}
	return d
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	validate := validator.New()

	// .env нужен только для локальной разработки, его отсутствие не ошибка
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, relying on process environment")
	}

	httpPort := envOrDefault("HTTP_PORT", "8080")

	// --- Конфигурация для JWT ---
	jwtSecretKey := os.Getenv("JWT_SECRET_KEY")
	if jwtSecretKey == "" {
		jwtSecretKey = "your-very-secret-and-long-enough-key-for-hmac256-dev-only"
		logger.Warn("JWT_SECRET_KEY environment variable not set, using default insecure key for development.")
	}
	accessTTL := envDuration(logger, "JWT_ACCESS_TTL", time.Hour*24)
	refreshTTL := envDuration(logger, "JWT_REFRESH_TTL", time.Hour*24*30)

	tokenManager, err := auth.NewTokenManager(jwtSecretKey, accessTTL, refreshTTL)
	if err != nil {
		logger.Error("Failed to create token manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Token manager initialized.")

	// --- Инициализация хранилищ ---
	// Без DATABASE_URL поднимаются in-memory хранилища: удобно для
	// локальной разработки, данные живут до перезапуска процесса.
	var (
		userStorage    store.UserStore
		catalogStorage store.CatalogStore
		reviewStorage  store.ReviewStore
	)
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Warn("DATABASE_URL environment variable not set, using in-memory stores.")
		reviews := store.NewMockReviewStore()
		userStorage = store.NewMockUserStore(reviews)
		catalogStorage = store.NewMockCatalogStore(reviews)
		reviewStorage = reviews
	} else {
		db, err := store.NewPostgresDB(dbURL, logger)
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("Failed to close PostgreSQL connection", slog.String("error", err.Error()))
			} else {
				logger.Info("PostgreSQL connection closed.")
			}
		}()

		if userStorage, err = store.NewPostgresUserStore(db, logger); err != nil {
			logger.Error("Failed to initialize PostgreSQL user store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if catalogStorage, err = store.NewPostgresCatalogStore(db, logger); err != nil {
			logger.Error("Failed to initialize PostgreSQL catalog store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if reviewStorage, err = store.NewPostgresReviewStore(db, logger); err != nil {
			logger.Error("Failed to initialize PostgreSQL review store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("PostgreSQL stores initialized.")
	}

	// --- Почта для кодов подтверждения ---
	var mail mailer.Mailer
	if smtpHost := os.Getenv("SMTP_HOST"); smtpHost == "" {
		logger.Warn("SMTP_HOST environment variable not set, confirmation codes will only be logged.")
		mail = mailer.NewMockMailer(logger)
	} else {
		mail, err = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     smtpHost,
			Port:     envOrDefault("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize SMTP mailer", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("SMTP mailer initialized.", slog.String("host", smtpHost))
	}

	accounts := account.NewService(userStorage, mail, tokenManager, logger)

	// --- Настройка и запуск HTTP сервера ---
	httpAPIHandler := api.NewHTTPHandler(userStorage, catalogStorage, reviewStorage, accounts, logger, validate, tokenManager)
	httpRouter := api.NewHTTPRouter(httpAPIHandler)
	httpSrv := &http.Server{
		Addr:         ":" + httpPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("API HTTP Service starting", slog.String("port", httpPort))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("API HTTP Service ListenAndServe() failed", slog.String("error", err.Error()))
		}
	}()

	// Ожидание сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("API Service shutting down...")

	ctxHttp, cancelHttp := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelHttp()
	if err := httpSrv.Shutdown(ctxHttp); err != nil {
		logger.Error("API HTTP Server Shutdown Failed", slog.String("error", err.Error()))
	} else {
		logger.Info("API HTTP Server gracefully stopped.")
	}
}
