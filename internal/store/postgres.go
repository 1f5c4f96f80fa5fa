package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// NewPostgresDB открывает и проверяет соединение с PostgreSQL.
// Ожидаемая схема описана в schema.sql: ограничения уникальности и
// каскадные правила FK обеспечивает сама база, проверки в Go-коде -
// лишь быстрый путь до обращения к ней.
func NewPostgresDB(dbURL string, logger *slog.Logger) (*sqlx.DB, error) {
	if dbURL == "" {
		return nil, errors.New("DB connection string (dbURL) cannot be empty")
	}
	logger.Info("Connecting to PostgreSQL database...")
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping PostgreSQL database", slog.String("error", err.Error()))
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	logger.Info("Successfully connected to PostgreSQL database.")
	return db, nil
}

// isUniqueViolation сообщает, является ли ошибка нарушением уникальности
// (код PostgreSQL 23505), и возвращает имя нарушенного ограничения.
func isUniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return pqErr.Constraint, true
	}
	return "", false
}

// isForeignKeyViolation сообщает, является ли ошибка нарушением внешнего
// ключа (код PostgreSQL 23503).
func isForeignKeyViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return pqErr.Constraint, true
	}
	return "", false
}
