package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Lagmas/api-yamdb/internal/domain"
)

// PostgresUserStore реализует UserStore для PostgreSQL.
type PostgresUserStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresUserStore создает новый экземпляр PostgresUserStore.
// db должен быть уже подключен (см. NewPostgresDB).
func NewPostgresUserStore(db *sqlx.DB, logger *slog.Logger) (*PostgresUserStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil for PostgresUserStore")
	}
	return &PostgresUserStore{db: db, logger: logger}, nil
}

// Create создает нового пользователя в базе данных.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, username, email, role, bio, first_name, last_name,
                                 is_superuser, is_active, confirmation_hash, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	s.logger.DebugContext(ctx, "Executing Create user query",
		slog.String("userID", user.ID), slog.String("username", user.Username))
	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.Role, user.Bio, user.FirstName, user.LastName,
		user.IsSuperuser, user.IsActive, user.ConfirmationHash, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := isUniqueViolation(err); ok {
			s.logger.WarnContext(ctx, "User already exists (unique constraint violation in DB)",
				slog.String("username", user.Username),
				slog.String("email", user.Email),
				slog.String("constraint_name", constraint))
			return ErrUserAlreadyExists
		}
		s.logger.ErrorContext(ctx, "Failed to create user in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.InfoContext(ctx, "User created successfully in DB", slog.String("userID", user.ID))
	return nil
}

const userColumns = `id, username, email, role, bio, first_name, last_name,
                     is_superuser, is_active, confirmation_hash, created_at, updated_at`

// GetByID находит пользователя по его ID.
func (s *PostgresUserStore) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.getOne(ctx, query, userID, "userID", userID)
}

// GetByUsername находит пользователя по имени.
func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return s.getOne(ctx, query, username, "username", username)
}

// GetByEmail находит пользователя по email (без учета регистра).
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return s.getOne(ctx, query, email, "email", email)
}

func (s *PostgresUserStore) getOne(ctx context.Context, query, arg, logKey, logValue string) (*domain.User, error) {
	var user domain.User
	err := s.db.GetContext(ctx, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "User not found in DB", slog.String(logKey, logValue))
			return nil, ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get user from DB", slog.String(logKey, logValue), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Update обновляет существующего пользователя.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	query := `UPDATE users SET username = $1, email = $2, role = $3, bio = $4,
                               first_name = $5, last_name = $6, is_superuser = $7,
                               is_active = $8, confirmation_hash = $9, updated_at = $10
              WHERE id = $11`
	user.UpdatedAt = time.Now().UTC()

	s.logger.DebugContext(ctx, "Executing Update user query", slog.String("userID", user.ID))
	result, err := s.db.ExecContext(ctx, query,
		user.Username, user.Email, user.Role, user.Bio, user.FirstName, user.LastName,
		user.IsSuperuser, user.IsActive, user.ConfirmationHash, user.UpdatedAt, user.ID,
	)
	if err != nil {
		if constraint, ok := isUniqueViolation(err); ok {
			s.logger.WarnContext(ctx, "Update failed: username or email already exists (DB constraint)",
				slog.String("userID", user.ID), slog.String("constraint", constraint))
			return ErrUserAlreadyExists
		}
		s.logger.ErrorContext(ctx, "Failed to update user in DB", slog.String("userID", user.ID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rowsAffected == 0 {
		s.logger.WarnContext(ctx, "No user found to update in DB", slog.String("userID", user.ID))
		return ErrUserNotFound
	}
	s.logger.InfoContext(ctx, "User updated successfully in DB", slog.String("userID", user.ID))
	return nil
}

// Delete удаляет пользователя по имени. Его отзывы и комментарии
// удаляются каскадно внешними ключами (см. schema.sql).
func (s *PostgresUserStore) Delete(ctx context.Context, username string) error {
	query := `DELETE FROM users WHERE username = $1`

	s.logger.DebugContext(ctx, "Executing Delete user query", slog.String("username", username))
	result, err := s.db.ExecContext(ctx, query, username)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete user from DB", slog.String("username", username), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	s.logger.InfoContext(ctx, "User deleted successfully from DB", slog.String("username", username))
	return nil
}

// List возвращает страницу пользователей, отсортированных по имени.
func (s *PostgresUserStore) List(ctx context.Context, params ListParams) ([]*domain.User, int, error) {
	params = params.Normalize()

	var totalCount int
	if err := s.db.GetContext(ctx, &totalCount, `SELECT COUNT(*) FROM users`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to count users in DB", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	if totalCount == 0 {
		return []*domain.User{}, 0, nil
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY username` +
		fmt.Sprintf(" LIMIT %d OFFSET %d", params.PageSize, params.offset())

	users := []*domain.User{}
	if err := s.db.SelectContext(ctx, &users, query); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list users from DB", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, totalCount, nil
}
