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

// PostgresReviewStore реализует ReviewStore для PostgreSQL.
type PostgresReviewStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresReviewStore создает новый экземпляр PostgresReviewStore.
// db должен быть уже подключен (см. NewPostgresDB).
func NewPostgresReviewStore(db *sqlx.DB, logger *slog.Logger) (*PostgresReviewStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil for PostgresReviewStore")
	}
	return &PostgresReviewStore{db: db, logger: logger}, nil
}

// CreateReview создает новый отзыв в базе данных.
// Ограничение uq_author_title гарантирует один отзыв автора на произведение.
func (s *PostgresReviewStore) CreateReview(ctx context.Context, review *domain.Review) error {
	query := `INSERT INTO reviews (id, title_id, author_id, text, score, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`

	review.CreatedAt = time.Now().UTC()
	review.UpdatedAt = review.CreatedAt

	s.logger.DebugContext(ctx, "Executing CreateReview query",
		slog.String("reviewID", review.ID),
		slog.String("titleID", review.TitleID),
		slog.String("authorID", review.AuthorID))

	_, err := s.db.ExecContext(ctx, query,
		review.ID, review.TitleID, review.AuthorID, review.Text, review.Score,
		review.CreatedAt, review.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := isUniqueViolation(err); ok {
			if constraint == "uq_author_title" {
				s.logger.WarnContext(ctx, "Author has already reviewed this title (DB constraint)",
					slog.String("titleID", review.TitleID), slog.String("authorID", review.AuthorID))
				return ErrDuplicateReview
			}
			return fmt.Errorf("failed to create review due to unique constraint %s: %w", constraint, err)
		}
		if constraint, ok := isForeignKeyViolation(err); ok {
			s.logger.WarnContext(ctx, "Review references missing title (FK violation)",
				slog.String("titleID", review.TitleID), slog.String("constraint", constraint))
			return ErrTitleNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to create review in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create review: %w", err)
	}
	s.logger.InfoContext(ctx, "Review created successfully in DB", slog.String("reviewID", review.ID))
	return nil
}

const reviewSelect = `
	SELECT r.id, r.title_id, r.author_id, u.username AS author_username,
	       r.text, r.score, r.created_at, r.updated_at
	FROM reviews r
	JOIN users u ON u.id = r.author_id`

// GetReviewByID находит отзыв по его ID.
func (s *PostgresReviewStore) GetReviewByID(ctx context.Context, reviewID string) (*domain.Review, error) {
	var review domain.Review
	err := s.db.GetContext(ctx, &review, reviewSelect+` WHERE r.id = $1`, reviewID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Review not found by ID in DB", slog.String("reviewID", reviewID))
			return nil, ErrReviewNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get review by ID from DB", slog.String("reviewID", reviewID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get review by ID: %w", err)
	}
	return &review, nil
}

// ListReviewsByTitle возвращает страницу отзывов произведения
// от новых к старым.
func (s *PostgresReviewStore) ListReviewsByTitle(ctx context.Context, titleID string, params ListParams) ([]*domain.Review, int, error) {
	params = params.Normalize()

	var totalCount int
	countQuery := `SELECT COUNT(*) FROM reviews WHERE title_id = $1`
	if err := s.db.GetContext(ctx, &totalCount, countQuery, titleID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to count reviews by titleID in DB", slog.String("titleID", titleID), slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to count reviews by titleID: %w", err)
	}
	if totalCount == 0 {
		return []*domain.Review{}, 0, nil
	}

	query := reviewSelect + ` WHERE r.title_id = $1 ORDER BY r.created_at DESC` +
		fmt.Sprintf(" LIMIT %d OFFSET %d", params.PageSize, params.offset())

	reviews := []*domain.Review{}
	if err := s.db.SelectContext(ctx, &reviews, query, titleID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list reviews by titleID from DB", slog.String("titleID", titleID), slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to list reviews by titleID: %w", err)
	}
	return reviews, totalCount, nil
}

// UpdateReview обновляет текст и оценку существующего отзыва.
func (s *PostgresReviewStore) UpdateReview(ctx context.Context, review *domain.Review) error {
	query := `UPDATE reviews SET text = $1, score = $2, updated_at = $3 WHERE id = $4`
	review.UpdatedAt = time.Now().UTC()

	s.logger.DebugContext(ctx, "Executing UpdateReview query", slog.String("reviewID", review.ID))
	result, err := s.db.ExecContext(ctx, query, review.Text, review.Score, review.UpdatedAt, review.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update review in DB", slog.String("reviewID", review.ID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update review: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check review update result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrReviewNotFound
	}
	s.logger.InfoContext(ctx, "Review updated successfully in DB", slog.String("reviewID", review.ID))
	return nil
}

// DeleteReview удаляет отзыв. Комментарии к нему удаляются каскадно
// внешним ключом (см. schema.sql).
func (s *PostgresReviewStore) DeleteReview(ctx context.Context, reviewID string) error {
	s.logger.DebugContext(ctx, "Executing DeleteReview query", slog.String("reviewID", reviewID))
	result, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, reviewID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete review from DB", slog.String("reviewID", reviewID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete review: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check review delete result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrReviewNotFound
	}
	s.logger.InfoContext(ctx, "Review deleted successfully from DB", slog.String("reviewID", reviewID))
	return nil
}

// GetAggregatedRatingByTitleID рассчитывает средний балл и количество
// оценок произведения по текущему набору отзывов.
func (s *PostgresReviewStore) GetAggregatedRatingByTitleID(ctx context.Context, titleID string) (*domain.AggregatedRating, error) {
	query := `SELECT COALESCE(AVG(score), 0) AS average_rating, COUNT(score) AS rating_count
              FROM reviews WHERE title_id = $1`

	agg := domain.AggregatedRating{TitleID: titleID}
	s.logger.DebugContext(ctx, "Executing GetAggregatedRatingByTitleID query", slog.String("titleID", titleID))
	err := s.db.QueryRowxContext(ctx, query, titleID).Scan(&agg.Average, &agg.Count)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get aggregated rating from DB", slog.String("titleID", titleID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get aggregated rating for titleID %s: %w", titleID, err)
	}
	return &agg, nil
}

// CreateComment создает новый комментарий к отзыву.
func (s *PostgresReviewStore) CreateComment(ctx context.Context, comment *domain.Comment) error {
	query := `INSERT INTO comments (id, review_id, author_id, text, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6)`

	comment.CreatedAt = time.Now().UTC()
	comment.UpdatedAt = comment.CreatedAt

	s.logger.DebugContext(ctx, "Executing CreateComment query",
		slog.String("commentID", comment.ID), slog.String("reviewID", comment.ReviewID))
	_, err := s.db.ExecContext(ctx, query,
		comment.ID, comment.ReviewID, comment.AuthorID, comment.Text,
		comment.CreatedAt, comment.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := isForeignKeyViolation(err); ok {
			s.logger.WarnContext(ctx, "Comment references missing review (FK violation)",
				slog.String("reviewID", comment.ReviewID), slog.String("constraint", constraint))
			return ErrReviewNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to create comment in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create comment: %w", err)
	}
	s.logger.InfoContext(ctx, "Comment created successfully in DB", slog.String("commentID", comment.ID))
	return nil
}

const commentSelect = `
	SELECT c.id, c.review_id, c.author_id, u.username AS author_username,
	       c.text, c.created_at, c.updated_at
	FROM comments c
	JOIN users u ON u.id = c.author_id`

// GetCommentByID находит комментарий по его ID.
func (s *PostgresReviewStore) GetCommentByID(ctx context.Context, commentID string) (*domain.Comment, error) {
	var comment domain.Comment
	err := s.db.GetContext(ctx, &comment, commentSelect+` WHERE c.id = $1`, commentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get comment by ID from DB", slog.String("commentID", commentID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get comment by ID: %w", err)
	}
	return &comment, nil
}

// ListCommentsByReview возвращает страницу комментариев отзыва
// от новых к старым.
func (s *PostgresReviewStore) ListCommentsByReview(ctx context.Context, reviewID string, params ListParams) ([]*domain.Comment, int, error) {
	params = params.Normalize()

	var totalCount int
	countQuery := `SELECT COUNT(*) FROM comments WHERE review_id = $1`
	if err := s.db.GetContext(ctx, &totalCount, countQuery, reviewID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to count comments by reviewID in DB", slog.String("reviewID", reviewID), slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to count comments by reviewID: %w", err)
	}
	if totalCount == 0 {
		return []*domain.Comment{}, 0, nil
	}

	query := commentSelect + ` WHERE c.review_id = $1 ORDER BY c.created_at DESC` +
		fmt.Sprintf(" LIMIT %d OFFSET %d", params.PageSize, params.offset())

	comments := []*domain.Comment{}
	if err := s.db.SelectContext(ctx, &comments, query, reviewID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list comments by reviewID from DB", slog.String("reviewID", reviewID), slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to list comments by reviewID: %w", err)
	}
	return comments, totalCount, nil
}

// UpdateComment обновляет текст существующего комментария.
func (s *PostgresReviewStore) UpdateComment(ctx context.Context, comment *domain.Comment) error {
	query := `UPDATE comments SET text = $1, updated_at = $2 WHERE id = $3`
	comment.UpdatedAt = time.Now().UTC()

	s.logger.DebugContext(ctx, "Executing UpdateComment query", slog.String("commentID", comment.ID))
	result, err := s.db.ExecContext(ctx, query, comment.Text, comment.UpdatedAt, comment.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update comment in DB", slog.String("commentID", comment.ID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update comment: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check comment update result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// DeleteComment удаляет комментарий.
func (s *PostgresReviewStore) DeleteComment(ctx context.Context, commentID string) error {
	s.logger.DebugContext(ctx, "Executing DeleteComment query", slog.String("commentID", commentID))
	result, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete comment from DB", slog.String("commentID", commentID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check comment delete result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCommentNotFound
	}
	s.logger.InfoContext(ctx, "Comment deleted successfully from DB", slog.String("commentID", commentID))
	return nil
}
