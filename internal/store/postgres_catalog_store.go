package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Lagmas/api-yamdb/internal/domain"
)

// PostgresCatalogStore реализует CatalogStore для PostgreSQL.
// Рейтинг произведения вычисляется подзапросом AVG(score) при каждом
// чтении: NULL при отсутствии отзывов, округление до одного знака.
type PostgresCatalogStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresCatalogStore создает новый экземпляр PostgresCatalogStore.
func NewPostgresCatalogStore(db *sqlx.DB, logger *slog.Logger) (*PostgresCatalogStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil for PostgresCatalogStore")
	}
	return &PostgresCatalogStore{db: db, logger: logger}, nil
}

// CreateCategory создает новую категорию.
func (s *PostgresCatalogStore) CreateCategory(ctx context.Context, category *domain.Category) error {
	query := `INSERT INTO categories (id, name, slug) VALUES ($1, $2, $3)`

	s.logger.DebugContext(ctx, "Executing CreateCategory query", slog.String("slug", category.Slug))
	_, err := s.db.ExecContext(ctx, query, category.ID, category.Name, category.Slug)
	if err != nil {
		if constraint, ok := isUniqueViolation(err); ok {
			s.logger.WarnContext(ctx, "Category slug already exists (DB constraint)",
				slog.String("slug", category.Slug), slog.String("constraint", constraint))
			return ErrSlugAlreadyExists
		}
		s.logger.ErrorContext(ctx, "Failed to create category in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetCategoryBySlug находит категорию по слагу.
func (s *PostgresCatalogStore) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var category domain.Category
	err := s.db.GetContext(ctx, &category, `SELECT id, name, slug FROM categories WHERE slug = $1`, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get category from DB", slog.String("slug", slug), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// ListCategories возвращает страницу категорий, отсортированных по названию.
func (s *PostgresCatalogStore) ListCategories(ctx context.Context, params ListParams) ([]*domain.Category, int, error) {
	return s.listSlugged(ctx, "categories", params)
}

// DeleteCategory удаляет категорию. У произведений этой категории ссылка
// обнуляется внешним ключом ON DELETE SET NULL.
func (s *PostgresCatalogStore) DeleteCategory(ctx context.Context, slug string) error {
	return s.deleteSlugged(ctx, "categories", slug, ErrCategoryNotFound)
}

// CreateGenre создает новый жанр.
func (s *PostgresCatalogStore) CreateGenre(ctx context.Context, genre *domain.Genre) error {
	query := `INSERT INTO genres (id, name, slug) VALUES ($1, $2, $3)`

	s.logger.DebugContext(ctx, "Executing CreateGenre query", slog.String("slug", genre.Slug))
	_, err := s.db.ExecContext(ctx, query, genre.ID, genre.Name, genre.Slug)
	if err != nil {
		if constraint, ok := isUniqueViolation(err); ok {
			s.logger.WarnContext(ctx, "Genre slug already exists (DB constraint)",
				slog.String("slug", genre.Slug), slog.String("constraint", constraint))
			return ErrSlugAlreadyExists
		}
		s.logger.ErrorContext(ctx, "Failed to create genre in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create genre: %w", err)
	}
	return nil
}

// GetGenreBySlug находит жанр по слагу.
func (s *PostgresCatalogStore) GetGenreBySlug(ctx context.Context, slug string) (*domain.Genre, error) {
	var genre domain.Genre
	err := s.db.GetContext(ctx, &genre, `SELECT id, name, slug FROM genres WHERE slug = $1`, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGenreNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get genre from DB", slog.String("slug", slug), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get genre: %w", err)
	}
	return &genre, nil
}

// ListGenres возвращает страницу жанров, отсортированных по названию.
func (s *PostgresCatalogStore) ListGenres(ctx context.Context, params ListParams) ([]*domain.Genre, int, error) {
	categories, total, err := s.listSlugged(ctx, "genres", params)
	if err != nil {
		return nil, 0, err
	}
	genres := make([]*domain.Genre, len(categories))
	for i, c := range categories {
		genres[i] = &domain.Genre{ID: c.ID, Name: c.Name, Slug: c.Slug}
	}
	return genres, total, nil
}

// DeleteGenre удаляет жанр. Записи таблицы связи genre_title удаляются
// каскадно, сами произведения не затрагиваются.
func (s *PostgresCatalogStore) DeleteGenre(ctx context.Context, slug string) error {
	return s.deleteSlugged(ctx, "genres", slug, ErrGenreNotFound)
}

// listSlugged общий код списков категорий и жанров: таблицы идентичны.
func (s *PostgresCatalogStore) listSlugged(ctx context.Context, table string, params ListParams) ([]*domain.Category, int, error) {
	params = params.Normalize()

	var totalCount int
	if err := s.db.GetContext(ctx, &totalCount, `SELECT COUNT(*) FROM `+table); err != nil {
		s.logger.ErrorContext(ctx, "Failed to count rows in DB", slog.String("table", table), slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	if totalCount == 0 {
		return []*domain.Category{}, 0, nil
	}

	query := `SELECT id, name, slug FROM ` + table + ` ORDER BY name` +
		fmt.Sprintf(" LIMIT %d OFFSET %d", params.PageSize, params.offset())

	rows := []*domain.Category{}
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list rows from DB", slog.String("table", table), slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to list %s: %w", table, err)
	}
	return rows, totalCount, nil
}

func (s *PostgresCatalogStore) deleteSlugged(ctx context.Context, table, slug string, notFound error) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE slug = $1`, slug)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete row from DB",
			slog.String("table", table), slog.String("slug", slug), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	s.logger.InfoContext(ctx, "Row deleted successfully from DB", slog.String("table", table), slog.String("slug", slug))
	return nil
}

// titleSelect общая часть запросов чтения произведений: жанры собираются
// из таблицы связи, рейтинг пересчитывается подзапросом при каждом чтении.
const titleSelect = `
	SELECT t.id, t.name, t.year, t.description, t.category_slug, t.created_at, t.updated_at,
	       COALESCE((SELECT array_agg(gt.genre_slug ORDER BY gt.genre_slug)
	                 FROM genre_title gt WHERE gt.title_id = t.id), '{}') AS genre_slugs,
	       (SELECT ROUND(AVG(r.score)::numeric, 1)::float8
	        FROM reviews r WHERE r.title_id = t.id) AS rating
	FROM titles t`

// CreateTitle создает произведение вместе со связями с жанрами.
func (s *PostgresCatalogStore) CreateTitle(ctx context.Context, title *domain.Title) error {
	title.CreatedAt = time.Now().UTC()
	title.UpdatedAt = title.CreatedAt

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO titles (id, name, year, description, category_slug, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	s.logger.DebugContext(ctx, "Executing CreateTitle query", slog.String("titleID", title.ID))
	_, err = tx.ExecContext(ctx, query,
		title.ID, title.Name, title.Year, title.Description, title.CategorySlug,
		title.CreatedAt, title.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := isForeignKeyViolation(err); ok {
			s.logger.WarnContext(ctx, "Title references missing category (FK violation)",
				slog.String("titleID", title.ID), slog.String("constraint", constraint))
			return ErrCategoryNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to create title in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create title: %w", err)
	}

	if err := s.replaceGenresTx(ctx, tx, title.ID, title.GenreSlugs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit title creation: %w", err)
	}
	s.logger.InfoContext(ctx, "Title created successfully in DB", slog.String("titleID", title.ID))
	return nil
}

// GetTitleByID находит произведение по ID вместе с рейтингом и жанрами.
func (s *PostgresCatalogStore) GetTitleByID(ctx context.Context, titleID string) (*domain.Title, error) {
	var title domain.Title
	err := s.db.GetContext(ctx, &title, titleSelect+` WHERE t.id = $1`, titleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Title not found by ID in DB", slog.String("titleID", titleID))
			return nil, ErrTitleNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get title by ID from DB", slog.String("titleID", titleID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get title by ID: %w", err)
	}
	return &title, nil
}

// ListTitles возвращает страницу произведений по фильтру,
// отсортированных по названию.
func (s *PostgresCatalogStore) ListTitles(ctx context.Context, filter TitleFilter, params ListParams) ([]*domain.Title, int, error) {
	params = params.Normalize()

	where, args := buildTitleFilter(filter)

	var totalCount int
	countQuery := `SELECT COUNT(*) FROM titles t` + where
	if err := s.db.GetContext(ctx, &totalCount, countQuery, args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to count titles in DB", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to count titles: %w", err)
	}
	if totalCount == 0 {
		return []*domain.Title{}, 0, nil
	}

	query := titleSelect + where + ` ORDER BY t.name` +
		fmt.Sprintf(" LIMIT %d OFFSET %d", params.PageSize, params.offset())

	titles := []*domain.Title{}
	if err := s.db.SelectContext(ctx, &titles, query, args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list titles from DB", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to list titles: %w", err)
	}
	return titles, totalCount, nil
}

// buildTitleFilter собирает WHERE-часть запроса списка произведений.
func buildTitleFilter(filter TitleFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	addClause := func(condition string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, strings.Replace(condition, "?", "$"+strconv.Itoa(len(args)), 1))
	}

	if filter.CategorySlug != "" {
		addClause("t.category_slug = ?", filter.CategorySlug)
	}
	if filter.GenreSlug != "" {
		addClause("EXISTS (SELECT 1 FROM genre_title gt WHERE gt.title_id = t.id AND gt.genre_slug = ?)", filter.GenreSlug)
	}
	if filter.Name != "" {
		addClause("t.name ILIKE '%' || ? || '%'", filter.Name)
	}
	if filter.Year != 0 {
		addClause("t.year = ?", filter.Year)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// UpdateTitle обновляет произведение и заменяет его связи с жанрами.
func (s *PostgresCatalogStore) UpdateTitle(ctx context.Context, title *domain.Title) error {
	title.UpdatedAt = time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE titles SET name = $1, year = $2, description = $3, category_slug = $4, updated_at = $5
              WHERE id = $6`
	s.logger.DebugContext(ctx, "Executing UpdateTitle query", slog.String("titleID", title.ID))
	result, err := tx.ExecContext(ctx, query,
		title.Name, title.Year, title.Description, title.CategorySlug, title.UpdatedAt, title.ID,
	)
	if err != nil {
		if constraint, ok := isForeignKeyViolation(err); ok {
			s.logger.WarnContext(ctx, "Title update references missing category (FK violation)",
				slog.String("titleID", title.ID), slog.String("constraint", constraint))
			return ErrCategoryNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to update title in DB", slog.String("titleID", title.ID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update title: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTitleNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM genre_title WHERE title_id = $1`, title.ID); err != nil {
		return fmt.Errorf("failed to clear title genres: %w", err)
	}
	if err := s.replaceGenresTx(ctx, tx, title.ID, title.GenreSlugs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit title update: %w", err)
	}
	s.logger.InfoContext(ctx, "Title updated successfully in DB", slog.String("titleID", title.ID))
	return nil
}

// DeleteTitle удаляет произведение. Отзывы и их комментарии удаляются
// каскадно внешними ключами (см. schema.sql).
func (s *PostgresCatalogStore) DeleteTitle(ctx context.Context, titleID string) error {
	s.logger.DebugContext(ctx, "Executing DeleteTitle query", slog.String("titleID", titleID))
	result, err := s.db.ExecContext(ctx, `DELETE FROM titles WHERE id = $1`, titleID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete title from DB", slog.String("titleID", titleID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete title: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTitleNotFound
	}
	s.logger.InfoContext(ctx, "Title deleted successfully from DB", slog.String("titleID", titleID))
	return nil
}

// replaceGenresTx вставляет связи произведения с жанрами внутри транзакции.
func (s *PostgresCatalogStore) replaceGenresTx(ctx context.Context, tx *sqlx.Tx, titleID string, genreSlugs []string) error {
	for _, slug := range genreSlugs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO genre_title (title_id, genre_slug) VALUES ($1, $2)`, titleID, slug)
		if err != nil {
			if constraint, ok := isForeignKeyViolation(err); ok {
				s.logger.WarnContext(ctx, "Title references missing genre (FK violation)",
					slog.String("titleID", titleID), slog.String("genre", slug), slog.String("constraint", constraint))
				return ErrGenreNotFound
			}
			return fmt.Errorf("failed to link genre %s: %w", slug, err)
		}
	}
	return nil
}
