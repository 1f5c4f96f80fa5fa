package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Ошибки доменных проверок значений.
var (
	ErrYearInFuture = errors.New("year must not be in the future")
	ErrScoreRange   = errors.New("score must be between 1 and 10")
)

// Category представляет категорию произведения ("Фильмы", "Книги" и т.д.).
// Slug служит внешним идентификатором категории в API.
type Category struct {
	ID   string `json:"-" db:"id"` // UUID, наружу не отдается
	Name string `json:"name" db:"name"`
	Slug string `json:"slug" db:"slug"`
}

// Genre представляет жанр произведения.
// Slug служит внешним идентификатором жанра в API.
type Genre struct {
	ID   string `json:"-" db:"id"` // UUID
	Name string `json:"name" db:"name"`
	Slug string `json:"slug" db:"slug"`
}

// Title представляет произведение, на которое оставляют отзывы.
// Rating не хранится в таблице titles: это производное значение,
// пересчитываемое при каждом чтении из текущего набора отзывов.
// nil означает отсутствие отзывов (не ноль!).
type Title struct {
	ID           string         `json:"id" db:"id"` // UUID
	Name         string         `json:"name" db:"name"`
	Year         int            `json:"year" db:"year"`
	Description  string         `json:"description,omitempty" db:"description"`
	CategorySlug *string        `json:"category" db:"category_slug"` // null, если категория удалена
	GenreSlugs   pq.StringArray `json:"genres" db:"genre_slugs"`
	Rating       *float64       `json:"rating" db:"rating"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// ValidateYear проверяет, что год выхода произведения не находится в будущем.
// Тегом валидатора это не выразить - граница зависит от текущей даты.
func ValidateYear(year int) error {
	if current := time.Now().Year(); year > current {
		return fmt.Errorf("%w: got %d, current year is %d", ErrYearInFuture, year, current)
	}
	return nil
}

// ValidateScore проверяет, что оценка лежит в диапазоне [1, 10].
func ValidateScore(score int32) error {
	if score < 1 || score > 10 {
		return fmt.Errorf("%w: got %d", ErrScoreRange, score)
	}
	return nil
}

// CreateCategoryRequest тело запроса создания категории (HTTP).
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
	Slug string `json:"slug" validate:"required,min=1,max=50"`
}

// CreateGenreRequest тело запроса создания жанра (HTTP).
type CreateGenreRequest struct {
	Name string `json:"name" validate:"required,min=1,max=256"`
	Slug string `json:"slug" validate:"required,min=1,max=50"`
}

// CreateTitleRequest тело запроса создания произведения (HTTP).
// Жанры и категория передаются слагами, как в ответах API.
type CreateTitleRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=200"`
	Year        int      `json:"year" validate:"required"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=5000"`
	Category    string   `json:"category,omitempty" validate:"omitempty,max=50"`
	Genres      []string `json:"genres,omitempty" validate:"omitempty,dive,min=1,max=50"`
}

// UpdateTitleRequest тело запроса частичного обновления произведения (HTTP).
type UpdateTitleRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Year        *int     `json:"year,omitempty"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,max=50"`
	Genres      []string `json:"genres,omitempty" validate:"omitempty,dive,min=1,max=50"`
}
