package domain

import (
	"math"
	"time"
)

// Review представляет отзыв на произведение с оценкой 1-10.
// Пара (AuthorID, TitleID) уникальна: один автор - один отзыв на произведение.
// Удаляется каскадно вместе с произведением и вместе с автором.
type Review struct {
	ID             string    `json:"id" db:"id"` // UUID
	TitleID        string    `json:"title_id" db:"title_id"`
	AuthorID       string    `json:"-" db:"author_id"`
	AuthorUsername string    `json:"author" db:"author_username"` // Подтягивается из users при чтении
	Text           string    `json:"text" db:"text"`
	Score          int32     `json:"score" db:"score"` // 1..10
	CreatedAt      time.Time `json:"pub_date" db:"created_at"`
	UpdatedAt      time.Time `json:"-" db:"updated_at"`
}

// Comment представляет комментарий к отзыву.
// Удаляется каскадно вместе с отзывом.
type Comment struct {
	ID             string    `json:"id" db:"id"` // UUID
	ReviewID       string    `json:"review_id" db:"review_id"`
	AuthorID       string    `json:"-" db:"author_id"`
	AuthorUsername string    `json:"author" db:"author_username"`
	Text           string    `json:"text" db:"text"`
	CreatedAt      time.Time `json:"pub_date" db:"created_at"`
	UpdatedAt      time.Time `json:"-" db:"updated_at"`
}

// AggregatedRating содержит агрегированную информацию об оценках произведения.
// Average имеет смысл только при Count > 0.
type AggregatedRating struct {
	TitleID string  `json:"title_id" db:"title_id"`
	Average float64 `json:"average_rating" db:"average_rating"`
	Count   int64   `json:"rating_count" db:"rating_count"`
}

// DisplayRating возвращает отображаемый рейтинг: среднее всех оценок,
// округленное до одного знака, либо nil при отсутствии отзывов.
func (a *AggregatedRating) DisplayRating() *float64 {
	if a == nil || a.Count == 0 {
		return nil
	}
	r := RoundRating(a.Average)
	return &r
}

// RoundRating округляет средний балл до одного знака после запятой.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

// CreateReviewRequest тело запроса создания отзыва (HTTP).
type CreateReviewRequest struct {
	Text  string `json:"text" validate:"required,max=5000"`
	Score int32  `json:"score" validate:"required,gte=1,lte=10"`
}

// UpdateReviewRequest тело запроса частичного обновления отзыва (HTTP).
type UpdateReviewRequest struct {
	Text  *string `json:"text,omitempty" validate:"omitempty,max=5000"`
	Score *int32  `json:"score,omitempty" validate:"omitempty,gte=1,lte=10"`
}

// CreateCommentRequest тело запроса создания комментария (HTTP).
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// UpdateCommentRequest тело запроса обновления комментария (HTTP).
type UpdateCommentRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}
