package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Lagmas/api-yamdb/internal/domain"
)

// Кастомные ошибки хранилища отзывов и комментариев.
var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("author has already reviewed this title")
	ErrCommentNotFound = errors.New("comment not found")
)

// ReviewStore определяет интерфейс для операций с отзывами и комментариями.
// Списки возвращаются от новых к старым.
type ReviewStore interface {
	CreateReview(ctx context.Context, review *domain.Review) error
	GetReviewByID(ctx context.Context, reviewID string) (*domain.Review, error)
	ListReviewsByTitle(ctx context.Context, titleID string, params ListParams) ([]*domain.Review, int, error)
	UpdateReview(ctx context.Context, review *domain.Review) error
	DeleteReview(ctx context.Context, reviewID string) error
	GetAggregatedRatingByTitleID(ctx context.Context, titleID string) (*domain.AggregatedRating, error)

	CreateComment(ctx context.Context, comment *domain.Comment) error
	GetCommentByID(ctx context.Context, commentID string) (*domain.Comment, error)
	ListCommentsByReview(ctx context.Context, reviewID string, params ListParams) ([]*domain.Comment, int, error)
	UpdateComment(ctx context.Context, comment *domain.Comment) error
	DeleteComment(ctx context.Context, commentID string) error
}

// MockReviewStore in-memory реализация ReviewStore для разработки и тестов.
// Воспроизводит ограничение уникальности (author, title) и каскадные
// удаления комментариев вместе с отзывом.
type MockReviewStore struct {
	mu        sync.RWMutex
	reviews   map[string]*domain.Review  // Ключ: reviewID
	comments  map[string]*domain.Comment // Ключ: commentID
	authorIdx map[string]map[string]bool // map[titleID]map[authorID]bool для проверки дубликатов
}

// NewMockReviewStore создает новый экземпляр MockReviewStore.
func NewMockReviewStore() *MockReviewStore {
	return &MockReviewStore{
		reviews:   make(map[string]*domain.Review),
		comments:  make(map[string]*domain.Comment),
		authorIdx: make(map[string]map[string]bool),
	}
}

func (m *MockReviewStore) CreateReview(ctx context.Context, review *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.authorIdx[review.TitleID][review.AuthorID] {
		return ErrDuplicateReview
	}

	reviewCopy := *review
	reviewCopy.CreatedAt = time.Now().UTC()
	reviewCopy.UpdatedAt = reviewCopy.CreatedAt
	m.reviews[review.ID] = &reviewCopy

	if m.authorIdx[review.TitleID] == nil {
		m.authorIdx[review.TitleID] = make(map[string]bool)
	}
	m.authorIdx[review.TitleID][review.AuthorID] = true
	return nil
}

func (m *MockReviewStore) GetReviewByID(ctx context.Context, reviewID string) (*domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if review, ok := m.reviews[reviewID]; ok {
		reviewCopy := *review
		return &reviewCopy, nil
	}
	return nil, ErrReviewNotFound
}

func (m *MockReviewStore) ListReviewsByTitle(ctx context.Context, titleID string, params ListParams) ([]*domain.Review, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*domain.Review
	for _, review := range m.reviews {
		if review.TitleID == titleID {
			reviewCopy := *review
			result = append(result, &reviewCopy)
		}
	}
	// От новых к старым
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })

	params = params.Normalize()
	start, end := params.paginate(len(result))
	return result[start:end], len(result), nil
}

func (m *MockReviewStore) UpdateReview(ctx context.Context, review *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.reviews[review.ID]
	if !ok {
		return ErrReviewNotFound
	}
	existing.Text = review.Text
	existing.Score = review.Score
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockReviewStore) DeleteReview(ctx context.Context, reviewID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	review, ok := m.reviews[reviewID]
	if !ok {
		return ErrReviewNotFound
	}
	m.dropReviewLocked(review)
	return nil
}

// dropReviewLocked удаляет отзыв, его комментарии и запись в индексе
// дубликатов. Вызывается под уже взятым m.mu.
func (m *MockReviewStore) dropReviewLocked(review *domain.Review) {
	delete(m.reviews, review.ID)

	for id, comment := range m.comments {
		if comment.ReviewID == review.ID {
			delete(m.comments, id)
		}
	}

	if idx := m.authorIdx[review.TitleID]; idx != nil {
		delete(idx, review.AuthorID)
		if len(idx) == 0 {
			delete(m.authorIdx, review.TitleID)
		}
	}
}

// deleteByTitle каскадно удаляет все отзывы произведения вместе с их
// комментариями. Используется MockCatalogStore при удалении произведения.
func (m *MockReviewStore) deleteByTitle(titleID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, review := range m.reviews {
		if review.TitleID == titleID {
			m.dropReviewLocked(review)
		}
	}
}

// deleteByAuthor каскадно удаляет отзывы и комментарии пользователя.
// Используется MockUserStore при удалении учетной записи.
func (m *MockReviewStore) deleteByAuthor(authorID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, review := range m.reviews {
		if review.AuthorID == authorID {
			m.dropReviewLocked(review)
		}
	}
	for id, comment := range m.comments {
		if comment.AuthorID == authorID {
			delete(m.comments, id)
		}
	}
}

func (m *MockReviewStore) GetAggregatedRatingByTitleID(ctx context.Context, titleID string) (*domain.AggregatedRating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	agg := &domain.AggregatedRating{TitleID: titleID}
	var sum int64
	for _, review := range m.reviews {
		if review.TitleID == titleID {
			sum += int64(review.Score)
			agg.Count++
		}
	}
	if agg.Count > 0 {
		agg.Average = float64(sum) / float64(agg.Count)
	}
	return agg, nil
}

func (m *MockReviewStore) CreateComment(ctx context.Context, comment *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reviews[comment.ReviewID]; !ok {
		return ErrReviewNotFound
	}

	commentCopy := *comment
	commentCopy.CreatedAt = time.Now().UTC()
	commentCopy.UpdatedAt = commentCopy.CreatedAt
	m.comments[comment.ID] = &commentCopy
	return nil
}

func (m *MockReviewStore) GetCommentByID(ctx context.Context, commentID string) (*domain.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if comment, ok := m.comments[commentID]; ok {
		commentCopy := *comment
		return &commentCopy, nil
	}
	return nil, ErrCommentNotFound
}

func (m *MockReviewStore) ListCommentsByReview(ctx context.Context, reviewID string, params ListParams) ([]*domain.Comment, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*domain.Comment
	for _, comment := range m.comments {
		if comment.ReviewID == reviewID {
			commentCopy := *comment
			result = append(result, &commentCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })

	params = params.Normalize()
	start, end := params.paginate(len(result))
	return result[start:end], len(result), nil
}

func (m *MockReviewStore) UpdateComment(ctx context.Context, comment *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.comments[comment.ID]
	if !ok {
		return ErrCommentNotFound
	}
	existing.Text = comment.Text
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockReviewStore) DeleteComment(ctx context.Context, commentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.comments[commentID]; !ok {
		return ErrCommentNotFound
	}
	delete(m.comments, commentID)
	return nil
}
