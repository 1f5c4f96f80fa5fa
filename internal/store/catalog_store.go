package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Lagmas/api-yamdb/internal/domain"
)

// Кастомные ошибки хранилища каталога.
var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrGenreNotFound     = errors.New("genre not found")
	ErrTitleNotFound     = errors.New("title not found")
	ErrSlugAlreadyExists = errors.New("slug already exists")
)

// CatalogStore определяет интерфейс для операций с категориями, жанрами
// и произведениями. Произведения при чтении возвращаются вместе с
// производным рейтингом (средним баллом отзывов, nil при их отсутствии).
type CatalogStore interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	ListCategories(ctx context.Context, params ListParams) ([]*domain.Category, int, error)
	DeleteCategory(ctx context.Context, slug string) error

	CreateGenre(ctx context.Context, genre *domain.Genre) error
	GetGenreBySlug(ctx context.Context, slug string) (*domain.Genre, error)
	ListGenres(ctx context.Context, params ListParams) ([]*domain.Genre, int, error)
	DeleteGenre(ctx context.Context, slug string) error

	CreateTitle(ctx context.Context, title *domain.Title) error
	GetTitleByID(ctx context.Context, titleID string) (*domain.Title, error)
	ListTitles(ctx context.Context, filter TitleFilter, params ListParams) ([]*domain.Title, int, error)
	UpdateTitle(ctx context.Context, title *domain.Title) error
	DeleteTitle(ctx context.Context, titleID string) error
}

// MockCatalogStore in-memory реализация CatalogStore для разработки и тестов.
// Воспроизводит поведение FK: удаление категории обнуляет ссылку у
// произведений, удаление произведения каскадно удаляет его отзывы
// (и их комментарии) через переданный MockReviewStore.
type MockCatalogStore struct {
	mu         sync.RWMutex
	categories map[string]*domain.Category // Ключ: slug
	genres     map[string]*domain.Genre    // Ключ: slug
	titles     map[string]*domain.Title    // Ключ: titleID
	reviews    *MockReviewStore            // Для рейтинга и каскадов, может быть nil
}

// NewMockCatalogStore создает новый экземпляр MockCatalogStore.
func NewMockCatalogStore(reviews *MockReviewStore) *MockCatalogStore {
	return &MockCatalogStore{
		categories: make(map[string]*domain.Category),
		genres:     make(map[string]*domain.Genre),
		titles:     make(map[string]*domain.Title),
		reviews:    reviews,
	}
}

func (m *MockCatalogStore) CreateCategory(ctx context.Context, category *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.categories[category.Slug]; exists {
		return ErrSlugAlreadyExists
	}
	categoryCopy := *category
	m.categories[category.Slug] = &categoryCopy
	return nil
}

func (m *MockCatalogStore) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if category, ok := m.categories[slug]; ok {
		categoryCopy := *category
		return &categoryCopy, nil
	}
	return nil, ErrCategoryNotFound
}

func (m *MockCatalogStore) ListCategories(ctx context.Context, params ListParams) ([]*domain.Category, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*domain.Category, 0, len(m.categories))
	for _, category := range m.categories {
		categoryCopy := *category
		all = append(all, &categoryCopy)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	params = params.Normalize()
	start, end := params.paginate(len(all))
	return all[start:end], len(all), nil
}

func (m *MockCatalogStore) DeleteCategory(ctx context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[slug]; !ok {
		return ErrCategoryNotFound
	}
	delete(m.categories, slug)

	// SET NULL: произведения остаются, но теряют ссылку на категорию
	for _, title := range m.titles {
		if title.CategorySlug != nil && *title.CategorySlug == slug {
			title.CategorySlug = nil
		}
	}
	return nil
}

func (m *MockCatalogStore) CreateGenre(ctx context.Context, genre *domain.Genre) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.genres[genre.Slug]; exists {
		return ErrSlugAlreadyExists
	}
	genreCopy := *genre
	m.genres[genre.Slug] = &genreCopy
	return nil
}

func (m *MockCatalogStore) GetGenreBySlug(ctx context.Context, slug string) (*domain.Genre, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if genre, ok := m.genres[slug]; ok {
		genreCopy := *genre
		return &genreCopy, nil
	}
	return nil, ErrGenreNotFound
}

func (m *MockCatalogStore) ListGenres(ctx context.Context, params ListParams) ([]*domain.Genre, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*domain.Genre, 0, len(m.genres))
	for _, genre := range m.genres {
		genreCopy := *genre
		all = append(all, &genreCopy)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	params = params.Normalize()
	start, end := params.paginate(len(all))
	return all[start:end], len(all), nil
}

func (m *MockCatalogStore) DeleteGenre(ctx context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.genres[slug]; !ok {
		return ErrGenreNotFound
	}
	delete(m.genres, slug)

	// Каскад по таблице связи: жанр исчезает из списков произведений
	for _, title := range m.titles {
		kept := title.GenreSlugs[:0]
		for _, gs := range title.GenreSlugs {
			if gs != slug {
				kept = append(kept, gs)
			}
		}
		title.GenreSlugs = kept
	}
	return nil
}

func (m *MockCatalogStore) CreateTitle(ctx context.Context, title *domain.Title) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if title.CategorySlug != nil {
		if _, ok := m.categories[*title.CategorySlug]; !ok {
			return ErrCategoryNotFound
		}
	}
	for _, gs := range title.GenreSlugs {
		if _, ok := m.genres[gs]; !ok {
			return ErrGenreNotFound
		}
	}

	titleCopy := *title
	titleCopy.CreatedAt = time.Now().UTC()
	titleCopy.UpdatedAt = titleCopy.CreatedAt
	m.titles[title.ID] = &titleCopy
	return nil
}

func (m *MockCatalogStore) GetTitleByID(ctx context.Context, titleID string) (*domain.Title, error) {
	m.mu.RLock()
	title, ok := m.titles[titleID]
	if !ok {
		m.mu.RUnlock()
		return nil, ErrTitleNotFound
	}
	titleCopy := *title
	m.mu.RUnlock()

	m.attachRating(ctx, &titleCopy)
	return &titleCopy, nil
}

func (m *MockCatalogStore) ListTitles(ctx context.Context, filter TitleFilter, params ListParams) ([]*domain.Title, int, error) {
	m.mu.RLock()
	var result []*domain.Title
	for _, title := range m.titles {
		if !matchesTitleFilter(title, filter) {
			continue
		}
		titleCopy := *title
		result = append(result, &titleCopy)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	params = params.Normalize()
	start, end := params.paginate(len(result))
	page := result[start:end]
	for _, title := range page {
		m.attachRating(ctx, title)
	}
	return page, len(result), nil
}

func (m *MockCatalogStore) UpdateTitle(ctx context.Context, title *domain.Title) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.titles[title.ID]
	if !ok {
		return ErrTitleNotFound
	}
	if title.CategorySlug != nil {
		if _, found := m.categories[*title.CategorySlug]; !found {
			return ErrCategoryNotFound
		}
	}
	for _, gs := range title.GenreSlugs {
		if _, found := m.genres[gs]; !found {
			return ErrGenreNotFound
		}
	}

	titleCopy := *title
	titleCopy.CreatedAt = existing.CreatedAt
	titleCopy.UpdatedAt = time.Now().UTC()
	m.titles[title.ID] = &titleCopy
	return nil
}

func (m *MockCatalogStore) DeleteTitle(ctx context.Context, titleID string) error {
	m.mu.Lock()
	if _, ok := m.titles[titleID]; !ok {
		m.mu.Unlock()
		return ErrTitleNotFound
	}
	delete(m.titles, titleID)
	m.mu.Unlock()

	// Каскад как в БД: отзывы произведения и их комментарии
	if m.reviews != nil {
		m.reviews.deleteByTitle(titleID)
	}
	return nil
}

// attachRating подставляет произведению производный рейтинг.
// Пересчитывается при каждом чтении, никакого кеширования.
func (m *MockCatalogStore) attachRating(ctx context.Context, title *domain.Title) {
	title.Rating = nil
	if m.reviews == nil {
		return
	}
	agg, err := m.reviews.GetAggregatedRatingByTitleID(ctx, title.ID)
	if err != nil {
		return
	}
	title.Rating = agg.DisplayRating()
}

func matchesTitleFilter(title *domain.Title, filter TitleFilter) bool {
	if filter.CategorySlug != "" {
		if title.CategorySlug == nil || *title.CategorySlug != filter.CategorySlug {
			return false
		}
	}
	if filter.GenreSlug != "" {
		found := false
		for _, gs := range title.GenreSlugs {
			if gs == filter.GenreSlug {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Name != "" && !strings.Contains(strings.ToLower(title.Name), strings.ToLower(filter.Name)) {
		return false
	}
	if filter.Year != 0 && title.Year != filter.Year {
		return false
	}
	return true
}
