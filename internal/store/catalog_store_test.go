package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lagmas/api-yamdb/internal/domain"
)

func newTestCatalog(t *testing.T) (*MockCatalogStore, *MockReviewStore) {
	t.Helper()
	reviews := NewMockReviewStore()
	catalog := NewMockCatalogStore(reviews)
	ctx := context.Background()
	require.NoError(t, catalog.CreateCategory(ctx, &domain.Category{ID: "c1", Name: "Фильмы", Slug: "movies"}))
	require.NoError(t, catalog.CreateGenre(ctx, &domain.Genre{ID: "g1", Name: "Драма", Slug: "drama"}))
	require.NoError(t, catalog.CreateGenre(ctx, &domain.Genre{ID: "g2", Name: "Комедия", Slug: "comedy"}))
	return catalog, reviews
}

func strptr(s string) *string { return &s }

func TestMockCatalogStoreSlugUniqueness(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()

	err := catalog.CreateCategory(ctx, &domain.Category{ID: "c2", Name: "Другое", Slug: "movies"})
	assert.ErrorIs(t, err, ErrSlugAlreadyExists)

	err = catalog.CreateGenre(ctx, &domain.Genre{ID: "g3", Name: "Другое", Slug: "drama"})
	assert.ErrorIs(t, err, ErrSlugAlreadyExists)
}

func TestMockCatalogStoreCreateTitleChecksReferences(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()

	err := catalog.CreateTitle(ctx, &domain.Title{ID: "t1", Name: "X", Year: 2000, CategorySlug: strptr("ghost")})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	err = catalog.CreateTitle(ctx, &domain.Title{ID: "t1", Name: "X", Year: 2000, GenreSlugs: []string{"ghost"}})
	assert.ErrorIs(t, err, ErrGenreNotFound)

	require.NoError(t, catalog.CreateTitle(ctx, &domain.Title{
		ID: "t1", Name: "X", Year: 2000,
		CategorySlug: strptr("movies"), GenreSlugs: []string{"drama", "comedy"},
	}))
}

func TestMockCatalogStoreDeleteCategoryKeepsTitles(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, catalog.CreateTitle(ctx, &domain.Title{
		ID: "t1", Name: "X", Year: 2000, CategorySlug: strptr("movies"),
	}))
	require.NoError(t, catalog.DeleteCategory(ctx, "movies"))

	// Произведение осталось, но без категории
	title, err := catalog.GetTitleByID(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, title.CategorySlug)

	assert.ErrorIs(t, catalog.DeleteCategory(ctx, "movies"), ErrCategoryNotFound)
}

func TestMockCatalogStoreDeleteGenreStripsSlug(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, catalog.CreateTitle(ctx, &domain.Title{
		ID: "t1", Name: "X", Year: 2000, GenreSlugs: []string{"drama", "comedy"},
	}))
	require.NoError(t, catalog.DeleteGenre(ctx, "drama"))

	title, err := catalog.GetTitleByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"comedy"}, []string(title.GenreSlugs))
}

func TestMockCatalogStoreDeleteTitleCascades(t *testing.T) {
	catalog, reviews := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, catalog.CreateTitle(ctx, &domain.Title{ID: "t1", Name: "X", Year: 2000}))
	addReview(t, reviews, "r1", "t1", "a1", 7)
	require.NoError(t, reviews.CreateComment(ctx, &domain.Comment{ID: "cm1", ReviewID: "r1", AuthorID: "a2", Text: "x"}))

	require.NoError(t, catalog.DeleteTitle(ctx, "t1"))

	_, err := reviews.GetReviewByID(ctx, "r1")
	assert.ErrorIs(t, err, ErrReviewNotFound)
	_, err = reviews.GetCommentByID(ctx, "cm1")
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestMockCatalogStoreDerivedRating(t *testing.T) {
	catalog, reviews := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, catalog.CreateTitle(ctx, &domain.Title{ID: "t1", Name: "X", Year: 2000}))

	// Без отзывов рейтинг null
	title, err := catalog.GetTitleByID(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, title.Rating)

	addReview(t, reviews, "r1", "t1", "a1", 8)
	addReview(t, reviews, "r2", "t1", "a2", 6)
	addReview(t, reviews, "r3", "t1", "a3", 10)

	title, err = catalog.GetTitleByID(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, title.Rating)
	assert.InDelta(t, 8.0, *title.Rating, 1e-9)

	// Удаление отзыва сразу отражается на рейтинге
	require.NoError(t, reviews.DeleteReview(ctx, "r3"))
	title, err = catalog.GetTitleByID(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, title.Rating)
	assert.InDelta(t, 7.0, *title.Rating, 1e-9)
}

func TestMockCatalogStoreListTitlesFilters(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, catalog.CreateTitle(ctx, &domain.Title{
		ID: "t1", Name: "Зеленая миля", Year: 1999,
		CategorySlug: strptr("movies"), GenreSlugs: []string{"drama"},
	}))
	require.NoError(t, catalog.CreateTitle(ctx, &domain.Title{
		ID: "t2", Name: "Большой Лебовски", Year: 1998,
		CategorySlug: strptr("movies"), GenreSlugs: []string{"comedy"},
	}))

	tests := []struct {
		name    string
		filter  TitleFilter
		wantIDs []string
	}{
		{"без фильтра", TitleFilter{}, []string{"t2", "t1"}}, // Сортировка по имени
		{"по жанру", TitleFilter{GenreSlug: "drama"}, []string{"t1"}},
		{"по году", TitleFilter{Year: 1998}, []string{"t2"}},
		{"по подстроке имени", TitleFilter{Name: "лебовски"}, []string{"t2"}},
		{"по категории", TitleFilter{CategorySlug: "movies"}, []string{"t2", "t1"}},
		{"ничего не найдено", TitleFilter{GenreSlug: "drama", Year: 1998}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			titles, total, err := catalog.ListTitles(ctx, tt.filter, ListParams{})
			require.NoError(t, err)
			assert.Equal(t, len(tt.wantIDs), total)

			var ids []string
			for _, title := range titles {
				ids = append(ids, title.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}
