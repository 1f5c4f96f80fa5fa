package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lagmas/api-yamdb/internal/domain"
)

func addReview(t *testing.T, s *MockReviewStore, id, titleID, authorID string, score int32) *domain.Review {
	t.Helper()
	review := &domain.Review{ID: id, TitleID: titleID, AuthorID: authorID, Text: "text", Score: score}
	require.NoError(t, s.CreateReview(context.Background(), review))
	return review
}

func TestMockReviewStoreRejectsSecondReviewFromSameAuthor(t *testing.T) {
	s := NewMockReviewStore()
	ctx := context.Background()

	addReview(t, s, "r1", "t1", "author-1", 7)

	err := s.CreateReview(ctx, &domain.Review{ID: "r2", TitleID: "t1", AuthorID: "author-1", Score: 9})
	assert.ErrorIs(t, err, ErrDuplicateReview)

	// На другое произведение - можно
	require.NoError(t, s.CreateReview(ctx, &domain.Review{ID: "r3", TitleID: "t2", AuthorID: "author-1", Score: 9}))
	// Другой автор на то же - тоже
	require.NoError(t, s.CreateReview(ctx, &domain.Review{ID: "r4", TitleID: "t1", AuthorID: "author-2", Score: 5}))
}

func TestMockReviewStoreDeleteFreesUniqueSlot(t *testing.T) {
	s := NewMockReviewStore()
	ctx := context.Background()

	addReview(t, s, "r1", "t1", "author-1", 7)
	require.NoError(t, s.DeleteReview(ctx, "r1"))

	// После удаления автор снова может оставить отзыв
	require.NoError(t, s.CreateReview(ctx, &domain.Review{ID: "r2", TitleID: "t1", AuthorID: "author-1", Score: 8}))
}

func TestMockReviewStoreDeleteCascadesToComments(t *testing.T) {
	s := NewMockReviewStore()
	ctx := context.Background()

	addReview(t, s, "r1", "t1", "author-1", 7)
	require.NoError(t, s.CreateComment(ctx, &domain.Comment{ID: "c1", ReviewID: "r1", AuthorID: "author-2", Text: "x"}))
	require.NoError(t, s.CreateComment(ctx, &domain.Comment{ID: "c2", ReviewID: "r1", AuthorID: "author-3", Text: "y"}))

	require.NoError(t, s.DeleteReview(ctx, "r1"))

	_, err := s.GetCommentByID(ctx, "c1")
	assert.ErrorIs(t, err, ErrCommentNotFound)
	_, err = s.GetCommentByID(ctx, "c2")
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestMockReviewStoreCommentRequiresReview(t *testing.T) {
	s := NewMockReviewStore()
	err := s.CreateComment(context.Background(), &domain.Comment{ID: "c1", ReviewID: "ghost", Text: "x"})
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestMockReviewStoreAggregatedRating(t *testing.T) {
	s := NewMockReviewStore()
	ctx := context.Background()

	t.Run("без отзывов", func(t *testing.T) {
		agg, err := s.GetAggregatedRatingByTitleID(ctx, "t1")
		require.NoError(t, err)
		assert.EqualValues(t, 0, agg.Count)
		assert.Nil(t, agg.DisplayRating())
	})

	t.Run("среднее по оценкам", func(t *testing.T) {
		addReview(t, s, "r1", "t1", "a1", 8)
		addReview(t, s, "r2", "t1", "a2", 6)
		addReview(t, s, "r3", "t1", "a3", 10)
		// Чужое произведение в расчет не входит
		addReview(t, s, "r4", "t2", "a1", 1)

		agg, err := s.GetAggregatedRatingByTitleID(ctx, "t1")
		require.NoError(t, err)
		assert.EqualValues(t, 3, agg.Count)

		rating := agg.DisplayRating()
		require.NotNil(t, rating)
		assert.InDelta(t, 8.0, *rating, 1e-9)
	})
}

func TestMockReviewStoreListNewestFirst(t *testing.T) {
	s := NewMockReviewStore()
	ctx := context.Background()

	addReview(t, s, "r1", "t1", "a1", 5)
	time.Sleep(2 * time.Millisecond)
	addReview(t, s, "r2", "t1", "a2", 6)
	time.Sleep(2 * time.Millisecond)
	addReview(t, s, "r3", "t1", "a3", 7)

	reviews, total, err := s.ListReviewsByTitle(ctx, "t1", ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, reviews, 3)
	assert.Equal(t, "r3", reviews[0].ID)
	assert.Equal(t, "r2", reviews[1].ID)
	assert.Equal(t, "r1", reviews[2].ID)
}

func TestMockReviewStorePagination(t *testing.T) {
	s := NewMockReviewStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		addReview(t, s, string(rune('a'+i)), "t1", string(rune('A'+i)), 5)
		time.Sleep(time.Millisecond)
	}

	page, total, err := s.ListReviewsByTitle(ctx, "t1", ListParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page, 2)

	// Страница за пределами данных пуста, но total сохраняется
	empty, total, err := s.ListReviewsByTitle(ctx, "t1", ListParams{Page: 99, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, empty)
}

func TestMockReviewStoreUpdateReview(t *testing.T) {
	s := NewMockReviewStore()
	ctx := context.Background()

	addReview(t, s, "r1", "t1", "a1", 5)

	err := s.UpdateReview(ctx, &domain.Review{ID: "ghost", Text: "x", Score: 1})
	assert.ErrorIs(t, err, ErrReviewNotFound)

	require.NoError(t, s.UpdateReview(ctx, &domain.Review{ID: "r1", Text: "updated", Score: 9}))
	got, err := s.GetReviewByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Text)
	assert.EqualValues(t, 9, got.Score)
}
