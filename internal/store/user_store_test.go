package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lagmas/api-yamdb/internal/domain"
)

func addUser(t *testing.T, s *MockUserStore, id, username, email string) *domain.User {
	t.Helper()
	user := &domain.User{ID: id, Username: username, Email: email, Role: domain.RoleUser}
	require.NoError(t, s.Create(context.Background(), user))
	return user
}

func TestMockUserStoreUniqueness(t *testing.T) {
	s := NewMockUserStore(nil)
	ctx := context.Background()

	addUser(t, s, "u1", "reader", "reader@example.com")

	err := s.Create(ctx, &domain.User{ID: "u2", Username: "reader", Email: "other@example.com"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	err = s.Create(ctx, &domain.User{ID: "u2", Username: "other", Email: "reader@example.com"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	// Email сравнивается без учета регистра
	err = s.Create(ctx, &domain.User{ID: "u2", Username: "other", Email: "READER@example.com"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestMockUserStoreLookups(t *testing.T) {
	s := NewMockUserStore(nil)
	ctx := context.Background()

	created := addUser(t, s, "u1", "reader", "reader@example.com")

	byID, err := s.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, created.Username, byID.Username)

	byName, err := s.GetByUsername(ctx, "reader")
	require.NoError(t, err)
	assert.Equal(t, "u1", byName.ID)

	byEmail, err := s.GetByEmail(ctx, "Reader@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)

	_, err = s.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMockUserStoreUpdateKeepsUniqueness(t *testing.T) {
	s := NewMockUserStore(nil)
	ctx := context.Background()

	addUser(t, s, "u1", "reader", "reader@example.com")
	second := addUser(t, s, "u2", "writer", "writer@example.com")

	second.Username = "reader"
	assert.ErrorIs(t, s.Update(ctx, second), ErrUserAlreadyExists)

	second.Username = "writer"
	second.Role = domain.RoleModerator
	require.NoError(t, s.Update(ctx, second))

	got, err := s.GetByID(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleModerator, got.Role)
}

func TestMockUserStoreDeleteCascades(t *testing.T) {
	reviews := NewMockReviewStore()
	s := NewMockUserStore(reviews)
	ctx := context.Background()

	addUser(t, s, "u1", "reader", "reader@example.com")
	addReview(t, reviews, "r1", "t1", "u1", 7)
	require.NoError(t, reviews.CreateComment(ctx, &domain.Comment{ID: "cm1", ReviewID: "r1", AuthorID: "u1", Text: "x"}))

	// Комментарий пользователя под чужим отзывом тоже должен уйти
	addReview(t, reviews, "r2", "t1", "other", 5)
	require.NoError(t, reviews.CreateComment(ctx, &domain.Comment{ID: "cm2", ReviewID: "r2", AuthorID: "u1", Text: "y"}))

	require.NoError(t, s.Delete(ctx, "reader"))

	_, err := s.GetByUsername(ctx, "reader")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = reviews.GetReviewByID(ctx, "r1")
	assert.ErrorIs(t, err, ErrReviewNotFound)
	_, err = reviews.GetCommentByID(ctx, "cm1")
	assert.ErrorIs(t, err, ErrCommentNotFound)
	_, err = reviews.GetCommentByID(ctx, "cm2")
	assert.ErrorIs(t, err, ErrCommentNotFound)

	// Чужой отзыв не тронут
	_, err = reviews.GetReviewByID(ctx, "r2")
	assert.NoError(t, err)
}

func TestMockUserStoreListSortedByUsername(t *testing.T) {
	s := NewMockUserStore(nil)
	ctx := context.Background()

	addUser(t, s, "u1", "charlie", "c@example.com")
	addUser(t, s, "u2", "alice", "a@example.com")
	addUser(t, s, "u3", "bob", "b@example.com")

	users, total, err := s.List(ctx, ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, users, 3)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	assert.Equal(t, "charlie", users[2].Username)
}
