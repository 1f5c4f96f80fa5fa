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

// Кастомные ошибки хранилища пользователей.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this email or username already exists")
)

// UserStore определяет интерфейс для операций с данными пользователей.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, username string) error
	List(ctx context.Context, params ListParams) ([]*domain.User, int, error)
}

// MockUserStore in-memory реализация UserStore для разработки и тестов.
// При удалении пользователя каскадно удаляются его отзывы и комментарии
// через переданный MockReviewStore - так же, как это делают FK в PostgreSQL.
type MockUserStore struct {
	mu      sync.RWMutex
	users   map[string]*domain.User // Ключ: UserID
	reviews *MockReviewStore        // Для каскадного удаления, может быть nil
}

// NewMockUserStore создает новый экземпляр MockUserStore.
func NewMockUserStore(reviews *MockReviewStore) *MockUserStore {
	return &MockUserStore{
		users:   make(map[string]*domain.User),
		reviews: reviews,
	}
}

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.ID == user.ID {
			continue
		}
		if strings.EqualFold(existing.Email, user.Email) || existing.Username == user.Username {
			return ErrUserAlreadyExists
		}
	}

	userCopy := *user
	userCopy.CreatedAt = time.Now().UTC()
	userCopy.UpdatedAt = userCopy.CreatedAt
	m.users[user.ID] = &userCopy
	return nil
}

func (m *MockUserStore) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if user, ok := m.users[userID]; ok {
		userCopy := *user
		return &userCopy, nil
	}
	return nil, ErrUserNotFound
}

func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Username == username {
			userCopy := *user
			return &userCopy, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			userCopy := *user
			return &userCopy, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}

	// Уникальность username/email проверяем по остальным записям
	for _, other := range m.users {
		if other.ID == user.ID {
			continue
		}
		if strings.EqualFold(other.Email, user.Email) || other.Username == user.Username {
			return ErrUserAlreadyExists
		}
	}

	userCopy := *user
	userCopy.CreatedAt = existing.CreatedAt
	userCopy.UpdatedAt = time.Now().UTC()
	m.users[user.ID] = &userCopy
	return nil
}

func (m *MockUserStore) Delete(ctx context.Context, username string) error {
	m.mu.Lock()
	var userID string
	for id, user := range m.users {
		if user.Username == username {
			userID = id
			break
		}
	}
	if userID == "" {
		m.mu.Unlock()
		return ErrUserNotFound
	}
	delete(m.users, userID)
	m.mu.Unlock()

	// Каскад как в БД: отзывы автора и его комментарии удаляются вместе с ним
	if m.reviews != nil {
		m.reviews.deleteByAuthor(userID)
	}
	return nil
}

func (m *MockUserStore) List(ctx context.Context, params ListParams) ([]*domain.User, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*domain.User, 0, len(m.users))
	for _, user := range m.users {
		userCopy := *user
		all = append(all, &userCopy)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })

	params = params.Normalize()
	start, end := params.paginate(len(all))
	return all[start:end], len(all), nil
}
