package domain

import (
	"time"
)

// Role определяет возможные роли пользователя.
// Закрытое перечисление: любые проверки прав выполняются через пакет policy,
// сравнение строк за его пределами не допускается.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid сообщает, является ли значение одной из известных ролей.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// User представляет модель пользователя.
// Пароля как такового нет: единственным учетным данным служит код
// подтверждения, bcrypt-хеш которого хранится в ConfirmationHash.
type User struct {
	ID               string    `json:"id" db:"id"` // UUID
	Username         string    `json:"username" db:"username"`
	Email            string    `json:"email" db:"email"`
	Role             Role      `json:"role" db:"role"`
	Bio              string    `json:"bio,omitempty" db:"bio"`
	FirstName        string    `json:"first_name,omitempty" db:"first_name"`
	LastName         string    `json:"last_name,omitempty" db:"last_name"`
	IsSuperuser      bool      `json:"-" db:"is_superuser"` // Ортогональный флаг, не роль
	IsActive         bool      `json:"-" db:"is_active"`    // false до первого успешного обмена кода на токены
	ConfirmationHash string    `json:"-" db:"confirmation_hash"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin сообщает, имеет ли пользователь роль администратора.
// Флаг IsSuperuser здесь сознательно не учитывается - это дело пакета policy.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsModerator сообщает, имеет ли пользователь роль модератора.
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

// SignUpRequest тело запроса саморегистрации (HTTP).
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,min=3,max=150"`
}

// TokenRequest тело запроса обмена кода подтверждения на пару токенов (HTTP).
type TokenRequest struct {
	Username         string `json:"username" validate:"required"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}

// RefreshRequest тело запроса обновления пары токенов (HTTP).
type RefreshRequest struct {
	RefreshToken string `json:"refresh" validate:"required"`
}

// UpdateMeRequest частичное обновление собственного профиля.
// Роль через этот запрос изменить нельзя.
type UpdateMeRequest struct {
	Username  *string `json:"username,omitempty" validate:"omitempty,min=3,max=150"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=2000"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=150"`
}

// CreateUserRequest создание пользователя администратором.
type CreateUserRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=150"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Role      string `json:"role,omitempty" validate:"omitempty,oneof=user moderator admin"`
	Bio       string `json:"bio,omitempty" validate:"omitempty,max=2000"`
	FirstName string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName  string `json:"last_name,omitempty" validate:"omitempty,max=150"`
}

// UpdateUserRequest частичное обновление пользователя администратором.
type UpdateUserRequest struct {
	Username  *string `json:"username,omitempty" validate:"omitempty,min=3,max=150"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Role      *string `json:"role,omitempty" validate:"omitempty,oneof=user moderator admin"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=2000"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=150"`
}
