package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Lagmas/api-yamdb/internal/domain"
)

func user(id string, role domain.Role) *domain.User {
	return &domain.User{ID: id, Role: role}
}

func superuser(id string, role domain.Role) *domain.User {
	u := user(id, role)
	u.IsSuperuser = true
	return u
}

func TestActionSafe(t *testing.T) {
	assert.True(t, ActionList.Safe())
	assert.True(t, ActionRead.Safe())
	assert.False(t, ActionCreate.Safe())
	assert.False(t, ActionUpdate.Safe())
	assert.False(t, ActionDelete.Safe())
}

func TestCanManageCatalog(t *testing.T) {
	tests := []struct {
		name   string
		actor  *domain.User
		action Action
		want   bool
	}{
		{"анонимное чтение разрешено", nil, ActionList, true},
		{"анонимная запись запрещена", nil, ActionCreate, false},
		{"обычный пользователь читает", user("u1", domain.RoleUser), ActionRead, true},
		{"обычный пользователь не пишет", user("u1", domain.RoleUser), ActionCreate, false},
		{"модератор не управляет каталогом", user("m1", domain.RoleModerator), ActionDelete, false},
		{"администратор пишет", user("a1", domain.RoleAdmin), ActionCreate, true},
		{"администратор удаляет", user("a1", domain.RoleAdmin), ActionDelete, true},
		{"суперпользователь с ролью user пишет", superuser("s1", domain.RoleUser), ActionUpdate, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanManageCatalog(tt.actor, tt.action))
		})
	}
}

func TestCanWriteContent(t *testing.T) {
	const authorID = "author-1"

	tests := []struct {
		name   string
		actor  *domain.User
		action Action
		want   bool
	}{
		{"анонимное чтение разрешено", nil, ActionRead, true},
		{"анонимное создание запрещено", nil, ActionCreate, false},
		{"аутентифицированный создает", user("u1", domain.RoleUser), ActionCreate, true},
		{"автор правит свое", user(authorID, domain.RoleUser), ActionUpdate, true},
		{"автор удаляет свое", user(authorID, domain.RoleUser), ActionDelete, true},
		{"чужой пользователь не правит", user("u2", domain.RoleUser), ActionUpdate, false},
		{"чужой пользователь не удаляет", user("u2", domain.RoleUser), ActionDelete, false},
		{"модератор правит чужое", user("m1", domain.RoleModerator), ActionUpdate, true},
		{"модератор удаляет чужое", user("m1", domain.RoleModerator), ActionDelete, true},
		{"администратор удаляет чужое", user("a1", domain.RoleAdmin), ActionDelete, true},
		{"суперпользователь с ролью user правит чужое", superuser("s1", domain.RoleUser), ActionUpdate, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanWriteContent(tt.actor, tt.action, authorID))
		})
	}
}

func TestCanAdministerUsers(t *testing.T) {
	assert.False(t, CanAdministerUsers(nil))
	assert.False(t, CanAdministerUsers(user("u1", domain.RoleUser)))
	assert.False(t, CanAdministerUsers(user("m1", domain.RoleModerator)))
	assert.True(t, CanAdministerUsers(user("a1", domain.RoleAdmin)))
	assert.True(t, CanAdministerUsers(superuser("s1", domain.RoleUser)))
}
