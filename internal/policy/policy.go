// Package policy содержит чистые функции принятия решений о доступе.
// Никаких побочных эффектов и зависимостей от транспорта: на входе
// действующий пользователь (nil - анонимный вызов), действие и, где нужно,
// автор целевого объекта; на выходе - разрешено или нет.
// Безопасные действия (list/read) разрешаются до любой проверки
// аутентификации; частичных разрешений не бывает.
package policy

import (
	"github.com/Lagmas/api-yamdb/internal/domain"
)

// Action определяет возможные действия над ресурсом.
type Action int

const (
	ActionList Action = iota
	ActionRead
	ActionCreate
	ActionUpdate
	ActionDelete
)

// Safe сообщает, является ли действие только чтением.
func (a Action) Safe() bool {
	return a == ActionList || a == ActionRead
}

// CanManageCatalog решает, разрешено ли действие над Title/Category/Genre.
// Чтение доступно всем, включая анонимных. Запись - только администратору
// или суперпользователю.
func CanManageCatalog(actor *domain.User, action Action) bool {
	if action.Safe() {
		return true
	}
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || actor.IsSuperuser
}

// CanWriteContent решает, разрешено ли действие над Review/Comment.
// Чтение доступно всем. Создание - любому аутентифицированному пользователю
// (автором становится он сам, проверка владения неприменима).
// Обновление и удаление - автору объекта, модератору, администратору
// или суперпользователю.
func CanWriteContent(actor *domain.User, action Action, authorID string) bool {
	if action.Safe() {
		return true
	}
	if actor == nil {
		return false
	}
	if action == ActionCreate {
		return true
	}
	return actor.ID == authorID || actor.IsAdmin() || actor.IsModerator() || actor.IsSuperuser
}

// CanAdministerUsers решает, разрешено ли действующему пользователю
// управление чужими учетными записями. Доступно только администратору
// или суперпользователю; анонимным вызовам всегда отказ.
func CanAdministerUsers(actor *domain.User) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || actor.IsSuperuser
}
