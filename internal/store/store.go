// Package store определяет интерфейсы хранилищ и две их реализации:
// in-memory (для разработки и тестов) и PostgreSQL. Ограничения
// уникальности и каскадные удаления окончательно гарантирует само
// хранилище; проверки на уровне приложения - лишь быстрый путь.
package store

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ListParams параметры постраничного вывода списков.
type ListParams struct {
	Page     int
	PageSize int
}

// Normalize приводит параметры к допустимым значениям.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	return p
}

// offset возвращает смещение первой записи страницы.
func (p ListParams) offset() int {
	return (p.Page - 1) * p.PageSize
}

// paginate возвращает границы страницы для среза длиной total.
func (p ListParams) paginate(total int) (start, end int) {
	start = p.offset()
	if start > total {
		start = total
	}
	end = start + p.PageSize
	if end > total {
		end = total
	}
	return start, end
}

// TitleFilter параметры фильтрации списка произведений.
// Пустое значение поля означает отсутствие фильтра.
type TitleFilter struct {
	CategorySlug string
	GenreSlug    string
	Name         string
	Year         int
}
