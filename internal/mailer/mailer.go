// Package mailer отвечает за доставку писем с кодами подтверждения.
// Ошибка доставки всегда возвращается вызывающему, молча не глотается.
package mailer

import (
	"context"
)

// Mailer определяет интерфейс доставки почты.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
