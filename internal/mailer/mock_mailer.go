package mailer

import (
	"context"
	"log/slog"
	"sync"
)

// SentMessage запись об отправленном через MockMailer письме.
type SentMessage struct {
	To      string
	Subject string
	Body    string
}

// MockMailer реализация Mailer для разработки и тестов: письма не уходят,
// а складываются в память. Через FailWith можно заставить отправку
// завершаться ошибкой.
type MockMailer struct {
	mu       sync.Mutex
	sent     []SentMessage
	failWith error
	logger   *slog.Logger
}

// NewMockMailer создает новый экземпляр MockMailer.
// logger может быть nil, тогда отправки не логируются.
func NewMockMailer(logger *slog.Logger) *MockMailer {
	return &MockMailer{logger: logger}
}

// FailWith задает ошибку, которую будут возвращать последующие отправки.
// nil возвращает нормальное поведение.
func (m *MockMailer) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return m.failWith
	}
	m.sent = append(m.sent, SentMessage{To: to, Subject: subject, Body: body})
	if m.logger != nil {
		m.logger.InfoContext(ctx, "Mock email recorded", slog.String("to", to), slog.String("subject", subject))
	}
	return nil
}

// Sent возвращает копию списка отправленных писем.
func (m *MockMailer) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}
