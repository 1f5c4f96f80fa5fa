package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"
)

// SMTPConfig настройки SMTP-доставки.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string // Пустое значение - без аутентификации
	Password string
	From     string
	Timeout  time.Duration // 0 - значение по умолчанию
}

// SMTPMailer реализует Mailer поверх net/smtp с STARTTLS,
// если сервер его поддерживает.
type SMTPMailer struct {
	cfg    SMTPConfig
	logger *slog.Logger
}

// NewSMTPMailer создает новый экземпляр SMTPMailer.
func NewSMTPMailer(cfg SMTPConfig, logger *slog.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.Port == "" {
		return nil, fmt.Errorf("SMTP host and port are required")
	}
	if _, err := mail.ParseAddress(cfg.From); err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", cfg.From, err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPMailer{cfg: cfg, logger: logger}, nil
}

// Send доставляет письмо получателю. Любая ошибка на пути до сервера
// возвращается вызывающему.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if _, err := mail.ParseAddress(to); err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", to, err)
	}

	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	m.logger.DebugContext(ctx, "Connecting to SMTP server", slog.String("addr", addr))

	conn, err := net.DialTimeout("tcp", addr, m.cfg.Timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(m.cfg.Timeout))
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return fmt.Errorf("STARTTLS failed: %w", err)
		}
	}
	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO failed: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA failed: %w", err)
	}
	if _, err := writer.Write([]byte(m.buildMessage(to, subject, body))); err != nil {
		return fmt.Errorf("failed to write message body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	m.logger.InfoContext(ctx, "Email sent", slog.String("to", to), slog.String("subject", subject))
	return client.Quit()
}

func (m *SMTPMailer) buildMessage(to, subject, body string) string {
	var b strings.Builder
	b.WriteString("From: " + m.cfg.From + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return b.String()
}
