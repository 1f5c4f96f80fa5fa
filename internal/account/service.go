// Package account реализует выдачу учетных записей: регистрацию с кодом
// подтверждения на почту и обмен кода на пару токенов.
//
// Учетная запись проходит два состояния: Pending (создана, код отправлен,
// другого учетного материала нет) и Active (код предъявлен, токены выданы).
// Код подтверждения остается действительным и после успешного обмена -
// до выпуска нового кода повторной регистрацией. Это осознанно сохраненный
// контракт исходной системы; инвалидировать код после первого обмена
// безопаснее, но сломает клиентов, которые запрашивают токены повторно.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Lagmas/api-yamdb/internal/domain"
	"github.com/Lagmas/api-yamdb/internal/mailer"
	"github.com/Lagmas/api-yamdb/internal/store"
	"github.com/Lagmas/api-yamdb/pkg/auth"
)

// Кастомные ошибки потока выдачи учетных записей.
var (
	ErrInvalidConfirmationCode = errors.New("confirmation code is not valid")
	ErrDeliveryFailed          = errors.New("failed to deliver confirmation code")
	ErrReservedUsername        = errors.New("username is reserved")
)

const confirmationSubject = "Confirmation code"

// Service реализует поток выдачи учетных записей.
type Service struct {
	users  store.UserStore
	mailer mailer.Mailer
	tokens auth.TokenManager
	logger *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(users store.UserStore, m mailer.Mailer, tokens auth.TokenManager, logger *slog.Logger) *Service {
	return &Service{users: users, mailer: m, tokens: tokens, logger: logger}
}

// SignUp регистрирует пользователя по email и username.
// Повторный вызов с теми же данными не создает вторую учетную запись:
// для существующего пользователя генерируется и отправляется новый код.
// Код подтверждения также служит источником хеша-пароля учетной записи,
// поэтому аутентифицироваться любым другим способом невозможно.
func (s *Service) SignUp(ctx context.Context, email, username string) (string, error) {
	// "me" зарезервировано маршрутом /users/me
	if username == "me" {
		return "", fmt.Errorf("%w: %q", ErrReservedUsername, username)
	}

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		// Идемпотентный повтор допустим только с тем же username
		if user.Username != username {
			s.logger.WarnContext(ctx, "Sign-up email is bound to another username",
				slog.String("email", email), slog.String("username", username))
			return "", store.ErrUserAlreadyExists
		}
	case errors.Is(err, store.ErrUserNotFound):
		user = &domain.User{
			ID:       uuid.NewString(),
			Username: username,
			Email:    email,
			Role:     domain.RoleUser,
		}
		if err := s.users.Create(ctx, user); err != nil {
			s.logger.ErrorContext(ctx, "Failed to create user on sign-up",
				slog.String("email", email), slog.String("error", err.Error()))
			return "", err
		}
		s.logger.InfoContext(ctx, "User created on sign-up",
			slog.String("userID", user.ID), slog.String("username", username))
	default:
		return "", fmt.Errorf("failed to look up user by email: %w", err)
	}

	code := uuid.NewString()
	hash, err := auth.HashSecret(code)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to hash confirmation code", slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to prepare confirmation code: %w", err)
	}
	user.ConfirmationHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "Failed to store confirmation code",
			slog.String("userID", user.ID), slog.String("error", err.Error()))
		return "", err
	}

	body := fmt.Sprintf("Confirmation code: %s", code)
	if err := s.mailer.Send(ctx, email, confirmationSubject, body); err != nil {
		s.logger.ErrorContext(ctx, "Failed to send confirmation code",
			slog.String("email", email), slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: %s", ErrDeliveryFailed, err.Error())
	}

	s.logger.InfoContext(ctx, "Confirmation code sent", slog.String("userID", user.ID))
	return code, nil
}

// ObtainToken обменивает код подтверждения на пару токенов.
// Для неизвестного username возвращается store.ErrUserNotFound,
// для неверного кода - ErrInvalidConfirmationCode; токены при этом
// не выпускаются. Успешный обмен переводит учетную запись в Active.
func (s *Service) ObtainToken(ctx context.Context, username, code string) (*auth.TokenPair, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.WarnContext(ctx, "Token requested for unknown username", slog.String("username", username))
		}
		return nil, err
	}

	if user.ConfirmationHash == "" || !auth.CheckSecret(code, user.ConfirmationHash) {
		s.logger.WarnContext(ctx, "Invalid confirmation code", slog.String("username", username))
		return nil, ErrInvalidConfirmationCode
	}

	pair, err := s.tokens.Generate(user.ID, string(user.Role))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate token pair",
			slog.String("userID", user.ID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to generate token pair: %w", err)
	}

	if !user.IsActive {
		user.IsActive = true
		user.UpdatedAt = time.Now().UTC()
		if err := s.users.Update(ctx, user); err != nil {
			// Токены уже выпущены, активация догонит при следующем обмене
			s.logger.WarnContext(ctx, "Failed to mark account active",
				slog.String("userID", user.ID), slog.String("error", err.Error()))
		}
	}

	s.logger.InfoContext(ctx, "Token pair issued", slog.String("userID", user.ID))
	return pair, nil
}

// Refresh выпускает новую пару токенов по действительному refresh-токену.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	// Роль берем из хранилища, а не из клейма: она могла измениться
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.Generate(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token pair: %w", err)
	}
	s.logger.InfoContext(ctx, "Token pair refreshed", slog.String("userID", user.ID))
	return pair, nil
}
