package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Типы токенов, различаемые клеймом token_type.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// ErrWrongTokenType возвращается, когда валидный токен предъявлен
// не в своей роли (например, refresh вместо access).
var ErrWrongTokenType = errors.New("wrong token type")

// TokenPair пара подписанных токенов: короткоживущий access
// и долгоживущий refresh.
type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

// TokenManager предоставляет методы для выпуска и валидации пары JWT.
type TokenManager interface {
	Generate(userID string, userRole string) (*TokenPair, error)
	ValidateAccess(tokenString string) (*Claims, error)
	ValidateRefresh(tokenString string) (*Claims, error)
}

// Claims определяет структуру данных, хранимых в JWT.
type Claims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// jwtManager реализует TokenManager поверх HMAC-SHA256.
type jwtManager struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager создает новый экземпляр jwtManager.
// secretKey должен храниться безопасно; для HS256 рекомендуется
// длина не менее 32 байт.
func NewTokenManager(secretKey string, accessTTL, refreshTTL time.Duration) (TokenManager, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("JWT secret key cannot be empty")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, fmt.Errorf("token lifetimes must be positive")
	}
	return &jwtManager{
		secretKey:  []byte(secretKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// Generate создает пару токенов для указанного userID и userRole.
func (m *jwtManager) Generate(userID string, userRole string) (*TokenPair, error) {
	access, err := m.sign(userID, userRole, tokenTypeAccess, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := m.sign(userID, userRole, tokenTypeRefresh, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *jwtManager) sign(userID, userRole, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		Role:      userRole,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "api-yamdb",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return tokenString, nil
}

// ValidateAccess проверяет access-токен и возвращает его Claims.
func (m *jwtManager) ValidateAccess(tokenString string) (*Claims, error) {
	return m.validate(tokenString, tokenTypeAccess)
}

// ValidateRefresh проверяет refresh-токен и возвращает его Claims.
func (m *jwtManager) ValidateRefresh(tokenString string) (*Claims, error) {
	return m.validate(tokenString, tokenTypeRefresh)
}

func (m *jwtManager) validate(tokenString, wantType string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrWrongTokenType, wantType, claims.TokenType)
	}
	return claims, nil
}
