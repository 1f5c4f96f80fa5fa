package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashSecret генерирует bcrypt хеш для заданного секрета.
// Используется для кодов подтверждения: код - единственный учетный
// материал учетной записи и хранится так же, как хранился бы пароль.
func HashSecret(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hashed), nil
}

// CheckSecret сравнивает предоставленный секрет с существующим хешем.
// Возвращает true при совпадении.
func CheckSecret(secret, hashedSecret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedSecret), []byte(secret)) == nil
}
