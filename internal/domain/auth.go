package domain

import (
	"context"
	"time"
)

type Token = string

// Тип токена: короткоживущий access и долгоживущий отзываемый refresh.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

type TokenClaims struct {
	JTI       string // уникальный id токена
	UserID    UserID
	Email     string
	Kind      TokenKind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type TokenPair struct {
	Access  Token `json:"access"`
	Refresh Token `json:"refresh"`
}

// Хеширование паролей (argon2id). Плейнтекст никогда не персистится.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encodedHash string) (bool, error)
}

// Управление токенами (JWT, реализация в internal/auth/token)
type TokenManager interface {
	IssuePair(ctx context.Context, u User) (TokenPair, error)
	Parse(ctx context.Context, t Token) (TokenClaims, error)
}

// Блэклист/ревокация refresh-токенов (Redis)
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, exp time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Отметка «сессия прошла MFA» — живёт не дольше access-токена.
type MFASessions interface {
	MarkVerified(ctx context.Context, jti string, exp time.Time) error
	IsVerified(ctx context.Context, jti string) (bool, error)
}

// Генерация и проверка TOTP (реализация в internal/auth/totp)
type TOTPProvider interface {
	// NewSecret выдаёт свежий секрет и otpauth:// URI для QR-кода.
	NewSecret(account string) (secret, provisioningURI string, err error)
	// Validate — проверка кода с допуском ±1 шаг (30с, 6 цифр).
	Validate(secret, code string) bool
}
