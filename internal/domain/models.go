package domain

import (
	"time"

	"github.com/google/uuid"
)

// Базовые идентификаторы
type UserID = uuid.UUID
type FileID = uuid.UUID
type ShareID = uuid.UUID
type DeviceID = uuid.UUID

// Роль пользователя
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
	RoleGuest Role = "GUEST"
)

// Пользователь
type User struct {
	ID         UserID     `json:"id"`
	Email      string     `json:"email"`
	Username   string     `json:"username"`
	PassHash   string     `json:"-"` // argon2id, никогда не отдаём наружу
	FullName   string     `json:"full_name"`
	Phone      string     `json:"phone,omitempty"`
	Role       Role       `json:"role"`
	IsActive   bool       `json:"is_active"`
	MFAEnabled bool       `json:"mfa_enabled"`
	CreatedAt  time.Time  `json:"created_at"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}

// Метаданные зашифрованного файла (тело — в blob-хранилище).
// salt/nonce/hash пишутся один раз при создании и не меняются.
type EncryptedFile struct {
	ID        FileID    `json:"id"`
	OwnerID   UserID    `json:"owner_id"`
	Name      string    `json:"name"` // исходное (открытое) имя файла
	SizeBytes int64     `json:"size_bytes"`
	Salt      []byte    `json:"-"`         // соль клиентского шифрования
	Nonce     []byte    `json:"-"`         // nonce клиентского шифрования
	FileHash  string    `json:"file_hash"` // hex(sha256) шифротекста
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`

	// Где лежит шифротекст (S3/MinIO)
	StorageKey string `json:"-"`
}

// Шаринг: доступ на чтение/скачивание конкретному пользователю.
// Не более одного гранта на пару (file, shared_with) — уникальный индекс в БД.
type FileShare struct {
	ID          ShareID    `json:"id"`
	FileID      FileID     `json:"file_id"`
	SharedWith  UserID     `json:"shared_with"`
	SharedBy    UserID     `json:"shared_by"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"` // nil — бессрочно
	AccessCount int64      `json:"access_count"`
}

// Expired — истёк ли грант на момент now.
// Истёкшие гранты фильтруются при чтении, но не удаляются (аудит).
func (s FileShare) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}

// TOTP-устройство пользователя
type TOTPDevice struct {
	ID        DeviceID  `json:"id"`
	UserID    UserID    `json:"user_id"`
	Name      string    `json:"name"`
	Secret    string    `json:"-"` // base32, никогда не отдаём наружу
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"created_at"`
}
