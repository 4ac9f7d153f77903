package blacklist

import (
	"context"
	"time"

	"github.com/EgorLis/secure-files/internal/domain"
)

// KV — минимальный интерфейс, который нам нужен от кеша.
type KV interface {
	SetNX(ctx context.Context, key string, val []byte, ttlSeconds int) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Store — блэклист jti и отметки «MFA пройдена» поверх одного KV.
// Обе записи самоистекают вместе со своим токеном.
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store { return &Store{kv: kv} }

var (
	_ domain.TokenBlacklist = (*Store)(nil)
	_ domain.MFASessions    = (*Store)(nil)
)

// Revoke помечает jti отозванным до времени exp (TTL = exp-now).
func (s *Store) Revoke(ctx context.Context, jti string, exp time.Time) error {
	_, err := s.kv.SetNX(ctx, domain.CacheKeyTokenJTI(jti), []byte("1"), ttlSeconds(exp))
	return err
}

func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.kv.Exists(ctx, domain.CacheKeyTokenJTI(jti))
}

// MarkVerified помечает сессию (jti access-токена) как прошедшую MFA.
func (s *Store) MarkVerified(ctx context.Context, jti string, exp time.Time) error {
	_, err := s.kv.SetNX(ctx, domain.CacheKeyMFAVerified(jti), []byte("1"), ttlSeconds(exp))
	return err
}

func (s *Store) IsVerified(ctx context.Context, jti string) (bool, error) {
	return s.kv.Exists(ctx, domain.CacheKeyMFAVerified(jti))
}

func ttlSeconds(exp time.Time) int {
	ttl := time.Until(exp)
	if ttl <= 0 {
		ttl = time.Minute // подстраховка, если exp в прошлом
	}
	return int(ttl.Seconds())
}
