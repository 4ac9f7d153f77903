package blacklist

import (
	"context"
	"testing"
	"time"
)

// fakeKV — in-memory KV для тестов без Redis.
type fakeKV struct {
	data map[string][]byte
	ttls map[string]int
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (f *fakeKV) SetNX(_ context.Context, key string, val []byte, ttlSeconds int) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = val
	f.ttls[key] = ttlSeconds
	return true, nil
}

func (f *fakeKV) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.data[key]
	return ok, nil
}

func TestRevokeAndIsRevoked(t *testing.T) {
	kv := newFakeKV()
	s := NewStore(kv)
	ctx := context.Background()

	revoked, err := s.IsRevoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Fatalf("fresh jti: revoked=%v err=%v", revoked, err)
	}

	exp := time.Now().Add(time.Hour)
	if err := s.Revoke(ctx, "jti-1", exp); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	revoked, err = s.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("after revoke: revoked=%v err=%v", revoked, err)
	}

	// другой jti не задет
	revoked, _ = s.IsRevoked(ctx, "jti-2")
	if revoked {
		t.Fatal("unrelated jti revoked")
	}
}

func TestRevokeTTLTracksTokenExpiry(t *testing.T) {
	kv := newFakeKV()
	s := NewStore(kv)

	if err := s.Revoke(context.Background(), "jti-ttl", time.Now().Add(10*time.Minute)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	ttl := kv.ttls["jti:jti-ttl"]
	if ttl < 9*60 || ttl > 10*60 {
		t.Errorf("ttl = %ds, want ~600", ttl)
	}

	// истёкший токен получает минимальный TTL вместо нулевого
	if err := s.Revoke(context.Background(), "jti-past", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if kv.ttls["jti:jti-past"] <= 0 {
		t.Error("ttl for past expiry must stay positive")
	}
}

func TestMFASessionsSeparateFromBlacklist(t *testing.T) {
	kv := newFakeKV()
	s := NewStore(kv)
	ctx := context.Background()

	if err := s.MarkVerified(ctx, "jti-mfa", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("MarkVerified: %v", err)
	}

	ok, err := s.IsVerified(ctx, "jti-mfa")
	if err != nil || !ok {
		t.Fatalf("IsVerified: ok=%v err=%v", ok, err)
	}

	// отметка MFA не делает токен отозванным
	revoked, _ := s.IsRevoked(ctx, "jti-mfa")
	if revoked {
		t.Fatal("mfa mark must not revoke the token")
	}
}
