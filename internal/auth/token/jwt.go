package token

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/EgorLis/secure-files/internal/domain"
)

// Manager выпускает пару access/refresh. Access — короткоживущий,
// refresh — долгоживущий и отзываемый через блэклист по jti.
type Manager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(secret, issuer string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// внутренний тип для подписи/парсинга с jwt.RegisteredClaims
type jwtClaims struct {
	UserID uuid.UUID `json:"uid"`
	Email  string    `json:"email"`
	Kind   string    `json:"kind"` // access | refresh
	jwt.RegisteredClaims
}

// Ensure: Manager implements domain.TokenManager
var _ domain.TokenManager = (*Manager)(nil)

// IssuePair выпускает пару токенов с независимыми jti и сроками.
func (m *Manager) IssuePair(_ context.Context, u domain.User) (domain.TokenPair, error) {
	access, err := m.sign(u, domain.TokenAccess, m.accessTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := m.sign(u, domain.TokenRefresh, m.refreshTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{Access: access, Refresh: refresh}, nil
}

func (m *Manager) sign(u domain.User, kind domain.TokenKind, ttl time.Duration) (domain.Token, error) {
	now := time.Now().UTC()
	cl := jwtClaims{
		UserID: u.ID,
		Email:  u.Email,
		Kind:   string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, cl)
	return t.SignedString(m.secret)
}

// Parse валидирует подпись/сроки и возвращает доменные клеймы.
func (m *Manager) Parse(_ context.Context, raw domain.Token) (domain.TokenClaims, error) {
	var out jwtClaims
	tkn, err := jwt.ParseWithClaims(string(raw), &out, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return domain.TokenClaims{}, err
	}
	if !tkn.Valid {
		return domain.TokenClaims{}, jwt.ErrTokenInvalidClaims
	}
	// подпись может быть валидной и без обязательных клеймов
	if out.ExpiresAt == nil || out.IssuedAt == nil {
		return domain.TokenClaims{}, jwt.ErrTokenRequiredClaimMissing
	}

	return domain.TokenClaims{
		JTI:       out.ID,
		UserID:    out.UserID,
		Email:     out.Email,
		Kind:      domain.TokenKind(out.Kind),
		IssuedAt:  out.IssuedAt.Time,
		ExpiresAt: out.ExpiresAt.Time,
	}, nil
}
