package auth

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/EgorLis/secure-files/internal/domain"
	"github.com/EgorLis/secure-files/internal/transport/web/logx"
	"github.com/EgorLis/secure-files/internal/transport/web/mw"
	v1 "github.com/EgorLis/secure-files/internal/transport/web/v1"
)

type HandlerLogin struct {
	Log    *log.Logger
	Users  domain.UsersRepo
	Hasher domain.PasswordHasher
	Tokens domain.TokenManager
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User        domain.User      `json:"user"`
	Tokens      domain.TokenPair `json:"tokens"`
	RequiresMFA bool             `json:"requires_mfa"`
}

// Login godoc
// @Summary     Authenticate user
// @Description Возвращает пару access/refresh токенов при валидных email и пароле.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body loginRequest true "email, password"
// @Success     200 {object} domain.APIEnvelope{response=loginResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/auth/login [post]
func (h *HandlerLogin) Login(w http.ResponseWriter, r *http.Request) {
	const op = "auth.login"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if req.Email == "" || req.Password == "" {
		logx.Error(h.Log, reqID, op, "empty email or password", domain.ErrBadParams)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	// достаём пользователя; несуществующий email неотличим от неверного пароля
	u, err := h.Users.UserByEmail(r.Context(), req.Email)
	if err != nil {
		logx.Error(h.Log, reqID, op, "user not found", err, "email", req.Email)
		v1.WriteDomainError(w, r, domain.ErrInvalidCredentials)
		return
	}

	ok, err := h.Hasher.Verify(req.Password, u.PassHash)
	if err != nil || !ok {
		logx.Error(h.Log, reqID, op, "password verify failed", err, "email", req.Email)
		v1.WriteDomainError(w, r, domain.ErrInvalidCredentials)
		return
	}

	if !u.IsActive {
		logx.Error(h.Log, reqID, op, "account disabled", domain.ErrAccountDisabled, "user_id", u.ID)
		v1.WriteDomainError(w, r, domain.ErrAccountDisabled)
		return
	}

	// отметка успешной аутентификации
	if err := h.Users.TouchLastLogin(r.Context(), u.ID); err != nil {
		logx.Error(h.Log, reqID, op, "touch last_login failed", err, "user_id", u.ID)
	}

	pair, err := h.Tokens.IssuePair(r.Context(), u)
	if err != nil {
		logx.Error(h.Log, reqID, op, "issue tokens failed", err, "user_id", u.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", u.ID, "requires_mfa", u.MFAEnabled)
	v1.WriteOKResponse(w, r, loginResponse{User: u, Tokens: pair, RequiresMFA: u.MFAEnabled})
}
