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

// HandlerRegister обрабатывает POST /api/v1/auth/register
type HandlerRegister struct {
	Log    *log.Logger
	Users  domain.UsersRepo
	Hasher domain.PasswordHasher
}

type registerRequest struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FullName        string `json:"full_name"`
	Phone           string `json:"phone"`
}

// Register godoc
// @Summary     Register new user
// @Description Регистрация нового пользователя. Пароль хранится только как argon2id-хэш.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body registerRequest true "email, username, password, confirm_password, full_name, phone"
// @Success     201 {object} domain.APIEnvelope{response=domain.User}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     409 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/auth/register [post]
func (h *HandlerRegister) Register(w http.ResponseWriter, r *http.Request) {
	const op = "auth.register"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	// 1) Совпадение паролей — до любых других проверок
	if req.Password != req.ConfirmPassword {
		logx.Error(h.Log, reqID, op, "password mismatch", domain.ErrPasswordMismatch, "email", req.Email)
		v1.WriteDomainError(w, r, domain.ErrPasswordMismatch)
		return
	}

	// 2) Валидация полей (домен)
	if !domain.ValidEmail(req.Email) || !domain.ValidUsername(req.Username) ||
		!domain.ValidPassword(req.Password) || !domain.ValidPhone(req.Phone) ||
		req.FullName == "" {
		logx.Error(h.Log, reqID, op, "validation failed", domain.ErrBadParams, "email", req.Email)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	// 3) Хэш пароля — плейнтекст дальше не живёт
	hashStr, err := h.Hasher.Hash(req.Password)
	if err != nil {
		logx.Error(h.Log, reqID, op, "hash failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	// 4) Создаём пользователя: role=USER, mfa выключена
	u, err := h.Users.CreateUser(r.Context(), domain.User{
		Email:    req.Email,
		Username: req.Username,
		PassHash: hashStr,
		FullName: req.FullName,
		Phone:    req.Phone,
		Role:     domain.RoleUser,
	})
	if err != nil {
		// уникальные конфликты приходят доменными ошибками из репозитория
		logx.Error(h.Log, reqID, op, "create user failed", err, "email", req.Email)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", u.ID, "email", u.Email)
	v1.WriteCreated(w, r, u)
}
