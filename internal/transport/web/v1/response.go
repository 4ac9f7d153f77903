package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/EgorLis/secure-files/internal/domain"
	"github.com/EgorLis/secure-files/internal/transport/web/mw"
)

// MapDomainError решает HTTP-статус + error.code/kind/text для конверта
func MapDomainError(err error) (httpStatus int, env domain.APIEnvelope) {
	switch {
	case errors.Is(err, domain.ErrBadParams):
		return http.StatusBadRequest, domain.Fail(domain.ErrCodeBadParams, "bad_params", "bad params")
	case errors.Is(err, domain.ErrPasswordMismatch):
		return http.StatusBadRequest, domain.Fail(domain.ErrCodePasswordMismatch, "password_mismatch", "passwords do not match")
	case errors.Is(err, domain.ErrMFANotEnabled):
		return http.StatusBadRequest, domain.Fail(domain.ErrCodeMFANotEnabled, "mfa_not_enabled", "MFA is not enabled")
	case errors.Is(err, domain.ErrInvalidCode):
		return http.StatusBadRequest, domain.Fail(domain.ErrCodeInvalidCode, "invalid_code", "invalid code")
	case errors.Is(err, domain.ErrNoPendingSetup):
		return http.StatusBadRequest, domain.Fail(domain.ErrCodeNoPendingSetup, "no_pending_setup", "setup process not initiated")
	case errors.Is(err, domain.ErrUnsupportedType):
		return http.StatusBadRequest, domain.Fail(domain.ErrCodeUnsupportedType, "unsupported_type", "file type not supported")
	case errors.Is(err, domain.ErrTooLarge):
		return http.StatusBadRequest, domain.Fail(domain.ErrCodeTooLarge, "too_large", "file exceeds size limit")
	case errors.Is(err, domain.ErrMissingEncMeta):
		return http.StatusBadRequest, domain.Fail(domain.ErrCodeMissingEncMeta, "missing_encryption_metadata", "encryption metadata missing")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, domain.Fail(domain.ErrCodeInvalidCredentials, "invalid_credentials", "invalid email or password")
	case errors.Is(err, domain.ErrAccountDisabled):
		return http.StatusUnauthorized, domain.Fail(domain.ErrCodeAccountDisabled, "account_disabled", "user account is disabled")
	case errors.Is(err, domain.ErrUnauth):
		return http.StatusUnauthorized, domain.Fail(domain.ErrCodeUnauth, "unauthorized", "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, domain.Fail(domain.ErrCodeForbidden, "forbidden", "forbidden")
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, domain.Fail(domain.ErrCodeUserNotFound, "user_not_found", "user not found")
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, domain.Fail(domain.ErrCodeNotFound, "not_found", "not found")
	case errors.Is(err, domain.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, domain.Fail(domain.ErrCodeMethodNotAllowed, "method_not_allowed", "method not allowed")
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, domain.Fail(domain.ErrCodeEmailTaken, "email_taken", "this email is already registered")
	case errors.Is(err, domain.ErrUsernameTaken):
		return http.StatusConflict, domain.Fail(domain.ErrCodeUsernameTaken, "username_taken", "this username is already taken")
	case errors.Is(err, domain.ErrAlreadyShared):
		return http.StatusConflict, domain.Fail(domain.ErrCodeAlreadyShared, "already_shared", "file already shared with this user")
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, domain.Fail(domain.ErrCodeConflict, "conflict", "conflict")
	case errors.Is(err, domain.ErrStorage):
		// повтор всей операции безопасен
		return http.StatusInternalServerError, domain.Fail(domain.ErrCodeStorage, "storage_failure", "storage failure")
	default:
		// Таймауты/отмены — как 500
		return http.StatusInternalServerError, domain.Fail(domain.ErrCodeUnexpected, "unexpected", "unexpected")
	}
}

// WriteEnvelope пишет конверт; для HEAD — без тела
func WriteEnvelope(w http.ResponseWriter, r *http.Request, status int, env domain.APIEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", mw.RequestIDFromCtx(r.Context()))
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(env)
}

// Шорткаты успеха
func WriteOKData(w http.ResponseWriter, r *http.Request, data any) {
	WriteEnvelope(w, r, http.StatusOK, domain.OkData(data))
}
func WriteOKResponse(w http.ResponseWriter, r *http.Request, resp any) {
	WriteEnvelope(w, r, http.StatusOK, domain.OkResponse(resp))
}
func WriteCreated(w http.ResponseWriter, r *http.Request, resp any) {
	WriteEnvelope(w, r, http.StatusCreated, domain.OkResponse(resp))
}

// Шорткаты ошибок
func WriteDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, env := MapDomainError(err)
	WriteEnvelope(w, r, status, env)
}

// Стандартный формат времени заголовков
func HTTPTime(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}
