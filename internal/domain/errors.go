package domain

import "errors"

// Бизнес-ошибки. Каждая имеет стабильный машинный код (см. api_envelope.go)
// и маппится на HTTP-статус в транспортном слое.
var (
	// общие
	ErrBadParams        = errors.New("bad_params")         // 400
	ErrUnauth           = errors.New("unauthorized")       // 401
	ErrForbidden        = errors.New("forbidden")          // 403
	ErrNotFound         = errors.New("not_found")          // 404
	ErrMethodNotAllowed = errors.New("method_not_allowed") // 405
	ErrConflict         = errors.New("conflict")           // 409
	ErrUnexpected       = errors.New("unexpected")         // 500

	// учётные данные
	ErrInvalidCredentials = errors.New("invalid_credentials") // 401
	ErrAccountDisabled    = errors.New("account_disabled")    // 401
	ErrPasswordMismatch   = errors.New("password_mismatch")   // 400
	ErrEmailTaken         = errors.New("email_taken")         // 409
	ErrUsernameTaken      = errors.New("username_taken")      // 409

	// MFA
	ErrMFANotEnabled  = errors.New("mfa_not_enabled")  // 400
	ErrInvalidCode    = errors.New("invalid_code")     // 400
	ErrNoPendingSetup = errors.New("no_pending_setup") // 400

	// файлы и шаринг
	ErrUnsupportedType = errors.New("unsupported_type")            // 400
	ErrTooLarge        = errors.New("too_large")                   // 400
	ErrMissingEncMeta  = errors.New("missing_encryption_metadata") // 400
	ErrAlreadyShared   = errors.New("already_shared")              // 409
	ErrUserNotFound    = errors.New("user_not_found")              // 404

	// инфраструктура
	ErrStorage = errors.New("storage_failure") // 500, повтор всей операции безопасен
)
