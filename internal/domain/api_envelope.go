package domain

// Общий конверт ответа API
type APIError struct {
	Code int    `json:"code,omitempty"`
	Kind string `json:"kind,omitempty"`
	Text string `json:"text,omitempty"`
}

type APIEnvelope struct {
	Error    *APIError `json:"error,omitempty"`
	Response any       `json:"response,omitempty"`
	Data     any       `json:"data,omitempty"`
}

// Машинные коды ошибок (стабильная часть контракта)
const (
	ErrCodeBadParams          = 1000
	ErrCodeUnauth             = 1001
	ErrCodeInvalidCredentials = 1002
	ErrCodeForbidden          = 1003
	ErrCodeNotFound           = 1004
	ErrCodeMethodNotAllowed   = 1005
	ErrCodeConflict           = 1009
	ErrCodePasswordMismatch   = 1010
	ErrCodeEmailTaken         = 1011
	ErrCodeUsernameTaken      = 1012
	ErrCodeAccountDisabled    = 1013
	ErrCodeMFANotEnabled      = 1020
	ErrCodeInvalidCode        = 1021
	ErrCodeNoPendingSetup     = 1022
	ErrCodeUnsupportedType    = 1030
	ErrCodeTooLarge           = 1031
	ErrCodeMissingEncMeta     = 1032
	ErrCodeAlreadyShared      = 1033
	ErrCodeUserNotFound       = 1034
	ErrCodeStorage            = 1050
	ErrCodeUnexpected         = 1500
)

// Утилиты для сборки конвертов
func OkResponse(resp any) APIEnvelope { return APIEnvelope{Response: resp} }
func OkData(data any) APIEnvelope     { return APIEnvelope{Data: data} }
func Fail(code int, kind, text string) APIEnvelope {
	return APIEnvelope{Error: &APIError{Code: code, Kind: kind, Text: text}}
}
