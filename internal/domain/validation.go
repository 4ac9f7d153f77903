package domain

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,64}$`)
	// Телефон: опциональный "+", 9–15 цифр
	phoneRe = regexp.MustCompile(`^\+?1?\d{9,15}$`)

	upperRe = regexp.MustCompile(`[A-Z]`)
	lowerRe = regexp.MustCompile(`[a-z]`)
	digitRe = regexp.MustCompile(`[0-9]`)
)

// Разрешённые расширения открытого имени файла.
// Контент — непрозрачный шифротекст, так что проверяем только имя.
var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
	".txt":  {},
	".jpg":  {},
	".png":  {},
}

func ValidEmail(s string) bool {
	return len(s) <= 255 && emailRe.MatchString(s)
}

func ValidUsername(s string) bool {
	return usernameRe.MatchString(s)
}

// Пароль: мин 8 символов, буквы в обоих регистрах и хотя бы одна цифра.
func ValidPassword(s string) bool {
	if len(s) < 8 {
		return false
	}
	return upperRe.MatchString(s) && lowerRe.MatchString(s) && digitRe.MatchString(s)
}

// Телефон опционален: пустая строка валидна.
func ValidPhone(s string) bool {
	return s == "" || phoneRe.MatchString(s)
}

// AllowedFileName — входит ли расширение имени в белый список.
func AllowedFileName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	_, ok := allowedExtensions[ext]
	return ok
}

// AllowedExtensions — копия белого списка (для сообщений об ошибках).
func AllowedExtensions() []string {
	out := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		out = append(out, ext)
	}
	return out
}
