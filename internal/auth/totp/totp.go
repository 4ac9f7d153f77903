package totp

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/EgorLis/secure-files/internal/domain"
)

// Provider — генерация и проверка TOTP (RFC 6238):
// шаг 30 секунд, 6 цифр, допуск ±1 шаг на рассинхрон часов.
type Provider struct {
	issuer string
	skew   uint
}

func New(issuer string) *Provider {
	return &Provider{issuer: issuer, skew: 1}
}

var _ domain.TOTPProvider = (*Provider)(nil)

// NewSecret выдаёт свежий секрет и otpauth:// URI,
// пригодный для кодирования в QR.
func (p *Provider) NewSecret(account string) (string, string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      p.issuer,
		AccountName: account,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// Validate проверяет код против секрета с учётом допуска.
func (p *Provider) Validate(secret, code string) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      p.skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
