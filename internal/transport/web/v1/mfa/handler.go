package mfa

import (
	"log"

	"github.com/EgorLis/secure-files/internal/domain"
)

type Handler struct {
	Log      *log.Logger
	Users    domain.UsersRepo
	Devices  domain.TOTPRepo
	TOTP     domain.TOTPProvider
	Sessions domain.MFASessions
}
