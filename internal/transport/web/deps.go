package web

import "github.com/EgorLis/secure-files/internal/domain"

type Repos struct {
	Users   domain.UsersRepo
	Files   domain.FilesRepo
	Shares  domain.SharesRepo
	Devices domain.TOTPRepo
}

type AuthDeps struct {
	Hasher    domain.PasswordHasher
	Tokens    domain.TokenManager
	Blacklist domain.TokenBlacklist
	Sessions  domain.MFASessions
	TOTP      domain.TOTPProvider
}
