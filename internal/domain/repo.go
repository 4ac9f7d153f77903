package domain

import "context"

type UsersRepo interface {
	Close()
	Ping(context.Context) error
	// CreateUser возвращает ErrEmailTaken/ErrUsernameTaken при конфликте уникальности.
	CreateUser(ctx context.Context, u User) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	UserByID(ctx context.Context, id UserID) (User, error)
	// TouchLastLogin — отметка успешной аутентификации.
	TouchLastLogin(ctx context.Context, id UserID) error
	SetMFAEnabled(ctx context.Context, id UserID, enabled bool) error
}

type FilesRepo interface {
	CreateFile(ctx context.Context, f EncryptedFile) (EncryptedFile, error)
	// FileByID — без ACL: политику решает гейт доступа, а не запрос.
	FileByID(ctx context.Context, id FileID) (EncryptedFile, error)
	// ListVisible: свои + расшаренные (неистёкшие), без дублей, created_at DESC.
	ListVisible(ctx context.Context, requester UserID) ([]EncryptedFile, error)
	// DeleteFile удаляет метаданные; гранты уходят каскадом в БД.
	DeleteFile(ctx context.Context, id FileID, owner UserID) error
	CountShares(ctx context.Context, id FileID) (int64, error)
}

type SharesRepo interface {
	// CreateShare возвращает ErrAlreadyShared при повторном гранте на пару
	// (file, shared_with) — независимо от истечения существующего.
	CreateShare(ctx context.Context, s FileShare) (FileShare, error)
	// ShareFor возвращает грант пары (включая истёкший) или nil.
	ShareFor(ctx context.Context, fileID FileID, userID UserID) (*FileShare, error)
	DeleteShare(ctx context.Context, fileID FileID, userID UserID) error
	// IncrementAccess — атомарный access_count+1 на стороне БД,
	// никакого read-modify-write в приложении.
	IncrementAccess(ctx context.Context, fileID FileID, userID UserID) error
}

type TOTPRepo interface {
	CreateDevice(ctx context.Context, d TOTPDevice) (TOTPDevice, error)
	// LatestUnconfirmed — самое свежее неподтверждённое устройство,
	// ErrNoPendingSetup если такого нет.
	LatestUnconfirmed(ctx context.Context, userID UserID) (TOTPDevice, error)
	ConfirmDevice(ctx context.Context, id DeviceID) error
	// DeleteUnconfirmed чистит неподтверждённые устройства пользователя,
	// кроме exceptID (uuid.Nil — удалить все).
	DeleteUnconfirmed(ctx context.Context, userID UserID, exceptID DeviceID) error
	DeleteAll(ctx context.Context, userID UserID) error
	ConfirmedDevices(ctx context.Context, userID UserID) ([]TOTPDevice, error)
}
