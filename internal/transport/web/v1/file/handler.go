package file

import (
	"log"
	"time"

	"github.com/EgorLis/secure-files/internal/domain"
)

type Handler struct {
	Log     *log.Logger
	Users   domain.UsersRepo
	Files   domain.FilesRepo
	Shares  domain.SharesRepo
	Storage domain.BlobStorage
	Cache   domain.Cache

	MaxUploadBytes int64
	FileMetaTTL    time.Duration
}

// ownerInfo — публичная часть владельца в ответах по файлам.
type ownerInfo struct {
	ID       domain.UserID `json:"id"`
	Username string        `json:"username"`
	Email    string        `json:"email"`
}

// fileView — представление файла в списках и карточке.
type fileView struct {
	ID              domain.FileID `json:"id"`
	Name            string        `json:"name"`
	SizeBytes       int64         `json:"size_bytes"`
	FileHash        string        `json:"file_hash"`
	Owner           ownerInfo     `json:"owner"`
	IsOwner         bool          `json:"is_owner"`
	SharedWithCount int64         `json:"shared_with_count"`
	Created         time.Time     `json:"created"`
	Updated         time.Time     `json:"updated"`
	DownloadURL     string        `json:"download_url"`
}

func downloadURL(id domain.FileID) string {
	return "/api/v1/files/" + id.String() + "/download"
}
