package domain

import "time"

// Операции над файлом, проверяемые гейтом доступа.
type FileOp string

const (
	OpView     FileOp = "view"
	OpDownload FileOp = "download"
	OpDelete   FileOp = "delete"
	OpShare    FileOp = "share"
)

// CanUpload — предикат возможностей роли: загружать могут Admin и User,
// Guest — только читать расшаренное.
func CanUpload(r Role) bool {
	return r == RoleAdmin || r == RoleUser
}

// Authorize — единая точка политики доступа к файлу.
// share — действующий грант реквестера на файл (nil, если гранта нет);
// истёкший грант приравнивается к отсутствующему.
//
// view/download: владелец ИЛИ неистёкший грант.
// delete/share:  только владелец.
func Authorize(op FileOp, requester UserID, f EncryptedFile, share *FileShare, now time.Time) error {
	owner := f.OwnerID == requester
	granted := share != nil && share.SharedWith == requester && !share.Expired(now)

	switch op {
	case OpView, OpDownload:
		if owner || granted {
			return nil
		}
	case OpDelete, OpShare:
		if owner {
			return nil
		}
	}
	return ErrForbidden
}
