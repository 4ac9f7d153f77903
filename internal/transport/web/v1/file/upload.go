package file

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/EgorLis/secure-files/internal/domain"
	"github.com/EgorLis/secure-files/internal/transport/web/logx"
	"github.com/EgorLis/secure-files/internal/transport/web/mw"
	v1 "github.com/EgorLis/secure-files/internal/transport/web/v1"
)

// Upload godoc
// @Summary     Upload encrypted file
// @Description Принимает multipart: file (шифротекст), encryption_salt и
// @Description encryption_nonce (base64), опционально name (открытое имя,
// @Description по умолчанию имя части file). Содержимое не интерпретируется,
// @Description sha256 считается на лету при записи в хранилище.
// @Tags        files
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       file formData file true "ciphertext"
// @Param       encryption_salt formData string true "base64"
// @Param       encryption_nonce formData string true "base64"
// @Param       name formData string false "cleartext file name"
// @Success     201 {object} domain.APIEnvelope{response=fileView}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     403 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/files [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	const op = "file.upload"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start")

	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}
	if !domain.CanUpload(me.Role) {
		logx.Error(h.Log, reqID, op, "role cannot upload", domain.ErrForbidden, "user_id", me.ID, "role", me.Role)
		v1.WriteDomainError(w, r, domain.ErrForbidden)
		return
	}

	// лимит на тело: файл + запас под поля формы
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			logx.Error(h.Log, reqID, op, "body too large", err, "limit", h.MaxUploadBytes)
			v1.WriteDomainError(w, r, domain.ErrTooLarge)
			return
		}
		logx.Error(h.Log, reqID, op, "bad multipart", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	salt, nonce, err := decodeEncMeta(r.FormValue("encryption_salt"), r.FormValue("encryption_nonce"))
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad encryption metadata", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	part, fh, err := r.FormFile("file")
	if err != nil {
		logx.Error(h.Log, reqID, op, "missing file part", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	defer part.Close()

	if fh.Size > h.MaxUploadBytes {
		logx.Error(h.Log, reqID, op, "file too large", domain.ErrTooLarge, "size", fh.Size, "limit", h.MaxUploadBytes)
		v1.WriteDomainError(w, r, domain.ErrTooLarge)
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = fh.Filename
	}
	if !domain.AllowedFileName(name) {
		logx.Error(h.Log, reqID, op, "extension not allowed", domain.ErrUnsupportedType, "name", name)
		v1.WriteDomainError(w, r, domain.ErrUnsupportedType)
		return
	}

	// сначала blob, потом метаданные: осиротевший blob дешевле
	// метаданных без содержимого
	key := "files/" + uuid.New().String()
	put, err := h.Storage.Put(r.Context(), part, key)
	if err != nil {
		logx.Error(h.Log, reqID, op, "blob put failed", err, "key", key)
		v1.WriteDomainError(w, r, domain.ErrStorage)
		return
	}

	created, err := h.Files.CreateFile(r.Context(), domain.EncryptedFile{
		OwnerID:    me.ID,
		Name:       name,
		SizeBytes:  put.Size,
		Salt:       salt,
		Nonce:      nonce,
		FileHash:   hex.EncodeToString(put.SHA256),
		StorageKey: key,
	})
	if err != nil {
		logx.Error(h.Log, reqID, op, "create metadata failed", err, "key", key)
		if derr := h.Storage.Delete(r.Context(), key); derr != nil {
			logx.Error(h.Log, reqID, op, "orphan blob cleanup failed", derr, "key", key)
		}
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "file_id", created.ID, "size", put.Size)
	v1.WriteCreated(w, r, fileView{
		ID:          created.ID,
		Name:        created.Name,
		SizeBytes:   created.SizeBytes,
		FileHash:    created.FileHash,
		Owner:       ownerInfo{ID: me.ID, Username: me.Username, Email: me.Email},
		IsOwner:     true,
		Created:     created.CreatedAt,
		Updated:     created.UpdatedAt,
		DownloadURL: downloadURL(created.ID),
	})
}

// decodeEncMeta валидирует обязательные base64-поля соли и nonce.
func decodeEncMeta(saltB64, nonceB64 string) (salt, nonce []byte, err error) {
	if saltB64 == "" || nonceB64 == "" {
		return nil, nil, domain.ErrMissingEncMeta
	}
	salt, err = base64.StdEncoding.DecodeString(saltB64)
	if err != nil || len(salt) == 0 {
		return nil, nil, domain.ErrBadParams
	}
	nonce, err = base64.StdEncoding.DecodeString(nonceB64)
	if err != nil || len(nonce) == 0 {
		return nil, nil, domain.ErrBadParams
	}
	return salt, nonce, nil
}
