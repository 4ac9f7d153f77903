package file

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/EgorLis/secure-files/internal/domain"
	"github.com/EgorLis/secure-files/internal/transport/web/logx"
	"github.com/EgorLis/secure-files/internal/transport/web/mw"
	v1 "github.com/EgorLis/secure-files/internal/transport/web/v1"
)

// Download godoc
// @Summary     Download ciphertext
// @Description Отдаёт шифротекст как octet-stream. Соль и nonce клиентского
// @Description шифрования — в заголовках X-Encryption-Salt/X-Encryption-Nonce
// @Description (base64). Скачивание по гранту инкрементирует access_count.
// @Tags        files
// @Produce     octet-stream
// @Security    BearerAuth
// @Param       id path string true "file id"
// @Success     200 {file} binary
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     403 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/files/{id}/download [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	const op = "file.download"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start")

	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	id, err := parseFileID(r.PathValue("id"))
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}

	f, share, err := h.authorize(r.Context(), domain.OpDownload, me.ID, id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "denied", err, "file_id", id, "user_id", me.ID)
		v1.WriteDomainError(w, r, err)
		return
	}

	rc, size, err := h.Storage.Get(r.Context(), f.StorageKey)
	if err != nil {
		logx.Error(h.Log, reqID, op, "blob get failed", err, "key", f.StorageKey)
		v1.WriteDomainError(w, r, domain.ErrStorage)
		return
	}
	defer rc.Close()

	// счётчик обращений — только для скачиваний по гранту,
	// и только когда поток реально открыт
	if share != nil {
		if err := h.Shares.IncrementAccess(r.Context(), f.ID, me.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// грант отозвали между проверкой и инкрементом
				v1.WriteDomainError(w, r, domain.ErrForbidden)
				return
			}
			logx.Error(h.Log, reqID, op, "increment access failed", err, "file_id", f.ID)
			v1.WriteDomainError(w, r, domain.ErrUnexpected)
			return
		}
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))
	w.Header().Set("X-Encryption-Salt", base64.StdEncoding.EncodeToString(f.Salt))
	w.Header().Set("X-Encryption-Nonce", base64.StdEncoding.EncodeToString(f.Nonce))
	w.Header().Set("X-File-Hash", f.FileHash)
	w.Header().Set("X-Request-ID", reqID)
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, rc); err != nil {
		// заголовки уже ушли — остаётся только залогировать
		logx.Error(h.Log, reqID, op, "stream interrupted", err, "file_id", f.ID)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "file_id", f.ID, "user_id", me.ID, "size", size)
}
