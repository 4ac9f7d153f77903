package file

import (
	"net/http"

	"github.com/EgorLis/secure-files/internal/domain"
	"github.com/EgorLis/secure-files/internal/transport/web/logx"
	"github.com/EgorLis/secure-files/internal/transport/web/mw"
	v1 "github.com/EgorLis/secure-files/internal/transport/web/v1"
)

// Delete godoc
// @Summary     Delete file
// @Description Только владелец. Метаданные и гранты уходят сразу (гранты —
// @Description каскадом), удаление blob — best-effort.
// @Tags        files
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "file id"
// @Success     200 {object} domain.APIEnvelope{response=object}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     403 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/files/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "file.delete"
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

	f, _, err := h.authorize(r.Context(), domain.OpDelete, me.ID, id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "denied", err, "file_id", id, "user_id", me.ID)
		v1.WriteDomainError(w, r, err)
		return
	}

	if err := h.Files.DeleteFile(r.Context(), f.ID, me.ID); err != nil {
		logx.Error(h.Log, reqID, op, "delete metadata failed", err, "file_id", f.ID)
		v1.WriteDomainError(w, r, err)
		return
	}

	if err := h.Cache.Del(r.Context(), domain.CacheKeyFileMeta(f.ID)); err != nil {
		logx.Error(h.Log, reqID, op, "cache invalidation failed", err, "file_id", f.ID)
	}
	if err := h.Storage.Delete(r.Context(), f.StorageKey); err != nil {
		logx.Error(h.Log, reqID, op, "blob delete failed", err, "key", f.StorageKey)
	}

	logx.Info(h.Log, reqID, op, "ok", "file_id", f.ID, "user_id", me.ID)
	v1.WriteOKResponse(w, r, map[string]string{"message": "file deleted"})
}
