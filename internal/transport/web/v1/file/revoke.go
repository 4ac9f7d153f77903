package file

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/EgorLis/secure-files/internal/domain"
	"github.com/EgorLis/secure-files/internal/transport/web/logx"
	"github.com/EgorLis/secure-files/internal/transport/web/mw"
	v1 "github.com/EgorLis/secure-files/internal/transport/web/v1"
)

// Revoke godoc
// @Summary     Revoke a share
// @Description Только владелец. Снимает грант пользователя на файл.
// @Tags        files
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "file id"
// @Param       user_id path string true "grantee id"
// @Success     200 {object} domain.APIEnvelope{response=object}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     403 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/files/{id}/share/{user_id} [delete]
func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	const op = "file.revoke"
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
	grantee, err := uuid.Parse(r.PathValue("user_id"))
	if err != nil {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	f, _, err := h.authorize(r.Context(), domain.OpShare, me.ID, id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "denied", err, "file_id", id, "user_id", me.ID)
		v1.WriteDomainError(w, r, err)
		return
	}

	if err := h.Shares.DeleteShare(r.Context(), f.ID, grantee); err != nil {
		logx.Error(h.Log, reqID, op, "delete share failed", err, "file_id", f.ID, "grantee", grantee)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "file_id", f.ID, "grantee", grantee)
	v1.WriteOKResponse(w, r, map[string]string{"message": "share revoked"})
}
