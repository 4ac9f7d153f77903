package file

import (
	"net/http"

	"github.com/EgorLis/secure-files/internal/domain"
	"github.com/EgorLis/secure-files/internal/transport/web/logx"
	"github.com/EgorLis/secure-files/internal/transport/web/mw"
	v1 "github.com/EgorLis/secure-files/internal/transport/web/v1"
)

// GetOne godoc
// @Summary     File details
// @Description Карточка файла: метаданные, владелец, счётчик грантов.
// @Description Несуществующий id — 404; существующий без доступа — 403.
// @Tags        files
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "file id"
// @Success     200 {object} domain.APIEnvelope{response=fileView}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     403 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/files/{id} [get]
func (h *Handler) GetOne(w http.ResponseWriter, r *http.Request) {
	const op = "file.get"
	reqID := mw.RequestIDFromCtx(r.Context())

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

	f, _, err := h.authorize(r.Context(), domain.OpView, me.ID, id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "denied", err, "file_id", id, "user_id", me.ID)
		v1.WriteDomainError(w, r, err)
		return
	}

	owner := ownerInfo{ID: me.ID, Username: me.Username, Email: me.Email}
	if f.OwnerID != me.ID {
		u, err := h.Users.UserByID(r.Context(), f.OwnerID)
		if err != nil {
			logx.Error(h.Log, reqID, op, "owner lookup failed", err, "owner_id", f.OwnerID)
			v1.WriteDomainError(w, r, domain.ErrUnexpected)
			return
		}
		owner = ownerInfo{ID: u.ID, Username: u.Username, Email: u.Email}
	}

	count, err := h.Files.CountShares(r.Context(), f.ID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "count shares failed", err, "file_id", f.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "file_id", f.ID, "user_id", me.ID)
	v1.WriteOKResponse(w, r, fileView{
		ID:              f.ID,
		Name:            f.Name,
		SizeBytes:       f.SizeBytes,
		FileHash:        f.FileHash,
		Owner:           owner,
		IsOwner:         f.OwnerID == me.ID,
		SharedWithCount: count,
		Created:         f.CreatedAt,
		Updated:         f.UpdatedAt,
		DownloadURL:     downloadURL(f.ID),
	})
}
