package file

import (
	"net/http"
	"time"

	"github.com/EgorLis/secure-files/internal/domain"
	"github.com/EgorLis/secure-files/internal/transport/web/logx"
	"github.com/EgorLis/secure-files/internal/transport/web/mw"
	v1 "github.com/EgorLis/secure-files/internal/transport/web/v1"
)

type listItem struct {
	ID          domain.FileID `json:"id"`
	Name        string        `json:"name"`
	SizeBytes   int64         `json:"size_bytes"`
	FileHash    string        `json:"file_hash"`
	Owner       ownerInfo     `json:"owner"`
	IsOwner     bool          `json:"is_owner"`
	Created     time.Time     `json:"created"`
	Updated     time.Time     `json:"updated"`
	DownloadURL string        `json:"download_url"`
}

// List godoc
// @Summary     List visible files
// @Description Свои файлы плюс расшаренные (только с неистёкшими грантами),
// @Description новые сверху.
// @Tags        files
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} domain.APIEnvelope{data=[]listItem}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/files [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "file.list"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	files, err := h.Files.ListVisible(r.Context(), me.ID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "list failed", err, "user_id", me.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	// владельцы повторяются — резолвим каждого один раз
	owners := map[domain.UserID]ownerInfo{
		me.ID: {ID: me.ID, Username: me.Username, Email: me.Email},
	}
	items := make([]listItem, 0, len(files))
	for _, f := range files {
		owner, ok := owners[f.OwnerID]
		if !ok {
			u, err := h.Users.UserByID(r.Context(), f.OwnerID)
			if err != nil {
				logx.Error(h.Log, reqID, op, "owner lookup failed", err, "owner_id", f.OwnerID)
				v1.WriteDomainError(w, r, domain.ErrUnexpected)
				return
			}
			owner = ownerInfo{ID: u.ID, Username: u.Username, Email: u.Email}
			owners[f.OwnerID] = owner
		}
		items = append(items, listItem{
			ID:          f.ID,
			Name:        f.Name,
			SizeBytes:   f.SizeBytes,
			FileHash:    f.FileHash,
			Owner:       owner,
			IsOwner:     f.OwnerID == me.ID,
			Created:     f.CreatedAt,
			Updated:     f.UpdatedAt,
			DownloadURL: downloadURL(f.ID),
		})
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", me.ID, "count", len(items))
	v1.WriteOKData(w, r, items)
}
