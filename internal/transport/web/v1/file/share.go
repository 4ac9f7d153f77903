package file

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/EgorLis/secure-files/internal/domain"
	"github.com/EgorLis/secure-files/internal/transport/web/logx"
	"github.com/EgorLis/secure-files/internal/transport/web/mw"
	v1 "github.com/EgorLis/secure-files/internal/transport/web/v1"
)

type shareRequest struct {
	UserID    uuid.UUID  `json:"user_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type shareResponse struct {
	Share      domain.FileShare `json:"share"`
	SharedWith ownerInfo        `json:"shared_with"`
}

// Share godoc
// @Summary     Share file with a user
// @Description Только владелец. Один грант на пару (файл, пользователь):
// @Description повторный шаринг — конфликт, даже если старый грант истёк.
// @Description expires_at опционален (nil — бессрочно), прошлое не принимаем.
// @Tags        files
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "file id"
// @Param       request body shareRequest true "grantee"
// @Success     201 {object} domain.APIEnvelope{response=shareResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     403 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Failure     409 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/files/{id}/share [post]
func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	const op = "file.share"
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

	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == uuid.Nil {
		logx.Error(h.Log, reqID, op, "bad json or empty user_id", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if req.UserID == me.ID {
		logx.Error(h.Log, reqID, op, "share with self", domain.ErrBadParams, "user_id", me.ID)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(time.Now()) {
		logx.Error(h.Log, reqID, op, "expires_at in the past", domain.ErrBadParams)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	f, _, err := h.authorize(r.Context(), domain.OpShare, me.ID, id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "denied", err, "file_id", id, "user_id", me.ID)
		v1.WriteDomainError(w, r, err)
		return
	}

	target, err := h.Users.UserByID(r.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = domain.ErrUserNotFound
		}
		logx.Error(h.Log, reqID, op, "grantee lookup failed", err, "grantee", req.UserID)
		v1.WriteDomainError(w, r, err)
		return
	}
	if !target.IsActive {
		logx.Error(h.Log, reqID, op, "grantee disabled", domain.ErrUserNotFound, "grantee", target.ID)
		v1.WriteDomainError(w, r, domain.ErrUserNotFound)
		return
	}

	created, err := h.Shares.CreateShare(r.Context(), domain.FileShare{
		FileID:     f.ID,
		SharedWith: target.ID,
		SharedBy:   me.ID,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		logx.Error(h.Log, reqID, op, "create share failed", err, "file_id", f.ID, "grantee", target.ID)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "file_id", f.ID, "share_id", created.ID, "grantee", target.ID)
	v1.WriteCreated(w, r, shareResponse{
		Share:      created,
		SharedWith: ownerInfo{ID: target.ID, Username: target.Username, Email: target.Email},
	})
}
