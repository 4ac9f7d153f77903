package mfa

import (
	"net/http"

	"github.com/EgorLis/secure-files/internal/domain"
	"github.com/EgorLis/secure-files/internal/transport/web/logx"
	"github.com/EgorLis/secure-files/internal/transport/web/mw"
	v1 "github.com/EgorLis/secure-files/internal/transport/web/v1"
)

// Disable godoc
// @Summary     Disable MFA
// @Description Удаляет все TOTP-устройства (подтверждённые и нет) и снимает флаг.
// @Tags        mfa
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} domain.APIEnvelope{response=object}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/mfa/disable [post]
func (h *Handler) Disable(w http.ResponseWriter, r *http.Request) {
	const op = "mfa.disable"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start")

	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	if !me.MFAEnabled {
		logx.Error(h.Log, reqID, op, "mfa not enabled", domain.ErrMFANotEnabled, "user_id", me.ID)
		v1.WriteDomainError(w, r, domain.ErrMFANotEnabled)
		return
	}

	if err := h.Devices.DeleteAll(r.Context(), me.ID); err != nil {
		logx.Error(h.Log, reqID, op, "delete devices failed", err, "user_id", me.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if err := h.Users.SetMFAEnabled(r.Context(), me.ID, false); err != nil {
		logx.Error(h.Log, reqID, op, "disable mfa failed", err, "user_id", me.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", me.ID)
	v1.WriteOKResponse(w, r, map[string]string{"message": "MFA disabled successfully"})
}
