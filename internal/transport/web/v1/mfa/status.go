package mfa

import (
	"net/http"

	"github.com/EgorLis/secure-files/internal/domain"
	"github.com/EgorLis/secure-files/internal/transport/web/logx"
	"github.com/EgorLis/secure-files/internal/transport/web/mw"
	v1 "github.com/EgorLis/secure-files/internal/transport/web/v1"
)

type statusResponse struct {
	Enabled          bool `json:"enabled"`
	ConfirmedDevices int  `json:"confirmed_devices"`
}

// Status godoc
// @Summary     MFA status
// @Description Текущее состояние MFA пользователя.
// @Tags        mfa
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} domain.APIEnvelope{response=statusResponse}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/mfa/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	const op = "mfa.status"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	devices, err := h.Devices.ConfirmedDevices(r.Context(), me.ID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "list devices failed", err, "user_id", me.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	v1.WriteOKResponse(w, r, statusResponse{
		Enabled:          me.MFAEnabled,
		ConfirmedDevices: len(devices),
	})
}
