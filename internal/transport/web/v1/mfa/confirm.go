package mfa

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/EgorLis/secure-files/internal/domain"
	"github.com/EgorLis/secure-files/internal/transport/web/logx"
	"github.com/EgorLis/secure-files/internal/transport/web/mw"
	v1 "github.com/EgorLis/secure-files/internal/transport/web/v1"
)

type codeRequest struct {
	Code string `json:"code"`
}

// Confirm godoc
// @Summary     Confirm MFA setup
// @Description Проверяет код против последнего неподтверждённого устройства.
// @Description Совпадение: устройство подтверждено, остальные неподтверждённые
// @Description удалены, mfa_enabled=true. Несовпадение: устройство остаётся —
// @Description можно повторить.
// @Tags        mfa
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body codeRequest true "code"
// @Success     200 {object} domain.APIEnvelope{response=object}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/mfa/setup/confirm [post]
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	const op = "mfa.confirm"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start")

	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	var req codeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		logx.Error(h.Log, reqID, op, "bad json or empty code", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	device, err := h.Devices.LatestUnconfirmed(r.Context(), me.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNoPendingSetup) {
			logx.Error(h.Log, reqID, op, "no pending setup", err, "user_id", me.ID)
			v1.WriteDomainError(w, r, domain.ErrNoPendingSetup)
			return
		}
		logx.Error(h.Log, reqID, op, "lookup device failed", err, "user_id", me.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	if !h.TOTP.Validate(device.Secret, req.Code) {
		// устройство остаётся неподтверждённым — пользователь может повторить
		logx.Error(h.Log, reqID, op, "invalid code", domain.ErrInvalidCode, "user_id", me.ID)
		v1.WriteDomainError(w, r, domain.ErrInvalidCode)
		return
	}

	if err := h.Devices.ConfirmDevice(r.Context(), device.ID); err != nil {
		logx.Error(h.Log, reqID, op, "confirm device failed", err, "device_id", device.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if err := h.Devices.DeleteUnconfirmed(r.Context(), me.ID, device.ID); err != nil {
		logx.Error(h.Log, reqID, op, "purge unconfirmed failed", err, "user_id", me.ID)
	}
	if err := h.Users.SetMFAEnabled(r.Context(), me.ID, true); err != nil {
		logx.Error(h.Log, reqID, op, "enable mfa failed", err, "user_id", me.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", me.ID, "device_id", device.ID)
	v1.WriteOKResponse(w, r, map[string]string{"message": "MFA enabled successfully"})
}
