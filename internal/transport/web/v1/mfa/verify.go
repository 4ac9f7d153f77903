package mfa

import (
	"encoding/json"
	"net/http"

	"github.com/EgorLis/secure-files/internal/domain"
	"github.com/EgorLis/secure-files/internal/transport/web/logx"
	"github.com/EgorLis/secure-files/internal/transport/web/mw"
	v1 "github.com/EgorLis/secure-files/internal/transport/web/v1"
)

// Verify godoc
// @Summary     Verify MFA code
// @Description Проверяет код против всех подтверждённых устройств пользователя.
// @Description Успех помечает текущую сессию (jti access-токена) как прошедшую MFA.
// @Tags        mfa
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body codeRequest true "code"
// @Success     200 {object} domain.APIEnvelope{response=object}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/mfa/verify [post]
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	const op = "mfa.verify"
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

	var req codeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		logx.Error(h.Log, reqID, op, "bad json or empty code", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	devices, err := h.Devices.ConfirmedDevices(r.Context(), me.ID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "list devices failed", err, "user_id", me.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	for _, d := range devices {
		if h.TOTP.Validate(d.Secret, req.Code) {
			// отметка живёт не дольше самого access-токена
			if claims, ok := domain.ClaimsFromCtx(r.Context()); ok {
				if err := h.Sessions.MarkVerified(r.Context(), claims.JTI, claims.ExpiresAt); err != nil {
					logx.Error(h.Log, reqID, op, "mark session failed", err, "jti", claims.JTI)
				}
			}
			logx.Info(h.Log, reqID, op, "ok", "user_id", me.ID, "device_id", d.ID)
			v1.WriteOKResponse(w, r, map[string]string{"message": "MFA verified successfully"})
			return
		}
	}

	logx.Error(h.Log, reqID, op, "invalid code", domain.ErrInvalidCode, "user_id", me.ID)
	v1.WriteDomainError(w, r, domain.ErrInvalidCode)
}
