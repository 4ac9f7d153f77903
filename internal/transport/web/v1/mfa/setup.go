package mfa

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/EgorLis/secure-files/internal/domain"
	"github.com/EgorLis/secure-files/internal/transport/web/logx"
	"github.com/EgorLis/secure-files/internal/transport/web/mw"
	v1 "github.com/EgorLis/secure-files/internal/transport/web/v1"
)

type setupResponse struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
}

// Setup godoc
// @Summary     Begin MFA setup
// @Description Создаёт новое неподтверждённое TOTP-устройство со свежим секретом.
// @Description Старые неподтверждённые устройства удаляются — рестарт идемпотентен.
// @Description mfa_enabled не трогаем до подтверждения кодом.
// @Tags        mfa
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} domain.APIEnvelope{response=setupResponse}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/mfa/setup [post]
func (h *Handler) Setup(w http.ResponseWriter, r *http.Request) {
	const op = "mfa.setup"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start")

	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	// чистим незавершённые попытки, чтобы секреты не копились
	if err := h.Devices.DeleteUnconfirmed(r.Context(), me.ID, uuid.Nil); err != nil {
		logx.Error(h.Log, reqID, op, "cleanup unconfirmed failed", err, "user_id", me.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	secret, uri, err := h.TOTP.NewSecret(me.Email)
	if err != nil {
		logx.Error(h.Log, reqID, op, "generate secret failed", err, "user_id", me.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	_, err = h.Devices.CreateDevice(r.Context(), domain.TOTPDevice{
		UserID: me.ID,
		Name:   fmt.Sprintf("%s's authenticator", me.Email),
		Secret: secret,
	})
	if err != nil {
		logx.Error(h.Log, reqID, op, "create device failed", err, "user_id", me.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", me.ID)
	v1.WriteOKResponse(w, r, setupResponse{Secret: secret, ProvisioningURI: uri})
}
