package auth

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/EgorLis/secure-files/internal/domain"
	"github.com/EgorLis/secure-files/internal/transport/web/logx"
	"github.com/EgorLis/secure-files/internal/transport/web/mw"
	v1 "github.com/EgorLis/secure-files/internal/transport/web/v1"
)

type HandlerRefresh struct {
	Log       *log.Logger
	Users     domain.UsersRepo
	Tokens    domain.TokenManager
	Blacklist domain.TokenBlacklist
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh godoc
// @Summary     Refresh session tokens
// @Description Обменивает живой refresh-токен на новую пару; старый refresh отзывается (ротация).
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body refreshRequest true "refresh_token"
// @Success     200 {object} domain.APIEnvelope{response=domain.TokenPair}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/auth/refresh [post]
func (h *HandlerRefresh) Refresh(w http.ResponseWriter, r *http.Request) {
	const op = "auth.refresh"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	claims, err := h.Tokens.Parse(r.Context(), req.RefreshToken)
	if err != nil || claims.Kind != domain.TokenRefresh {
		logx.Error(h.Log, reqID, op, "parse refresh failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}
	if revoked, _ := h.Blacklist.IsRevoked(r.Context(), claims.JTI); revoked {
		logx.Error(h.Log, reqID, op, "refresh revoked", domain.ErrUnauth, "jti", claims.JTI)
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	u, err := h.Users.UserByID(r.Context(), claims.UserID)
	if err != nil || !u.IsActive {
		logx.Error(h.Log, reqID, op, "user not found or disabled", err, "user_id", claims.UserID)
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	pair, err := h.Tokens.IssuePair(r.Context(), u)
	if err != nil {
		logx.Error(h.Log, reqID, op, "issue tokens failed", err, "user_id", u.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	// ротация: использованный refresh больше не принимается
	if err := h.Blacklist.Revoke(r.Context(), claims.JTI, claims.ExpiresAt); err != nil {
		logx.Error(h.Log, reqID, op, "revoke old refresh failed", err, "jti", claims.JTI)
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", u.ID)
	v1.WriteOKResponse(w, r, pair)
}
