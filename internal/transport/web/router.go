package web

import (
	"log"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/EgorLis/secure-files/internal/docs"
	"github.com/EgorLis/secure-files/internal/transport/web/mw"
	authv1 "github.com/EgorLis/secure-files/internal/transport/web/v1/auth"
	"github.com/EgorLis/secure-files/internal/transport/web/v1/file"
	"github.com/EgorLis/secure-files/internal/transport/web/v1/health"
	"github.com/EgorLis/secure-files/internal/transport/web/v1/mfa"
)

type routerDeps struct {
	health   *health.Handler
	register *authv1.HandlerRegister
	login    *authv1.HandlerLogin
	refresh  *authv1.HandlerRefresh
	logout   *authv1.HandlerLogout
	mfa      *mfa.Handler
	file     *file.Handler
	auth     AuthDeps
	repos    Repos
}

func newRouter(d routerDeps, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /v1/healthz", d.health.Liveness)
	mux.HandleFunc("GET /v1/readyz", d.health.Readiness)

	// auth — без токена
	mux.HandleFunc("POST /api/v1/auth/register", d.register.Register)
	mux.HandleFunc("POST /api/v1/auth/login", d.login.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", d.refresh.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", d.logout.Logout)

	// защищённая зона
	authDeps := mw.AuthDeps{Tokens: d.auth.Tokens, Blacklist: d.auth.Blacklist, Users: d.repos.Users}
	private := func(h http.HandlerFunc) http.Handler {
		return mw.RequireAuth(authDeps, h)
	}

	// mfa
	mux.Handle("POST /api/v1/mfa/setup", private(d.mfa.Setup))
	mux.Handle("POST /api/v1/mfa/setup/confirm", private(d.mfa.Confirm))
	mux.Handle("POST /api/v1/mfa/verify", private(d.mfa.Verify))
	mux.Handle("POST /api/v1/mfa/disable", private(d.mfa.Disable))
	mux.Handle("GET /api/v1/mfa/status", private(d.mfa.Status))

	// files
	mux.Handle("POST /api/v1/files", private(d.file.Upload))
	mux.Handle("GET /api/v1/files", private(d.file.List))
	mux.Handle("GET /api/v1/files/{id}", private(d.file.GetOne))
	mux.Handle("DELETE /api/v1/files/{id}", private(d.file.Delete))
	mux.Handle("GET /api/v1/files/{id}/download", private(d.file.Download))
	mux.Handle("POST /api/v1/files/{id}/share", private(d.file.Share))
	mux.Handle("DELETE /api/v1/files/{id}/share/{user_id}", private(d.file.Revoke))

	// swagger
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// 🔗 middleware
	return mw.WithRequestID(mw.Logging(logger)(mux))
}
