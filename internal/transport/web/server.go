package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/EgorLis/secure-files/internal/config"
	"github.com/EgorLis/secure-files/internal/domain"
	authv1 "github.com/EgorLis/secure-files/internal/transport/web/v1/auth"
	"github.com/EgorLis/secure-files/internal/transport/web/v1/file"
	"github.com/EgorLis/secure-files/internal/transport/web/v1/health"
	"github.com/EgorLis/secure-files/internal/transport/web/v1/mfa"
)

type Server struct {
	log    *log.Logger
	server *http.Server
	cfg    *config.Config
}

func New(logger *log.Logger, cfg *config.Config, repos Repos, auth AuthDeps, bs domain.BlobStorage, cache domain.Cache) *Server {
	sub := func(name string) *log.Logger {
		return log.New(logger.Writer(), logger.Prefix()+"["+name+"] ", logger.Flags())
	}

	healthHandler := &health.Handler{Log: sub("health"), DB: repos.Users, Cache: cache, Storage: bs}

	registerHandler := &authv1.HandlerRegister{Log: sub("auth"), Users: repos.Users, Hasher: auth.Hasher}
	loginHandler := &authv1.HandlerLogin{Log: sub("auth"), Users: repos.Users, Hasher: auth.Hasher, Tokens: auth.Tokens}
	refreshHandler := &authv1.HandlerRefresh{Log: sub("auth"), Users: repos.Users, Tokens: auth.Tokens, Blacklist: auth.Blacklist}
	logoutHandler := &authv1.HandlerLogout{Log: sub("auth"), Tokens: auth.Tokens, Blacklist: auth.Blacklist}

	mfaHandler := &mfa.Handler{
		Log:      sub("mfa"),
		Users:    repos.Users,
		Devices:  repos.Devices,
		TOTP:     auth.TOTP,
		Sessions: auth.Sessions,
	}

	fileHandler := &file.Handler{
		Log:            sub("file"),
		Users:          repos.Users,
		Files:          repos.Files,
		Shares:         repos.Shares,
		Storage:        bs,
		Cache:          cache,
		MaxUploadBytes: cfg.MaxUploadBytes,
		FileMetaTTL:    time.Duration(cfg.FileMetaTTL) * time.Second,
	}

	srv := &http.Server{
		Addr: cfg.AppPort,
		Handler: newRouter(routerDeps{
			health:   healthHandler,
			register: registerHandler,
			login:    loginHandler,
			refresh:  refreshHandler,
			logout:   logoutHandler,
			mfa:      mfaHandler,
			file:     fileHandler,
			auth:     auth,
			repos:    repos,
		}, logger),
		ReadTimeout:       5 * time.Minute, // загрузки больших файлов
		WriteTimeout:      5 * time.Minute,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{server: srv, cfg: cfg, log: logger}
}

func (ws *Server) Run() {
	ws.log.Printf("started on %s", ws.server.Addr)
	if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		ws.log.Fatalf("error: %v", err)
	}
}

func (ws *Server) Close(ctx context.Context) {
	if err := ws.server.Shutdown(ctx); err != nil {
		ws.log.Printf("forced to shutdown: %v", err)
	}
	ws.log.Println("exited gracefully")
}
