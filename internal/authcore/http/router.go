// Package http wires the authcore services to their HTTP surface: the
// JSON API under /v1, the browser portal routes, and the health probes.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/harborhealth/claims/internal/authcore/rbac"
	"github.com/harborhealth/claims/internal/authcore/service"
	"github.com/harborhealth/claims/internal/authcore/store"
	"github.com/harborhealth/claims/pkg/httpx"
	"github.com/harborhealth/claims/pkg/jwtx"
	"github.com/harborhealth/claims/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	codec        *jwtx.Codec
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	// SessionPinger reports the health of a session backend that is not
	// the primary store (the redis driver). Nil when sessions live in the
	// primary store.
	SessionPinger Pinger

	AuthService      *service.AuthService
	SessionService   *service.SessionService
	UserService      *service.UserService
	BootstrapService *service.BootstrapService
}

func NewRouter(
	codec *jwtx.Codec,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		codec:        codec,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSessions()
	r.registerUsers()
	r.registerPortal()
	r.registerSystem()
	r.registerBootstrap()
}

// apiGuard gates JSON endpoints: 401/403 on failure.
func (r *Router) apiGuard() *Guard {
	return &Guard{Codec: r.codec, Sessions: r.SessionService}
}

// browserGuard gates portal pages: redirects on failure.
func (r *Router) browserGuard() *Guard {
	return &Guard{Codec: r.codec, Sessions: r.SessionService, Browser: true}
}

func (r *Router) registerAuth() {
	loginHandler := &LoginHandler{AuthService: r.AuthService}

	// POST /v1/login - strict rate limit by IP (brute force prevention)
	r.Mux.Handle("POST /v1/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	guard := r.apiGuard()
	logoutHandler := &LogoutHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/logout",
		httpx.Chain(logoutHandler,
			guard.Authenticate,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSessions() {
	guard := r.apiGuard()

	// GET /v1/session - countdown endpoint. It deliberately bypasses the
	// guard: resolving a session through the guard records activity, and
	// a polling countdown must never keep its own session alive. The
	// handler verifies the token and reads the session without touching.
	statusHandler := &SessionStatusHandler{
		Codec:          r.codec,
		SessionService: r.SessionService,
	}
	r.Mux.Handle("GET /v1/session",
		httpx.Chain(statusHandler,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	userinfoHandler := &UserInfoHandler{UserService: r.UserService}
	r.Mux.Handle("GET /v1/userinfo",
		httpx.Chain(userinfoHandler,
			guard.Authenticate,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerUsers() {
	guard := r.apiGuard()
	h := &UsersHandler{UserService: r.UserService}

	// Account administration requires the users:manage capability.
	r.Mux.Handle("POST /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			guard.Authenticate,
			guard.RequireCapability(rbac.CapUsersManage),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			guard.Authenticate,
			guard.RequireCapability(rbac.CapUsersManage),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Anyone may rotate their own password.
	pw := &ChangePasswordHandler{AuthService: r.AuthService}
	r.Mux.Handle("PUT /v1/users/me/password",
		httpx.Chain(pw,
			guard.Authenticate,
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

// registerPortal wires the browser-facing landing pages behind the
// redirecting guard variant. Each page requires the capability that
// gates its route in the policy table.
func (r *Router) registerPortal() {
	guard := r.browserGuard()
	h := &PortalHandler{}

	for _, route := range PortalRoutes() {
		cap, ok := rbac.RouteCapability(route)
		if !ok {
			continue
		}
		r.Mux.Handle("GET "+route,
			httpx.Chain(h.Page(route),
				guard.Authenticate,
				guard.RequireCapability(cap),
				httpx.RateLimitByUser(httpx.LenientLimit),
			),
		)
	}

	r.Mux.Handle("GET "+rbac.LoginRoute, http.HandlerFunc(h.LoginPage))
}

func (r *Router) registerBootstrap() {
	// POST /bootstrap - very strict rate limit by IP (one-time setup endpoint)
	bootstrapHandler := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(bootstrapHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.SessionPinger),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
