package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/harborhealth/claims/internal/authcore/rbac"
	"github.com/harborhealth/claims/internal/authcore/service"
	"github.com/harborhealth/claims/pkg/authapi"
	"github.com/harborhealth/claims/pkg/httpx"
	"github.com/harborhealth/claims/pkg/jwtx"
	"github.com/harborhealth/claims/pkg/slogx"
)

// SessionCookie carries the session token for browser clients. API
// clients send the same token as a bearer header instead.
const SessionCookie = "authcore_session"

// Guard is the authorization middleware. The API variant answers 401/403
// JSON; the browser variant redirects: to the login page when the caller
// must (re)authenticate, to the caller's own landing route when the
// session is live but the role lacks the capability.
//
// The check order is fixed: unauthenticated before expired, expired
// before capability, and the activity touch happens only once the
// session is known to be live. An expired-but-authentic user is always
// sent back to log in, never told "forbidden".
type Guard struct {
	Codec    *jwtx.Codec
	Sessions *service.SessionService

	// Browser switches from JSON error responses to redirects.
	Browser bool
}

// tokenFromRequest pulls the session token from the Authorization header
// or, failing that, the session cookie.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if raw, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(raw)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// Authenticate resolves the session token into a request principal. The
// JWT is only transport for the session id; the session store remains
// the authority on whether the session is still live.
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := slogx.FromContext(ctx)

		raw := tokenFromRequest(r)
		if raw == "" {
			g.rejectUnauthenticated(w, r, authapi.ErrUnauthenticated)
			return
		}

		claims, err := g.Codec.Verify(raw)
		if err != nil {
			if errors.Is(err, jwtx.ErrExpired) {
				g.rejectUnauthenticated(w, r, authapi.ErrSessionExpired)
				return
			}
			log.Info("rejecting invalid session token", "err", err)
			g.rejectUnauthenticated(w, r, authapi.ErrUnauthenticated)
			return
		}

		// Resolve checks expiry against the store and records the
		// activity, restarting the inactivity window.
		if _, err := g.Sessions.Resolve(ctx, claims.SID); err != nil {
			if errors.Is(err, service.ErrSessionExpired) {
				g.rejectUnauthenticated(w, r, authapi.ErrSessionExpired)
				return
			}
			g.rejectUnauthenticated(w, r, authapi.ErrUnauthenticated)
			return
		}

		ctx = context.WithValue(ctx, httpx.CtxKeyUserID, claims.Subject)
		ctx = context.WithValue(ctx, httpx.CtxKeySessionID, claims.SID)
		ctx = context.WithValue(ctx, httpx.CtxKeyRole, claims.Role)
		ctx = context.WithValue(ctx, httpx.CtxKeySubRole, claims.SubRole)
		ctx = context.WithValue(ctx, httpx.CtxKeyOrg, claims.Org)
		ctx = context.WithValue(ctx, httpx.CtxKeyUsername, claims.Username)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireCapability enforces the policy table for an already
// authenticated request. It must sit inside Authenticate in the chain.
func (g *Guard) RequireCapability(cap rbac.Capability) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			role := rbac.Role(httpx.RoleFromCtx(ctx))
			sub := rbac.SubRole(httpx.SubRoleFromCtx(ctx))

			if err := rbac.RequireCapability(role, sub, cap); err != nil {
				slogx.FromContext(ctx).Info("capability denied",
					"role", string(role),
					"sub_role", string(sub),
					"capability", string(cap),
				)
				g.rejectForbidden(w, r, role, sub)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (g *Guard) rejectUnauthenticated(w http.ResponseWriter, r *http.Request, apiErr *authapi.APIError) {
	if !g.Browser {
		apiErr.Write(w)
		return
	}

	// A stale cookie would bounce the browser straight back here.
	clearSessionCookie(w)
	http.Redirect(w, r, rbac.LoginRoute, http.StatusSeeOther)
}

// rejectForbidden sends the caller to their own landing route, never to
// the destination they were denied.
func (g *Guard) rejectForbidden(w http.ResponseWriter, r *http.Request, role rbac.Role, sub rbac.SubRole) {
	if !g.Browser {
		authapi.ErrForbidden.Write(w)
		return
	}
	http.Redirect(w, r, rbac.LandingRoute(role, sub), http.StatusSeeOther)
}

func setSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
