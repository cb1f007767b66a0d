package http

import (
	"net/http"

	"github.com/harborhealth/claims/internal/authcore/rbac"
	"github.com/harborhealth/claims/pkg/httpx"
)

// PortalHandler serves the browser landing pages. The real UI lives in a
// separate frontend; these endpoints exist so the redirecting guard has
// concrete routes to protect and so deployments can smoke-test role
// routing end to end.
type PortalHandler struct{}

// PortalRoutes lists every guarded landing route, derived from the
// policy table's landing destinations.
func PortalRoutes() []string {
	return []string{
		"/doctor",
		"/pharmacy",
		"/front-office",
		"/care-manager",
		"/admin",
		"/patient",
		"/debtors",
		"/insurer",
		"/insurer/claims",
		"/insurer/care",
		"/insurer/admin",
	}
}

// Page returns the handler for one portal route. The guard has already
// authenticated, touched, and authorized by the time this runs.
func (h *PortalHandler) Page(route string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		httpx.WriteJSON(w, http.StatusOK, map[string]string{
			"page":     route,
			"username": httpx.UsernameFromCtx(ctx),
			"role":     httpx.RoleFromCtx(ctx),
			"sub_role": httpx.SubRoleFromCtx(ctx),
		})
	})
}

// LoginPage is the unauthenticated entry point browsers are redirected
// to. It is deliberately public.
func (h *PortalHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"page": rbac.LoginRoute,
	})
}
