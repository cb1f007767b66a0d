package rbac

import (
	"errors"
	"fmt"
)

// ErrForbidden signals that a live, authenticated session lacks the
// capability for the attempted action.
var ErrForbidden = errors.New("forbidden: role does not permit this capability")

// LoginRoute is the safe fallback landing location for any role set the
// table does not recognize. It must never point at a privileged route.
const LoginRoute = "/login"

type roleKey struct {
	Role    Role
	SubRole SubRole
}

// Entry is one row of the policy table: the capabilities a role set is
// permitted and where that role set lands after login.
type Entry struct {
	Capabilities map[Capability]bool
	LandingRoute string
}

func caps(cs ...Capability) map[Capability]bool {
	m := make(map[Capability]bool, len(cs))
	for _, c := range cs {
		m[c] = true
	}
	return m
}

// table maps (role, sub-role) to its policy entry. A sub-role entry wins
// over the base-role entry; unkeyed lookups fail closed.
var table = map[roleKey]Entry{
	{RoleDoctor, SubRoleNone}: {
		Capabilities: caps(CapPatientsView, CapPrescriptionsManage, CapAppointmentsManage),
		LandingRoute: "/doctor",
	},
	{RolePharmacy, SubRoleNone}: {
		Capabilities: caps(CapMedicationDispense, CapPrescriptionsManage),
		LandingRoute: "/pharmacy",
	},
	{RoleFrontOffice, SubRoleNone}: {
		Capabilities: caps(CapAppointmentsManage, CapPatientsView),
		LandingRoute: "/front-office",
	},
	{RoleCareManager, SubRoleNone}: {
		Capabilities: caps(CapCarePlansManage, CapPatientsView),
		LandingRoute: "/care-manager",
	},
	{RoleAdmin, SubRoleNone}: {
		Capabilities: caps(CapUsersManage, CapPatientsView, CapInvoicesManage),
		LandingRoute: "/admin",
	},
	{RolePatient, SubRoleNone}: {
		Capabilities: caps(CapRecordsViewOwn, CapAppointmentsManage),
		LandingRoute: "/patient",
	},
	{RoleDebtors, SubRoleNone}: {
		Capabilities: caps(CapInvoicesManage),
		LandingRoute: "/debtors",
	},

	// Insurer without a sub-role is unscoped: it may see claims but holds
	// none of the sub-role-gated capabilities.
	{RoleInsurer, SubRoleNone}: {
		Capabilities: caps(CapClaimsView),
		LandingRoute: "/insurer",
	},
	{RoleInsurer, SubRoleClaimsManager}: {
		Capabilities: caps(CapClaimsView, CapClaimsReview, CapClaimsApprove),
		LandingRoute: "/insurer/claims",
	},
	{RoleInsurer, SubRoleCareManager}: {
		Capabilities: caps(CapClaimsView, CapCarePlansManage),
		LandingRoute: "/insurer/care",
	},
	{RoleInsurer, SubRoleInsurerAdmin}: {
		Capabilities: caps(CapClaimsView, CapInsurerManageOrg, CapUsersManage),
		LandingRoute: "/insurer/admin",
	},
}

// routeCapabilities maps each landing route to the capability required to
// reach it. Validate uses this to prove no entry lands somewhere its own
// capability set cannot reach.
var routeCapabilities = map[string]Capability{
	"/doctor":         CapPatientsView,
	"/pharmacy":       CapMedicationDispense,
	"/front-office":   CapAppointmentsManage,
	"/care-manager":   CapCarePlansManage,
	"/admin":          CapUsersManage,
	"/patient":        CapRecordsViewOwn,
	"/debtors":        CapInvoicesManage,
	"/insurer":        CapClaimsView,
	"/insurer/claims": CapClaimsReview,
	"/insurer/care":   CapCarePlansManage,
	"/insurer/admin":  CapInsurerManageOrg,
}

// RouteCapability returns the capability required to reach a guarded
// route. The second return is false for routes the table does not gate.
func RouteCapability(route string) (Capability, bool) {
	c, ok := routeCapabilities[route]
	return c, ok
}

// lookup resolves the policy entry for a role set. The sub-role entry is
// preferred; when none exists the base-role entry applies.
func lookup(role Role, sub SubRole) (Entry, bool) {
	if sub != SubRoleNone {
		if e, ok := table[roleKey{role, sub}]; ok {
			return e, true
		}
	}
	e, ok := table[roleKey{role, SubRoleNone}]
	return e, ok
}

// IsPermitted reports whether the role set holds the capability.
// Unknown roles and unknown capabilities are denied.
func IsPermitted(role Role, sub SubRole, cap Capability) bool {
	e, ok := lookup(role, sub)
	if !ok {
		return false
	}
	return e.Capabilities[cap]
}

// LandingRoute returns the role set's default landing location, or the
// login route when the role set is unknown.
func LandingRoute(role Role, sub SubRole) string {
	e, ok := lookup(role, sub)
	if !ok {
		return LoginRoute
	}
	return e.LandingRoute
}

// RequireCapability is IsPermitted shaped for middleware composition: it
// returns ErrForbidden so callers can distinguish "not authorized" from
// "unauthenticated".
func RequireCapability(role Role, sub SubRole, cap Capability) error {
	if !IsPermitted(role, sub, cap) {
		return fmt.Errorf("%w: %s/%s lacks %s", ErrForbidden, role, sub, cap)
	}
	return nil
}

// Validate checks the table at startup: every enumerated role and
// sub-role has an entry, and every entry's landing route is reachable
// under that entry's own capability set.
func Validate() error {
	for _, role := range AllRoles {
		keys := []roleKey{{role, SubRoleNone}}
		for _, sub := range SubRolesFor(role) {
			keys = append(keys, roleKey{role, sub})
		}

		for _, key := range keys {
			e, ok := table[key]
			if !ok {
				return fmt.Errorf("rbac: no table entry for role %q sub-role %q", key.Role, key.SubRole)
			}
			if len(e.Capabilities) == 0 {
				return fmt.Errorf("rbac: entry %q/%q permits nothing", key.Role, key.SubRole)
			}

			required, ok := routeCapabilities[e.LandingRoute]
			if !ok {
				return fmt.Errorf("rbac: entry %q/%q lands on unguarded route %q", key.Role, key.SubRole, e.LandingRoute)
			}
			if !e.Capabilities[required] {
				return fmt.Errorf("rbac: entry %q/%q cannot reach its own landing route %q (missing %s)",
					key.Role, key.SubRole, e.LandingRoute, required)
			}
		}
	}
	return nil
}
