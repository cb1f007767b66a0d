// Package rbac holds the static role and capability policy. The table in
// table.go is the single source of truth for authorization decisions;
// changing it requires a deployment, never a database write.
package rbac

// Role is a user's base functional category. Every user has exactly one.
type Role string

const (
	RoleDoctor      Role = "doctor"
	RolePharmacy    Role = "pharmacy"
	RoleFrontOffice Role = "front_office"
	RoleCareManager Role = "care_manager"
	RoleAdmin       Role = "admin"
	RolePatient     Role = "patient"
	RoleDebtors     Role = "debtors"
	RoleInsurer     Role = "insurer"
)

// SubRole narrows behavior within a base role. Only insurer staff carry
// one; an insurer user without a sub-role is "insurer, unscoped".
type SubRole string

const (
	SubRoleNone          SubRole = ""
	SubRoleClaimsManager SubRole = "claims_manager"
	SubRoleCareManager   SubRole = "care_manager"
	SubRoleInsurerAdmin  SubRole = "insurer_admin"
)

// Capability is an authorization-checkable action or route.
type Capability string

const (
	CapPatientsView        Capability = "patients:view"
	CapPrescriptionsManage Capability = "prescriptions:manage"
	CapMedicationDispense  Capability = "medication:dispense"
	CapAppointmentsManage  Capability = "appointments:manage"
	CapCarePlansManage     Capability = "care_plans:manage"
	CapRecordsViewOwn      Capability = "records:view_own"
	CapInvoicesManage      Capability = "invoices:manage"
	CapClaimsView          Capability = "claims:view"
	CapClaimsReview        Capability = "claims:review"
	CapClaimsApprove       Capability = "claims:approve"
	CapInsurerManageOrg    Capability = "insurer:manage_org"
	CapUsersManage         Capability = "users:manage"
)

// AllRoles enumerates every base role; Validate uses it to check the
// policy table for totality.
var AllRoles = []Role{
	RoleDoctor,
	RolePharmacy,
	RoleFrontOffice,
	RoleCareManager,
	RoleAdmin,
	RolePatient,
	RoleDebtors,
	RoleInsurer,
}

// subRolesByRole lists the valid sub-roles per base role. Roles absent
// from the map take no sub-role.
var subRolesByRole = map[Role][]SubRole{
	RoleInsurer: {SubRoleClaimsManager, SubRoleCareManager, SubRoleInsurerAdmin},
}

// ValidRole reports whether r is one of the enumerated base roles.
func ValidRole(r Role) bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// ValidSubRole reports whether sub is acceptable for the base role r.
// The empty sub-role is valid for every role.
func ValidSubRole(r Role, sub SubRole) bool {
	if sub == SubRoleNone {
		return true
	}
	for _, known := range subRolesByRole[r] {
		if sub == known {
			return true
		}
	}
	return false
}

// SubRolesFor returns the valid sub-roles for a base role, nil when the
// role takes none.
func SubRolesFor(r Role) []SubRole {
	return subRolesByRole[r]
}
