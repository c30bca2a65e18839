package user

import "time"

type Role string

const (
	RoleAdmin         Role = "admin"
	RoleOwner         Role = "owner"
	RoleAccountant    Role = "accountant"
	RoleHRManager     Role = "hr_manager"
	RoleBranchManager Role = "branch_manager"
	RoleSupervisor    Role = "supervisor"
	RoleEmployee      Role = "employee"
)

// AllRoles returns every assignable role.
func AllRoles() []Role {
	return []Role{
		RoleAdmin,
		RoleOwner,
		RoleAccountant,
		RoleHRManager,
		RoleBranchManager,
		RoleSupervisor,
		RoleEmployee,
	}
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	for _, role := range AllRoles() {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID              string
	EmployeeID      *string
	Email           string
	PasswordHash    *string
	Role            Role
	IsActive        bool
	OAuthProvider   *string
	OAuthProviderID *string
	LastLogin       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined
	EmployeeCode *string
	FullName     *string
}

// CanApprove reports whether the user may approve leave requests.
func (u *User) CanApprove() bool {
	return Can(u.Role, ActionLeaveApprove)
}

// ApproverRoles are the roles notified when leave is requested.
func ApproverRoles() []Role {
	return RolesFor(ActionLeaveApprove)
}
