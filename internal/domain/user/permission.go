package user

// Action names a capability checked by the HTTP layer and by services.
type Action string

const (
	ActionEmployeeViewAll Action = "employee.view_all"
	ActionEmployeeManage  Action = "employee.manage"
	ActionEmployeeDelete  Action = "employee.delete"

	ActionBranchManage Action = "branch.manage"

	ActionAttendanceViewAll Action = "attendance.view_all"
	ActionAttendanceReport  Action = "attendance.report"
	ActionAttendanceMark    Action = "attendance.mark"

	ActionLeaveViewAll      Action = "leave.view_all"
	ActionLeaveApprove      Action = "leave.approve"
	ActionLeaveStats        Action = "leave.stats"
	ActionLeaveConfigView   Action = "leave.config_view"
	ActionLeaveConfigManage Action = "leave.config_manage"

	ActionPayrollManage  Action = "payroll.manage"
	ActionPayrollApprove Action = "payroll.approve"

	ActionPaymentManage Action = "payment.manage"

	ActionReportView Action = "report.view"

	ActionNotificationSend      Action = "notification.send"
	ActionNotificationBroadcast Action = "notification.broadcast"

	ActionUserManage Action = "user.manage"
)

// Policy maps every action to the roles allowed to perform it.
var Policy = map[Action][]Role{
	ActionEmployeeViewAll: {RoleAdmin, RoleOwner, RoleHRManager},
	ActionEmployeeManage:  {RoleAdmin, RoleOwner, RoleHRManager},
	ActionEmployeeDelete:  {RoleAdmin},

	ActionBranchManage: {RoleAdmin, RoleOwner, RoleHRManager},

	ActionAttendanceViewAll: {RoleAdmin, RoleOwner, RoleAccountant, RoleHRManager, RoleBranchManager},
	ActionAttendanceReport:  {RoleAdmin, RoleOwner, RoleAccountant, RoleHRManager, RoleBranchManager},
	ActionAttendanceMark:    {RoleAdmin, RoleOwner, RoleHRManager, RoleBranchManager, RoleSupervisor},

	ActionLeaveViewAll:      {RoleAdmin, RoleOwner, RoleHRManager, RoleBranchManager, RoleSupervisor},
	ActionLeaveApprove:      {RoleAdmin, RoleOwner, RoleHRManager, RoleBranchManager, RoleSupervisor},
	ActionLeaveStats:        {RoleAdmin, RoleOwner, RoleAccountant, RoleHRManager, RoleBranchManager},
	ActionLeaveConfigView:   {RoleAdmin, RoleOwner, RoleHRManager},
	ActionLeaveConfigManage: {RoleAdmin, RoleOwner},

	ActionPayrollManage:  {RoleAdmin, RoleOwner, RoleAccountant, RoleHRManager},
	ActionPayrollApprove: {RoleAdmin, RoleOwner, RoleAccountant},

	ActionPaymentManage: {RoleAdmin, RoleOwner, RoleAccountant},

	ActionReportView: {RoleAdmin, RoleOwner, RoleHRManager, RoleAccountant},

	ActionNotificationSend:      {RoleAdmin, RoleHRManager},
	ActionNotificationBroadcast: {RoleAdmin},

	ActionUserManage: {RoleAdmin},
}

// Can checks if role may perform action
func Can(role Role, action Action) bool {
	for _, r := range Policy[action] {
		if r == role {
			return true
		}
	}
	return false
}

// RolesFor returns a copy of the roles allowed to perform action.
func RolesFor(action Action) []Role {
	roles := Policy[action]
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}
