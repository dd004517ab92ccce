package user

type Permission string

const (
	// Self service
	PermissionAttendanceMarkOwn Permission = "attendance.mark_own"
	PermissionLeaveCreate       Permission = "leave.create"
	PermissionSiteVisitManage   Permission = "site_visit.manage_own"
	PermissionCompOffUseOwn     Permission = "comp_off.use_own"

	// Administration
	PermissionAttendanceMarkAny Permission = "attendance.mark_any"
	PermissionAttendanceDelete  Permission = "attendance.delete"
	PermissionViewAll           Permission = "records.view_all"
	PermissionLeaveApprove      Permission = "leave.approve"
	PermissionLeaveQuotaManage  Permission = "leave.quota_manage"
	PermissionSiteVisitApprove  Permission = "site_visit.approve"
	PermissionCalendarManage    Permission = "calendar.manage"
	PermissionBalanceRecompute  Permission = "balance.recompute"
	PermissionNotificationRetry Permission = "notification.retry"
)

var selfService = []Permission{
	PermissionAttendanceMarkOwn,
	PermissionLeaveCreate,
	PermissionSiteVisitManage,
	PermissionCompOffUseOwn,
}

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleEmployee: selfService,
	RoleAdmin: append(append([]Permission{}, selfService...),
		PermissionAttendanceMarkAny,
		PermissionAttendanceDelete,
		PermissionViewAll,
		PermissionLeaveApprove,
		PermissionLeaveQuotaManage,
		PermissionSiteVisitApprove,
		PermissionCalendarManage,
		PermissionBalanceRecompute,
		PermissionNotificationRetry,
	),
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
