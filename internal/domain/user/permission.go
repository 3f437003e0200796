package user

type Permission string

const (
	// Payroll
	PermissionPayrollView    Permission = "payroll.view"
	PermissionPayrollManage  Permission = "payroll.manage"  // generate, edit, delete, submit
	PermissionPayrollApprove Permission = "payroll.approve" // approve, lock, unlock
	PermissionPayrollPay     Permission = "payroll.pay"

	// Salary advances
	PermissionAdvanceRequest Permission = "advance.request"
	PermissionAdvanceApprove Permission = "advance.approve"

	// Manual deductions
	PermissionDeductionManage Permission = "deduction.manage"

	// Employees and attendance
	PermissionEmployeeManage   Permission = "employee.manage"
	PermissionAttendanceManage Permission = "attendance.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		// Owner has all permissions
		PermissionPayrollView,
		PermissionPayrollManage,
		PermissionPayrollApprove,
		PermissionPayrollPay,
		PermissionAdvanceRequest,
		PermissionAdvanceApprove,
		PermissionDeductionManage,
		PermissionEmployeeManage,
		PermissionAttendanceManage,
	},
	RoleManager: {
		// Manager prepares payroll but cannot pay it
		PermissionPayrollView,
		PermissionPayrollManage,
		PermissionPayrollApprove,
		PermissionAdvanceRequest,
		PermissionAdvanceApprove,
		PermissionDeductionManage,
		PermissionEmployeeManage,
		PermissionAttendanceManage,
	},
	RoleEmployee: {
		PermissionAdvanceRequest,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
