package user

import "github.com/cmlabs-hris/hris-attendance-go/internal/pkg/apperror"

var (
	ErrAdminPrivilegeRequired  = apperror.New(apperror.KindForbidden, "admin privilege required")
	ErrInsufficientPermissions = apperror.New(apperror.KindForbidden, "insufficient permissions")
	ErrNotOwner                = apperror.New(apperror.KindForbidden, "record belongs to another employee")
)
