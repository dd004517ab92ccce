package leave

import "github.com/cmlabs-hris/hris-attendance-go/internal/pkg/apperror"

var (
	ErrLeaveRequestNotFound = apperror.New(apperror.KindNotFound, "leave request not found")
	ErrLeaveQuotaNotFound   = apperror.New(apperror.KindNotFound, "leave quota not found")
	ErrQuotaExceeded        = apperror.New(apperror.KindQuotaExceeded, "insufficient leave quota")
	ErrQuotaBelowUsage      = apperror.New(apperror.KindQuotaExceeded, "annual quota cannot be lower than taken plus pending leave")
	ErrInvalidDateRange     = apperror.New(apperror.KindInvalidRange, "end date must not be before start date")
	ErrOverlappingLeave     = apperror.New(apperror.KindInvalidRange, "leave request overlaps an existing request")
	ErrNotOwner             = apperror.New(apperror.KindForbidden, "only the requesting employee can cancel this request")
)
