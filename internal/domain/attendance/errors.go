package attendance

import "github.com/cmlabs-hris/hris-attendance-go/internal/pkg/apperror"

// Attendance domain errors
var (
	ErrAttendanceNotFound = apperror.New(apperror.KindNotFound, "attendance record not found")
	ErrAlreadyMarked      = apperror.New(apperror.KindAlreadyMarked, "attendance already marked for this date")
	ErrAlreadyCheckedOut  = apperror.New(apperror.KindAlreadyMarked, "you have already checked out")
	ErrNotCheckedIn       = apperror.New(apperror.KindNotFound, "you have not checked in yet")
	ErrNotToday           = apperror.New(apperror.KindForbidden, "only today's attendance can be marked")
	ErrNotOwner           = apperror.New(apperror.KindForbidden, "unauthorized to access this attendance record")
	ErrExitBeforeEntry    = apperror.New(apperror.KindInvalidRange, "exit time must not be before entry time")
)
