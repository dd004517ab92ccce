package calendar

import "github.com/cmlabs-hris/hris-attendance-go/internal/pkg/apperror"

var (
	ErrHolidayNotFound = apperror.New(apperror.KindNotFound, "holiday not found")
	ErrHolidayExists   = apperror.New(apperror.KindAlreadyMarked, "a holiday is already declared for this date")
)
