package balance

import "github.com/cmlabs-hris/hris-attendance-go/internal/pkg/apperror"

var (
	ErrMonthlyBalanceNotFound = apperror.New(apperror.KindNotFound, "monthly balance not found")
	ErrCompOffNotFound        = apperror.New(apperror.KindNotFound, "comp-off credit not found")
	ErrCompOffNotAvailable    = apperror.New(apperror.KindNotAvailable, "comp-off credit is not available")
	ErrCompOffExists          = apperror.New(apperror.KindAlreadyMarked, "comp-off already credited for this date")
	ErrNotOwner               = apperror.New(apperror.KindForbidden, "comp-off belongs to another employee")
	ErrInvalidMonth           = apperror.New(apperror.KindInvalidRange, "month must be between 1 and 12")
)
