package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

var kindStatus = map[apperror.Kind]int{
	apperror.KindNotFound:          http.StatusNotFound,
	apperror.KindForbidden:         http.StatusForbidden,
	apperror.KindInvalidTransition: http.StatusConflict,
	apperror.KindAlreadyMarked:     http.StatusConflict,
	apperror.KindNotEditable:       http.StatusConflict,
	apperror.KindQuotaExceeded:     http.StatusUnprocessableEntity,
	apperror.KindNotAvailable:      http.StatusConflict,
	apperror.KindInvalidRange:      http.StatusUnprocessableEntity,
	apperror.KindEmptyClaim:        http.StatusUnprocessableEntity,
	apperror.KindMissingReason:     http.StatusUnprocessableEntity,
}

// StatusOf returns the HTTP status for a domain error kind.
func StatusOf(kind apperror.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	if errors.Is(err, jwt.ErrInvalidClaims) {
		Unauthorized(w, "Invalid token")
		return
	}

	kind, ok := apperror.KindOf(err)
	if !ok {
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
		return
	}

	// A dangling employee or attendance reference points at bad data, not a bad request.
	if errors.Is(err, employee.ErrEmployeeNotFound) || errors.Is(err, attendance.ErrAttendanceNotFound) {
		slog.Warn("referenced record not found", "error", err, "integrity", true)
	}

	Error(w, StatusOf(kind), string(kind), apperror.MessageOf(err))
}
