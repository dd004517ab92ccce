package attendance

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

type AttendanceService interface {
	// MarkAttendance upserts the record for (employee, date)
	MarkAttendance(ctx context.Context, actor user.Actor, req MarkAttendanceRequest) (AttendanceResponse, error)

	// CheckIn marks today with the current time as entry
	CheckIn(ctx context.Context, actor user.Actor, req CheckInRequest) (AttendanceResponse, error)

	// CheckOut stamps the exit time on today's record
	CheckOut(ctx context.Context, actor user.Actor) (AttendanceResponse, error)

	// DeleteAttendance is an admin override; cascades the site visit
	DeleteAttendance(ctx context.Context, actor user.Actor, id string) error

	GetAttendance(ctx context.Context, actor user.Actor, id string) (AttendanceResponse, error)
	ListAttendance(ctx context.Context, actor user.Actor, query ListAttendanceQuery) (ListAttendanceResponse, error)
}
