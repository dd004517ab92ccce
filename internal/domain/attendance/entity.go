package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusWFH     Status = "wfh"
	StatusHalfDay Status = "half_day"
	StatusOnLeave Status = "on_leave"
	StatusHoliday Status = "holiday"
	StatusWeekend Status = "weekend"
)

func AllStatuses() []string {
	return []string{
		string(StatusPresent), string(StatusAbsent), string(StatusWFH), string(StatusHalfDay),
		string(StatusOnLeave), string(StatusHoliday), string(StatusWeekend),
	}
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusWFH, StatusHalfDay, StatusOnLeave, StatusHoliday, StatusWeekend:
		return true
	}
	return false
}

// IsWorked reports whether the status means work was actually performed.
func (s Status) IsWorked() bool {
	return s == StatusPresent || s == StatusWFH || s == StatusHalfDay
}

// Attendance is one employee's record for one calendar day.
type Attendance struct {
	ID             string
	EmployeeID     string
	Date           time.Time
	Status         Status
	EntryTime      *time.Time
	ExitTime       *time.Time
	Notes          *string
	IsSiteVisit    bool
	SiteVisitCost  *decimal.Decimal
	CostApproved   bool
	CostApprovedBy *string
	CostApprovedAt *time.Time
	CompOffEarned  bool
	AdminEdited    bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// WorkedDuration is exit - entry when both are present.
func (a Attendance) WorkedDuration() (time.Duration, bool) {
	if a.EntryTime == nil || a.ExitTime == nil {
		return 0, false
	}
	return a.ExitTime.Sub(*a.EntryTime), true
}

// IsLate compares the entry clock time in loc with cutoff (offset from midnight).
func (a Attendance) IsLate(cutoff time.Duration, loc *time.Location) bool {
	if a.EntryTime == nil {
		return false
	}
	entry := a.EntryTime.In(loc)
	sinceMidnight := time.Duration(entry.Hour())*time.Hour + time.Duration(entry.Minute())*time.Minute
	return sinceMidnight > cutoff
}
