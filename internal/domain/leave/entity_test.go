package leave

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestRequestWorkflow(t *testing.T) {
	to, err := RequestWorkflow.Fire(LeaveRequestStatusPending, workflow.TriggerApprove)
	require.NoError(t, err)
	assert.Equal(t, LeaveRequestStatusApproved, to)

	for _, terminal := range []LeaveRequestStatus{
		LeaveRequestStatusApproved, LeaveRequestStatusRejected, LeaveRequestStatusCancelled,
	} {
		assert.True(t, RequestWorkflow.IsTerminal(terminal), terminal)
		_, err := RequestWorkflow.Fire(terminal, workflow.TriggerReject)
		assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
	}
}

func TestLeaveQuota_CanReserve(t *testing.T) {
	q := LeaveQuota{AnnualQuota: 12, LeavesTaken: 5, LeavesPending: 4}
	assert.Equal(t, 3, q.Available())
	assert.True(t, q.CanReserve(3))
	assert.False(t, q.CanReserve(4))
	assert.False(t, q.CanReserve(0))
}

func TestLeaveRequest_Months(t *testing.T) {
	r := LeaveRequest{StartDate: date("2026-01-30"), EndDate: date("2026-02-02")}
	assert.Equal(t, [][2]int{{2026, 1}, {2026, 2}}, r.Months())
	assert.Equal(t, 4, RequestedDays(r.StartDate, r.EndDate))
	assert.Equal(t, 2026, r.QuotaYear())
}

func TestCreateLeaveRequestRequest_Validate(t *testing.T) {
	req := CreateLeaveRequestRequest{StartDate: "2026-02-10", EndDate: "2026-02-12", LeaveType: "annual", Reason: "family"}
	assert.NoError(t, req.Validate())

	bad := CreateLeaveRequestRequest{StartDate: "10-02-2026", EndDate: "", LeaveType: " ", Reason: ""}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start_date")
	assert.Contains(t, err.Error(), "end_date")
	assert.Contains(t, err.Error(), "leave_type")
	assert.Contains(t, err.Error(), "reason")
}
