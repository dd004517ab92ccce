package sitevisit

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/workflow"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/apperror"
)

func TestClaimWorkflow(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		trigger workflow.Trigger
		want    Status
		wantErr bool
	}{
		{"submit draft", StatusDraft, workflow.TriggerSubmit, StatusSubmitted, false},
		{"approve submitted", StatusSubmitted, workflow.TriggerApprove, StatusApproved, false},
		{"reject submitted", StatusSubmitted, workflow.TriggerReject, StatusRejected, false},
		{"approve draft", StatusDraft, workflow.TriggerApprove, StatusDraft, true},
		{"submit twice", StatusSubmitted, workflow.TriggerSubmit, StatusSubmitted, true},
		{"reject approved", StatusApproved, workflow.TriggerReject, StatusApproved, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClaimWorkflow.Fire(tt.from, tt.trigger)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.True(t, ClaimWorkflow.IsTerminal(StatusApproved))
	assert.True(t, ClaimWorkflow.IsTerminal(StatusRejected))
}

func TestTotal(t *testing.T) {
	items := []Expense{
		{Amount: decimal.RequireFromString("125000.50")},
		{Amount: decimal.RequireFromString("45000")},
		{Amount: decimal.RequireFromString("0.25")},
	}
	assert.Equal(t, "170000.75", Total(items).StringFixed(2))
	assert.True(t, Total(nil).IsZero())
}

func TestExpenseRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     ExpenseRequest
		wantErr bool
	}{
		{"valid", ExpenseRequest{ExpenseType: "fuel", Amount: decimal.RequireFromString("50000")}, false},
		{"cents", ExpenseRequest{ExpenseType: "toll", Amount: decimal.RequireFromString("12.50")}, false},
		{"zero amount", ExpenseRequest{ExpenseType: "fuel", Amount: decimal.Zero}, true},
		{"negative amount", ExpenseRequest{ExpenseType: "fuel", Amount: decimal.RequireFromString("-1")}, true},
		{"three decimals", ExpenseRequest{ExpenseType: "fuel", Amount: decimal.RequireFromString("1.005")}, true},
		{"missing type", ExpenseRequest{Amount: decimal.RequireFromString("10")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
