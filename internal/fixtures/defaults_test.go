package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/memory"
)

func TestGetDevEmployees(t *testing.T) {
	emps := GetDevEmployees(time.Now())
	require.Len(t, emps, 3)

	admins := 0
	for _, e := range emps {
		assert.True(t, validator.IsValidUUID(e.ID), e.ID)
		if e.IsAdmin() {
			admins++
		}
	}
	assert.Equal(t, 1, admins)
}

func TestSeedDevelopment_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	holidays := memory.NewHolidayRepository(store)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, SeedDevelopment(ctx, store, holidays, now))
	require.NoError(t, SeedDevelopment(ctx, store, holidays, now))

	list, err := holidays.ListBetween(ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, list, 5)

	emp, err := memory.NewEmployeeRepository(store).GetByChatUserID(ctx, "dev-budi")
	require.NoError(t, err)
	assert.Equal(t, DevEmployeeID, emp.ID)
}
