package employee

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByChatUserID(ctx context.Context, chatUserID string) (Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)
	ListByRole(ctx context.Context, role user.Role) ([]Employee, error)
}
