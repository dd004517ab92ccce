package employee

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

// Employee is owned by the HR collaborator; this service only reads it.
type Employee struct {
	ID         string
	FullName   string
	Email      string
	Role       user.Role
	ChatUserID *string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (e Employee) IsAdmin() bool {
	return e.Role == user.RoleAdmin
}
