package user

import "context"

type Role string

const (
	RoleEmployee Role = "employee" // Regular employee, acts on own records
	RoleAdmin    Role = "admin"    // Can act on any employee and resolve approvals
)

func (r Role) IsValid() bool {
	return r == RoleEmployee || r == RoleAdmin
}

// Actor is the resolved identity behind a mutating call. It is produced by the
// auth collaborator (JWT claims or the chat bot) and trusted as-is.
type Actor struct {
	EmployeeID string
	Role       Role
}

// IsAdmin checks if the actor has the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanActFor reports whether the actor may operate on records owned by employeeID.
func (a Actor) CanActFor(employeeID string) bool {
	return a.IsAdmin() || (a.EmployeeID != "" && a.EmployeeID == employeeID)
}

// Can checks the role permission table
func (a Actor) Can(p Permission) bool {
	return HasPermission(a.Role, p)
}

type actorCtxKey struct{}

// WithActor stores the actor on the context.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey{}, a)
}

// ActorFromContext returns the actor stored by WithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorCtxKey{}).(Actor)
	return a, ok
}
