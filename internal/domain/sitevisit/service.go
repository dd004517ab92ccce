package sitevisit

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

type SiteVisitService interface {
	Create(ctx context.Context, actor user.Actor, req CreateSiteVisitRequest) (SiteVisitResponse, error)
	Get(ctx context.Context, actor user.Actor, id string) (SiteVisitResponse, error)
	List(ctx context.Context, actor user.Actor, query ListSiteVisitQuery) (ListSiteVisitResponse, error)
	UpdateDetails(ctx context.Context, actor user.Actor, id string, req UpdateSiteVisitRequest) (SiteVisitResponse, error)

	// Line items, draft only
	AddExpense(ctx context.Context, actor user.Actor, id string, req ExpenseRequest) (ExpenseResponse, error)
	UpdateExpense(ctx context.Context, actor user.Actor, id, expenseID string, req ExpenseRequest) (ExpenseResponse, error)
	DeleteExpense(ctx context.Context, actor user.Actor, id, expenseID string) error

	// Workflow
	Submit(ctx context.Context, actor user.Actor, id string) (SiteVisitResponse, error)
	Approve(ctx context.Context, actor user.Actor, id string) (SiteVisitResponse, error)
	Reject(ctx context.Context, actor user.Actor, id string, req RejectSiteVisitRequest) (SiteVisitResponse, error)
}
