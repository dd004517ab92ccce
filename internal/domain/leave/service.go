package leave

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

type LeaveService interface {
	CreateRequest(ctx context.Context, actor user.Actor, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)
	Approve(ctx context.Context, actor user.Actor, requestID string) (LeaveRequestResponse, error)
	Reject(ctx context.Context, actor user.Actor, requestID string, req RejectLeaveRequestRequest) (LeaveRequestResponse, error)
	Cancel(ctx context.Context, actor user.Actor, requestID string) (LeaveRequestResponse, error)

	GetRequest(ctx context.Context, actor user.Actor, requestID string) (LeaveRequestResponse, error)
	ListRequests(ctx context.Context, actor user.Actor, query ListLeaveRequestQuery) (ListLeaveRequestResponse, error)

	GetQuota(ctx context.Context, actor user.Actor, employeeID string, year int) (LeaveQuotaResponse, error)
	SetQuota(ctx context.Context, actor user.Actor, req SetQuotaRequest) (LeaveQuotaResponse, error)
}
