package sitevisit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/sitevisit"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/workflow"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type SiteVisitServiceImpl struct {
	tx database.Transactor
	sitevisit.SiteVisitRepository
	sitevisit.ExpenseRepository
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	publisher      notification.Publisher
	now            func() time.Time
}

func NewSiteVisitService(
	tx database.Transactor,
	siteVisitRepository sitevisit.SiteVisitRepository,
	expenseRepository sitevisit.ExpenseRepository,
	attendanceRepository attendance.AttendanceRepository,
	employeeRepository employee.EmployeeRepository,
	publisher notification.Publisher,
) sitevisit.SiteVisitService {
	return &SiteVisitServiceImpl{
		tx:                  tx,
		SiteVisitRepository: siteVisitRepository,
		ExpenseRepository:   expenseRepository,
		attendanceRepo:      attendanceRepository,
		employeeRepo:        employeeRepository,
		publisher:           publisher,
		now:                 time.Now,
	}
}

func payload(sv sitevisit.SiteVisit) map[string]any {
	p := map[string]any{
		"site_visit_id": sv.ID,
		"attendance_id": sv.AttendanceID,
		"employee_id":   sv.EmployeeID,
		"visit_date":    sv.VisitDate.Format(calendar.DateLayout),
		"location":      sv.Location,
		"status":        string(sv.Status),
	}
	if sv.SubmittedTotal != nil {
		p["total"] = sv.SubmittedTotal.StringFixed(2)
	}
	if sv.RejectionReason != nil {
		p["reason"] = *sv.RejectionReason
	}
	return p
}

// load returns the visit and its items after the ownership check.
func (s *SiteVisitServiceImpl) load(ctx context.Context, actor user.Actor, id string, forUpdate bool) (sitevisit.SiteVisit, []sitevisit.Expense, error) {
	get := s.SiteVisitRepository.GetByID
	if forUpdate {
		get = s.SiteVisitRepository.GetByIDForUpdate
	}
	sv, err := get(ctx, id)
	if err != nil {
		return sitevisit.SiteVisit{}, nil, err
	}
	if !actor.CanActFor(sv.EmployeeID) {
		return sitevisit.SiteVisit{}, nil, sitevisit.ErrNotOwner
	}
	items, err := s.ExpenseRepository.ListBySiteVisit(ctx, sv.ID)
	if err != nil {
		return sitevisit.SiteVisit{}, nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return sv, items, nil
}

// Create implements sitevisit.SiteVisitService.
func (s *SiteVisitServiceImpl) Create(ctx context.Context, actor user.Actor, req sitevisit.CreateSiteVisitRequest) (sitevisit.SiteVisitResponse, error) {
	if err := req.Validate(); err != nil {
		return sitevisit.SiteVisitResponse{}, err
	}

	var created sitevisit.SiteVisit
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		att, err := s.attendanceRepo.GetByIDForUpdate(ctx, req.AttendanceID)
		if err != nil {
			if errors.Is(err, attendance.ErrAttendanceNotFound) {
				slog.Warn("site visit for unknown attendance", "integrity", true, "attendance_id", req.AttendanceID)
			}
			return err
		}
		if !actor.CanActFor(att.EmployeeID) {
			return sitevisit.ErrNotOwner
		}

		now := s.now()
		created, err = s.SiteVisitRepository.Create(ctx, sitevisit.SiteVisit{
			ID:           uuid.Must(uuid.NewV7()).String(),
			AttendanceID: att.ID,
			EmployeeID:   att.EmployeeID,
			VisitDate:    att.Date,
			Location:     strings.TrimSpace(req.Location),
			CompanyName:  req.CompanyName,
			NumGauges:    req.NumGauges,
			VisitSummary: req.VisitSummary,
			Conclusion:   req.Conclusion,
			Status:       sitevisit.StatusDraft,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			if errors.Is(err, sitevisit.ErrSiteVisitExists) {
				return err
			}
			return fmt.Errorf("failed to create site visit: %w", err)
		}

		if !att.IsSiteVisit {
			att.IsSiteVisit = true
			att.UpdatedAt = now
			if err := s.attendanceRepo.Update(ctx, att); err != nil {
				return fmt.Errorf("failed to flag attendance as site visit: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return sitevisit.SiteVisitResponse{}, err
	}
	return sitevisit.ToResponse(created, nil), nil
}

// Get implements sitevisit.SiteVisitService.
func (s *SiteVisitServiceImpl) Get(ctx context.Context, actor user.Actor, id string) (sitevisit.SiteVisitResponse, error) {
	sv, items, err := s.load(ctx, actor, id, false)
	if err != nil {
		return sitevisit.SiteVisitResponse{}, err
	}
	return sitevisit.ToResponse(sv, items), nil
}

// List implements sitevisit.SiteVisitService.
func (s *SiteVisitServiceImpl) List(ctx context.Context, actor user.Actor, query sitevisit.ListSiteVisitQuery) (sitevisit.ListSiteVisitResponse, error) {
	filter, err := query.ToFilter()
	if err != nil {
		return sitevisit.ListSiteVisitResponse{}, err
	}
	if !actor.Can(user.PermissionViewAll) {
		own := actor.EmployeeID
		filter.EmployeeID = &own
	}

	visits, total, err := s.SiteVisitRepository.List(ctx, filter)
	if err != nil {
		return sitevisit.ListSiteVisitResponse{}, fmt.Errorf("failed to list site visits: %w", err)
	}

	items := make([]sitevisit.SiteVisitResponse, 0, len(visits))
	for _, sv := range visits {
		expenses, err := s.ExpenseRepository.ListBySiteVisit(ctx, sv.ID)
		if err != nil {
			return sitevisit.ListSiteVisitResponse{}, fmt.Errorf("failed to list expenses: %w", err)
		}
		items = append(items, sitevisit.ToResponse(sv, expenses))
	}
	return sitevisit.ListSiteVisitResponse{
		Items: items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// editDraft runs fn on a locked draft visit owned by the actor.
func (s *SiteVisitServiceImpl) editDraft(ctx context.Context, actor user.Actor, id string, fn func(ctx context.Context, sv *sitevisit.SiteVisit) error) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		sv, _, err := s.load(ctx, actor, id, true)
		if err != nil {
			return err
		}
		if !sv.IsEditable() {
			return sitevisit.ErrNotEditable
		}
		return fn(ctx, &sv)
	})
}

// UpdateDetails implements sitevisit.SiteVisitService.
func (s *SiteVisitServiceImpl) UpdateDetails(ctx context.Context, actor user.Actor, id string, req sitevisit.UpdateSiteVisitRequest) (sitevisit.SiteVisitResponse, error) {
	if err := req.Validate(); err != nil {
		return sitevisit.SiteVisitResponse{}, err
	}

	err := s.editDraft(ctx, actor, id, func(ctx context.Context, sv *sitevisit.SiteVisit) error {
		sv.Location = strings.TrimSpace(req.Location)
		sv.CompanyName = req.CompanyName
		sv.NumGauges = req.NumGauges
		sv.VisitSummary = req.VisitSummary
		sv.Conclusion = req.Conclusion
		sv.UpdatedAt = s.now()
		if err := s.SiteVisitRepository.Update(ctx, *sv); err != nil {
			return fmt.Errorf("failed to update site visit: %w", err)
		}
		return nil
	})
	if err != nil {
		return sitevisit.SiteVisitResponse{}, err
	}
	return s.Get(ctx, actor, id)
}

// AddExpense implements sitevisit.SiteVisitService.
func (s *SiteVisitServiceImpl) AddExpense(ctx context.Context, actor user.Actor, id string, req sitevisit.ExpenseRequest) (sitevisit.ExpenseResponse, error) {
	if err := req.Validate(); err != nil {
		return sitevisit.ExpenseResponse{}, err
	}

	var created sitevisit.Expense
	err := s.editDraft(ctx, actor, id, func(ctx context.Context, sv *sitevisit.SiteVisit) error {
		now := s.now()
		var err error
		created, err = s.ExpenseRepository.Create(ctx, sitevisit.Expense{
			ID:          uuid.Must(uuid.NewV7()).String(),
			SiteVisitID: sv.ID,
			ExpenseType: strings.TrimSpace(req.ExpenseType),
			Amount:      req.Amount,
			Description: req.Description,
			Notes:       req.Notes,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("failed to create expense: %w", err)
		}
		return nil
	})
	if err != nil {
		return sitevisit.ExpenseResponse{}, err
	}
	return sitevisit.ToExpenseResponse(created), nil
}

// expenseOf loads an item and checks it belongs to the visit.
func (s *SiteVisitServiceImpl) expenseOf(ctx context.Context, siteVisitID, expenseID string) (sitevisit.Expense, error) {
	e, err := s.ExpenseRepository.GetByID(ctx, expenseID)
	if err != nil {
		return sitevisit.Expense{}, err
	}
	if e.SiteVisitID != siteVisitID {
		return sitevisit.Expense{}, sitevisit.ErrExpenseNotFound
	}
	return e, nil
}

// UpdateExpense implements sitevisit.SiteVisitService.
func (s *SiteVisitServiceImpl) UpdateExpense(ctx context.Context, actor user.Actor, id, expenseID string, req sitevisit.ExpenseRequest) (sitevisit.ExpenseResponse, error) {
	if err := req.Validate(); err != nil {
		return sitevisit.ExpenseResponse{}, err
	}

	var updated sitevisit.Expense
	err := s.editDraft(ctx, actor, id, func(ctx context.Context, sv *sitevisit.SiteVisit) error {
		e, err := s.expenseOf(ctx, sv.ID, expenseID)
		if err != nil {
			return err
		}
		e.ExpenseType = strings.TrimSpace(req.ExpenseType)
		e.Amount = req.Amount
		e.Description = req.Description
		e.Notes = req.Notes
		e.UpdatedAt = s.now()
		if err := s.ExpenseRepository.Update(ctx, e); err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		updated = e
		return nil
	})
	if err != nil {
		return sitevisit.ExpenseResponse{}, err
	}
	return sitevisit.ToExpenseResponse(updated), nil
}

// DeleteExpense implements sitevisit.SiteVisitService.
func (s *SiteVisitServiceImpl) DeleteExpense(ctx context.Context, actor user.Actor, id, expenseID string) error {
	return s.editDraft(ctx, actor, id, func(ctx context.Context, sv *sitevisit.SiteVisit) error {
		if _, err := s.expenseOf(ctx, sv.ID, expenseID); err != nil {
			return err
		}
		if err := s.ExpenseRepository.Delete(ctx, expenseID); err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}
		return nil
	})
}

// Submit implements sitevisit.SiteVisitService.
func (s *SiteVisitServiceImpl) Submit(ctx context.Context, actor user.Actor, id string) (sitevisit.SiteVisitResponse, error) {
	var (
		submitted sitevisit.SiteVisit
		items     []sitevisit.Expense
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		sv, expenses, err := s.load(ctx, actor, id, true)
		if err != nil {
			return err
		}
		next, err := sitevisit.ClaimWorkflow.Fire(sv.Status, workflow.TriggerSubmit)
		if err != nil {
			return err
		}
		if len(expenses) == 0 {
			return sitevisit.ErrEmptyClaim
		}

		now := s.now()
		total := sitevisit.Total(expenses)
		sv.Status = next
		sv.SubmittedAt = &now
		sv.SubmittedTotal = &total
		sv.UpdatedAt = now
		if err := s.SiteVisitRepository.Update(ctx, sv); err != nil {
			return fmt.Errorf("failed to submit site visit: %w", err)
		}
		submitted, items = sv, expenses
		return nil
	})
	if err != nil {
		return sitevisit.SiteVisitResponse{}, err
	}

	admins, err := s.employeeRepo.ListByRole(ctx, user.RoleAdmin)
	if err != nil {
		slog.Error("failed to list admins for notification", "site_visit_id", submitted.ID, "error", err)
	}
	msgs := make([]notification.Message, 0, len(admins))
	for _, a := range admins {
		msgs = append(msgs, notification.Message{
			EmployeeID: a.ID,
			Type:       notification.TypeSiteVisitSubmitted,
			Payload:    payload(submitted),
		})
	}
	s.publisher.Publish(ctx, msgs...)

	return sitevisit.ToResponse(submitted, items), nil
}

// review resolves a submitted claim and mirrors the outcome onto the attendance.
func (s *SiteVisitServiceImpl) review(ctx context.Context, actor user.Actor, id string, trigger workflow.Trigger, reason *string) (sitevisit.SiteVisit, []sitevisit.Expense, error) {
	var (
		reviewed sitevisit.SiteVisit
		items    []sitevisit.Expense
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		sv, err := s.SiteVisitRepository.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		next, err := sitevisit.ClaimWorkflow.Fire(sv.Status, trigger)
		if err != nil {
			return err
		}
		att, err := s.attendanceRepo.GetByIDForUpdate(ctx, sv.AttendanceID)
		if err != nil {
			return fmt.Errorf("failed to load attendance of site visit: %w", err)
		}
		expenses, err := s.ExpenseRepository.ListBySiteVisit(ctx, sv.ID)
		if err != nil {
			return fmt.Errorf("failed to list expenses: %w", err)
		}

		now := s.now()
		sv.Status = next
		sv.ReviewedBy = &actor.EmployeeID
		sv.ReviewedAt = &now
		sv.RejectionReason = reason
		sv.UpdatedAt = now

		att.UpdatedAt = now
		if next == sitevisit.StatusApproved {
			total := sitevisit.Total(expenses)
			att.SiteVisitCost = &total
			att.CostApproved = true
			att.CostApprovedBy = &actor.EmployeeID
			att.CostApprovedAt = &now
		} else {
			att.CostApproved = false
			att.CostApprovedBy = nil
			att.CostApprovedAt = nil
		}

		if err := s.SiteVisitRepository.Update(ctx, sv); err != nil {
			return fmt.Errorf("failed to update site visit: %w", err)
		}
		if err := s.attendanceRepo.Update(ctx, att); err != nil {
			return fmt.Errorf("failed to update attendance cost: %w", err)
		}
		reviewed, items = sv, expenses
		return nil
	})
	return reviewed, items, err
}

// Approve implements sitevisit.SiteVisitService.
func (s *SiteVisitServiceImpl) Approve(ctx context.Context, actor user.Actor, id string) (sitevisit.SiteVisitResponse, error) {
	if !actor.Can(user.PermissionSiteVisitApprove) {
		return sitevisit.SiteVisitResponse{}, user.ErrAdminPrivilegeRequired
	}

	sv, items, err := s.review(ctx, actor, id, workflow.TriggerApprove, nil)
	if err != nil {
		return sitevisit.SiteVisitResponse{}, err
	}

	p := payload(sv)
	p["approved_total"] = sitevisit.Total(items).StringFixed(2)
	s.publisher.Publish(ctx, notification.Message{
		EmployeeID: sv.EmployeeID,
		Type:       notification.TypeSiteVisitApproved,
		Payload:    p,
	})
	return sitevisit.ToResponse(sv, items), nil
}

// Reject implements sitevisit.SiteVisitService.
func (s *SiteVisitServiceImpl) Reject(ctx context.Context, actor user.Actor, id string, req sitevisit.RejectSiteVisitRequest) (sitevisit.SiteVisitResponse, error) {
	if !actor.Can(user.PermissionSiteVisitApprove) {
		return sitevisit.SiteVisitResponse{}, user.ErrAdminPrivilegeRequired
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return sitevisit.SiteVisitResponse{}, sitevisit.ErrMissingReason
	}

	sv, items, err := s.review(ctx, actor, id, workflow.TriggerReject, &reason)
	if err != nil {
		return sitevisit.SiteVisitResponse{}, err
	}

	s.publisher.Publish(ctx, notification.Message{
		EmployeeID: sv.EmployeeID,
		Type:       notification.TypeSiteVisitRejected,
		Payload:    payload(sv),
	})
	return sitevisit.ToResponse(sv, items), nil
}
