package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/sitevisit"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
)

type SiteVisitHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)

	AddExpense(w http.ResponseWriter, r *http.Request)
	UpdateExpense(w http.ResponseWriter, r *http.Request)
	DeleteExpense(w http.ResponseWriter, r *http.Request)

	Submit(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type siteVisitHandlerImpl struct {
	siteVisitService sitevisit.SiteVisitService
}

func NewSiteVisitHandler(siteVisitService sitevisit.SiteVisitService) SiteVisitHandler {
	return &siteVisitHandlerImpl{siteVisitService: siteVisitService}
}

// Create implements SiteVisitHandler.
func (h *siteVisitHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req sitevisit.CreateSiteVisitRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	result, err := h.siteVisitService.Create(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Site visit created", result)
}

// List implements SiteVisitHandler.
func (h *siteVisitHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	query := sitevisit.ListSiteVisitQuery{
		EmployeeID: q.Get("employee_id"),
		Status:     q.Get("status"),
		From:       q.Get("from"),
		To:         q.Get("to"),
		Page:       getIntQueryParam(r, "page", 1),
		Limit:      getIntQueryParam(r, "limit", 20),
	}

	result, err := h.siteVisitService.List(r.Context(), actor, query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Paginated(w, result.Items, result.Page, result.Limit, result.Total)
}

// Get implements SiteVisitHandler.
func (h *siteVisitHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	result, err := h.siteVisitService.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements SiteVisitHandler.
func (h *siteVisitHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req sitevisit.UpdateSiteVisitRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	result, err := h.siteVisitService.UpdateDetails(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Site visit updated", result)
}

// AddExpense implements SiteVisitHandler.
func (h *siteVisitHandlerImpl) AddExpense(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req sitevisit.ExpenseRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	result, err := h.siteVisitService.AddExpense(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Expense added", result)
}

// UpdateExpense implements SiteVisitHandler.
func (h *siteVisitHandlerImpl) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req sitevisit.ExpenseRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	result, err := h.siteVisitService.UpdateExpense(r.Context(), actor, chi.URLParam(r, "id"), chi.URLParam(r, "expenseID"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Expense updated", result)
}

// DeleteExpense implements SiteVisitHandler.
func (h *siteVisitHandlerImpl) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.siteVisitService.DeleteExpense(r.Context(), actor, chi.URLParam(r, "id"), chi.URLParam(r, "expenseID")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Expense deleted", nil)
}

// Submit implements SiteVisitHandler.
func (h *siteVisitHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	result, err := h.siteVisitService.Submit(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Site visit submitted", result)
}

// Approve implements SiteVisitHandler.
func (h *siteVisitHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	result, err := h.siteVisitService.Approve(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Site visit approved", result)
}

// Reject implements SiteVisitHandler.
func (h *siteVisitHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req sitevisit.RejectSiteVisitRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	result, err := h.siteVisitService.Reject(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Site visit rejected", result)
}
