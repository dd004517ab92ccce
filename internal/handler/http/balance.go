package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/balance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
)

type BalanceHandler interface {
	GetMonthly(w http.ResponseWriter, r *http.Request)
	Recompute(w http.ResponseWriter, r *http.Request)
	ListCompOffs(w http.ResponseWriter, r *http.Request)
	UseCompOff(w http.ResponseWriter, r *http.Request)
}

type balanceHandlerImpl struct {
	balanceService balance.BalanceService
}

func NewBalanceHandler(balanceService balance.BalanceService) BalanceHandler {
	return &balanceHandlerImpl{balanceService: balanceService}
}

type recomputeResponse struct {
	Recomputed int                             `json:"recomputed"`
	Balance    *balance.MonthlyBalanceResponse `json:"balance,omitempty"`
}

// yearMonth reads {year}/{month} from the path or writes 422.
func yearMonth(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	year, yErr := strconv.Atoi(chi.URLParam(r, "year"))
	month, mErr := strconv.Atoi(chi.URLParam(r, "month"))
	if yErr != nil || mErr != nil || year < 1 {
		response.ValidationError(w, map[string]string{"period": "year and month must be numeric"})
		return 0, 0, false
	}
	return year, month, true
}

// GetMonthly implements BalanceHandler.
func (h *balanceHandlerImpl) GetMonthly(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	year, month, ok := yearMonth(w, r)
	if !ok {
		return
	}

	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}

	result, err := h.balanceService.GetMonthlyBalance(r.Context(), actor, employeeID, year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Recompute rebuilds one employee's month when employee_id is given, or every
// active employee's month otherwise.
func (h *balanceHandlerImpl) Recompute(w http.ResponseWriter, r *http.Request) {
	year, month, ok := yearMonth(w, r)
	if !ok {
		return
	}

	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		b, err := h.balanceService.RecomputeMonthlyBalance(r.Context(), employeeID, year, month)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		resp := balance.ToBalanceResponse(b)
		response.SuccessWithMessage(w, "Balance recomputed", recomputeResponse{Recomputed: 1, Balance: &resp})
		return
	}

	n, err := h.balanceService.RecomputeAll(r.Context(), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Balances recomputed", recomputeResponse{Recomputed: n})
}

// ListCompOffs implements BalanceHandler.
func (h *balanceHandlerImpl) ListCompOffs(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	query := balance.ListCompOffQuery{
		EmployeeID:    r.URL.Query().Get("employee_id"),
		AvailableOnly: getBoolQueryParam(r, "available", false),
	}

	result, err := h.balanceService.ListCompOffs(r.Context(), actor, query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UseCompOff implements BalanceHandler.
func (h *balanceHandlerImpl) UseCompOff(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req balance.UseCompOffRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	result, err := h.balanceService.UseCompOff(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Comp-off used", result)
}
