package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
)

type CalendarHandler interface {
	ListHolidays(w http.ResponseWriter, r *http.Request)
	CreateHoliday(w http.ResponseWriter, r *http.Request)
	DeleteHoliday(w http.ResponseWriter, r *http.Request)
}

type calendarHandlerImpl struct {
	calendarService calendar.CalendarService
}

func NewCalendarHandler(calendarService calendar.CalendarService) CalendarHandler {
	return &calendarHandlerImpl{calendarService: calendarService}
}

// ListHolidays implements CalendarHandler.
func (h *calendarHandlerImpl) ListHolidays(w http.ResponseWriter, r *http.Request) {
	query := calendar.ListHolidayQuery{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}

	holidays, err := h.calendarService.ListHolidays(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]calendar.HolidayResponse, 0, len(holidays))
	for _, hd := range holidays {
		result = append(result, calendar.ToResponse(hd))
	}
	response.Success(w, result)
}

// CreateHoliday implements CalendarHandler.
func (h *calendarHandlerImpl) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req calendar.CreateHolidayRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	holiday, err := h.calendarService.CreateHoliday(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Holiday created", calendar.ToResponse(holiday))
}

// DeleteHoliday implements CalendarHandler.
func (h *calendarHandlerImpl) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.calendarService.DeleteHoliday(r.Context(), actor, chi.URLParam(r, "date")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Holiday deleted", nil)
}
