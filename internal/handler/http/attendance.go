package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/timepay/timepay-backend/internal/domain/attendance"
	"github.com/timepay/timepay-backend/internal/domain/employee"
	"github.com/timepay/timepay-backend/internal/handler/http/response"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Mark(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Report(w http.ResponseWriter, r *http.Request)
	BranchStats(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// callerEmployee resolves the caller's employee ID, answering 404 when the
// account has no employee profile.
func callerEmployee(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return "", false
	}
	if claims.EmployeeID == "" {
		response.HandleError(w, employee.ErrNoEmployeeProfile)
		return "", false
	}
	return claims.EmployeeID, true
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := callerEmployee(w, r)
	if !ok {
		return
	}

	var req attendance.ClockInRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req, "ClockIn") {
		return
	}
	req.EmployeeID = employeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.ClockIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clock in successful", result)
}

// ClockOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := callerEmployee(w, r)
	if !ok {
		return
	}

	var req attendance.ClockOutRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req, "ClockOut") {
		return
	}
	req.EmployeeID = employeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.ClockOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clock out successful", result)
}

// Today implements AttendanceHandler. Data is null before the first clock in.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := callerEmployee(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.GetToday(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := callerEmployee(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.GetMyAttendance(r.Context(), employeeID, queryInt(r, "month", 0), queryInt(r, "year", 0))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := attendance.AttendanceFilter{
		EmployeeID: queryString(r, "employee_id"),
		BranchID:   queryString(r, "branch_id"),
		Department: queryString(r, "department"),
		Status:     queryString(r, "status"),
		StartDate:  queryString(r, "start_date"),
		EndDate:    queryString(r, "end_date"),
		Page:       queryInt(r, "page", 1),
		Limit:      queryInt(r, "limit", 20),
	}

	result, err := h.attendanceService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Mark implements AttendanceHandler.
func (h *attendanceHandlerImpl) Mark(w http.ResponseWriter, r *http.Request) {
	var req attendance.MarkAttendanceRequest
	if !decodeJSON(w, r, &req, "Mark") {
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.Mark(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance marked successfully", result)
}

// Update implements AttendanceHandler.
func (h *attendanceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpdateAttendanceRequest
	if !decodeJSON(w, r, &req, "UpdateAttendance") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.attendanceService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance updated successfully", result)
}

// Report implements AttendanceHandler.
func (h *attendanceHandlerImpl) Report(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.Report(r.Context(), chi.URLParam(r, "employeeId"), queryInt(r, "month", 0), queryInt(r, "year", 0))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// BranchStats implements AttendanceHandler.
func (h *attendanceHandlerImpl) BranchStats(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.BranchStats(r.Context(), chi.URLParam(r, "branchId"), r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
