package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/timepay/timepay-backend/internal/domain/payroll"
	"github.com/timepay/timepay-backend/internal/handler/http/response"
)

type PayrollHandler interface {
	Generate(w http.ResponseWriter, r *http.Request)
	BulkGenerate(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	GetMyPayslips(w http.ResponseWriter, r *http.Request)
	GetEmployeePayrolls(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Pay(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
	Download(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

func payrollFilter(r *http.Request) payroll.PayrollFilter {
	return payroll.PayrollFilter{
		EmployeeID: queryString(r, "employee_id"),
		Month:      queryIntPtr(r, "month"),
		Year:       queryIntPtr(r, "year"),
		Status:     queryString(r, "status"),
		BranchID:   queryString(r, "branch_id"),
		Department: queryString(r, "department"),
		Page:       queryInt(r, "page", 1),
		Limit:      queryInt(r, "limit", 20),
	}
}

// Generate implements PayrollHandler.
func (h *payrollHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	var req payroll.GenerateRequest
	if !decodeJSON(w, r, &req, "GeneratePayroll") {
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.Generate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll generated successfully", result)
}

// BulkGenerate implements PayrollHandler. Per-employee failures are reported
// in the result rather than failing the request.
func (h *payrollHandlerImpl) BulkGenerate(w http.ResponseWriter, r *http.Request) {
	var req payroll.BulkGenerateRequest
	if !decodeJSON(w, r, &req, "BulkGeneratePayroll") {
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.BulkGenerate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Bulk payroll generation completed", result)
}

// List implements PayrollHandler.
func (h *payrollHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.List(r.Context(), payrollFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements PayrollHandler.
func (h *payrollHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMyPayslips implements PayrollHandler.
func (h *payrollHandlerImpl) GetMyPayslips(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.GetMyPayslips(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetEmployeePayrolls implements PayrollHandler.
func (h *payrollHandlerImpl) GetEmployeePayrolls(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.GetEmployeePayrolls(r.Context(), chi.URLParam(r, "employeeId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements PayrollHandler.
func (h *payrollHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req payroll.UpdateRequest
	if !decodeJSON(w, r, &req, "UpdatePayroll") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll updated successfully", result)
}

// Approve implements PayrollHandler.
func (h *payrollHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	var req payroll.ApproveRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req, "ApprovePayroll") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.payrollService.Approve(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll approved successfully", result)
}

// Pay implements PayrollHandler.
func (h *payrollHandlerImpl) Pay(w http.ResponseWriter, r *http.Request) {
	var req payroll.PayRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req, "PayPayroll") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.payrollService.Pay(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll marked as paid", result)
}

// Cancel implements PayrollHandler.
func (h *payrollHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll cancelled successfully", result)
}

// Stats implements PayrollHandler.
func (h *payrollHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.Stats(r.Context(), payrollFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Download implements PayrollHandler. It streams the payslip PDF.
func (h *payrollHandlerImpl) Download(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.payrollService.Payslip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, filename, "application/pdf", data)
}
