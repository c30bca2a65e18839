package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/timepay/timepay-backend/internal/domain/branch"
	"github.com/timepay/timepay-backend/internal/domain/employee"
	"github.com/timepay/timepay-backend/internal/handler/http/response"
)

type BranchHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Employees(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
}

type branchHandlerImpl struct {
	branchService   branch.BranchService
	employeeService employee.EmployeeService
}

func NewBranchHandler(branchService branch.BranchService, employeeService employee.EmployeeService) BranchHandler {
	return &branchHandlerImpl{
		branchService:   branchService,
		employeeService: employeeService,
	}
}

// Create implements BranchHandler.
func (h *branchHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req branch.CreateBranchRequest
	if !decodeJSON(w, r, &req, "CreateBranch") {
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.branchService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Branch created successfully", result)
}

// List implements BranchHandler.
func (h *branchHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := branch.BranchFilter{
		ActiveOnly: r.URL.Query().Get("active") == "true",
		Search:     queryString(r, "search"),
	}

	result, err := h.branchService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements BranchHandler.
func (h *branchHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.branchService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements BranchHandler.
func (h *branchHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req branch.UpdateBranchRequest
	if !decodeJSON(w, r, &req, "UpdateBranch") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.branchService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Branch updated successfully", result)
}

// Delete implements BranchHandler.
func (h *branchHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.branchService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Branch deleted successfully", nil)
}

// Employees implements BranchHandler.
func (h *branchHandlerImpl) Employees(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.branchService.Get(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	filter := employee.EmployeeFilter{
		BranchID: &id,
		Status:   queryString(r, "status"),
		Page:     queryInt(r, "page", 1),
		Limit:    queryInt(r, "limit", 20),
	}
	result, err := h.employeeService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Stats implements BranchHandler.
func (h *branchHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	result, err := h.branchService.Stats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
