package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/timepay/timepay-backend/internal/domain/leave"
	"github.com/timepay/timepay-backend/internal/handler/http/response"
	"github.com/timepay/timepay-backend/internal/service/file"
)

type LeaveHandler interface {
	Apply(w http.ResponseWriter, r *http.Request)
	GetMyLeaves(w http.ResponseWriter, r *http.Request)
	GetMyBalance(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)

	List(w http.ResponseWriter, r *http.Request)
	ListPending(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	GetEmployeeLeaves(w http.ResponseWriter, r *http.Request)
	GetEmployeeBalance(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)

	ListConfigurations(w http.ResponseWriter, r *http.Request)
	CreateConfiguration(w http.ResponseWriter, r *http.Request)
	UpdateConfiguration(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
	fileService  file.FileService
}

func NewLeaveHandler(leaveService leave.LeaveService, fileService file.FileService) LeaveHandler {
	return &LeaveHandlerImpl{
		leaveService: leaveService,
		fileService:  fileService,
	}
}

func leaveFilter(r *http.Request) leave.LeaveFilter {
	return leave.LeaveFilter{
		EmployeeID: queryString(r, "employee_id"),
		Status:     queryString(r, "status"),
		Type:       queryString(r, "leave_type"),
		BranchID:   queryString(r, "branch_id"),
		Department: queryString(r, "department"),
		From:       queryString(r, "from"),
		To:         queryString(r, "to"),
		Year:       queryIntPtr(r, "year"),
		Page:       queryInt(r, "page", 1),
		Limit:      queryInt(r, "limit", 20),
	}
}

// Apply implements LeaveHandler. It accepts plain JSON, or multipart form data
// with the JSON in field 'data' and files in 'attachments'.
func (l *LeaveHandlerImpl) Apply(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := callerEmployee(w, r)
	if !ok {
		return
	}

	var req leave.ApplyLeaveRequest
	multipart := strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
	if multipart {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			slog.Error("Failed to parse multipart form", "error", err)
			response.BadRequest(w, "Failed to parse form data", nil)
			return
		}
		dataJSON := r.FormValue("data")
		if dataJSON == "" {
			response.BadRequest(w, "Field 'data' is required", nil)
			return
		}
		if err := json.Unmarshal([]byte(dataJSON), &req); err != nil {
			slog.Error("Failed to unmarshal JSON data", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	} else if !decodeJSON(w, r, &req, "ApplyLeave") {
		return
	}

	// The caller always applies for themselves.
	req.EmployeeID = employeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if multipart && r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["attachments"] {
			f, err := fh.Open()
			if err != nil {
				response.BadRequest(w, "Invalid file upload", nil)
				return
			}
			url, err := l.fileService.UploadLeaveAttachment(r.Context(), employeeID, f, fh.Filename)
			f.Close()
			if err != nil {
				response.HandleError(w, err)
				return
			}
			req.Attachments = append(req.Attachments, leave.Attachment{Name: fh.Filename, URL: url})
		}
	}

	result, err := l.leaveService.Apply(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted successfully", result)
}

// GetMyLeaves implements LeaveHandler.
func (l *LeaveHandlerImpl) GetMyLeaves(w http.ResponseWriter, r *http.Request) {
	result, err := l.leaveService.GetMyLeaves(r.Context(), leaveFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMyBalance implements LeaveHandler.
func (l *LeaveHandlerImpl) GetMyBalance(w http.ResponseWriter, r *http.Request) {
	result, err := l.leaveService.GetMyBalance(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Cancel implements LeaveHandler.
func (l *LeaveHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	result, err := l.leaveService.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request cancelled successfully", result)
}

// List implements LeaveHandler.
func (l *LeaveHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := l.leaveService.List(r.Context(), leaveFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListPending implements LeaveHandler.
func (l *LeaveHandlerImpl) ListPending(w http.ResponseWriter, r *http.Request) {
	result, err := l.leaveService.ListPending(r.Context(), leaveFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements LeaveHandler.
func (l *LeaveHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := l.leaveService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetEmployeeLeaves implements LeaveHandler.
func (l *LeaveHandlerImpl) GetEmployeeLeaves(w http.ResponseWriter, r *http.Request) {
	result, err := l.leaveService.GetEmployeeLeaves(r.Context(), chi.URLParam(r, "employeeId"), queryIntPtr(r, "year"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetEmployeeBalance implements LeaveHandler.
func (l *LeaveHandlerImpl) GetEmployeeBalance(w http.ResponseWriter, r *http.Request) {
	result, err := l.leaveService.GetEmployeeBalance(r.Context(), chi.URLParam(r, "employeeId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Approve implements LeaveHandler. The body is optional.
func (l *LeaveHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	var req leave.ApproveLeaveRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req, "ApproveLeave") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := l.leaveService.Approve(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request approved successfully", result)
}

// Reject implements LeaveHandler.
func (l *LeaveHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	var req leave.RejectLeaveRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req, "RejectLeave") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := l.leaveService.Reject(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request rejected", result)
}

// Stats implements LeaveHandler.
func (l *LeaveHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	filter := leave.StatsFilter{
		Year:       queryIntPtr(r, "year"),
		Month:      queryIntPtr(r, "month"),
		BranchID:   queryString(r, "branch_id"),
		Department: queryString(r, "department"),
	}

	result, err := l.leaveService.Stats(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListConfigurations implements LeaveHandler.
func (l *LeaveHandlerImpl) ListConfigurations(w http.ResponseWriter, r *http.Request) {
	result, err := l.leaveService.ListConfigurations(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// CreateConfiguration implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateConfiguration(w http.ResponseWriter, r *http.Request) {
	var req leave.ConfigurationRequest
	if !decodeJSON(w, r, &req, "CreateConfiguration") {
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := l.leaveService.CreateConfiguration(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave configuration created successfully", result)
}

// UpdateConfiguration implements LeaveHandler.
func (l *LeaveHandlerImpl) UpdateConfiguration(w http.ResponseWriter, r *http.Request) {
	var req leave.ConfigurationRequest
	if !decodeJSON(w, r, &req, "UpdateConfiguration") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := l.leaveService.UpdateConfiguration(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave configuration updated successfully", result)
}
