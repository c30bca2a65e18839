package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/timepay/timepay-backend/internal/domain/report"
	"github.com/timepay/timepay-backend/internal/handler/http/response"
	"github.com/timepay/timepay-backend/internal/pkg/export"
)

type ReportHandler interface {
	EmployeeSummary(w http.ResponseWriter, r *http.Request)
	AttendanceSummary(w http.ResponseWriter, r *http.Request)
	LeaveSummary(w http.ResponseWriter, r *http.Request)
	PayrollSummary(w http.ResponseWriter, r *http.Request)
	DepartmentSummary(w http.ResponseWriter, r *http.Request)

	// Export streams /reports/export/{kind} as xlsx, or csv with ?format=csv.
	Export(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

func (h *reportHandlerImpl) EmployeeSummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.EmployeeSummary(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// AttendanceSummary handles GET /reports/attendance?month=&year=
func (h *reportHandlerImpl) AttendanceSummary(w http.ResponseWriter, r *http.Request) {
	req := report.PeriodRequest{
		Month: queryInt(r, "month", 0),
		Year:  queryInt(r, "year", 0),
	}

	result, err := h.reportService.AttendanceSummary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// LeaveSummary handles GET /reports/leaves?year=
func (h *reportHandlerImpl) LeaveSummary(w http.ResponseWriter, r *http.Request) {
	req := report.YearRequest{Year: queryInt(r, "year", 0)}

	result, err := h.reportService.LeaveSummary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *reportHandlerImpl) PayrollSummary(w http.ResponseWriter, r *http.Request) {
	req := report.PayrollSummaryRequest{
		Month: queryIntPtr(r, "month"),
		Year:  queryIntPtr(r, "year"),
	}

	result, err := h.reportService.PayrollSummary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *reportHandlerImpl) DepartmentSummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.DepartmentSummary(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *reportHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	req := report.ExportRequest{
		Kind:   report.ExportKind(chi.URLParam(r, "kind")),
		Format: export.ParseFormat(r.URL.Query().Get("format")),
		Month:  queryInt(r, "month", 0),
		Year:   queryInt(r, "year", 0),
	}

	file, err := h.reportService.Export(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, file.Filename, file.ContentType, file.Data)
}
