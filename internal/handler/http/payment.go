package http

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/timepay/timepay-backend/internal/domain/payment"
	"github.com/timepay/timepay-backend/internal/handler/http/response"
)

type PaymentHandler interface {
	Initiate(w http.ResponseWriter, r *http.Request)
	Process(w http.ResponseWriter, r *http.Request)
	Complete(w http.ResponseWriter, r *http.Request)
	Fail(w http.ResponseWriter, r *http.Request)
	Retry(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	Refund(w http.ResponseWriter, r *http.Request)

	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	GetMyPayments(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

type paymentHandlerImpl struct {
	paymentService payment.PaymentService
}

func NewPaymentHandler(paymentService payment.PaymentService) PaymentHandler {
	return &paymentHandlerImpl{paymentService: paymentService}
}

func queryDate(r *http.Request, key string) *time.Time {
	if v := r.URL.Query().Get(key); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			return &t
		}
	}
	return nil
}

func paymentFilter(r *http.Request) payment.PaymentFilter {
	return payment.PaymentFilter{
		Status:   queryString(r, "status"),
		Method:   queryString(r, "payment_method"),
		BranchID: queryString(r, "branch_id"),
		From:     queryDate(r, "from"),
		To:       queryDate(r, "to"),
		Page:     queryInt(r, "page", 1),
		Limit:    queryInt(r, "limit", 20),
	}
}

// Initiate implements PaymentHandler.
func (h *paymentHandlerImpl) Initiate(w http.ResponseWriter, r *http.Request) {
	var req payment.InitiateRequest
	if !decodeJSON(w, r, &req, "InitiatePayment") {
		return
	}
	req.Metadata = payment.Metadata{IPAddress: r.RemoteAddr, UserAgent: r.UserAgent()}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.paymentService.Initiate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payment initiated successfully", result)
}

// Process implements PaymentHandler.
func (h *paymentHandlerImpl) Process(w http.ResponseWriter, r *http.Request) {
	var req payment.ProcessRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req, "ProcessPayment") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.paymentService.Process(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payment is being processed", result)
}

// Complete implements PaymentHandler.
func (h *paymentHandlerImpl) Complete(w http.ResponseWriter, r *http.Request) {
	var req payment.CompleteRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req, "CompletePayment") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.paymentService.Complete(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payment completed successfully", result)
}

// Fail implements PaymentHandler.
func (h *paymentHandlerImpl) Fail(w http.ResponseWriter, r *http.Request) {
	var req payment.FailRequest
	if !decodeJSON(w, r, &req, "FailPayment") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.paymentService.Fail(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payment marked as failed", result)
}

// Retry implements PaymentHandler.
func (h *paymentHandlerImpl) Retry(w http.ResponseWriter, r *http.Request) {
	result, err := h.paymentService.Retry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payment queued for retry", result)
}

// Cancel implements PaymentHandler.
func (h *paymentHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	result, err := h.paymentService.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payment cancelled successfully", result)
}

// Refund implements PaymentHandler.
func (h *paymentHandlerImpl) Refund(w http.ResponseWriter, r *http.Request) {
	var req payment.RefundRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req, "RefundPayment") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.paymentService.Refund(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payment refunded successfully", result)
}

// List implements PaymentHandler.
func (h *paymentHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.paymentService.List(r.Context(), paymentFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements PaymentHandler.
func (h *paymentHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.paymentService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMyPayments implements PaymentHandler.
func (h *paymentHandlerImpl) GetMyPayments(w http.ResponseWriter, r *http.Request) {
	result, err := h.paymentService.GetMyPayments(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Stats implements PaymentHandler.
func (h *paymentHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	filter := payment.StatsFilter{
		Year:     queryIntPtr(r, "year"),
		Month:    queryIntPtr(r, "month"),
		BranchID: queryString(r, "branch_id"),
	}

	result, err := h.paymentService.Stats(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Export implements PaymentHandler. It streams the bank transfer file.
func (h *paymentHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.paymentService.ExportBankTransfers(r.Context(), paymentFilter(r), &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	filename := "bank_transfers_" + time.Now().Format("20060102") + ".csv"
	response.Attachment(w, filename, "text/csv", buf.Bytes())
}
