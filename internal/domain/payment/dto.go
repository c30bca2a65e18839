package payment

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/timepay/timepay-backend/internal/pkg/validator"
)

type PaymentFilter struct {
	Status   *string
	Method   *string
	BranchID *string
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

func (f *PaymentFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type StatsFilter struct {
	Year     *int
	Month    *int
	BranchID *string
}

type InitiateRequest struct {
	PayrollID   string       `json:"payroll_id"`
	Method      string       `json:"payment_method"`
	BankDetails *BankDetails `json:"bank_details,omitempty"`
	Notes       *string      `json:"notes,omitempty"`

	Metadata Metadata `json:"-"`
}

func (r *InitiateRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.PayrollID) {
		errs = append(errs, validator.ValidationError{Field: "payroll_id", Message: "payroll_id must be a valid UUID"})
	}
	if !Method(r.Method).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "payment_method", Message: "payment_method must be bank_transfer, cash, cheque, online or mobile_payment"})
	}
	if r.BankDetails != nil && validator.IsEmpty(r.BankDetails.AccountNumber) {
		errs = append(errs, validator.ValidationError{Field: "bank_details.account_number", Message: "account_number is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ProcessRequest struct {
	ID              string           `json:"-"`
	TransactionID   *string          `json:"transaction_id,omitempty"`
	Reference       *string          `json:"reference,omitempty"`
	GatewayResponse *GatewayResponse `json:"gateway_response,omitempty"`
}

type CompleteRequest struct {
	ID            string  `json:"-"`
	TransactionID *string `json:"transaction_id,omitempty"`
	Reference     *string `json:"reference,omitempty"`
}

type FailRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

func (r *FailRequest) Validate() error {
	if validator.IsEmpty(r.Reason) {
		return validator.ValidationErrors{{Field: "reason", Message: "reason is required"}}
	}
	return nil
}

type RefundRequest struct {
	ID     string  `json:"-"`
	Reason *string `json:"reason,omitempty"`
}

type PaymentResponse struct {
	ID              string           `json:"id"`
	PayrollID       string           `json:"payroll_id"`
	EmployeeID      string           `json:"employee_id"`
	EmployeeCode    string           `json:"employee_code,omitempty"`
	EmployeeName    string           `json:"employee_name,omitempty"`
	BranchID        string           `json:"branch_id"`
	BranchName      string           `json:"branch_name,omitempty"`
	PayrollMonth    int              `json:"payroll_month,omitempty"`
	PayrollYear     int              `json:"payroll_year,omitempty"`
	Amount          decimal.Decimal  `json:"amount"`
	Currency        string           `json:"currency"`
	PaymentMethod   Method           `json:"payment_method"`
	PaymentGateway  Gateway          `json:"payment_gateway"`
	TransactionID   *string          `json:"transaction_id,omitempty"`
	Reference       *string          `json:"reference,omitempty"`
	BankDetails     *BankDetails     `json:"bank_details,omitempty"`
	GatewayResponse *GatewayResponse `json:"gateway_response,omitempty"`
	Status          Status           `json:"status"`
	ProcessedAt     *time.Time       `json:"processed_at,omitempty"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
	FailedAt        *time.Time       `json:"failed_at,omitempty"`
	FailureReason   *string          `json:"failure_reason,omitempty"`
	ProcessedBy     *string          `json:"processed_by,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

func ToResponse(p Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		PayrollID:       p.PayrollID,
		EmployeeID:      p.EmployeeID,
		EmployeeCode:    p.EmployeeCode,
		EmployeeName:    p.EmployeeName,
		BranchID:        p.BranchID,
		BranchName:      p.BranchName,
		PayrollMonth:    p.PayrollMonth,
		PayrollYear:     p.PayrollYear,
		Amount:          p.Amount,
		Currency:        p.Currency,
		PaymentMethod:   p.Method,
		PaymentGateway:  p.Gateway,
		TransactionID:   p.TransactionID,
		Reference:       p.Reference,
		BankDetails:     p.BankDetails,
		GatewayResponse: p.GatewayResponse,
		Status:          p.Status,
		ProcessedAt:     p.ProcessedAt,
		CompletedAt:     p.CompletedAt,
		FailedAt:        p.FailedAt,
		FailureReason:   p.FailureReason,
		ProcessedBy:     p.ProcessedBy,
		Notes:           p.Notes,
		CreatedAt:       p.CreatedAt,
	}
}

type ListPaymentResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Payments   []PaymentResponse `json:"payments"`
}

type BucketResponse struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type StatsResponse struct {
	Total     BucketResponse            `json:"total"`
	Completed BucketResponse            `json:"completed"`
	Pending   BucketResponse            `json:"pending"`
	Failed    BucketResponse            `json:"failed"`
	ByMethod  map[Method]BucketResponse `json:"by_method"`
}

func ToStatsResponse(s Stats) StatsResponse {
	resp := StatsResponse{
		Total:     BucketResponse(s.Total),
		Completed: BucketResponse(s.Completed),
		Pending:   BucketResponse(s.Pending),
		Failed:    BucketResponse(s.Failed),
		ByMethod:  make(map[Method]BucketResponse, len(s.ByMethod)),
	}
	for m, b := range s.ByMethod {
		resp.ByMethod[m] = BucketResponse(b)
	}
	return resp
}

// BankTransferRow is one line of the bank transfer export file.
type BankTransferRow struct {
	EmployeeCode  string `csv:"employee_code"`
	EmployeeName  string `csv:"employee_name"`
	BankName      string `csv:"bank_name"`
	Branch        string `csv:"bank_branch"`
	AccountName   string `csv:"account_name"`
	AccountNumber string `csv:"account_number"`
	Amount        string `csv:"amount"`
	Currency      string `csv:"currency"`
	Reference     string `csv:"reference"`
}

// ToBankTransferRow renders p for export. The reference defaults to the payroll period.
func ToBankTransferRow(p Payment) BankTransferRow {
	row := BankTransferRow{
		EmployeeCode: p.EmployeeCode,
		EmployeeName: p.EmployeeName,
		Amount:       p.Amount.StringFixed(2),
		Currency:     p.Currency,
	}
	if p.BankDetails != nil {
		row.BankName = p.BankDetails.BankName
		row.Branch = p.BankDetails.Branch
		row.AccountName = p.BankDetails.AccountName
		row.AccountNumber = p.BankDetails.AccountNumber
	}
	if p.Reference != nil {
		row.Reference = *p.Reference
	} else if p.PayrollMonth > 0 {
		row.Reference = "SALARY " + time.Month(p.PayrollMonth).String() + " " + validator.Itoa(p.PayrollYear)
	}
	return row
}
