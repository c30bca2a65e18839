package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// Open reports whether the payment can still progress to completed or failed.
func (s Status) Open() bool {
	return s == StatusPending || s == StatusProcessing
}

type Method string

const (
	MethodBankTransfer  Method = "bank_transfer"
	MethodCash          Method = "cash"
	MethodCheque        Method = "cheque"
	MethodOnline        Method = "online"
	MethodMobilePayment Method = "mobile_payment"
)

func (m Method) IsValid() bool {
	switch m {
	case MethodBankTransfer, MethodCash, MethodCheque, MethodOnline, MethodMobilePayment:
		return true
	}
	return false
}

type Gateway string

const (
	GatewayManual  Gateway = "manual"
	GatewayPayhere Gateway = "payhere"
	GatewayBankAPI Gateway = "bank_api"
)

// GatewayFor maps a payment method to the rail label recorded on the payment.
func GatewayFor(m Method) Gateway {
	switch m {
	case MethodOnline:
		return GatewayPayhere
	case MethodBankTransfer:
		return GatewayBankAPI
	default:
		return GatewayManual
	}
}

type BankDetails struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	Branch        string `json:"branch,omitempty"`
	RoutingNumber string `json:"routing_number,omitempty"`
}

type GatewayResponse struct {
	TransactionID   string         `json:"transaction_id,omitempty"`
	Status          string         `json:"status,omitempty"`
	ResponseCode    string         `json:"response_code,omitempty"`
	ResponseMessage string         `json:"response_message,omitempty"`
	Raw             map[string]any `json:"raw,omitempty"`
}

type Metadata struct {
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

type Payment struct {
	ID              string
	PayrollID       string
	EmployeeID      string
	BranchID        string
	Amount          decimal.Decimal
	Currency        string
	Method          Method
	Gateway         Gateway
	TransactionID   *string
	Reference       *string
	BankDetails     *BankDetails
	GatewayResponse *GatewayResponse
	Status          Status
	ProcessedAt     *time.Time
	CompletedAt     *time.Time
	FailedAt        *time.Time
	FailureReason   *string
	ProcessedBy     *string
	Notes           *string
	Metadata        Metadata
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined
	EmployeeCode   string
	EmployeeName   string
	EmployeeUserID *string
	BranchName     string
	PayrollMonth   int
	PayrollYear    int
}

// Process marks an open payment as in flight.
func (p *Payment) Process(transactionID, reference *string, resp *GatewayResponse, at time.Time) error {
	if !p.Status.Open() {
		return ErrAlreadyProcessed
	}
	p.Status = StatusProcessing
	p.ProcessedAt = &at
	if transactionID != nil {
		p.TransactionID = transactionID
	}
	if reference != nil {
		p.Reference = reference
	}
	if resp != nil {
		p.GatewayResponse = resp
	}
	return nil
}

// Complete settles an open payment and returns the reference to write back to
// the payroll.
func (p *Payment) Complete(transactionID, reference *string, at time.Time) (string, error) {
	if !p.Status.Open() {
		return "", ErrCannotComplete
	}
	p.Status = StatusCompleted
	p.CompletedAt = &at
	if transactionID != nil {
		p.TransactionID = transactionID
	}
	if reference != nil {
		p.Reference = reference
	}
	switch {
	case p.Reference != nil && *p.Reference != "":
		return *p.Reference, nil
	case p.TransactionID != nil:
		return *p.TransactionID, nil
	}
	return "", nil
}

func (p *Payment) Fail(reason string, at time.Time) error {
	if !p.Status.Open() {
		return ErrCannotFail
	}
	p.Status = StatusFailed
	p.FailedAt = &at
	p.FailureReason = &reason
	return nil
}

// Retry returns a failed payment to pending and clears the failure.
func (p *Payment) Retry(actorID string) error {
	if p.Status != StatusFailed {
		return ErrRetryNotFailed
	}
	p.Status = StatusPending
	p.FailedAt = nil
	p.FailureReason = nil
	p.GatewayResponse = nil
	p.ProcessedBy = &actorID
	return nil
}

func (p *Payment) Cancel() error {
	if !p.Status.Open() {
		return ErrCannotCancel
	}
	p.Status = StatusCancelled
	return nil
}

func (p *Payment) Refund(reason *string) error {
	if p.Status != StatusCompleted {
		return ErrCannotRefund
	}
	p.Status = StatusRefunded
	if reason != nil {
		p.Notes = reason
	}
	return nil
}

type Bucket struct {
	Count  int
	Amount decimal.Decimal
}

type Stats struct {
	Total     Bucket
	Completed Bucket
	Pending   Bucket
	Failed    Bucket
	ByMethod  map[Method]Bucket
}

func Summarize(payments []Payment) Stats {
	s := Stats{ByMethod: make(map[Method]Bucket)}
	add := func(b Bucket, amt decimal.Decimal) Bucket {
		return Bucket{Count: b.Count + 1, Amount: b.Amount.Add(amt)}
	}
	for _, p := range payments {
		s.Total = add(s.Total, p.Amount)
		switch p.Status {
		case StatusCompleted:
			s.Completed = add(s.Completed, p.Amount)
		case StatusPending:
			s.Pending = add(s.Pending, p.Amount)
		case StatusFailed:
			s.Failed = add(s.Failed, p.Amount)
		}
		s.ByMethod[p.Method] = add(s.ByMethod[p.Method], p.Amount)
	}
	return s
}
