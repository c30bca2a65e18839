package payment

import (
	"context"
	"io"
)

type PaymentService interface {
	Initiate(ctx context.Context, req InitiateRequest) (PaymentResponse, error)
	Process(ctx context.Context, req ProcessRequest) (PaymentResponse, error)
	Complete(ctx context.Context, req CompleteRequest) (PaymentResponse, error)
	Fail(ctx context.Context, req FailRequest) (PaymentResponse, error)
	Retry(ctx context.Context, id string) (PaymentResponse, error)
	Cancel(ctx context.Context, id string) (PaymentResponse, error)
	Refund(ctx context.Context, req RefundRequest) (PaymentResponse, error)

	Get(ctx context.Context, id string) (PaymentResponse, error)
	List(ctx context.Context, filter PaymentFilter) (ListPaymentResponse, error)
	GetMyPayments(ctx context.Context) ([]PaymentResponse, error)
	Stats(ctx context.Context, filter StatsFilter) (StatsResponse, error)
	// ExportBankTransfers writes pending bank transfer payments as CSV.
	ExportBankTransfers(ctx context.Context, filter PaymentFilter, w io.Writer) error
}
