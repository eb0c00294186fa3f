package safe2pay

import "context"

// ClientInterface defines the Safe2Pay operations used by the payment
// service. Allows mocking the gateway in tests.
type ClientInterface interface {
	// CreatePayment creates a PIX charge.
	CreatePayment(ctx context.Context, req *PaymentRequest) (*PaymentResponse, error)

	// GetPayment fetches the current state of a transaction by its ID.
	GetPayment(ctx context.Context, transactionID string) (*StatusResponse, error)
}
