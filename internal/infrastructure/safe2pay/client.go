// Package safe2pay implements the HTTP client for the Safe2Pay payment
// gateway (PIX charges). Gateway errors arrive as HasError envelopes with
// HTTP 200, so failures are classified from the body, not the status code.
package safe2pay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	defaultBaseURL = "https://payment.safe2pay.com.br/v2"
	defaultTimeout = 30 * time.Second
	paymentPath    = "/Payment"
)

// Sentinel errors let callers distinguish transport failures from gateway
// rejections.
var (
	// ErrTimeout indicates the gateway did not answer in time, even after
	// the retry.
	ErrTimeout = errors.New("safe2pay: request timed out")
	// ErrConnection indicates the gateway could not be reached.
	ErrConnection = errors.New("safe2pay: connection failed")
)

// APIError is a rejection reported by the gateway itself (HasError=true).
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("safe2pay: API error %s: %s", e.Code, e.Message)
}

// Client handles communication with the Safe2Pay API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a Safe2Pay client authenticated by the X-API-KEY token.
// Empty baseURL or zero timeout fall back to production defaults.
func NewClient(token, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      token,
	}
}

// CreatePayment creates a PIX charge. A single immediate retry covers
// transient timeouts; PIX creation is idempotent enough on the gateway side
// that a duplicate attempt only reissues the same charge.
func (c *Client) CreatePayment(ctx context.Context, req *PaymentRequest) (*PaymentResponse, error) {
	resp, err := c.doCreate(ctx, req)
	if errors.Is(err, ErrTimeout) {
		resp, err = c.doCreate(ctx, req)
	}
	return resp, err
}

func (c *Client) doCreate(ctx context.Context, payment *PaymentRequest) (*PaymentResponse, error) {
	body, err := json.Marshal(payment)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+paymentPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	return decodePaymentResponse(resp)
}

// GetPayment fetches the current state of a transaction.
func (c *Client) GetPayment(ctx context.Context, transactionID string) (*StatusResponse, error) {
	url := fmt.Sprintf("%s%s/%s", c.baseURL, paymentPath, transactionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var statusResp StatusResponse
	if err := json.Unmarshal(body, &statusResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response (status %d): %w", resp.StatusCode, err)
	}

	if statusResp.HasError {
		return nil, &APIError{Code: statusResp.ErrorCode, Message: statusResp.ErrorText()}
	}

	return &statusResp, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.token)
}

func decodePaymentResponse(resp *http.Response) (*PaymentResponse, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var paymentResp PaymentResponse
	if err := json.Unmarshal(body, &paymentResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response (status %d): %w", resp.StatusCode, err)
	}

	if paymentResp.HasError {
		return nil, &APIError{Code: paymentResp.ErrorCode, Message: paymentResp.ErrorText()}
	}
	if paymentResp.ResponseDetail == nil {
		return nil, fmt.Errorf("safe2pay: response missing transaction detail (status %d)", resp.StatusCode)
	}

	return &paymentResp, nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrConnection, err)
}
