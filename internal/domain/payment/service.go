// Package payment implements the PIX checkout flow: validating the
// storefront payload, pricing it from the catalog, creating the charge at
// the gateway and answering status polls from webhook-cached state.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"checkout/internal/domain/catalog"
	"checkout/internal/domain/validation"
	"checkout/internal/infrastructure/safe2pay"
	"checkout/internal/shared/pii"
)

// Options carries the gateway identification baked into every charge.
type Options struct {
	Sandbox     bool
	Application string
	Vendor      string
	CallbackURL string
	// PIXExpiration is how long the QR code stays payable.
	PIXExpiration time.Duration
}

// Service orchestrates PIX creation and status polling.
type Service struct {
	client safe2pay.ClientInterface
	store  StatusStore
	opts   Options

	now func() time.Time
}

// NewService creates a payment service. Zero PIXExpiration defaults to ten
// minutes, Safe2Pay's minimum-friendly window for checkout flows.
func NewService(client safe2pay.ClientInterface, store StatusStore, opts Options) *Service {
	if opts.PIXExpiration <= 0 {
		opts.PIXExpiration = 10 * time.Minute
	}
	return &Service{
		client: client,
		store:  store,
		opts:   opts,
		now:    time.Now,
	}
}

// CreatePayment validates the checkout payload, prices it from the catalog
// and creates the PIX charge. The declared amount, when present, must match
// the catalog price; the catalog is always the authority on what is charged.
func (s *Service) CreatePayment(ctx context.Context, data *CheckoutData) (*CreateResult, error) {
	normalized, problems := validation.Checkout(validation.CheckoutInput{
		Document: data.Document,
		FullName: data.FullName,
		Email:    data.Email,
		Phone:    data.Phone,
	})
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	productID := data.ProductID
	if productID == "" {
		productID = catalog.DefaultProductID
	}
	product, ok := catalog.Get(productID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidProduct, productID)
	}
	if data.DeclaredAmount != nil && !product.PriceMatches(*data.DeclaredAmount) {
		log.Printf("payment: declared amount %.2f diverges from catalog %.2f for product %s (document %s)",
			*data.DeclaredAmount, product.UnitPrice, productID, pii.MaskDocument(normalized.Document))
		return nil, ErrPriceMismatch
	}

	reference := data.Protocol
	if reference == "" {
		reference = "ECPF-" + s.now().Format("20060102150405")
	}

	req := &safe2pay.PaymentRequest{
		IsSandbox:     s.opts.Sandbox,
		Application:   s.opts.Application,
		Vendor:        s.opts.Vendor,
		CallbackURL:   s.opts.CallbackURL,
		PaymentMethod: safe2pay.PaymentMethodPIX,
		Reference:     reference,
		Customer: safe2pay.Customer{
			Name:     normalized.FullName,
			Identity: normalized.Document,
			Phone:    normalized.Phone,
			Email:    normalized.Email,
			Address: safe2pay.Address{
				ZipCode:       validation.OnlyDigits(data.ZipCode),
				Street:        data.Street,
				Number:        data.Number,
				Complement:    data.Complement,
				District:      data.District,
				CityName:      data.City,
				StateInitials: data.State,
				CountryName:   "Brasil",
			},
		},
		PaymentObject: safe2pay.PaymentObject{
			Expiration: int(s.opts.PIXExpiration.Seconds()),
		},
		Products: []safe2pay.Product{{
			Code:        product.Code,
			Description: product.Description,
			UnitPrice:   product.UnitPrice,
			Quantity:    1,
		}},
	}

	log.Printf("payment: creating PIX charge reference=%s product=%s document=%s",
		reference, productID, pii.MaskDocument(normalized.Document))

	resp, err := s.client.CreatePayment(ctx, req)
	if err != nil {
		return nil, err
	}

	detail := resp.ResponseDetail
	result := &CreateResult{
		TransactionID: strconv.FormatInt(detail.IdTransaction, 10),
		QRCodeImage:   detail.QrCode,
		PixCopiaECola: detail.Key,
		Amount:        product.UnitPrice,
		Status:        "pending",
		Reference:     reference,
		ExpiresAt:     s.now().Add(s.opts.PIXExpiration),
		Customer: map[string]any{
			"nome":  pii.MaskName(normalized.FullName),
			"cpf":   pii.MaskDocument(normalized.Document),
			"email": pii.MaskEmail(normalized.Email),
		},
	}

	log.Printf("payment: PIX charge created transaction=%s reference=%s", result.TransactionID, reference)
	return result, nil
}

// CheckStatus answers a status poll. Webhook-cached state wins; the gateway
// is only queried when nothing was pushed yet.
func (s *Service) CheckStatus(ctx context.Context, transactionID string) (*StatusResult, error) {
	if _, err := strconv.ParseInt(transactionID, 10, 64); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTransactionID, transactionID)
	}

	record, err := s.store.Get(ctx, transactionID)
	if err != nil {
		log.Printf("payment: status cache read failed for transaction %s: %v", transactionID, err)
	}
	if record != nil {
		status := "pending"
		if record.Approved() {
			status = "approved"
		}
		return &StatusResult{
			TransactionID: transactionID,
			Status:        status,
			Source:        "webhook",
			Record:        record,
		}, nil
	}

	resp, err := s.client.GetPayment(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	status := "pending"
	if resp.PaymentStatus() == "3" {
		status = "approved"
	}
	return &StatusResult{
		TransactionID: transactionID,
		Status:        status,
		Source:        "gateway",
	}, nil
}

// IsClientFault reports whether err should surface as a 400 rather than a
// 502/500.
func IsClientFault(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr) ||
		errors.Is(err, ErrInvalidProduct) ||
		errors.Is(err, ErrPriceMismatch) ||
		errors.Is(err, ErrInvalidTransactionID)
}
