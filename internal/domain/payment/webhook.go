package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
)

// ErrMissingTransactionID marks a notification that cannot be correlated to
// any charge. The only webhook fault worth a non-2xx answer, since it means
// the push is unusable, not merely unexpected.
var ErrMissingTransactionID = errors.New("notificação sem IdTransaction")

// notification mirrors Safe2Pay's push payload. Numeric fields arrive as
// numbers or quoted strings depending on the notification version, hence
// json.Number.
type notification struct {
	IdTransaction json.Number `json:"IdTransaction"`
	Reference     string      `json:"Reference"`
	Amount        json.Number `json:"Amount"`
	PaymentDate   string      `json:"PaymentDate"`
	TransactionStatus *struct {
		Id   int    `json:"Id"`
		Code string `json:"Code"`
		Name string `json:"Name"`
	} `json:"TransactionStatus"`
	// Older notification versions skip the TransactionStatus object and
	// push the status id at the top level instead.
	Status        json.Number `json:"Status"`
	PaymentStatus json.Number `json:"PaymentStatus"`
}

// notificationEnvelope covers the wrapped shapes Safe2Pay uses: the full
// {NotificationWrapper: {NotificationPayload: {...}}} envelope and the
// payload-only {NotificationPayload: {...}} variant.
type notificationEnvelope struct {
	NotificationWrapper *struct {
		NotificationPayload *notification `json:"NotificationPayload"`
	} `json:"NotificationWrapper"`
	NotificationPayload *notification `json:"NotificationPayload"`
}

// ParseNotification decodes a webhook body, accepting the wrapped and the
// flat shape, and reduces it to a PaymentRecord.
func ParseNotification(body []byte) (*PaymentRecord, error) {
	var envelope notificationEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.NotificationWrapper != nil && envelope.NotificationWrapper.NotificationPayload != nil {
			return toRecord(envelope.NotificationWrapper.NotificationPayload)
		}
		if envelope.NotificationPayload != nil {
			return toRecord(envelope.NotificationPayload)
		}
	}

	var flat notification
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification: %w", err)
	}
	return toRecord(&flat)
}

func toRecord(n *notification) (*PaymentRecord, error) {
	transactionID := n.IdTransaction.String()
	if transactionID == "" {
		return nil, ErrMissingTransactionID
	}

	record := &PaymentRecord{
		TransactionID: transactionID,
		Reference:     n.Reference,
		PaymentDate:   n.PaymentDate,
	}
	if amount, err := n.Amount.Float64(); err == nil {
		record.Amount = amount
	}
	switch {
	case n.TransactionStatus != nil:
		record.StatusID = n.TransactionStatus.Id
		record.StatusCode = n.TransactionStatus.Code
		record.StatusName = n.TransactionStatus.Name
	default:
		status := n.Status
		if status.String() == "" {
			status = n.PaymentStatus
		}
		if status.String() != "" {
			if id, err := status.Int64(); err == nil {
				record.StatusID = int(id)
			}
			record.StatusCode = status.String()
		}
	}
	return record, nil
}

// ApprovalNotifier is told about approved payments after the record is
// cached. Failures are logged, never propagated; notification is best
// effort.
type ApprovalNotifier interface {
	PaymentApproved(ctx context.Context, record *PaymentRecord) error
}

// Processor handles webhook pushes: parse, cache, notify.
type Processor struct {
	store    StatusStore
	notifier ApprovalNotifier

	now func() time.Time
}

// NewProcessor creates a webhook processor. notifier may be nil.
func NewProcessor(store StatusStore, notifier ApprovalNotifier) *Processor {
	return &Processor{store: store, notifier: notifier, now: time.Now}
}

// Process records the pushed state so status polls can see it.
func (p *Processor) Process(ctx context.Context, body []byte) error {
	record, err := ParseNotification(body)
	if err != nil {
		return err
	}
	record.ReceivedAt = p.now().UTC().Format(time.RFC3339)

	if err := p.store.Set(ctx, record); err != nil {
		return fmt.Errorf("failed to cache payment status: %w", err)
	}

	log.Printf("payment: webhook recorded transaction=%s status=%d/%s",
		record.TransactionID, record.StatusID, record.StatusCode)

	if record.Approved() && p.notifier != nil {
		if err := p.notifier.PaymentApproved(ctx, record); err != nil {
			log.Printf("payment: approval notification failed for transaction %s: %v",
				record.TransactionID, err)
		}
	}
	return nil
}
