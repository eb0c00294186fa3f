// Package firebase pushes payment approval notifications to the back-office
// app through Firebase Cloud Messaging. Operators subscribe to a topic and
// get told the moment a PIX charge is paid, instead of polling the gateway
// dashboard.
package firebase

import (
	"context"
	"fmt"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"checkout/internal/domain/payment"
	"checkout/internal/shared/messages"
)

// Notifier implements payment.ApprovalNotifier over an FCM topic.
type Notifier struct {
	msgClient *messaging.Client
	topic     string
	texts     *messages.Messages
}

var _ payment.ApprovalNotifier = (*Notifier)(nil)

// NewNotifier initializes a Firebase app and returns a topic notifier.
// texts may be nil, in which case the default notification texts are used.
func NewNotifier(ctx context.Context, credentialsFile, topic string, texts *messages.Messages) (*Notifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	msgClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging client: %w", err)
	}

	if texts == nil {
		texts = messages.Default()
	}

	return &Notifier{msgClient: msgClient, topic: topic, texts: texts}, nil
}

// PaymentApproved pushes the approved transaction to the topic. Data fields
// carry the record so the app can deep-link into the sale.
func (n *Notifier) PaymentApproved(ctx context.Context, record *payment.PaymentRecord) error {
	body := n.texts.PaymentApproved.Body
	if record.Reference != "" {
		body = fmt.Sprintf("%s Referência: %s.", body, record.Reference)
	}

	msg := &messaging.Message{
		Topic: n.topic,
		Notification: &messaging.Notification{
			Title: n.texts.PaymentApproved.Title,
			Body:  body,
		},
		Data: map[string]string{
			"transactionId": record.TransactionID,
			"reference":     record.Reference,
			"amount":        strconv.FormatFloat(record.Amount, 'f', 2, 64),
			"paymentDate":   record.PaymentDate,
		},
	}

	if _, err := n.msgClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	return nil
}
