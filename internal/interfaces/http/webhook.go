package http

import (
	"errors"
	"io"
	"log"
	"net/http"

	"checkout/internal/domain/payment"
)

// maxWebhookBody caps notification bodies. Safe2Pay pushes are small; a
// larger body is not a notification.
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	processor *payment.Processor
}

func NewWebhookHandler(processor *payment.Processor) *WebhookHandler {
	return &WebhookHandler{processor: processor}
}

// HandlePaymentNotification receives Safe2Pay status pushes. Almost every
// failure answers 200: a non-2xx makes the gateway retry, and retrying a
// push we cannot use only duplicates noise. The exception is a push with no
// transaction ID, which is rejected so the gateway flags it on its side.
// POST /webhook/safe2pay
func (h *WebhookHandler) HandlePaymentNotification(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		log.Printf("Error reading webhook body: %v", err)
		writeJSON(w, http.StatusOK, map[string]string{"resultado": "ignorado"})
		return
	}

	if err := h.processor.Process(r.Context(), body); err != nil {
		if errors.Is(err, payment.ErrMissingTransactionID) {
			writeError(w, http.StatusBadRequest, "notificação sem IdTransaction")
			return
		}
		log.Printf("Error processing webhook: %v", err)
		writeJSON(w, http.StatusOK, map[string]string{"resultado": "ignorado"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"resultado": "processado"})
}
