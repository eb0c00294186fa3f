package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"checkout/internal/domain/payment"
	"checkout/internal/infrastructure/safe2pay"
)

type PixHandler struct {
	payments *payment.Service
	// debug exposes underlying error text in responses. Never on in
	// production.
	debug bool
}

func NewPixHandler(payments *payment.Service, debug bool) *PixHandler {
	return &PixHandler{payments: payments, debug: debug}
}

// HandleCreate creates a PIX charge for the checkout payload.
// POST /api/pix/create
func (h *PixHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var data payment.CheckoutData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		log.Printf("Error decoding checkout request: %v", err)
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	result, err := h.payments.CreatePayment(r.Context(), &data)
	if err != nil {
		h.writePaymentError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleStatus answers a status poll for a transaction.
// GET|POST /api/pix/status/{id}
func (h *PixHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	transactionID := r.PathValue("id")
	if transactionID == "" {
		writeError(w, http.StatusBadRequest, "identificador de transação é obrigatório")
		return
	}

	result, err := h.payments.CheckStatus(r.Context(), transactionID)
	if err != nil {
		h.writePaymentError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writePaymentError maps service errors onto the envelope. Client faults
// and gateway-rejected business data become 400 with their pt-BR message;
// anything else stays a generic 500. Underlying error text only leaves the
// process when debug is on.
func (h *PixHandler) writePaymentError(w http.ResponseWriter, err error) {
	var validationErr *payment.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, "dados inválidos", validationErr.Problems...)
		return
	}
	if payment.IsClientFault(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var apiErr *safe2pay.APIError
	if errors.As(err, &apiErr) {
		log.Printf("Payment gateway rejected request: %v", apiErr)
		writeError(w, http.StatusBadRequest, "pagamento recusado pelo gateway", h.detail(err)...)
		return
	}
	if errors.Is(err, safe2pay.ErrTimeout) || errors.Is(err, safe2pay.ErrConnection) {
		log.Printf("Payment gateway unreachable: %v", err)
		writeError(w, http.StatusInternalServerError, "gateway de pagamento indisponível", h.detail(err)...)
		return
	}

	log.Printf("Error processing payment: %v", err)
	writeError(w, http.StatusInternalServerError, "erro interno", h.detail(err)...)
}

func (h *PixHandler) detail(err error) []string {
	if !h.debug {
		return nil
	}
	return []string{err.Error()}
}
