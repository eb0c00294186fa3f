package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"checkout/internal/domain/identity"
	"checkout/internal/domain/validation"
	"checkout/internal/shared/ratelimit"
)

type SafewebHandler struct {
	identity *identity.Service
	// docLimiter throttles the registry lookup routes per CPF, on top of
	// the per-IP limit. Safeweb bills per consulta.
	docLimiter *ratelimit.Limiter
	// debug exposes underlying error text in responses. Never on in
	// production.
	debug bool
}

func NewSafewebHandler(svc *identity.Service, docLimiter *ratelimit.Limiter, debug bool) *SafewebHandler {
	return &SafewebHandler{identity: svc, docLimiter: docLimiter, debug: debug}
}

// allowDocument enforces the per-document budget and writes the 429 answer
// itself. Returns false when the caller should stop.
func (h *SafewebHandler) allowDocument(w http.ResponseWriter, r *http.Request, document string) bool {
	if h.docLimiter == nil {
		return true
	}

	key := "doc:" + validation.OnlyDigits(document)
	decision, err := h.docLimiter.Allow(r.Context(), key)
	if err != nil {
		log.Printf("Document rate limit check failed: %v", err)
		return true
	}
	if !decision.Allowed {
		w.Header().Set("Retry-After", fmt.Sprintf("%.0f", decision.RetryAfter.Seconds()))
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", h.docLimiter.Limit()))
		w.Header().Set("X-RateLimit-Remaining", "0")
		writeError(w, http.StatusTooManyRequests, "muitas consultas para este CPF, tente novamente em instantes")
		return false
	}
	return true
}

type biometryRequest struct {
	CPF string `json:"cpf"`
}

// HandleBiometry checks whether the CPF can issue by facial biometry.
// POST /api/safeweb/verificar-biometria
func (h *SafewebHandler) HandleBiometry(w http.ResponseWriter, r *http.Request) {
	var req biometryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding biometry request: %v", err)
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	if !h.allowDocument(w, r, req.CPF) {
		return
	}

	result, err := h.identity.CheckBiometry(r.Context(), req.CPF)
	if err != nil {
		h.writeIdentityError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type lookupRequest struct {
	CPF            string `json:"cpf"`
	DataNascimento string `json:"dataNascimento"`
}

// HandleLookup pre-checks the CPF against the registry. Negative registry
// outcomes (not found, cancelled, divergent birth date) are successful
// lookups, not errors. The storefront branches on sucesso/valido, so even a
// provider failure answers 200 with sucesso false; only malformed input and
// the rate limit get another status.
// POST /api/safeweb/consultar-cpf
func (h *SafewebHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding lookup request: %v", err)
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	if !h.allowDocument(w, r, req.CPF) {
		return
	}

	result, err := h.identity.LookupDocument(r.Context(), req.CPF, req.DataNascimento)
	if err != nil {
		if identity.IsClientFault(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("Error calling identity provider: %v", err)
		writeError(w, http.StatusOK, "provedor de identidade indisponível", h.detail(err)...)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleGenerateProtocol creates a certificate protocol.
// POST /api/safeweb/gerar-protocolo
func (h *SafewebHandler) HandleGenerateProtocol(w http.ResponseWriter, r *http.Request) {
	var data identity.ProtocolData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		log.Printf("Error decoding protocol request: %v", err)
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	result, err := h.identity.GenerateProtocol(r.Context(), &data)
	if err != nil {
		h.writeIdentityError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type protocolRequest struct {
	Protocolo string `json:"protocolo"`
}

// HandleReleasePayment confirms payment on a protocol.
// POST /api/safeweb/liberar-pagamento
func (h *SafewebHandler) HandleReleasePayment(w http.ResponseWriter, r *http.Request) {
	var req protocolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding release request: %v", err)
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	if err := h.identity.ReleasePayment(r.Context(), req.Protocolo); err != nil {
		h.writeIdentityError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"protocolo": req.Protocolo})
}

// HandleUploadSolicitation releases the protocol and requests the Hope
// upload link.
// POST /api/hope/create-solicitation
func (h *SafewebHandler) HandleUploadSolicitation(w http.ResponseWriter, r *http.Request) {
	var req protocolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding solicitation request: %v", err)
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	result, err := h.identity.CreateUploadSolicitation(r.Context(), req.Protocolo)
	if err != nil {
		h.writeIdentityError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *SafewebHandler) writeIdentityError(w http.ResponseWriter, err error) {
	var missingField *identity.MissingFieldError
	if errors.As(err, &missingField) {
		writeError(w, http.StatusBadRequest, missingField.Error())
		return
	}
	if identity.IsClientFault(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Printf("Error calling identity provider: %v", err)
	writeError(w, http.StatusInternalServerError, "provedor de identidade indisponível", h.detail(err)...)
}

func (h *SafewebHandler) detail(err error) []string {
	if !h.debug {
		return nil
	}
	return []string{err.Error()}
}
