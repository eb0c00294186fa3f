// Package http exposes the checkout API: PIX creation and status, Safeweb
// identity flows, the gateway webhook and operational endpoints. Every JSON
// answer uses the same envelope so the storefront handles one shape.
package http

import (
	"encoding/json"
	"log"
	"net/http"
)

// envelope is the uniform response body: sucesso tells the storefront
// whether dados or erro applies.
type envelope struct {
	Sucesso  bool     `json:"sucesso"`
	Erro     string   `json:"erro,omitempty"`
	Detalhes []string `json:"detalhes,omitempty"`
	Dados    any      `json:"dados,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Sucesso: true, Dados: data}); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, details ...string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Erro: message, Detalhes: details}); err != nil {
		log.Printf("Error encoding error response: %v", err)
	}
}
