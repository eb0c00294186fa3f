package middleware

import (
	"encoding/json"
	"log"
	"net/http"
)

// writeEnvelopeError emits the same response envelope the handlers use, so
// callers rejected at the middleware layer can parse the body uniformly.
func writeEnvelopeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := struct {
		Sucesso bool   `json:"sucesso"`
		Erro    string `json:"erro"`
	}{Sucesso: false, Erro: message}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding middleware response: %v", err)
	}
}
