package payment

import (
	"errors"
	"strings"
	"time"
)

// Sentinel errors classified by the HTTP layer as client faults.
var (
	ErrInvalidProduct       = errors.New("produto inválido")
	ErrPriceMismatch        = errors.New("valor divergente do catálogo")
	ErrInvalidTransactionID = errors.New("identificador de transação inválido")
)

// ValidationError aggregates every problem found in the checkout payload, so
// the storefront can show all of them at once.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "dados inválidos: " + strings.Join(e.Problems, "; ")
}

// CheckoutData is the storefront's PIX creation payload after decoding.
type CheckoutData struct {
	Document string `json:"cpf"`
	FullName string `json:"nome"`
	Email    string `json:"email"`
	Phone    string `json:"telefone"`

	ZipCode    string `json:"cep"`
	Street     string `json:"endereco"`
	Number     string `json:"numero"`
	Complement string `json:"complemento"`
	District   string `json:"bairro"`
	City       string `json:"cidade"`
	State      string `json:"estado"`

	// ProductID selects a catalog entry; empty picks the default product.
	ProductID string `json:"produto"`
	// DeclaredAmount is the price the storefront displayed. When present it
	// must match the catalog within the tolerance.
	DeclaredAmount *float64 `json:"valor"`
	// Protocol links the charge to a Safeweb certificate protocol.
	Protocol string `json:"protocolo"`
}

// CreateResult is what the storefront receives after a PIX charge is
// created: everything needed to render the QR code and poll for status.
type CreateResult struct {
	TransactionID string         `json:"idTransacao"`
	QRCodeImage   string         `json:"qrCodeImagem,omitempty"`
	PixCopiaECola string         `json:"pixCopiaECola"`
	Amount        float64        `json:"valor"`
	Status        string         `json:"status"`
	Reference     string         `json:"referencia"`
	ExpiresAt     time.Time      `json:"expiraEm"`
	Customer      map[string]any `json:"cliente,omitempty"`
}

// PaymentRecord is the per-transaction state cached from webhook pushes and
// returned to status polls.
type PaymentRecord struct {
	TransactionID string  `json:"idTransacao"`
	StatusID      int     `json:"statusId"`
	StatusCode    string  `json:"statusCode,omitempty"`
	StatusName    string  `json:"statusNome,omitempty"`
	Amount        float64 `json:"valor,omitempty"`
	PaymentDate   string  `json:"dataPagamento,omitempty"`
	Reference     string  `json:"referencia,omitempty"`
	ReceivedAt    string  `json:"recebidoEm,omitempty"`
}

// Approved reports whether the gateway marked the transaction as paid.
// Status 3 is Safe2Pay's "Autorizado"; pushes carry it either as the numeric
// Id or the string Code depending on the notification version.
func (r *PaymentRecord) Approved() bool {
	return r.StatusID == 3 || r.StatusCode == "3"
}

// StatusResult is the answer to a status poll. Source tells whether it came
// from the webhook cache or a live gateway query.
type StatusResult struct {
	TransactionID string `json:"idTransacao"`
	Status        string `json:"status"`
	Source        string `json:"origem"`
	Record        *PaymentRecord `json:"detalhes,omitempty"`
}
