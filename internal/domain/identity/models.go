package identity

import "errors"

// Sentinel errors classified by the HTTP layer as client faults.
var (
	ErrInvalidCPF      = errors.New("CPF inválido")
	ErrMissingProtocol = errors.New("protocolo é obrigatório")
)

// MissingFieldError names the first required protocol field absent from the
// request, so the storefront can focus the right input.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "campo obrigatório ausente: " + e.Field
}

// BiometryResult answers a biometry check with operator guidance.
type BiometryResult struct {
	CPF          string `json:"cpf"`
	HasBiometry  bool   `json:"possuiBiometria"`
	Instructions string `json:"orientacao"`
}

// LookupResult is the outcome of a CPF registry pre-check.
type LookupResult struct {
	// Valid means the registry accepted the CPF/birth-date pair.
	Valid bool `json:"valido"`
	// Name is the registered holder name, present only when Valid.
	Name string `json:"nome,omitempty"`
	// Code is Safeweb's result code, passed through for the storefront.
	Code int `json:"codigo"`
	// Message explains the outcome in pt-BR.
	Message string `json:"mensagem"`
}

// ProtocolData is the storefront's protocol creation payload. Field order
// here mirrors the order required fields are reported missing in.
type ProtocolData struct {
	CPF       string `json:"cpf"`
	Name      string `json:"nome"`
	BirthDate string `json:"nascimento"`
	Email     string `json:"email"`
	Phone     string `json:"telefone"`
	ZipCode   string `json:"cep"`
	Street    string `json:"endereco"`
	Number    string `json:"numero"`
	District  string `json:"bairro"`
	City      string `json:"cidade"`
	State     string `json:"estado"`

	Complement string `json:"complemento"`
	// ProductID optionally overrides the default certificate product.
	ProductID string `json:"produto"`
}

// ProtocolResult is the outcome of protocol creation.
type ProtocolResult struct {
	Protocol string `json:"protocolo"`
	Message  string `json:"mensagem,omitempty"`
}

// SolicitationResult is the outcome of the post-payment release and upload
// solicitation flow.
type SolicitationResult struct {
	Protocol  string `json:"protocolo"`
	UploadURL string `json:"urlUpload"`
	EmailSent bool   `json:"emailEnviado"`
	// Released reports whether payment release was confirmed. The upload
	// link is still issued when release fails, since Safeweb retries
	// release on its side.
	Released bool `json:"liberado"`
}
