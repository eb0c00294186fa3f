package safeweb

import "context"

// ClientInterface defines the Safeweb operations used by the identity
// service. Allows mocking the provider in tests.
type ClientInterface interface {
	// ValidateBiometry reports whether the CPF has facial biometry
	// registered.
	ValidateBiometry(ctx context.Context, cpf string) (bool, error)

	// ConsultaPrevia runs the CPF registry pre-check against birth date.
	ConsultaPrevia(ctx context.Context, cpf, birthDate string) (*ConsultaResult, error)

	// AddProtocol creates a certificate issuance protocol.
	AddProtocol(ctx context.Context, req *ProtocolRequest) (*ProtocolResponse, error)

	// UpdateLiberacao releases a paid protocol for issuance.
	UpdateLiberacao(ctx context.Context, protocol string) error

	// CreateHopeSolicitation requests a document upload link for the
	// protocol.
	CreateHopeSolicitation(ctx context.Context, protocol string) (*HopeSolicitation, error)
}
