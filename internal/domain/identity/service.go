// Package identity brokers the storefront to Safeweb: biometry checks, CPF
// registry lookups, certificate protocols and post-payment release.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"checkout/internal/domain/validation"
	"checkout/internal/infrastructure/safeweb"
	"checkout/internal/shared/pii"
)

// Service orchestrates the Safeweb certificate flows.
type Service struct {
	client safeweb.ClientInterface
}

// NewService creates an identity service.
func NewService(client safeweb.ClientInterface) *Service {
	return &Service{client: client}
}

// CheckBiometry reports whether the CPF can issue by facial biometry or will
// need a videoconference.
func (s *Service) CheckBiometry(ctx context.Context, cpf string) (*BiometryResult, error) {
	digits, err := validation.CPF(cpf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCPF, err)
	}

	has, err := s.client.ValidateBiometry(ctx, digits)
	if err != nil {
		return nil, err
	}

	result := &BiometryResult{CPF: digits, HasBiometry: has}
	if has {
		result.Instructions = "CPF possui biometria facial"
	} else {
		result.Instructions = "CPF não possui biometria. Será necessário videoconferência."
	}
	return result, nil
}

// LookupDocument pre-checks the CPF and birth date against the registry and
// maps Safeweb's result codes to storefront guidance. The registered name is
// only revealed on a fully valid pair.
func (s *Service) LookupDocument(ctx context.Context, cpf, birthDate string) (*LookupResult, error) {
	digits, err := validation.CPF(cpf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCPF, err)
	}

	consulta, err := s.client.ConsultaPrevia(ctx, digits, birthDate)
	if err != nil {
		return nil, err
	}

	result := &LookupResult{Code: consulta.Codigo}
	switch consulta.Codigo {
	case 0:
		result.Valid = true
		result.Name = strings.ToUpper(strings.TrimSpace(consulta.Mensagem))
		result.Message = "CPF válido"
	case 1:
		result.Message = "CPF inválido"
	case 2:
		result.Message = "CPF não encontrado na base da Receita Federal"
	case 3:
		result.Message = "CPF cancelado"
	case 4:
		result.Message = "Data de nascimento divergente"
	case 5:
		result.Message = "CPF nulo"
	case 700:
		result.Message = "Nome pendente de regularização"
	case 999:
		result.Message = "Erro na execução da consulta"
	default:
		result.Message = consulta.Mensagem
	}

	log.Printf("identity: consulta previa document=%s code=%d", pii.MaskDocument(digits), consulta.Codigo)
	return result, nil
}

// requiredProtocolFields is checked in order; the first missing one is
// reported.
var requiredProtocolFields = []struct {
	name  string
	value func(*ProtocolData) string
}{
	{"cpf", func(d *ProtocolData) string { return d.CPF }},
	{"nome", func(d *ProtocolData) string { return d.Name }},
	{"nascimento", func(d *ProtocolData) string { return d.BirthDate }},
	{"email", func(d *ProtocolData) string { return d.Email }},
	{"telefone", func(d *ProtocolData) string { return d.Phone }},
	{"cep", func(d *ProtocolData) string { return d.ZipCode }},
	{"endereco", func(d *ProtocolData) string { return d.Street }},
	{"numero", func(d *ProtocolData) string { return d.Number }},
	{"bairro", func(d *ProtocolData) string { return d.District }},
	{"cidade", func(d *ProtocolData) string { return d.City }},
	{"estado", func(d *ProtocolData) string { return d.State }},
}

// GenerateProtocol creates a certificate issuance protocol at Safeweb. The
// Brazilian phone number is split into DDD and subscriber parts, which is
// how Safeweb's partner API expects it.
func (s *Service) GenerateProtocol(ctx context.Context, data *ProtocolData) (*ProtocolResult, error) {
	for _, field := range requiredProtocolFields {
		if strings.TrimSpace(field.value(data)) == "" {
			return nil, &MissingFieldError{Field: field.name}
		}
	}

	digits, err := validation.CPF(data.CPF)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCPF, err)
	}

	ddd, number := splitPhone(data.Phone)

	resp, err := s.client.AddProtocol(ctx, &safeweb.ProtocolRequest{
		IDProduto:      data.ProductID,
		Nome:           data.Name,
		CPF:            digits,
		DataNascimento: data.BirthDate,
		Contato: safeweb.ProtocolContact{
			DDD:      ddd,
			Telefone: number,
			Email:    data.Email,
		},
		Endereco: safeweb.ProtocolAddress{
			Logradouro:  data.Street,
			Numero:      data.Number,
			Complemento: data.Complement,
			Bairro:      data.District,
			UF:          strings.ToUpper(data.State),
			Cidade:      data.City,
			CEP:         validation.OnlyDigits(data.ZipCode),
		},
	})
	if err != nil {
		return nil, err
	}
	if resp.Protocolo == "" {
		return nil, fmt.Errorf("identity: protocol creation returned no protocol")
	}

	log.Printf("identity: protocol created protocol=%s document=%s", resp.Protocolo, pii.MaskDocument(digits))
	return &ProtocolResult{Protocol: resp.Protocolo, Message: "Protocolo gerado com sucesso"}, nil
}

// splitPhone breaks a Brazilian phone into area code and subscriber number.
func splitPhone(phone string) (ddd, number string) {
	digits := validation.OnlyDigits(phone)
	if len(digits) < 3 {
		return "", digits
	}
	return digits[:2], digits[2:]
}

// ReleasePayment confirms payment on the protocol so Safeweb unblocks
// issuance.
func (s *Service) ReleasePayment(ctx context.Context, protocol string) error {
	if strings.TrimSpace(protocol) == "" {
		return ErrMissingProtocol
	}
	return s.client.UpdateLiberacao(ctx, protocol)
}

// CreateUploadSolicitation runs the post-payment flow: release the protocol,
// then request the Hope upload link. Release failure is logged but never
// blocks the link, because Safeweb reconciles releases asynchronously and
// the holder must not be stranded without an upload URL.
func (s *Service) CreateUploadSolicitation(ctx context.Context, protocol string) (*SolicitationResult, error) {
	if strings.TrimSpace(protocol) == "" {
		return nil, ErrMissingProtocol
	}

	released := true
	if err := s.client.UpdateLiberacao(ctx, protocol); err != nil {
		released = false
		log.Printf("identity: payment release failed for protocol %s: %v", protocol, err)
	}

	solicitation, err := s.client.CreateHopeSolicitation(ctx, protocol)
	if err != nil {
		return nil, err
	}

	return &SolicitationResult{
		Protocol:  protocol,
		UploadURL: solicitation.URL,
		EmailSent: solicitation.EmailSend,
		Released:  released,
	}, nil
}

// IsClientFault reports whether err should surface as a 400.
func IsClientFault(err error) bool {
	var missingField *MissingFieldError
	return errors.As(err, &missingField) ||
		errors.Is(err, ErrInvalidCPF) ||
		errors.Is(err, ErrMissingProtocol)
}
