package identity

import (
	"context"
	"errors"
	"testing"

	"checkout/internal/infrastructure/safeweb"
)

// mockProvider implements safeweb.ClientInterface with settable behavior.
type mockProvider struct {
	ValidateBiometryFunc       func(ctx context.Context, cpf string) (bool, error)
	ConsultaPreviaFunc         func(ctx context.Context, cpf, birthDate string) (*safeweb.ConsultaResult, error)
	AddProtocolFunc            func(ctx context.Context, req *safeweb.ProtocolRequest) (*safeweb.ProtocolResponse, error)
	UpdateLiberacaoFunc        func(ctx context.Context, protocol string) error
	CreateHopeSolicitationFunc func(ctx context.Context, protocol string) (*safeweb.HopeSolicitation, error)
}

func (m *mockProvider) ValidateBiometry(ctx context.Context, cpf string) (bool, error) {
	return m.ValidateBiometryFunc(ctx, cpf)
}

func (m *mockProvider) ConsultaPrevia(ctx context.Context, cpf, birthDate string) (*safeweb.ConsultaResult, error) {
	return m.ConsultaPreviaFunc(ctx, cpf, birthDate)
}

func (m *mockProvider) AddProtocol(ctx context.Context, req *safeweb.ProtocolRequest) (*safeweb.ProtocolResponse, error) {
	return m.AddProtocolFunc(ctx, req)
}

func (m *mockProvider) UpdateLiberacao(ctx context.Context, protocol string) error {
	return m.UpdateLiberacaoFunc(ctx, protocol)
}

func (m *mockProvider) CreateHopeSolicitation(ctx context.Context, protocol string) (*safeweb.HopeSolicitation, error) {
	return m.CreateHopeSolicitationFunc(ctx, protocol)
}

func validProtocolData() *ProtocolData {
	return &ProtocolData{
		CPF:       "529.982.247-25",
		Name:      "Maria Souza",
		BirthDate: "1990-05-20",
		Email:     "maria@example.com",
		Phone:     "(11) 99999-8888",
		ZipCode:   "01310-100",
		Street:    "Av. Paulista",
		Number:    "1000",
		District:  "Bela Vista",
		City:      "São Paulo",
		State:     "sp",
	}
}

func TestCheckBiometry(t *testing.T) {
	tests := []struct {
		name        string
		has         bool
		wantGuide   string
	}{
		{"with biometry", true, "CPF possui biometria facial"},
		{"without biometry", false, "CPF não possui biometria. Será necessário videoconferência."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&mockProvider{
				ValidateBiometryFunc: func(_ context.Context, cpf string) (bool, error) {
					if cpf != "52998224725" {
						t.Errorf("cpf = %q, want normalized digits", cpf)
					}
					return tt.has, nil
				},
			})

			result, err := svc.CheckBiometry(context.Background(), "529.982.247-25")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.HasBiometry != tt.has {
				t.Errorf("HasBiometry = %v, want %v", result.HasBiometry, tt.has)
			}
			if result.Instructions != tt.wantGuide {
				t.Errorf("Instructions = %q, want %q", result.Instructions, tt.wantGuide)
			}
		})
	}
}

func TestCheckBiometryRejectsInvalidCPF(t *testing.T) {
	svc := NewService(&mockProvider{})
	_, err := svc.CheckBiometry(context.Background(), "123")
	if !errors.Is(err, ErrInvalidCPF) {
		t.Fatalf("expected ErrInvalidCPF, got %v", err)
	}
	if !IsClientFault(err) {
		t.Error("invalid CPF should be a client fault")
	}
}

func TestLookupDocumentCodeTable(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		mensagem string
		valid    bool
		wantName string
		wantMsg  string
	}{
		{"valid reveals name", 0, "  maria souza  ", true, "MARIA SOUZA", "CPF válido"},
		{"invalid", 1, "", false, "", "CPF inválido"},
		{"not found", 2, "", false, "", "CPF não encontrado na base da Receita Federal"},
		{"cancelled", 3, "", false, "", "CPF cancelado"},
		{"birth date mismatch", 4, "", false, "", "Data de nascimento divergente"},
		{"null", 5, "", false, "", "CPF nulo"},
		{"name pending", 700, "", false, "", "Nome pendente de regularização"},
		{"execution error", 999, "", false, "", "Erro na execução da consulta"},
		{"unknown passes message through", 42, "Retorno inesperado", false, "", "Retorno inesperado"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&mockProvider{
				ConsultaPreviaFunc: func(_ context.Context, _, _ string) (*safeweb.ConsultaResult, error) {
					return &safeweb.ConsultaResult{Codigo: tt.code, Mensagem: tt.mensagem}, nil
				},
			})

			result, err := svc.LookupDocument(context.Background(), "52998224725", "1990-05-20")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Valid != tt.valid {
				t.Errorf("Valid = %v, want %v", result.Valid, tt.valid)
			}
			if result.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", result.Name, tt.wantName)
			}
			if result.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", result.Message, tt.wantMsg)
			}
		})
	}
}

func TestGenerateProtocolReportsFirstMissingField(t *testing.T) {
	svc := NewService(&mockProvider{})

	data := validProtocolData()
	data.BirthDate = ""
	data.Email = ""

	_, err := svc.GenerateProtocol(context.Background(), data)
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected *MissingFieldError, got %v", err)
	}
	if missing.Field != "nascimento" {
		t.Errorf("Field = %q, want first missing in order", missing.Field)
	}
}

func TestGenerateProtocolSplitsPhone(t *testing.T) {
	var captured *safeweb.ProtocolRequest
	svc := NewService(&mockProvider{
		AddProtocolFunc: func(_ context.Context, req *safeweb.ProtocolRequest) (*safeweb.ProtocolResponse, error) {
			captured = req
			return &safeweb.ProtocolResponse{Protocolo: "2025123456"}, nil
		},
	})

	result, err := svc.GenerateProtocol(context.Background(), validProtocolData())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.Contato.DDD != "11" || captured.Contato.Telefone != "999998888" {
		t.Errorf("phone split = (%q, %q), want (11, 999998888)", captured.Contato.DDD, captured.Contato.Telefone)
	}
	if captured.Endereco.CEP != "01310100" {
		t.Errorf("CEP = %q, want digits only", captured.Endereco.CEP)
	}
	if captured.Endereco.UF != "SP" {
		t.Errorf("UF = %q, want upper case", captured.Endereco.UF)
	}
	if result.Protocol != "2025123456" {
		t.Errorf("Protocol = %q", result.Protocol)
	}
}

func TestGenerateProtocolEmptyProtocolIsServerFault(t *testing.T) {
	svc := NewService(&mockProvider{
		AddProtocolFunc: func(_ context.Context, _ *safeweb.ProtocolRequest) (*safeweb.ProtocolResponse, error) {
			return &safeweb.ProtocolResponse{}, nil
		},
	})

	_, err := svc.GenerateProtocol(context.Background(), validProtocolData())
	if err == nil {
		t.Fatal("expected error when no protocol is returned")
	}
	if IsClientFault(err) {
		t.Error("provider refusal should not be a client fault")
	}
}

func TestCreateUploadSolicitationReleaseFailureIsNonFatal(t *testing.T) {
	svc := NewService(&mockProvider{
		UpdateLiberacaoFunc: func(_ context.Context, _ string) error {
			return errors.New("release denied")
		},
		CreateHopeSolicitationFunc: func(_ context.Context, protocol string) (*safeweb.HopeSolicitation, error) {
			return &safeweb.HopeSolicitation{URL: "https://hope.example/upload/abc", EmailSend: true}, nil
		},
	})

	result, err := svc.CreateUploadSolicitation(context.Background(), "2025123456")
	if err != nil {
		t.Fatalf("release failure should not abort solicitation, got %v", err)
	}
	if result.Released {
		t.Error("Released should be false when release failed")
	}
	if result.UploadURL == "" || !result.EmailSent {
		t.Errorf("result = %+v", result)
	}
}

func TestCreateUploadSolicitationRequiresProtocol(t *testing.T) {
	svc := NewService(&mockProvider{})
	_, err := svc.CreateUploadSolicitation(context.Background(), "  ")
	if !errors.Is(err, ErrMissingProtocol) {
		t.Fatalf("expected ErrMissingProtocol, got %v", err)
	}
}

func TestReleasePayment(t *testing.T) {
	released := ""
	svc := NewService(&mockProvider{
		UpdateLiberacaoFunc: func(_ context.Context, protocol string) error {
			released = protocol
			return nil
		},
	})

	if err := svc.ReleasePayment(context.Background(), "2025123456"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if released != "2025123456" {
		t.Errorf("released = %q", released)
	}

	if err := svc.ReleasePayment(context.Background(), ""); !errors.Is(err, ErrMissingProtocol) {
		t.Errorf("expected ErrMissingProtocol, got %v", err)
	}
}
