package safeweb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// newTestClient points every Safeweb endpoint at the same test server.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(Config{
		Username:          "user",
		Password:          "secret",
		BaseURL:           server.URL,
		AuthURL:           server.URL + "/token",
		CNPJAR:            "11222333000144",
		PartnerCode:       "PARC01",
		ProductECPFA1:     "SW-ECPF-A1",
		HopeURL:           server.URL,
		AttendancePlaceID: 42,
	}, 5*time.Second)
	return client, server
}

func serveToken(t *testing.T, w http.ResponseWriter, r *http.Request, tokenCalls *atomic.Int32) bool {
	t.Helper()
	if r.URL.Path != "/token" {
		return false
	}
	tokenCalls.Add(1)
	if r.Header.Get("Authorization") == "" {
		t.Error("token exchange missing Basic credentials")
	}
	json.NewEncoder(w).Encode(map[string]any{"tokenAcesso": "tok-123", "expiraEm": 3600})
	return true
}

func TestTokenIsCachedAcrossRequests(t *testing.T) {
	var tokenCalls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if serveToken(t, w, r, &tokenCalls) {
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		json.NewEncoder(w).Encode(true)
	}))

	for i := 0; i < 3; i++ {
		if _, err := client.ValidateBiometry(context.Background(), "52998224725"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := tokenCalls.Load(); got != 1 {
		t.Errorf("token exchanges = %d, want 1", got)
	}
}

func TestTokenRefreshesAfterExpiry(t *testing.T) {
	var tokenCalls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if serveToken(t, w, r, &tokenCalls) {
			return
		}
		json.NewEncoder(w).Encode(true)
	}))

	if _, err := client.ValidateBiometry(context.Background(), "52998224725"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	client.mu.Lock()
	client.tokenExpiry = time.Now().Add(-time.Second)
	client.mu.Unlock()
	if _, err := client.ValidateBiometry(context.Background(), "52998224725"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tokenCalls.Load(); got != 2 {
		t.Errorf("token exchanges = %d, want 2", got)
	}
}

func TestValidateBiometryResponseShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"bare bool true", `true`, true},
		{"bare bool false", `false`, false},
		{"quoted string", `"true"`, true},
		{"quoted string false", `"false"`, false},
		{"object", `{"temBiometria": true}`, true},
		{"object false", `{"temBiometria": false}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tokenCalls atomic.Int32
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if serveToken(t, w, r, &tokenCalls) {
					return
				}
				w.Write([]byte(tt.body))
			}))

			got, err := client.ValidateBiometry(context.Background(), "52998224725")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ValidateBiometry() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConsultaPreviaFieldCasings(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		code    int
		message string
	}{
		{"upper case fields", `{"Codigo": 0, "Mensagem": "MARIA SOUZA"}`, 0, "MARIA SOUZA"},
		{"lower case fields", `{"codigo": 4, "mensagem": "Data divergente"}`, 4, "Data divergente"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tokenCalls atomic.Int32
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if serveToken(t, w, r, &tokenCalls) {
					return
				}
				var payload map[string]any
				json.NewDecoder(r.Body).Decode(&payload)
				if payload["DocumentoTipo"] != "1" {
					t.Errorf("DocumentoTipo = %v, want \"1\"", payload["DocumentoTipo"])
				}
				w.Write([]byte(tt.body))
			}))

			got, err := client.ConsultaPrevia(context.Background(), "52998224725", "1990-05-20")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Codigo != tt.code || got.Mensagem != tt.message {
				t.Errorf("got (%d, %q), want (%d, %q)", got.Codigo, got.Mensagem, tt.code, tt.message)
			}
		})
	}
}

func TestAddProtocolFillsDefaults(t *testing.T) {
	var tokenCalls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if serveToken(t, w, r, &tokenCalls) {
			return
		}
		if r.URL.Path != "/Service/Microservice/Shared/Partner/api/Add/3" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req ProtocolRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.CnpjAR != "11222333000144" {
			t.Errorf("CnpjAR = %q, want config default", req.CnpjAR)
		}
		if req.CodigoParceiro != "PARC01" {
			t.Errorf("CodigoParceiro = %q, want config default", req.CodigoParceiro)
		}
		if req.IDProduto != "SW-ECPF-A1" {
			t.Errorf("idProduto = %q, want config default", req.IDProduto)
		}
		if req.Contato.DDD != "11" || req.Contato.Telefone != "999998888" {
			t.Errorf("Contato = %+v, want nested phone fields", req.Contato)
		}
		if req.Endereco.UF != "SP" {
			t.Errorf("Endereco = %+v, want nested address fields", req.Endereco)
		}
		json.NewEncoder(w).Encode("2025123456")
	}))

	resp, err := client.AddProtocol(context.Background(), &ProtocolRequest{
		CPF:  "52998224725",
		Nome: "Maria Souza",
		Contato: ProtocolContact{
			DDD:      "11",
			Telefone: "999998888",
			Email:    "maria@example.com",
		},
		Endereco: ProtocolAddress{
			Logradouro: "Av. Paulista",
			Numero:     "1000",
			UF:         "SP",
			Cidade:     "São Paulo",
			CEP:        "01310100",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Protocolo != "2025123456" {
		t.Errorf("Protocolo = %q, want %q", resp.Protocolo, "2025123456")
	}
}

func TestAddProtocolScalarResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"quoted handle", `"2025123456"`, "2025123456"},
		{"numeric handle", `2025123456`, "2025123456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tokenCalls atomic.Int32
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if serveToken(t, w, r, &tokenCalls) {
					return
				}
				w.Write([]byte(tt.body))
			}))

			resp, err := client.AddProtocol(context.Background(), &ProtocolRequest{CPF: "52998224725"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Protocolo != tt.want {
				t.Errorf("Protocolo = %q, want %q", resp.Protocolo, tt.want)
			}
		})
	}
}

func TestUpdateLiberacao(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"confirmed", `true`, false},
		{"confirmed quoted", `"true"`, false},
		{"denied", `false`, true},
		{"unexpected body", `{"ok": true}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tokenCalls atomic.Int32
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if serveToken(t, w, r, &tokenCalls) {
					return
				}
				if r.URL.Path != "/Service/Microservice/Shared/Partner/api/UpdateLiberacao" {
					t.Errorf("path = %q", r.URL.Path)
				}
				var payload map[string]string
				json.NewDecoder(r.Body).Decode(&payload)
				if payload["CNPJ"] != "11222333000144" {
					t.Errorf("CNPJ = %q, want AR document", payload["CNPJ"])
				}
				w.Write([]byte(tt.body))
			}))

			err := client.UpdateLiberacao(context.Background(), "2025123456")
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateHopeSolicitation(t *testing.T) {
	var tokenCalls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if serveToken(t, w, r, &tokenCalls) {
			return
		}
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["protocol"] != "2025123456" {
			t.Errorf("protocol = %v", payload["protocol"])
		}
		if payload["attendancePlaceId"] != float64(42) {
			t.Errorf("attendancePlaceId = %v, want 42", payload["attendancePlaceId"])
		}
		if payload["aciRemovalCandidate"] != false {
			t.Errorf("aciRemovalCandidate = %v, want false", payload["aciRemovalCandidate"])
		}
		json.NewEncoder(w).Encode(HopeSolicitation{URL: "https://hope.example/upload/abc", EmailSend: true})
	}))

	got, err := client.CreateHopeSolicitation(context.Background(), "2025123456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.URL == "" || !got.EmailSend {
		t.Errorf("unexpected solicitation: %+v", got)
	}
}
