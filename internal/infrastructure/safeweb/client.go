// Package safeweb implements the HTTP client for the Safeweb certification
// authority APIs: biometry checks, CPF registry lookups, certificate
// protocols, payment release and Hope video-upload solicitations.
//
// Safeweb issues short-lived bearer tokens from a Basic-auth exchange. The
// client caches the token and refreshes it before expiry, so callers never
// deal with authentication.
package safeweb

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	defaultTimeout = 30 * time.Second

	// tokenExpiryMargin renews the token this long before Safeweb's
	// declared expiry, so in-flight requests never race the cutoff.
	tokenExpiryMargin = 120 * time.Second
)

// Config holds Safeweb credentials and endpoints.
type Config struct {
	Username string
	Password string
	// BaseURL is the API host for biometry, consulta and protocol calls.
	BaseURL string
	// AuthURL is the token exchange endpoint host.
	AuthURL string
	// CNPJAR identifies the registration authority on release calls.
	CNPJAR string
	// PartnerCode identifies the partner on protocol creation.
	PartnerCode string
	// ProductECPFA1 is Safeweb's internal product ID for the e-CPF A1.
	ProductECPFA1 string
	// HopeURL is the host of the Hope upload solicitation API.
	HopeURL string
	// AttendancePlaceID is the service desk used on Hope solicitations.
	AttendancePlaceID int
}

// Client handles communication with the Safeweb APIs.
type Client struct {
	httpClient *http.Client
	cfg        Config

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a Safeweb client. Zero timeout falls back to the
// default.
func NewClient(cfg Config, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		cfg:        cfg,
	}
}

type tokenResponse struct {
	TokenAcesso string `json:"tokenAcesso"`
	ExpiraEm    int    `json:"expiraEm"`
}

// ensureValidToken returns a cached token or performs the Basic-auth
// exchange when the cache is empty or close to expiry.
func (c *Client) ensureValidToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	credentials := base64.StdEncoding.EncodeToString([]byte(c.cfg.Username + ":" + c.cfg.Password))
	req.Header.Set("Authorization", "Basic "+credentials)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("safeweb: token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("safeweb: token exchange returned status %d: %s", resp.StatusCode, string(body))
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("failed to unmarshal token response: %w", err)
	}
	if token.TokenAcesso == "" {
		return "", fmt.Errorf("safeweb: token exchange returned empty token")
	}

	lifetime := time.Duration(token.ExpiraEm) * time.Second
	if lifetime > tokenExpiryMargin {
		lifetime -= tokenExpiryMargin
	}
	c.token = token.TokenAcesso
	c.tokenExpiry = time.Now().Add(lifetime)
	return c.token, nil
}

// doJSON issues an authenticated request and returns the raw response body
// for statuses < 300, or an error describing the failure.
func (c *Client) doJSON(ctx context.Context, method, url string, payload any) ([]byte, error) {
	token, err := c.ensureValidToken(ctx)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("safeweb: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("safeweb: %s returned status %d: %s", req.URL.Path, resp.StatusCode, string(data))
	}
	return data, nil
}

// ValidateBiometry reports whether the CPF already has facial biometry
// registered. Safeweb returns this in three shapes depending on the API
// version: a bare bool, the string "true"/"false", or an object with a
// temBiometria field. All three are normalized here.
func (c *Client) ValidateBiometry(ctx context.Context, cpf string) (bool, error) {
	url := fmt.Sprintf("%s/Service/Microservice/Shared/Partner/api/ValidateBiometry/%s", c.cfg.BaseURL, cpf)
	body, err := c.doJSON(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}

	var asBool bool
	if err := json.Unmarshal(body, &asBool); err == nil {
		return asBool, nil
	}

	var asString string
	if err := json.Unmarshal(body, &asString); err == nil {
		return strings.EqualFold(strings.TrimSpace(asString), "true"), nil
	}

	var asObject struct {
		TemBiometria bool `json:"temBiometria"`
	}
	if err := json.Unmarshal(body, &asObject); err == nil {
		return asObject.TemBiometria, nil
	}

	return false, fmt.Errorf("safeweb: unrecognized biometry response: %s", string(body))
}

// ConsultaResult is the outcome of a registry pre-check, already reduced to
// the code/message pair regardless of the field casing Safeweb used.
type ConsultaResult struct {
	Codigo   int
	Mensagem string
}

// ConsultaPrevia runs the CPF registry pre-check against birth date.
func (c *Client) ConsultaPrevia(ctx context.Context, cpf, birthDate string) (*ConsultaResult, error) {
	url := fmt.Sprintf("%s/Service/Microservice/Shared/ConsultaPrevia/api/RealizarConsultaPrevia", c.cfg.BaseURL)
	payload := map[string]any{
		"CPF":           cpf,
		"DocumentoTipo": "1",
		"DtNascimento":  birthDate,
	}

	body, err := c.doJSON(ctx, http.MethodPost, url, payload)
	if err != nil {
		return nil, err
	}

	// Field casing differs between Safeweb environments.
	var raw struct {
		Codigo      *int   `json:"Codigo"`
		CodigoLower *int   `json:"codigo"`
		Mensagem    string `json:"Mensagem"`
		MsgLower    string `json:"mensagem"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal consulta response: %w", err)
	}

	result := &ConsultaResult{Mensagem: raw.Mensagem}
	if result.Mensagem == "" {
		result.Mensagem = raw.MsgLower
	}
	switch {
	case raw.Codigo != nil:
		result.Codigo = *raw.Codigo
	case raw.CodigoLower != nil:
		result.Codigo = *raw.CodigoLower
	default:
		return nil, fmt.Errorf("safeweb: consulta response missing result code: %s", string(body))
	}
	return result, nil
}

// ProtocolContact carries the holder's contact block of a protocol request.
type ProtocolContact struct {
	DDD      string `json:"DDD"`
	Telefone string `json:"Telefone"`
	Email    string `json:"Email"`
}

// ProtocolAddress carries the holder's address block of a protocol request.
type ProtocolAddress struct {
	Logradouro  string `json:"Logradouro"`
	Numero      string `json:"Numero"`
	Complemento string `json:"Complemento"`
	Bairro      string `json:"Bairro"`
	UF          string `json:"UF"`
	Cidade      string `json:"Cidade"`
	CEP         string `json:"CEP"`
}

// ProtocolRequest is the payload for certificate protocol creation. Field
// names and nesting follow Safeweb's partner API contract.
type ProtocolRequest struct {
	CnpjAR         string          `json:"CnpjAR"`
	CodigoParceiro string          `json:"CodigoParceiro"`
	IDProduto      string          `json:"idProduto"`
	Nome           string          `json:"Nome"`
	CPF            string          `json:"CPF"`
	DataNascimento string          `json:"DataNascimento"`
	Contato        ProtocolContact `json:"Contato"`
	Endereco       ProtocolAddress `json:"Endereco"`
}

// ProtocolResponse is the outcome of protocol creation.
type ProtocolResponse struct {
	Protocolo string
}

// AddProtocol creates a certificate issuance protocol for the holder. The
// response body is the bare protocol handle, a JSON string or number.
func (c *Client) AddProtocol(ctx context.Context, req *ProtocolRequest) (*ProtocolResponse, error) {
	if req.CnpjAR == "" {
		req.CnpjAR = c.cfg.CNPJAR
	}
	if req.CodigoParceiro == "" {
		req.CodigoParceiro = c.cfg.PartnerCode
	}
	if req.IDProduto == "" {
		req.IDProduto = c.cfg.ProductECPFA1
	}

	url := fmt.Sprintf("%s/Service/Microservice/Shared/Partner/api/Add/3", c.cfg.BaseURL)
	body, err := c.doJSON(ctx, http.MethodPost, url, req)
	if err != nil {
		return nil, err
	}

	var protocol string
	if err := json.Unmarshal(body, &protocol); err != nil {
		var num json.Number
		if err := json.Unmarshal(body, &num); err != nil {
			return nil, fmt.Errorf("safeweb: unrecognized protocol response: %s", string(body))
		}
		protocol = num.String()
	}
	return &ProtocolResponse{Protocolo: protocol}, nil
}

// UpdateLiberacao releases the protocol for issuance after payment. Safeweb
// confirms with true, as a bare boolean or the quoted string; anything else
// is a failure.
func (c *Client) UpdateLiberacao(ctx context.Context, protocol string) error {
	url := fmt.Sprintf("%s/Service/Microservice/Shared/Partner/api/UpdateLiberacao", c.cfg.BaseURL)
	payload := map[string]string{
		"Protocolo": protocol,
		"CNPJ":      c.cfg.CNPJAR,
	}

	body, err := c.doJSON(ctx, http.MethodPost, url, payload)
	if err != nil {
		return err
	}
	answer := strings.TrimSpace(string(body))
	if answer != "true" && answer != `"true"` {
		return fmt.Errorf("safeweb: release not confirmed for protocol %s: %s", protocol, string(body))
	}
	return nil
}

// HopeSolicitation is the outcome of a Hope video-upload solicitation.
type HopeSolicitation struct {
	URL       string `json:"url"`
	EmailSend bool   `json:"emailSend"`
}

// CreateHopeSolicitation asks the Hope service for a document/video upload
// link for the protocol, optionally mailed to the holder by Safeweb.
func (c *Client) CreateHopeSolicitation(ctx context.Context, protocol string) (*HopeSolicitation, error) {
	url := fmt.Sprintf("%s/api/v1/solicitation", c.cfg.HopeURL)
	payload := map[string]any{
		"protocol":            protocol,
		"attendancePlaceId":   c.cfg.AttendancePlaceID,
		"aciRemovalCandidate": false,
	}

	body, err := c.doJSON(ctx, http.MethodPost, url, payload)
	if err != nil {
		return nil, err
	}

	var resp HopeSolicitation
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal solicitation response: %w", err)
	}
	return &resp, nil
}
