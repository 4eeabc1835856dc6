package payments

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const chapaBaseURL = "https://api.chapa.co/v1" // sandbox and live share the domain; the key selects the environment

// ErrGatewayUnreachable marks transport-level failures (timeout, connection
// refused, unparsable body). Callers treat it as soft: nothing new is
// persisted and the request is safe to retry.
var ErrGatewayUnreachable = errors.New("chapa gateway unreachable")

type ChapaClient struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewChapaClient(secretKey string) *ChapaClient {
	return &ChapaClient{
		baseURL:   chapaBaseURL,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewChapaClientWithBaseURL exists for pointing the client at a test server.
func NewChapaClientWithBaseURL(secretKey, baseURL string) *ChapaClient {
	c := NewChapaClient(secretKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type InitializePayload struct {
	Amount        string        `json:"amount"`
	Currency      string        `json:"currency"`
	Email         string        `json:"email"`
	FirstName     string        `json:"first_name"`
	LastName      string        `json:"last_name"`
	TxRef         string        `json:"tx_ref"`
	ReturnURL     string        `json:"return_url"`
	CallbackURL   string        `json:"callback_url"`
	Customization Customization `json:"customization"`
}

type Customization struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ProviderResult carries the parsed Chapa envelope plus the raw body
// verbatim. Field extraction is deliberately permissive: missing or
// oddly-typed fields default to empty instead of failing, because the raw
// body is the authoritative record.
type ProviderResult struct {
	Raw           json.RawMessage
	Success       bool   // HTTP 200 and top-level status == "success"
	CheckoutURL   string // data.checkout_url, initialize only
	TransactionID string // data.id, initialize only
	DataStatus    string // data.status lowercased, verify only
}

// VerifiedSuccess is the dual-field rule for a confirmed payment: the
// envelope must report success AND the nested transaction status must be
// "success".
func (r *ProviderResult) VerifiedSuccess() bool {
	return r.Success && r.DataStatus == "success"
}

type providerEnvelope struct {
	Status string         `json:"status"`
	Data   map[string]any `json:"data"`
}

func (c *ChapaClient) Initialize(payload InitializePayload) (*ProviderResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initialize payload: %v", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+"/transaction/initialize", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create initialize request: %v", err)
	}
	c.setHeaders(req)

	return c.do(req)
}

func (c *ChapaClient) Verify(txRef string) (*ProviderResult, error) {
	req, err := http.NewRequest("GET", c.baseURL+"/transaction/verify/"+txRef, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create verify request: %v", err)
	}
	c.setHeaders(req)

	return c.do(req)
}

func (c *ChapaClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

func (c *ChapaClient) do(req *http.Request) (*ProviderResult, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %v", ErrGatewayUnreachable, err)
	}

	var envelope providerEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON response: %v", ErrGatewayUnreachable, err)
	}

	return &ProviderResult{
		Raw:           json.RawMessage(raw),
		Success:       resp.StatusCode == http.StatusOK && envelope.Status == "success",
		CheckoutURL:   stringField(envelope.Data, "checkout_url"),
		TransactionID: stringField(envelope.Data, "id"),
		DataStatus:    strings.ToLower(stringField(envelope.Data, "status")),
	}, nil
}

// stringField tolerates Chapa returning numbers where ids are expected.
func stringField(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
