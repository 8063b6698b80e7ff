package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Client struct {
	baseURL   string
	secretKey string
	hc        *http.Client
}

func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,

		// bounded timeout: a hung gateway call must not hold a request forever
		hc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type InitializeResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type VerifyResult struct {
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Reference string `json:"reference"`
}

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Initialize requests a hosted-checkout session. The caller's reference is
// passed through as Paystack's idempotency/correlation key.
func (c *Client) Initialize(ctx context.Context, email string, amountMinor int64, reference string, metadata map[string]string) (*InitializeResult, error) {
	body := map[string]any{
		"email":     email,
		"amount":    amountMinor,
		"reference": reference,
		"metadata":  metadata,
	}

	var result InitializeResult
	if err := c.post(ctx, "/transaction/initialize", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Verify queries the authoritative transaction status.
func (c *Client) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, fmt.Errorf("paystack verify request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paystack verify: %w", err)
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return nil, fmt.Errorf("paystack verify decode: %w", err)
	}
	if !api.Status {
		return nil, fmt.Errorf("paystack verify rejected: %s", api.Message)
	}

	var result VerifyResult
	if err := json.Unmarshal(api.Data, &result); err != nil {
		return nil, fmt.Errorf("paystack verify data: %w", err)
	}
	return &result, nil
}

// Refund reverses a completed transaction by its provider reference.
func (c *Client) Refund(ctx context.Context, transactionReference string) error {
	body := map[string]any{
		"transaction": transactionReference,
	}
	return c.post(ctx, "/refund", body, nil)
}

func (c *Client) post(ctx context.Context, path string, body any, dest any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("paystack marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("paystack request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("paystack %s: %w", path, err)
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return fmt.Errorf("paystack %s decode: %w", path, err)
	}
	if !api.Status {
		return fmt.Errorf("paystack %s rejected: %s", path, api.Message)
	}

	if dest != nil {
		if err := json.Unmarshal(api.Data, dest); err != nil {
			return fmt.Errorf("paystack %s data: %w", path, err)
		}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
}

// ValidSignature checks a webhook signature header: hex HMAC-SHA512 of the
// raw request body, compared in constant time.
func ValidSignature(secret string, rawBody []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
