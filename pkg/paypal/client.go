package paypal

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"

	"github.com/prostore-labs/storefront-backend/pkg/config"
	"github.com/prostore-labs/storefront-backend/pkg/logger"
)

// StatusCompleted is PayPal's settled-capture sentinel.
const StatusCompleted = "COMPLETED"

var (
	errClientIDRequired = errors.New("paypal client id is required")
	errSecretRequired   = errors.New("paypal app secret is required")
)

// Client talks to PayPal's Orders v2 REST API.
type Client struct {
	baseURL   string
	clientID  string
	appSecret string
	httpc     *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// OrderResult is the remote order PayPal creates before client approval.
type OrderResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CaptureResult reports a finished capture attempt.
type CaptureResult struct {
	ID         string
	Status     string
	PayerEmail string
	Amount     decimal.Decimal
}

// NewClient builds a PayPal client from the configured credentials.
func NewClient(ctx context.Context, cfg config.PayPalConfig, logg *logger.Logger) (*Client, error) {
	clientID := strings.TrimSpace(cfg.ClientID)
	if clientID == "" {
		return nil, errClientIDRequired
	}
	appSecret := strings.TrimSpace(cfg.AppSecret)
	if appSecret == "" {
		return nil, errSecretRequired
	}

	baseURL := strings.TrimRight(cfg.APIURL, "/")
	if baseURL == "" {
		baseURL = "https://api-m.sandbox.paypal.com"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("paypal client initialized (%s)", baseURL))
	}

	return &Client{
		baseURL:   baseURL,
		clientID:  clientID,
		appSecret: appSecret,
		httpc:     &http.Client{Timeout: timeout},
	}, nil
}

// CreateOrder creates a remote CAPTURE-intent order for the given amount.
func (c *Client) CreateOrder(ctx context.Context, amount decimal.Decimal) (*OrderResult, error) {
	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{
			{
				"amount": map[string]string{
					"currency_code": "USD",
					// PayPal requires a string with 2 decimal places.
					"value": amount.StringFixed(2),
				},
			},
		},
	}

	var result OrderResult
	if err := c.post(ctx, "/v2/checkout/orders", body, &result); err != nil {
		return nil, err
	}
	if result.ID == "" {
		return nil, fmt.Errorf("paypal create order: empty order id in response")
	}
	return &result, nil
}

type captureResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	Payer         struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				Amount struct {
					Value string `json:"value"`
				} `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

// CapturePayment captures a previously approved remote order.
func (c *Client) CapturePayment(ctx context.Context, remoteOrderID string) (*CaptureResult, error) {
	if strings.TrimSpace(remoteOrderID) == "" {
		return nil, fmt.Errorf("paypal capture: remote order id is required")
	}

	var resp captureResponse
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", remoteOrderID)
	if err := c.post(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	result := &CaptureResult{
		ID:         resp.ID,
		Status:     resp.Status,
		PayerEmail: resp.Payer.EmailAddress,
	}
	if len(resp.PurchaseUnits) > 0 && len(resp.PurchaseUnits[0].Payments.Captures) > 0 {
		raw := resp.PurchaseUnits[0].Payments.Captures[0].Amount.Value
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("paypal capture: invalid amount %q: %w", raw, err)
		}
		result.Amount = amount
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, path string, body any, dest any) error {
	token, err := c.accessTokenLocked(ctx)
	if err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("paypal: encode request: %w", err)
		}
	}

	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpc.Do(req)
		if err != nil {
			// network failures are retryable
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("paypal %s: status %d: %s", path, resp.StatusCode, string(raw)))
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("paypal %s: status %d: %s", path, resp.StatusCode, string(raw))
		}
		if dest == nil {
			return nil
		}
		if err := json.Unmarshal(raw, dest); err != nil {
			return fmt.Errorf("paypal %s: decode response: %w", path, err)
		}
		return nil
	})
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *Client) accessTokenLocked(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/oauth2/token", strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", err
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.appSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal token: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("paypal token: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal token: status %d: %s", resp.StatusCode, string(raw))
	}

	var token tokenResponse
	if err := json.Unmarshal(raw, &token); err != nil {
		return "", fmt.Errorf("paypal token: decode response: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("paypal token: empty access token")
	}

	c.accessToken = token.AccessToken
	// refresh one minute early
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - time.Minute)
	return c.accessToken, nil
}
