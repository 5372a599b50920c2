package gocardless

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gc-invoice-driver/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	sandboxBaseURL = "https://api-sandbox.gocardless.com"
	liveBaseURL    = "https://api.gocardless.com"
	apiVersion     = "2015-07-06"
)

// Client wraps the GoCardless REST API. It performs no retries; retry policy
// belongs to the caller.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

func NewClient(accessToken string, env Environment) *Client {
	if accessToken == "" {
		logger.L().Warn("GoCardless access token is empty")
	}

	baseURL := sandboxBaseURL
	if env == EnvironmentLive {
		baseURL = liveBaseURL
	}

	return &Client{
		accessToken: accessToken,
		baseURL:     baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// apiError is the wire shape of a GoCardless rejection.
type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do issues one API call. Request bodies are wrapped in the resource envelope
// GoCardless expects ({"payments": {...}}); responses are unwrapped from
// respEnvelope into out. Flow actions wrap requests in "data" but answer with
// the ordinary resource envelope, hence the two envelope names.
func (c *Client) do(ctx context.Context, method, path, reqEnvelope string, body interface{}, respEnvelope string, out interface{}) error {
	log := logger.L().With(
		zap.String("method", method),
		zap.String("path", path),
	)

	var reader io.Reader
	if body != nil {
		wrapped := map[string]interface{}{reqEnvelope: body}
		jsonBody, err := json.Marshal(wrapped)
		if err != nil {
			return &Error{Kind: KindConnection, Message: "failed to encode request", Err: err}
		}
		reader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Kind: KindConnection, Message: "failed to build request", Err: err}
	}

	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("GoCardless-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost || method == http.MethodPut {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("GoCardless request failed", zap.Error(err))
		return &Error{Kind: KindConnection, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return &Error{Kind: KindConnection, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.Error("GoCardless returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)

		var rejection apiError
		if err := json.Unmarshal(bodyBytes, &rejection); err != nil || rejection.Error.Message == "" {
			return &Error{
				Kind:    KindMalformedResponse,
				Message: fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(bodyBytes)),
			}
		}
		return &Error{
			Kind:    KindAPI,
			Code:    rejection.Error.Type,
			Message: rejection.Error.Message,
		}
	}

	if out == nil {
		return nil
	}

	var envelopes map[string]json.RawMessage
	if err := json.Unmarshal(bodyBytes, &envelopes); err != nil {
		log.Error("Failed decoding GoCardless response", zap.Error(err))
		return &Error{Kind: KindMalformedResponse, Message: "undecodable response body", Err: err}
	}

	raw, ok := envelopes[respEnvelope]
	if !ok {
		return &Error{Kind: KindMalformedResponse, Message: fmt.Sprintf("response missing %q envelope", respEnvelope)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindMalformedResponse, Message: "undecodable resource body", Err: err}
	}
	return nil
}

// CreateRedirectFlow starts a new mandate authorization flow. The returned
// RedirectURL is where the payer must be sent.
func (c *Client) CreateRedirectFlow(ctx context.Context, params *RedirectFlowParams) (*RedirectFlow, error) {
	var flow RedirectFlow
	if err := c.do(ctx, http.MethodPost, "/redirect_flows", "redirect_flows", params, "redirect_flows", &flow); err != nil {
		return nil, err
	}

	logger.L().Info("GoCardless redirect flow created",
		zap.String("flow_id", flow.ID),
	)
	return &flow, nil
}

// CompleteRedirectFlow finishes an authorization flow. GoCardless validates
// the anti-forgery session token and, on agreement, materializes a mandate.
func (c *Client) CompleteRedirectFlow(ctx context.Context, flowID, sessionToken string) (*RedirectFlow, error) {
	path := fmt.Sprintf("/redirect_flows/%s/actions/complete", flowID)
	body := map[string]string{"session_token": sessionToken}

	var flow RedirectFlow
	if err := c.do(ctx, http.MethodPost, path, "data", body, "redirect_flows", &flow); err != nil {
		return nil, err
	}

	logger.L().Info("GoCardless redirect flow completed",
		zap.String("flow_id", flow.ID),
		zap.String("mandate_id", flow.Links.Mandate),
	)
	return &flow, nil
}

// CreatePayment charges an existing mandate.
func (c *Client) CreatePayment(ctx context.Context, params *PaymentParams) (*Payment, error) {
	body := struct {
		*PaymentParams
		Links paymentLinks `json:"links"`
	}{params, paymentLinks{Mandate: params.MandateID}}

	var payment Payment
	if err := c.do(ctx, http.MethodPost, "/payments", "payments", body, "payments", &payment); err != nil {
		return nil, err
	}

	logger.L().Info("GoCardless payment created",
		zap.String("payment_id", payment.ID),
		zap.String("status", payment.Status),
		zap.Int64("amount", payment.Amount),
	)
	return &payment, nil
}

// CreateRefund asks GoCardless to refund a payment.
func (c *Client) CreateRefund(ctx context.Context, params *RefundParams) (*Refund, error) {
	body := struct {
		*RefundParams
		Links refundLinks `json:"links"`
	}{params, refundLinks{Payment: params.PaymentID}}

	var refund Refund
	if err := c.do(ctx, http.MethodPost, "/refunds", "refunds", body, "refunds", &refund); err != nil {
		return nil, err
	}
	return &refund, nil
}

func (c *Client) GetRefund(ctx context.Context, refundID string) (*Refund, error) {
	var refund Refund
	if err := c.do(ctx, http.MethodGet, "/refunds/"+refundID, "refunds", nil, "refunds", &refund); err != nil {
		return nil, err
	}
	return &refund, nil
}

func (c *Client) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	var customer Customer
	if err := c.do(ctx, http.MethodGet, "/customers/"+customerID, "customers", nil, "customers", &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (c *Client) CreateCustomer(ctx context.Context, params *CustomerParams) (*Customer, error) {
	var customer Customer
	if err := c.do(ctx, http.MethodPost, "/customers", "customers", params, "customers", &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (c *Client) UpdateCustomer(ctx context.Context, customerID string, params *CustomerParams) (*Customer, error) {
	var customer Customer
	if err := c.do(ctx, http.MethodPut, "/customers/"+customerID, "customers", params, "customers", &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (c *Client) GetMandate(ctx context.Context, mandateID string) (*Mandate, error) {
	var mandate Mandate
	if err := c.do(ctx, http.MethodGet, "/mandates/"+mandateID, "mandates", nil, "mandates", &mandate); err != nil {
		return nil, err
	}
	return &mandate, nil
}

func (c *Client) GetBankAccount(ctx context.Context, bankAccountID string) (*BankAccount, error) {
	var account BankAccount
	if err := c.do(ctx, http.MethodGet, "/customer_bank_accounts/"+bankAccountID, "customer_bank_accounts", nil, "customer_bank_accounts", &account); err != nil {
		return nil, err
	}
	return &account, nil
}
