package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gc-invoice-driver/internal/driver"
	"gc-invoice-driver/internal/identity"
	"gc-invoice-driver/internal/logger"
	"gc-invoice-driver/internal/mandate"
	"gc-invoice-driver/internal/settings"

	"go.uber.org/zap"
)

type Handlers struct {
	Driver   *driver.Driver
	Settings settings.Store
	Mandates mandate.Repository
}

func NewHandlers(d *driver.Driver, s settings.Store, m mandate.Repository) *Handlers {
	return &Handlers{Driver: d, Settings: s, Mandates: m}
}

// chargePayload is the JSON body for POST /payments/charge.
type chargePayload struct {
	InvoiceID   uint              `json:"invoice_id"`
	InvoiceRef  string            `json:"invoice_ref"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	SuccessURL  string            `json:"success_url"`
	ErrorURL    string            `json:"error_url"`
	Metadata    map[string]string `json:"metadata,omitempty"`

	SourceMandateID  string `json:"source_mandate_id,omitempty"`
	TrustedMandateID string `json:"trusted_mandate_id,omitempty"`
	MandateID        string `json:"mandate_id,omitempty"`

	Customer *customerPayload `json:"customer,omitempty"`
}

type customerPayload struct {
	Email        string `json:"email,omitempty"`
	BillingEmail string `json:"billing_email,omitempty"`
	GivenName    string `json:"given_name,omitempty"`
	FamilyName   string `json:"family_name,omitempty"`
	Company      string `json:"company,omitempty"`
	AddressLine1 string `json:"address_line1,omitempty"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city,omitempty"`
	Postcode     string `json:"postcode,omitempty"`
}

func (p *chargePayload) toRequest() *driver.ChargeRequest {
	req := &driver.ChargeRequest{
		InvoiceID:         p.InvoiceID,
		InvoiceRef:        p.InvoiceRef,
		Amount:            p.Amount,
		Currency:          p.Currency,
		Description:       p.Description,
		SuccessURL:        p.SuccessURL,
		ErrorURL:          p.ErrorURL,
		Metadata:          p.Metadata,
		SourceMandateID:   p.SourceMandateID,
		TrustedMandateID:  p.TrustedMandateID,
		SelectedMandateID: p.MandateID,
	}
	if p.Customer != nil {
		req.Customer = &driver.CustomerDetails{
			Email:        p.Customer.Email,
			BillingEmail: p.Customer.BillingEmail,
			GivenName:    p.Customer.GivenName,
			FamilyName:   p.Customer.FamilyName,
			Company:      p.Customer.Company,
			AddressLine1: p.Customer.AddressLine1,
			AddressLine2: p.Customer.AddressLine2,
			City:         p.Customer.City,
			Postcode:     p.Customer.Postcode,
		}
	}
	return req
}

// Charge takes a payment for an invoice.
func (h *Handlers) Charge(w http.ResponseWriter, r *http.Request) {
	var payload chargePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if !driver.CurrencySupported(payload.Currency) {
		writeError(w, http.StatusBadRequest, "unsupported currency")
		return
	}
	if payload.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if !h.Driver.IsAvailable(r.Context()) {
		writeError(w, http.StatusUnauthorized, "direct debit requires an authenticated user")
		return
	}

	result := h.Driver.Charge(r.Context(), payload.toRequest())
	writeResult(w, result)
}

// Complete finishes a redirect flow. GoCardless sends the payer back to the
// success URL with redirect_flow_id appended; the remaining parameters were
// embedded in that URL when the flow was started.
func (h *Handlers) Complete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	invoiceID, _ := strconv.ParseUint(q.Get("invoice_id"), 10, 64)
	amount, _ := strconv.ParseInt(q.Get("amount"), 10, 64)

	req := &driver.CompleteRequest{
		RedirectFlowID: q.Get("redirect_flow_id"),
		ChargeRequest: driver.ChargeRequest{
			InvoiceID:   uint(invoiceID),
			InvoiceRef:  q.Get("invoice_ref"),
			Amount:      amount,
			Currency:    q.Get("currency"),
			Description: q.Get("description"),
		},
	}

	result := h.Driver.Complete(r.Context(), req)
	writeResult(w, result)
}

// Refund is disabled by design and always reports failure.
func (h *Handlers) Refund(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TransactionID string `json:"transaction_id"`
		Amount        int64  `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	writeResult(w, h.Driver.Refund(r.Context(), payload.TransactionID, payload.Amount))
}

// Methods describes this driver to the checkout: label, currencies and any
// extra form fields the payer must fill.
func (h *Handlers) Methods(w http.ResponseWriter, r *http.Request) {
	fields, err := h.Driver.RequiredPaymentFields(r.Context())
	if err != nil {
		logger.FromCtx(r.Context()).Error("Failed to build payment fields", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load payment methods")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"label":      settings.Label(r.Context(), h.Settings),
		"available":  h.Driver.IsAvailable(r.Context()),
		"currencies": driver.SupportedCurrencies(),
		"fields":     fields,
	})
}

// ListMandates returns the caller's saved mandates.
func (h *Handlers) ListMandates(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	mandates, err := h.Mandates.ListByUser(r.Context(), userID)
	if err != nil {
		logger.FromCtx(r.Context()).Error("Failed to list mandates", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load mandates")
		return
	}

	out := make([]map[string]interface{}, 0, len(mandates))
	for _, m := range mandates {
		out = append(out, map[string]interface{}{
			"id":      m.ID,
			"label":   m.Label,
			"created": m.Created,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"mandates": out})
}

// CreatePaymentSource imports an existing gateway mandate as a saved payment
// source.
func (h *Handlers) CreatePaymentSource(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		MandateID string `json:"mandate_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	saved, err := h.Driver.CreatePaymentSource(r.Context(), payload.MandateID)
	if err != nil {
		switch err {
		case driver.ErrMissingMandateID:
			writeError(w, http.StatusBadRequest, err.Error())
		case driver.ErrNotAuthenticated:
			writeError(w, http.StatusUnauthorized, err.Error())
		case driver.ErrInactiveMandate:
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			logger.FromCtx(r.Context()).Error("Failed to create payment source", zap.Error(err))
			writeError(w, http.StatusBadGateway, "failed to save payment source")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"label":      saved.Label,
		"mandate_id": saved.MandateID,
	})
}

func writeResult(w http.ResponseWriter, res *driver.ChargeResult) {
	switch {
	case res.IsProcessing():
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":         res.Status,
			"transaction_id": res.TransactionID,
			"fee":            res.Fee,
		})
	case res.IsRedirect():
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":       res.Status,
			"redirect_url": res.RedirectURL,
		})
	default:
		body := map[string]interface{}{
			"status":  res.Status,
			"message": res.UserMessage,
		}
		if res.GatewayCode != "" {
			body["code"] = res.GatewayCode
		}
		writeJSON(w, http.StatusPaymentRequired, body)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
