// Package driver implements the GoCardless payment driver: the mandate
// resolution state machine, the redirect flow handshake, and the mapping of
// gateway outcomes onto the host framework's charge results.
package driver

import (
	"context"
	"strconv"

	"gc-invoice-driver/internal/gocardless"
	"gc-invoice-driver/internal/identity"
	"gc-invoice-driver/internal/mandate"

	"go.uber.org/zap"

	"gc-invoice-driver/internal/logger"
)

// Gateway is the slice of the GoCardless client the driver calls through.
// *gocardless.Client satisfies it.
type Gateway interface {
	CreateRedirectFlow(ctx context.Context, params *gocardless.RedirectFlowParams) (*gocardless.RedirectFlow, error)
	CompleteRedirectFlow(ctx context.Context, flowID, sessionToken string) (*gocardless.RedirectFlow, error)
	CreatePayment(ctx context.Context, params *gocardless.PaymentParams) (*gocardless.Payment, error)
	UpdateCustomer(ctx context.Context, customerID string, params *gocardless.CustomerParams) (*gocardless.Customer, error)
	GetMandate(ctx context.Context, mandateID string) (*gocardless.Mandate, error)
	GetBankAccount(ctx context.Context, bankAccountID string) (*gocardless.BankAccount, error)
}

// SessionStore keeps the single-use redirect-flow tokens. Take must read and
// clear atomically.
type SessionStore interface {
	Put(sessionID, token string) error
	Take(sessionID string) (string, error)
}

type Driver struct {
	gateway  Gateway
	mandates mandate.Repository
	sessions SessionStore
}

func New(gateway Gateway, mandates mandate.Repository, sessions SessionStore) *Driver {
	return &Driver{
		gateway:  gateway,
		mandates: mandates,
		sessions: sessions,
	}
}

// supportedCurrencies is the fixed allowlist of ISO codes GoCardless collects
// in.
var supportedCurrencies = []string{"AUD", "CAD", "DKK", "EUR", "GBP", "NZD", "SEK", "USD"}

func SupportedCurrencies() []string {
	out := make([]string, len(supportedCurrencies))
	copy(out, supportedCurrencies)
	return out
}

func CurrencySupported(code string) bool {
	for _, c := range supportedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

// IsAvailable reports whether this driver can take a payment for the current
// caller. Mandates are stored per user, so anonymous checkouts are out.
func (d *Driver) IsAvailable(ctx context.Context) bool {
	return identity.IsAuthenticated(ctx)
}

// FieldOption is one entry of a checkout field's dropdown.
type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes one input the checkout form must render for this driver.
type Field struct {
	Key     string        `json:"key"`
	Label   string        `json:"label"`
	Type    string        `json:"type"`
	Options []FieldOption `json:"options,omitempty"`
}

// RequiredPaymentFields returns the checkout inputs: nothing, or a single
// mandate dropdown when the user has more than one saved mandate.
func (d *Driver) RequiredPaymentFields(ctx context.Context) ([]Field, error) {
	userID, ok := identity.UserID(ctx)
	if !ok {
		return nil, nil
	}

	mandates, err := d.mandates.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(mandates) <= 1 {
		return nil, nil
	}

	options := make([]FieldOption, 0, len(mandates))
	for _, m := range mandates {
		options = append(options, FieldOption{
			Value: strconv.FormatUint(uint64(m.ID), 10),
			Label: m.Label,
		})
	}

	return []Field{{
		Key:     "mandate_id",
		Label:   "Direct Debit mandate",
		Type:    "select",
		Options: options,
	}}, nil
}

// Refund always fails: gateway refunds are deliberately disabled in this
// driver. The endpoint stays on the surface but every call is rejected.
func (d *Driver) Refund(ctx context.Context, transactionID string, amount int64) *ChargeResult {
	logger.FromCtx(ctx).Warn("Refund requested but refunds are disabled",
		zap.String("transaction_id", transactionID),
		zap.Int64("amount", amount),
	)

	return &ChargeResult{
		Status:      StatusFailed,
		Detail:      "refunds are not supported by the GoCardless driver",
		UserMessage: userMsgRefunds,
	}
}
