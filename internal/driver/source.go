package driver

import (
	"context"
	"fmt"
	"time"

	"gc-invoice-driver/internal/identity"
	"gc-invoice-driver/internal/logger"
	"gc-invoice-driver/internal/mandate"

	"go.uber.org/zap"
)

// mandate statuses under which GoCardless refuses new payments.
var inactiveMandateStatuses = map[string]bool{
	"cancelled": true,
	"expired":   true,
	"failed":    true,
}

// CreatePaymentSource imports an existing gateway mandate as a saved payment
// source for the current user. The mandate is validated against GoCardless
// first; the label is derived from the backing bank account where possible.
func (d *Driver) CreatePaymentSource(ctx context.Context, gatewayMandateID string) (*mandate.Mandate, error) {
	log := logger.FromCtx(ctx).With(zap.String("mandate_id", gatewayMandateID))

	if gatewayMandateID == "" {
		return nil, ErrMissingMandateID
	}

	userID, ok := identity.UserID(ctx)
	if !ok || userID == 0 {
		return nil, ErrNotAuthenticated
	}

	gcMandate, err := d.gateway.GetMandate(ctx, gatewayMandateID)
	if err != nil {
		log.Error("Failed to look up mandate at GoCardless", zap.Error(err))
		return nil, err
	}
	if inactiveMandateStatuses[gcMandate.Status] {
		log.Warn("Refusing to save inactive mandate", zap.String("status", gcMandate.Status))
		return nil, ErrInactiveMandate
	}

	now := time.Now()
	label := "Direct Debit mandate created " + now.Format("2 Jan 2006")

	if gcMandate.Links.CustomerBankAccount != "" {
		account, err := d.gateway.GetBankAccount(ctx, gcMandate.Links.CustomerBankAccount)
		if err != nil {
			// label is cosmetic, keep the dated fallback
			log.Warn("Failed to fetch bank account for label", zap.Error(err))
		} else {
			label = fmt.Sprintf("%s ****%s", account.BankName, account.AccountNumberEnding)
		}
	}

	if err := d.mandates.Insert(ctx, userID, gcMandate.ID, label, now); err != nil {
		log.Error("Failed to persist payment source", zap.Error(err))
		return nil, err
	}

	log.Info("Payment source saved", zap.String("label", label))
	return &mandate.Mandate{
		UserID:    userID,
		Label:     label,
		MandateID: gcMandate.ID,
		Created:   now,
	}, nil
}
