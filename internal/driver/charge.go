package driver

import (
	"context"
	"strconv"

	"gc-invoice-driver/internal/gocardless"
	"gc-invoice-driver/internal/identity"
	"gc-invoice-driver/internal/logger"

	"go.uber.org/zap"
)

// Charge takes a payment for an invoice. It resolves a mandate in strict
// order: a saved payment source, a mandate the calling application vouches
// for, the end user's dropdown selection, then the user's sole stored
// mandate. When nothing resolves and the user has no usable mandate, a new
// redirect authorization flow is started instead.
func (d *Driver) Charge(ctx context.Context, req *ChargeRequest) *ChargeResult {
	log := logger.FromCtx(ctx).With(
		zap.Uint("invoice_id", req.InvoiceID),
		zap.Int64("amount", req.Amount),
		zap.String("currency", req.Currency),
	)

	switch {
	case req.SourceMandateID != "":
		return d.chargeMandate(ctx, req, req.SourceMandateID)

	case req.TrustedMandateID != "":
		// supplied by the calling application, trusted as-is
		return d.chargeMandate(ctx, req, req.TrustedMandateID)
	}

	userID, _ := identity.UserID(ctx)
	mandates, err := d.mandates.ListByUser(ctx, userID)
	if err != nil {
		log.Error("Failed to load stored mandates", zap.Error(err))
		return failedInternal(err)
	}

	if req.SelectedMandateID != "" {
		// the value is untrusted form input and must match a stored row
		for _, m := range mandates {
			if strconv.FormatUint(uint64(m.ID), 10) == req.SelectedMandateID {
				return d.chargeMandate(ctx, req, m.MandateID)
			}
		}
		log.Warn("Selected mandate not found for user",
			zap.String("selected", req.SelectedMandateID),
		)
		return failedInternal(ErrMissingMandateID)
	}

	if len(mandates) == 1 {
		return d.chargeMandate(ctx, req, mandates[0].MandateID)
	}

	return d.initiate(ctx, req)
}

// chargeMandate executes the direct-charge path against a resolved mandate.
func (d *Driver) chargeMandate(ctx context.Context, req *ChargeRequest, mandateID string) *ChargeResult {
	log := logger.FromCtx(ctx).With(
		zap.Uint("invoice_id", req.InvoiceID),
		zap.String("mandate_id", mandateID),
	)

	if mandateID == "" {
		log.Error("Mandate resolution produced an empty mandate id")
		return failedInternal(ErrMissingMandateID)
	}

	payment, err := d.gateway.CreatePayment(ctx, &gocardless.PaymentParams{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		Metadata:    ExtractMetadata(req.InvoiceID, req.InvoiceRef, req.Metadata),
		MandateID:   mandateID,
	})
	if err != nil {
		log.Error("GoCardless payment creation failed", zap.Error(err))
		return failedGateway(err)
	}

	log.Info("Payment submitted for collection",
		zap.String("payment_id", payment.ID),
		zap.String("status", payment.Status),
	)
	return processing(payment.ID, Fee(req.Amount))
}
