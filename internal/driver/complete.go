package driver

import (
	"context"
	"strconv"
	"time"

	"gc-invoice-driver/internal/gocardless"
	"gc-invoice-driver/internal/identity"
	"gc-invoice-driver/internal/logger"

	"go.uber.org/zap"
)

// Complete validates a returned redirect flow, saves the new mandate and
// immediately charges it. Preconditions short-circuit in order: the flow id
// must be present, then a stored session token must exist. The token is
// consumed on first read whatever happens next.
func (d *Driver) Complete(ctx context.Context, req *CompleteRequest) *ChargeResult {
	log := logger.FromCtx(ctx).With(
		zap.Uint("invoice_id", req.InvoiceID),
		zap.String("flow_id", req.RedirectFlowID),
	)

	if req.RedirectFlowID == "" {
		log.Warn("Redirect completion without a redirect_flow_id")
		return failedInternal(ErrMissingRedirectFlowID)
	}

	sessionID := identity.SessionID(ctx)
	if sessionID == "" {
		return failedInternal(ErrMissingSessionScope)
	}

	token, err := d.sessions.Take(sessionID)
	if err != nil || token == "" {
		log.Warn("Redirect completion without an active session token", zap.Error(err))
		return failedInternal(ErrMissingSessionToken)
	}

	flow, err := d.gateway.CompleteRedirectFlow(ctx, req.RedirectFlowID, token)
	if err != nil {
		log.Error("GoCardless rejected the flow completion", zap.Error(err))
		return failedGateway(err)
	}

	if flow.Links.Mandate == "" {
		log.Error("Completed flow carries no mandate id")
		return failedInternal(ErrMissingMandateID)
	}

	userID, _ := identity.UserID(ctx)
	now := time.Now()
	label := "Direct Debit mandate created " + now.Format("2 Jan 2006")

	if err := d.mandates.Insert(ctx, userID, flow.Links.Mandate, label, now); err != nil {
		log.Error("Failed to persist new mandate", zap.Error(err))
		return failedInternal(err)
	}

	// Tag the gateway-side customer with our user id so settlement reports
	// reconcile without a lookup table. Failure here is not fatal.
	if flow.Links.Customer != "" && userID != 0 {
		_, err := d.gateway.UpdateCustomer(ctx, flow.Links.Customer, &gocardless.CustomerParams{
			Metadata: map[string]string{"userId": strconv.FormatUint(uint64(userID), 10)},
		})
		if err != nil {
			log.Warn("Failed to tag gateway customer", zap.Error(err))
		}
	}

	log.Info("Mandate saved, charging it",
		zap.String("mandate_id", flow.Links.Mandate),
	)

	result := d.chargeMandate(ctx, &req.ChargeRequest, flow.Links.Mandate)
	if result.IsProcessing() && result.TransactionID == "" {
		return failedInternal(ErrNoTransactionID)
	}
	return result
}
