package driver

import (
	"context"

	"gc-invoice-driver/internal/gocardless"
	"gc-invoice-driver/internal/identity"
	"gc-invoice-driver/internal/logger"
	"gc-invoice-driver/internal/session"

	"go.uber.org/zap"
)

// initiate starts a new mandate authorization. Every call mints a fresh
// session token, invalidating any prior pending flow for the same session.
func (d *Driver) initiate(ctx context.Context, req *ChargeRequest) *ChargeResult {
	log := logger.FromCtx(ctx).With(zap.Uint("invoice_id", req.InvoiceID))

	sessionID := identity.SessionID(ctx)
	if sessionID == "" {
		log.Error("No session scope available for redirect flow")
		return failedInternal(ErrMissingSessionScope)
	}

	token, err := session.NewToken()
	if err != nil {
		log.Error("Failed to generate session token", zap.Error(err))
		return failedInternal(err)
	}

	if err := d.sessions.Put(sessionID, token); err != nil {
		log.Error("Failed to store session token", zap.Error(err))
		return failedInternal(err)
	}

	flow, err := d.gateway.CreateRedirectFlow(ctx, &gocardless.RedirectFlowParams{
		SessionToken:       token,
		SuccessRedirectURL: req.SuccessURL,
		Description:        req.Description,
		PrefilledCustomer:  prefillFrom(req.Customer),
	})
	if err != nil {
		log.Error("Failed to create redirect flow", zap.Error(err))
		return failedGateway(err)
	}

	log.Info("Redirect flow started", zap.String("flow_id", flow.ID))
	return redirect(flow.RedirectURL)
}

// prefillFrom maps the invoice's customer onto the gateway's prefill block,
// preferring the billing email over the primary one.
func prefillFrom(c *CustomerDetails) *gocardless.PrefilledCustomer {
	if c == nil {
		return nil
	}

	return &gocardless.PrefilledCustomer{
		AddressLine1: c.AddressLine1,
		AddressLine2: c.AddressLine2,
		City:         c.City,
		PostalCode:   c.Postcode,
		CompanyName:  c.Company,
		Email:        c.preferredEmail(),
		FamilyName:   c.FamilyName,
		GivenName:    c.GivenName,
	}
}
