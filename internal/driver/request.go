package driver

// CustomerDetails is the best-effort identity block attached to an invoice,
// used to prefill the GoCardless authorization form.
type CustomerDetails struct {
	Email        string
	BillingEmail string
	GivenName    string
	FamilyName   string
	Company      string
	AddressLine1 string
	AddressLine2 string
	City         string
	Postcode     string
}

// preferredEmail picks the billing address when one is set.
func (c *CustomerDetails) preferredEmail() string {
	if c.BillingEmail != "" {
		return c.BillingEmail
	}
	return c.Email
}

// ChargeRequest aggregates everything a single charge attempt needs. Amount
// is in the minor unit of Currency.
type ChargeRequest struct {
	InvoiceID   uint
	InvoiceRef  string
	Amount      int64
	Currency    string
	Description string
	SuccessURL  string
	ErrorURL    string

	// Metadata supplied by the calling application, merged into the
	// transaction annotations after the required invoice keys.
	Metadata map[string]string

	// Mandate references, in resolution order. SourceMandateID comes from a
	// saved payment source, TrustedMandateID from the calling application
	// (not re-validated), SelectedMandateID from the end user's form input
	// and must match a stored mandate's local id.
	SourceMandateID   string
	TrustedMandateID  string
	SelectedMandateID string

	Customer *CustomerDetails
}

// CompleteRequest finishes a redirect flow and charges the new mandate.
type CompleteRequest struct {
	// RedirectFlowID is read from the inbound query parameters; GoCardless
	// appends it to the success redirect URL.
	RedirectFlowID string

	ChargeRequest
}
