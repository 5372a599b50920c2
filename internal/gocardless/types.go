package gocardless

// Environment selects which GoCardless API host the client talks to.
type Environment string

const (
	EnvironmentSandbox Environment = "sandbox"
	EnvironmentLive    Environment = "live"
)

// PrefilledCustomer is the best-effort identity block sent when starting a
// redirect flow so the payer sees their details already filled in.
type PrefilledCustomer struct {
	AddressLine1 string `json:"address_line1,omitempty"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	CompanyName  string `json:"company_name,omitempty"`
	Email        string `json:"email,omitempty"`
	FamilyName   string `json:"family_name,omitempty"`
	GivenName    string `json:"given_name,omitempty"`
}

// RedirectFlowParams is the request body for CreateRedirectFlow.
type RedirectFlowParams struct {
	SessionToken       string             `json:"session_token"`
	SuccessRedirectURL string             `json:"success_redirect_url"`
	Description        string             `json:"description,omitempty"`
	PrefilledCustomer  *PrefilledCustomer `json:"prefilled_customer,omitempty"`
}

// RedirectFlowLinks carries the resources a completed flow materialized.
type RedirectFlowLinks struct {
	Mandate  string `json:"mandate,omitempty"`
	Customer string `json:"customer,omitempty"`
}

type RedirectFlow struct {
	ID          string            `json:"id"`
	RedirectURL string            `json:"redirect_url,omitempty"`
	Links       RedirectFlowLinks `json:"links,omitempty"`
}

// PaymentParams is the request body for CreatePayment. Amount is in the minor
// unit of Currency (pence, cents).
type PaymentParams struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	MandateID   string            `json:"-"`
}

type paymentLinks struct {
	Mandate string `json:"mandate"`
}

type Payment struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	ChargeDate string `json:"charge_date,omitempty"`
}

// RefundParams is the request body for CreateRefund.
type RefundParams struct {
	Amount                  int64             `json:"amount"`
	TotalAmountConfirmation int64             `json:"total_amount_confirmation"`
	Metadata                map[string]string `json:"metadata,omitempty"`
	PaymentID               string            `json:"-"`
}

type refundLinks struct {
	Payment string `json:"payment"`
}

type Refund struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CustomerParams is the request body for Create/UpdateCustomer.
type CustomerParams struct {
	Email        string            `json:"email,omitempty"`
	GivenName    string            `json:"given_name,omitempty"`
	FamilyName   string            `json:"family_name,omitempty"`
	CompanyName  string            `json:"company_name,omitempty"`
	AddressLine1 string            `json:"address_line1,omitempty"`
	AddressLine2 string            `json:"address_line2,omitempty"`
	City         string            `json:"city,omitempty"`
	PostalCode   string            `json:"postal_code,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type Customer struct {
	ID          string            `json:"id"`
	Email       string            `json:"email"`
	GivenName   string            `json:"given_name"`
	FamilyName  string            `json:"family_name"`
	CompanyName string            `json:"company_name"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type MandateLinks struct {
	Customer            string `json:"customer"`
	CustomerBankAccount string `json:"customer_bank_account"`
}

type Mandate struct {
	ID        string       `json:"id"`
	Reference string       `json:"reference"`
	Status    string       `json:"status"`
	Scheme    string       `json:"scheme"`
	Links     MandateLinks `json:"links"`
}

type BankAccount struct {
	ID                string `json:"id"`
	AccountHolderName string `json:"account_holder_name"`
	AccountNumberEnding string `json:"account_number_ending"`
	BankName          string `json:"bank_name"`
	Currency          string `json:"currency"`
}
