package driver

import (
	"gc-invoice-driver/internal/gocardless"
)

// Status is the outcome of a charge or complete call. There is no synchronous
// "succeeded": GoCardless settles direct debits out-of-band, so processing is
// the only positive state the driver itself can produce.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusFailed     Status = "failed"
	StatusRedirect   Status = "redirect"
)

// User-safe messages. The Detail field carries the real cause and is for logs
// only; these are what the payer sees.
const (
	userMsgTryAgain = "We could not reach the payment provider. Please try again."
	userMsgGeneric  = "The payment could not be processed. Please try again or contact support."
	userMsgRefunds  = "Refunds are not available for Direct Debit payments."
)

// ChargeResult is the tri-state outcome carrier handed back to the host
// payment framework.
type ChargeResult struct {
	Status        Status
	TransactionID string
	Fee           int64
	RedirectURL   string

	// Failure details. Detail is internal, GatewayCode is the provider's
	// error type when one exists, UserMessage is safe to display.
	Detail      string
	GatewayCode string
	UserMessage string
}

func (r *ChargeResult) IsProcessing() bool { return r.Status == StatusProcessing }
func (r *ChargeResult) IsFailed() bool     { return r.Status == StatusFailed }
func (r *ChargeResult) IsRedirect() bool   { return r.Status == StatusRedirect }

func processing(transactionID string, fee int64) *ChargeResult {
	return &ChargeResult{
		Status:        StatusProcessing,
		TransactionID: transactionID,
		Fee:           fee,
	}
}

func redirect(url string) *ChargeResult {
	return &ChargeResult{
		Status:      StatusRedirect,
		RedirectURL: url,
	}
}

// failedInternal maps a driver precondition violation to a Failed result.
func failedInternal(err error) *ChargeResult {
	return &ChargeResult{
		Status:      StatusFailed,
		Detail:      err.Error(),
		UserMessage: userMsgGeneric,
	}
}

// failedGateway maps a gateway client error to a Failed result. Transport and
// decoding problems are transient, so the payer is told to retry; a rejection
// carries the provider's error type for diagnostics.
func failedGateway(err error) *ChargeResult {
	gcErr := gocardless.AsError(err)

	result := &ChargeResult{
		Status: StatusFailed,
		Detail: gcErr.Message,
	}

	switch gcErr.Kind {
	case gocardless.KindAPI:
		result.GatewayCode = gcErr.Code
		result.UserMessage = userMsgGeneric
	default:
		result.UserMessage = userMsgTryAgain
	}
	return result
}
