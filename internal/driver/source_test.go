package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gc-invoice-driver/internal/gocardless"
)

func TestCreatePaymentSource(t *testing.T) {
	t.Run("MissingMandateID", func(t *testing.T) {
		d := New(new(MockGateway), new(MockMandates), newFakeSessions())

		_, err := d.CreatePaymentSource(authedCtx(7, "sess-1"), "")
		assert.ErrorIs(t, err, ErrMissingMandateID)
	})

	t.Run("AnonymousCaller", func(t *testing.T) {
		d := New(new(MockGateway), new(MockMandates), newFakeSessions())

		_, err := d.CreatePaymentSource(context.Background(), "MD123")
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("InactiveMandateRejected", func(t *testing.T) {
		gateway := new(MockGateway)
		mandates := new(MockMandates)

		gateway.On("GetMandate", mock.Anything, "MD123").
			Return(&gocardless.Mandate{ID: "MD123", Status: "cancelled"}, nil)

		d := New(gateway, mandates, newFakeSessions())
		_, err := d.CreatePaymentSource(authedCtx(7, "sess-1"), "MD123")

		assert.ErrorIs(t, err, ErrInactiveMandate)
		mandates.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("SuccessWithBankAccountLabel", func(t *testing.T) {
		gateway := new(MockGateway)
		mandates := new(MockMandates)

		gateway.On("GetMandate", mock.Anything, "MD123").
			Return(&gocardless.Mandate{
				ID:     "MD123",
				Status: "active",
				Links:  gocardless.MandateLinks{CustomerBankAccount: "BA001"},
			}, nil)

		gateway.On("GetBankAccount", mock.Anything, "BA001").
			Return(&gocardless.BankAccount{
				ID:                  "BA001",
				BankName:            "Monzo",
				AccountNumberEnding: "4321",
			}, nil)

		mandates.On("Insert", mock.Anything, uint(7), "MD123", "Monzo ****4321", mock.Anything).
			Return(nil)

		d := New(gateway, mandates, newFakeSessions())
		saved, err := d.CreatePaymentSource(authedCtx(7, "sess-1"), "MD123")

		require.NoError(t, err)
		assert.Equal(t, "MD123", saved.MandateID)
		assert.Equal(t, "Monzo ****4321", saved.Label)
		mandates.AssertExpectations(t)
	})

	t.Run("BankAccountLookupFailureFallsBackToDatedLabel", func(t *testing.T) {
		gateway := new(MockGateway)
		mandates := new(MockMandates)

		gateway.On("GetMandate", mock.Anything, "MD123").
			Return(&gocardless.Mandate{
				ID:     "MD123",
				Status: "active",
				Links:  gocardless.MandateLinks{CustomerBankAccount: "BA001"},
			}, nil)

		gateway.On("GetBankAccount", mock.Anything, "BA001").
			Return(nil, &gocardless.Error{Kind: gocardless.KindConnection, Message: "timeout"})

		mandates.On("Insert", mock.Anything, uint(7), "MD123",
			mock.MatchedBy(func(label string) bool { return label != "" }),
			mock.Anything).Return(nil)

		d := New(gateway, mandates, newFakeSessions())
		saved, err := d.CreatePaymentSource(authedCtx(7, "sess-1"), "MD123")

		require.NoError(t, err)
		assert.Contains(t, saved.Label, "Direct Debit mandate created")
	})

	t.Run("GatewayLookupError", func(t *testing.T) {
		gateway := new(MockGateway)

		gateway.On("GetMandate", mock.Anything, "MD123").
			Return(nil, &gocardless.Error{Kind: gocardless.KindAPI, Code: "not_found", Message: "No such mandate"})

		d := New(gateway, new(MockMandates), newFakeSessions())
		_, err := d.CreatePaymentSource(authedCtx(7, "sess-1"), "MD123")

		assert.Error(t, err)
	})
}
