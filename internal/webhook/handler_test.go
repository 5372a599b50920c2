package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gc-invoice-driver/internal/gocardless"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) SaveEvent(ctx context.Context, eventID, resourceType, action string, payload json.RawMessage) (int64, bool, error) {
	args := m.Called(ctx, eventID, resourceType, action, payload)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockRepository) MarkProcessed(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

// MockSink is a mock implementation of EventSink
type MockSink struct {
	mock.Mock
}

func (m *MockSink) HandlePaymentEvent(ctx context.Context, action, paymentID string) error {
	args := m.Called(ctx, action, paymentID)
	return args.Error(0)
}

func (m *MockSink) HandleMandateEvent(ctx context.Context, action, mandateID string) error {
	args := m.Called(ctx, action, mandateID)
	return args.Error(0)
}

type fakeMandateGetter struct{}

func (fakeMandateGetter) GetMandate(_ context.Context, mandateID string) (*gocardless.Mandate, error) {
	return &gocardless.Mandate{ID: mandateID, Status: "cancelled"}, nil
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

const secret = "wh-secret"

func deliver(t *testing.T, h *Handler, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/gocardless", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("Webhook-Signature", signature)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_RejectsBadSignature(t *testing.T) {
	repo := new(MockRepository)
	sink := new(MockSink)
	h := NewHandler(secret, repo, sink, fakeMandateGetter{})

	body := []byte(`{"events": []}`)

	rec := deliver(t, h, body, "deadbeef")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = deliver(t, h, body, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	repo.AssertNotCalled(t, "SaveEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_RejectsBadJSON(t *testing.T) {
	h := NewHandler(secret, new(MockRepository), new(MockSink), nil)

	body := []byte(`{not-json`)
	rec := deliver(t, h, body, sign(secret, body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_DispatchesPaymentEvents(t *testing.T) {
	repo := new(MockRepository)
	sink := new(MockSink)
	h := NewHandler(secret, repo, sink, nil)

	body := []byte(`{
		"events": [
			{"id": "EV001", "resource_type": "payments", "action": "confirmed", "links": {"payment": "PM123"}},
			{"id": "EV002", "resource_type": "payments", "action": "failed", "links": {"payment": "PM124"}}
		]
	}`)

	repo.On("SaveEvent", mock.Anything, "EV001", "payments", "confirmed", mock.Anything).
		Return(int64(1), false, nil)
	repo.On("SaveEvent", mock.Anything, "EV002", "payments", "failed", mock.Anything).
		Return(int64(2), false, nil)
	repo.On("MarkProcessed", mock.Anything, int64(1)).Return(nil)
	repo.On("MarkProcessed", mock.Anything, int64(2)).Return(nil)

	sink.On("HandlePaymentEvent", mock.Anything, "confirmed", "PM123").Return(nil)
	sink.On("HandlePaymentEvent", mock.Anything, "failed", "PM124").Return(nil)

	rec := deliver(t, h, body, sign(secret, body))
	assert.Equal(t, http.StatusOK, rec.Code)

	repo.AssertExpectations(t)
	sink.AssertExpectations(t)
}

func TestHandler_SkipsDuplicateEvents(t *testing.T) {
	repo := new(MockRepository)
	sink := new(MockSink)
	h := NewHandler(secret, repo, sink, nil)

	body := []byte(`{
		"events": [
			{"id": "EV001", "resource_type": "payments", "action": "confirmed", "links": {"payment": "PM123"}}
		]
	}`)

	repo.On("SaveEvent", mock.Anything, "EV001", "payments", "confirmed", mock.Anything).
		Return(int64(0), true, nil)

	rec := deliver(t, h, body, sign(secret, body))
	assert.Equal(t, http.StatusOK, rec.Code)

	sink.AssertNotCalled(t, "HandlePaymentEvent", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything)
}

func TestHandler_RecordsDispatchFailure(t *testing.T) {
	repo := new(MockRepository)
	sink := new(MockSink)
	h := NewHandler(secret, repo, sink, nil)

	body := []byte(`{
		"events": [
			{"id": "EV001", "resource_type": "payments", "action": "confirmed", "links": {"payment": "PM123"}}
		]
	}`)

	repo.On("SaveEvent", mock.Anything, "EV001", "payments", "confirmed", mock.Anything).
		Return(int64(1), false, nil)
	sink.On("HandlePaymentEvent", mock.Anything, "confirmed", "PM123").
		Return(assert.AnError)
	repo.On("MarkFailed", mock.Anything, int64(1), assert.AnError.Error()).Return(nil)

	rec := deliver(t, h, body, sign(secret, body))

	// delivery is still acknowledged, the failure lives in process_error
	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestHandler_MandateEventsRefreshMandate(t *testing.T) {
	repo := new(MockRepository)
	sink := new(MockSink)
	h := NewHandler(secret, repo, sink, fakeMandateGetter{})

	body := []byte(`{
		"events": [
			{"id": "EV003", "resource_type": "mandates", "action": "cancelled", "links": {"mandate": "MD999"}}
		]
	}`)

	repo.On("SaveEvent", mock.Anything, "EV003", "mandates", "cancelled", mock.Anything).
		Return(int64(3), false, nil)
	repo.On("MarkProcessed", mock.Anything, int64(3)).Return(nil)
	sink.On("HandleMandateEvent", mock.Anything, "cancelled", "MD999").Return(nil)

	rec := deliver(t, h, body, sign(secret, body))
	assert.Equal(t, http.StatusOK, rec.Code)
	sink.AssertExpectations(t)
}

func TestHandler_UnknownResourceTypesAreStoredOnly(t *testing.T) {
	repo := new(MockRepository)
	sink := new(MockSink)
	h := NewHandler(secret, repo, sink, nil)

	body := []byte(`{
		"events": [
			{"id": "EV004", "resource_type": "refunds", "action": "created", "links": {"refund": "RF001"}}
		]
	}`)

	repo.On("SaveEvent", mock.Anything, "EV004", "refunds", "created", mock.Anything).
		Return(int64(4), false, nil)
	repo.On("MarkProcessed", mock.Anything, int64(4)).Return(nil)

	rec := deliver(t, h, body, sign(secret, body))
	assert.Equal(t, http.StatusOK, rec.Code)

	sink.AssertNotCalled(t, "HandlePaymentEvent", mock.Anything, mock.Anything, mock.Anything)
	sink.AssertNotCalled(t, "HandleMandateEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_EmptySecretSkipsVerification(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandler("", repo, new(MockSink), nil)

	body := []byte(`{"events": []}`)
	rec := deliver(t, h, body, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
