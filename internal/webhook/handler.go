package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"gc-invoice-driver/internal/gocardless"
	"gc-invoice-driver/internal/logger"

	"go.uber.org/zap"
)

// EventSink receives settled events. Direct debits confirm out-of-band, so
// this is where the host framework learns a Processing payment actually
// collected (or bounced).
type EventSink interface {
	HandlePaymentEvent(ctx context.Context, action, paymentID string) error
	HandleMandateEvent(ctx context.Context, action, mandateID string) error
}

// mandateGetter is the one gateway call this package needs.
type mandateGetter interface {
	GetMandate(ctx context.Context, mandateID string) (*gocardless.Mandate, error)
}

// Handler receives GoCardless webhook deliveries.
type Handler struct {
	secret  string
	repo    Repository
	sink    EventSink
	gateway mandateGetter
}

func NewHandler(secret string, repo Repository, sink EventSink, gateway mandateGetter) *Handler {
	if secret == "" {
		logger.L().Warn("GoCardless webhook secret is empty, signature checks disabled")
	}
	return &Handler{secret: secret, repo: repo, sink: sink, gateway: gateway}
}

// verifySignature checks the Webhook-Signature header: hex HMAC-SHA256 of the
// raw body under the endpoint secret.
func (h *Handler) verifySignature(body []byte, signature string) error {
	if h.secret == "" {
		return nil // skip in dev
	}

	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return errors.New("invalid webhook signature")
	}
	return nil
}

// ServeHTTP is the webhook route handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.verifySignature(body, r.Header.Get("Webhook-Signature")); err != nil {
		log.Warn("Webhook rejected", zap.Error(err))
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var delivery payload
	if err := json.Unmarshal(body, &delivery); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	for _, event := range delivery.Events {
		h.processEvent(r.Context(), event)
	}

	// a 2xx acknowledges the whole delivery; failed events are retried via
	// their stored process_error, not by making GoCardless redeliver
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) processEvent(ctx context.Context, event Event) {
	log := logger.FromCtx(ctx).With(
		zap.String("event_id", event.ID),
		zap.String("resource_type", event.ResourceType),
		zap.String("action", event.Action),
	)

	raw, err := json.Marshal(event)
	if err != nil {
		log.Error("Failed to re-encode event", zap.Error(err))
		return
	}

	id, duplicate, err := h.repo.SaveEvent(ctx, event.ID, event.ResourceType, event.Action, raw)
	if err != nil {
		log.Error("Failed to persist webhook event", zap.Error(err))
		return
	}
	if duplicate {
		log.Info("Duplicate webhook event skipped")
		return
	}

	if err := h.dispatch(ctx, event); err != nil {
		log.Error("Event dispatch failed", zap.Error(err))
		if markErr := h.repo.MarkFailed(ctx, id, err.Error()); markErr != nil {
			log.Error("Failed to record dispatch failure", zap.Error(markErr))
		}
		return
	}

	if err := h.repo.MarkProcessed(ctx, id); err != nil {
		log.Error("Failed to mark event processed", zap.Error(err))
	}
}

func (h *Handler) dispatch(ctx context.Context, event Event) error {
	switch event.ResourceType {
	case "payments":
		return h.sink.HandlePaymentEvent(ctx, event.Action, event.Links.Payment)
	case "mandates":
		// refresh the mandate before telling the sink, the event itself
		// carries no status
		if h.gateway != nil && event.Links.Mandate != "" {
			if m, err := h.gateway.GetMandate(ctx, event.Links.Mandate); err == nil {
				logger.FromCtx(ctx).Info("Mandate state at event time",
					zap.String("mandate_id", m.ID),
					zap.String("status", m.Status),
				)
			}
		}
		return h.sink.HandleMandateEvent(ctx, event.Action, event.Links.Mandate)
	default:
		// refunds and newer resource types are stored but not dispatched
		return nil
	}
}

// LogSink is the default EventSink: it only records what happened. Hosts
// embedding this driver replace it with their own settlement logic.
type LogSink struct{}

func (LogSink) HandlePaymentEvent(ctx context.Context, action, paymentID string) error {
	logger.FromCtx(ctx).Info("Payment event",
		zap.String("action", action),
		zap.String("payment_id", paymentID),
	)
	return nil
}

func (LogSink) HandleMandateEvent(ctx context.Context, action, mandateID string) error {
	logger.FromCtx(ctx).Info("Mandate event",
		zap.String("action", action),
		zap.String("mandate_id", mandateID),
	)
	return nil
}
