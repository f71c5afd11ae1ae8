package webhook

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"daztao-be/internal/logger"
	"daztao-be/internal/metrics"
	"daztao-be/internal/order"
	"daztao-be/internal/payment"
	"daztao-be/internal/utils"

	"go.uber.org/zap"
)

const (
	EventPaymentCaptured = "payment.captured"
	EventOrderPaid       = "order.paid"
	EventPaymentFailed   = "payment.failed"
)

// Event is the subset of a Razorpay webhook body we act on.
type Event struct {
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity payment.PaymentDetails `json:"entity"`
		} `json:"payment"`
		Order *struct {
			Entity payment.GatewayOrder `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

func (e Event) gatewayOrderID() string {
	if e.Payload.Payment != nil && e.Payload.Payment.Entity.OrderID != "" {
		return e.Payload.Payment.Entity.OrderID
	}
	if e.Payload.Order != nil {
		return e.Payload.Order.Entity.ID
	}
	return ""
}

func (e Event) paymentID() string {
	if e.Payload.Payment != nil {
		return e.Payload.Payment.Entity.ID
	}
	return ""
}

type Handler struct {
	Payments payment.Service
	Gateway  payment.Gateway
	Repo     payment.Repository
	metrics  *metrics.Registry
}

func NewWebhookHandler(payments payment.Service, gateway payment.Gateway, repo payment.Repository) *Handler {
	return &Handler{
		Payments: payments,
		Gateway:  gateway,
		Repo:     repo,
		metrics:  metrics.Default,
	}
}

// WebhookHandler verifies, records and applies one Razorpay event.
// Events already processed are acknowledged without side effects.
func (h *Handler) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "webhook"),
		zap.String("provider", payment.ProviderRazorpay),
	)

	if err := h.Gateway.VerifySignature(r); err != nil {
		h.metrics.Counter(metrics.WebhooksInvalid).Inc()
		log.Warn("webhook signature rejected", zap.Error(err))
		utils.WriteJSONError(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.WriteJSONError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var event Event
	if err := json.Unmarshal(body, &event); err != nil || event.Event == "" {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	eventID := r.Header.Get(payment.EventIDHeader)
	if eventID == "" {
		sum := sha256.Sum256(body)
		eventID = hex.EncodeToString(sum[:])
	}

	gatewayOrderID := event.gatewayOrderID()
	log = log.With(
		zap.String("event", event.Event),
		zap.String("event_id", eventID),
		zap.String("gateway_order_id", gatewayOrderID),
	)

	webhookID, duplicate, err := h.Repo.SavePaymentWebhook(
		ctx, payment.ProviderRazorpay, eventID, event.Event, gatewayOrderID, body, true,
	)
	if err != nil {
		log.Error("failed to record webhook", zap.Error(err))
		utils.WriteJSONError(w, "failed to record webhook", http.StatusInternalServerError)
		return
	}
	if duplicate {
		h.metrics.Counter(metrics.WebhooksDuplicate).Inc()
		log.Info("duplicate webhook ignored")
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "duplicate"})
		return
	}

	switch event.Event {
	case EventPaymentCaptured, EventOrderPaid:
		_, err = h.Payments.Confirm(ctx, gatewayOrderID, event.paymentID())
	case EventPaymentFailed:
		err = h.Payments.Fail(ctx, gatewayOrderID, event.paymentID())
	default:
		log.Info("webhook event ignored")
	}

	if err != nil {
		if markErr := h.Repo.MarkWebhookFailed(ctx, webhookID, err.Error()); markErr != nil {
			log.Error("failed to mark webhook failed", zap.Error(markErr))
		}

		// unknown or mismatched orders will not resolve on retry
		if isPermanent(err) {
			log.Warn("webhook for unknown order", zap.Error(err))
			utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
			return
		}

		log.Error("failed to apply webhook", zap.Error(err))
		utils.WriteJSONError(w, "failed to update order", http.StatusInternalServerError)
		return
	}

	if err := h.Repo.MarkWebhookProcessed(ctx, webhookID); err != nil {
		log.Error("failed to mark webhook processed", zap.Error(err))
	}

	log.Info("webhook processed")
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func isPermanent(err error) bool {
	return errors.Is(err, order.ErrOrderNotFound) ||
		errors.Is(err, payment.ErrPaymentNotFound) ||
		errors.Is(err, payment.ErrOrderMismatch)
}
