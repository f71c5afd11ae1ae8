package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"daztao-be/internal/logger"

	"go.uber.org/zap"
)

const (
	razorpayBaseURL  = "https://api.razorpay.com/v1"
	SignatureHeader  = "X-Razorpay-Signature"
	EventIDHeader    = "X-Razorpay-Event-Id"
	maxWebhookLength = 1 << 20
)

type razorpayGateway struct {
	keyID         string
	keySecret     string
	webhookSecret string
	baseURL       string
	httpClient    *http.Client
}

func NewRazorpayGateway(keyID, keySecret, webhookSecret string) Gateway {
	if keyID == "" || keySecret == "" {
		logger.L().Warn("Razorpay keys are empty, online payments will fail")
	}

	return &razorpayGateway{
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		baseURL:       razorpayBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (g *razorpayGateway) KeyID() string {
	return g.keyID
}

func (g *razorpayGateway) CreateOrder(ctx context.Context, amount int64, receipt string) (*GatewayOrder, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "gateway"),
		zap.String("method", "CreateOrder"),
		zap.String("receipt", receipt),
		zap.Int64("amount", amount),
	)

	body, err := json.Marshal(map[string]any{
		"amount":   toPaise(amount),
		"currency": CurrencyINR,
		"receipt":  receipt,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var res GatewayOrder
	if err := g.send(req, &res); err != nil {
		log.Error("Razorpay order creation failed", zap.Error(err))
		return nil, err
	}

	log.Info("Razorpay order created", zap.String("gateway_order_id", res.ID))
	return &res, nil
}

func (g *razorpayGateway) FetchPayment(ctx context.Context, paymentID string) (*PaymentDetails, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/payments/"+paymentID, nil)
	if err != nil {
		return nil, err
	}

	var res PaymentDetails
	if err := g.send(req, &res); err != nil {
		logger.FromCtx(ctx).Error("Razorpay payment fetch failed",
			zap.String("payment_id", paymentID),
			zap.Error(err),
		)
		return nil, err
	}
	return &res, nil
}

func (g *razorpayGateway) send(req *http.Request, out any) error {
	if g.keyID == "" || g.keySecret == "" {
		return ErrMissingSecret
	}
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read razorpay response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("razorpay error %d: %s", resp.StatusCode, string(data))
	}

	return json.Unmarshal(data, out)
}

func (g *razorpayGateway) VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) error {
	if g.keySecret == "" {
		return ErrMissingSecret
	}
	return checkHMAC([]byte(gatewayOrderID+"|"+paymentID), g.keySecret, signature)
}

func (g *razorpayGateway) VerifySignature(r *http.Request) error {
	if g.webhookSecret == "" {
		return ErrMissingSecret
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookLength))
	if err != nil {
		return err
	}
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	return checkHMAC(body, g.webhookSecret, r.Header.Get(SignatureHeader))
}

// Sign returns the hex HMAC-SHA256 of payload, the scheme Razorpay uses for
// both checkout and webhook signatures.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func checkHMAC(payload []byte, secret, signature string) error {
	expected := Sign(payload, secret)
	if signature == "" || !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
