package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

type Repository interface {
	SavePayment(ctx context.Context, p *Payment) error
	UpdatePaymentStatus(ctx context.Context, gatewayOrderID, paymentID string, status Status) error
	GetPaymentByOrder(ctx context.Context, orderID string) (*Payment, error)
	GetPaymentByGatewayOrder(ctx context.Context, gatewayOrderID string) (*Payment, error)
	SavePaymentWebhook(
		ctx context.Context,
		provider string,
		eventID string,
		eventType string,
		externalID string,
		payload json.RawMessage,
		signatureValid bool,
	) (webhookID int64, isDuplicate bool, err error)

	MarkWebhookProcessed(ctx context.Context, webhookID int64) error
	MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SavePayment(ctx context.Context, p *Payment) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO payments (order_id,
		gateway_order_id,
		amount,
		currency,
		receipt,
		status,
		provider)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`,
		p.OrderID, p.GatewayOrderID, p.Amount, p.Currency, p.Receipt, string(p.Status), ProviderRazorpay,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, gatewayOrderID, paymentID string, status Status) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = $1, payment_id = COALESCE(NULLIF($2, ''), payment_id), updated_at = now()
		WHERE gateway_order_id = $3
	`, string(status), paymentID, gatewayOrderID)
	return err
}

const paymentColumns = `id, order_id, gateway_order_id, payment_id, amount, currency, receipt, status, created_at, updated_at`

func scanPayment(row *sql.Row) (*Payment, error) {
	var (
		p      Payment
		status string
	)
	err := row.Scan(
		&p.ID, &p.OrderID, &p.GatewayOrderID, &p.PaymentID,
		&p.Amount, &p.Currency, &p.Receipt, &status, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Status = Status(status)
	return &p, nil
}

// GetPaymentByOrder returns the most recent gateway order for orderID.
func (r *repository) GetPaymentByOrder(ctx context.Context, orderID string) (*Payment, error) {
	return scanPayment(r.db.QueryRowContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments WHERE order_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, orderID))
}

// GetPaymentByGatewayOrder resolves a Razorpay order id to its ledger row.
func (r *repository) GetPaymentByGatewayOrder(ctx context.Context, gatewayOrderID string) (*Payment, error) {
	return scanPayment(r.db.QueryRowContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments WHERE gateway_order_id = $1
	`, gatewayOrderID))
}

func (r *repository) SavePaymentWebhook(
	ctx context.Context,
	provider string,
	eventID string,
	eventType string,
	externalID string,
	payload json.RawMessage,
	signatureValid bool,
) (int64, bool, error) {

	const q = `
	INSERT INTO payment_webhooks (
		provider,
		event_id,
		event_type,
		external_id,
		signature_valid,
		payload
	)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (provider, event_id)
	DO UPDATE SET attempts = payment_webhooks.attempts + 1
	WHERE payment_webhooks.processed_at IS NULL
	RETURNING id;
	`

	var id int64
	err := r.db.QueryRowContext(
		ctx,
		q,
		provider,
		eventID,
		eventType,
		externalID,
		signatureValid,
		[]byte(payload),
	).Scan(&id)

	if err != nil {
		// already processed
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		return 0, false, err
	}

	return id, false, nil
}

func (r *repository) MarkWebhookProcessed(
	ctx context.Context,
	webhookID int64,
) error {

	const q = `
	UPDATE payment_webhooks
	SET processed_at = now(), process_error = NULL
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID)
	return err
}

func (r *repository) MarkWebhookFailed(
	ctx context.Context,
	webhookID int64,
	reason string,
) error {

	const q = `
	UPDATE payment_webhooks
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID, reason)
	return err
}
