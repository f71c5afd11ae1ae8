package payment

import (
	"context"
	"errors"

	"daztao-be/internal/logger"
	"daztao-be/internal/order"
	"daztao-be/internal/pricing"
	"daztao-be/internal/utils"

	"go.uber.org/zap"
)

// OrderStore is the slice of the order service payments need.
type OrderStore interface {
	Get(ctx context.Context, ref string) (*order.Order, error)
	AttachRazorpayOrder(ctx context.Context, ref, razorpayOrderID string) (*order.Order, error)
	MarkPaid(ctx context.Context, ref, razorpayOrderID, paymentID string) (*order.Order, error)
}

type Service interface {
	// StartCheckout opens a gateway order for an unpaid UPI order.
	StartCheckout(ctx context.Context, orderRef string) (*Checkout, error)
	// Verify checks the widget signature and marks the order paid.
	Verify(ctx context.Context, req VerifyRequest) (*order.Order, error)
	// Confirm records a gateway-confirmed capture; used by the webhook.
	Confirm(ctx context.Context, gatewayOrderID, paymentID string) (*order.Order, error)
	Fail(ctx context.Context, gatewayOrderID, paymentID string) error
}

type service struct {
	gateway Gateway
	repo    Repository
	orders  OrderStore
}

func NewService(gateway Gateway, repo Repository, orders OrderStore) Service {
	return &service{gateway: gateway, repo: repo, orders: orders}
}

func (s *service) StartCheckout(ctx context.Context, orderRef string) (*Checkout, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "StartCheckout"),
		zap.String("order_ref", orderRef),
	)

	o, err := s.orders.Get(ctx, orderRef)
	if err != nil {
		return nil, err
	}
	if o.PaymentMethod != pricing.MethodUPI || o.Status.IsTerminal() {
		return nil, ErrNotOnlinePayment
	}
	if o.IsPaid {
		return nil, ErrAlreadyPaid
	}

	open, err := s.openCheckout(ctx, o)
	if err != nil {
		log.Error("failed to look up payment ledger", zap.Error(err))
		return nil, err
	}
	if open != nil {
		log.Info("reusing open gateway order", zap.String("gateway_order_id", open.GatewayOrderID))
		return open, nil
	}

	receipt := utils.GenerateReceipt()
	gwOrder, err := s.gateway.CreateOrder(ctx, o.Amount, receipt)
	if err != nil {
		log.Error("gateway order failed", zap.Error(err))
		return nil, err
	}

	p := &Payment{
		OrderID:        o.OrderID,
		GatewayOrderID: gwOrder.ID,
		Amount:         o.Amount,
		Currency:       CurrencyINR,
		Receipt:        receipt,
		Status:         StatusCreated,
	}
	if err := s.repo.SavePayment(ctx, p); err != nil {
		log.Error("failed to save payment", zap.Error(err))
		return nil, err
	}

	if _, err := s.orders.AttachRazorpayOrder(ctx, o.ID, gwOrder.ID); err != nil {
		log.Error("failed to attach gateway order", zap.Error(err))
		return nil, err
	}

	log.Info("checkout started", zap.String("order_id", o.OrderID), zap.String("gateway_order_id", gwOrder.ID))
	return s.checkoutFor(p), nil
}

// openCheckout returns the gateway order still awaiting payment for o, or nil
// when a new one has to be opened.
func (s *service) openCheckout(ctx context.Context, o *order.Order) (*Checkout, error) {
	p, err := s.repo.GetPaymentByOrder(ctx, o.OrderID)
	if errors.Is(err, ErrPaymentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if p.Status != StatusCreated || p.Amount != o.Amount {
		return nil, nil
	}

	if o.RazorpayOrderID != p.GatewayOrderID {
		if _, err := s.orders.AttachRazorpayOrder(ctx, o.ID, p.GatewayOrderID); err != nil {
			return nil, err
		}
	}
	return s.checkoutFor(p), nil
}

func (s *service) checkoutFor(p *Payment) *Checkout {
	return &Checkout{
		KeyID:          s.gateway.KeyID(),
		OrderID:        p.OrderID,
		GatewayOrderID: p.GatewayOrderID,
		Amount:         toPaise(p.Amount),
		Currency:       CurrencyINR,
		Receipt:        p.Receipt,
	}
}

func (s *service) Verify(ctx context.Context, req VerifyRequest) (*order.Order, error) {
	if req.GatewayOrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return nil, ErrInvalidVerifyParams
	}

	if err := s.gateway.VerifyPaymentSignature(req.GatewayOrderID, req.PaymentID, req.Signature); err != nil {
		logger.FromCtx(ctx).Warn("payment signature rejected",
			zap.String("gateway_order_id", req.GatewayOrderID),
			zap.Error(err),
		)
		return nil, err
	}

	return s.Confirm(ctx, req.GatewayOrderID, req.PaymentID)
}

// Confirm resolves gatewayOrderID through the payment ledger, so any gateway
// order ever opened for a storefront order can settle it.
func (s *service) Confirm(ctx context.Context, gatewayOrderID, paymentID string) (*order.Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Confirm"),
		zap.String("gateway_order_id", gatewayOrderID),
	)

	p, err := s.repo.GetPaymentByGatewayOrder(ctx, gatewayOrderID)
	if err != nil {
		return nil, err
	}

	if paymentID != "" {
		if err := s.checkCaptured(ctx, p, paymentID); err != nil {
			log.Warn("payment not accepted", zap.String("payment_id", paymentID), zap.Error(err))
			return nil, err
		}
	}

	o, err := s.orders.MarkPaid(ctx, p.OrderID, gatewayOrderID, paymentID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdatePaymentStatus(ctx, gatewayOrderID, paymentID, StatusCaptured); err != nil {
		// the order is already paid; the ledger row is informational
		log.Error("failed to update payment ledger", zap.Error(err))
	}
	return o, nil
}

// checkCaptured asks the gateway whether paymentID settled p in full.
func (s *service) checkCaptured(ctx context.Context, p *Payment, paymentID string) error {
	details, err := s.gateway.FetchPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if details.OrderID != p.GatewayOrderID || details.Amount != toPaise(p.Amount) {
		return ErrOrderMismatch
	}
	if details.Status != string(StatusCaptured) {
		return ErrPaymentNotCaptured
	}
	return nil
}

func (s *service) Fail(ctx context.Context, gatewayOrderID, paymentID string) error {
	err := s.repo.UpdatePaymentStatus(ctx, gatewayOrderID, paymentID, StatusFailed)
	if err != nil && !errors.Is(err, ErrPaymentNotFound) {
		return err
	}
	return nil
}
