package order

import (
	"context"
	"errors"
	"strings"

	"daztao-be/internal/logger"
	"daztao-be/internal/metrics"
	"daztao-be/internal/pricing"
	"daztao-be/internal/product"
	"daztao-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxOrderIDAttempts = 5

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Order, error)
	Get(ctx context.Context, ref string) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	Update(ctx context.Context, ref string, patch Patch) (*Order, error)
	Transition(ctx context.Context, ref string, action Action) (*Order, error)
	SubmitUTR(ctx context.Context, ref, utr string) (*Order, error)
	Delete(ctx context.Context, ref string) error
	AttachRazorpayOrder(ctx context.Context, ref, razorpayOrderID string) (*Order, error)
	MarkPaid(ctx context.Context, ref, razorpayOrderID, paymentID string) (*Order, error)
	Stats(ctx context.Context) (Stats, error)
}

// ProductReader is the catalogue lookup used to snapshot items.
type ProductReader interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]product.Product, error)
}

type service struct {
	repo     Repository
	products ProductReader
	metrics  *metrics.Registry
	newID    func() (string, error)
}

func NewService(repo Repository, products ProductReader) Service {
	return &service{
		repo:     repo,
		products: products,
		metrics:  metrics.Default,
		newID:    GenerateOrderID,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
	)

	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if !req.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	if err := req.Customer.Validate(); err != nil {
		return nil, err
	}

	items, err := s.snapshotItems(ctx, req.Items)
	if err != nil {
		log.Warn("order items rejected", zap.Error(err))
		return nil, err
	}

	quote := pricing.Calculate(items.Lines(), req.PaymentMethod)
	if req.Amount != 0 && req.Amount != quote.Total {
		log.Warn("client amount does not match server quote",
			zap.Int64("client_amount", req.Amount),
			zap.Int64("server_amount", quote.Total),
		)
		return nil, ErrAmountMismatch
	}

	o := &Order{
		Customer:      req.Customer,
		Items:         items,
		Subtotal:      quote.Subtotal,
		Discount:      quote.Discount,
		Fee:           quote.Fee,
		Amount:        quote.Total,
		PaymentMethod: req.PaymentMethod,
		Verification:  VerificationNone,
		Status:        StatusPending,
	}

	for attempt := 1; attempt <= maxOrderIDAttempts; attempt++ {
		o.OrderID, err = s.newID()
		if err != nil {
			return nil, err
		}

		err = s.repo.Create(ctx, o)
		if !errors.Is(err, ErrDuplicateOrderID) {
			break
		}
		s.metrics.Counter(metrics.OrderIDCollisions).Inc()
		log.Warn("order id collision, retrying", zap.String("order_id", o.OrderID), zap.Int("attempt", attempt))
	}

	var stockErr *StockError
	switch {
	case errors.Is(err, ErrDuplicateOrderID):
		log.Error("order id space exhausted", zap.Int("attempts", maxOrderIDAttempts))
		return nil, ErrOrderIDExhausted
	case errors.As(err, &stockErr):
		s.metrics.Counter(metrics.OrdersStockRejected).Inc()
		log.Info("order rejected for stock", zap.String("item", stockErr.Title), zap.Int("available", stockErr.Available))
		return nil, err
	case err != nil:
		var missing *ProductMissingError
		if !errors.As(err, &missing) {
			log.Error("failed to create order", zap.Error(err))
		}
		return nil, err
	}

	s.metrics.Counter(metrics.OrdersCreated).Inc()
	log.Info("order created",
		zap.String("order_id", o.OrderID),
		zap.Int64("amount", o.Amount),
		zap.String("payment_method", string(o.PaymentMethod)),
	)
	return o, nil
}

// snapshotItems copies title, price and cover from the catalogue so the order
// never trusts client-side prices.
func (s *service) snapshotItems(ctx context.Context, in []Item) (Items, error) {
	ids := make([]string, 0, len(in))
	for _, item := range in {
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		ids = append(ids, item.ProductID)
	}

	catalogue, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make(Items, 0, len(in))
	for _, item := range in {
		p, ok := catalogue[item.ProductID]
		if !ok || !p.IsVisible() {
			return nil, &ProductMissingError{Title: item.Title}
		}

		image := p.Cover()
		if image == "" {
			image = item.Image
		}

		out = append(out, Item{
			ProductID: p.ID,
			Title:     p.Title,
			Quantity:  item.Quantity,
			Price:     p.Price,
			Links:     fitLinks(item.Links, item.Quantity),
			Image:     image,
		})
	}
	return out, nil
}

// Get accepts either the internal uuid or the DAZ- order id.
func (s *service) Get(ctx context.Context, ref string) (*Order, error) {
	ref = strings.TrimSpace(ref)
	if _, err := uuid.Parse(ref); err == nil {
		return s.repo.GetByID(ctx, ref)
	}
	if IsOrderID(ref) {
		return s.repo.GetByOrderID(ctx, strings.ToUpper(ref))
	}
	return nil, ErrOrderNotFound
}

func (s *service) List(ctx context.Context) ([]Order, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, ref string, patch Patch) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateOrder"),
		zap.String("ref", ref),
	)

	current, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}

	patch.Normalize()
	next, err := applyPatch(*current, patch)
	if err != nil {
		log.Warn("order update rejected", zap.Error(err))
		return nil, err
	}

	if err := s.repo.Update(ctx, &next, current.Status); err != nil {
		if !errors.Is(err, ErrConcurrentUpdate) {
			log.Error("failed to update order", zap.Error(err))
		}
		return nil, err
	}

	if next.Status != current.Status {
		s.metrics.Counter(metrics.OrderTransitions).Inc()
		log.Info("order status changed",
			zap.String("order_id", next.OrderID),
			zap.String("from", string(current.Status)),
			zap.String("to", string(next.Status)),
		)
	}
	return &next, nil
}

// applyPatch merges patch into o, enforcing the lifecycle rules.
func applyPatch(o Order, patch Patch) (Order, error) {
	if patch.Customer != nil {
		if err := patch.Customer.Validate(); err != nil {
			return o, err
		}
		o.Customer = *patch.Customer
	}

	if patch.Amount != nil {
		if *patch.Amount < 0 {
			return o, ErrInvalidAmount
		}
		o.Amount = *patch.Amount
	}

	if patch.PaymentID != nil {
		o.PaymentID = strings.TrimSpace(*patch.PaymentID)
	}

	if patch.UTR != nil {
		utr, err := ValidateUTR(*patch.UTR)
		if err != nil {
			return o, err
		}
		o.UTR = utr
		if o.Verification != VerificationVerified {
			o.Verification = VerificationPending
		}
	}

	if patch.Verification != nil {
		v, err := ParseVerification(*patch.Verification)
		if err != nil {
			return o, err
		}
		o.Verification = v
		if v == VerificationVerified {
			o.IsPaid = true
		}
	}

	if patch.IsPaid != nil {
		if !*patch.IsPaid && o.Status == StatusDelivered {
			return o, ErrPaidDowngrade
		}
		o.IsPaid = *patch.IsPaid
	}

	if patch.Status != nil {
		target, err := ParseStatus(*patch.Status)
		if err != nil {
			return o, err
		}
		if target != o.Status {
			if !CanTransition(o.Status, target) {
				return o, &TransitionError{From: o.Status, To: target}
			}
			o.Status = target
		}
	}

	// delivery confirms payment; it only ever upgrades the flag
	if o.Status == StatusDelivered {
		o.IsPaid = true
	}

	return o, nil
}

func (s *service) Transition(ctx context.Context, ref string, action Action) (*Order, error) {
	current, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}

	target, err := action.Target(current.Status)
	if err != nil {
		return nil, err
	}

	return s.Update(ctx, current.ID, Patch{Status: utils.StrPtr(string(target))})
}

func (s *service) SubmitUTR(ctx context.Context, ref, utr string) (*Order, error) {
	current, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if current.Status.IsTerminal() {
		return nil, ErrOrderClosed
	}
	if current.PaymentMethod != pricing.MethodUPI || current.IsPaid {
		return nil, ErrUTRNotApplicable
	}

	updated, err := s.Update(ctx, current.ID, Patch{UTR: &utr})
	if err != nil {
		return nil, err
	}

	s.metrics.Counter(metrics.UTRSubmissions).Inc()
	return updated, nil
}

func (s *service) Delete(ctx context.Context, ref string) error {
	o, err := s.Get(ctx, ref)
	if err != nil {
		return err
	}
	if !o.Status.IsTerminal() {
		return ErrNotTerminal
	}

	if err := s.repo.Delete(ctx, o.ID); err != nil {
		return err
	}

	s.metrics.Counter(metrics.OrdersDeleted).Inc()
	logger.FromCtx(ctx).Info("order deleted",
		zap.String("order_id", o.OrderID),
		zap.String("status", string(o.Status)),
	)
	return nil
}

func (s *service) AttachRazorpayOrder(ctx context.Context, ref, razorpayOrderID string) (*Order, error) {
	o, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if o.Status.IsTerminal() {
		return nil, ErrOrderClosed
	}

	o.RazorpayOrderID = razorpayOrderID
	if err := s.repo.Update(ctx, o, o.Status); err != nil {
		return nil, err
	}
	return o, nil
}

// MarkPaid records a gateway-confirmed payment against ref. razorpayOrderID
// is the gateway order that was paid, which need not be the latest one
// attached. Repeated calls are no-ops.
func (s *service) MarkPaid(ctx context.Context, ref, razorpayOrderID, paymentID string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "MarkPaid"),
		zap.String("order_ref", ref),
		zap.String("razorpay_order_id", razorpayOrderID),
	)

	o, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if o.IsPaid && o.Verification == VerificationVerified {
		log.Info("order already paid", zap.String("order_id", o.OrderID))
		return o, nil
	}

	o.IsPaid = true
	o.Verification = VerificationVerified
	o.RazorpayOrderID = razorpayOrderID
	if paymentID != "" {
		o.PaymentID = paymentID
	}

	if err := s.repo.Update(ctx, o, o.Status); err != nil {
		log.Error("failed to mark order paid", zap.Error(err))
		return nil, err
	}

	s.metrics.Counter(metrics.PaymentsCaptured).Inc()
	log.Info("order marked paid", zap.String("order_id", o.OrderID), zap.String("payment_id", paymentID))
	return o, nil
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Summarize(orders), nil
}
