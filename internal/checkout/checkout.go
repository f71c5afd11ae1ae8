package checkout

import (
	"context"
	"errors"

	"daztao-be/internal/cart"
	"daztao-be/internal/logger"
	"daztao-be/internal/notify"
	"daztao-be/internal/order"
	"daztao-be/internal/payment"
	"daztao-be/internal/pricing"
	"daztao-be/internal/utils"

	"go.uber.org/zap"
)

var ErrEmptyCart = errors.New("your cart is empty")

// OrderPlacer submits the order; *client.Client satisfies it.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, req order.CreateRequest) (*order.CreateResponse, error)
}

type Confirmation struct {
	OrderID      string        `json:"orderId"`
	Quote        pricing.Quote `json:"quote"`
	WhatsAppURL  string        `json:"whatsappUrl"`
	Instructions []string      `json:"instructions"`
}

type Service struct {
	cart           *cart.Store
	orders         OrderPlacer
	whatsAppNumber string
	upiID          string
}

func NewService(store *cart.Store, orders OrderPlacer, whatsAppNumber, upiID string) *Service {
	return &Service{
		cart:           store,
		orders:         orders,
		whatsAppNumber: whatsAppNumber,
		upiID:          upiID,
	}
}

// Quote prices the current cart for method.
func (s *Service) Quote(method pricing.PaymentMethod) pricing.Quote {
	return pricing.Calculate(lines(s.cart.Items()), method)
}

func lines(items []cart.Item) []pricing.Line {
	out := make([]pricing.Line, len(items))
	for i, it := range items {
		out[i] = pricing.Line{Price: it.Price, Quantity: it.Quantity}
	}
	return out
}

// BuildRequest turns the cart snapshot into the order-creation payload.
func BuildRequest(items []cart.Item, customer order.Customer, method pricing.PaymentMethod) order.CreateRequest {
	quote := pricing.Calculate(lines(items), method)

	reqItems := make([]order.Item, len(items))
	for i, it := range items {
		reqItems[i] = order.Item{
			ProductID: it.ProductID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Links:     it.Links,
			Image:     it.Image,
		}
	}

	return order.CreateRequest{
		Customer:        customer,
		Items:           reqItems,
		Amount:          quote.Total,
		DiscountApplied: quote.Discount,
		PaymentMethod:   method,
	}
}

// Place validates and submits the cart. The cart is cleared only after the
// order is accepted; on any error it is left as it was.
func (s *Service) Place(ctx context.Context, customer order.Customer, method pricing.PaymentMethod) (*Confirmation, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "checkout"),
		zap.String("method", "Place"),
	)

	items := s.cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if !method.Valid() {
		return nil, order.ErrInvalidPaymentMethod
	}
	if err := customer.Validate(); err != nil {
		return nil, err
	}

	req := BuildRequest(items, customer, method)
	res, err := s.orders.CreateOrder(ctx, req)
	if err != nil {
		log.Warn("order placement failed", zap.Error(err))
		return nil, err
	}

	if err := s.cart.Clear(); err != nil {
		log.Error("order placed but cart not cleared", zap.String("order_id", res.OrderID), zap.Error(err))
	}

	quote := pricing.Calculate(lines(items), method)
	msg := notify.ConfirmationMessage(notify.Confirmation{
		OrderID: res.OrderID,
		Method:  method,
		Amount:  quote.Total,
		Name:    customer.FullName(),
		Phone:   customer.Phone,
	})

	instructions := payment.InjectVariables(payment.GetInstructions(method), payment.InstructionVars{
		"amount":   utils.FormatINR(quote.Total),
		"order_id": res.OrderID,
		"upi_id":   s.upiID,
	})

	log.Info("order placed", zap.String("order_id", res.OrderID), zap.Int64("amount", quote.Total))
	return &Confirmation{
		OrderID:      res.OrderID,
		Quote:        quote,
		WhatsAppURL:  notify.WhatsAppLink(s.whatsAppNumber, msg),
		Instructions: instructions,
	}, nil
}
