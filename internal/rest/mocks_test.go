package rest

import (
	"context"
	"time"

	"daztao-be/internal/order"
	"daztao-be/internal/payment"
	"daztao-be/internal/product"

	"github.com/stretchr/testify/mock"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, opts product.ListOptions) ([]product.Product, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, slug string, includeHidden bool) (*product.Product, error) {
	args := m.Called(ctx, slug, includeHidden)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) GetByIDs(ctx context.Context, ids []string) (map[string]product.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]product.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, doc product.Document) (*product.Product, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, slug string, doc product.Document) (*product.Product, error) {
	args := m.Called(ctx, slug, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, slug string) error {
	return m.Called(ctx, slug).Error(0)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) result(args mock.Arguments) (*order.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Create(ctx context.Context, req order.CreateRequest) (*order.Order, error) {
	return m.result(m.Called(ctx, req))
}

func (m *MockOrderService) Get(ctx context.Context, ref string) (*order.Order, error) {
	return m.result(m.Called(ctx, ref))
}

func (m *MockOrderService) List(ctx context.Context) ([]order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) Update(ctx context.Context, ref string, patch order.Patch) (*order.Order, error) {
	return m.result(m.Called(ctx, ref, patch))
}

func (m *MockOrderService) Transition(ctx context.Context, ref string, action order.Action) (*order.Order, error) {
	return m.result(m.Called(ctx, ref, action))
}

func (m *MockOrderService) SubmitUTR(ctx context.Context, ref, utr string) (*order.Order, error) {
	return m.result(m.Called(ctx, ref, utr))
}

func (m *MockOrderService) Delete(ctx context.Context, ref string) error {
	return m.Called(ctx, ref).Error(0)
}

func (m *MockOrderService) AttachRazorpayOrder(ctx context.Context, ref, razorpayOrderID string) (*order.Order, error) {
	return m.result(m.Called(ctx, ref, razorpayOrderID))
}

func (m *MockOrderService) MarkPaid(ctx context.Context, ref, razorpayOrderID, paymentID string) (*order.Order, error) {
	return m.result(m.Called(ctx, ref, razorpayOrderID, paymentID))
}

func (m *MockOrderService) Stats(ctx context.Context) (order.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(order.Stats), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) StartCheckout(ctx context.Context, orderRef string) (*payment.Checkout, error) {
	args := m.Called(ctx, orderRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Checkout), args.Error(1)
}

func (m *MockPaymentService) Verify(ctx context.Context, req payment.VerifyRequest) (*order.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockPaymentService) Confirm(ctx context.Context, gatewayOrderID, paymentID string) (*order.Order, error) {
	args := m.Called(ctx, gatewayOrderID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockPaymentService) Fail(ctx context.Context, gatewayOrderID, paymentID string) error {
	return m.Called(ctx, gatewayOrderID, paymentID).Error(0)
}

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(password string) (string, time.Time, error) {
	args := m.Called(password)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}
