package order

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"daztao-be/internal/pricing"
	"daztao-be/internal/product"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, o *Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) GetByOrderID(ctx context.Context, orderID string) (*Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context) ([]Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Order), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, o *Order, expected Status) error {
	args := m.Called(ctx, o, expected)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockProductReader struct {
	mock.Mock
}

func (m *MockProductReader) GetByIDs(ctx context.Context, ids []string) (map[string]product.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]product.Product), args.Error(1)
}

var catalogue = map[string]product.Product{
	"p-ig": {ID: "p-ig", Title: "Instagram NFC Keychain", Price: 599, Status: product.StatusActive,
		Media: product.MediaList{{URL: "/ig.png", Type: product.MediaImage}}},
	"p-sc": {ID: "p-sc", Title: "Snapchat NFC Keychain", Price: 599, Status: product.StatusActive},
	"p-wa": {ID: "p-wa", Title: "WhatsApp NFC Keychain", Price: 699, Status: product.StatusDraft},
}

func newTestService(repo *MockRepository, products *MockProductReader, ids ...string) *service {
	svc := NewService(repo, products).(*service)
	i := 0
	svc.newID = func() (string, error) {
		if i >= len(ids) {
			return "", errors.New("no more ids")
		}
		id := ids[i]
		i++
		return id, nil
	}
	return svc
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("UPI bundle of two", func(t *testing.T) {
		repo := new(MockRepository)
		products := new(MockProductReader)
		svc := newTestService(repo, products, "DAZ-48213")

		products.On("GetByIDs", ctx, []string{"p-ig"}).Return(catalogue, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*order.Order")).Return(nil)

		o, err := svc.Create(ctx, CreateRequest{
			Customer:      validCustomer(),
			Items:         []Item{{ProductID: "p-ig", Title: "ignored", Quantity: 2, Price: 1, Links: []string{"https://instagram.com/asha"}}},
			Amount:        1098,
			PaymentMethod: pricing.MethodUPI,
		})

		require.NoError(t, err)
		assert.Equal(t, "DAZ-48213", o.OrderID)
		assert.Equal(t, int64(1198), o.Subtotal)
		assert.Equal(t, int64(100), o.Discount)
		assert.Equal(t, int64(0), o.Fee)
		assert.Equal(t, int64(1098), o.Amount)
		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, VerificationNone, o.Verification)
		assert.False(t, o.IsPaid)
		assert.Equal(t, "Instagram NFC Keychain", o.Items[0].Title)
		assert.Equal(t, int64(599), o.Items[0].Price)
		assert.Equal(t, "/ig.png", o.Items[0].Image)
		assert.Equal(t, []string{"https://instagram.com/asha", ""}, o.Items[0].Links)
		repo.AssertExpectations(t)
	})

	t.Run("COD single item", func(t *testing.T) {
		repo := new(MockRepository)
		products := new(MockProductReader)
		svc := newTestService(repo, products, "DAZ-11111")

		products.On("GetByIDs", ctx, []string{"p-sc"}).Return(catalogue, nil)
		repo.On("Create", ctx, mock.Anything).Return(nil)

		o, err := svc.Create(ctx, CreateRequest{
			Customer:      validCustomer(),
			Items:         []Item{{ProductID: "p-sc", Quantity: 1}},
			Amount:        699,
			PaymentMethod: pricing.MethodCOD,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(100), o.Fee)
		assert.Equal(t, int64(0), o.Discount)
		assert.Equal(t, int64(699), o.Amount)
	})

	t.Run("Amount mismatch", func(t *testing.T) {
		repo := new(MockRepository)
		products := new(MockProductReader)
		svc := newTestService(repo, products, "DAZ-11111")

		products.On("GetByIDs", ctx, []string{"p-ig"}).Return(catalogue, nil)

		_, err := svc.Create(ctx, CreateRequest{
			Customer:      validCustomer(),
			Items:         []Item{{ProductID: "p-ig", Quantity: 1}},
			Amount:        1,
			PaymentMethod: pricing.MethodUPI,
		})

		assert.ErrorIs(t, err, ErrAmountMismatch)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Hidden product", func(t *testing.T) {
		repo := new(MockRepository)
		products := new(MockProductReader)
		svc := newTestService(repo, products)

		products.On("GetByIDs", ctx, []string{"p-wa"}).Return(catalogue, nil)

		_, err := svc.Create(ctx, CreateRequest{
			Customer:      validCustomer(),
			Items:         []Item{{ProductID: "p-wa", Title: "WhatsApp NFC Keychain", Quantity: 1}},
			PaymentMethod: pricing.MethodUPI,
		})

		assert.EqualError(t, err, "Product not found: WhatsApp NFC Keychain")
	})

	t.Run("Input validation", func(t *testing.T) {
		svc := newTestService(new(MockRepository), new(MockProductReader))

		_, err := svc.Create(ctx, CreateRequest{Customer: validCustomer(), PaymentMethod: pricing.MethodUPI})
		assert.ErrorIs(t, err, ErrEmptyOrder)

		_, err = svc.Create(ctx, CreateRequest{
			Customer:      validCustomer(),
			Items:         []Item{{ProductID: "p-ig", Quantity: 1}},
			PaymentMethod: "card",
		})
		assert.ErrorIs(t, err, ErrInvalidPaymentMethod)

		_, err = svc.Create(ctx, CreateRequest{
			Items:         []Item{{ProductID: "p-ig", Quantity: 1}},
			PaymentMethod: pricing.MethodCOD,
		})
		var ve *ValidationError
		assert.True(t, errors.As(err, &ve))

		_, err = svc.Create(ctx, CreateRequest{
			Customer:      validCustomer(),
			Items:         []Item{{ProductID: "p-ig", Quantity: 0}},
			PaymentMethod: pricing.MethodCOD,
		})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("Stock rejection passes through", func(t *testing.T) {
		repo := new(MockRepository)
		products := new(MockProductReader)
		svc := newTestService(repo, products, "DAZ-11111")

		products.On("GetByIDs", ctx, []string{"p-ig"}).Return(catalogue, nil)
		repo.On("Create", ctx, mock.Anything).
			Return(&StockError{Title: "Instagram NFC Keychain", Available: 1})

		_, err := svc.Create(ctx, CreateRequest{
			Customer:      validCustomer(),
			Items:         []Item{{ProductID: "p-ig", Quantity: 2}},
			PaymentMethod: pricing.MethodUPI,
		})
		assert.EqualError(t, err, "Sorry, Instagram NFC Keychain is out of stock. Only 1 left.")
	})

	t.Run("Order id collision retries", func(t *testing.T) {
		repo := new(MockRepository)
		products := new(MockProductReader)
		svc := newTestService(repo, products, "DAZ-11111", "DAZ-22222")

		products.On("GetByIDs", ctx, []string{"p-ig"}).Return(catalogue, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(o *Order) bool { return o.OrderID == "DAZ-11111" })).
			Return(ErrDuplicateOrderID).Once()
		repo.On("Create", ctx, mock.MatchedBy(func(o *Order) bool { return o.OrderID == "DAZ-22222" })).
			Return(nil).Once()

		o, err := svc.Create(ctx, CreateRequest{
			Customer:      validCustomer(),
			Items:         []Item{{ProductID: "p-ig", Quantity: 1}},
			PaymentMethod: pricing.MethodUPI,
		})
		require.NoError(t, err)
		assert.Equal(t, "DAZ-22222", o.OrderID)
		repo.AssertNumberOfCalls(t, "Create", 2)
	})

	t.Run("Order id space exhausted", func(t *testing.T) {
		repo := new(MockRepository)
		products := new(MockProductReader)
		ids := make([]string, maxOrderIDAttempts)
		for i := range ids {
			ids[i] = fmt.Sprintf("DAZ-1000%d", i)
		}
		svc := newTestService(repo, products, ids...)

		products.On("GetByIDs", ctx, []string{"p-ig"}).Return(catalogue, nil)
		repo.On("Create", ctx, mock.Anything).Return(ErrDuplicateOrderID)

		_, err := svc.Create(ctx, CreateRequest{
			Customer:      validCustomer(),
			Items:         []Item{{ProductID: "p-ig", Quantity: 1}},
			PaymentMethod: pricing.MethodUPI,
		})
		assert.ErrorIs(t, err, ErrOrderIDExhausted)
		repo.AssertNumberOfCalls(t, "Create", maxOrderIDAttempts)
	})
}

func storedOrder(status Status) *Order {
	return &Order{
		ID:            "0b6f1e9a-6a57-4a8e-9d6f-3f1f0b7a9c11",
		OrderID:       "DAZ-48213",
		Customer:      validCustomer(),
		Amount:        1098,
		PaymentMethod: pricing.MethodUPI,
		Verification:  VerificationNone,
		Status:        status,
	}
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockProductReader))

	stored := storedOrder(StatusPending)
	repo.On("GetByID", ctx, stored.ID).Return(stored, nil)
	repo.On("GetByOrderID", ctx, "DAZ-48213").Return(stored, nil)

	o, err := svc.Get(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored, o)

	o, err = svc.Get(ctx, "daz-48213")
	require.NoError(t, err)
	assert.Equal(t, stored, o)

	_, err = svc.Get(ctx, "garbage")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	str := func(s string) *string { return &s }
	boolean := func(b bool) *bool { return &b }

	t.Run("Legal transition", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockProductReader))
		stored := storedOrder(StatusPending)

		repo.On("GetByOrderID", ctx, "DAZ-48213").Return(stored, nil)
		repo.On("Update", ctx, mock.MatchedBy(func(o *Order) bool { return o.Status == StatusProcessing }), StatusPending).
			Return(nil)

		o, err := svc.Update(ctx, "DAZ-48213", Patch{Status: str("Processing")})
		require.NoError(t, err)
		assert.Equal(t, StatusProcessing, o.Status)
		assert.Equal(t, StatusPending, stored.Status)
	})

	t.Run("Illegal transition", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockProductReader))

		repo.On("GetByOrderID", ctx, "DAZ-48213").Return(storedOrder(StatusShipped), nil)

		_, err := svc.Update(ctx, "DAZ-48213", Patch{Status: str("Cancelled")})
		var te *TransitionError
		require.True(t, errors.As(err, &te))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Legacy verification status", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockProductReader))

		repo.On("GetByOrderID", ctx, "DAZ-48213").Return(storedOrder(StatusPending), nil)
		repo.On("Update", ctx, mock.Anything, StatusPending).Return(nil)

		o, err := svc.Update(ctx, "DAZ-48213", Patch{Status: str("Verification Pending")})
		require.NoError(t, err)
		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, VerificationPending, o.Verification)
	})

	t.Run("Verified marks paid", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockProductReader))

		repo.On("GetByOrderID", ctx, "DAZ-48213").Return(storedOrder(StatusProcessing), nil)
		repo.On("Update", ctx, mock.Anything, StatusProcessing).Return(nil)

		o, err := svc.Update(ctx, "DAZ-48213", Patch{Verification: str("Verified")})
		require.NoError(t, err)
		assert.True(t, o.IsPaid)
	})

	t.Run("Delivery marks paid", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockProductReader))

		repo.On("GetByOrderID", ctx, "DAZ-48213").Return(storedOrder(StatusShipped), nil)
		repo.On("Update", ctx, mock.Anything, StatusShipped).Return(nil)

		o, err := svc.Update(ctx, "DAZ-48213", Patch{Status: str("Delivered")})
		require.NoError(t, err)
		assert.True(t, o.IsPaid)
	})

	t.Run("Prepaid delivery stays paid", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockProductReader))
		stored := storedOrder(StatusShipped)
		stored.IsPaid = true
		stored.Verification = VerificationVerified

		repo.On("GetByOrderID", ctx, "DAZ-48213").Return(stored, nil)
		repo.On("Update", ctx, mock.Anything, StatusShipped).Return(nil)

		o, err := svc.Update(ctx, "DAZ-48213", Patch{Status: str("Delivered")})
		require.NoError(t, err)
		assert.Equal(t, StatusDelivered, o.Status)
		assert.True(t, o.IsPaid)
		assert.Equal(t, VerificationVerified, o.Verification)
	})

	t.Run("Delivered cannot be unpaid", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockProductReader))

		repo.On("GetByOrderID", ctx, "DAZ-48213").Return(storedOrder(StatusDelivered), nil)

		_, err := svc.Update(ctx, "DAZ-48213", Patch{IsPaid: boolean(false)})
		assert.ErrorIs(t, err, ErrPaidDowngrade)
	})

	t.Run("Concurrent update", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockProductReader))

		repo.On("GetByOrderID", ctx, "DAZ-48213").Return(storedOrder(StatusPending), nil)
		repo.On("Update", ctx, mock.Anything, StatusPending).Return(ErrConcurrentUpdate)

		_, err := svc.Update(ctx, "DAZ-48213", Patch{Status: str("Cancelled")})
		assert.ErrorIs(t, err, ErrConcurrentUpdate)
	})
}

func TestService_Transition(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockProductReader))
	stored := storedOrder(StatusProcessing)

	repo.On("GetByOrderID", ctx, "DAZ-48213").Return(stored, nil)
	repo.On("GetByID", ctx, stored.ID).Return(stored, nil)
	repo.On("Update", ctx, mock.Anything, StatusProcessing).Return(nil)

	o, err := svc.Transition(ctx, "DAZ-48213", ActionShip)
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, o.Status)

	_, err = svc.Transition(ctx, "DAZ-48213", ActionDeliver)
	var te *TransitionError
	assert.True(t, errors.As(err, &te))
}

func TestService_TransitionDeliverKeepsPaid(t *testing.T) {
	ctx := context.Background()

	for _, paid := range []bool{false, true} {
		t.Run(fmt.Sprintf("isPaid=%v", paid), func(t *testing.T) {
			repo := new(MockRepository)
			svc := newTestService(repo, new(MockProductReader))
			stored := storedOrder(StatusShipped)
			stored.IsPaid = paid

			repo.On("GetByOrderID", ctx, "DAZ-48213").Return(stored, nil)
			repo.On("GetByID", ctx, stored.ID).Return(stored, nil)
			repo.On("Update", ctx, mock.Anything, StatusShipped).Return(nil)

			o, err := svc.Transition(ctx, "DAZ-48213", ActionDeliver)
			require.NoError(t, err)
			assert.Equal(t, StatusDelivered, o.Status)
			assert.True(t, o.IsPaid)
		})
	}
}

func TestService_SubmitUTR(t *testing.T) {
	ctx := context.Background()

	t.Run("Records UTR and marker", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockProductReader))
		stored := storedOrder(StatusPending)

		repo.On("GetByOrderID", ctx, "DAZ-48213").Return(stored, nil)
		repo.On("GetByID", ctx, stored.ID).Return(stored, nil)
		repo.On("Update", ctx, mock.Anything, StatusPending).Return(nil)

		o, err := svc.SubmitUTR(ctx, "DAZ-48213", "412345678901")
		require.NoError(t, err)
		assert.Equal(t, "412345678901", o.UTR)
		assert.Equal(t, VerificationPending, o.Verification)
		assert.Equal(t, StatusPending, o.Status)
		assert.False(t, o.IsPaid)
	})

	t.Run("Too short", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockProductReader))
		stored := storedOrder(StatusPending)

		repo.On("GetByOrderID", ctx, "DAZ-48213").Return(stored, nil)
		repo.On("GetByID", ctx, stored.ID).Return(stored, nil)

		_, err := svc.SubmitUTR(ctx, "DAZ-48213", "12345")
		assert.ErrorIs(t, err, ErrInvalidUTR)
	})

	t.Run("COD order", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockProductReader))
		stored := storedOrder(StatusPending)
		stored.PaymentMethod = pricing.MethodCOD

		repo.On("GetByOrderID", ctx, "DAZ-48213").Return(stored, nil)

		_, err := svc.SubmitUTR(ctx, "DAZ-48213", "412345678901")
		assert.ErrorIs(t, err, ErrUTRNotApplicable)
	})

	t.Run("Closed order", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockProductReader))

		repo.On("GetByOrderID", ctx, "DAZ-48213").Return(storedOrder(StatusCancelled), nil)

		_, err := svc.SubmitUTR(ctx, "DAZ-48213", "412345678901")
		assert.ErrorIs(t, err, ErrOrderClosed)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Terminal order", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockProductReader))
		stored := storedOrder(StatusDelivered)

		repo.On("GetByOrderID", ctx, "DAZ-48213").Return(stored, nil)
		repo.On("Delete", ctx, stored.ID).Return(nil)

		assert.NoError(t, svc.Delete(ctx, "DAZ-48213"))
		repo.AssertExpectations(t)
	})

	t.Run("Active order", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockProductReader))

		repo.On("GetByOrderID", ctx, "DAZ-48213").Return(storedOrder(StatusShipped), nil)

		assert.ErrorIs(t, svc.Delete(ctx, "DAZ-48213"), ErrNotTerminal)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestService_MarkPaid(t *testing.T) {
	ctx := context.Background()

	t.Run("First capture", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockProductReader))
		stored := storedOrder(StatusPending)
		stored.RazorpayOrderID = "order_Rzp1"

		repo.On("GetByOrderID", ctx, "DAZ-48213").Return(stored, nil)
		repo.On("Update", ctx, stored, StatusPending).Return(nil)

		o, err := svc.MarkPaid(ctx, "DAZ-48213", "order_Rzp1", "pay_123")
		require.NoError(t, err)
		assert.True(t, o.IsPaid)
		assert.Equal(t, VerificationVerified, o.Verification)
		assert.Equal(t, "pay_123", o.PaymentID)
	})

	t.Run("Earlier gateway order", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockProductReader))
		stored := storedOrder(StatusPending)
		stored.RazorpayOrderID = "order_Rzp2"

		repo.On("GetByOrderID", ctx, "DAZ-48213").Return(stored, nil)
		repo.On("Update", ctx, stored, StatusPending).Return(nil)

		o, err := svc.MarkPaid(ctx, "DAZ-48213", "order_Rzp1", "pay_123")
		require.NoError(t, err)
		assert.True(t, o.IsPaid)
		assert.Equal(t, "order_Rzp1", o.RazorpayOrderID)
	})

	t.Run("Already paid", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockProductReader))
		stored := storedOrder(StatusProcessing)
		stored.IsPaid = true
		stored.Verification = VerificationVerified

		repo.On("GetByOrderID", ctx, "DAZ-48213").Return(stored, nil)

		_, err := svc.MarkPaid(ctx, "DAZ-48213", "order_Rzp1", "pay_123")
		require.NoError(t, err)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown order", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockProductReader))

		repo.On("GetByOrderID", ctx, "DAZ-99999").Return(nil, ErrOrderNotFound)

		_, err := svc.MarkPaid(ctx, "DAZ-99999", "order_Rzp1", "pay_123")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestService_Stats(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockProductReader))

	repo.On("List", ctx).Return([]Order{*storedOrder(StatusPending), *storedOrder(StatusCancelled)}, nil)

	s, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, int64(1098), s.Revenue)
}
