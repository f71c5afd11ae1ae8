package acceptance

import (
	"context"
	"sort"
	"sync"
	"time"

	"daztao-be/internal/order"
	"daztao-be/internal/product"

	"github.com/google/uuid"
)

// memStore is an in-process stand-in for Postgres holding products and
// orders under one lock, so stock reservation stays all-or-nothing.
type memStore struct {
	mu       sync.Mutex
	products map[string]*product.Product
	orders   []*order.Order
}

func newMemStore() *memStore {
	return &memStore{products: make(map[string]*product.Product)}
}

type memProducts struct{ s *memStore }

type memOrders struct{ s *memStore }

func (m memProducts) List(_ context.Context, opts product.ListOptions) ([]product.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	out := make([]product.Product, 0, len(m.s.products))
	for _, p := range m.s.products {
		if opts.IncludeHidden || p.IsVisible() {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m memProducts) GetBySlug(_ context.Context, slug string) (*product.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, p := range m.s.products {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, product.ErrProductNotFound
}

func (m memProducts) GetByIDs(_ context.Context, ids []string) (map[string]product.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	out := make(map[string]product.Product, len(ids))
	for _, id := range ids {
		if p, ok := m.s.products[id]; ok {
			out[id] = *p
		}
	}
	return out, nil
}

func (m memProducts) Create(_ context.Context, p *product.Product) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, existing := range m.s.products {
		if existing.Slug == p.Slug {
			return product.ErrSlugTaken
		}
	}
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.s.products[p.ID] = &cp
	return nil
}

func (m memProducts) Update(_ context.Context, currentSlug string, p *product.Product, stock *int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for id, existing := range m.s.products {
		if existing.Slug == currentSlug {
			p.Stock = existing.Stock
			if stock != nil {
				p.Stock = *stock
			}
			p.UpdatedAt = time.Now()
			cp := *p
			m.s.products[id] = &cp
			return nil
		}
	}
	return product.ErrProductNotFound
}

func (m memProducts) Delete(_ context.Context, slug string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for id, existing := range m.s.products {
		if existing.Slug == slug {
			delete(m.s.products, id)
			return nil
		}
	}
	return product.ErrProductNotFound
}

// Create reserves under the store lock. The SQL path (transaction plus
// conditional decrement, rollback on the first shortfall) is covered by
// TestRepository_Create in internal/order/repository_test.go.
func (m memOrders) Create(_ context.Context, o *order.Order) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, existing := range m.s.orders {
		if existing.OrderID == o.OrderID {
			return order.ErrDuplicateOrderID
		}
	}

	wanted := make(map[string]int)
	titles := make(map[string]string)
	for _, item := range o.Items {
		wanted[item.ProductID] += item.Quantity
		titles[item.ProductID] = item.Title
	}
	for id, qty := range wanted {
		p, ok := m.s.products[id]
		if !ok {
			return &order.ProductMissingError{Title: titles[id]}
		}
		if p.Stock < qty {
			return &order.StockError{Title: p.Title, Available: p.Stock}
		}
	}
	for id, qty := range wanted {
		m.s.products[id].Stock -= qty
	}

	o.ID = uuid.NewString()
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	cp := *o
	m.s.orders = append(m.s.orders, &cp)
	return nil
}

func (m memOrders) find(match func(*order.Order) bool) (*order.Order, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, o := range m.s.orders {
		if match(o) {
			cp := *o
			return &cp, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (m memOrders) GetByID(_ context.Context, id string) (*order.Order, error) {
	return m.find(func(o *order.Order) bool { return o.ID == id })
}

func (m memOrders) GetByOrderID(_ context.Context, orderID string) (*order.Order, error) {
	return m.find(func(o *order.Order) bool { return o.OrderID == orderID })
}

func (m memOrders) List(_ context.Context) ([]order.Order, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	out := make([]order.Order, 0, len(m.s.orders))
	for i := len(m.s.orders) - 1; i >= 0; i-- {
		out = append(out, *m.s.orders[i])
	}
	return out, nil
}

func (m memOrders) Update(_ context.Context, o *order.Order, expected order.Status) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for i, existing := range m.s.orders {
		if existing.ID != o.ID {
			continue
		}
		if existing.Status != expected {
			return order.ErrConcurrentUpdate
		}
		o.UpdatedAt = time.Now()
		cp := *o
		m.s.orders[i] = &cp
		return nil
	}
	return order.ErrConcurrentUpdate
}

func (m memOrders) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for i, existing := range m.s.orders {
		if existing.ID == id && existing.Status.IsTerminal() {
			m.s.orders = append(m.s.orders[:i], m.s.orders[i+1:]...)
			return nil
		}
	}
	return order.ErrOrderNotFound
}

func (m *memStore) stock(slug string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.products {
		if p.Slug == slug {
			return p.Stock, true
		}
	}
	return 0, false
}
