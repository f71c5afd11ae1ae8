package cart

import (
	"context"
	"encoding/json"
	"sync"

	"daztao-be/internal/logger"

	"go.uber.org/zap"
)

// Store is the cart handle passed to callers. It rehydrates from Storage on
// open and writes the full snapshot back after every mutation.
type Store struct {
	mu      sync.Mutex
	cart    *Cart
	storage Storage
}

// Open loads the persisted cart. Unreadable or malformed data is logged and
// replaced by an empty cart.
func Open(ctx context.Context, storage Storage) *Store {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "cart"),
		zap.String("method", "Open"),
	)

	s := &Store{cart: New(), storage: storage}

	data, err := storage.Load()
	if err != nil {
		log.Warn("failed to load cart, starting empty", zap.Error(err))
		return s
	}

	c, err := Decode(data)
	if err != nil {
		log.Warn("discarding malformed cart", zap.Error(err))
		return s
	}

	s.cart = c
	return s
}

// mutate runs fn under the lock and persists the result when fn succeeds.
func (s *Store) mutate(fn func(c *Cart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.cart); err != nil {
		return err
	}
	return s.persist()
}

func (s *Store) persist() error {
	data, err := json.Marshal(s.cart)
	if err != nil {
		return err
	}
	if err := s.storage.Save(data); err != nil {
		logger.L().Error("failed to persist cart", zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) Add(p Product) error {
	return s.mutate(func(c *Cart) error { return c.Add(p) })
}

func (s *Store) Remove(id string) error {
	return s.mutate(func(c *Cart) error {
		c.Remove(id)
		return nil
	})
}

func (s *Store) UpdateQuantity(id string, delta int) error {
	return s.mutate(func(c *Cart) error { return c.UpdateQuantity(id, delta) })
}

func (s *Store) UpdateLink(id string, index int, value string) error {
	return s.mutate(func(c *Cart) error { return c.UpdateLink(id, index, value) })
}

func (s *Store) Clear() error {
	return s.mutate(func(c *Cart) error {
		c.Clear()
		return nil
	})
}

func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Items()
}

func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Total()
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Count()
}
