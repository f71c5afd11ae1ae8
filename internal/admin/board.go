package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"daztao-be/internal/logger"
	"daztao-be/internal/order"

	"go.uber.org/zap"
)

var (
	ErrOrderNotOnBoard = errors.New("order is not on the board")
	ErrDeleteDeclined  = errors.New("delete cancelled")
)

// Remote is the API the board syncs through; *client.Client satisfies it.
type Remote interface {
	UpdateOrder(ctx context.Context, ref string, patch order.Patch) (*order.Order, error)
	DeleteOrder(ctx context.Context, ref string) error
}

// Command is one operator action on the board. Apply mutates local state and
// remembers what it replaced so Inverse can undo it.
type Command interface {
	Apply(b *Board) error
	Inverse() Command
	Send(ctx context.Context, r Remote) error
}

// SyncError is returned when the server rejected a command that had already
// been applied locally. The local change has been rolled back.
type SyncError struct {
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("Sync failed. Please refresh. (%v)", e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Board is the operator's local copy of the order list, newest first.
type Board struct {
	mu     sync.Mutex
	orders []order.Order
	remote Remote
}

func NewBoard(orders []order.Order, remote Remote) *Board {
	return &Board{
		orders: append([]order.Order(nil), orders...),
		remote: remote,
	}
}

func (b *Board) Orders() []order.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]order.Order(nil), b.orders...)
}

// Find returns a copy of the order with the given DAZ id.
func (b *Board) Find(orderID string) (order.Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.index(orderID); i >= 0 {
		return b.orders[i], true
	}
	return order.Order{}, false
}

// Actions lists what the operator can do next with orderID; nil for unknown
// or finished orders.
func (b *Board) Actions(orderID string) []order.Action {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.index(orderID); i >= 0 {
		return order.AvailableActions(b.orders[i].Status)
	}
	return nil
}

func (b *Board) index(orderID string) int {
	for i := range b.orders {
		if b.orders[i].OrderID == orderID {
			return i
		}
	}
	return -1
}

// Execute applies cmd locally, sends it, and replays the inverse if the
// server rejects it.
func (b *Board) Execute(ctx context.Context, cmd Command) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "admin"),
		zap.String("method", "Execute"),
		zap.String("command", fmt.Sprintf("%T", cmd)),
	)

	b.mu.Lock()
	err := cmd.Apply(b)
	b.mu.Unlock()
	if err != nil {
		return err
	}

	if err := cmd.Send(ctx, b.remote); err != nil {
		b.mu.Lock()
		undoErr := cmd.Inverse().Apply(b)
		b.mu.Unlock()
		if undoErr != nil {
			log.Error("rollback failed", zap.Error(undoErr))
		}

		log.Warn("command rejected by server, rolled back", zap.Error(err))
		return &SyncError{Err: err}
	}
	return nil
}
