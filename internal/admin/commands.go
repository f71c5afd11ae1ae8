package admin

import (
	"context"

	"daztao-be/internal/order"
	"daztao-be/internal/utils"
)

// TransitionCommand moves one order along the lifecycle.
type TransitionCommand struct {
	OrderID string
	Action  order.Action

	prev   order.Order
	target order.Status
}

func NewTransition(orderID string, action order.Action) *TransitionCommand {
	return &TransitionCommand{OrderID: orderID, Action: action}
}

func (c *TransitionCommand) Apply(b *Board) error {
	i := b.index(c.OrderID)
	if i < 0 {
		return order.ErrOrderNotFound
	}

	target, err := c.Action.Target(b.orders[i].Status)
	if err != nil {
		return err
	}

	c.prev = b.orders[i]
	c.target = target
	b.orders[i].Status = target
	if target == order.StatusDelivered {
		b.orders[i].IsPaid = true
	}
	return nil
}

func (c *TransitionCommand) Inverse() Command {
	return &restoreCommand{order: c.prev}
}

func (c *TransitionCommand) Send(ctx context.Context, r Remote) error {
	_, err := r.UpdateOrder(ctx, c.OrderID, order.Patch{Status: utils.StrPtr(string(c.target))})
	return err
}

// Confirmer asks the operator before an irreversible action.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

const DeletePrompt = "Are you sure? This action cannot be undone."

// DeleteCommand removes a delivered or cancelled order.
type DeleteCommand struct {
	OrderID string
	Confirm Confirmer

	prev  order.Order
	index int
}

func NewDelete(orderID string, confirm Confirmer) *DeleteCommand {
	return &DeleteCommand{OrderID: orderID, Confirm: confirm}
}

func (c *DeleteCommand) Apply(b *Board) error {
	i := b.index(c.OrderID)
	if i < 0 {
		return order.ErrOrderNotFound
	}
	if !b.orders[i].Status.IsTerminal() {
		return order.ErrNotTerminal
	}
	if c.Confirm == nil || !c.Confirm.Confirm(DeletePrompt) {
		return ErrDeleteDeclined
	}

	c.prev = b.orders[i]
	c.index = i
	b.orders = append(b.orders[:i], b.orders[i+1:]...)
	return nil
}

func (c *DeleteCommand) Inverse() Command {
	return &restoreCommand{order: c.prev, index: c.index, reinsert: true}
}

func (c *DeleteCommand) Send(ctx context.Context, r Remote) error {
	return r.DeleteOrder(ctx, c.OrderID)
}

// restoreCommand puts a saved order back. It is only used for rollback and
// never sent.
type restoreCommand struct {
	order    order.Order
	index    int
	reinsert bool

	replaced order.Order
}

func (c *restoreCommand) Apply(b *Board) error {
	if c.reinsert {
		i := min(max(c.index, 0), len(b.orders))
		b.orders = append(b.orders[:i], append([]order.Order{c.order}, b.orders[i:]...)...)
		return nil
	}

	i := b.index(c.order.OrderID)
	if i < 0 {
		return ErrOrderNotOnBoard
	}
	c.replaced = b.orders[i]
	b.orders[i] = c.order
	return nil
}

func (c *restoreCommand) Inverse() Command {
	if c.reinsert {
		return &removeCommand{orderID: c.order.OrderID}
	}
	return &restoreCommand{order: c.replaced}
}

func (c *restoreCommand) Send(context.Context, Remote) error { return nil }

type removeCommand struct {
	orderID string

	removed order.Order
	index   int
}

func (c *removeCommand) Apply(b *Board) error {
	i := b.index(c.orderID)
	if i < 0 {
		return ErrOrderNotOnBoard
	}
	c.removed = b.orders[i]
	c.index = i
	b.orders = append(b.orders[:i], b.orders[i+1:]...)
	return nil
}

func (c *removeCommand) Inverse() Command {
	return &restoreCommand{order: c.removed, index: c.index, reinsert: true}
}

func (c *removeCommand) Send(context.Context, Remote) error { return nil }
