package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"daztao-be/internal/db"
	"daztao-be/internal/logger"
	"daztao-be/internal/pricing"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const orderIDConstraint = "orders_order_id_key"

type Repository interface {
	// Create reserves stock for every item and inserts the order in one
	// transaction. Nothing is written when any item cannot be reserved.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByOrderID(ctx context.Context, orderID string) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	// Update writes o only while the stored status still equals expected.
	Update(ctx context.Context, o *Order, expected Status) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `
	id, order_id, customer, items, subtotal, discount, fee, amount,
	payment_method, is_paid, verification, utr, payment_id, razorpay_order_id,
	status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var (
		o            Order
		method       string
		verification string
		status       string
	)
	err := row.Scan(
		&o.ID, &o.OrderID, &o.Customer, &o.Items, &o.Subtotal, &o.Discount, &o.Fee, &o.Amount,
		&method, &o.IsPaid, &verification, &o.UTR, &o.PaymentID, &o.RazorpayOrderID,
		&status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.PaymentMethod = pricing.PaymentMethod(method)
	o.Status, o.Verification = normalizeStored(status, verification)
	if o.Items == nil {
		o.Items = Items{}
	}
	return &o, nil
}

// normalizeStored folds legacy status strings into the two orthogonal fields.
func normalizeStored(status, verification string) (Status, Verification) {
	v, err := ParseVerification(verification)
	if err != nil {
		v = VerificationNone
	}

	if Verification(status) == VerificationPending {
		return StatusPending, VerificationPending
	}

	s, err := ParseStatus(status)
	if err != nil {
		return StatusPending, v
	}
	return s, v
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("order_id", o.OrderID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error("rollback failed", zap.Error(rbErr))
		}
	}()

	if err := reserveStock(ctx, tx, o.Items); err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			order_id, customer, items, subtotal, discount, fee, amount,
			payment_method, is_paid, verification, utr, payment_id, razorpay_order_id, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id, created_at, updated_at
	`,
		o.OrderID, o.Customer, o.Items, o.Subtotal, o.Discount, o.Fee, o.Amount,
		string(o.PaymentMethod), o.IsPaid, string(o.Verification), o.UTR, o.PaymentID, o.RazorpayOrderID, string(o.Status),
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)

	if db.IsUniqueViolation(err, orderIDConstraint) {
		return ErrDuplicateOrderID
	}
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return fmt.Errorf("insert order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order", zap.Error(err))
		return err
	}
	committed = true

	return nil
}

type reservation struct {
	productID string
	title     string
	quantity  int
	available int
}

// reserveStock locks every product row, checks all of them, and only then
// decrements. Rows are locked in id order so concurrent checkouts cannot deadlock.
func reserveStock(ctx context.Context, tx *sql.Tx, items Items) error {
	byProduct := make(map[string]*reservation)
	for _, item := range items {
		if res, ok := byProduct[item.ProductID]; ok {
			res.quantity += item.Quantity
			continue
		}
		byProduct[item.ProductID] = &reservation{
			productID: item.ProductID,
			title:     item.Title,
			quantity:  item.Quantity,
		}
	}

	reservations := make([]*reservation, 0, len(byProduct))
	for _, res := range byProduct {
		reservations = append(reservations, res)
	}
	sort.Slice(reservations, func(i, j int) bool {
		return reservations[i].productID < reservations[j].productID
	})

	for _, res := range reservations {
		var title string
		err := tx.QueryRowContext(ctx,
			`SELECT title, stock FROM products WHERE id = $1 FOR UPDATE`,
			res.productID,
		).Scan(&title, &res.available)
		if errors.Is(err, sql.ErrNoRows) {
			return &ProductMissingError{Title: res.title}
		}
		if err != nil {
			return fmt.Errorf("lock product %s: %w", res.productID, err)
		}
		if res.title == "" {
			res.title = title
		}
	}

	for _, res := range reservations {
		if res.available < res.quantity {
			return &StockError{Title: res.title, Available: res.available}
		}
	}

	for _, res := range reservations {
		result, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1, updated_at = NOW()
			WHERE id = $2 AND stock >= $1
		`, res.quantity, res.productID)
		if err != nil {
			return fmt.Errorf("decrement stock %s: %w", res.productID, err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return &StockError{Title: res.title, Available: res.available}
		}
	}

	return nil
}

func (r *repository) getOne(ctx context.Context, where string, arg any) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+where, arg)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *repository) GetByOrderID(ctx context.Context, orderID string) (*Order, error) {
	return r.getOne(ctx, `order_id = $1`, orderID)
}

func (r *repository) List(ctx context.Context) ([]Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("failed to scan order", zap.Error(err))
			return nil, err
		}
		orders = append(orders, *o)
	}

	return orders, rows.Err()
}

func (r *repository) Update(ctx context.Context, o *Order, expected Status) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE orders SET
			customer = $1, amount = $2, is_paid = $3, verification = $4,
			utr = $5, payment_id = $6, razorpay_order_id = $7, status = $8,
			updated_at = NOW()
		WHERE id = $9 AND status = ANY($10)
		RETURNING updated_at
	`,
		o.Customer, o.Amount, o.IsPaid, string(o.Verification),
		o.UTR, o.PaymentID, o.RazorpayOrderID, string(o.Status),
		o.ID, storedSpellings(expected),
	).Scan(&o.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return ErrConcurrentUpdate
	}
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}

// storedSpellings lists every status string a row in state s may still carry.
func storedSpellings(s Status) any {
	if s == StatusPending {
		return pq.Array([]string{string(StatusPending), legacyPendingVerification, string(VerificationPending)})
	}
	return pq.Array([]string{string(s)})
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM orders WHERE id = $1 AND status IN ('Delivered', 'Cancelled')`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}
