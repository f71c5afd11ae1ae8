package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"daztao-be/internal/db"
	"daztao-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	slugConstraint  = "products_slug_key"
	stockConstraint = "products_stock_check"
)

type Repository interface {
	List(ctx context.Context, opts ListOptions) ([]Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]Product, error)
	Create(ctx context.Context, p *Product) error
	// Update rewrites p under currentSlug. Stock is written only when stock is
	// non-nil; the stored value is read back into p either way.
	Update(ctx context.Context, currentSlug string, p *Product, stock *int) error
	Delete(ctx context.Context, slug string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `
	id, slug, title, description, price, original_price, stock,
	media, category, tags, features, icon_type, theme_color, status,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var (
		p      Product
		status string
	)
	err := row.Scan(
		&p.ID, &p.Slug, &p.Title, &p.Description, &p.Price, &p.OriginalPrice, &p.Stock,
		&p.Media, &p.Category, pq.Array(&p.Tags), pq.Array(&p.Features), &p.IconType, &p.ThemeColor, &status,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Status, err = ParseStatus(status)
	if err != nil {
		// rows written before statuses existed are treated as hidden
		p.Status = StatusDraft
	}
	if p.Category == "" {
		p.Category = defaultCategory
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	query := `SELECT ` + productColumns + ` FROM products`
	if !opts.IncludeHidden {
		query += ` WHERE status = 'active'`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Error("failed to scan product", zap.Error(err))
			return nil, err
		}
		products = append(products, *p)
	}

	return products, rows.Err()
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = $1`, slug)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []string) (map[string]Product, error) {
	out := make(map[string]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id::text = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = *p
	}

	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("slug", p.Slug),
	)

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (
			slug, title, description, price, original_price, stock,
			media, category, tags, features, icon_type, theme_color, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id, created_at, updated_at
	`,
		p.Slug, p.Title, p.Description, p.Price, p.OriginalPrice, p.Stock,
		p.Media, p.Category, pq.Array(p.Tags), pq.Array(p.Features), p.IconType, p.ThemeColor, string(p.Status),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	switch {
	case db.IsUniqueViolation(err, slugConstraint):
		return ErrSlugTaken
	case db.IsCheckViolation(err, stockConstraint):
		return ErrInvalidStock
	}
	if err != nil {
		log.Error("failed to insert product", zap.Error(err))
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, currentSlug string, p *Product, stock *int) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE products SET
			slug = $1, title = $2, description = $3, price = $4, original_price = $5,
			stock = COALESCE($6, stock), media = $7, category = $8, tags = $9, features = $10,
			icon_type = $11, theme_color = $12, status = $13, updated_at = NOW()
		WHERE slug = $14
		RETURNING stock, updated_at
	`,
		p.Slug, p.Title, p.Description, p.Price, p.OriginalPrice,
		stock, p.Media, p.Category, pq.Array(p.Tags), pq.Array(p.Features),
		p.IconType, p.ThemeColor, string(p.Status),
		currentSlug,
	).Scan(&p.Stock, &p.UpdatedAt)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrProductNotFound
	case db.IsUniqueViolation(err, slugConstraint):
		return ErrSlugTaken
	case db.IsCheckViolation(err, stockConstraint):
		return ErrInvalidStock
	case err != nil:
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, slug string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}
