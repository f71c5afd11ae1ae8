package product

import (
	"context"
	"errors"

	"daztao-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, opts ListOptions) ([]Product, error)
	Get(ctx context.Context, slug string, includeHidden bool) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]Product, error)
	Create(ctx context.Context, doc Document) (*Product, error)
	Update(ctx context.Context, slug string, doc Document) (*Product, error)
	Delete(ctx context.Context, slug string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]Product, error) {
	return s.repo.List(ctx, opts)
}

// Get hides draft and archived products unless includeHidden is set.
func (s *service) Get(ctx context.Context, slug string, includeHidden bool) (*Product, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !includeHidden && !p.IsVisible() {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *service) GetByIDs(ctx context.Context, ids []string) (map[string]Product, error) {
	return s.repo.GetByIDs(ctx, ids)
}

func (s *service) Create(ctx context.Context, doc Document) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	p, err := doc.NewProduct()
	if err != nil {
		log.Warn("invalid product input", zap.Error(err))
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if !errors.Is(err, ErrSlugTaken) {
			log.Error("failed to create product", zap.Error(err))
		}
		return nil, err
	}

	log.Info("product created", zap.String("slug", p.Slug), zap.String("id", p.ID))
	return p, nil
}

func (s *service) Update(ctx context.Context, slug string, doc Document) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Update"),
		zap.String("slug", slug),
	)

	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if err := doc.Merge(p); err != nil {
		log.Warn("invalid product update", zap.Error(err))
		return nil, err
	}

	// stock is only written when sent; reservations own it otherwise
	if err := s.repo.Update(ctx, slug, p, doc.Stock); err != nil {
		if !errors.Is(err, ErrProductNotFound) && !errors.Is(err, ErrSlugTaken) {
			log.Error("failed to update product", zap.Error(err))
		}
		return nil, err
	}

	log.Info("product updated", zap.String("new_slug", p.Slug), zap.Int("stock", p.Stock))
	return p, nil
}

func (s *service) Delete(ctx context.Context, slug string) error {
	if err := s.repo.Delete(ctx, slug); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("product deleted", zap.String("slug", slug))
	return nil
}
