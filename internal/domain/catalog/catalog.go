package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/cache"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrProductNotFound = errors.New("product not found")

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	IsActive    bool            `json:"is_active"`
}

// Repository reads the products table. It is read-only from this service.
type Repository interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
	GetProducts(ctx context.Context, ids []string) ([]*Product, error)
	ListProducts(ctx context.Context) ([]*Product, error)
}

const listKey = "active"

// Service serves product reads. Browsing goes through the cache; Authoritative
// always reads the repository and is what checkout prices against.
type Service struct {
	repo     Repository
	logger   *zap.Logger
	products *cache.Cache[string, *Product]
	listings *cache.Cache[string, []*Product]
}

func NewService(repo Repository, opts cache.Options, logger *zap.Logger) (*Service, error) {
	s := &Service{repo: repo, logger: logger.Named("catalog")}

	var err error
	s.products, err = cache.New[string, *Product]("products", s.fetchProduct, opts, logger)
	if err != nil {
		return nil, err
	}
	s.listings, err = cache.New[string, []*Product]("product-listings", s.fetchListing, opts, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) fetchProduct(ctx context.Context, id string) (*Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *Service) fetchListing(ctx context.Context, _ string) ([]*Product, error) {
	all, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]*Product, 0, len(all))
	for _, p := range all {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active, nil
}

// Get returns an active product, possibly from cache.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.products.Get(ctx, id)
}

// List returns active products, possibly from cache.
func (s *Service) List(ctx context.Context) ([]*Product, error) {
	return s.listings.Get(ctx, listKey)
}

// Authoritative loads the given products straight from the repository.
// Every id must resolve to an active product.
func (s *Service) Authoritative(ctx context.Context, ids []string) (map[string]*Product, error) {
	products, err := s.repo.GetProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, id := range ids {
		p, ok := byID[id]
		if !ok || !p.IsActive {
			s.logger.Info("product unavailable", zap.String("product_id", id))
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
	}
	return byID, nil
}

// Invalidate drops cached copies of a product and the listings.
func (s *Service) Invalidate(id string) {
	s.products.Invalidate(id)
	s.listings.Invalidate(listKey)
}

// Close waits for background cache refreshes to finish.
func (s *Service) Close() {
	s.products.Wait()
	s.listings.Wait()
}
