package cart

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// MaxQuantity caps a single cart line.
const MaxQuantity = 99

var (
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 99")
	ErrInvalidProduct  = errors.New("product_id is required")
	ErrItemNotFound    = errors.New("item not in cart")
)

type Item struct {
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// Store holds cart lines keyed by (userID, productID).
// AddItem must increment atomically so concurrent adds of the same product sum up.
type Store interface {
	AddItem(ctx context.Context, userID, productID string, quantity int) (Item, error)
	SetQuantity(ctx context.Context, userID, productID string, quantity int) error
	RemoveItem(ctx context.Context, userID, productID string) error
	ClearCart(ctx context.Context, userID string) error
	ListItems(ctx context.Context, userID string) ([]Item, error)
}

type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger.Named("cart")}
}

func validate(productID string, quantity int) error {
	if strings.TrimSpace(productID) == "" {
		return ErrInvalidProduct
	}
	if quantity <= 0 || quantity > MaxQuantity {
		return ErrInvalidQuantity
	}
	return nil
}

// AddItem adds quantity units of productID, summing with any existing line.
// The resulting line is capped at MaxQuantity.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) (Item, error) {
	if err := validate(productID, quantity); err != nil {
		return Item{}, err
	}
	item, err := s.store.AddItem(ctx, userID, productID, quantity)
	if err != nil {
		return Item{}, err
	}
	if item.Quantity > MaxQuantity {
		if err := s.store.SetQuantity(ctx, userID, productID, MaxQuantity); err != nil {
			return Item{}, err
		}
		item.Quantity = MaxQuantity
	}
	s.logger.Debug("item added", zap.String("user_id", userID), zap.String("product_id", productID), zap.Int("quantity", item.Quantity))
	return item, nil
}

// UpdateQuantity sets the line to quantity. Zero removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if quantity == 0 {
		return s.RemoveItem(ctx, userID, productID)
	}
	if err := validate(productID, quantity); err != nil {
		return err
	}
	return s.store.SetQuantity(ctx, userID, productID, quantity)
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID string) error {
	if strings.TrimSpace(productID) == "" {
		return ErrInvalidProduct
	}
	return s.store.RemoveItem(ctx, userID, productID)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	if err := s.store.ClearCart(ctx, userID); err != nil {
		return err
	}
	s.logger.Debug("cart cleared", zap.String("user_id", userID))
	return nil
}

func (s *Service) Items(ctx context.Context, userID string) ([]Item, error) {
	return s.store.ListItems(ctx, userID)
}
