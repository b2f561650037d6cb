package cart

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/podomarket/storefront-service/internal/models"
)

// Backend fetches the authoritative server-held cart.
type Backend interface {
	FetchCart(ctx context.Context, userID string) ([]models.CartItem, error)
}

// Cache stores each user's working copy between requests.
type Cache interface {
	Get(ctx context.Context, userID string) ([]models.CartItem, bool, error)
	Set(ctx context.Context, userID string, items []models.CartItem) error
	Delete(ctx context.Context, userID string) error
}

// Service owns the per-user cart working copy. Mutations apply to the
// working copy only; Refresh replaces it with the backend's cart, which
// is how server-side mutations (stock-driven removal, checkout) become
// visible here.
type Service struct {
	backend Backend
	cache   Cache
	logger  *logrus.Entry
}

// NewService creates a cart service.
func NewService(backend Backend, cache Cache, logger *logrus.Entry) *Service {
	return &Service{
		backend: backend,
		cache:   cache,
		logger:  logger,
	}
}

// Get returns the user's working copy, reconciling with the backend when
// no copy is cached.
func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	items, ok, err := s.cache.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.Refresh(ctx, userID)
	}
	return &Cart{Items: items}, nil
}

// Refresh re-fetches the server cart and replaces the working copy. On
// failure the previous working copy is left untouched and the error is
// returned; there is no automatic retry here.
func (s *Service) Refresh(ctx context.Context, userID string) (*Cart, error) {
	items, err := s.backend.FetchCart(ctx, userID)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Error("cart refresh failed")
		return nil, err
	}

	if err := s.cache.Set(ctx, userID, items); err != nil {
		// The fetched cart is still valid even if caching it failed.
		s.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Warn("failed to cache refreshed cart")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"item_count": len(items),
	}).Debug("cart refreshed")

	return &Cart{Items: items}, nil
}

// AddItem merges an item into the working copy.
func (s *Service) AddItem(ctx context.Context, userID string, item models.CartItem) (*Cart, error) {
	return s.mutate(ctx, userID, func(c *Cart) {
		c.AddItem(item)
	})
}

// UpdateItem sets the quantity of the row at index; below one removes it.
func (s *Service) UpdateItem(ctx context.Context, userID string, index, quantity int) (*Cart, error) {
	return s.mutate(ctx, userID, func(c *Cart) {
		c.UpdateItem(index, quantity)
	})
}

// RemoveItem deletes the row at index.
func (s *Service) RemoveItem(ctx context.Context, userID string, index int) (*Cart, error) {
	return s.mutate(ctx, userID, func(c *Cart) {
		c.RemoveItem(index)
	})
}

// RemoveByIDs deletes the rows with the given server-assigned ids.
func (s *Service) RemoveByIDs(ctx context.Context, userID string, ids []string) (*Cart, error) {
	return s.mutate(ctx, userID, func(c *Cart) {
		c.RemoveByIDs(ids)
	})
}

// Invalidate drops the cached working copy so the next read reconciles.
func (s *Service) Invalidate(ctx context.Context, userID string) error {
	return s.cache.Delete(ctx, userID)
}

func (s *Service) mutate(ctx context.Context, userID string, fn func(*Cart)) (*Cart, error) {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	fn(c)
	if err := s.cache.Set(ctx, userID, c.Items); err != nil {
		return nil, err
	}
	return c, nil
}
