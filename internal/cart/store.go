package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

// StorageKey is the key the cart blob lives under in each session's storage.
const StorageKey = "shoppingCart"

var (
	ErrInvalidProduct           = errors.New("invalid product")
	ErrItemNotFound             = errors.New("item not in cart")
	ErrRemovalNeedsConfirmation = errors.New("removal needs confirmation")
)

// Store reads and writes a session's cart. Every mutation is load, change, save; two
// concurrent requests on the same session race and the last save wins.
type Store struct {
	storage storage.Storage
	logger  *zap.Logger
}

func NewStore(s storage.Storage, logger *zap.Logger) (*Store, error) {
	if s == nil {
		return nil, errors.New("cart store: storage is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{storage: s, logger: logger}, nil
}

// Load returns the session's cart. A missing or unreadable blob is an empty cart; only
// storage failures are returned as errors.
func (s *Store) Load(ctx context.Context, sessionID string) (Cart, error) {
	raw, err := s.storage.GetItem(ctx, sessionID, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return Cart{}, nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("load cart: %w", err)
	}

	var items []LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.Warn("discarding malformed cart",
			zap.String("session", sessionID),
			zap.Error(err))
		return Cart{}, nil
	}
	return Cart{Items: items}, nil
}

func (s *Store) Save(ctx context.Context, sessionID string, c Cart) error {
	items := c.Items
	if items == nil {
		items = []LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.SetItem(ctx, sessionID, StorageKey, string(raw)); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// AddItem adds quantity units of p. A zero quantity means one unit. A line never holds
// more than MaxQuantity units; an add that would exceed it is rejected.
func (s *Store) AddItem(ctx context.Context, sessionID string, p Product, quantity int) (Cart, error) {
	if quantity == 0 {
		quantity = 1
	}
	if !p.valid() || quantity < 0 || quantity > MaxQuantity {
		s.logger.Warn("rejecting invalid product",
			zap.String("product", p.ID),
			zap.Int("quantity", quantity))
		return Cart{}, ErrInvalidProduct
	}

	c, err := s.Load(ctx, sessionID)
	if err != nil {
		return Cart{}, err
	}

	if i := c.index(p.ID); i >= 0 {
		if c.Items[i].Quantity > MaxQuantity-quantity {
			s.logger.Warn("rejecting add past quantity limit",
				zap.String("session", sessionID),
				zap.String("product", p.ID),
				zap.Int("quantity", c.Items[i].Quantity),
				zap.Int("adding", quantity))
			return c, ErrInvalidProduct
		}
		c.Items[i].Quantity += quantity
	} else {
		c.Items = append(c.Items, LineItem{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Image:    p.Image,
			Quantity: quantity,
		})
	}

	if err := s.Save(ctx, sessionID, c); err != nil {
		return Cart{}, err
	}
	s.logger.Debug("product added", zap.String("session", sessionID), zap.String("product", p.ID))
	return c, nil
}

// UpdateQuantity applies delta to an existing line. A result of zero or less is never
// applied: it returns ErrRemovalNeedsConfirmation and leaves the cart untouched. An
// increase past MaxQuantity is ignored.
func (s *Store) UpdateQuantity(ctx context.Context, sessionID, id string, delta int) (Cart, error) {
	c, err := s.Load(ctx, sessionID)
	if err != nil {
		return Cart{}, err
	}

	i := c.index(id)
	if i < 0 {
		s.logger.Warn("update quantity: product not in cart",
			zap.String("session", sessionID),
			zap.String("product", id))
		return c, ErrItemNotFound
	}

	if delta > 0 && c.Items[i].Quantity > MaxQuantity-delta {
		s.logger.Warn("update quantity: limit reached",
			zap.String("session", sessionID),
			zap.String("product", id),
			zap.Int("quantity", c.Items[i].Quantity))
		return c, nil
	}

	next := c.Items[i].Quantity + delta
	if next <= 0 {
		return c, ErrRemovalNeedsConfirmation
	}

	c.Items[i].Quantity = next
	if err := s.Save(ctx, sessionID, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (s *Store) RemoveItem(ctx context.Context, sessionID, id string) (Cart, error) {
	c, err := s.Load(ctx, sessionID)
	if err != nil {
		return Cart{}, err
	}

	kept := make([]LineItem, 0, len(c.Items))
	for _, it := range c.Items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(c.Items) {
		s.logger.Warn("remove: product not in cart",
			zap.String("session", sessionID),
			zap.String("product", id))
		return c, ErrItemNotFound
	}

	c.Items = kept
	if err := s.Save(ctx, sessionID, c); err != nil {
		return Cart{}, err
	}
	s.logger.Debug("product removed", zap.String("session", sessionID), zap.String("product", id))
	return c, nil
}

// Clear drops the stored cart. An absent key loads as an empty cart.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.storage.RemoveItem(ctx, sessionID, StorageKey); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *Store) Badge(ctx context.Context, sessionID string) (Badge, error) {
	c, err := s.Load(ctx, sessionID)
	if err != nil {
		return Badge{}, err
	}
	return BadgeFor(c), nil
}

// Summary loads the cart and prices it. Lines that fail validation are left in storage
// but logged and excluded.
func (s *Store) Summary(ctx context.Context, sessionID string, policy ShippingPolicy) (Summary, error) {
	c, err := s.Load(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	sum := Summarize(c, policy)
	for _, it := range sum.Skipped {
		s.logger.Warn("skipping invalid cart item",
			zap.String("session", sessionID),
			zap.String("product", it.ID),
			zap.Int("quantity", it.Quantity))
	}
	return sum, nil
}
