package cart

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var ErrEmptyCart = errors.New("cart is empty")

// Notifier is told about every completed checkout.
type Notifier interface {
	CartCheckedOut(ctx context.Context, sessionID string, c Cart) error
}

// Checkout is a simulated purchase: it notifies, then empties the cart. No payment is
// taken and no order is stored.
type Checkout struct {
	store    *Store
	notifier Notifier
	logger   *zap.Logger
}

func NewCheckout(store *Store, notifier Notifier, logger *zap.Logger) *Checkout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checkout{store: store, notifier: notifier, logger: logger}
}

// Run returns the cart as it was before it was cleared. An empty cart is rejected with
// ErrEmptyCart and nothing is written. A failing notifier is logged and does not block
// the checkout.
func (co *Checkout) Run(ctx context.Context, sessionID string) (Cart, error) {
	c, err := co.store.Load(ctx, sessionID)
	if err != nil {
		return Cart{}, err
	}
	if c.Empty() {
		return Cart{}, ErrEmptyCart
	}

	if co.notifier != nil {
		if err := co.notifier.CartCheckedOut(ctx, sessionID, c); err != nil {
			co.logger.Error("checkout notification failed",
				zap.String("session", sessionID),
				zap.Error(err))
		}
	}

	if err := co.store.Clear(ctx, sessionID); err != nil {
		return Cart{}, err
	}
	co.logger.Info("checkout completed",
		zap.String("session", sessionID),
		zap.Int("items", c.Count()))
	return c, nil
}
