package cart

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// State of a quantity change.
type State int

const (
	Idle State = iota
	PendingRemovalConfirmation
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PendingRemovalConfirmation:
		return "pending-removal-confirmation"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type Prompt struct {
	Title   string
	Message string
}

// ErrConfirmationPending is returned by a Confirmer that has asked the user but has no
// answer yet.
var ErrConfirmationPending = errors.New("confirmation pending")

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

type ConfirmFunc func(ctx context.Context, p Prompt) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) (bool, error) {
	return f(ctx, p)
}

var (
	AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, Prompt) (bool, error) { return true, nil })
	NeverConfirm  Confirmer = ConfirmFunc(func(context.Context, Prompt) (bool, error) { return false, nil })
)

func RemovalPrompt(item LineItem) Prompt {
	name := item.Name
	if name == "" {
		name = "this item"
	}
	return Prompt{
		Title:   "Remove " + name + "?",
		Message: "Are you sure you want to remove this item?",
	}
}

var ClearPrompt = Prompt{
	Title:   "Clear entire cart?",
	Message: "This action cannot be undone.",
}

// Outcome of a quantity change or removal. Prompt is set while the flow waits for the
// user. Declined means the user said no and nothing changed; the caller should redraw
// the cart so any optimistic change disappears.
type Outcome struct {
	State    State
	Cart     Cart
	Prompt   *Prompt
	Removed  bool
	Declined bool
}

// Flow routes quantity changes that would empty a line through a confirmation step.
type Flow struct {
	store  *Store
	logger *zap.Logger
}

func NewFlow(store *Store, logger *zap.Logger) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flow{store: store, logger: logger}
}

func (f *Flow) ChangeQuantity(ctx context.Context, sessionID, id string, delta int, confirm Confirmer) (Outcome, error) {
	c, err := f.store.UpdateQuantity(ctx, sessionID, id, delta)
	switch {
	case err == nil:
		return Outcome{State: Idle, Cart: c}, nil
	case errors.Is(err, ErrRemovalNeedsConfirmation):
		item, _ := c.Find(id)
		return f.confirmRemoval(ctx, sessionID, item, c, confirm)
	default:
		return Outcome{State: Idle, Cart: c}, err
	}
}

// Remove asks for confirmation and then removes the line regardless of its quantity.
func (f *Flow) Remove(ctx context.Context, sessionID, id string, confirm Confirmer) (Outcome, error) {
	c, err := f.store.Load(ctx, sessionID)
	if err != nil {
		return Outcome{}, err
	}
	item, ok := c.Find(id)
	if !ok {
		f.logger.Warn("remove: product not in cart",
			zap.String("session", sessionID),
			zap.String("product", id))
		return Outcome{State: Idle, Cart: c}, ErrItemNotFound
	}
	return f.confirmRemoval(ctx, sessionID, item, c, confirm)
}

func (f *Flow) confirmRemoval(ctx context.Context, sessionID string, item LineItem, c Cart, confirm Confirmer) (Outcome, error) {
	p := RemovalPrompt(item)
	ok, err := confirm.Confirm(ctx, p)
	if errors.Is(err, ErrConfirmationPending) {
		return Outcome{State: PendingRemovalConfirmation, Cart: c, Prompt: &p}, nil
	}
	if err != nil {
		return Outcome{State: Idle, Cart: c}, fmt.Errorf("confirm removal: %w", err)
	}
	if !ok {
		f.logger.Info("removal cancelled by user",
			zap.String("session", sessionID),
			zap.String("product", item.ID))
		return Outcome{State: Idle, Cart: c, Declined: true}, nil
	}

	c, err = f.store.RemoveItem(ctx, sessionID, item.ID)
	if err != nil {
		return Outcome{State: Idle, Cart: c}, err
	}
	return Outcome{State: Idle, Cart: c, Removed: true}, nil
}

type ClearResult int

const (
	ClearAlreadyEmpty ClearResult = iota
	ClearPending
	ClearDeclined
	Cleared
)

type ClearOutcome struct {
	Result ClearResult
	Prompt *Prompt
}

// Clear empties the whole cart after confirmation. An empty cart is reported without
// asking.
func (f *Flow) Clear(ctx context.Context, sessionID string, confirm Confirmer) (ClearOutcome, error) {
	c, err := f.store.Load(ctx, sessionID)
	if err != nil {
		return ClearOutcome{}, err
	}
	if c.Empty() {
		return ClearOutcome{Result: ClearAlreadyEmpty}, nil
	}

	p := ClearPrompt
	ok, err := confirm.Confirm(ctx, p)
	if errors.Is(err, ErrConfirmationPending) {
		return ClearOutcome{Result: ClearPending, Prompt: &p}, nil
	}
	if err != nil {
		return ClearOutcome{}, fmt.Errorf("confirm clear: %w", err)
	}
	if !ok {
		return ClearOutcome{Result: ClearDeclined}, nil
	}

	if err := f.store.Clear(ctx, sessionID); err != nil {
		return ClearOutcome{}, err
	}
	f.logger.Info("cart cleared by user", zap.String("session", sessionID))
	return ClearOutcome{Result: Cleared}, nil
}
