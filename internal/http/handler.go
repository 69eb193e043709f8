package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
)

const (
	ConfirmModal = "modal"
	ConfirmPlain = "plain"
)

// CartService is the per-session cart state the pages read and the add-to-cart
// operations write.
type CartService interface {
	AddItem(ctx context.Context, sessionID string, p cart.Product, quantity int) (cart.Cart, error)
	Badge(ctx context.Context, sessionID string) (cart.Badge, error)
	Summary(ctx context.Context, sessionID string, policy cart.ShippingPolicy) (cart.Summary, error)
}

// CartFlow performs the cart edits that may need the user's confirmation.
type CartFlow interface {
	ChangeQuantity(ctx context.Context, sessionID, id string, delta int, confirm cart.Confirmer) (cart.Outcome, error)
	Remove(ctx context.Context, sessionID, id string, confirm cart.Confirmer) (cart.Outcome, error)
	Clear(ctx context.Context, sessionID string, confirm cart.Confirmer) (cart.ClearOutcome, error)
}

type CheckoutRunner interface {
	Run(ctx context.Context, sessionID string) (cart.Cart, error)
}

type Catalog interface {
	All() []catalog.Product
	Get(id string) (catalog.Product, error)
}

type Deps struct {
	Carts    CartService
	Flow     CartFlow
	Checkout CheckoutRunner
	Catalog  Catalog
	Shipping cart.ShippingPolicy

	// ConfirmStyle selects the dialog renderer, ConfirmModal or ConfirmPlain.
	ConfirmStyle   string
	AllowedOrigins []string
	CookieSecure   bool
	SessionTTL     time.Duration
	Logger         *zap.Logger
}

type Handler struct {
	carts    CartService
	flow     CartFlow
	checkout CheckoutRunner
	catalog  Catalog
	shipping cart.ShippingPolicy
	dialogs  dialogRenderer
	views    *views

	allowedOrigins []string
	cookieSecure   bool
	sessionTTL     time.Duration
	logger         *zap.Logger
}

func NewHandler(d Deps) (*Handler, error) {
	switch {
	case d.Carts == nil:
		return nil, errors.New("httpapi: cart service is required")
	case d.Flow == nil:
		return nil, errors.New("httpapi: cart flow is required")
	case d.Checkout == nil:
		return nil, errors.New("httpapi: checkout is required")
	case d.Catalog == nil:
		return nil, errors.New("httpapi: catalog is required")
	}

	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	shipping := d.Shipping
	if shipping == nil {
		shipping = cart.FlatShipping(0)
	}
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	v, err := loadViews()
	if err != nil {
		return nil, err
	}

	h := &Handler{
		carts:          d.Carts,
		flow:           d.Flow,
		checkout:       d.Checkout,
		catalog:        d.Catalog,
		shipping:       shipping,
		views:          v,
		allowedOrigins: origins,
		cookieSecure:   d.CookieSecure,
		sessionTTL:     d.SessionTTL,
		logger:         logger,
	}

	switch d.ConfirmStyle {
	case "", ConfirmModal:
		h.dialogs = modalDialog{h: h}
	case ConfirmPlain:
		h.dialogs = plainDialog{h: h}
	default:
		return nil, fmt.Errorf("httpapi: unknown confirm style %q", d.ConfirmStyle)
	}
	return h, nil
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg,
		zap.String("request_id", requestID(r)),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
