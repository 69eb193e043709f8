package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
)

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type cartResponse struct {
	Items []cart.LineItem `json:"items"`
	Badge cart.Badge      `json:"badge"`
}

type summaryResponse struct {
	Lines           []cart.Line `json:"lines"`
	ItemCount       int         `json:"itemCount"`
	Subtotal        float64     `json:"subtotal"`
	Shipping        float64     `json:"shipping"`
	Total           float64     `json:"total"`
	CheckoutEnabled bool        `json:"checkoutEnabled"`
	Skipped         int         `json:"skipped"`
}

func (h *Handler) APIAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	if req.ProductID == "" || req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}

	p, err := h.catalog.Get(req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.internalError(w, r, "load product", err)
		return
	}

	c, err := h.carts.AddItem(r.Context(), SessionID(r.Context()), toCartProduct(p), req.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrInvalidProduct) {
			writeError(w, http.StatusBadRequest, "invalid product")
			return
		}
		h.internalError(w, r, "add to cart", err)
		return
	}

	h.logger.Debug("api: item added",
		zap.String("product", p.ID),
		zap.Int("quantity", req.Quantity))
	items := c.Items
	if items == nil {
		items = []cart.LineItem{}
	}
	writeJSON(w, http.StatusOK, cartResponse{Items: items, Badge: cart.BadgeFor(c)})
}

func (h *Handler) APICartCount(w http.ResponseWriter, r *http.Request) {
	b, err := h.carts.Badge(r.Context(), SessionID(r.Context()))
	if err != nil {
		h.internalError(w, r, "load cart badge", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) APICart(w http.ResponseWriter, r *http.Request) {
	sum, err := h.carts.Summary(r.Context(), SessionID(r.Context()), h.shipping)
	if err != nil {
		h.internalError(w, r, "load cart", err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Lines:           sum.Lines,
		ItemCount:       sum.ItemCount,
		Subtotal:        sum.Subtotal,
		Shipping:        sum.Shipping,
		Total:           sum.Total,
		CheckoutEnabled: sum.CheckoutEnabled(),
		Skipped:         len(sum.Skipped),
	})
}
