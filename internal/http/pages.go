package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
)

var notices = map[string]string{
	"cleared":       "Your cart is now empty.",
	"already-empty": "Your cart is already empty.",
}

// basePage loads what every page shows in its header. ok is false when an error
// response has already been written.
func (h *Handler) basePage(w http.ResponseWriter, r *http.Request, title string) (page, bool) {
	b, err := h.carts.Badge(r.Context(), SessionID(r.Context()))
	if err != nil {
		h.internalError(w, r, "load cart badge", err)
		return page{}, false
	}
	return page{Title: title, Badge: b}, true
}

func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	data, ok := h.basePage(w, r, "Products")
	if !ok {
		return
	}
	data.Products = h.catalog.All()
	data.AddedID = r.URL.Query().Get("added")
	h.render(w, r, http.StatusOK, "products", data)
}

func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get("id")
	if id == "" {
		id = catalog.ProductIDFromParam(q.Get("product"))
	}

	p, err := h.catalog.Get(id)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			h.internalError(w, r, "load product", err)
			return
		}
		h.logger.Info("product detail: unknown product", zap.String("product", id))
		data, ok := h.basePage(w, r, "Product Not Found")
		if !ok {
			return
		}
		h.render(w, r, http.StatusNotFound, "not_found", data)
		return
	}

	data, ok := h.basePage(w, r, p.Name)
	if !ok {
		return
	}
	qty, err := strconv.Atoi(q.Get("qty"))
	if err != nil || qty < 1 {
		qty = 1
	}
	qty = min(qty, cart.MaxQuantity)
	data.Product = p
	data.Qty = qty
	data.PrevQty = max(qty-1, 1)
	data.NextQty = min(qty+1, cart.MaxQuantity)
	data.Added = q.Get("added") == p.ID
	h.render(w, r, http.StatusOK, "product_detail", data)
}

func (h *Handler) CartPage(w http.ResponseWriter, r *http.Request) {
	data, ok := h.cartPage(w, r)
	if !ok {
		return
	}
	data.Notice = notices[r.URL.Query().Get("notice")]
	h.render(w, r, http.StatusOK, "cart", data)
}

func (h *Handler) cartPage(w http.ResponseWriter, r *http.Request) (page, bool) {
	data, ok := h.basePage(w, r, "Shopping Cart")
	if !ok {
		return page{}, false
	}
	sum, err := h.carts.Summary(r.Context(), SessionID(r.Context()), h.shipping)
	if err != nil {
		h.internalError(w, r, "load cart", err)
		return page{}, false
	}
	data.Summary = sum
	return data, true
}
