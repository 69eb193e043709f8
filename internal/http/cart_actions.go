package httpapi

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
)

const cartPath = "/cart"

func toCartProduct(p catalog.Product) cart.Product {
	return cart.Product{ID: p.ID, Name: p.Name, Price: p.Price, Image: p.Image}
}

// AddToCart handles the add-to-cart forms on the grid and detail pages. Bad input is a
// silent no-op for the visitor; it is only logged.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := SessionID(ctx)
	id := strings.TrimSpace(r.PostFormValue("product_id"))
	back := safeReturnPath(r.PostFormValue("return_to"))

	qty := 1
	if raw := strings.TrimSpace(r.PostFormValue("quantity")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.logger.Warn("add to cart: bad quantity", zap.String("quantity", raw))
			http.Redirect(w, r, back, http.StatusSeeOther)
			return
		}
		qty = n
	}

	p, err := h.catalog.Get(id)
	if err != nil {
		h.logger.Warn("add to cart: unknown product", zap.String("product", id), zap.Error(err))
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	if _, err := h.carts.AddItem(ctx, sid, toCartProduct(p), qty); err != nil {
		if errors.Is(err, cart.ErrInvalidProduct) {
			http.Redirect(w, r, back, http.StatusSeeOther)
			return
		}
		h.internalError(w, r, "add to cart", err)
		return
	}

	http.Redirect(w, r, withQuery(back, "added", p.ID), http.StatusSeeOther)
}

func (h *Handler) IncreaseQuantity(w http.ResponseWriter, r *http.Request) {
	h.changeQuantity(w, r, 1)
}

func (h *Handler) DecreaseQuantity(w http.ResponseWriter, r *http.Request) {
	h.changeQuantity(w, r, -1)
}

func (h *Handler) changeQuantity(w http.ResponseWriter, r *http.Request, delta int) {
	id := chi.URLParam(r, "productId")
	out, err := h.flow.ChangeQuantity(r.Context(), SessionID(r.Context()), id, delta, formConfirmer{r: r})
	h.finish(w, r, out, err, "Remove")
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productId")
	out, err := h.flow.Remove(r.Context(), SessionID(r.Context()), id, formConfirmer{r: r})
	h.finish(w, r, out, err, "Remove")
}

func (h *Handler) finish(w http.ResponseWriter, r *http.Request, out cart.Outcome, err error, confirmLabel string) {
	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		http.Redirect(w, r, cartPath, http.StatusSeeOther)
	case err != nil:
		h.internalError(w, r, "update cart", err)
	case out.State == cart.PendingRemovalConfirmation && out.Prompt != nil:
		h.dialogs.renderDialog(w, r, dialog{Prompt: *out.Prompt, Action: r.URL.Path, ConfirmLabel: confirmLabel})
	default:
		http.Redirect(w, r, cartPath, http.StatusSeeOther)
	}
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	out, err := h.flow.Clear(r.Context(), SessionID(r.Context()), formConfirmer{r: r})
	if err != nil {
		h.internalError(w, r, "clear cart", err)
		return
	}

	switch out.Result {
	case cart.ClearPending:
		h.dialogs.renderDialog(w, r, dialog{Prompt: *out.Prompt, Action: r.URL.Path, ConfirmLabel: "Clear cart"})
	case cart.ClearAlreadyEmpty:
		http.Redirect(w, r, withQuery(cartPath, "notice", "already-empty"), http.StatusSeeOther)
	case cart.Cleared:
		http.Redirect(w, r, withQuery(cartPath, "notice", "cleared"), http.StatusSeeOther)
	default:
		http.Redirect(w, r, cartPath, http.StatusSeeOther)
	}
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	purchased, err := h.checkout.Run(r.Context(), SessionID(r.Context()))
	if errors.Is(err, cart.ErrEmptyCart) {
		data, ok := h.cartPage(w, r)
		if !ok {
			return
		}
		data.Error = "Cannot checkout with an empty cart."
		h.render(w, r, http.StatusConflict, "cart", data)
		return
	}
	if err != nil {
		h.internalError(w, r, "checkout", err)
		return
	}

	data := page{
		Title:     "Purchase Complete",
		Badge:     cart.BadgeFor(cart.Cart{}),
		Purchased: cart.Summarize(purchased, h.shipping),
	}
	h.render(w, r, http.StatusOK, "checkout_complete", data)
}

// safeReturnPath keeps redirects on this site.
func safeReturnPath(v string) string {
	if v == "" || !strings.HasPrefix(v, "/") || strings.HasPrefix(v, "//") || strings.HasPrefix(v, "/\\") {
		return "/products"
	}
	u, err := url.Parse(v)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return "/products"
	}
	return u.RequestURI()
}

func withQuery(path, key, value string) string {
	u, err := url.Parse(path)
	if err != nil {
		return path
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
