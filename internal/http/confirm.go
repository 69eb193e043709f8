package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
)

// formConfirmer reads the answer to a prompt from the "confirm" form field. A request
// without an answer has not been asked yet.
type formConfirmer struct {
	r *http.Request
}

func (c formConfirmer) Confirm(ctx context.Context, p cart.Prompt) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(c.r.PostFormValue("confirm"))) {
	case "yes", "true":
		return true, nil
	case "no", "false":
		return false, nil
	default:
		return false, cart.ErrConfirmationPending
	}
}

// dialogRenderer draws a pending confirmation. Both answers post back to d.Action.
type dialogRenderer interface {
	renderDialog(w http.ResponseWriter, r *http.Request, d dialog)
}

// modalDialog overlays the prompt on the cart page.
type modalDialog struct {
	h *Handler
}

func (m modalDialog) renderDialog(w http.ResponseWriter, r *http.Request, d dialog) {
	data, ok := m.h.cartPage(w, r)
	if !ok {
		return
	}
	data.Dialog = &d
	m.h.render(w, r, http.StatusOK, "cart", data)
}

// plainDialog shows the prompt on a page of its own.
type plainDialog struct {
	h *Handler
}

func (p plainDialog) renderDialog(w http.ResponseWriter, r *http.Request, d dialog) {
	data, ok := p.h.basePage(w, r, d.Prompt.Title)
	if !ok {
		return
	}
	data.Dialog = &d
	p.h.render(w, r, http.StatusOK, "confirm", data)
}
