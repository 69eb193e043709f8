package httpapi

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"products",
	"product_detail",
	"not_found",
	"cart",
	"confirm",
	"checkout_complete",
}

type views struct {
	pages map[string]*template.Template
}

func loadViews() (*views, error) {
	funcs := template.FuncMap{"money": money}
	v := &views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// dialog is a pending confirmation. Action is where the yes/no answer is posted.
type dialog struct {
	Prompt       cart.Prompt
	Action       string
	ConfirmLabel string
}

type page struct {
	Title  string
	Badge  cart.Badge
	Notice string
	Error  string

	Products []catalog.Product
	AddedID  string

	Product catalog.Product
	Qty     int
	PrevQty int
	NextQty int
	Added   bool

	Summary   cart.Summary
	Dialog    *dialog
	Purchased cart.Summary
}

// render executes into a buffer first so a template failure never leaves a half
// written page behind.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data page) {
	t, ok := h.views.pages[name]
	if !ok {
		h.internalError(w, r, "render page", fmt.Errorf("template %q not loaded", name))
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.internalError(w, r, "render page", fmt.Errorf("execute template %s: %w", name, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
