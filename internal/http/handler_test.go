package httpapi

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

type recordingNotifier struct {
	calls []cart.Cart
}

func (n *recordingNotifier) CartCheckedOut(ctx context.Context, sessionID string, c cart.Cart) error {
	n.calls = append(n.calls, c)
	return nil
}

type testEnv struct {
	router   http.Handler
	mem      *storage.Memory
	store    *cart.Store
	notifier *recordingNotifier
	session  string
}

func newTestEnv(t *testing.T, style string) *testEnv {
	t.Helper()
	return newTestEnvWithStorage(t, style, storage.NewMemory(0))
}

func newTestEnvWithStorage(t *testing.T, style string, backing storage.Storage) *testEnv {
	t.Helper()

	store, err := cart.NewStore(backing, nil)
	require.NoError(t, err)
	cat, err := catalog.Default()
	require.NoError(t, err)
	n := &recordingNotifier{}

	h, err := NewHandler(Deps{
		Carts:        store,
		Flow:         cart.NewFlow(store, nil),
		Checkout:     cart.NewCheckout(store, n, nil),
		Catalog:      cat,
		Shipping:     cart.FlatShipping(0),
		ConfirmStyle: style,
	})
	require.NoError(t, err)

	env := &testEnv{router: NewRouter(h), store: store, notifier: n, session: uuid.NewString()}
	if mem, ok := backing.(*storage.Memory); ok {
		env.mem = mem
	}
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: e.session})
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *testEnv) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req)
}

func (e *testEnv) loadCart(t *testing.T) cart.Cart {
	t.Helper()
	c, err := e.store.Load(context.Background(), e.session)
	require.NoError(t, err)
	return c
}

func (e *testEnv) seed(t *testing.T, id string, qty int) {
	t.Helper()
	rec := e.post("/cart/items", url.Values{"product_id": {id}, "quantity": {strconv.Itoa(qty)}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
}

type brokenStorage struct{}

func (brokenStorage) GetItem(ctx context.Context, sessionID, key string) (string, error) {
	return "", errors.New("backend down")
}
func (brokenStorage) SetItem(ctx context.Context, sessionID, key, value string) error {
	return errors.New("backend down")
}
func (brokenStorage) RemoveItem(ctx context.Context, sessionID, key string) error {
	return errors.New("backend down")
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, ConfirmModal)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", strings.TrimSpace(rec.Body.String()))
	assert.Empty(t, rec.Result().Cookies(), "health checks do not get a session")
}

func TestSessionCookieIssuedOnce(t *testing.T) {
	env := newTestEnv(t, ConfirmModal)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	_, err := uuid.Parse(cookies[0].Value)
	require.NoError(t, err)

	rec = env.get("/products")
	assert.Empty(t, rec.Result().Cookies(), "a valid session cookie is kept")
}

func TestSessionCookieReplacesGarbage(t *testing.T) {
	env := newTestEnv(t, ConfirmModal)
	env.session = "not-a-uuid"

	rec := env.get("/products")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.NotEqual(t, "not-a-uuid", cookies[0].Value)
}

func TestSessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t, ConfirmModal)
	env.seed(t, "05", 1)

	other := *env
	other.session = uuid.NewString()
	assert.True(t, other.loadCart(t).Empty())
	assert.Equal(t, 1, env.loadCart(t).Count())
}

func TestProductsPage(t *testing.T) {
	env := newTestEnv(t, ConfirmModal)
	cat, err := catalog.Default()
	require.NoError(t, err)

	for _, path := range []string{"/", "/products"} {
		rec := env.get(path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		body := rec.Body.String()
		for _, p := range cat.All() {
			assert.Contains(t, body, p.Name)
			assert.Contains(t, body, "/product-detail?id="+p.ID)
		}
		assert.NotContains(t, body, "cart-badge", "empty cart hides the badge")
	}
}

func TestProductsPageShowsAddedFlashAndBadge(t *testing.T) {
	env := newTestEnv(t, ConfirmModal)
	env.seed(t, "05", 3)

	body := env.get("/products?added=05").Body.String()
	assert.Contains(t, body, "Added!")
	assert.Contains(t, body, `<span class="cart-badge">3</span>`)
}

func TestProductDetail(t *testing.T) {
	env := newTestEnv(t, ConfirmModal)

	tests := map[string]string{
		"by id":        "/product-detail?id=05",
		"legacy image": "/product-detail?product=05.png",
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			rec := env.get(path)
			require.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, "Botanical Notebook")
			assert.Contains(t, body, "$9.99")
			assert.Contains(t, body, `<span class="quantity">1</span>`)
		})
	}
}

func TestProductDetailQuantityStepper(t *testing.T) {
	env := newTestEnv(t, ConfirmModal)

	body := env.get("/product-detail?id=05&qty=3").Body.String()
	assert.Contains(t, body, `<span class="quantity">3</span>`)
	assert.Contains(t, body, `name="quantity" value="3"`)
	assert.Contains(t, body, "qty=2")
	assert.Contains(t, body, "qty=4")

	body = env.get("/product-detail?id=05&qty=0").Body.String()
	assert.Contains(t, body, `<span class="quantity">1</span>`, "stepper never goes below 1")
	assert.NotContains(t, body, "qty=0")
}

func TestProductDetailQuantityIsCapped(t *testing.T) {
	env := newTestEnv(t, ConfirmModal)
	limit := strconv.Itoa(cart.MaxQuantity)

	for _, qty := range []string{limit, "5000", strconv.Itoa(math.MaxInt)} {
		body := env.get("/product-detail?id=05&qty=" + qty).Body.String()
		assert.Contains(t, body, `<span class="quantity">`+limit+`</span>`, qty)
		assert.Contains(t, body, "qty="+strconv.Itoa(cart.MaxQuantity-1), qty)
		assert.NotContains(t, body, "qty="+strconv.Itoa(cart.MaxQuantity+1), qty)
	}
}

func TestProductDetailNotFound(t *testing.T) {
	env := newTestEnv(t, ConfirmModal)

	for _, path := range []string{"/product-detail", "/product-detail?id=99", "/product-detail?product=nope.png"} {
		rec := env.get(path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		body := rec.Body.String()
		assert.Contains(t, body, "Product Not Found")
		assert.Contains(t, body, `href="/products"`)
	}
}

func TestStorageFailureIsInternalError(t *testing.T) {
	env := newTestEnvWithStorage(t, ConfirmModal, brokenStorage{})

	assert.Equal(t, http.StatusInternalServerError, env.get("/products").Code)
	assert.Equal(t, http.StatusInternalServerError, env.get("/cart").Code)
	assert.Equal(t, http.StatusInternalServerError, env.get("/api/cart/count").Code)
}

func TestNewHandlerRequiresCollaborators(t *testing.T) {
	store, err := cart.NewStore(storage.NewMemory(0), nil)
	require.NoError(t, err)
	cat, err := catalog.Default()
	require.NoError(t, err)

	full := Deps{
		Carts:    store,
		Flow:     cart.NewFlow(store, nil),
		Checkout: cart.NewCheckout(store, nil, nil),
		Catalog:  cat,
	}

	tests := map[string]func(d *Deps){
		"no carts":      func(d *Deps) { d.Carts = nil },
		"no flow":       func(d *Deps) { d.Flow = nil },
		"no checkout":   func(d *Deps) { d.Checkout = nil },
		"no catalog":    func(d *Deps) { d.Catalog = nil },
		"unknown style": func(d *Deps) { d.ConfirmStyle = "popup" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			d := full
			mutate(&d)
			_, err := NewHandler(d)
			assert.Error(t, err)
		})
	}

	_, err = NewHandler(full)
	assert.NoError(t, err)
}

func TestViewsLoadEveryPage(t *testing.T) {
	v, err := loadViews()
	require.NoError(t, err)
	for _, name := range pageNames {
		assert.Contains(t, v.pages, name)
	}
}
