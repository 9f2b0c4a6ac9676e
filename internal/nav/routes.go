package nav

import (
	"net/http"
	"strings"

	"github.com/ariefcatur/lexi-storefront/internal/session"
	"github.com/go-chi/chi/v5"
)

type Page string

const (
	PageLogin        Page = "login"
	PageHome         Page = "home"
	PageProduct      Page = "product"
	PageFavorites    Page = "favorites"
	PageCart         Page = "cart"
	PageAddresses    Page = "addresses"
	PageOrders       Page = "orders"
	PageProductList  Page = "product-list"
	PageAddProduct   Page = "add-product"
	PageEditProduct  Page = "edit-product"
	PageSellerOrders Page = "seller-orders"
	PageFeedback     Page = "feedback"
)

const (
	homePath   = "/"
	sellerHome = "/product-list"
)

type route struct {
	pattern string
	page    Page
}

var customerRoutes = []route{
	{"/", PageHome},
	{"/login", PageLogin},
	{"/product/{id:[0-9]+}", PageProduct},
	{"/favorites", PageFavorites},
	{"/cart", PageCart},
	{"/addresses", PageAddresses},
	{"/orders", PageOrders},
}

var sellerRoutes = []route{
	{"/product-list", PageProductList},
	{"/add-product", PageAddProduct},
	{"/edit-product/{id:[0-9]+}", PageEditProduct},
	{"/seller-orders", PageSellerOrders},
	{"/feedback", PageFeedback},
}

// table matches browser paths with chi's route tree.
type table struct {
	mux   *chi.Mux
	pages map[string]Page
}

func newTable(routes []route) *table {
	t := &table{mux: chi.NewRouter(), pages: make(map[string]Page, len(routes))}
	for _, r := range routes {
		t.mux.Get(r.pattern, http.NotFound)
		t.pages[r.pattern] = r.page
	}
	return t
}

func (t *table) match(path string) (Page, map[string]string, bool) {
	rctx := chi.NewRouteContext()
	if !t.mux.Match(rctx, http.MethodGet, path) {
		return "", nil, false
	}
	page, ok := t.pages[rctx.RoutePattern()]
	if !ok {
		return "", nil, false
	}
	var params map[string]string
	for i, k := range rctx.URLParams.Keys {
		if params == nil {
			params = make(map[string]string)
		}
		params[k] = rctx.URLParams.Values[i]
	}
	return page, params, true
}

var (
	customerTable = newTable(customerRoutes)
	sellerTable   = newTable(sellerRoutes)
)

// Decision is what the shell renders for a requested path.
type Decision struct {
	Page   Page              `json:"page"`
	Path   string            `json:"path"`
	Params map[string]string `json:"params,omitempty"`
	// Redirected is set when Path differs from the requested path.
	Redirected bool `json:"redirected"`
}

// Resolve maps a browser path to the page the capability may see. Sellers
// only see seller routes and fall back to /product-list. Everyone else sees
// the customer routes and falls back to /, which shows the login page until
// the session is logged in.
func Resolve(c session.Capability, path string) Decision {
	path, _, _ = strings.Cut(path, "?")
	if path == "" {
		path = homePath
	}

	t, fallback := customerTable, homePath
	if c.Kind == session.Seller {
		t, fallback = sellerTable, sellerHome
	}

	d := Decision{Path: path}
	page, params, ok := t.match(path)
	if !ok {
		d.Path, d.Redirected = fallback, true
		page, params, _ = t.match(fallback)
	}
	if page == PageHome && !c.LoggedIn {
		page = PageLogin
	}
	d.Page, d.Params = page, params
	return d
}
