package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ariefcatur/lexi-storefront/internal/durable"
	"github.com/ariefcatur/lexi-storefront/internal/shop"
)

func newTestClient(t *testing.T, h http.Handler, opts ...Option) (*Client, *durable.Memory) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	store := durable.NewMemory()
	return New(srv.URL, store, opts...), store
}

func TestBearerAttachedFromStorage(t *testing.T) {
	var got string
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	ctx := context.Background()

	if _, err := c.ListCart(ctx); err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Fatalf("no token stored, but header = %q", got)
	}

	_ = store.Set(ctx, durable.KeyAccessToken, "abc")
	if _, err := c.ListCart(ctx); err != nil {
		t.Fatal(err)
	}
	if got != "Bearer abc" {
		t.Fatalf("header = %q", got)
	}
}

func TestPublicCallsCarryNoBearer(t *testing.T) {
	var got string
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"access":"a","refresh":"r"}`))
	}))
	_ = store.Set(context.Background(), durable.KeyAccessToken, "stale")

	tp, err := c.ObtainToken(context.Background(), "u", "p")
	if err != nil {
		t.Fatal(err)
	}
	if got != "" || tp.Access != "a" || tp.Refresh != "r" {
		t.Fatalf("header=%q pair=%+v", got, tp)
	}
}

func TestUnauthorizedInvokesCallback(t *testing.T) {
	var calls atomic.Int32
	var status atomic.Int32
	c, _ := newTestClient(t,
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Given token not valid for any token type"}`))
		}),
		WithUnauthorizedHandler(func(_ context.Context, s int) {
			calls.Add(1)
			status.Store(int32(s))
		}),
	)

	_, err := c.ListOrders(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Detail != "Given token not valid for any token type" {
		t.Fatalf("detail not extracted: %v", err)
	}
	if calls.Load() != 1 || status.Load() != http.StatusUnauthorized {
		t.Fatalf("callback calls=%d status=%d", calls.Load(), status.Load())
	}
}

func TestServerErrorIsNotUnauthorized(t *testing.T) {
	called := false
	c, _ := newTestClient(t,
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}),
		WithUnauthorizedHandler(func(context.Context, int) { called = true }),
	)
	err := c.DeleteProduct(context.Background(), 3)
	if err == nil || errors.Is(err, ErrUnauthorized) || called {
		t.Fatalf("err=%v called=%v", err, called)
	}
}

func TestFetchProductsIsPositional(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id int64
		if _, err := fmt.Sscanf(r.URL.Path, "/product/%d/", &id); err != nil {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(shop.Product{ID: id, Name: fmt.Sprintf("p%d", id)})
	}))

	ids := []int64{9, 2, 5, 2}
	ps, err := c.FetchProducts(context.Background(), ids)
	if err != nil {
		t.Fatal(err)
	}
	for i, id := range ids {
		if ps[i].ID != id {
			t.Fatalf("position %d holds product %d, want %d", i, ps[i].ID, id)
		}
	}
}

func TestFetchProductsFailsBatch(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/product/2/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	if _, err := c.FetchProducts(context.Background(), []int64{1, 2}); err == nil {
		t.Fatal("expected error")
	}
}

func TestListProductsQuery(t *testing.T) {
	var query string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	}))
	if _, err := c.ListProducts(context.Background(), ProductFilter{SellerID: 7, Search: "blue mug"}); err != nil {
		t.Fatal(err)
	}
	if query != "search=blue+mug&seller__id=7" {
		t.Fatalf("query = %q", query)
	}
}

func TestCreateProductMultipart(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("image")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b, _ := io.ReadAll(f)
		if r.FormValue("name") != "Mug" || r.FormValue("stockCount") != "4" || hdr.Filename != "mug.png" || string(b) != "PNG" {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":11,"name":"Mug","price":"9.90"}`))
	}))

	p, err := c.CreateProduct(context.Background(), shop.ProductForm{
		Name: "Mug", Description: "d", Price: "9.90", StockCount: "4",
		Image: &shop.Image{Filename: "mug.png", Body: strings.NewReader("PNG")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != 11 {
		t.Fatalf("product = %+v", p)
	}
}

func TestEndpointLabel(t *testing.T) {
	cases := map[string]string{
		"/product/12/":                "/product/{id}/",
		"/product/list/?seller__id=3": "/product/list/",
		"/shipping_address/4/":        "/shipping_address/{id}/",
		"/order/from_cart/":           "/order/from_cart/",
	}
	for in, want := range cases {
		if got := endpointLabel(in); got != want {
			t.Errorf("endpointLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
