package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ariefcatur/lexi-storefront/internal/shop"
	"golang.org/x/sync/errgroup"
)

type ProductFilter struct {
	SellerID int64
	Search   string
}

func (f ProductFilter) query() string {
	q := url.Values{}
	if f.SellerID != 0 {
		q.Set("seller__id", strconv.FormatInt(f.SellerID, 10))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func (c *Client) ListProducts(ctx context.Context, f ProductFilter) ([]shop.Product, error) {
	var ps []shop.Product
	err := c.doJSON(ctx, http.MethodGet, "/product/list/"+f.query(), true, nil, &ps)
	return ps, err
}

func (c *Client) GetProduct(ctx context.Context, id int64) (shop.Product, error) {
	var p shop.Product
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/product/%d/", id), true, nil, &p)
	return p, err
}

// FetchProducts loads one product per id concurrently. The result is
// positional: out[i] is the product for ids[i]. Any failure fails the batch.
func (c *Client) FetchProducts(ctx context.Context, ids []int64) ([]shop.Product, error) {
	out := make([]shop.Product, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			p, err := c.GetProduct(gctx, id)
			if err != nil {
				return err
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func productFields(f shop.ProductForm) map[string]string {
	return map[string]string{
		"name":        f.Name,
		"description": f.Description,
		"price":       strings.TrimSpace(f.Price),
		"stockCount":  strings.TrimSpace(f.StockCount),
	}
}

func (c *Client) CreateProduct(ctx context.Context, f shop.ProductForm) (shop.Product, error) {
	var p shop.Product
	err := c.doMultipart(ctx, http.MethodPost, "/product/", productFields(f), f.Image, &p)
	return p, err
}

// UpdateProduct patches a product; the image is replaced only when f.Image is set.
func (c *Client) UpdateProduct(ctx context.Context, id int64, f shop.ProductForm) (shop.Product, error) {
	var p shop.Product
	err := c.doMultipart(ctx, http.MethodPatch, fmt.Sprintf("/product/%d/", id), productFields(f), f.Image, &p)
	return p, err
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/product/%d/", id), true, nil, nil)
}

func (c *Client) ListFeedback(ctx context.Context) ([]shop.Feedback, error) {
	var fb []shop.Feedback
	err := c.doJSON(ctx, http.MethodGet, "/product_feedback/list/", true, nil, &fb)
	return fb, err
}

func (c *Client) CreateFeedback(ctx context.Context, f shop.FeedbackForm) error {
	return c.doJSON(ctx, http.MethodPost, "/product_feedback/", true, f, nil)
}
