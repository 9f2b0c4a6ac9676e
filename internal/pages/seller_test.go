package pages

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ariefcatur/lexi-storefront/internal/shop"
)

func TestSellerProductsFilteredBySeller(t *testing.T) {
	api := newFake(
		shop.Product{ID: 1, Seller: 7, Feedbacks: []shop.Feedback{{Rating: 2}, {Rating: 3}}},
		shop.Product{ID: 2, Seller: 8},
	)
	s := &Service{API: api}

	v, err := s.SellerProducts(context.Background(), 7, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Products) != 1 || v.Products[0].Rating != "2.5" {
		t.Fatalf("products = %+v", v.Products)
	}

	v, err = s.DeleteProduct(context.Background(), 7, "", 1)
	if err != nil || len(v.Products) != 0 {
		t.Fatalf("%+v %v", v, err)
	}
}

func TestCreateProductNeedsImage(t *testing.T) {
	api := newFake()
	s := &Service{API: api}
	form := shop.ProductForm{Name: "Mug", Description: "Blue", Price: "12.50", StockCount: "4"}

	_, err := s.CreateProduct(context.Background(), form)
	var verr shop.ValidationError
	if !errors.As(err, &verr) || verr["image"] == "" {
		t.Fatalf("expected image error, got %v", err)
	}

	form.Image = &shop.Image{Filename: "mug.png", Body: strings.NewReader("png")}
	p, err := s.CreateProduct(context.Background(), form)
	if err != nil || p.ID == 0 {
		t.Fatalf("%+v %v", p, err)
	}
}

func TestEditAndUpdateProduct(t *testing.T) {
	api := newFake(shop.Product{ID: 1, Name: "Mug", Seller: 7})
	api.cart = []shop.CartItem{{ID: 3, Product: 1, Quantity: 1}}
	s := &Service{API: api}
	ctx := context.Background()

	v, err := s.EditProduct(ctx, 1)
	if err != nil || !v.InCart {
		t.Fatalf("%+v %v", v, err)
	}

	form := shop.ProductForm{Name: "Cup", Description: "Red", Price: "3", StockCount: "1"}
	v, err = s.UpdateProduct(ctx, 1, form)
	if err != nil || v.Product.Name != "Cup" {
		t.Fatalf("%+v %v", v, err)
	}
}

func TestSellerOrders(t *testing.T) {
	api := newFake()
	api.lines = []shop.SellerOrderLine{{
		ID: 1, Order: 9, Quantity: 3,
		Product:         shop.Product{Price: price("2.5")},
		ShippingAddress: shop.Address{DateUpdated: "2024-06-01T10:20:30.123456Z"},
	}}
	s := &Service{API: api}

	v, err := s.SellerOrders(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	row := v.Lines[0]
	if !row.LineTotal.Equal(price("7.5")) || row.Date != "2024-06-01" || row.Time != "10:20:30" {
		t.Fatalf("row = %+v", row)
	}
}

func TestFeedbackOverview(t *testing.T) {
	api := newFake(shop.Product{ID: 1, Seller: 7, Image: "a.png"})
	api.feedback = []shop.Feedback{
		{Product: 2, Rating: 1},
		{Product: 1, Rating: 5},
		{Product: 2, Rating: 4},
	}
	s := &Service{API: api}

	v, err := s.FeedbackOverview(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Products) != 2 || v.Products[0].ProductID != 2 || v.Products[1].Image != "a.png" {
		t.Fatalf("rows = %+v", v.Products)
	}
	if got := shop.FormatRating(v.Products[0].AverageRating); got != "2.5" {
		t.Fatalf("avg = %s", got)
	}

	api.fail["ListProducts"] = true
	v, err = s.FeedbackOverview(context.Background(), 7)
	if err != nil || v.Products[1].Image != "" {
		t.Fatalf("%+v %v", v, err)
	}
}
