package pages

import (
	"context"

	"github.com/ariefcatur/lexi-storefront/internal/apiclient"
	"github.com/ariefcatur/lexi-storefront/internal/shop"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type SellerProduct struct {
	shop.Product
	AverageRating decimal.Decimal `json:"averageRating"`
	Rating        string          `json:"rating"`
}

type SellerProductsView struct {
	Search   string          `json:"search"`
	Products []SellerProduct `json:"products"`
}

func (s *Service) SellerProducts(ctx context.Context, sellerID int64, search string) (SellerProductsView, error) {
	ps, err := s.API.ListProducts(ctx, apiclient.ProductFilter{SellerID: sellerID, Search: search})
	if err != nil {
		return SellerProductsView{}, err
	}
	v := SellerProductsView{Search: search, Products: make([]SellerProduct, 0, len(ps))}
	for _, p := range ps {
		avg := shop.AverageRating(p.Feedbacks)
		v.Products = append(v.Products, SellerProduct{Product: p, AverageRating: avg, Rating: shop.FormatRating(avg)})
	}
	return v, nil
}

func (s *Service) DeleteProduct(ctx context.Context, sellerID int64, search string, id int64) (SellerProductsView, error) {
	if err := s.API.DeleteProduct(ctx, id); err != nil {
		return SellerProductsView{}, err
	}
	return s.SellerProducts(ctx, sellerID, search)
}

func (s *Service) CreateProduct(ctx context.Context, f shop.ProductForm) (shop.Product, error) {
	if err := f.Validate(true); err != nil {
		return shop.Product{}, err
	}
	return s.API.CreateProduct(ctx, f)
}

type EditProductView struct {
	Product shop.Product `json:"product"`
	// InCart warns the editor that the product sits in their own cart.
	InCart bool `json:"inCart"`
}

func (s *Service) EditProduct(ctx context.Context, id int64) (EditProductView, error) {
	var (
		product shop.Product
		cart    []shop.CartItem
		g       errgroup.Group
	)
	g.Go(func() (err error) {
		product, err = s.API.GetProduct(ctx, id)
		return err
	})
	g.Go(func() (err error) {
		cart, err = s.API.ListCart(ctx)
		s.partial("cart", err)
		return nil
	})
	if err := g.Wait(); err != nil {
		return EditProductView{}, err
	}
	return EditProductView{Product: product, InCart: shop.IsInCart(cart, id)}, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, f shop.ProductForm) (EditProductView, error) {
	if err := f.Validate(false); err != nil {
		return EditProductView{}, err
	}
	if _, err := s.API.UpdateProduct(ctx, id, f); err != nil {
		return EditProductView{}, err
	}
	return s.EditProduct(ctx, id)
}

type SellerOrderRow struct {
	shop.SellerOrderLine
	LineTotal decimal.Decimal `json:"lineTotal"`
	Date      string          `json:"date"`
	Time      string          `json:"time"`
}

type SellerOrdersView struct {
	Lines []SellerOrderRow `json:"lines"`
}

func (s *Service) SellerOrders(ctx context.Context) (SellerOrdersView, error) {
	lines, err := s.API.ListSellerOrders(ctx)
	if err != nil {
		return SellerOrdersView{}, err
	}
	v := SellerOrdersView{Lines: make([]SellerOrderRow, 0, len(lines))}
	for _, l := range lines {
		date, clock := shop.SplitTimestamp(l.ShippingAddress.DateUpdated)
		v.Lines = append(v.Lines, SellerOrderRow{SellerOrderLine: l, LineTotal: l.Total(), Date: date, Time: clock})
	}
	return v, nil
}

type FeedbackOverview struct {
	Products []shop.ProductFeedback `json:"products"`
}

// FeedbackOverview groups all feedback by product. The seller's own product
// list only supplies images.
func (s *Service) FeedbackOverview(ctx context.Context, sellerID int64) (FeedbackOverview, error) {
	var (
		feedbacks []shop.Feedback
		products  []shop.Product
		g         errgroup.Group
	)
	g.Go(func() (err error) {
		feedbacks, err = s.API.ListFeedback(ctx)
		return err
	})
	g.Go(func() (err error) {
		products, err = s.API.ListProducts(ctx, apiclient.ProductFilter{SellerID: sellerID})
		s.partial("seller products", err)
		return nil
	})
	if err := g.Wait(); err != nil {
		return FeedbackOverview{}, err
	}
	return FeedbackOverview{Products: shop.GroupFeedbackByProduct(feedbacks, products)}, nil
}
