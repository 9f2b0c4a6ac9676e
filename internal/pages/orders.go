package pages

import (
	"context"

	"github.com/ariefcatur/lexi-storefront/internal/shop"
)

type OrderLine struct {
	Item    shop.OrderItem `json:"item"`
	Product *shop.Product  `json:"product"`
	// Feedback is what the signed-in customer already said about the product.
	Feedback *shop.Feedback `json:"feedback,omitempty"`
}

type OrderView struct {
	shop.Order
	Lines []OrderLine `json:"lines"`
}

type OrdersView struct {
	Orders []OrderView `json:"orders"`
}

func orderView(o shop.Order, products []shop.Product, customerID int64) OrderView {
	v := OrderView{Order: o, Lines: make([]OrderLine, 0, len(o.Items))}
	for _, it := range o.Items {
		line := OrderLine{Item: it, Product: productRef(products, it.Product)}
		if line.Product != nil {
			if fb, ok := shop.CustomerFeedback(*line.Product, customerID); ok {
				line.Feedback = &fb
			}
		}
		v.Lines = append(v.Lines, line)
	}
	return v
}

// Orders lists the customer's orders newest first, each product joined once.
func (s *Service) Orders(ctx context.Context, customerID int64) (OrdersView, error) {
	orders, err := s.API.ListOrders(ctx)
	if err != nil {
		return OrdersView{}, err
	}
	shop.SortOrdersNewestFirst(orders)

	products, err := s.API.FetchProducts(ctx, shop.UniqueProductIDs(orders))
	s.partial("order products", err)

	v := OrdersView{Orders: make([]OrderView, 0, len(orders))}
	for _, o := range orders {
		v.Orders = append(v.Orders, orderView(o, products, customerID))
	}
	return v, nil
}

func (s *Service) Order(ctx context.Context, id, customerID int64) (OrderView, error) {
	o, err := s.API.GetOrder(ctx, id)
	if err != nil {
		return OrderView{}, err
	}
	products, err := s.API.FetchProducts(ctx, shop.UniqueProductIDs([]shop.Order{o}))
	s.partial("order products", err)
	return orderView(o, products, customerID), nil
}

func (s *Service) SubmitFeedback(ctx context.Context, customerID int64, f shop.FeedbackForm) (OrdersView, error) {
	if err := f.Validate(); err != nil {
		return OrdersView{}, err
	}
	if err := s.API.CreateFeedback(ctx, f); err != nil {
		return OrdersView{}, err
	}
	return s.Orders(ctx, customerID)
}
