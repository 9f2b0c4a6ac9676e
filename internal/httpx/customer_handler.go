package httpx

import (
	"net/http"

	"github.com/ariefcatur/lexi-storefront/internal/activity"
	"github.com/ariefcatur/lexi-storefront/internal/shop"
	"github.com/go-chi/chi/v5"
)

func (s *Storefront) customerRoutes(r chi.Router) {
	r.Get("/home", s.home)
	r.Post("/home/favorites/{productID}", s.toggleFavorite)
	r.Post("/home/cart", s.homeAddToCart)

	r.Get("/products/{id}", s.productDetail)
	r.Post("/products/{id}/cart", s.detailAddToCart)
	r.Post("/products/{id}/buy", s.buyNow)

	r.Get("/cart", s.cart)
	r.Patch("/cart/{itemID}", s.updateCartQuantity)
	r.Delete("/cart/{itemID}", s.removeCartItem)
	r.Post("/cart/order", s.placeOrder)

	r.Get("/favorites", s.favorites)
	r.Delete("/favorites/{id}", s.removeFavorite)

	r.Get("/addresses", s.addresses)
	r.Post("/addresses", s.addAddress)
	r.Patch("/addresses/{id}", s.updateAddress)
	r.Delete("/addresses/{id}", s.deleteAddress)

	r.Get("/orders", s.orders)
	r.Get("/orders/{id}", s.order)
	r.Post("/orders/feedback", s.submitFeedback)
}

type cartReq struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
	AddressID int64 `json:"addressId"`
}

func (s *Storefront) respond(w http.ResponseWriter, r *http.Request, code int, v any, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, code, v)
}

func (s *Storefront) home(w http.ResponseWriter, r *http.Request) {
	v, err := s.views(r).Home(r.Context())
	s.respond(w, r, http.StatusOK, v, err)
}

func (s *Storefront) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "productID")
	if !ok {
		return
	}
	v, err := s.views(r).ToggleFavorite(r.Context(), id)
	s.respond(w, r, http.StatusOK, v, err)
}

func (s *Storefront) homeAddToCart(w http.ResponseWriter, r *http.Request) {
	var req cartReq
	if !decode(w, r, &req) {
		return
	}
	v, err := s.views(r).AddToCart(r.Context(), req.ProductID, req.Quantity)
	if err == nil {
		s.publish(r, activity.EventCartChanged, activity.CartChangedPayload{Action: "add", ProductID: req.ProductID, Quantity: req.Quantity})
	}
	s.respond(w, r, http.StatusOK, v, err)
}

func (s *Storefront) productDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	v, err := s.views(r).ProductDetail(r.Context(), id)
	s.respond(w, r, http.StatusOK, v, err)
}

func (s *Storefront) detailAddToCart(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req cartReq
	if !decode(w, r, &req) {
		return
	}
	v, err := s.views(r).AddToCartFromDetail(r.Context(), id, req.Quantity)
	if err == nil {
		s.publish(r, activity.EventCartChanged, activity.CartChangedPayload{Action: "add", ProductID: id, Quantity: req.Quantity})
	}
	s.respond(w, r, http.StatusOK, v, err)
}

func (s *Storefront) buyNow(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req cartReq
	if !decode(w, r, &req) {
		return
	}
	o, err := s.views(r).BuyNow(r.Context(), id, req.Quantity, req.AddressID)
	if err == nil {
		s.publish(r, activity.EventOrderPlaced, activity.OrderPlacedPayload{ShippingAddress: req.AddressID, Lines: 1, OrderID: o.ID})
	}
	s.respond(w, r, http.StatusCreated, o, err)
}

func (s *Storefront) cart(w http.ResponseWriter, r *http.Request) {
	v, err := s.views(r).Cart(r.Context())
	s.respond(w, r, http.StatusOK, v, err)
}

func (s *Storefront) updateCartQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "itemID")
	if !ok {
		return
	}
	var req cartReq
	if !decode(w, r, &req) {
		return
	}
	v, err := s.views(r).UpdateQuantity(r.Context(), id, req.Quantity)
	if err == nil {
		s.publish(r, activity.EventCartChanged, activity.CartChangedPayload{Action: "update", ItemID: id, Quantity: req.Quantity})
	}
	s.respond(w, r, http.StatusOK, v, err)
}

func (s *Storefront) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "itemID")
	if !ok {
		return
	}
	v, err := s.views(r).RemoveCartItem(r.Context(), id)
	if err == nil {
		s.publish(r, activity.EventCartChanged, activity.CartChangedPayload{Action: "remove", ItemID: id})
	}
	s.respond(w, r, http.StatusOK, v, err)
}

// placeOrder orders the whole cart and answers with the orders page.
func (s *Storefront) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req cartReq
	if !decode(w, r, &req) {
		return
	}
	views := s.views(r)
	n, err := views.PlaceOrder(r.Context(), req.AddressID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(r, activity.EventOrderPlaced, activity.OrderPlacedPayload{ShippingAddress: req.AddressID, Lines: n})
	v, err := views.Orders(r.Context(), capabilityFrom(r.Context()).CustomerID)
	s.respond(w, r, http.StatusCreated, v, err)
}

func (s *Storefront) favorites(w http.ResponseWriter, r *http.Request) {
	v, err := s.views(r).Favorites(r.Context())
	s.respond(w, r, http.StatusOK, v, err)
}

func (s *Storefront) removeFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	v, err := s.views(r).RemoveFavorite(r.Context(), id)
	s.respond(w, r, http.StatusOK, v, err)
}

func (s *Storefront) addresses(w http.ResponseWriter, r *http.Request) {
	v, err := s.views(r).Addresses(r.Context())
	s.respond(w, r, http.StatusOK, v, err)
}

func (s *Storefront) addAddress(w http.ResponseWriter, r *http.Request) {
	var form shop.AddressForm
	if !decode(w, r, &form) {
		return
	}
	v, err := s.views(r).AddAddress(r.Context(), form)
	s.respond(w, r, http.StatusCreated, v, err)
}

func (s *Storefront) updateAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var form shop.AddressForm
	if !decode(w, r, &form) {
		return
	}
	v, err := s.views(r).UpdateAddress(r.Context(), id, form)
	s.respond(w, r, http.StatusOK, v, err)
}

func (s *Storefront) deleteAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	v, err := s.views(r).DeleteAddress(r.Context(), id)
	s.respond(w, r, http.StatusOK, v, err)
}

func (s *Storefront) orders(w http.ResponseWriter, r *http.Request) {
	v, err := s.views(r).Orders(r.Context(), capabilityFrom(r.Context()).CustomerID)
	s.respond(w, r, http.StatusOK, v, err)
}

func (s *Storefront) order(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	v, err := s.views(r).Order(r.Context(), id, capabilityFrom(r.Context()).CustomerID)
	s.respond(w, r, http.StatusOK, v, err)
}

func (s *Storefront) submitFeedback(w http.ResponseWriter, r *http.Request) {
	var form shop.FeedbackForm
	if !decode(w, r, &form) {
		return
	}
	v, err := s.views(r).SubmitFeedback(r.Context(), capabilityFrom(r.Context()).CustomerID, form)
	if err == nil {
		s.publish(r, activity.EventFeedbackPosted, activity.FeedbackPostedPayload{ProductID: form.Product, Rating: form.Rating})
	}
	s.respond(w, r, http.StatusCreated, v, err)
}
