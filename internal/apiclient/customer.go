package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ariefcatur/lexi-storefront/internal/shop"
)

func (c *Client) ListFavorites(ctx context.Context) ([]shop.Favorite, error) {
	var fs []shop.Favorite
	err := c.doJSON(ctx, http.MethodGet, "/favorite/list/", true, nil, &fs)
	return fs, err
}

func (c *Client) AddFavorite(ctx context.Context, productID int64) error {
	return c.doJSON(ctx, http.MethodPost, "/favorite/", true, map[string]int64{"product": productID}, nil)
}

func (c *Client) RemoveFavorite(ctx context.Context, favoriteID int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/favorite/%d/", favoriteID), true, nil, nil)
}

func (c *Client) ListCart(ctx context.Context) ([]shop.CartItem, error) {
	var items []shop.CartItem
	err := c.doJSON(ctx, http.MethodGet, "/cart/list/", true, nil, &items)
	return items, err
}

func (c *Client) AddToCart(ctx context.Context, productID int64, quantity int) error {
	in := map[string]any{"product": productID, "quantity": quantity}
	return c.doJSON(ctx, http.MethodPost, "/cart/", true, in, nil)
}

func (c *Client) UpdateCartQuantity(ctx context.Context, cartItemID int64, quantity int) error {
	in := map[string]int{"quantity": quantity}
	return c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/cart/%d/", cartItemID), true, in, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, cartItemID int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/cart/%d/", cartItemID), true, nil, nil)
}

func (c *Client) ListAddresses(ctx context.Context) ([]shop.Address, error) {
	var as []shop.Address
	err := c.doJSON(ctx, http.MethodGet, "/shipping_address/list/", true, nil, &as)
	return as, err
}

func (c *Client) CreateAddress(ctx context.Context, f shop.AddressForm) error {
	return c.doJSON(ctx, http.MethodPost, "/shipping_address/", true, f, nil)
}

func (c *Client) UpdateAddress(ctx context.Context, id int64, f shop.AddressForm) error {
	return c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/shipping_address/%d/", id), true, f, nil)
}

func (c *Client) DeleteAddress(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/shipping_address/%d/", id), true, nil, nil)
}

type OrderRequest struct {
	ShippingAddress int64            `json:"shippingAddress"`
	Items           []shop.OrderItem `json:"items"`
}

func (c *Client) ListOrders(ctx context.Context) ([]shop.Order, error) {
	var orders []shop.Order
	err := c.doJSON(ctx, http.MethodGet, "/order/list/", true, nil, &orders)
	return orders, err
}

func (c *Client) GetOrder(ctx context.Context, id int64) (shop.Order, error) {
	var o shop.Order
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/order/%d/", id), true, nil, &o)
	return o, err
}

// CreateOrder places an order for explicit items, bypassing the cart.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (shop.Order, error) {
	var o shop.Order
	err := c.doJSON(ctx, http.MethodPost, "/order/", true, req, &o)
	return o, err
}

// OrderFromCart turns the given cart items into an order shipped to addressID.
func (c *Client) OrderFromCart(ctx context.Context, addressID int64, cartItemIDs []int64) error {
	in := map[string]any{"shippingAddress": addressID, "cartItems": cartItemIDs}
	return c.doJSON(ctx, http.MethodPost, "/order/from_cart/", true, in, nil)
}

func (c *Client) ListSellerOrders(ctx context.Context) ([]shop.SellerOrderLine, error) {
	var lines []shop.SellerOrderLine
	err := c.doJSON(ctx, http.MethodGet, "/seller_orders/list/", true, nil, &lines)
	return lines, err
}

func (c *Client) Chat(ctx context.Context, query string) (shop.ChatReply, error) {
	var r shop.ChatReply
	err := c.doJSON(ctx, http.MethodPost, "/chat/", true, map[string]string{"query": query}, &r)
	return r, err
}
