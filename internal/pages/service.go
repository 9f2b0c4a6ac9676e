package pages

import (
	"context"
	"errors"

	"github.com/ariefcatur/lexi-storefront/internal/apiclient"
	"github.com/ariefcatur/lexi-storefront/internal/logx"
	"github.com/ariefcatur/lexi-storefront/internal/shop"
	"go.uber.org/zap"
)

var (
	ErrOutOfStock        = errors.New("this product is out of stock")
	ErrNoAddressSelected = errors.New("please select a shipping address")
)

// API is the part of the storefront client the pages read and write through.
type API interface {
	ListProducts(ctx context.Context, f apiclient.ProductFilter) ([]shop.Product, error)
	GetProduct(ctx context.Context, id int64) (shop.Product, error)
	FetchProducts(ctx context.Context, ids []int64) ([]shop.Product, error)
	CreateProduct(ctx context.Context, f shop.ProductForm) (shop.Product, error)
	UpdateProduct(ctx context.Context, id int64, f shop.ProductForm) (shop.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListFeedback(ctx context.Context) ([]shop.Feedback, error)
	CreateFeedback(ctx context.Context, f shop.FeedbackForm) error

	ListFavorites(ctx context.Context) ([]shop.Favorite, error)
	AddFavorite(ctx context.Context, productID int64) error
	RemoveFavorite(ctx context.Context, favoriteID int64) error
	ListCart(ctx context.Context) ([]shop.CartItem, error)
	AddToCart(ctx context.Context, productID int64, quantity int) error
	UpdateCartQuantity(ctx context.Context, cartItemID int64, quantity int) error
	RemoveCartItem(ctx context.Context, cartItemID int64) error

	ListAddresses(ctx context.Context) ([]shop.Address, error)
	CreateAddress(ctx context.Context, f shop.AddressForm) error
	UpdateAddress(ctx context.Context, id int64, f shop.AddressForm) error
	DeleteAddress(ctx context.Context, id int64) error

	ListOrders(ctx context.Context) ([]shop.Order, error)
	GetOrder(ctx context.Context, id int64) (shop.Order, error)
	CreateOrder(ctx context.Context, req apiclient.OrderRequest) (shop.Order, error)
	OrderFromCart(ctx context.Context, addressID int64, cartItemIDs []int64) error
	ListSellerOrders(ctx context.Context) ([]shop.SellerOrderLine, error)
}

var _ API = (*apiclient.Client)(nil)

// Service builds page views. It holds no page state: every call reads
// fresh data and every mutation returns the re-fetched view.
type Service struct {
	API API
	Log *zap.Logger
}

func (s *Service) log() *zap.Logger { return logx.OrNop(s.Log) }

// partial logs a failed secondary fetch. The view is still served without
// that part.
func (s *Service) partial(what string, err error) {
	if err != nil {
		s.log().Warn("partial view", zap.String("fetch", what), zap.Error(err))
	}
}

func productRef(products []shop.Product, id int64) *shop.Product {
	p, ok := shop.FindProduct(products, id)
	if !ok {
		return nil
	}
	return &p
}
