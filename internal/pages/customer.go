package pages

import (
	"context"

	"github.com/ariefcatur/lexi-storefront/internal/apiclient"
	"github.com/ariefcatur/lexi-storefront/internal/shop"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type ProductCard struct {
	shop.Product
	AverageRating decimal.Decimal `json:"averageRating"`
	Rating        string          `json:"rating"`
	IsFavorite    bool            `json:"isFavorite"`
	InCart        bool            `json:"inCart"`
	OutOfStock    bool            `json:"outOfStock"`
}

func card(p shop.Product, favorites []shop.Favorite, cart []shop.CartItem) ProductCard {
	avg := shop.AverageRating(p.Feedbacks)
	return ProductCard{
		Product:       p,
		AverageRating: avg,
		Rating:        shop.FormatRating(avg),
		IsFavorite:    shop.IsFavorite(favorites, p.ID),
		InCart:        shop.IsInCart(cart, p.ID),
		OutOfStock:    p.StockCount <= 0,
	}
}

type HomeView struct {
	Products []ProductCard `json:"products"`
}

func (s *Service) Home(ctx context.Context) (HomeView, error) {
	var (
		products  []shop.Product
		favorites []shop.Favorite
		cart      []shop.CartItem
		g         errgroup.Group
	)
	g.Go(func() (err error) {
		products, err = s.API.ListProducts(ctx, apiclient.ProductFilter{})
		return err
	})
	g.Go(func() (err error) {
		favorites, err = s.API.ListFavorites(ctx)
		s.partial("favorites", err)
		return nil
	})
	g.Go(func() (err error) {
		cart, err = s.API.ListCart(ctx)
		s.partial("cart", err)
		return nil
	})
	if err := g.Wait(); err != nil {
		return HomeView{}, err
	}

	v := HomeView{Products: make([]ProductCard, 0, len(products))}
	for _, p := range products {
		v.Products = append(v.Products, card(p, favorites, cart))
	}
	return v, nil
}

// ToggleFavorite removes the product from the favorites when it is there and
// adds it otherwise.
func (s *Service) ToggleFavorite(ctx context.Context, productID int64) (HomeView, error) {
	favorites, err := s.API.ListFavorites(ctx)
	if err != nil {
		return HomeView{}, err
	}
	if f, ok := shop.FavoriteFor(favorites, productID); ok {
		err = s.API.RemoveFavorite(ctx, f.ID)
	} else {
		err = s.API.AddFavorite(ctx, productID)
	}
	if err != nil {
		return HomeView{}, err
	}
	return s.Home(ctx)
}

func (s *Service) AddToCart(ctx context.Context, productID int64, quantity int) (HomeView, error) {
	if err := s.addToCart(ctx, productID, quantity); err != nil {
		return HomeView{}, err
	}
	return s.Home(ctx)
}

func (s *Service) addToCart(ctx context.Context, productID int64, quantity int) error {
	p, err := s.API.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if p.StockCount <= 0 {
		return ErrOutOfStock
	}
	if quantity < 1 {
		quantity = 1
	}
	return s.API.AddToCart(ctx, productID, quantity)
}

func (s *Service) ProductDetail(ctx context.Context, id int64) (ProductCard, error) {
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
		return ProductCard{}, err
	}
	return card(product, nil, cart), nil
}

func (s *Service) AddToCartFromDetail(ctx context.Context, id int64, quantity int) (ProductCard, error) {
	if err := s.addToCart(ctx, id, quantity); err != nil {
		return ProductCard{}, err
	}
	return s.ProductDetail(ctx, id)
}

type CartLine struct {
	Item      shop.CartItem   `json:"item"`
	Product   *shop.Product   `json:"product"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type CartView struct {
	Lines     []CartLine      `json:"lines"`
	Addresses []shop.Address  `json:"addresses"`
	Total     decimal.Decimal `json:"total"`
}

func (s *Service) Cart(ctx context.Context) (CartView, error) {
	var (
		items     []shop.CartItem
		addresses []shop.Address
		g         errgroup.Group
	)
	g.Go(func() (err error) {
		items, err = s.API.ListCart(ctx)
		return err
	})
	g.Go(func() (err error) {
		addresses, err = s.API.ListAddresses(ctx)
		s.partial("addresses", err)
		return nil
	})
	if err := g.Wait(); err != nil {
		return CartView{}, err
	}

	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.Product
	}
	products, err := s.API.FetchProducts(ctx, ids)
	s.partial("cart products", err)

	v := CartView{
		Lines:     make([]CartLine, 0, len(items)),
		Addresses: addresses,
		Total:     shop.CartTotal(items, products),
	}
	for _, it := range items {
		line := CartLine{Item: it, Product: productRef(products, it.Product)}
		if line.Product != nil {
			line.LineTotal = line.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		}
		v.Lines = append(v.Lines, line)
	}
	return v, nil
}

// UpdateQuantity sets a cart line's quantity. Anything below one removes the
// line.
func (s *Service) UpdateQuantity(ctx context.Context, cartItemID int64, quantity int) (CartView, error) {
	var err error
	if quantity < 1 {
		err = s.API.RemoveCartItem(ctx, cartItemID)
	} else {
		err = s.API.UpdateCartQuantity(ctx, cartItemID, quantity)
	}
	if err != nil {
		return CartView{}, err
	}
	return s.Cart(ctx)
}

func (s *Service) RemoveCartItem(ctx context.Context, cartItemID int64) (CartView, error) {
	if err := s.API.RemoveCartItem(ctx, cartItemID); err != nil {
		return CartView{}, err
	}
	return s.Cart(ctx)
}

// PlaceOrder orders every line of the current cart, shipped to addressID.
// It returns the number of cart lines ordered.
func (s *Service) PlaceOrder(ctx context.Context, addressID int64) (int, error) {
	if addressID == 0 {
		return 0, ErrNoAddressSelected
	}
	items, err := s.API.ListCart(ctx)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, shop.ValidationError{"cart": "Your cart is empty."}
	}
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	if err := s.API.OrderFromCart(ctx, addressID, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

// BuyNow orders a single product directly, leaving the cart untouched.
func (s *Service) BuyNow(ctx context.Context, productID int64, quantity int, addressID int64) (shop.Order, error) {
	if addressID == 0 {
		return shop.Order{}, ErrNoAddressSelected
	}
	p, err := s.API.GetProduct(ctx, productID)
	if err != nil {
		return shop.Order{}, err
	}
	if p.StockCount <= 0 {
		return shop.Order{}, ErrOutOfStock
	}
	if quantity < 1 {
		quantity = 1
	}
	return s.API.CreateOrder(ctx, apiclient.OrderRequest{
		ShippingAddress: addressID,
		Items:           []shop.OrderItem{{Product: productID, Quantity: quantity}},
	})
}

type FavoriteLine struct {
	Favorite shop.Favorite `json:"favorite"`
	Product  *shop.Product `json:"product"`
}

type FavoritesView struct {
	Items []FavoriteLine `json:"items"`
}

func (s *Service) Favorites(ctx context.Context) (FavoritesView, error) {
	favorites, err := s.API.ListFavorites(ctx)
	if err != nil {
		return FavoritesView{}, err
	}
	ids := make([]int64, len(favorites))
	for i, f := range favorites {
		ids[i] = f.Product
	}
	products, err := s.API.FetchProducts(ctx, ids)
	s.partial("favorite products", err)

	v := FavoritesView{Items: make([]FavoriteLine, 0, len(favorites))}
	for _, f := range favorites {
		v.Items = append(v.Items, FavoriteLine{Favorite: f, Product: productRef(products, f.Product)})
	}
	return v, nil
}

func (s *Service) RemoveFavorite(ctx context.Context, favoriteID int64) (FavoritesView, error) {
	if err := s.API.RemoveFavorite(ctx, favoriteID); err != nil {
		return FavoritesView{}, err
	}
	return s.Favorites(ctx)
}

type AddressesView struct {
	Addresses []shop.Address `json:"addresses"`
}

func (s *Service) Addresses(ctx context.Context) (AddressesView, error) {
	as, err := s.API.ListAddresses(ctx)
	if err != nil {
		return AddressesView{}, err
	}
	return AddressesView{Addresses: as}, nil
}

func (s *Service) AddAddress(ctx context.Context, f shop.AddressForm) (AddressesView, error) {
	if err := f.Validate(); err != nil {
		return AddressesView{}, err
	}
	if err := s.API.CreateAddress(ctx, f); err != nil {
		return AddressesView{}, err
	}
	return s.Addresses(ctx)
}

func (s *Service) UpdateAddress(ctx context.Context, id int64, f shop.AddressForm) (AddressesView, error) {
	if err := f.Validate(); err != nil {
		return AddressesView{}, err
	}
	if err := s.API.UpdateAddress(ctx, id, f); err != nil {
		return AddressesView{}, err
	}
	return s.Addresses(ctx)
}

func (s *Service) DeleteAddress(ctx context.Context, id int64) (AddressesView, error) {
	if err := s.API.DeleteAddress(ctx, id); err != nil {
		return AddressesView{}, err
	}
	return s.Addresses(ctx)
}
