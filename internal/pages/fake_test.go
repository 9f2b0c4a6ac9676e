package pages

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ariefcatur/lexi-storefront/internal/apiclient"
	"github.com/ariefcatur/lexi-storefront/internal/shop"
)

var errDown = errors.New("upstream down")

// fakeAPI is an in-memory storefront. fail names methods that return errDown.
type fakeAPI struct {
	mu        sync.Mutex
	products  map[int64]shop.Product
	favorites []shop.Favorite
	cart      []shop.CartItem
	addresses []shop.Address
	orders    []shop.Order
	feedback  []shop.Feedback
	lines     []shop.SellerOrderLine
	nextID    int64
	fail      map[string]bool
	calls     []string
	lastOrder apiclient.OrderRequest
	fromCart  []int64
}

func newFake(products ...shop.Product) *fakeAPI {
	f := &fakeAPI{products: map[int64]shop.Product{}, nextID: 100, fail: map[string]bool{}}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeAPI) call(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if f.fail[name] {
		return errDown
	}
	return nil
}

func (f *fakeAPI) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeAPI) ListProducts(_ context.Context, flt apiclient.ProductFilter) ([]shop.Product, error) {
	if err := f.call("ListProducts"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []shop.Product
	for id := int64(0); id <= f.nextID; id++ {
		p, ok := f.products[id]
		if !ok || (flt.SellerID != 0 && p.Seller != flt.SellerID) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeAPI) GetProduct(_ context.Context, id int64) (shop.Product, error) {
	if err := f.call("GetProduct"); err != nil {
		return shop.Product{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return shop.Product{}, &apiclient.APIError{Status: 404, Detail: "Not found."}
	}
	return p, nil
}

func (f *fakeAPI) FetchProducts(ctx context.Context, ids []int64) ([]shop.Product, error) {
	if err := f.call("FetchProducts"); err != nil {
		return nil, err
	}
	out := make([]shop.Product, len(ids))
	for i, id := range ids {
		p, err := f.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func (f *fakeAPI) CreateProduct(_ context.Context, pf shop.ProductForm) (shop.Product, error) {
	if err := f.call("CreateProduct"); err != nil {
		return shop.Product{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := shop.Product{ID: f.id(), Name: pf.Name, Description: pf.Description}
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeAPI) UpdateProduct(_ context.Context, id int64, pf shop.ProductForm) (shop.Product, error) {
	if err := f.call("UpdateProduct"); err != nil {
		return shop.Product{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.products[id]
	p.Name, p.Description = pf.Name, pf.Description
	f.products[id] = p
	return p, nil
}

func (f *fakeAPI) DeleteProduct(_ context.Context, id int64) error {
	if err := f.call("DeleteProduct"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
	return nil
}

func (f *fakeAPI) ListFeedback(context.Context) ([]shop.Feedback, error) {
	if err := f.call("ListFeedback"); err != nil {
		return nil, err
	}
	return f.feedback, nil
}

func (f *fakeAPI) CreateFeedback(_ context.Context, fb shop.FeedbackForm) error {
	if err := f.call("CreateFeedback"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedback = append(f.feedback, shop.Feedback{ID: f.id(), Product: fb.Product, Rating: fb.Rating, Comment: fb.Comment})
	return nil
}

func (f *fakeAPI) ListFavorites(context.Context) ([]shop.Favorite, error) {
	if err := f.call("ListFavorites"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shop.Favorite(nil), f.favorites...), nil
}

func (f *fakeAPI) AddFavorite(_ context.Context, productID int64) error {
	if err := f.call("AddFavorite"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.favorites = append(f.favorites, shop.Favorite{ID: f.id(), Product: productID})
	return nil
}

func (f *fakeAPI) RemoveFavorite(_ context.Context, favoriteID int64) error {
	if err := f.call("RemoveFavorite"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, fav := range f.favorites {
		if fav.ID == favoriteID {
			f.favorites = append(f.favorites[:i], f.favorites[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("favorite %d not found", favoriteID)
}

func (f *fakeAPI) ListCart(context.Context) ([]shop.CartItem, error) {
	if err := f.call("ListCart"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shop.CartItem(nil), f.cart...), nil
}

func (f *fakeAPI) AddToCart(_ context.Context, productID int64, quantity int) error {
	if err := f.call("AddToCart"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cart = append(f.cart, shop.CartItem{ID: f.id(), Product: productID, Quantity: quantity})
	return nil
}

func (f *fakeAPI) UpdateCartQuantity(_ context.Context, id int64, quantity int) error {
	if err := f.call("UpdateCartQuantity"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.cart {
		if f.cart[i].ID == id {
			f.cart[i].Quantity = quantity
		}
	}
	return nil
}

func (f *fakeAPI) RemoveCartItem(_ context.Context, id int64) error {
	if err := f.call("RemoveCartItem"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.cart {
		if f.cart[i].ID == id {
			f.cart = append(f.cart[:i], f.cart[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeAPI) ListAddresses(context.Context) ([]shop.Address, error) {
	if err := f.call("ListAddresses"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shop.Address(nil), f.addresses...), nil
}

func (f *fakeAPI) CreateAddress(_ context.Context, a shop.AddressForm) error {
	if err := f.call("CreateAddress"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addresses = append(f.addresses, shop.Address{ID: f.id(), Telephone: a.Telephone, Address: a.Address, City: a.City, State: a.State, Zipcode: a.Zipcode})
	return nil
}

func (f *fakeAPI) UpdateAddress(_ context.Context, id int64, a shop.AddressForm) error {
	if err := f.call("UpdateAddress"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.addresses {
		if f.addresses[i].ID == id {
			f.addresses[i].City = a.City
		}
	}
	return nil
}

func (f *fakeAPI) DeleteAddress(_ context.Context, id int64) error {
	if err := f.call("DeleteAddress"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.addresses {
		if f.addresses[i].ID == id {
			f.addresses = append(f.addresses[:i], f.addresses[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeAPI) ListOrders(context.Context) ([]shop.Order, error) {
	if err := f.call("ListOrders"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shop.Order(nil), f.orders...), nil
}

func (f *fakeAPI) GetOrder(_ context.Context, id int64) (shop.Order, error) {
	if err := f.call("GetOrder"); err != nil {
		return shop.Order{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return shop.Order{}, &apiclient.APIError{Status: 404, Detail: "Not found."}
}

func (f *fakeAPI) CreateOrder(_ context.Context, req apiclient.OrderRequest) (shop.Order, error) {
	if err := f.call("CreateOrder"); err != nil {
		return shop.Order{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastOrder = req
	o := shop.Order{ID: f.id(), Status: "pending", Items: req.Items}
	f.orders = append(f.orders, o)
	return o, nil
}

func (f *fakeAPI) OrderFromCart(_ context.Context, _ int64, ids []int64) error {
	if err := f.call("OrderFromCart"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fromCart = ids
	f.cart = nil
	return nil
}

func (f *fakeAPI) ListSellerOrders(context.Context) ([]shop.SellerOrderLine, error) {
	if err := f.call("ListSellerOrders"); err != nil {
		return nil, err
	}
	return f.lines, nil
}
