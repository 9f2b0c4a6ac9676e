package shop

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	StockCount  int             `json:"stockCount"`
	Image       string          `json:"image"`
	Seller      int64           `json:"seller,omitempty"`
	Feedbacks   []Feedback      `json:"feedbacks"`
}

type Feedback struct {
	ID       int64  `json:"id,omitempty"`
	Product  int64  `json:"product"`
	Customer int64  `json:"customer,omitempty"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

type CartItem struct {
	ID       int64 `json:"id"`
	Product  int64 `json:"product"`
	Quantity int   `json:"quantity"`
}

type Favorite struct {
	ID       int64 `json:"id"`
	Product  int64 `json:"product"`
	Customer int64 `json:"customer,omitempty"`
}

type Address struct {
	ID          int64  `json:"id,omitempty"`
	Telephone   string `json:"telephone"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zipcode     string `json:"zipcode"`
	DateUpdated string `json:"dateUpdated,omitempty"`
}

type Order struct {
	ID         int64           `json:"id"`
	Status     string          `json:"status"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
	Items      []OrderItem     `json:"items"`
}

type OrderItem struct {
	ID       int64 `json:"id"`
	Product  int64 `json:"product"`
	Quantity int   `json:"quantity"`
}

type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// SellerOrderLine is one ordered product as seen by the selling side.
type SellerOrderLine struct {
	ID              int64    `json:"id"`
	Order           int64    `json:"order"`
	Product         Product  `json:"product"`
	Quantity        int      `json:"quantity"`
	Customer        Customer `json:"customer"`
	ShippingAddress Address  `json:"shippingAddress"`
}

// Total is the line's price times quantity.
func (l SellerOrderLine) Total() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Identity is the answer of the "who am I" endpoint.
type Identity struct {
	Role       Role  `json:"role"`
	CustomerID int64 `json:"customerId"`
	SellerID   int64 `json:"sellerId"`
}

type ChatReply struct {
	Message []string `json:"message"`
}
