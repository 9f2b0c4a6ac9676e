package session

import "github.com/ariefcatur/lexi-storefront/internal/shop"

type Kind int

const (
	Anonymous Kind = iota
	Customer
	Seller
)

func (k Kind) String() string {
	switch k {
	case Customer:
		return "customer"
	case Seller:
		return "seller"
	}
	return "anonymous"
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Capability is what the current browser may do. Only the id belonging to
// Kind is ever set.
type Capability struct {
	Kind       Kind  `json:"kind"`
	LoggedIn   bool  `json:"loggedIn"`
	UserID     int64 `json:"userId,omitempty"`
	CustomerID int64 `json:"customerId,omitempty"`
	SellerID   int64 `json:"sellerId,omitempty"`
}

// Resolve is the single place where role strings are interpreted. A logged-in
// session whose role has not been resolved yet is still Anonymous.
func Resolve(s Session) Capability {
	if !s.IsLoggedIn {
		return Capability{Kind: Anonymous}
	}
	c := Capability{Kind: Anonymous, LoggedIn: true, UserID: s.UserID}
	switch s.Role {
	case shop.RoleCustomer:
		c.Kind = Customer
		c.CustomerID = s.CustomerID
	case shop.RoleSeller:
		c.Kind = Seller
		c.SellerID = s.SellerID
	}
	return c
}
