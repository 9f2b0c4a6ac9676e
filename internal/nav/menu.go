package nav

import "github.com/ariefcatur/lexi-storefront/internal/session"

type Link struct {
	Label string `json:"label"`
	Path  string `json:"path"`
	Badge int    `json:"badge,omitempty"`
}

type Shell struct {
	Links []Link `json:"links"`
	// Account is the Login link or the Log Out action.
	Account     Link `json:"account"`
	ChatVisible bool `json:"chatVisible"`
}

// Menu builds the navigation bar. cartCount is shown on My Cart when
// positive and ignored for anyone but customers.
func Menu(c session.Capability, cartCount int) Shell {
	var s Shell
	switch c.Kind {
	case session.Customer:
		cart := Link{Label: "My Cart", Path: "/cart"}
		if cartCount > 0 {
			cart.Badge = cartCount
		}
		s.Links = []Link{
			{Label: "Shop", Path: "/"},
			{Label: "My Favorites", Path: "/favorites"},
			cart,
			{Label: "My Addresses", Path: "/addresses"},
			{Label: "My Orders", Path: "/orders"},
		}
	case session.Seller:
		s.Links = []Link{
			{Label: "My Products", Path: "/product-list"},
			{Label: "Add New Product", Path: "/add-product"},
			{Label: "Seller Orders", Path: "/seller-orders"},
			{Label: "Feedback", Path: "/feedback"},
		}
	}
	if c.LoggedIn {
		s.Account = Link{Label: "Log Out", Path: "/logout"}
	} else {
		s.Account = Link{Label: "Login", Path: "/login"}
	}
	s.ChatVisible = ChatVisible(c)
	return s
}

func ChatVisible(c session.Capability) bool { return c.LoggedIn }
