package shop

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// AverageRating is the mean rating rounded to one decimal place, zero when
// there is no feedback.
func AverageRating(feedbacks []Feedback) decimal.Decimal {
	if len(feedbacks) == 0 {
		return decimal.Zero
	}
	sum := 0
	for _, f := range feedbacks {
		sum += f.Rating
	}
	return decimal.NewFromInt(int64(sum)).
		Div(decimal.NewFromInt(int64(len(feedbacks)))).
		Round(1)
}

func FormatRating(d decimal.Decimal) string { return d.StringFixed(1) }

// CartTotal sums price*quantity for every item whose product is known.
func CartTotal(items []CartItem, products []Product) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		p, ok := FindProduct(products, it.Product)
		if !ok {
			continue
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func FindProduct(products []Product, id int64) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func IsInCart(items []CartItem, productID int64) bool {
	for _, it := range items {
		if it.Product == productID {
			return true
		}
	}
	return false
}

func FavoriteFor(favorites []Favorite, productID int64) (Favorite, bool) {
	for _, f := range favorites {
		if f.Product == productID {
			return f, true
		}
	}
	return Favorite{}, false
}

func IsFavorite(favorites []Favorite, productID int64) bool {
	_, ok := FavoriteFor(favorites, productID)
	return ok
}

// UniqueProductIDs lists the products referenced by the orders' items, in
// first-seen order.
func UniqueProductIDs(orders []Order) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, o := range orders {
		for _, it := range o.Items {
			if !seen[it.Product] {
				seen[it.Product] = true
				ids = append(ids, it.Product)
			}
		}
	}
	return ids
}

func SortOrdersNewestFirst(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

// CustomerFeedback returns the feedback the given customer left on product.
// A zero customer id never matches.
func CustomerFeedback(p Product, customerID int64) (Feedback, bool) {
	if customerID == 0 {
		return Feedback{}, false
	}
	for _, f := range p.Feedbacks {
		if f.Customer == customerID {
			return f, true
		}
	}
	return Feedback{}, false
}

type ProductFeedback struct {
	ProductID     int64           `json:"productId"`
	Image         string          `json:"image,omitempty"`
	AverageRating decimal.Decimal `json:"averageRating"`
	Feedbacks     []Feedback      `json:"feedbacks"`
}

// GroupFeedbackByProduct builds one row per product in the order products
// first appear in feedbacks. Images come from products when known.
func GroupFeedbackByProduct(feedbacks []Feedback, products []Product) []ProductFeedback {
	idx := make(map[int64]int)
	var rows []ProductFeedback
	for _, f := range feedbacks {
		i, ok := idx[f.Product]
		if !ok {
			i = len(rows)
			idx[f.Product] = i
			row := ProductFeedback{ProductID: f.Product}
			if p, found := FindProduct(products, f.Product); found {
				row.Image = p.Image
			}
			rows = append(rows, row)
		}
		rows[i].Feedbacks = append(rows[i].Feedbacks, f)
	}
	for i := range rows {
		rows[i].AverageRating = AverageRating(rows[i].Feedbacks)
	}
	return rows
}

// SplitTimestamp splits an ISO timestamp into its date and its time of day
// without fractional seconds.
func SplitTimestamp(ts string) (date, clock string) {
	date, clock, _ = strings.Cut(ts, "T")
	clock, _, _ = strings.Cut(clock, ".")
	return date, clock
}
