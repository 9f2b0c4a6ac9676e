package activity

import (
	"encoding/json"
	"time"
)

const Topic = "storefront.activity"

const (
	EventLoggedIn       = "LoggedIn"
	EventLoggedOut      = "LoggedOut"
	EventRegistered     = "Registered"
	EventCartChanged    = "CartChanged"
	EventOrderPlaced    = "OrderPlaced"
	EventFeedbackPosted = "FeedbackPosted"
	EventProductChanged = "ProductChanged"
	EventUpstreamDenied = "UpstreamDenied"
)

type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	BrowserID    string          `json:"browser_id"`
	UserID       int64           `json:"user_id,omitempty"`
	Payload      json.RawMessage `json:"payload,omitempty"`
}

type CartChangedPayload struct {
	Action    string `json:"action"` // add | update | remove
	ProductID int64  `json:"product_id,omitempty"`
	ItemID    int64  `json:"item_id,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
}

type OrderPlacedPayload struct {
	ShippingAddress int64 `json:"shipping_address"`
	Lines           int   `json:"lines"`
	OrderID         int64 `json:"order_id,omitempty"`
}

type FeedbackPostedPayload struct {
	ProductID int64 `json:"product_id"`
	Rating    int   `json:"rating"`
}

type ProductChangedPayload struct {
	Action    string `json:"action"` // create | update | delete
	ProductID int64  `json:"product_id"`
}

type UpstreamDeniedPayload struct {
	Status int `json:"status"`
}

// PartitionKey keeps one browser's events in order.
func PartitionKey(browserID string) []byte { return []byte(browserID) }
