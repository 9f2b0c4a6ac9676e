package redisx

import "time"

const (
	// Browser storage: storefront:{browser_id}:{key} -> value
	KeyBrowserStorage = "storefront:%s:%s"

	// Dedup activity processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLBrowserStorage = 7 * 24 * time.Hour
	TTLDedup          = 48 * time.Hour
)
