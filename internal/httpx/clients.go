package httpx

import (
	"context"
	"net/http"

	"github.com/ariefcatur/lexi-storefront/internal/activity"
	"github.com/ariefcatur/lexi-storefront/internal/apiclient"
	"github.com/ariefcatur/lexi-storefront/internal/durable"
	"go.uber.org/zap"
)

// Clients builds API clients bound to one browser's storage. Rejected
// authorization is reported as an activity event for that browser.
type Clients struct {
	BaseURL  string
	HTTP     *http.Client
	Storage  durable.Factory
	Activity activity.Publisher
	Log      *zap.Logger
}

func (c *Clients) For(browserID string) *apiclient.Client {
	opts := []apiclient.Option{
		apiclient.WithUnauthorizedHandler(func(ctx context.Context, status int) {
			if c.Activity == nil {
				return
			}
			c.Activity.Publish(ctx, activity.Event{
				Type:      activity.EventUpstreamDenied,
				BrowserID: browserID,
				Payload:   activity.UpstreamDeniedPayload{Status: status},
			})
		}),
	}
	if c.HTTP != nil {
		opts = append(opts, apiclient.WithHTTPClient(c.HTTP))
	}
	if c.Log != nil {
		opts = append(opts, apiclient.WithLogger(c.Log))
	}
	return apiclient.New(c.BaseURL, c.Storage.For(browserID), opts...)
}
