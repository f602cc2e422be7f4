package stripe

import (
	"github.com/smallbiznis/checkout/internal/config"
	"go.uber.org/fx"
)

func provideClient(cfg config.Config) *Client {
	return NewClient(cfg.StripeSecretKey)
}

var Module = fx.Module("stripe",
	fx.Provide(provideClient),
)
