package checkout

import (
	"github.com/smallbiznis/checkout/internal/checkout/service"
	"go.uber.org/fx"
)

var Module = fx.Module("checkout",
	fx.Provide(service.New),
)
