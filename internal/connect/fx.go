package connect

import (
	"github.com/smallbiznis/checkout/internal/connect/service"
	"go.uber.org/fx"
)

var Module = fx.Module("connect",
	fx.Provide(service.New),
)
