package transaction

import (
	"github.com/smallbiznis/checkout/internal/transaction/repository"
	"github.com/smallbiznis/checkout/internal/transaction/service"
	"go.uber.org/fx"
)

var Module = fx.Module("transaction",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
