package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/checkout/internal/checkout"
	"github.com/smallbiznis/checkout/internal/config"
	"github.com/smallbiznis/checkout/internal/connect"
	"github.com/smallbiznis/checkout/internal/logger"
	"github.com/smallbiznis/checkout/internal/migration"
	"github.com/smallbiznis/checkout/internal/notification"
	"github.com/smallbiznis/checkout/internal/server"
	"github.com/smallbiznis/checkout/internal/stripe"
	"github.com/smallbiznis/checkout/internal/transaction"
	"github.com/smallbiznis/checkout/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		stripe.Module,

		// Functional domains
		notification.Module,
		checkout.Module,
		transaction.Module,
		connect.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
