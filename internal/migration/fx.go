package migration

import (
	"github.com/smallbiznis/checkout/internal/config"
	transactiondomain "github.com/smallbiznis/checkout/internal/transaction/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		return conn.AutoMigrate(
			&transactiondomain.Transaction{},
			&transactiondomain.WebhookEvent{},
		)
	}),
)
