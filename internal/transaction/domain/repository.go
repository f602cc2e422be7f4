package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertEvent(ctx context.Context, db *gorm.DB, event *WebhookEvent) (bool, error)
	FindEvent(ctx context.Context, db *gorm.DB, providerEventID string) (*WebhookEvent, error)
	MarkEventProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, processedAt time.Time) error

	FindTransaction(ctx context.Context, db *gorm.DB, id string) (*Transaction, error)
	SaveTransaction(ctx context.Context, db *gorm.DB, txn *Transaction) error
}
