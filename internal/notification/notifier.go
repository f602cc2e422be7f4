package notification

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	transactiondomain "github.com/smallbiznis/checkout/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Notifier receives exactly one call per detected transition into a notified
// status. Implementations must not assume redelivery protection beyond that.
type Notifier interface {
	PaymentSucceeded(ctx context.Context, txn transactiondomain.Transaction)
	PaymentFailed(ctx context.Context, txn transactiondomain.Transaction)
}

// LogNotifier records customer notifications as structured log entries. Real
// email/SMS delivery would slot in behind the same interface.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) Notifier {
	return &LogNotifier{log: log.Named("notification")}
}

func (n *LogNotifier) PaymentSucceeded(ctx context.Context, txn transactiondomain.Transaction) {
	n.log.Info("success notification sent",
		zap.String("transaction_id", txn.ID),
		zap.Int64("amount", txn.Amount),
		zap.String("formatted_amount", FormatBRL(txn.Amount)),
	)
}

func (n *LogNotifier) PaymentFailed(ctx context.Context, txn transactiondomain.Transaction) {
	n.log.Warn("failure notification sent",
		zap.String("transaction_id", txn.ID),
		zap.Int64("amount", txn.Amount),
		zap.String("formatted_amount", FormatBRL(txn.Amount)),
		zap.String("failure_reason", txn.FailureReason),
	)
}

// FormatBRL renders minor units as a Brazilian-formatted amount, e.g.
// 123456789 -> "R$ 1.234.567,89".
func FormatBRL(minorUnits int64) string {
	negative := minorUnits < 0
	if negative {
		minorUnits = -minorUnits
	}

	units := strconv.FormatInt(minorUnits/100, 10)
	cents := minorUnits % 100

	var groups []string
	for len(units) > 3 {
		groups = append([]string{units[len(units)-3:]}, groups...)
		units = units[:len(units)-3]
	}
	groups = append([]string{units}, groups...)

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%02d", sign, strings.Join(groups, "."), cents)
}

var Module = fx.Module("notification",
	fx.Provide(NewLogNotifier),
)
