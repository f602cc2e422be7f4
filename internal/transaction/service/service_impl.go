package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/checkout/internal/config"
	"github.com/smallbiznis/checkout/internal/notification"
	"github.com/smallbiznis/checkout/internal/stripe"
	"github.com/smallbiznis/checkout/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Node     *snowflake.Node
	Repo     domain.Repository
	Notifier notification.Notifier
	Config   config.Config
}

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	node     *snowflake.Node
	repo     domain.Repository
	notifier notification.Notifier
	secret   string

	locks keyedMutex
}

func New(p Params) domain.Service {
	return &service{
		db:       p.DB,
		log:      p.Log.Named("transaction.service"),
		node:     p.Node,
		repo:     p.Repo,
		notifier: p.Notifier,
		secret:   p.Config.StripeWebhookSecret,
	}
}

// ProcessWebhook verifies one raw delivery, records it in the event log and
// reconciles the transaction store. Deliveries are acknowledged (nil error)
// whenever returning an error would only provoke a pointless retry: already
// processed events, malformed intent objects, unknown event types. A
// redelivery of an event whose first attempt failed before being marked
// processed is reprocessed, so a transient store failure is repaired by the
// sender's retry.
func (s *service) ProcessWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	if strings.TrimSpace(signatureHeader) == "" {
		return domain.ErrMissingSignature
	}

	event, err := stripe.ConstructEvent(payload, signatureHeader, s.secret)
	if err != nil {
		if errors.Is(err, stripe.ErrInvalidPayload) {
			return domain.ErrInvalidPayload
		}
		return domain.ErrInvalidSignature
	}

	log := s.log.With(
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
	)

	var object stripe.PaymentIntentObject
	var decodeErr error
	intentEvent := isPaymentIntentEvent(event.Type)
	if intentEvent {
		decodeErr = json.Unmarshal(event.Data.Object, &object)
	}

	record := &domain.WebhookEvent{
		ID:              s.node.Generate(),
		ProviderEventID: event.ID,
		EventType:       event.Type,
		PaymentIntentID: object.ID,
		Payload:         datatypes.JSON(payload),
		ReceivedAt:      time.Now().UTC(),
	}

	inserted, err := s.repo.InsertEvent(ctx, s.db, record)
	if err != nil {
		return err
	}
	if !inserted {
		existing, err := s.repo.FindEvent(ctx, s.db, event.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return gorm.ErrRecordNotFound
		}
		if existing.ProcessedAt != nil {
			log.Info("duplicate event acknowledged")
			return nil
		}
		// Seen before but never marked processed: the first attempt died
		// mid-flight, so run it again off the original record.
		record = existing
	}

	switch {
	case intentEvent:
		if decodeErr != nil {
			log.Warn("malformed intent object acknowledged", zap.Error(decodeErr))
		} else if err := s.reconcile(ctx, log, event.Type, object); err != nil {
			return err
		}
	case event.Type == stripe.EventChargeDisputeCreated:
		s.logDispute(log, event)
	default:
		log.Info("unhandled event type acknowledged")
	}

	return s.repo.MarkEventProcessed(ctx, s.db, record.ID, time.Now().UTC())
}

func (s *service) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	txn, err := s.repo.FindTransaction(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, domain.ErrNotFound
	}
	return txn, nil
}

// reconcile applies one payment_intent.* observation to the transaction
// store. The read-modify-write is serialized per intent id so concurrent
// deliveries for the same intent cannot interleave.
func (s *service) reconcile(ctx context.Context, log *zap.Logger, eventType string, object stripe.PaymentIntentObject) error {
	if object.ID == "" || object.Amount <= 0 || object.Currency == "" || object.Created == 0 {
		log.Warn("malformed intent object acknowledged",
			zap.String("payment_intent_id", object.ID))
		return nil
	}

	incoming := domain.Transaction{
		ID:            object.ID,
		Amount:        object.Amount,
		Currency:      object.Currency,
		Status:        statusOf(eventType),
		Created:       time.Unix(object.Created, 0).UTC(),
		PaymentMethod: object.PaymentMethod,
		ReceivedAt:    time.Now().UTC(),
	}
	if len(object.Metadata) > 0 {
		incoming.Metadata = datatypes.JSONMap{}
		for k, v := range object.Metadata {
			incoming.Metadata[k] = v
		}
	}
	if object.LastPaymentError != nil {
		incoming.FailureReason = object.LastPaymentError.Message
	}

	unlock := s.locks.lock(incoming.ID)
	defer unlock()

	var next domain.Transaction
	var notify bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindTransaction(ctx, tx, incoming.ID)
		if err != nil {
			return err
		}

		var changed bool
		next, notify, changed = applyTransition(current, incoming)
		if !changed {
			if current != nil && current.Status.Terminal() && current.Status != incoming.Status {
				log.Warn("out of order transition ignored",
					zap.String("payment_intent_id", incoming.ID),
					zap.String("current_status", string(current.Status)),
					zap.String("incoming_status", string(incoming.Status)))
			}
			return nil
		}

		return s.repo.SaveTransaction(ctx, tx, &next)
	})
	if err != nil {
		return err
	}

	if notify {
		s.dispatch(ctx, next)
	}

	log.Info("event processed",
		zap.String("payment_intent_id", incoming.ID),
		zap.String("status", string(next.Status)),
		zap.Int64("amount", next.Amount))
	return nil
}

// applyTransition decides what one incoming observation does to the stored
// record. It never touches storage.
//
// Rules:
//   - no stored record: accept the incoming observation.
//   - same (id, status, created): redelivery, no change.
//   - stored status terminal, incoming requires_action: stale delivery
//     arriving out of order, no change.
//   - otherwise: last write wins.
//
// notify is true only when the record changes into succeeded or failed.
func applyTransition(current *domain.Transaction, incoming domain.Transaction) (next domain.Transaction, notify, changed bool) {
	if current != nil {
		if current.Status == incoming.Status && current.Created.Equal(incoming.Created) {
			return *current, false, false
		}
		if current.Status.Terminal() && !incoming.Status.Terminal() {
			return *current, false, false
		}
	}

	notify = incoming.Status == domain.StatusSucceeded || incoming.Status == domain.StatusFailed
	if current != nil && current.Status == incoming.Status {
		notify = false
	}
	return incoming, notify, true
}

func (s *service) dispatch(ctx context.Context, txn domain.Transaction) {
	switch txn.Status {
	case domain.StatusSucceeded:
		s.notifier.PaymentSucceeded(ctx, txn)
	case domain.StatusFailed:
		s.notifier.PaymentFailed(ctx, txn)
	}
}

func (s *service) logDispute(log *zap.Logger, event stripe.Event) {
	var dispute stripe.DisputeObject
	if err := json.Unmarshal(event.Data.Object, &dispute); err != nil {
		log.Warn("malformed dispute object acknowledged", zap.Error(err))
		return
	}
	log.Warn("dispute created",
		zap.String("dispute_id", dispute.ID),
		zap.String("charge_id", dispute.Charge),
		zap.Int64("amount", dispute.Amount),
		zap.String("reason", dispute.Reason))
}

func isPaymentIntentEvent(eventType string) bool {
	switch eventType {
	case stripe.EventPaymentIntentSucceeded,
		stripe.EventPaymentIntentPaymentFailed,
		stripe.EventPaymentIntentCanceled,
		stripe.EventPaymentIntentRequiresAction:
		return true
	default:
		return false
	}
}

func statusOf(eventType string) domain.Status {
	switch eventType {
	case stripe.EventPaymentIntentSucceeded:
		return domain.StatusSucceeded
	case stripe.EventPaymentIntentPaymentFailed:
		return domain.StatusFailed
	case stripe.EventPaymentIntentCanceled:
		return domain.StatusCanceled
	default:
		return domain.StatusRequiresAction
	}
}

// keyedMutex serializes work per key. Entries are reference counted and
// removed once the last holder releases.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.entries == nil {
		k.entries = map[string]*lockEntry{}
	}
	entry, ok := k.entries[key]
	if !ok {
		entry = &lockEntry{}
		k.entries[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}
