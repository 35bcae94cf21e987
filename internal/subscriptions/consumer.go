package subscriptions

import (
	"context"
	"fmt"

	"github.com/alonsohii/Suscribe/internal/messaging"
	"github.com/alonsohii/Suscribe/internal/payments"
	"github.com/alonsohii/Suscribe/internal/users"
	"github.com/alonsohii/Suscribe/pkg/db"
	"github.com/alonsohii/Suscribe/pkg/db/models"
	"github.com/alonsohii/Suscribe/pkg/enums"
	pkgerrors "github.com/alonsohii/Suscribe/pkg/errors"
	"github.com/alonsohii/Suscribe/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TxRunner executes fn inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Consumer activates subscriptions requested through the subscription queue.
//
// Processing is split into three phases so that a payment attempt never runs
// inside an open transaction: create the Pending row and commit, charge the
// gateway, then commit the outcome. A crash between phases leaves a Pending
// row behind; redelivery of the same message finds it and drops, so the
// payment is never retried blindly.
type Consumer struct {
	txRunner     TxRunner
	repo         *Repository
	usersRepo    *users.Repository
	gateway      payments.Gateway
	publisher    Publisher
	webhookQueue string
	logg         *logger.Logger
}

// NewConsumer wires activation dependencies. The webhookQueue names the
// destination for success notifications.
func NewConsumer(txRunner TxRunner, repo *Repository, usersRepo *users.Repository, gateway payments.Gateway, publisher Publisher, webhookQueue string, logg *logger.Logger) (*Consumer, error) {
	if txRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "subscriptions repository required")
	}
	if usersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway required")
	}
	if publisher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "publisher required")
	}
	if webhookQueue == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "webhook queue name required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &Consumer{
		txRunner:     txRunner,
		repo:         repo,
		usersRepo:    usersRepo,
		gateway:      gateway,
		publisher:    publisher,
		webhookQueue: webhookQueue,
		logg:         logg,
	}, nil
}

// Handle processes one activation request. A nil return acknowledges the
// message; errors dead-letter it. Messages for unknown users, users who
// already hold a live subscription, or races lost to a concurrent delivery
// are dropped, since redelivering them cannot change the outcome.
func (c *Consumer) Handle(ctx context.Context, msg messaging.SubscriptionCreatedMessage) error {
	ctx = c.logg.WithUserID(ctx, msg.UserID)

	if _, err := c.usersRepo.FindByID(ctx, msg.UserID); err != nil {
		if db.IsNotFound(err) {
			c.logg.Warn(ctx, "subscription message for unknown user dropped")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up user")
	}

	if _, err := c.repo.FindCurrentByUserID(ctx, msg.UserID); err == nil {
		c.logg.Info(ctx, "user already holds a live subscription, message dropped")
		return nil
	} else if !db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking current subscription")
	}

	sub, err := c.createPending(ctx, msg.UserID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			c.logg.Info(ctx, "concurrent delivery won the insert, message dropped")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating pending subscription")
	}

	paid, payErr := c.gateway.Pay(ctx, msg.PaymentMethod)
	if payErr != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, payErr, "charging payment gateway")
	}

	activated, err := c.commitOutcome(ctx, sub.ID, paid)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "committing activation outcome")
	}

	if !activated {
		if !paid {
			c.logg.Warn(ctx, "payment rejected, subscription marked failed")
		}
		return nil
	}

	notice := messaging.WebhookNotificationMessage{
		IdempotencyKey: uuid.New(),
		UserID:         msg.UserID,
		Message:        fmt.Sprintf("Payment successful for user %d", msg.UserID),
	}
	if err := c.publisher.Publish(ctx, c.webhookQueue, notice); err != nil {
		// The subscription is already Active and committed. Dead-letter the
		// request so the stuck notification is visible on the error queue.
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "enqueuing webhook notification")
	}

	c.logg.Info(ctx, "subscription activated")
	return nil
}

// createPending commits a Pending row in its own transaction so the payment
// attempt runs against durable state.
func (c *Consumer) createPending(ctx context.Context, userID int64) (*models.Subscription, error) {
	sub := &models.Subscription{UserID: userID, Status: enums.SubscriptionStatusPending}
	err := c.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		return c.repo.WithTx(tx).Create(ctx, sub)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// commitOutcome refetches the row inside a second transaction and records the
// gateway verdict. Returns whether the subscription ended up Active.
func (c *Consumer) commitOutcome(ctx context.Context, subID int64, paid bool) (bool, error) {
	activated := false
	err := c.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := c.repo.WithTx(tx)
		sub, err := txRepo.FindByID(ctx, subID)
		if err != nil {
			// The row vanishing between phases should not happen; if it does,
			// there is nothing left to record a verdict against.
			if db.IsNotFound(err) {
				c.logg.Warn(ctx, "pending subscription vanished before outcome commit, message dropped")
				return nil
			}
			return err
		}

		if paid {
			if err := sub.Activate(); err != nil {
				return err
			}
			activated = true
		} else {
			if err := sub.MarkPaymentFailed(); err != nil {
				return err
			}
		}
		return txRepo.Save(ctx, sub)
	})
	return activated, err
}
