package models

import (
	"fmt"
	"time"

	"github.com/alonsohii/Suscribe/pkg/enums"
)

// Subscription persists the payment lifecycle state for a user.
// A user has at most one subscription that is not Cancelled; the partial unique
// index on user_id enforces this at the store layer.
type Subscription struct {
	ID        int64                    `gorm:"primaryKey;autoIncrement"`
	UserID    int64                    `gorm:"column:user_id;not null;index"`
	Status    enums.SubscriptionStatus `gorm:"column:status;not null;default:'Pending'"`
	CreatedAt time.Time                `gorm:"column:created_at"`
}

// Activate moves the subscription from Pending to Active.
func (s *Subscription) Activate() error {
	return s.transition(enums.SubscriptionStatusActive)
}

// MarkPaymentFailed moves the subscription from Pending to PaymentFailed.
func (s *Subscription) MarkPaymentFailed() error {
	return s.transition(enums.SubscriptionStatusPaymentFailed)
}

// Cancel moves the subscription to Cancelled. Unlike the consumer-driven
// transitions it is allowed from any state, so a user with a failed payment
// can clear the row and subscribe again.
func (s *Subscription) Cancel() error {
	if s.Status == enums.SubscriptionStatusCancelled {
		return fmt.Errorf("subscription %d is already cancelled", s.ID)
	}
	s.Status = enums.SubscriptionStatusCancelled
	return nil
}

func (s *Subscription) transition(target enums.SubscriptionStatus) error {
	if s.Status.IsTerminal() {
		return fmt.Errorf("subscription %d is %s and cannot become %s", s.ID, s.Status, target)
	}
	s.Status = target
	return nil
}
