package subscriptions

import (
	"time"

	"github.com/alonsohii/Suscribe/pkg/db/models"
	"github.com/alonsohii/Suscribe/pkg/enums"
)

// SubscribeRequest is the inbound subscribe payload. Payment is attempted
// later by the activation consumer, so the method is carried as-is.
type SubscribeRequest struct {
	UserID        int64  `json:"userId" validate:"required,gt=0"`
	PaymentMethod string `json:"paymentMethod" validate:"required"`
}

// SubscribeResponse reports the accepted outcome of an enqueue attempt. The
// endpoint always answers 202; the status string carries the distinction.
type SubscribeResponse struct {
	Status string `json:"status"`
}

// SubscriptionDTO is the transport shape for one subscription with its owner.
type SubscriptionDTO struct {
	SubscriptionID int64                    `json:"subscriptionId"`
	UserID         int64                    `json:"userId"`
	UserEmail      string                   `json:"userEmail"`
	Status         enums.SubscriptionStatus `json:"status"`
	CreatedAt      time.Time                `json:"createdAt"`
}

func fromModel(sub *models.Subscription) *SubscriptionDTO {
	if sub == nil {
		return nil
	}
	return &SubscriptionDTO{
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
		Status:         sub.Status,
		CreatedAt:      sub.CreatedAt,
	}
}
