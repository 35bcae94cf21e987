package enums

import "fmt"

// SubscriptionStatus describes the allowed values for the subscriptions status column.
type SubscriptionStatus string

const (
	SubscriptionStatusPending       SubscriptionStatus = "Pending"
	SubscriptionStatusActive        SubscriptionStatus = "Active"
	SubscriptionStatusCancelled     SubscriptionStatus = "Cancelled"
	SubscriptionStatusExpired       SubscriptionStatus = "Expired"
	SubscriptionStatusPaymentFailed SubscriptionStatus = "PaymentFailed"
)

var validSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusPending,
	SubscriptionStatusActive,
	SubscriptionStatusCancelled,
	SubscriptionStatusExpired,
	SubscriptionStatusPaymentFailed,
}

// IsValid reports whether the value matches the canonical subscription status enum.
func (s SubscriptionStatus) IsValid() bool {
	for _, candidate := range validSubscriptionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
// Expired is declared for parity with the status column but nothing produces it yet.
func (s SubscriptionStatus) IsTerminal() bool {
	switch s {
	case SubscriptionStatusCancelled, SubscriptionStatusExpired, SubscriptionStatusPaymentFailed:
		return true
	}
	return false
}

// ParseSubscriptionStatus converts the raw string to SubscriptionStatus.
func ParseSubscriptionStatus(value string) (SubscriptionStatus, error) {
	for _, candidate := range validSubscriptionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid subscription status %q", value)
}
