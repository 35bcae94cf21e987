package payments

import (
	"context"
	"strings"
)

// Gateway attempts a payment for the given method and reports success.
type Gateway interface {
	Pay(ctx context.Context, method string) (bool, error)
}

var acceptedMethods = []string{"credit_card", "creditcard", "paypal"}

// FakeGateway approves a fixed set of payment method names. It stands in for
// a real processor; everything downstream only depends on the Gateway surface.
type FakeGateway struct{}

// NewFakeGateway returns the stub payment capability.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{}
}

// Pay accepts the method when it matches a known name, case-insensitively.
func (g *FakeGateway) Pay(_ context.Context, method string) (bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(method))
	if normalized == "" {
		return false, nil
	}
	for _, accepted := range acceptedMethods {
		if normalized == accepted {
			return true, nil
		}
	}
	return false, nil
}
