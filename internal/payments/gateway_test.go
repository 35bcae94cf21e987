package payments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeGatewayAcceptsKnownMethods(t *testing.T) {
	gateway := NewFakeGateway()

	for _, method := range []string{"credit_card", "creditcard", "paypal", "PayPal", "  CREDIT_CARD  "} {
		paid, err := gateway.Pay(context.Background(), method)
		require.NoError(t, err)
		assert.True(t, paid, "method %q should be accepted", method)
	}
}

func TestFakeGatewayRejectsUnknownMethods(t *testing.T) {
	gateway := NewFakeGateway()

	for _, method := range []string{"", "   ", "iou", "bank_transfer"} {
		paid, err := gateway.Pay(context.Background(), method)
		require.NoError(t, err)
		assert.False(t, paid, "method %q should be rejected", method)
	}
}
