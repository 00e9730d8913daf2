package commerce

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo_ForwardOnly(t *testing.T) {
	assert.True(t, CanTransitionTo(OrderStatusAwaitingPayment, OrderStatusPaid))
	assert.True(t, CanTransitionTo(OrderStatusPaid, OrderStatusShipped))
	assert.True(t, CanTransitionTo(OrderStatusShipped, OrderStatusDelivered))
	assert.True(t, CanTransitionTo(OrderStatusAwaitingPayment, OrderStatusShipped))

	assert.False(t, CanTransitionTo(OrderStatusPaid, OrderStatusAwaitingPayment))
	assert.False(t, CanTransitionTo(OrderStatusShipped, OrderStatusPaid))
}

func TestCanTransitionTo_SameStatusIsNoop(t *testing.T) {
	assert.True(t, CanTransitionTo(OrderStatusPaid, OrderStatusPaid))
}

func TestCanTransitionTo_Cancel(t *testing.T) {
	assert.True(t, CanTransitionTo(OrderStatusAwaitingPayment, OrderStatusCanceled))
	assert.True(t, CanTransitionTo(OrderStatusShipped, OrderStatusCanceled))
}

func TestCanTransitionTo_TerminalStatesAreFinal(t *testing.T) {
	assert.False(t, CanTransitionTo(OrderStatusDelivered, OrderStatusCanceled))
	assert.False(t, CanTransitionTo(OrderStatusCanceled, OrderStatusPaid))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusCanceled.IsTerminal())
	assert.False(t, OrderStatusAwaitingPayment.IsTerminal())
	assert.False(t, OrderStatusPaid.IsTerminal())
}

func TestItemsSubtotal(t *testing.T) {
	items := []CartItem{
		{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("10.50")},
		{ProductID: 2, Quantity: 1, UnitPrice: decimal.RequireFromString("0.99")},
		{ProductID: 3, Quantity: 0, UnitPrice: decimal.RequireFromString("99.99")},
	}

	assert.True(t, ItemsSubtotal(items).Equal(decimal.RequireFromString("21.99")))
	assert.Equal(t, 3, ItemsCount(items))
}

func TestItemsSubtotal_Empty(t *testing.T) {
	assert.True(t, ItemsSubtotal(nil).IsZero())
	assert.Equal(t, 0, ItemsCount(nil))
}
