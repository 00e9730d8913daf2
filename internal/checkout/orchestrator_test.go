package checkout

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feiralivre/storefront/internal/commerce"
)

type mockGateway struct {
	addresses []commerce.Address
	listErr   error

	createdAddress *commerce.Address
	addAddrErr     error

	options  []commerce.ShippingOption
	quoteErr error

	order     *commerce.Order
	createErr error

	quoteCalls  int
	createCalls int
	listCalls   int
}

func (m *mockGateway) ListAddresses(context.Context) ([]commerce.Address, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.addresses, nil
}

func (m *mockGateway) AddAddress(_ context.Context, addr commerce.NewAddress) (*commerce.Address, error) {
	if m.addAddrErr != nil {
		return nil, m.addAddrErr
	}
	created := m.createdAddress
	m.addresses = append(m.addresses, *created)
	return created, nil
}

func (m *mockGateway) QuoteShipping(_ context.Context, addressID string) ([]commerce.ShippingOption, error) {
	m.quoteCalls++
	if m.quoteErr != nil {
		return nil, m.quoteErr
	}
	return m.options, nil
}

func (m *mockGateway) CreateOrder(_ context.Context, addressID string, shippingValue decimal.Decimal) (*commerce.Order, error) {
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.order, nil
}

type mockCart struct {
	subtotal     decimal.Decimal
	refreshCalls int
	refreshErr   error
}

func (m *mockCart) Refresh(context.Context) error {
	m.refreshCalls++
	return m.refreshErr
}

func (m *mockCart) Subtotal() decimal.Decimal { return m.subtotal }
func (m *mockCart) ItemCount() int            { return 1 }

func pac() commerce.ShippingOption {
	return commerce.ShippingOption{Carrier: "PAC", Price: decimal.RequireFromString("15.50"), ETABusinessDays: 5}
}

func sedex() commerce.ShippingOption {
	return commerce.ShippingOption{Carrier: "SEDEX", Price: decimal.RequireFromString("32.00"), ETABusinessDays: 2}
}

func newTestOrchestrator(gw *mockGateway, cart *mockCart) *Orchestrator {
	return NewOrchestrator(gw, cart, slog.Default())
}

func TestLoadAddresses_AutoSelectsFirstAndQuotes(t *testing.T) {
	gw := &mockGateway{
		addresses: []commerce.Address{{ID: "addr-1"}, {ID: "addr-2"}},
		options:   []commerce.ShippingOption{pac(), sedex()},
	}
	o := newTestOrchestrator(gw, &mockCart{})

	require.NoError(t, o.LoadAddresses(context.Background()))

	assert.Equal(t, "addr-1", o.SelectedAddressID())
	assert.Equal(t, 1, gw.quoteCalls)
	assert.Equal(t, StageAwaitingShippingChoice, o.Stage())
	assert.Len(t, o.ShippingOptions(), 2)
}

func TestSelectAddress_EmptyIDClearsShippingState(t *testing.T) {
	gw := &mockGateway{options: []commerce.ShippingOption{pac()}}
	o := newTestOrchestrator(gw, &mockCart{})
	ctx := context.Background()

	require.NoError(t, o.SelectAddress(ctx, "addr-1"))
	require.Equal(t, StageReadyToSubmit, o.Stage())

	require.NoError(t, o.SelectAddress(ctx, ""))
	assert.Equal(t, StageSelectingAddress, o.Stage())
	assert.Empty(t, o.ShippingOptions())
	_, picked := o.SelectedShipping()
	assert.False(t, picked)
	assert.Equal(t, 1, gw.quoteCalls, "empty selection must not quote")
}

func TestSelectAddress_SingleOptionAutoSelectsToReadyToSubmit(t *testing.T) {
	gw := &mockGateway{options: []commerce.ShippingOption{pac()}}
	o := newTestOrchestrator(gw, &mockCart{})

	require.NoError(t, o.SelectAddress(context.Background(), "addr-1"))

	assert.Equal(t, StageReadyToSubmit, o.Stage())
	selected, picked := o.SelectedShipping()
	require.True(t, picked)
	assert.Equal(t, "PAC", selected.Carrier)
	assert.True(t, selected.Price.Equal(decimal.RequireFromString("15.50")))
	assert.Equal(t, 5, selected.ETABusinessDays)
}

func TestSelectAddress_QuoteFailureIsRecoverable(t *testing.T) {
	gw := &mockGateway{quoteErr: errors.New("carrier api down")}
	o := newTestOrchestrator(gw, &mockCart{})

	err := o.SelectAddress(context.Background(), "addr-1")
	assert.Error(t, err)

	assert.Equal(t, StageSelectingAddress, o.Stage())
	assert.Equal(t, "addr-1", o.SelectedAddressID(), "selection is not lost")
	assert.True(t, o.ShippingCost().IsZero(), "no shipping cost is shown")
}

func TestSelectShipping_ManualChoiceAdvances(t *testing.T) {
	gw := &mockGateway{options: []commerce.ShippingOption{pac(), sedex()}}
	o := newTestOrchestrator(gw, &mockCart{})

	require.NoError(t, o.SelectAddress(context.Background(), "addr-1"))
	require.Equal(t, StageAwaitingShippingChoice, o.Stage())

	assert.ErrorIs(t, o.SelectShipping("PIGEON"), ErrUnknownCarrier)

	require.NoError(t, o.SelectShipping("SEDEX"))
	assert.Equal(t, StageReadyToSubmit, o.Stage())
	selected, _ := o.SelectedShipping()
	assert.Equal(t, "SEDEX", selected.Carrier)
}

func TestAddAddress_CreatesSelectsAndRequotes(t *testing.T) {
	gw := &mockGateway{
		addresses:      []commerce.Address{{ID: "addr-1"}},
		createdAddress: &commerce.Address{ID: "addr-new", Street: "Rua Nova", Number: "10"},
		options:        []commerce.ShippingOption{pac()},
	}
	o := newTestOrchestrator(gw, &mockCart{})
	ctx := context.Background()

	require.NoError(t, o.OpenAddressForm())
	require.Equal(t, StageAddingAddress, o.Stage())

	err := o.AddAddress(ctx, commerce.NewAddress{
		Street:       "Rua Nova",
		Number:       "10",
		Neighborhood: "Centro",
		City:         "Recife",
		State:        "PE",
		PostalCode:   "50000-000",
	})
	require.NoError(t, err)

	assert.Equal(t, "addr-new", o.SelectedAddressID())
	assert.Equal(t, StageReadyToSubmit, o.Stage())
	assert.Len(t, o.Addresses(), 2)
}

func TestAddAddress_ValidationFailureKeepsFormOpen(t *testing.T) {
	gw := &mockGateway{}
	o := newTestOrchestrator(gw, &mockCart{})

	require.NoError(t, o.OpenAddressForm())

	err := o.AddAddress(context.Background(), commerce.NewAddress{Street: "Rua Sem Resto"})
	assert.True(t, IsValidation(err), "expected a validation error, got %v", err)
	assert.Equal(t, StageAddingAddress, o.Stage())
	assert.Equal(t, 0, gw.listCalls, "nothing may be persisted")
}

func TestCancelAddressForm_RestoresPriorStage(t *testing.T) {
	gw := &mockGateway{options: []commerce.ShippingOption{pac()}}
	o := newTestOrchestrator(gw, &mockCart{})

	require.NoError(t, o.SelectAddress(context.Background(), "addr-1"))
	require.NoError(t, o.OpenAddressForm())

	o.CancelAddressForm()
	assert.Equal(t, StageReadyToSubmit, o.Stage())
}

func TestSubmit_RejectedWithoutSelection_NoNetworkCall(t *testing.T) {
	gw := &mockGateway{}
	cart := &mockCart{}
	o := newTestOrchestrator(gw, cart)

	_, err := o.Submit(context.Background())
	assert.True(t, IsValidation(err), "expected a validation error, got %v", err)
	assert.Equal(t, 0, gw.createCalls, "zero order-create calls")
	assert.Equal(t, 0, cart.refreshCalls)
	assert.Equal(t, StageSelectingAddress, o.Stage(), "no transition occurs")
}

func TestSubmit_SuccessClearsCartOnceAndCompletes(t *testing.T) {
	gw := &mockGateway{
		options: []commerce.ShippingOption{pac()},
		order:   &commerce.Order{ID: "abc123", Status: commerce.OrderStatusAwaitingPayment},
	}
	cart := &mockCart{subtotal: decimal.RequireFromString("100.00")}
	o := newTestOrchestrator(gw, cart)
	ctx := context.Background()

	require.NoError(t, o.SelectAddress(ctx, "addr-1"))

	orderID, err := o.Submit(ctx)
	require.NoError(t, err)

	assert.Equal(t, "abc123", orderID)
	assert.Equal(t, StageCompleted, o.Stage())
	assert.Equal(t, "abc123", o.OrderID())
	assert.Equal(t, 1, cart.refreshCalls, "exactly one cart clear per successful order")
	assert.Equal(t, 1, gw.createCalls)
}

func TestSubmit_OrderWithoutIDFailsAndCartUntouched(t *testing.T) {
	gw := &mockGateway{
		options: []commerce.ShippingOption{pac()},
		order:   &commerce.Order{}, // {} response: no usable identifier
	}
	cart := &mockCart{}
	o := newTestOrchestrator(gw, cart)
	ctx := context.Background()

	require.NoError(t, o.SelectAddress(ctx, "addr-1"))

	_, err := o.Submit(ctx)
	assert.ErrorIs(t, err, ErrOrderWithoutID)
	assert.Equal(t, StageFailed, o.Stage())
	assert.Equal(t, 0, cart.refreshCalls, "cart is NOT cleared")
}

func TestSubmit_BackendFailureIsRetriable(t *testing.T) {
	gw := &mockGateway{
		options:   []commerce.ShippingOption{pac()},
		createErr: errors.New("order service unavailable"),
	}
	cart := &mockCart{}
	o := newTestOrchestrator(gw, cart)
	ctx := context.Background()

	require.NoError(t, o.SelectAddress(ctx, "addr-1"))

	_, err := o.Submit(ctx)
	require.Error(t, err)
	require.Equal(t, StageFailed, o.Stage())
	assert.Equal(t, 0, cart.refreshCalls)

	// Retry affordance: the same selections submit again after a failure.
	gw.createErr = nil
	gw.order = &commerce.Order{ID: "abc124"}

	orderID, err := o.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc124", orderID)
	assert.Equal(t, 1, cart.refreshCalls)
}

func TestSubmit_NegativeShippingPriceRejected(t *testing.T) {
	gw := &mockGateway{
		options: []commerce.ShippingOption{{Carrier: "GLITCH", Price: decimal.RequireFromString("-1.00")}},
	}
	o := newTestOrchestrator(gw, &mockCart{})
	ctx := context.Background()

	require.NoError(t, o.SelectAddress(ctx, "addr-1"))

	_, err := o.Submit(ctx)
	assert.True(t, IsValidation(err))
	assert.Equal(t, 0, gw.createCalls)
}

func TestSubmit_AfterCompletionIsIllegal(t *testing.T) {
	gw := &mockGateway{
		options: []commerce.ShippingOption{pac()},
		order:   &commerce.Order{ID: "abc123"},
	}
	o := newTestOrchestrator(gw, &mockCart{})
	ctx := context.Background()

	require.NoError(t, o.SelectAddress(ctx, "addr-1"))
	_, err := o.Submit(ctx)
	require.NoError(t, err)

	_, err = o.Submit(ctx)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}
