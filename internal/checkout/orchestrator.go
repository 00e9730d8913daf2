package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/feiralivre/storefront/internal/commerce"
)

// Stage is the checkout workflow position. One checkout session moves
// SelectingAddress -> CalculatingShipping -> (AwaitingShippingChoice) ->
// ReadyToSubmit -> Submitting -> Completed or Failed, with AddingAddress as
// a form overlay reachable before submission.
type Stage string

const (
	StageSelectingAddress       Stage = "SELECTING_ADDRESS"
	StageAddingAddress          Stage = "ADDING_ADDRESS"
	StageCalculatingShipping    Stage = "CALCULATING_SHIPPING"
	StageAwaitingShippingChoice Stage = "AWAITING_SHIPPING_CHOICE"
	StageReadyToSubmit          Stage = "READY_TO_SUBMIT"
	StageSubmitting             Stage = "SUBMITTING"
	StageCompleted              Stage = "COMPLETED"
	StageFailed                 Stage = "FAILED"
)

func (s Stage) String() string { return string(s) }

// Gateway is the slice of the API client the orchestrator needs.
type Gateway interface {
	ListAddresses(ctx context.Context) ([]commerce.Address, error)
	AddAddress(ctx context.Context, addr commerce.NewAddress) (*commerce.Address, error)
	QuoteShipping(ctx context.Context, addressID string) ([]commerce.ShippingOption, error)
	CreateOrder(ctx context.Context, addressID string, shippingValue decimal.Decimal) (*commerce.Order, error)
}

// Carts is the slice of the cart store the orchestrator needs.
type Carts interface {
	Refresh(ctx context.Context) error
	Subtotal() decimal.Decimal
	ItemCount() int
}

// Orchestrator drives one checkout session. Single-owner: all access funnels
// through its methods under one lock, matching the one-logical-thread model
// the workflow was designed for.
type Orchestrator struct {
	gw   Gateway
	cart Carts
	log  *slog.Logger

	mu                sync.Mutex
	stage             Stage
	formReturnStage   Stage
	addresses         []commerce.Address
	selectedAddressID string
	options           []commerce.ShippingOption
	selected          *commerce.ShippingOption
	orderID           string
}

func NewOrchestrator(gw Gateway, cart Carts, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		gw:    gw,
		cart:  cart,
		log:   log,
		stage: StageSelectingAddress,
	}
}

func (o *Orchestrator) Stage() Stage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stage
}

func (o *Orchestrator) Addresses() []commerce.Address {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]commerce.Address, len(o.addresses))
	copy(out, o.addresses)
	return out
}

func (o *Orchestrator) SelectedAddressID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selectedAddressID
}

func (o *Orchestrator) ShippingOptions() []commerce.ShippingOption {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]commerce.ShippingOption, len(o.options))
	copy(out, o.options)
	return out
}

func (o *Orchestrator) SelectedShipping() (commerce.ShippingOption, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.selected == nil {
		return commerce.ShippingOption{}, false
	}
	return *o.selected, true
}

// ShippingCost is zero until an option is selected; no cost is ever shown
// for an unquoted address.
func (o *Orchestrator) ShippingCost() decimal.Decimal {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.selected == nil {
		return decimal.Zero
	}
	return o.selected.Price
}

func (o *Orchestrator) Total() decimal.Decimal {
	return o.cart.Subtotal().Add(o.ShippingCost())
}

// OrderID is set once the checkout completes; it is the navigation target
// for the order detail view.
func (o *Orchestrator) OrderID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.orderID
}

// LoadAddresses fetches the address list. When addresses exist and none is
// selected yet, the first is selected automatically and quoting starts.
func (o *Orchestrator) LoadAddresses(ctx context.Context) error {
	addresses, err := o.gw.ListAddresses(ctx)
	if err != nil {
		return fmt.Errorf("load addresses: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.addresses = addresses
	if len(addresses) > 0 && o.selectedAddressID == "" {
		return o.selectAddressLocked(ctx, addresses[0].ID)
	}
	return nil
}

// SelectAddress picks a delivery address and quotes shipping for it. An
// empty id clears the selection and any prior shipping state.
func (o *Orchestrator) SelectAddress(ctx context.Context, addressID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selectAddressLocked(ctx, addressID)
}

func (o *Orchestrator) selectAddressLocked(ctx context.Context, addressID string) error {
	switch o.stage {
	case StageSubmitting, StageCompleted:
		return ErrIllegalTransition
	}

	// Every address change discards prior quotes; they are ephemeral.
	o.options = nil
	o.selected = nil
	o.selectedAddressID = addressID

	if addressID == "" {
		o.stage = StageSelectingAddress
		return nil
	}

	o.stage = StageCalculatingShipping
	options, err := o.gw.QuoteShipping(ctx, addressID)
	if err != nil {
		// Recoverable: the selection is kept but no shipping cost is shown.
		o.stage = StageSelectingAddress
		return fmt.Errorf("quote shipping for address %s: %w", addressID, err)
	}

	o.options = options
	if len(options) == 1 {
		o.selected = &options[0]
		o.stage = StageReadyToSubmit
		return nil
	}
	o.stage = StageAwaitingShippingChoice
	return nil
}

// SelectShipping picks one of the quoted options by carrier label.
func (o *Orchestrator) SelectShipping(carrier string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.stage {
	case StageAwaitingShippingChoice, StageReadyToSubmit:
	default:
		return ErrIllegalTransition
	}

	for i := range o.options {
		if o.options[i].Carrier == carrier {
			o.selected = &o.options[i]
			o.stage = StageReadyToSubmit
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownCarrier, carrier)
}

// OpenAddressForm overlays the new-address form over the current stage.
func (o *Orchestrator) OpenAddressForm() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.stage {
	case StageAddingAddress:
		return nil
	case StageSubmitting, StageCompleted:
		return ErrIllegalTransition
	}
	o.formReturnStage = o.stage
	o.stage = StageAddingAddress
	return nil
}

// CancelAddressForm closes the form without persisting anything.
func (o *Orchestrator) CancelAddressForm() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stage == StageAddingAddress {
		o.stage = o.formReturnStage
	}
}

// AddAddress creates the address, re-fetches the list, auto-selects the new
// address and re-enters shipping calculation. On validation or backend
// failure the form stays open and no partial address is persisted.
func (o *Orchestrator) AddAddress(ctx context.Context, addr commerce.NewAddress) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.stage != StageAddingAddress {
		return ErrIllegalTransition
	}
	if err := validateAddress(addr); err != nil {
		return err
	}

	created, err := o.gw.AddAddress(ctx, addr)
	if err != nil {
		return fmt.Errorf("add address: %w", err)
	}

	addresses, err := o.gw.ListAddresses(ctx)
	if err != nil {
		// The address exists server-side; fall back to the created record so
		// the flow can continue.
		o.log.Warn("address re-fetch failed after create", "error", err)
		o.addresses = append(o.addresses, *created)
	} else {
		o.addresses = addresses
	}

	o.stage = o.formReturnStage
	return o.selectAddressLocked(ctx, created.ID)
}

func validateAddress(addr commerce.NewAddress) error {
	required := []struct {
		field, value string
	}{
		{"street", addr.Street},
		{"number", addr.Number},
		{"neighborhood", addr.Neighborhood},
		{"city", addr.City},
		{"state", addr.State},
		{"postal_code", addr.PostalCode},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.field, Reason: "must not be empty"}
		}
	}
	return nil
}

// Submit creates the order. It refuses, without touching the network, unless
// exactly one address and one shipping option with a non-negative price are
// selected. A successful order triggers exactly one cart clear; a failed one
// leaves the cart untouched and the stage retriable.
func (o *Orchestrator) Submit(ctx context.Context) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.stage {
	case StageSubmitting:
		return "", ErrSubmitInFlight
	case StageCompleted:
		return "", ErrIllegalTransition
	}

	if o.selectedAddressID == "" || o.selected == nil {
		return "", &ValidationError{Field: "checkout", Reason: "select an address and a shipping option"}
	}
	if o.selected.Price.IsNegative() {
		return "", &ValidationError{Field: "shipping", Reason: "shipping price must not be negative"}
	}

	o.stage = StageSubmitting

	order, err := o.gw.CreateOrder(ctx, o.selectedAddressID, o.selected.Price)
	if err != nil {
		o.stage = StageFailed
		return "", fmt.Errorf("create order: %w", err)
	}
	if order == nil || order.ID == "" {
		o.stage = StageFailed
		return "", ErrOrderWithoutID
	}

	// The backend consumed the cart; re-fetch so the store reflects that.
	// A refresh failure already falls back to an empty cart.
	if err := o.cart.Refresh(ctx); err != nil {
		o.log.Warn("cart refresh after order creation failed", "error", err)
	}

	o.orderID = order.ID
	o.stage = StageCompleted
	return order.ID, nil
}
