package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/feiralivre/storefront/internal/checkout"
	"github.com/feiralivre/storefront/internal/commerce"
)

type CheckoutHandler struct {
	flow    *checkout.Orchestrator
	timeout time.Duration
}

func NewCheckoutHandler(flow *checkout.Orchestrator, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{flow: flow, timeout: timeout}
}

type SelectAddressRequestDTO struct {
	AddressID string `json:"address_id"`
}

type SelectShippingRequestDTO struct {
	Carrier string `json:"carrier"`
}

type CheckoutStateDTO struct {
	Stage             string                    `json:"stage"`
	Addresses         []commerce.Address        `json:"addresses"`
	SelectedAddressID string                    `json:"selected_address_id"`
	ShippingOptions   []commerce.ShippingOption `json:"shipping_options"`
	SelectedShipping  *commerce.ShippingOption  `json:"selected_shipping,omitempty"`
	ShippingCost      decimal.Decimal           `json:"shipping_cost"`
	Total             decimal.Decimal           `json:"total"`
}

type SubmitResponseDTO struct {
	OrderID string `json:"order_id"`
}

func (h *CheckoutHandler) state() CheckoutStateDTO {
	dto := CheckoutStateDTO{
		Stage:             h.flow.Stage().String(),
		Addresses:         h.flow.Addresses(),
		SelectedAddressID: h.flow.SelectedAddressID(),
		ShippingOptions:   h.flow.ShippingOptions(),
		ShippingCost:      h.flow.ShippingCost(),
		Total:             h.flow.Total(),
	}
	if selected, ok := h.flow.SelectedShipping(); ok {
		dto.SelectedShipping = &selected
	}
	return dto
}

func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.state())
}

// Load fetches the address list, auto-selecting the first address when none
// is selected yet.
func (h *CheckoutHandler) Load(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.flow.LoadAddresses(ctx); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.state())
}

func (h *CheckoutHandler) SelectAddress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SelectAddressRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.flow.SelectAddress(ctx, req.AddressID); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.state())
}

func (h *CheckoutHandler) SelectShipping(w http.ResponseWriter, r *http.Request) {
	var req SelectShippingRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.flow.SelectShipping(req.Carrier); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.state())
}

// AddAddress drives the new-address sub-flow in one request: open the form,
// submit it, and on success re-enter shipping calculation for the created
// address. A failed submission leaves the form open for another try.
func (h *CheckoutHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req commerce.NewAddress
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.flow.OpenAddressForm(); err != nil {
		respondDomainError(w, r, err)
		return
	}
	if err := h.flow.AddAddress(ctx, req); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.state())
}

func (h *CheckoutHandler) CancelAddressForm(w http.ResponseWriter, r *http.Request) {
	h.flow.CancelAddressForm()
	respondJSON(w, http.StatusOK, h.state())
}

func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID, err := h.flow.Submit(ctx)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, SubmitResponseDTO{OrderID: orderID})
}
