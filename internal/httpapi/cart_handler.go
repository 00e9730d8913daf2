package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/feiralivre/storefront/internal/cart"
	"github.com/feiralivre/storefront/internal/commerce"
)

type CartHandler struct {
	store   *cart.Store
	timeout time.Duration
}

func NewCartHandler(store *cart.Store, timeout time.Duration) *CartHandler {
	return &CartHandler{store: store, timeout: timeout}
}

type AddItemRequestDTO struct {
	// ProductID tolerates both a JSON number and a string; the store
	// normalizes and rejects anything that is not a finite integer.
	ProductID any `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	Items     []commerce.CartItem `json:"items"`
	Subtotal  decimal.Decimal     `json:"subtotal"`
	ItemCount int                 `json:"item_count"`
}

func (h *CartHandler) cartResponse() CartResponseDTO {
	return CartResponseDTO{
		Items:     h.store.Items(),
		Subtotal:  h.store.Subtotal(),
		ItemCount: h.store.ItemCount(),
	}
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.store.Refresh(ctx); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := h.store.AddItem(ctx, fmt.Sprint(req.ProductID), req.Quantity); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.cartResponse())
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be an integer")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.store.UpdateQuantity(ctx, productID, req.Quantity); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be an integer")
		return
	}

	if err := h.store.RemoveItem(ctx, productID); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse())
}
