package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/feiralivre/storefront/internal/commerce"
	"github.com/feiralivre/storefront/internal/order"
)

// OrderGateway is the slice of the API client the order endpoints need: the
// payment flow's operations plus the order history listing.
type OrderGateway interface {
	order.Gateway
	ListOrders(ctx context.Context) ([]commerce.Order, error)
}

// OrderHandler keeps one payment flow per viewed order so PIX state survives
// across requests within the session. Every flow still awaiting payment gets
// a background status poller; the poller exits on its own once the server
// reports a settled or terminal status.
type OrderHandler struct {
	gw           OrderGateway
	log          *slog.Logger
	timeout      time.Duration
	pollInterval time.Duration

	rootCtx context.Context
	stop    context.CancelFunc

	mu      sync.Mutex
	flows   map[string]*order.Flow
	watches map[string]context.CancelFunc
}

func NewOrderHandler(gw OrderGateway, log *slog.Logger, timeout, pollInterval time.Duration) *OrderHandler {
	rootCtx, stop := context.WithCancel(context.Background())
	return &OrderHandler{
		gw:           gw,
		log:          log,
		timeout:      timeout,
		pollInterval: pollInterval,
		rootCtx:      rootCtx,
		stop:         stop,
		flows:        map[string]*order.Flow{},
		watches:      map[string]context.CancelFunc{},
	}
}

// Close stops all background pollers.
func (h *OrderHandler) Close() {
	h.stop()
}

type OrderResponseDTO struct {
	Order  *commerce.Order      `json:"order"`
	Phase  string               `json:"phase"`
	Pix    *commerce.PixPayment `json:"pix,omitempty"`
	Notice *order.Notice        `json:"notice,omitempty"`
}

type OrderListResponseDTO struct {
	Orders []commerce.Order `json:"orders"`
}

type CopyCodeResponseDTO struct {
	Code   string        `json:"code"`
	Notice *order.Notice `json:"notice"`
}

func (h *OrderHandler) flowFor(ctx context.Context, orderID string) (*order.Flow, error) {
	h.mu.Lock()
	flow, ok := h.flows[orderID]
	h.mu.Unlock()
	if ok {
		return flow, flow.Refresh(ctx)
	}

	flow = order.NewFlow(h.gw, orderID, h.log)
	if err := flow.Load(ctx); err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.flows[orderID] = flow
	if flow.Status() == commerce.OrderStatusAwaitingPayment {
		h.watchLocked(flow)
	}
	h.mu.Unlock()
	return flow, nil
}

// watchLocked starts the status poller for a flow, at most once per order.
// Callers hold h.mu.
func (h *OrderHandler) watchLocked(flow *order.Flow) {
	if _, running := h.watches[flow.ID()]; running {
		return
	}
	ctx, cancel := context.WithCancel(h.rootCtx)
	h.watches[flow.ID()] = cancel

	go func() {
		defer cancel()
		order.NewPoller(flow, h.pollInterval, h.log).Run(ctx)

		h.mu.Lock()
		delete(h.watches, flow.ID())
		h.mu.Unlock()
	}()
}

func (h *OrderHandler) response(flow *order.Flow) OrderResponseDTO {
	return OrderResponseDTO{
		Order:  flow.Order(),
		Phase:  string(flow.Phase()),
		Pix:    flow.Pix(),
		Notice: flow.ActiveNotice(),
	}
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.gw.ListOrders(ctx)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, OrderListResponseDTO{Orders: orders})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	flow, err := h.flowFor(ctx, chi.URLParam(r, "orderID"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.response(flow))
}

func (h *OrderHandler) GeneratePix(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	flow, err := h.flowFor(ctx, chi.URLParam(r, "orderID"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if err := flow.GeneratePix(ctx); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.response(flow))
}

func (h *OrderHandler) CopyCode(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	flow, ok := h.flows[chi.URLParam(r, "orderID")]
	h.mu.Unlock()
	if !ok {
		respondError(w, http.StatusConflict, "conflict", "no PIX charge generated for this order")
		return
	}

	code, err := flow.CopyCode()
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, CopyCodeResponseDTO{Code: code, Notice: flow.ActiveNotice()})
}
