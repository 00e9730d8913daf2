package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/feiralivre/storefront/internal/api"
	"github.com/feiralivre/storefront/internal/commerce"
)

// Phase is the payment sub-flow position over an already-created order.
// Transitions out of AwaitingPayment are driven by server-reported status
// only; the client never decides an order is paid on its own.
type Phase string

const (
	PhaseAwaitingPayment Phase = "AWAITING_PAYMENT"
	PhaseGeneratingPix   Phase = "GENERATING_PIX"
	PhasePixReady        Phase = "PIX_READY"
	PhasePaid            Phase = "PAID"
	PhaseCanceled        Phase = "CANCELED"
)

const defaultNoticeTTL = 3 * time.Second

var (
	ErrNotFound     = errors.New("order not found")
	ErrIllegalPhase = errors.New("operation not allowed in current payment phase")
)

// Gateway is the slice of the API client the flow needs.
type Gateway interface {
	GetOrder(ctx context.Context, id string) (*commerce.Order, error)
	RequestPixCharge(ctx context.Context, orderID string) (*commerce.PixPayment, error)
}

// Notice is a transient confirmation shown after copying the PIX code. It
// auto-dismisses once ExpiresAt passes.
type Notice struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Flow tracks one order's detail view and PIX payment. The PIX charge is
// generated on demand and not cached beyond this flow instance.
type Flow struct {
	gw        Gateway
	log       *slog.Logger
	id        string
	noticeTTL time.Duration
	now       func() time.Time

	mu     sync.Mutex
	order  *commerce.Order
	pix    *commerce.PixPayment
	phase  Phase
	notice *Notice
}

type FlowOption func(*Flow)

func WithNoticeTTL(d time.Duration) FlowOption {
	return func(f *Flow) { f.noticeTTL = d }
}

// WithClock injects a clock, for tests.
func WithClock(now func() time.Time) FlowOption {
	return func(f *Flow) { f.now = now }
}

func NewFlow(gw Gateway, orderID string, log *slog.Logger, opts ...FlowOption) *Flow {
	f := &Flow{
		gw:        gw,
		log:       log,
		id:        orderID,
		noticeTTL: defaultNoticeTTL,
		now:       time.Now,
		phase:     PhaseAwaitingPayment,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) ID() string { return f.id }

func (f *Flow) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

func (f *Flow) Order() *commerce.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.order == nil {
		return nil
	}
	o := *f.order
	return &o
}

func (f *Flow) Status() commerce.OrderStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.order == nil {
		return ""
	}
	return f.order.Status
}

func (f *Flow) Pix() *commerce.PixPayment {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pix == nil {
		return nil
	}
	p := *f.pix
	return &p
}

// Load fetches the order and derives the initial phase from its status.
func (f *Flow) Load(ctx context.Context) error {
	order, err := f.gw.GetOrder(ctx, f.id)
	if err != nil {
		if remote, ok := api.AsRemote(err); ok && remote.NotFound() {
			return fmt.Errorf("%w: %s", ErrNotFound, f.id)
		}
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.order = order
	f.phase = phaseForStatus(order.Status, f.phase)
	return nil
}

// Refresh re-fetches the order to observe server-side status changes. A
// payload that regresses the monotonic status lifecycle is discarded.
func (f *Flow) Refresh(ctx context.Context) error {
	order, err := f.gw.GetOrder(ctx, f.id)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.order != nil && !commerce.CanTransitionTo(f.order.Status, order.Status) {
		f.log.Warn("ignoring regressive order status",
			"order_id", f.id, "current", f.order.Status, "reported", order.Status)
		return nil
	}
	f.order = order
	f.phase = phaseForStatus(order.Status, f.phase)
	return nil
}

// GeneratePix requests the PIX charge. Failure returns the flow to
// AwaitingPayment with the error surfaced; there is no automatic retry.
func (f *Flow) GeneratePix(ctx context.Context) error {
	f.mu.Lock()
	if f.phase != PhaseAwaitingPayment {
		f.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrIllegalPhase, f.phase)
	}
	f.phase = PhaseGeneratingPix
	f.mu.Unlock()

	pix, err := f.gw.RequestPixCharge(ctx, f.id)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.phase = PhaseAwaitingPayment
		return fmt.Errorf("generate pix charge: %w", err)
	}
	f.pix = pix
	f.phase = PhasePixReady
	return nil
}

// CopyCode hands out the copy-paste payment code and arms the transient
// confirmation notice.
func (f *Flow) CopyCode() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase != PhasePixReady || f.pix == nil {
		return "", fmt.Errorf("%w: %s", ErrIllegalPhase, f.phase)
	}
	f.notice = &Notice{
		Message:   "PIX code copied to clipboard",
		ExpiresAt: f.now().Add(f.noticeTTL),
	}
	return f.pix.CopyPasteCode, nil
}

// ActiveNotice returns the confirmation notice while it is still on display,
// nil once it has auto-dismissed.
func (f *Flow) ActiveNotice() *Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notice == nil || !f.now().Before(f.notice.ExpiresAt) {
		f.notice = nil
		return nil
	}
	n := *f.notice
	return &n
}

// phaseForStatus maps a server status onto the payment phase without
// clobbering an in-progress PIX interaction while payment is still pending.
func phaseForStatus(status commerce.OrderStatus, current Phase) Phase {
	switch status {
	case commerce.OrderStatusAwaitingPayment:
		if current == PhaseGeneratingPix || current == PhasePixReady {
			return current
		}
		return PhaseAwaitingPayment
	case commerce.OrderStatusCanceled:
		return PhaseCanceled
	default:
		return PhasePaid
	}
}
