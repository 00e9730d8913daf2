package order

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/feiralivre/storefront/internal/commerce"
)

// Poller re-fetches an order on an interval until the server reports that
// payment settled (or the order reached a terminal state). A circuit breaker
// stops the flow from hammering a backend that keeps failing; polls resume
// once the breaker cools down.
type Poller struct {
	flow     *Flow
	interval time.Duration
	log      *slog.Logger
	cb       *gobreaker.CircuitBreaker[commerce.OrderStatus]
}

func NewPoller(flow *Flow, interval time.Duration, log *slog.Logger) *Poller {
	cb := gobreaker.NewCircuitBreaker[commerce.OrderStatus](gobreaker.Settings{
		Name:        "order-status",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &Poller{flow: flow, interval: interval, log: log, cb: cb}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		status, err := p.cb.Execute(func() (commerce.OrderStatus, error) {
			if err := p.flow.Refresh(ctx); err != nil {
				return "", err
			}
			return p.flow.Status(), nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				continue
			}
			p.log.Warn("order status poll failed", "order_id", p.flow.ID(), "error", err)
			continue
		}

		if status != commerce.OrderStatusAwaitingPayment {
			return
		}
	}
}
