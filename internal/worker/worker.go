// Package worker provides async pricing for the Pro tier. Batch repricing
// jobs publish requests on the bus; the worker resolves the profile, runs
// the engine and records the result like the synchronous path does.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/openbank-labs/reloan/internal/domain"
	"github.com/openbank-labs/reloan/internal/profile"
	"github.com/openbank-labs/reloan/internal/tools"
)

// Worker consumes pricing requests from the EventBus.
type Worker struct {
	bus      domain.EventBus
	profiles *profile.Service
	registry *tools.Registry

	subscriptions []domain.Subscription
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewWorker creates a new async pricing worker.
func NewWorker(bus domain.EventBus, profiles *profile.Service, registry *tools.Registry) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:      bus,
		profiles: profiles,
		registry: registry,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start subscribes to the pricing request topic.
func (w *Worker) Start() error {
	sub, err := w.bus.Subscribe(w.ctx, domain.TopicPricingRequested, w.handleMessage)
	if err != nil {
		return err
	}
	w.subscriptions = append(w.subscriptions, sub)

	slog.Info("pricing worker started", "topic", domain.TopicPricingRequested)
	return nil
}

// PricingMessage is the payload published on the pricing request topic.
type PricingMessage struct {
	CustomerID      string  `json:"customerId"`
	LoanAmount      float64 `json:"loanAmount,omitempty"`
	RequestedTenure int     `json:"requestedTenure,omitempty"`
	TraceID         string  `json:"traceId,omitempty"`
}

func (w *Worker) handleMessage(ctx context.Context, msg *domain.Message) error {
	start := time.Now()

	var req PricingMessage
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		slog.Error("failed to parse pricing message",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}

	traceID := req.TraceID
	if traceID == "" {
		traceID = msg.ID
	}

	slog.Debug("processing pricing request",
		"customer_id", req.CustomerID,
		"trace_id", traceID,
	)

	p, err := w.profiles.Load(ctx, req.CustomerID)
	if err != nil {
		slog.Error("failed to load profile for pricing request",
			"customer_id", req.CustomerID,
			"trace_id", traceID,
			"error", err,
		)
		return err
	}

	// PriceAndRecord persists the snapshot and publishes the computed event.
	result, err := w.registry.PriceAndRecord(ctx, p, &domain.PricingRequest{
		LoanAmount:      req.LoanAmount,
		RequestedTenure: req.RequestedTenure,
	})
	if err != nil {
		slog.Error("pricing request failed",
			"customer_id", req.CustomerID,
			"trace_id", traceID,
			"error", err,
		)
		return err
	}

	slog.Info("pricing request processed",
		"customer_id", req.CustomerID,
		"trace_id", traceID,
		"final_rate", result.FinalInterestRate,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() error {
	w.cancel()

	for _, sub := range w.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("failed to unsubscribe",
				"topic", sub.Topic(),
				"error", err,
			)
		}
	}
	w.subscriptions = nil

	w.wg.Wait()

	slog.Info("pricing worker stopped")
	return nil
}

// Stats returns worker statistics.
type Stats struct {
	SubscriptionCount int      `json:"subscriptionCount"`
	Topics            []string `json:"topics"`
}

// GetStats returns current worker statistics.
func (w *Worker) GetStats() Stats {
	topics := make([]string, len(w.subscriptions))
	for i, sub := range w.subscriptions {
		topics[i] = sub.Topic()
	}
	return Stats{
		SubscriptionCount: len(w.subscriptions),
		Topics:            topics,
	}
}
