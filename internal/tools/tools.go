// Package tools exposes the five agent-facing operations over the
// calculation core. Every operation takes the customer profile and its
// arguments explicitly; structured results are primary and the rendered
// text is derived at this boundary only.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openbank-labs/reloan/internal/domain"
	"github.com/openbank-labs/reloan/internal/loanmath"
	"github.com/openbank-labs/reloan/internal/pricing"
	"github.com/openbank-labs/reloan/internal/profile"
	"github.com/openbank-labs/reloan/internal/projector"
)

// Tool names.
const (
	ToolCustomerDetails  = "get_customer_details"
	ToolCalculateEMI     = "calculate_emi"
	ToolLoanSavings      = "calculate_loan_savings"
	ToolDynamicPricing   = "calculate_dynamic_pricing"
	ToolRateImprovements = "get_rate_improvement_suggestions"
)

// Args carries the per-invocation tool arguments. Zero values fall back to
// the profile's offer terms where the tool defines a fallback.
type Args struct {
	DetailType       string  `json:"detailType,omitempty"`
	LoanAmount       float64 `json:"loanAmount,omitempty"`
	InterestRate     float64 `json:"interestRate,omitempty"`
	TenureMonths     int     `json:"tenureMonths,omitempty"`
	PrepaymentAmount float64 `json:"prepaymentAmount,omitempty"`
	RequestedTenure  int     `json:"requestedTenure,omitempty"`
}

// Result is one tool invocation's outcome: the structured data plus the
// rendered text handed to the conversational runtime.
type Result struct {
	InvocationID string `json:"invocationId"`
	Tool         string `json:"tool"`
	Text         string `json:"text"`
	Data         any    `json:"data,omitempty"`
}

// Registry wires the calculation core behind the named tools.
type Registry struct {
	profiles *profile.Service
	engine   *pricing.Engine
	repo     domain.Repository
	bus      domain.EventBus
}

// NewRegistry creates a tool registry. repo and bus may be nil when
// snapshot persistence and event publishing are not wanted.
func NewRegistry(profiles *profile.Service, engine *pricing.Engine, repo domain.Repository, bus domain.EventBus) *Registry {
	return &Registry{
		profiles: profiles,
		engine:   engine,
		repo:     repo,
		bus:      bus,
	}
}

// Names returns the registered tool names.
func (r *Registry) Names() []string {
	return []string{
		ToolCustomerDetails,
		ToolCalculateEMI,
		ToolLoanSavings,
		ToolDynamicPricing,
		ToolRateImprovements,
	}
}

// Invoke runs the named tool for a customer. Calculation errors are
// returned structured; callers at the outermost boundary translate them
// with FallbackText. Every invocation is logged with its id.
func (r *Registry) Invoke(ctx context.Context, tool, customerID string, args Args) (*Result, error) {
	invocationID := uuid.New().String()
	start := time.Now()

	p, err := r.profiles.Load(ctx, customerID)
	if err != nil {
		slog.Error("tool invocation failed to load profile",
			"invocation_id", invocationID,
			"tool", tool,
			"customer_id", customerID,
			"error", err,
		)
		return nil, err
	}

	var res *Result
	switch tool {
	case ToolCustomerDetails:
		res, err = r.customerDetails(p, args)
	case ToolCalculateEMI:
		res, err = r.calculateEMI(p, args)
	case ToolLoanSavings:
		res, err = r.loanSavings(p, args)
	case ToolDynamicPricing:
		res, err = r.dynamicPricing(ctx, p, args)
	case ToolRateImprovements:
		res, err = r.rateImprovements(p)
	default:
		err = fmt.Errorf("%w: unknown tool %q", domain.ErrInvalidParameter, tool)
	}

	if err != nil {
		slog.Error("tool invocation failed",
			"invocation_id", invocationID,
			"tool", tool,
			"customer_id", customerID,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return nil, err
	}

	res.InvocationID = invocationID
	res.Tool = tool

	slog.Info("tool invoked",
		"invocation_id", invocationID,
		"tool", tool,
		"customer_id", customerID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return res, nil
}

// FallbackText is the fixed neutral message shown to the end user when a
// tool fails. The structured error never reaches them.
func FallbackText(tool string) string {
	switch tool {
	case ToolCustomerDetails:
		return "Unable to retrieve customer details at the moment."
	case ToolCalculateEMI:
		return "Unable to calculate EMI. Please check the input parameters."
	case ToolLoanSavings:
		return "Unable to calculate loan savings at the moment."
	case ToolDynamicPricing:
		return "Unable to calculate personalized pricing at the moment. Please try again or contact our loan specialist."
	case ToolRateImprovements:
		return "Unable to generate rate improvement suggestions at the moment."
	default:
		return "Unable to process the request at the moment."
	}
}

func (r *Registry) customerDetails(p *domain.CustomerProfile, args Args) (*Result, error) {
	detailType := args.DetailType
	if detailType == "" {
		detailType = "all"
	}
	return &Result{
		Text: renderDetails(p, detailType),
		Data: p,
	}, nil
}

func (r *Registry) calculateEMI(p *domain.CustomerProfile, args Args) (*Result, error) {
	amount := args.LoanAmount
	if amount <= 0 {
		amount = p.LoanOffer
	}
	rate := args.InterestRate
	if rate <= 0 {
		rate = p.InterestRate
	}
	tenure := args.TenureMonths
	if tenure <= 0 {
		tenure = p.TenureMonths
	}

	calc, err := loanmath.Compute(amount, rate, tenure)
	if err != nil {
		return nil, err
	}

	return &Result{
		Text: renderEMI(amount, rate, tenure, calc),
		Data: calc,
	}, nil
}

func (r *Registry) loanSavings(p *domain.CustomerProfile, args Args) (*Result, error) {
	if args.PrepaymentAmount > 0 {
		proj, err := projector.Prepayment(p, args.PrepaymentAmount)
		if err != nil {
			return nil, err
		}
		return &Result{
			Text: renderPrepayment(proj),
			Data: proj,
		}, nil
	}

	proj, err := projector.TenureOptions(p)
	if err != nil {
		return nil, err
	}
	return &Result{
		Text: renderTenureOptions(proj),
		Data: proj,
	}, nil
}

func (r *Registry) dynamicPricing(ctx context.Context, p *domain.CustomerProfile, args Args) (*Result, error) {
	req := &domain.PricingRequest{
		LoanAmount:      args.LoanAmount,
		RequestedTenure: args.RequestedTenure,
	}

	result, err := r.PriceAndRecord(ctx, p, req)
	if err != nil {
		return nil, err
	}

	return &Result{
		Text: renderPricing(p, result),
		Data: result,
	}, nil
}

func (r *Registry) rateImprovements(p *domain.CustomerProfile) (*Result, error) {
	imp, err := projector.RateImprovement(p)
	if err != nil {
		return nil, err
	}
	return &Result{
		Text: renderImprovement(p, imp),
		Data: imp,
	}, nil
}

// PriceAndRecord runs the pricing engine, persists an audit snapshot and
// publishes the computed event. Persistence and publishing are best-effort:
// a storage hiccup must not void a correct calculation.
func (r *Registry) PriceAndRecord(ctx context.Context, p *domain.CustomerProfile, req *domain.PricingRequest) (*domain.PricingResult, error) {
	result, err := r.engine.Price(ctx, p, req)
	if err != nil {
		return nil, err
	}

	snap := &domain.PricingSnapshot{
		ID:         uuid.New().String(),
		CustomerID: p.CustomerID,
		Result:     result,
		CreatedAt:  time.Now().UTC(),
	}

	if r.repo != nil {
		if err := r.repo.SavePricingSnapshot(ctx, snap); err != nil {
			slog.Warn("failed to persist pricing snapshot",
				"snapshot_id", snap.ID,
				"customer_id", p.CustomerID,
				"error", err,
			)
		}
	}

	if r.bus != nil {
		payload, err := marshalSnapshot(snap)
		if err == nil {
			if err := r.bus.Publish(ctx, domain.TopicPricingComputed, payload); err != nil {
				slog.Warn("failed to publish pricing event",
					"snapshot_id", snap.ID,
					"error", err,
				)
			}
		}
	}

	return result, nil
}

func marshalSnapshot(snap *domain.PricingSnapshot) ([]byte, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		slog.Warn("failed to marshal pricing snapshot", "snapshot_id", snap.ID, "error", err)
	}
	return payload, err
}

// IsUserError reports whether the error is a calculation-level failure the
// boundary should collapse to a neutral message, as opposed to a missing
// customer or an infrastructure fault.
func IsUserError(err error) bool {
	return errors.Is(err, domain.ErrInvalidParameter) || errors.Is(err, domain.ErrMissingData)
}
