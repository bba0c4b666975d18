package pricing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/openbank-labs/reloan/internal/domain"
)

// ValidateCampaign compiles a campaign expression without loading it.
func (e *Engine) ValidateCampaign(cfg *domain.Campaign) error {
	if cfg == nil {
		return fmt.Errorf("campaign config is required")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	_, err := e.compileCampaign(cfg)
	return err
}

// LoadCampaign compiles and loads a campaign into the engine.
func (e *Engine) LoadCampaign(cfg *domain.Campaign) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	compiled, err := e.compileCampaign(cfg)
	if err != nil {
		return err
	}

	e.campaigns[cfg.ID] = compiled
	return nil
}

// LoadCampaigns compiles and loads multiple enabled campaigns.
func (e *Engine) LoadCampaigns(configs []*domain.Campaign) error {
	for _, cfg := range configs {
		if cfg.Enabled {
			if err := e.LoadCampaign(cfg); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReloadCampaigns replaces the loaded campaign set atomically. This enables
// hot-reloading from the repository.
func (e *Engine) ReloadCampaigns(configs []*domain.Campaign) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := make(map[string]*compiledCampaign)
	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		compiled, err := e.compileCampaign(cfg)
		if err != nil {
			return err
		}
		next[cfg.ID] = compiled
	}

	e.campaigns = next
	return nil
}

// CampaignCount returns the number of loaded campaigns.
func (e *Engine) CampaignCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.campaigns)
}

// LoadedCampaigns returns the currently loaded campaign configurations.
func (e *Engine) LoadedCampaigns() []*domain.Campaign {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*domain.Campaign, 0, len(e.campaigns))
	for _, c := range e.campaigns {
		out = append(out, c.config)
	}
	return out
}

func (e *Engine) compileCampaign(cfg *domain.Campaign) (*compiledCampaign, error) {
	ast, issues := e.env.Compile(cfg.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile campaign %s: %w", cfg.ID, issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("campaign %s: expression must return bool, got %s", cfg.ID, ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for campaign %s: %w", cfg.ID, err)
	}

	return &compiledCampaign{config: cfg, program: program}, nil
}

// applyCampaigns evaluates every active campaign against the resolved
// pricing inputs and folds matching adjustments into the result. A campaign
// that fails to evaluate is skipped and logged; it must never abort the
// deterministic pipeline.
func (e *Engine) applyCampaigns(ctx context.Context, p *domain.CustomerProfile, amount float64, tenure int, result *domain.PricingResult) []string {
	e.mu.RLock()
	campaigns := make([]*compiledCampaign, 0, len(e.campaigns))
	for _, c := range e.campaigns {
		campaigns = append(campaigns, c)
	}
	e.mu.RUnlock()

	if len(campaigns) == 0 {
		return nil
	}

	activation := map[string]any{
		"credit_score":       p.CreditScore,
		"account_age_years":  p.AccountAgeYears,
		"avg_balance":        p.AvgMonthlyBalance,
		"monthly_income":     p.MonthlyIncome,
		"loan_amount":        amount,
		"tenure_months":      tenure,
		"employment_type":    p.EmploymentType,
		"loan_history":       p.LoanHistoryScore,
		"is_salary_account":  p.IsSalaryAccount,
		"is_festive_season":  p.IsFestiveSeason,
		"has_existing_loans": p.HasExistingLoans,
	}

	now := e.now()
	var tags []string
	for _, c := range campaigns {
		if !c.config.ActiveAt(now) {
			continue
		}

		out, _, err := c.program.Eval(activation)
		if err != nil {
			slog.Warn("campaign evaluation failed",
				"campaign_id", c.config.ID,
				"error", err,
			)
			continue
		}
		matched, ok := out.(types.Bool)
		if !ok || !bool(matched) {
			continue
		}

		adj := domain.FactorAdjustment{
			Factor:        "campaign:" + c.config.ID,
			RateDelta:     c.config.RateDelta,
			FeeMultiplier: 1,
			MaxMultiplier: 1,
		}
		result.RateAdjustment += c.config.RateDelta
		if c.config.FeeMultiplier > 0 {
			result.FeeMultiplier *= c.config.FeeMultiplier
			adj.FeeMultiplier = c.config.FeeMultiplier
		}
		if c.config.MaxMultiplier > 0 {
			result.MaxMultiplier *= c.config.MaxMultiplier
			adj.MaxMultiplier = c.config.MaxMultiplier
		}
		result.Adjustments = append(result.Adjustments, adj)

		if c.config.Tag != "" {
			tags = append(tags, c.config.Tag)
		}
	}

	return tags
}
