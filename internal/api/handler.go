package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/openbank-labs/reloan/internal/domain"
	"github.com/openbank-labs/reloan/internal/pricing"
	"github.com/openbank-labs/reloan/internal/profile"
	"github.com/openbank-labs/reloan/internal/tools"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	repo     domain.Repository
	cache    domain.Cache
	bus      domain.EventBus
	engine   *pricing.Engine
	profiles *profile.Service
	registry *tools.Registry
	version  string
}

// NewHandler creates a new API handler.
func NewHandler(repo domain.Repository, cache domain.Cache, bus domain.EventBus, engine *pricing.Engine, profiles *profile.Service, registry *tools.Registry, version string) *Handler {
	return &Handler{
		repo:     repo,
		cache:    cache,
		bus:      bus,
		engine:   engine,
		profiles: profiles,
		registry: registry,
		version:  version,
	}
}

// InvokeTool handles POST /tools/{name}. The body carries the tool
// arguments; an empty body means all defaults. Calculation failures are
// collapsed here to the tool's fixed neutral message so the conversational
// runtime never sees internals.
func (h *Handler) InvokeTool(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID := GetCustomerID(ctx)
	toolName := chi.URLParam(r, "name")

	var args tools.Args
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	res, err := h.registry.Invoke(ctx, toolName, customerID, args)
	if err != nil {
		switch {
		case tools.IsUserError(err):
			// The structured error was already logged by the registry; the
			// runtime gets a well-formed result with the neutral text.
			writeJSON(w, http.StatusOK, &tools.Result{
				Tool: toolName,
				Text: tools.FallbackText(toolName),
			})
		case errors.Is(err, domain.ErrNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "customer not found",
			})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "tool invocation failed",
			})
		}
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// GetCustomer handles GET /customers/{id} and returns the normalized
// profile, served through the session snapshot cache.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID := chi.URLParam(r, "id")

	if customerID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "customer id is required",
		})
		return
	}

	p, err := h.profiles.Load(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "customer not found",
			})
			return
		}
		slog.Error("failed to load customer", "customer_id", customerID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to load customer",
		})
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// PricingRequest is the request body for POST /pricing/evaluate.
type PricingRequest struct {
	CustomerID      string  `json:"customerId"`
	LoanAmount      float64 `json:"loanAmount,omitempty"`
	RequestedTenure int     `json:"requestedTenure,omitempty"`
}

// EvaluatePricing handles POST /pricing/evaluate. Unlike the tool variant,
// this is the programmatic surface: errors come back structured instead of
// collapsed to neutral text.
func (h *Handler) EvaluatePricing(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	var req PricingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if req.CustomerID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "customerId is required",
		})
		return
	}

	p, err := h.profiles.Load(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "customer not found",
			})
			return
		}
		slog.Error("failed to load customer", "customer_id", req.CustomerID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to load customer",
		})
		return
	}

	result, err := h.registry.PriceAndRecord(ctx, p, &domain.PricingRequest{
		LoanAmount:      req.LoanAmount,
		RequestedTenure: req.RequestedTenure,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidParameter) || errors.Is(err, domain.ErrMissingData) {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": err.Error(),
			})
			return
		}
		slog.Error("pricing evaluation failed", "customer_id", req.CustomerID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "pricing evaluation failed",
		})
		return
	}

	slog.Info("pricing evaluated",
		"customer_id", req.CustomerID,
		"final_rate", result.FinalInterestRate,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, result)
}

// GetPricingSnapshot handles GET /pricing/{id}.
func (h *Handler) GetPricingSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snapID := chi.URLParam(r, "id")

	if snapID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "snapshot id is required",
		})
		return
	}

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	snap, err := h.repo.GetPricingSnapshot(ctx, snapID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "pricing snapshot not found",
			})
			return
		}
		slog.Error("failed to get pricing snapshot", "id", snapID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to get pricing snapshot",
		})
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	// Check repository health
	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	// Check cache health
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

// ListCampaigns returns all campaigns loaded in the pricing engine.
// Campaigns are loaded from the database at startup and can be reloaded
// via POST /campaigns/reload.
func (h *Handler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns := h.engine.LoadedCampaigns()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"campaigns": campaigns,
		"count":     len(campaigns),
		"source":    "database",
	})
}

// CreateCampaign creates a new campaign and saves it to the database.
// After saving, call POST /campaigns/reload to hot-reload into the engine.
func (h *Handler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var campaign domain.Campaign
	if err := json.NewDecoder(r.Body).Decode(&campaign); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	// Validate required fields
	if campaign.ID == "" || campaign.Name == "" || campaign.Expression == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "id, name, and expression are required",
		})
		return
	}

	// Validate the CEL expression before it can reach the engine
	if err := h.engine.ValidateCampaign(&campaign); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid CEL expression: " + err.Error(),
		})
		return
	}

	if h.repo != nil {
		if err := h.repo.SaveCampaign(ctx, &campaign); err != nil {
			slog.Error("failed to save campaign", "id", campaign.ID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "failed to save campaign",
			})
			return
		}
	}

	slog.Info("campaign created", "id", campaign.ID, "name", campaign.Name)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"campaign": campaign,
		"message":  "Campaign created. Call POST /campaigns/reload to apply changes.",
	})
}

// DeleteCampaign deletes a campaign and auto-reloads the engine.
func (h *Handler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	campaignID := chi.URLParam(r, "id")

	if campaignID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "campaign id is required",
		})
		return
	}

	if h.repo != nil {
		if err := h.repo.DeleteCampaign(ctx, campaignID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{
					"error": "campaign not found",
				})
				return
			}
			slog.Error("failed to delete campaign", "id", campaignID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "failed to delete campaign",
			})
			return
		}

		// Auto-reload the engine after delete
		dbCampaigns, err := h.repo.ListCampaigns(ctx)
		if err != nil {
			slog.Error("failed to reload campaigns after delete", "error", err)
		} else if err := h.engine.ReloadCampaigns(dbCampaigns); err != nil {
			slog.Error("failed to reload campaigns into engine", "error", err)
		} else {
			slog.Info("campaigns auto-reloaded after delete", "count", len(dbCampaigns))
		}
	}

	slog.Info("campaign deleted", "id", campaignID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Campaign deleted and engine reloaded.",
	})
}

// ReloadCampaigns reloads all campaigns from the database into the engine.
// This enables hot-reloading without server restart.
func (h *Handler) ReloadCampaigns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	dbCampaigns, err := h.repo.ListCampaigns(ctx)
	if err != nil {
		slog.Error("failed to list campaigns from database", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to load campaigns from database",
		})
		return
	}

	if err := h.engine.ReloadCampaigns(dbCampaigns); err != nil {
		slog.Error("failed to reload campaigns into engine", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to reload campaigns: " + err.Error(),
		})
		return
	}

	slog.Info("campaigns reloaded from database", "count", len(dbCampaigns))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "campaigns reloaded successfully",
		"count":   len(dbCampaigns),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
