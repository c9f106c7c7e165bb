package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/xlei/mediagen-api/internal/config"
	"github.com/xlei/mediagen-api/internal/orchestrate"
	"github.com/xlei/mediagen-api/internal/provider"
	"github.com/xlei/mediagen-api/internal/quota"
	"github.com/xlei/mediagen-api/internal/task"
	"github.com/xlei/mediagen-api/internal/uploader"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service   *orchestrate.Service
	prober    *quota.Prober
	store     *config.Store
	validator *validator.Validate
	logger    *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *orchestrate.Service, prober *quota.Prober, store *config.Store, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		service:   service,
		prober:    prober,
		store:     store,
		validator: validator.New(),
		logger:    logger,
	}
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Generate handles POST /api/v1/generations requests. The run executes
// synchronously; the response always carries assets, placeholders included.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	refs := make([]uploader.Input, 0, len(req.References))
	for i, ref := range req.References {
		data, err := base64.StdEncoding.DecodeString(ref.DataBase64)
		if err != nil {
			h.logger.Warn("failed to decode reference asset",
				slog.Int("index", i),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusBadRequest, "reference asset is not valid base64", "INVALID_REFERENCE")
			return
		}
		refs = append(refs, uploader.Input{Name: ref.Name, Data: data})
	}

	result, err := h.service.Generate(r.Context(), orchestrate.Request{
		Kind:        task.AssetKind(req.Kind),
		Prompt:      req.Prompt,
		Model:       req.Model,
		Width:       req.Width,
		Height:      req.Height,
		DurationSec: req.DurationSec,
		References:  refs,
	})
	if err != nil {
		h.logger.Error("generation run failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "generation failed", "GENERATION_FAILED")
		return
	}

	assets := make([]AssetResponse, 0, len(result.Assets))
	for _, a := range result.Assets {
		assets = append(assets, AssetResponse{
			Index:      a.Index,
			Kind:       string(a.Kind),
			RemoteURL:  a.RemoteURL,
			ArchiveRef: a.SourceRef,
			DataBase64: base64.StdEncoding.EncodeToString(a.Bytes),
		})
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		RunID:        result.RunID,
		Status:       string(result.Status),
		Kind:         string(result.Kind),
		UsedFallback: result.UsedFallback,
		FailureCode:  string(result.FailureCode),
		InfoText:     result.InfoText,
		Assets:       assets,
	})
}

// GetRun handles GET /api/v1/generations/{id} requests.
func (h *Handlers) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")
	if runID == "" {
		writeError(w, http.StatusBadRequest, "run ID is required", "MISSING_RUN_ID")
		return
	}

	t, err := h.service.GetRun(r.Context(), runID)
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, "run not found", "RUN_NOT_FOUND")
			return
		}
		h.logger.Error("failed to get run",
			slog.String("run_id", runID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get run", "RUN_FETCH_FAILED")
		return
	}

	resp := RunResponse{
		RunID:        t.ID,
		VendorTaskID: t.VendorTaskID,
		Status:       string(t.Status),
		Kind:         string(t.Kind),
		AssetCount:   len(t.Assets),
	}
	if t.ErrorInfo != nil {
		resp.ErrorCode = t.ErrorInfo.Code
		resp.ErrorMessage = t.ErrorInfo.Message
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetQuota handles GET /api/v1/quota requests.
func (h *Handlers) GetQuota(w http.ResponseWriter, r *http.Request) {
	balance, err := h.prober.Balance(r.Context())
	if err != nil {
		if errors.Is(err, provider.ErrBalanceUnsupported) {
			writeJSON(w, http.StatusOK, QuotaResponse{
				Note: "balance is not available for this provider",
			})
			return
		}
		h.logger.Error("balance probe failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "balance probe failed", "QUOTA_PROBE_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, QuotaResponse{Balance: balance})
}

// ReloadConfig handles POST /api/v1/config/reload requests. A failed
// reload keeps the previous configuration active.
func (h *Handlers) ReloadConfig(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.Reload(); err != nil {
		h.logger.Error("configuration reload failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusUnprocessableEntity, err.Error(), "RELOAD_FAILED")
		return
	}

	h.logger.Info("configuration reloaded")
	writeJSON(w, http.StatusOK, ReloadResponse{Status: "reloaded"})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
