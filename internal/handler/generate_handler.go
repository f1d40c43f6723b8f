package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"cybercommand/internal/catalog"
	"cybercommand/internal/epoch"
	"cybercommand/internal/service"
	"cybercommand/internal/synth"
	"cybercommand/internal/util"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// GenerateHandler handles HTTP requests for corpus generation
type GenerateHandler struct {
	generatorService *service.GeneratorService
	validate         *validator.Validate
	logger           *zap.Logger
}

// NewGenerateHandler creates a new generate handler
func NewGenerateHandler(generatorService *service.GeneratorService, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{
		generatorService: generatorService,
		validate:         validator.New(),
		logger:           logger,
	}
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// successResponse creates a successful response
func successResponse(data interface{}, message string) Response {
	return Response{
		Success: true,
		Data:    data,
		Message: message,
	}
}

// errorResponse creates an error response
func errorResponse(err error, message string) Response {
	return Response{
		Success: false,
		Error:   err.Error(),
		Message: message,
	}
}

// GenerateAllRequest sizes a full regeneration run; zero values use the
// configured defaults
type GenerateAllRequest struct {
	UserCount     int   `json:"user_count" validate:"gte=0,lte=100000"`
	AssetCount    int   `json:"asset_count" validate:"gte=0,lte=100000"`
	DaysBack      int   `json:"days_back" validate:"gte=0,lte=365"`
	NetworkPerDay int   `json:"network_per_day" validate:"gte=0,lte=1000000"`
	AuthPerDay    int   `json:"auth_per_day" validate:"gte=0,lte=1000000"`
	Seed          int64 `json:"seed"`
}

// CatalogRequest sizes a catalog-only regeneration
type CatalogRequest struct {
	UserCount  int   `json:"user_count" validate:"gte=0,lte=100000"`
	AssetCount int   `json:"asset_count" validate:"gte=0,lte=100000"`
	Seed       int64 `json:"seed"`
}

// EventsRequest appends background streams to the published epoch
type EventsRequest struct {
	DaysBack      int   `json:"days_back" validate:"required,gt=0,lte=365"`
	NetworkPerDay int   `json:"network_per_day" validate:"required,gt=0,lte=1000000"`
	AuthPerDay    int   `json:"auth_per_day" validate:"required,gt=0,lte=1000000"`
	Seed          int64 `json:"seed"`
}

// ScenarioRequest layers an injected exfiltration campaign onto the
// published epoch
type ScenarioRequest struct {
	DaysBack   int   `json:"days_back" validate:"required,gt=0,lte=365"`
	EventCount int   `json:"event_count" validate:"required,gt=0,lte=1000000"`
	Seed       int64 `json:"seed"`
}

// RegisterRoutes registers all generation routes
func (h *GenerateHandler) RegisterRoutes(router chi.Router) {
	router.Route("/generate", func(r chi.Router) {
		r.Post("/", h.GenerateAll)
		r.Post("/catalog", h.GenerateCatalog)
		r.Post("/events", h.GenerateEvents)
		r.Post("/scenario", h.InjectScenario)
	})
}

// GenerateAll rebuilds the entire corpus and publishes a fresh epoch
func (h *GenerateHandler) GenerateAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	var req GenerateAllRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	summary, err := h.generatorService.GenerateAll(ctx, service.GenerateAllParams{
		UserCount:     req.UserCount,
		AssetCount:    req.AssetCount,
		DaysBack:      req.DaysBack,
		NetworkPerDay: req.NetworkPerDay,
		AuthPerDay:    req.AuthPerDay,
		Seed:          req.Seed,
	})
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed to generate corpus")
		return
	}

	h.respondWithJSON(w, http.StatusCreated, successResponse(summary, "Corpus generated and published"))
	h.logger.Info("Corpus generated via HTTP",
		util.String("epoch_id", summary.EpochID),
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "GenerateAll"),
	)
}

// GenerateCatalog rebuilds the catalogs only and publishes a fresh epoch
func (h *GenerateHandler) GenerateCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	var req CatalogRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	summary, err := h.generatorService.GenerateCatalog(ctx, req.UserCount, req.AssetCount, req.Seed)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed to generate catalogs")
		return
	}

	h.respondWithJSON(w, http.StatusCreated, successResponse(summary, "Catalogs generated and published"))
	h.logger.Info("Catalogs generated via HTTP",
		util.String("epoch_id", summary.EpochID),
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "GenerateCatalog"),
	)
}

// GenerateEvents appends background streams to the published epoch
func (h *GenerateHandler) GenerateEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	var req EventsRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	summary, err := h.generatorService.GenerateEvents(ctx, req.DaysBack, req.NetworkPerDay, req.AuthPerDay, req.Seed)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed to generate events")
		return
	}

	h.respondWithJSON(w, http.StatusCreated, successResponse(summary, "Events generated"))
	h.logger.Info("Events generated via HTTP",
		util.String("epoch_id", summary.EpochID),
		util.Int("network_written", summary.NetworkWritten),
		util.Int("auth_written", summary.AuthWritten),
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "GenerateEvents"),
	)
}

// InjectScenario layers an exfiltration campaign onto the published epoch
func (h *GenerateHandler) InjectScenario(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	var req ScenarioRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	injected, err := h.generatorService.InjectScenario(ctx, req.DaysBack, req.EventCount, req.Seed)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed to inject scenario")
		return
	}

	h.respondWithJSON(w, http.StatusCreated, successResponse(
		map[string]int{"injected_written": injected}, "Scenario injected"))
	h.logger.Info("Scenario injected via HTTP",
		util.Int("injected_written", injected),
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "InjectScenario"),
	)
}

// Helper Methods

// decodeAndValidate decodes the JSON body and runs struct validation. An
// empty body is allowed for requests whose fields all have defaults.
func (h *GenerateHandler) decodeAndValidate(r *http.Request, req interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return h.validate.Struct(req)
}

// respondWithJSON sends a JSON response
func (h *GenerateHandler) respondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", util.ErrorField(err))
	}
}

// respondWithError sends an error response
func (h *GenerateHandler) respondWithError(w http.ResponseWriter, statusCode int, err error, message string) {
	h.logger.Warn("HTTP error response",
		util.ErrorField(err),
		util.Int("status_code", statusCode),
		util.String("message", message),
	)
	h.respondWithJSON(w, statusCode, errorResponse(err, message))
}

// getStatusCode determines the appropriate HTTP status code for an error
func (h *GenerateHandler) getStatusCode(err error) int {
	switch {
	case errors.Is(err, epoch.ErrBuildInProgress):
		return http.StatusConflict
	case errors.Is(err, epoch.ErrNoPublishedEpoch), errors.Is(err, service.ErrNoCatalog):
		return http.StatusPreconditionFailed
	case errors.Is(err, catalog.ErrInvalidCount),
		errors.Is(err, synth.ErrInvalidWindow),
		errors.Is(err, synth.ErrInvalidVolume),
		errors.Is(err, synth.ErrEmptyCatalog),
		errors.Is(err, synth.ErrNoActiveIndicators):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
