package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"cybercommand/internal/config"
	"cybercommand/internal/detect"
	"cybercommand/internal/service"
	"cybercommand/internal/util"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultDomainLimit = 20

// HuntHandler handles HTTP requests for threat hunting queries
type HuntHandler struct {
	huntService *service.HuntService
	cfg         *config.Config
	logger      *zap.Logger
}

// NewHuntHandler creates a new hunt handler
func NewHuntHandler(huntService *service.HuntService, cfg *config.Config, logger *zap.Logger) *HuntHandler {
	return &HuntHandler{
		huntService: huntService,
		cfg:         cfg,
		logger:      logger,
	}
}

// RegisterRoutes registers all hunting and analytics routes
func (h *HuntHandler) RegisterRoutes(router chi.Router) {
	router.Route("/hunt", func(r chi.Router) {
		r.Get("/exfiltration", h.Exfiltration)
		r.Get("/impossible-travel", h.ImpossibleTravel)
		r.Get("/behavior", h.BehavioralAnomalies)
		r.Get("/lateral-movement", h.LateralMovement)
		r.Get("/composite/{userID}", h.CompositeScore)
		r.Get("/failed-logins", h.FailedLoginBursts)
		r.Get("/intel-matches", h.ThreatIntelMatches)
	})

	router.Route("/analytics", func(r chi.Router) {
		r.Get("/protocols", h.ProtocolBreakdown)
		r.Get("/domains", h.TopDestinationDomains)
		r.Get("/users", h.UserActivityProfiles)
	})
}

// Exfiltration returns users moving anomalous volumes to external hosts
func (h *HuntHandler) Exfiltration(w http.ResponseWriter, r *http.Request) {
	daysBack, err := h.queryInt(r, "days", h.cfg.Detection.RecentWindowDays)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid days parameter")
		return
	}

	findings, err := h.huntService.Exfiltration(r.Context(), daysBack)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Exfiltration hunt failed")
		return
	}
	h.respondFindings(w, "Exfiltration", findings, len(findings))
}

// ImpossibleTravel returns login pairs too far apart for the elapsed time
func (h *HuntHandler) ImpossibleTravel(w http.ResponseWriter, r *http.Request) {
	hours, err := h.queryInt(r, "hours", h.cfg.Detection.TravelHoursThreshold)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid hours parameter")
		return
	}

	findings, err := h.huntService.ImpossibleTravel(r.Context(), hours)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Impossible travel hunt failed")
		return
	}
	h.respondFindings(w, "ImpossibleTravel", findings, len(findings))
}

// BehavioralAnomalies returns users with unusual after-hours activity
func (h *HuntHandler) BehavioralAnomalies(w http.ResponseWriter, r *http.Request) {
	findings, err := h.huntService.BehavioralAnomalies(r.Context())
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Behavioral anomaly hunt failed")
		return
	}
	h.respondFindings(w, "BehavioralAnomalies", findings, len(findings))
}

// LateralMovement returns internal fan-out spikes against per-pair baselines
func (h *HuntHandler) LateralMovement(w http.ResponseWriter, r *http.Request) {
	findings, err := h.huntService.LateralMovement(r.Context())
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Lateral movement hunt failed")
		return
	}
	h.respondFindings(w, "LateralMovement", findings, len(findings))
}

// CompositeScore returns the multi-metric anomaly score for one user
func (h *HuntHandler) CompositeScore(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		h.respondWithError(w, http.StatusBadRequest, errors.New("user ID is required"), "User ID is required")
		return
	}

	finding, err := h.huntService.CompositeScore(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Composite score failed")
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse(finding, "Composite score computed"))
}

// FailedLoginBursts returns source IPs with brute-force sized failure counts
func (h *HuntHandler) FailedLoginBursts(w http.ResponseWriter, r *http.Request) {
	daysBack, err := h.queryInt(r, "days", h.cfg.Detection.RecentWindowDays)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid days parameter")
		return
	}

	findings, err := h.huntService.FailedLoginBursts(r.Context(), daysBack)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed login hunt failed")
		return
	}
	h.respondFindings(w, "FailedLoginBursts", findings, len(findings))
}

// ThreatIntelMatches returns traffic that hit known bad IPs or domains
func (h *HuntHandler) ThreatIntelMatches(w http.ResponseWriter, r *http.Request) {
	daysBack, err := h.queryInt(r, "days", h.cfg.Detection.RecentWindowDays)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid days parameter")
		return
	}

	findings, err := h.huntService.ThreatIntelMatches(r.Context(), daysBack)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Threat intel hunt failed")
		return
	}
	h.respondFindings(w, "ThreatIntelMatches", findings, len(findings))
}

// ProtocolBreakdown returns traffic volume shares per protocol
func (h *HuntHandler) ProtocolBreakdown(w http.ResponseWriter, r *http.Request) {
	daysBack, err := h.queryInt(r, "days", h.cfg.Detection.RecentWindowDays)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid days parameter")
		return
	}

	stats, err := h.huntService.ProtocolBreakdown(r.Context(), daysBack)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Protocol breakdown failed")
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse(stats, "Protocol breakdown computed"))
}

// TopDestinationDomains returns the most contacted destination domains
func (h *HuntHandler) TopDestinationDomains(w http.ResponseWriter, r *http.Request) {
	daysBack, err := h.queryInt(r, "days", h.cfg.Detection.RecentWindowDays)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid days parameter")
		return
	}
	limit, err := h.queryInt(r, "limit", defaultDomainLimit)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid limit parameter")
		return
	}

	stats, err := h.huntService.TopDestinationDomains(r.Context(), daysBack, limit)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Domain ranking failed")
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse(stats, "Top destination domains computed"))
}

// UserActivityProfiles returns per-user traffic summaries
func (h *HuntHandler) UserActivityProfiles(w http.ResponseWriter, r *http.Request) {
	daysBack, err := h.queryInt(r, "days", h.cfg.Detection.RecentWindowDays)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid days parameter")
		return
	}

	profiles, err := h.huntService.UserActivityProfiles(r.Context(), daysBack)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "User activity profiling failed")
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse(profiles, "User activity profiles computed"))
}

// Helper Methods

func (h *HuntHandler) queryInt(r *http.Request, key string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter: %w", key, err)
	}
	return value, nil
}

func (h *HuntHandler) respondFindings(w http.ResponseWriter, method string, findings interface{}, count int) {
	startTime := time.Now()
	h.respondWithJSON(w, http.StatusOK, successResponse(findings, "Hunt completed"))
	h.logger.Debug("Hunt completed via HTTP",
		util.String("method", method),
		util.Int("finding_count", count),
		util.Duration("duration", time.Since(startTime)),
	)
}

// respondWithJSON sends a JSON response
func (h *HuntHandler) respondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", util.ErrorField(err))
	}
}

// respondWithError sends an error response
func (h *HuntHandler) respondWithError(w http.ResponseWriter, statusCode int, err error, message string) {
	h.logger.Warn("HTTP error response",
		util.ErrorField(err),
		util.Int("status_code", statusCode),
		util.String("message", message),
	)
	h.respondWithJSON(w, statusCode, errorResponse(err, message))
}

// getStatusCode determines the appropriate HTTP status code for an error
func (h *HuntHandler) getStatusCode(err error) int {
	switch {
	case errors.Is(err, detect.ErrInvalidWindow), errors.Is(err, detect.ErrEmptyUserID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
