package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/screentime-labs/tracker/backend/internal/common/config"
	commonhttp "github.com/screentime-labs/tracker/backend/internal/common/http"
	"github.com/screentime-labs/tracker/backend/internal/common/logger"
	"github.com/screentime-labs/tracker/backend/internal/tracker/domain"
	"github.com/screentime-labs/tracker/backend/internal/tracker/service"
	"github.com/screentime-labs/tracker/backend/internal/tracker/ws"
)

type createRequest struct {
	UserID     string `json:"user_id" validate:"required,uuid4"`
	WebsiteURL string `json:"website_url" validate:"required,max=255"`
	TimeLimit  int    `json:"time_limit" validate:"required,gt=0"`
}

type updateTimeRequest struct {
	UserID     string `json:"user_id" validate:"required,uuid4"`
	WebsiteURL string `json:"website_url" validate:"required,max=255"`
	TimeUsed   *int   `json:"time_used" validate:"required,gte=0"`
}

type websiteResponse struct {
	ID         string `json:"id"`
	WebsiteURL string `json:"website_url"`
	TimeLimit  int    `json:"time_limit"`
	TimeUsed   int    `json:"time_used"`
	LastReset  string `json:"last_reset"`
}

type websitesResponse struct {
	Websites []websiteResponse `json:"websites"`
}

type createResponse struct {
	WebsiteID string `json:"website_id"`
}

type Handler struct {
	tracker  *service.TrackerService
	hub      *ws.Hub
	validate *validator.Validate
	log      *logger.Logger
}

func NewHandler(tracker *service.TrackerService, hub *ws.Hub, cfg config.Config, log *logger.Logger) http.Handler {
	h := &Handler{
		tracker:  tracker,
		hub:      hub,
		validate: validator.New(),
		log:      log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/websites", commonhttp.WithTimeout(cfg.RequestTimeout)(h.websites))
	mux.HandleFunc("/api/websites/update-time", commonhttp.RequireMethod(http.MethodPost)(commonhttp.WithTimeout(cfg.RequestTimeout)(h.updateTime)))
	mux.HandleFunc("/api/websites/export", commonhttp.RequireMethod(http.MethodGet)(commonhttp.WithTimeout(cfg.RequestTimeout)(h.export)))
	mux.HandleFunc("/api/websites/", commonhttp.RequireMethod(http.MethodDelete)(commonhttp.WithTimeout(cfg.RequestTimeout)(h.deleteWebsite)))
	mux.HandleFunc("/api/db-status", commonhttp.RequireMethod(http.MethodGet)(commonhttp.WithTimeout(cfg.RequestTimeout)(h.dbStatus)))
	mux.HandleFunc("/ws/usage", h.usageFeed)
	return mux
}

func (h *Handler) websites(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listWebsites(w, r)
	case http.MethodPost:
		h.createWebsite(w, r)
	default:
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) listWebsites(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	limits, err := h.tracker.List(r.Context(), accountID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	resp := websitesResponse{Websites: make([]websiteResponse, 0, len(limits))}
	for _, l := range limits {
		resp.Websites = append(resp.Websites, toWebsiteResponse(l))
	}
	commonhttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) createWebsite(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("create website failed: invalid json: %v", err)
		commonhttp.WriteError(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	limit, err := h.tracker.Create(r.Context(), service.CreateInput{
		AccountID:  domain.AccountID(req.UserID),
		WebsiteURL: req.WebsiteURL,
		TimeLimit:  req.TimeLimit,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, createResponse{WebsiteID: string(limit.ID)})
}

func (h *Handler) deleteWebsite(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/websites/")
	if id == "" || strings.Contains(id, "/") {
		commonhttp.WriteError(w, http.StatusBadRequest, commonhttp.CodeInvalidPath, "invalid path")
		return
	}
	if err := commonhttp.ValidateUUID(id); err != nil {
		commonhttp.WriteError(w, http.StatusBadRequest, commonhttp.CodeInvalidIDFormat, "invalid website id")
		return
	}

	accountID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.tracker.Delete(r.Context(), domain.ID(id), accountID); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) updateTime(w http.ResponseWriter, r *http.Request) {
	var req updateTimeRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("update time failed: invalid json: %v", err)
		commonhttp.WriteError(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	err := h.tracker.UpdateUsage(r.Context(), service.UpdateUsageInput{
		AccountID:  domain.AccountID(req.UserID),
		WebsiteURL: req.WebsiteURL,
		TimeUsed:   *req.TimeUsed,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	records, err := h.tracker.Export(r.Context(), accountID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) dbStatus(w http.ResponseWriter, r *http.Request) {
	report, err := h.tracker.Status(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) usageFeed(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	h.hub.Serve(w, r, string(accountID))
}

func (h *Handler) requireUserID(w http.ResponseWriter, r *http.Request) (domain.AccountID, bool) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		commonhttp.WriteError(w, http.StatusBadRequest, commonhttp.CodeUserIDRequired, "user_id is required")
		return "", false
	}
	if err := commonhttp.ValidateUUID(userID); err != nil {
		commonhttp.WriteError(w, http.StatusBadRequest, commonhttp.CodeInvalidIDFormat, "invalid user_id")
		return "", false
	}
	return domain.AccountID(userID), true
}

func (h *Handler) writeValidationError(w http.ResponseWriter, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Tag() {
		case "required":
			commonhttp.WriteError(w, http.StatusBadRequest, "MISSING_FIELDS", "missing required fields")
		case "gt":
			commonhttp.WriteError(w, http.StatusBadRequest, "INVALID_TIME_LIMIT", "time_limit must be a positive number of minutes")
		case "gte":
			commonhttp.WriteError(w, http.StatusBadRequest, "INVALID_TIME_USED", "time_used must be a non-negative number of minutes")
		default:
			commonhttp.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid field: "+fe.Field())
		}
		return
	}
	commonhttp.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "validation failed")
}

func toWebsiteResponse(l domain.WebsiteLimit) websiteResponse {
	return websiteResponse{
		ID:         string(l.ID),
		WebsiteURL: l.WebsiteURL,
		TimeLimit:  l.TimeLimit,
		TimeUsed:   l.TimeUsed,
		LastReset:  l.LastReset.Format(domain.DateLayout),
	}
}
