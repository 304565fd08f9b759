package http

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/screentime-labs/tracker/backend/internal/account/domain"
	"github.com/screentime-labs/tracker/backend/internal/account/service"
	"github.com/screentime-labs/tracker/backend/internal/common/config"
	commonhttp "github.com/screentime-labs/tracker/backend/internal/common/http"
	"github.com/screentime-labs/tracker/backend/internal/common/logger"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerResponse struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

type loginResponse struct {
	User  domain.Summary `json:"user"`
	Token string         `json:"token"`
}

type usersResponse struct {
	Users []domain.Summary `json:"users"`
}

type Handler struct {
	accounts *service.AccountService
	validate *validator.Validate
	log      *logger.Logger
}

func NewHandler(accounts *service.AccountService, cfg config.Config, log *logger.Logger) http.Handler {
	h := &Handler{
		accounts: accounts,
		validate: validator.New(),
		log:      log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/register", commonhttp.RequireMethod(http.MethodPost)(commonhttp.WithTimeout(cfg.RequestTimeout)(h.register)))
	mux.HandleFunc("/api/login", commonhttp.RequireMethod(http.MethodPost)(commonhttp.WithTimeout(cfg.RequestTimeout)(h.login)))
	mux.HandleFunc("/api/users", commonhttp.RequireMethod(http.MethodGet)(commonhttp.WithTimeout(cfg.RequestTimeout)(h.listUsers)))
	return mux
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("register failed: invalid json: %v", err)
		commonhttp.WriteError(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	result, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, registerResponse{
		UserID: string(result.Account.ID),
		Token:  result.Token,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("login failed: invalid json: %v", err)
		commonhttp.WriteError(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	result, err := h.accounts.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, loginResponse{
		User:  result.Account,
		Token: result.Token,
	})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListAccounts(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, usersResponse{Users: users})
}

func (h *Handler) writeValidationError(w http.ResponseWriter, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		if fieldErrs[0].Tag() == "required" {
			commonhttp.WriteError(w, http.StatusBadRequest, "MISSING_FIELDS", "missing required fields")
			return
		}
		commonhttp.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid field: "+fieldErrs[0].Field())
		return
	}
	commonhttp.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "validation failed")
}
