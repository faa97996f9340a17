package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Jirawatp058/random-buddy/internal/api/apierr"
	"github.com/Jirawatp058/random-buddy/internal/api/middleware"
	"github.com/Jirawatp058/random-buddy/internal/api/request"
	"github.com/Jirawatp058/random-buddy/internal/api/response"
	"github.com/Jirawatp058/random-buddy/internal/model"
	"github.com/Jirawatp058/random-buddy/internal/services/auth"
	"github.com/Jirawatp058/random-buddy/internal/services/exchange"
)

// AdminHandler handles the administrative endpoints
type AdminHandler struct {
	authService *auth.Service
	controller  *exchange.Controller
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(authService *auth.Service, controller *exchange.Controller) *AdminHandler {
	return &AdminHandler{
		authService: authService,
		controller:  controller,
	}
}

// Login handles POST /api/v1/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	session, err := h.authService.AdminLogin(req.Password)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AdminSessionFromSession(session))
}

// Logout handles POST /api/v1/admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session := middleware.GetSession(r.Context()); session != nil {
		h.authService.InvalidateSession(session.Token)
	}
	response.NoContent(w)
}

// ListParticipants handles GET /api/v1/admin/participants
func (h *AdminHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	ps, err := h.controller.ListParticipants(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AdminParticipantsFromModel(ps))
}

// RemoveParticipant handles DELETE /api/v1/admin/participants/{name}
func (h *AdminHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(mux.Vars(r)["name"])
	name = strings.TrimSpace(name)
	if err != nil || name == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid participant name"))
		return
	}

	if err := h.controller.RemoveParticipant(r.Context(), name); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// ListExclusions handles GET /api/v1/admin/exclusions
func (h *AdminHandler) ListExclusions(w http.ResponseWriter, r *http.Request) {
	pairs, err := h.controller.ListExclusions(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ExclusionsFromModel(pairs))
}

// AddExclusion handles POST /api/v1/admin/exclusions
func (h *AdminHandler) AddExclusion(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeExclusion(w, r)
	if !ok {
		return
	}

	if err := h.controller.SetExclusion(r.Context(), req.A, req.B); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// RemoveExclusion handles POST /api/v1/admin/exclusions/remove
func (h *AdminHandler) RemoveExclusion(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeExclusion(w, r)
	if !ok {
		return
	}

	if err := h.controller.ClearExclusion(r.Context(), req.A, req.B); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}

func decodeExclusion(w http.ResponseWriter, r *http.Request) (request.ExclusionRequest, bool) {
	var req request.ExclusionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return req, false
	}
	req.A, req.B = strings.TrimSpace(req.A), strings.TrimSpace(req.B)
	if req.A == "" || req.B == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("a and b are required"))
		return req, false
	}
	return req, true
}

// Feasibility handles GET /api/v1/admin/feasibility
func (h *AdminHandler) Feasibility(w http.ResponseWriter, r *http.Request) {
	ok, err := h.controller.Feasibility(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Feasibility{Feasible: ok})
}

// Match handles POST /api/v1/admin/match
func (h *AdminHandler) Match(w http.ResponseWriter, r *http.Request) {
	result, err := h.controller.RunMatch(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchFromResult(result))
}

// Reset handles POST /api/v1/admin/reset
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Reset(r.Context()); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Reset{
		State:  string(model.ExchangeStateOpen),
		Policy: string(h.controller.ResetPolicy()),
	})
}
