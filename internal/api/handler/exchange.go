package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Jirawatp058/random-buddy/internal/api/apierr"
	"github.com/Jirawatp058/random-buddy/internal/api/request"
	"github.com/Jirawatp058/random-buddy/internal/api/response"
	"github.com/Jirawatp058/random-buddy/internal/model"
	"github.com/Jirawatp058/random-buddy/internal/services/exchange"
)

// ExchangeHandler handles the public participant endpoints
type ExchangeHandler struct {
	controller *exchange.Controller
}

// NewExchangeHandler creates a new exchange handler
func NewExchangeHandler(controller *exchange.Controller) *ExchangeHandler {
	return &ExchangeHandler{
		controller: controller,
	}
}

// Get handles GET /api/v1/exchange
func (h *ExchangeHandler) Get(w http.ResponseWriter, r *http.Request) {
	ex, err := h.controller.Status(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	participants, err := h.controller.ListParticipants(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ExchangeFromModel(ex, participants))
}

// Register handles POST /api/v1/participants
func (h *ExchangeHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	req.Name, req.Size = strings.TrimSpace(req.Name), strings.TrimSpace(req.Size)
	if req.Name == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("name is required"))
		return
	}
	if req.Password == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("password is required"))
		return
	}
	if req.Size == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("size is required"))
		return
	}

	p, err := h.controller.Register(r.Context(), req.Name, req.Password, req.Size)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.ParticipantFromModel(p))
}

// Reveal handles POST /api/v1/reveal
func (h *ExchangeHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	var req request.RevealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Password == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("name and password are required"))
		return
	}

	reveal, err := h.controller.Reveal(r.Context(), req.Name, req.Password)
	if errors.Is(err, model.ErrParticipantNotFound) {
		// Do not reveal which names are registered.
		err = model.ErrBadCredential
	}
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.Private(w)
	response.JSON(w, http.StatusOK, response.RevealFromModel(reveal))
}
