package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Jirawatp058/random-buddy/internal/model"
	"github.com/Jirawatp058/random-buddy/internal/services/exchange"
	"github.com/Jirawatp058/random-buddy/internal/web/middleware"
	"github.com/Jirawatp058/random-buddy/internal/web/templates/layout"
	"github.com/Jirawatp058/random-buddy/internal/web/templates/pages"
)

// HomeHandler serves the participant-facing pages
type HomeHandler struct {
	controller *exchange.Controller
	logger     *slog.Logger
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(controller *exchange.Controller, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{
		controller: controller,
		logger:     logger,
	}
}

// Home renders the registration form while open, or the reveal form once matched
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	ex, err := h.controller.Status(r.Context())
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	data := pages.HomeData{
		PageData: layout.PageData{
			Title: "ลงทะเบียน",
			Flash: middleware.GetFlash(r.Context()),
		},
		Open:          ex.IsOpen(),
		StandardSizes: StandardSizes,
		Name:          r.URL.Query().Get("name"),
	}
	if data.Open {
		participants, err := h.controller.ListParticipants(r.Context())
		if err != nil {
			renderError(w, r, h.logger, err)
			return
		}
		for _, p := range participants {
			data.Participants = append(data.Participants, pages.ParticipantTag{Name: p.Name})
		}
	}

	render(w, r, h.logger, http.StatusOK, pages.Home(data))
}

// Register handles the registration form
func (h *HomeHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, "error", "ข้อมูลในฟอร์มไม่ถูกต้อง")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	password := r.FormValue("password")
	size, err := formatSize(r.FormValue("size_type"), r.FormValue("size_std"), r.FormValue("size_inch"))
	if err != nil {
		middleware.SetFlash(w, "error", "กรุณาเลือกไซส์ หรือระบุรอบอกเป็นตัวเลข")
		redirectHome(w, r, name)
		return
	}

	p, err := h.controller.Register(r.Context(), name, password, size)
	if err != nil {
		middleware.SetFlash(w, "error", userMessage(err))
		redirectHome(w, r, name)
		return
	}

	middleware.SetFlash(w, "success", "ลงทะเบียนสำเร็จ! "+p.Name+" จำรหัสผ่านไว้ดูผลด้วยนะ")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Check authenticates a participant and shows their assignment
func (h *HomeHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, "error", "ข้อมูลในฟอร์มไม่ถูกต้อง")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	reveal, err := h.controller.Reveal(r.Context(), name, r.FormValue("password"))
	if err != nil {
		if errors.Is(err, model.ErrBackendFailure) {
			renderError(w, r, h.logger, err)
			return
		}
		// Unknown names get the same answer as a wrong password.
		if errors.Is(err, model.ErrParticipantNotFound) {
			err = model.ErrBadCredential
		}
		middleware.SetFlash(w, "error", userMessage(err))
		redirectHome(w, r, name)
		return
	}

	data := pages.RevealData{
		PageData:      layout.PageData{Title: "ผลการจับคู่"},
		Giver:         reveal.Giver,
		Recipient:     reveal.Recipient,
		RecipientSize: reveal.RecipientSize,
	}
	w.Header().Set("Cache-Control", "no-store")
	render(w, r, h.logger, http.StatusOK, pages.Reveal(data))
}

func redirectHome(w http.ResponseWriter, r *http.Request, name string) {
	target := "/"
	if name != "" {
		target += "?name=" + url.QueryEscape(name)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
