package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Jirawatp058/random-buddy/internal/model"
	"github.com/Jirawatp058/random-buddy/internal/services/auth"
	"github.com/Jirawatp058/random-buddy/internal/services/exchange"
	"github.com/Jirawatp058/random-buddy/internal/web/middleware"
	"github.com/Jirawatp058/random-buddy/internal/web/templates/layout"
	"github.com/Jirawatp058/random-buddy/internal/web/templates/pages"
)

const dashboardPath = "/admin/dashboard"

// AdminHandler serves the admin pages and actions
type AdminHandler struct {
	authService *auth.Service
	controller  *exchange.Controller
	logger      *slog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(authService *auth.Service, controller *exchange.Controller, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		authService: authService,
		controller:  controller,
		logger:      logger,
	}
}

// LoginPage renders the admin login form, skipping it for an active session
func (h *AdminHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCookie(r, h.authService) != nil {
		http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
		return
	}
	data := layout.PageData{
		Title: "Admin",
		Flash: middleware.GetFlash(r.Context()),
	}
	render(w, r, h.logger, http.StatusOK, pages.AdminLogin(data))
}

// Login checks the admin password and starts a session
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, "error", "ข้อมูลในฟอร์มไม่ถูกต้อง")
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	session, err := h.authService.AdminLogin(r.FormValue("password"))
	if err != nil {
		h.logger.Warn("admin login failed",
			slog.String("remote_addr", r.RemoteAddr),
		)
		middleware.SetFlash(w, "error", "รหัสผ่านผู้ดูแลไม่ถูกต้อง")
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	middleware.SetAdminCookie(w, session)
	http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
}

// Logout ends the admin session
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session := middleware.SessionFromCookie(r, h.authService); session != nil {
		h.authService.InvalidateSession(session.Token)
	}
	middleware.ClearAdminCookie(w)
	middleware.SetFlash(w, "info", "ออกจากระบบแล้ว")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Dashboard renders the exchange state, roster and controls
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ex, err := h.controller.Status(ctx)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}
	participants, err := h.controller.ListParticipants(ctx)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}
	exclusions, err := h.controller.ListExclusions(ctx)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}
	feasible := true
	if ex.IsOpen() {
		if feasible, err = h.controller.Feasibility(ctx); err != nil {
			renderError(w, r, h.logger, err)
			return
		}
	}

	data := pages.DashboardData{
		PageData: layout.PageData{
			Title: "จัดการระบบ",
			Admin: true,
			Flash: middleware.GetFlash(ctx),
		},
		Open:        ex.IsOpen(),
		MatchedAt:   ex.MatchedAt,
		Feasible:    feasible,
		ResetPolicy: string(h.controller.ResetPolicy()),
	}
	for _, p := range participants {
		data.Participants = append(data.Participants, pages.DashboardParticipant{
			Name:    p.Name,
			Size:    p.Size,
			Matched: p.Recipient != "",
			Viewed:  p.Viewed,
		})
	}
	for _, e := range exclusions {
		data.Exclusions = append(data.Exclusions, pages.DashboardExclusion{A: e.A, B: e.B})
	}

	render(w, r, h.logger, http.StatusOK, pages.Dashboard(data))
}

// AddExclusion forbids two participants from drawing each other
func (h *AdminHandler) AddExclusion(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	a, b := r.FormValue("a"), r.FormValue("b")
	if a == b {
		middleware.SetFlash(w, "error", "เลือกผู้ลงทะเบียนสองคนที่ต่างกัน")
		http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
		return
	}
	h.done(w, r, h.controller.SetExclusion(r.Context(), a, b), "เพิ่มคู่ห้าม "+a+" ❌ "+b)
}

// RemoveExclusion lifts an exclusion
func (h *AdminHandler) RemoveExclusion(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	a, b := r.FormValue("a"), r.FormValue("b")
	h.done(w, r, h.controller.ClearExclusion(r.Context(), a, b), "ลบคู่ห้าม "+a+" ❌ "+b)
}

// RemoveParticipant deletes a participant from the roster
func (h *AdminHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	name := r.FormValue("name")
	h.done(w, r, h.controller.RemoveParticipant(r.Context(), name), "ลบ "+name+" แล้ว")
}

// Match runs the draw and closes registration
func (h *AdminHandler) Match(w http.ResponseWriter, r *http.Request) {
	result, err := h.controller.RunMatch(r.Context())
	if err != nil {
		h.done(w, r, err, "")
		return
	}
	h.done(w, r, nil, "✅ จับคู่สำเร็จ "+strconv.Itoa(result.Participants)+" คน ปิดรับสมัครแล้ว แจ้งให้ทุกคนเข้ามาดูผลได้เลย")
}

// Reset reopens registration according to the configured policy
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, h.controller.Reset(r.Context()), "🗑️ ล้างระบบเรียบร้อย พร้อมเริ่มรอบใหม่แล้ว")
}

func (h *AdminHandler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, "error", "ข้อมูลในฟอร์มไม่ถูกต้อง")
		http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
		return false
	}
	return true
}

// done flashes the outcome of an admin action and returns to the dashboard
func (h *AdminHandler) done(w http.ResponseWriter, r *http.Request, err error, success string) {
	switch {
	case err == nil:
		middleware.SetFlash(w, "success", success)
	case errors.Is(err, model.ErrBackendFailure):
		renderError(w, r, h.logger, err)
		return
	default:
		middleware.SetFlash(w, "error", userMessage(err))
	}
	http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
}
