// internal/handler/email_handler.go
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	appErrors "github.com/unclebandit/coldmail-tracker/internal/errors"
	"github.com/unclebandit/coldmail-tracker/internal/pkg/httputil"
	"github.com/unclebandit/coldmail-tracker/internal/service"
	"github.com/unclebandit/coldmail-tracker/internal/status"
)

// EmailHandler holds the routes built on the status rules: stats, the raw
// status filter and the toggle actions.
type EmailHandler struct {
	Service *service.EmailService
}

func NewEmailHandler(svc *service.EmailService) *EmailHandler {
	return &EmailHandler{Service: svc}
}

// StatsHandler returns the aggregate counts and rates.
func (h *EmailHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	st, err := h.Service.Stats(r.Context())
	if err != nil {
		httputil.InternalError(w, r, err, "Failed to fetch statistics")
		return
	}
	httputil.OK(w, st)
}

// FilterByStatusHandler matches the stored status label exactly.
func (h *EmailHandler) FilterByStatusHandler(w http.ResponseWriter, r *http.Request) {
	emails, err := h.Service.FilterByStatus(r.Context(), chi.URLParam(r, "status"))
	if err != nil {
		httputil.InternalError(w, r, err, "Failed to filter emails")
		return
	}
	httputil.OK(w, emails)
}

// ToggleHandler flips one of opened, replied or followed-up.
func (h *EmailHandler) ToggleHandler(w http.ResponseWriter, r *http.Request) {
	field, err := status.ParseField(chi.URLParam(r, "field"))
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	email, err := h.Service.ToggleEmail(r.Context(), id, field)
	if err != nil {
		if appErrors.IsNotFound(err) {
			httputil.NotFound(w, appErrors.NotFoundMessage)
			return
		}
		httputil.InternalError(w, r, err, "Failed to update email")
		return
	}

	logrus.WithFields(logrus.Fields{
		"email_id": id,
		"field":    field,
		"status":   email.Status,
	}).Debug("toggled signal")
	httputil.OK(w, email)
}
