// internal/controller/email_controller.go
package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/unclebandit/coldmail-tracker/internal/errors"
	"github.com/unclebandit/coldmail-tracker/internal/model"
	"github.com/unclebandit/coldmail-tracker/internal/pkg/httputil"
	"github.com/unclebandit/coldmail-tracker/internal/service"
)

// EmailController serves the CRUD routes of the record collection.
type EmailController struct {
	EmailService *service.EmailService
}

// ListEmails returns every record, newest first. ?view= narrows the list by
// derived status.
func (c *EmailController) ListEmails(w http.ResponseWriter, r *http.Request) {
	emails, err := c.EmailService.ListEmails(r.Context(), r.URL.Query().Get("view"))
	if err != nil {
		httputil.InternalError(w, r, err, "Failed to fetch emails")
		return
	}
	httputil.OK(w, emails)
}

func (c *EmailController) GetEmail(w http.ResponseWriter, r *http.Request) {
	email, err := c.EmailService.GetEmail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if appErrors.IsNotFound(err) {
			httputil.NotFound(w, appErrors.NotFoundMessage)
			return
		}
		httputil.InternalError(w, r, err, "Failed to fetch email")
		return
	}
	httputil.OK(w, email)
}

// CreateEmail ignores any status or signal fields in the body.
func (c *EmailController) CreateEmail(w http.ResponseWriter, r *http.Request) {
	var body model.CreateEmailInput
	if !httputil.Decode(w, r, &body) {
		return
	}

	email, err := c.EmailService.CreateEmail(r.Context(), body)
	if err != nil {
		httputil.InternalError(w, r, err, "Failed to create email")
		return
	}
	httputil.Created(w, email)
}

func (c *EmailController) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	var body model.EmailUpdate
	if !httputil.Decode(w, r, &body) {
		return
	}

	email, err := c.EmailService.UpdateEmail(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		if appErrors.IsNotFound(err) {
			httputil.NotFound(w, appErrors.NotFoundMessage)
			return
		}
		httputil.InternalError(w, r, err, "Failed to update email")
		return
	}
	httputil.OK(w, email)
}

// DeleteEmail answers with the same message whether or not the record existed.
func (c *EmailController) DeleteEmail(w http.ResponseWriter, r *http.Request) {
	if err := c.EmailService.DeleteEmail(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.InternalError(w, r, err, "Failed to delete email")
		return
	}
	httputil.Message(w, "Email deleted successfully")
}
