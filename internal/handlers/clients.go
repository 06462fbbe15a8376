package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/diewo77/go-records/httpx"
	"github.com/diewo77/go-records/internal/forms"
	"github.com/diewo77/go-records/internal/models"
	"github.com/diewo77/go-records/internal/services"
	"github.com/diewo77/go-records/internal/store"
	"github.com/diewo77/go-records/validation"
)

const (
	msgSaveFailed = "Unable to save changes. Try again, and if the problem persists contact your administrator."
	msgConflict   = "This record was modified by someone else. Reload the page and try again."
)

type ClientHandler struct {
	*Pages
	svc *services.ClientService
}

func NewClientHandler(p *Pages, svc *services.ClientService) *ClientHandler {
	return &ClientHandler{Pages: p, svc: svc}
}

// clientPage is the data of the client form template.
type clientPage struct {
	Title     string
	Action    string
	Form      *forms.ClientForm
	Errors    validation.Violations
	People    []models.Person
	ReadOnly  bool
	IsDeleted bool
	Alert     string
}

func (h *ClientHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, pg clientPage) {
	if pg.Errors == nil {
		pg.Errors = validation.Violations{}
	}
	h.render(w, r, status, "clients/form.html", map[string]any{
		"Title":     pg.Title,
		"Action":    pg.Action,
		"Form":      pg.Form,
		"Errors":    pg.Errors,
		"People":    pg.People,
		"ReadOnly":  pg.ReadOnly,
		"IsDeleted": pg.IsDeleted,
		"Alert":     pg.Alert,
	})
}

// List handles GET /clients.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	includeDeleted := showDeleted(r)
	log := h.entry(r)
	log.WithField("show_deleted", includeDeleted).Info("GET Clients Index called")

	clients, err := h.svc.List(r.Context(), includeDeleted)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	log.Debugf("Index returned %d clients", len(clients))
	h.render(w, r, http.StatusOK, "clients/index.html", map[string]any{
		"Clients":     clients,
		"ShowDeleted": includeDeleted,
	})
}

// load resolves {id} to a client, answering 404 itself when it can't.
func (h *ClientHandler) load(w http.ResponseWriter, r *http.Request) (*models.Client, bool) {
	id, ok := pathID(r)
	if !ok {
		h.entry(r).Warn("client route called with an invalid id")
		h.NotFound(w, r)
		return nil, false
	}
	c, err := h.svc.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.entry(r).WithField("client_id", id).Warn("Client not found")
		h.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		h.Error(w, r, err)
		return nil, false
	}
	return c, true
}

// View handles GET /clients/{id}: a read-only form listing active contacts.
func (h *ClientHandler) View(w http.ResponseWriter, r *http.Request) {
	h.entry(r).WithField("id", chiID(r)).Info("GET Clients Details called")
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	contacts, err := h.svc.Contacts(r.Context(), c.ID)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.entry(r).WithField("client_id", c.ID).Debugf("Details returning form with %d contacts", len(contacts))
	h.renderForm(w, r, http.StatusOK, clientPage{
		Title:     c.CompanyName,
		Form:      forms.FromClient(c, contacts),
		People:    contacts,
		ReadOnly:  true,
		IsDeleted: c.IsDeleted,
	})
}

// New handles GET /clients/new.
func (h *ClientHandler) New(w http.ResponseWriter, r *http.Request) {
	h.entry(r).Info("GET Clients Create called")
	people, err := h.svc.EligiblePeople(r.Context(), 0)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.renderForm(w, r, http.StatusOK, clientPage{
		Title:  "New client",
		Action: "/clients",
		Form:   &forms.ClientForm{},
		People: people,
	})
}

// Create handles POST /clients.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	f, err := forms.DecodeClient(r)
	if err != nil {
		h.entry(r).WithError(err).Warn("invalid client form")
		h.Status(w, r, http.StatusBadRequest, "The submitted form could not be read.")
		return
	}
	log := h.entry(r).WithField("company", f.CompanyName)
	log.Info("POST Clients Create called")

	page := clientPage{Title: "New client", Action: "/clients", Form: f}
	if v := f.Validate(); !v.Empty() {
		log.Info("Create validation failed")
		page.Errors = v
		h.renderCreateForm(w, r, http.StatusUnprocessableEntity, page)
		return
	}

	c := f.ToEntity()
	if _, err := h.svc.Create(r.Context(), c, f.SelectedPeople); err != nil {
		log.WithError(err).Error("creating client failed")
		page.Alert = msgSaveFailed
		h.renderCreateForm(w, r, http.StatusInternalServerError, page)
		return
	}

	log.WithField("client_id", c.ID).Infof("Created client %d (%s)", c.ID, c.CompanyName)
	httpx.SetToast(w, httpx.Toast{Type: httpx.ToastSuccess, Message: "Client created successfully!"})
	http.Redirect(w, r, "/clients", http.StatusSeeOther)
}

func (h *ClientHandler) renderCreateForm(w http.ResponseWriter, r *http.Request, status int, page clientPage) {
	people, err := h.svc.EligiblePeople(r.Context(), 0)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	page.People = people
	h.renderForm(w, r, status, page)
}

// Edit handles GET /clients/{id}/edit. Offered people are the eligible set;
// those linked to this client are pre-checked.
func (h *ClientHandler) Edit(w http.ResponseWriter, r *http.Request) {
	h.entry(r).WithField("id", chiID(r)).Info("GET Clients Edit called")
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	people, err := h.svc.OfferedPeople(r.Context(), c)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	var linked []models.Person
	for _, p := range people {
		if p.AssignedTo(c.ID) {
			linked = append(linked, p)
		}
	}
	h.renderForm(w, r, http.StatusOK, clientPage{
		Title:     "Edit " + c.CompanyName,
		Action:    fmt.Sprintf("/clients/%d", c.ID),
		Form:      forms.FromClient(c, linked),
		People:    people,
		IsDeleted: c.IsDeleted,
	})
}

// Update handles POST /clients/{id}: saves the client and reassigns contacts.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	log := h.entry(r).WithField("client_id", id)
	log.Info("POST Clients Edit called")

	f, err := forms.DecodeClient(r)
	if err != nil {
		log.WithError(err).Warn("invalid client form")
		h.Status(w, r, http.StatusBadRequest, "The submitted form could not be read.")
		return
	}
	if f.ID != id {
		log.WithField("body_id", f.ID).Warn("Edit id mismatch")
		h.NotFound(w, r)
		return
	}

	page := clientPage{Title: "Edit client", Action: fmt.Sprintf("/clients/%d", id), Form: f}
	if v := f.Validate(); !v.Empty() {
		log.Info("Edit validation failed")
		page.Errors = v
		h.renderEditForm(w, r, http.StatusUnprocessableEntity, page)
		return
	}

	_, err = h.svc.Update(r.Context(), f.ToEntity(), f.SelectedPeople)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		log.Warn("Client not found for update")
		h.NotFound(w, r)
		return
	case errors.Is(err, store.ErrConflict):
		log.Warn("Client update conflict")
		page.Alert = msgConflict
		h.renderEditForm(w, r, http.StatusConflict, page)
		return
	default:
		log.WithError(err).Error("updating client failed")
		page.Alert = msgSaveFailed
		h.renderEditForm(w, r, http.StatusInternalServerError, page)
		return
	}

	log.Infof("Updated client %d", id)
	httpx.SetToast(w, httpx.Toast{Type: httpx.ToastInfo, Message: "Client updated successfully!"})
	http.Redirect(w, r, "/clients", http.StatusSeeOther)
}

func (h *ClientHandler) renderEditForm(w http.ResponseWriter, r *http.Request, status int, page clientPage) {
	c, err := h.svc.Get(r.Context(), page.Form.ID)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	people, err := h.svc.OfferedPeople(r.Context(), c)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	page.People = people
	page.IsDeleted = c.IsDeleted
	h.renderForm(w, r, status, page)
}

// Delete handles POST /clients/{id}/delete (soft delete).
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	log := h.entry(r).WithField("client_id", id)
	log.Info("POST Clients Delete called")

	_, err := h.svc.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		log.Warn("Delete could not find client")
		h.NotFound(w, r)
		return
	}
	if errors.Is(err, store.ErrConflict) {
		log.Warn("Client delete conflict")
		h.Status(w, r, http.StatusConflict, msgConflict)
		return
	}
	if err != nil {
		h.Error(w, r, err)
		return
	}

	log.Infof("Soft-deleted client %d", id)
	httpx.SetToast(w, httpx.Toast{Type: httpx.ToastDanger, Message: "Client deleted successfully!"})
	http.Redirect(w, r, "/clients", http.StatusSeeOther)
}
