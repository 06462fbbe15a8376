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

const msgInvalidClient = "Please select a valid client."

type PersonHandler struct {
	*Pages
	svc *services.PersonService
}

func NewPersonHandler(p *Pages, svc *services.PersonService) *PersonHandler {
	return &PersonHandler{Pages: p, svc: svc}
}

type personPage struct {
	Title      string
	Action     string
	Form       *forms.PersonForm
	Errors     validation.Violations
	ReadOnly   bool
	IsDeleted  bool
	ClientName string
	Alert      string
}

// renderForm loads the client options for the form's current link and
// renders the person form.
func (h *PersonHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, pg personPage, stored *uint) {
	var clients []models.Client
	if !pg.ReadOnly {
		var err error
		clients, err = h.svc.ClientOptions(r.Context(), stored)
		if err != nil {
			h.Error(w, r, err)
			return
		}
	}
	if pg.Errors == nil {
		pg.Errors = validation.Violations{}
	}
	h.render(w, r, status, "people/form.html", map[string]any{
		"Title":      pg.Title,
		"Action":     pg.Action,
		"Form":       pg.Form,
		"Errors":     pg.Errors,
		"Clients":    clients,
		"ReadOnly":   pg.ReadOnly,
		"IsDeleted":  pg.IsDeleted,
		"ClientName": pg.ClientName,
		"Alert":      pg.Alert,
	})
}

// List handles GET /people.
func (h *PersonHandler) List(w http.ResponseWriter, r *http.Request) {
	includeDeleted := showDeleted(r)
	log := h.entry(r)
	log.WithField("show_deleted", includeDeleted).Info("GET People Index called")

	people, err := h.svc.List(r.Context(), includeDeleted)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	log.Debugf("Index returned %d people", len(people))
	h.render(w, r, http.StatusOK, "people/index.html", map[string]any{
		"People":      people,
		"ShowDeleted": includeDeleted,
	})
}

func (h *PersonHandler) load(w http.ResponseWriter, r *http.Request) (*models.Person, bool) {
	id, ok := pathID(r)
	if !ok {
		h.entry(r).Warn("person route called with an invalid id")
		h.NotFound(w, r)
		return nil, false
	}
	p, err := h.svc.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.entry(r).WithField("person_id", id).Warn("Person not found")
		h.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		h.Error(w, r, err)
		return nil, false
	}
	return p, true
}

// View handles GET /people/{id}.
func (h *PersonHandler) View(w http.ResponseWriter, r *http.Request) {
	h.entry(r).WithField("id", chiID(r)).Info("GET Person Details called")
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	h.renderForm(w, r, http.StatusOK, personPage{
		Title:      p.FullName(),
		Form:       forms.FromPerson(p),
		ReadOnly:   true,
		IsDeleted:  p.IsDeleted,
		ClientName: p.ClientName(),
	}, p.ClientID)
}

// New handles GET /people/new.
func (h *PersonHandler) New(w http.ResponseWriter, r *http.Request) {
	h.entry(r).Info("GET People Create called")
	h.renderForm(w, r, http.StatusOK, personPage{
		Title:  "New person",
		Action: "/people",
		Form:   &forms.PersonForm{},
	}, nil)
}

// Create handles POST /people.
func (h *PersonHandler) Create(w http.ResponseWriter, r *http.Request) {
	f, err := forms.DecodePerson(r)
	if err != nil {
		h.entry(r).WithError(err).Warn("invalid person form")
		h.Status(w, r, http.StatusBadRequest, "The submitted form could not be read.")
		return
	}
	name := f.FirstName + " " + f.LastName
	log := h.entry(r).WithField("name", name)
	log.Info("POST People Create called")

	page := personPage{Title: "New person", Action: "/people", Form: f}
	if v := f.Validate(); !v.Empty() {
		log.Info("Create validation failed")
		page.Errors = v
		h.renderForm(w, r, http.StatusUnprocessableEntity, page, nil)
		return
	}

	p := f.ToEntity()
	err = h.svc.Create(r.Context(), p)
	if errors.Is(err, services.ErrClientUnavailable) {
		log.WithField("client_id", *f.ClientID).Info("Create rejected: client unavailable")
		page.Errors = validation.Violations{"client_id": msgInvalidClient}
		h.renderForm(w, r, http.StatusUnprocessableEntity, page, nil)
		return
	}
	if err != nil {
		log.WithError(err).Error("Error creating person")
		page.Alert = msgSaveFailed
		h.renderForm(w, r, http.StatusInternalServerError, page, nil)
		return
	}

	log.WithField("person_id", p.ID).Infof("Created person %d (%s)", p.ID, name)
	httpx.SetToast(w, httpx.Toast{Type: httpx.ToastSuccess, Message: "Person created successfully!"})
	http.Redirect(w, r, "/people", http.StatusSeeOther)
}

// Edit handles GET /people/{id}/edit.
func (h *PersonHandler) Edit(w http.ResponseWriter, r *http.Request) {
	h.entry(r).WithField("id", chiID(r)).Info("GET People Edit called")
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	h.renderForm(w, r, http.StatusOK, personPage{
		Title:     "Edit " + p.FullName(),
		Action:    fmt.Sprintf("/people/%d", p.ID),
		Form:      forms.FromPerson(p),
		IsDeleted: p.IsDeleted,
	}, p.ClientID)
}

// Update handles POST /people/{id}.
func (h *PersonHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	log := h.entry(r).WithField("person_id", id)
	log.Info("POST People Edit called")

	f, err := forms.DecodePerson(r)
	if err != nil {
		log.WithError(err).Warn("invalid person form")
		h.Status(w, r, http.StatusBadRequest, "The submitted form could not be read.")
		return
	}
	if f.ID != id {
		log.WithField("body_id", f.ID).Warn("Edit id mismatch")
		h.NotFound(w, r)
		return
	}

	// the stored link keeps a since-deleted client selectable on re-render
	var stored *uint
	var deleted bool
	if current, err := h.svc.Get(r.Context(), id); err == nil {
		stored, deleted = current.ClientID, current.IsDeleted
	}
	page := personPage{Title: "Edit person", Action: fmt.Sprintf("/people/%d", id), Form: f, IsDeleted: deleted}

	if v := f.Validate(); !v.Empty() {
		log.Info("Edit validation failed")
		page.Errors = v
		h.renderForm(w, r, http.StatusUnprocessableEntity, page, stored)
		return
	}

	err = h.svc.Update(r.Context(), f.ToEntity())
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		log.Warn("Person not found for update")
		h.NotFound(w, r)
		return
	case errors.Is(err, services.ErrClientUnavailable):
		log.WithField("client_id", *f.ClientID).Info("Edit rejected: client unavailable")
		page.Errors = validation.Violations{"client_id": msgInvalidClient}
		h.renderForm(w, r, http.StatusUnprocessableEntity, page, stored)
		return
	case errors.Is(err, store.ErrConflict):
		log.WithError(err).Warn("Concurrency conflict updating person")
		page.Alert = msgConflict
		h.renderForm(w, r, http.StatusConflict, page, stored)
		return
	default:
		log.WithError(err).Error("updating person failed")
		page.Alert = msgSaveFailed
		h.renderForm(w, r, http.StatusInternalServerError, page, stored)
		return
	}

	log.Infof("Updated person %d", id)
	httpx.SetToast(w, httpx.Toast{Type: httpx.ToastInfo, Message: "Person updated successfully!"})
	http.Redirect(w, r, "/people", http.StatusSeeOther)
}

// Delete handles POST /people/{id}/delete (soft delete).
func (h *PersonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	log := h.entry(r).WithField("person_id", id)
	log.Info("POST People Delete called")

	_, err := h.svc.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		log.Warn("Delete could not find person")
		h.NotFound(w, r)
		return
	}
	if errors.Is(err, store.ErrConflict) {
		log.Warn("Person delete conflict")
		h.Status(w, r, http.StatusConflict, msgConflict)
		return
	}
	if err != nil {
		h.Error(w, r, err)
		return
	}

	log.Infof("Soft-deleted person %d", id)
	httpx.SetToast(w, httpx.Toast{Type: httpx.ToastDanger, Message: "Person deleted successfully!"})
	http.Redirect(w, r, "/people", http.StatusSeeOther)
}
