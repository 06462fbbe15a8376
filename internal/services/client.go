package services

import (
	"context"
	"fmt"

	"github.com/diewo77/go-records/internal/models"
	"github.com/diewo77/go-records/internal/store"
	"gorm.io/gorm"
)

const entityClient = "client"

// ClientService runs client reads and writes.
type ClientService struct {
	db      *gorm.DB
	clients *store.ClientStore
	people  *store.PersonStore
	obs     Observer
}

// NewClientService wires the stores on db. A nil observer discards events.
func NewClientService(db *gorm.DB, obs Observer) *ClientService {
	if obs == nil {
		obs = nopObserver{}
	}
	return &ClientService{
		db:      db,
		clients: store.NewClientStore(db),
		people:  store.NewPersonStore(db),
		obs:     obs,
	}
}

func (s *ClientService) List(ctx context.Context, includeDeleted bool) ([]models.Client, error) {
	return s.clients.List(ctx, includeDeleted)
}

// Count returns the number of active clients.
func (s *ClientService) Count(ctx context.Context) (int, error) {
	return s.clients.Count(ctx)
}

// Get returns the client even when soft-deleted.
func (s *ClientService) Get(ctx context.Context, id uint) (*models.Client, error) {
	return s.clients.FindByID(ctx, id)
}

// Contacts returns the active people linked to the client.
func (s *ClientService) Contacts(ctx context.Context, id uint) ([]models.Person, error) {
	return s.people.ByClient(ctx, id)
}

// EligiblePeople returns the people the client form may offer. id 0 means a
// client not created yet, for which only unassigned people qualify.
func (s *ClientService) EligiblePeople(ctx context.Context, id uint) ([]models.Person, error) {
	if id == 0 {
		return s.people.Unassigned(ctx)
	}
	return s.people.Eligible(ctx, id)
}

// OfferedPeople returns the people an edit of c may show. A deleted client
// takes no new contacts, so only the people already linked to it are offered.
func (s *ClientService) OfferedPeople(ctx context.Context, c *models.Client) ([]models.Person, error) {
	if c.IsDeleted {
		return s.people.ByClient(ctx, c.ID)
	}
	return s.people.Eligible(ctx, c.ID)
}

// Create inserts c and links the selected unassigned people to it.
func (s *ClientService) Create(ctx context.Context, c *models.Client, selected []uint) ([]Change, error) {
	var changes []Change
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.clients.WithTx(tx).Insert(ctx, c); err != nil {
			return err
		}
		var err error
		changes, err = s.reconcile(ctx, tx, c, selected)
		return err
	})
	s.obs.Written(ctx, entityClient, "create", err)
	if err != nil {
		return nil, err
	}
	s.obs.Reassigned(ctx, c.ID, changes)
	return changes, nil
}

// Update saves c and reconciles its contacts with selected, all in one
// transaction. c.Version must be the version the caller read; the stored
// deleted flag is preserved. A deleted client may lose contacts but never
// gains any. On any error nothing is written.
func (s *ClientService) Update(ctx context.Context, c *models.Client, selected []uint) ([]Change, error) {
	var changes []Change
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		clients := s.clients.WithTx(tx)
		current, err := clients.FindByID(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("loading client %d: %w", c.ID, err)
		}
		c.IsDeleted = current.IsDeleted
		if err := clients.Update(ctx, c); err != nil {
			return err
		}
		changes, err = s.reconcile(ctx, tx, c, selected)
		return err
	})
	s.obs.Written(ctx, entityClient, "update", err)
	if err != nil {
		return nil, err
	}
	s.obs.Reassigned(ctx, c.ID, changes)
	return changes, nil
}

func (s *ClientService) reconcile(ctx context.Context, tx *gorm.DB, c *models.Client, selected []uint) ([]Change, error) {
	people := s.people.WithTx(tx)
	var (
		eligible []models.Person
		err      error
	)
	if c.IsDeleted {
		eligible, err = people.ByClient(ctx, c.ID)
	} else {
		eligible, err = people.Eligible(ctx, c.ID)
	}
	if err != nil {
		return nil, err
	}
	changes := Reconcile(c.ID, selected, eligible)
	for _, ch := range changes {
		if err := people.Update(ctx, ch.Person); err != nil {
			return nil, err
		}
	}
	return changes, nil
}

// Delete soft-deletes the client. Linked people keep their link.
func (s *ClientService) Delete(ctx context.Context, id uint) (*models.Client, error) {
	c, err := s.clients.FindByID(ctx, id)
	if err == nil {
		c.IsDeleted = true
		err = s.clients.Update(ctx, c)
	}
	s.obs.Written(ctx, entityClient, "delete", err)
	if err != nil {
		return nil, err
	}
	return c, nil
}
