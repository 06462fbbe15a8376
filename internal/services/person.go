package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/go-records/internal/models"
	"github.com/diewo77/go-records/internal/store"
	"gorm.io/gorm"
)

const entityPerson = "person"

// ErrClientUnavailable is returned when a person is linked to a client that
// does not exist or was deleted.
var ErrClientUnavailable = errors.New("selected client does not exist or was deleted")

// PersonService runs person reads and writes.
type PersonService struct {
	db      *gorm.DB
	people  *store.PersonStore
	clients *store.ClientStore
	obs     Observer
}

// NewPersonService wires the stores on db. A nil observer discards events.
func NewPersonService(db *gorm.DB, obs Observer) *PersonService {
	if obs == nil {
		obs = nopObserver{}
	}
	return &PersonService{
		db:      db,
		people:  store.NewPersonStore(db),
		clients: store.NewClientStore(db),
		obs:     obs,
	}
}

func (s *PersonService) List(ctx context.Context, includeDeleted bool) ([]models.Person, error) {
	return s.people.List(ctx, includeDeleted)
}

// Count returns the number of active people.
func (s *PersonService) Count(ctx context.Context) (int, error) {
	return s.people.Count(ctx)
}

// Get returns the person even when soft-deleted, with its client loaded.
func (s *PersonService) Get(ctx context.Context, id uint) (*models.Person, error) {
	return s.people.FindByID(ctx, id)
}

// ClientOptions lists the clients a person may be linked to. current is the
// stored link; it is kept in the list even if that client was deleted since.
func (s *PersonService) ClientOptions(ctx context.Context, current *uint) ([]models.Client, error) {
	clients, err := s.clients.List(ctx, false)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return clients, nil
	}
	for _, c := range clients {
		if c.ID == *current {
			return clients, nil
		}
	}
	c, err := s.clients.FindByID(ctx, *current)
	if errors.Is(err, store.ErrNotFound) {
		return clients, nil
	}
	if err != nil {
		return nil, err
	}
	return append(clients, *c), nil
}

// Create inserts p after checking its client link.
func (s *PersonService) Create(ctx context.Context, p *models.Person) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkClient(ctx, tx, nil, p.ClientID); err != nil {
			return err
		}
		return s.people.WithTx(tx).Insert(ctx, p)
	})
	s.obs.Written(ctx, entityPerson, "create", err)
	return err
}

// Update saves p. p.Version must be the version the caller read; the stored
// deleted flag is preserved. A changed client link must point at an active
// client.
func (s *PersonService) Update(ctx context.Context, p *models.Person) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		people := s.people.WithTx(tx)
		current, err := people.FindByID(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("loading person %d: %w", p.ID, err)
		}
		if err := s.checkClient(ctx, tx, current.ClientID, p.ClientID); err != nil {
			return err
		}
		p.IsDeleted = current.IsDeleted
		return people.Update(ctx, p)
	})
	s.obs.Written(ctx, entityPerson, "update", err)
	return err
}

func (s *PersonService) checkClient(ctx context.Context, tx *gorm.DB, before, after *uint) error {
	if after == nil || (before != nil && *before == *after) {
		return nil
	}
	ok, err := s.clients.WithTx(tx).Exists(ctx, *after)
	if err != nil {
		return err
	}
	if !ok {
		return ErrClientUnavailable
	}
	return nil
}

// Delete soft-deletes the person. Its client link is left as is.
func (s *PersonService) Delete(ctx context.Context, id uint) (*models.Person, error) {
	p, err := s.people.FindByID(ctx, id)
	if err == nil {
		p.IsDeleted = true
		err = s.people.Update(ctx, p)
	}
	s.obs.Written(ctx, entityPerson, "delete", err)
	if err != nil {
		return nil, err
	}
	return p, nil
}
