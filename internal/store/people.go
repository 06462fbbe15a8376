package store

import (
	"context"
	"fmt"

	"github.com/diewo77/go-records/internal/models"
	"gorm.io/gorm"
)

// PersonStore reads and writes people.
type PersonStore struct {
	db *gorm.DB
}

// NewPersonStore returns a store bound to db (a connection or a transaction).
func NewPersonStore(db *gorm.DB) *PersonStore {
	return &PersonStore{db: db}
}

// WithTx returns a copy of the store running on tx.
func (s *PersonStore) WithTx(tx *gorm.DB) *PersonStore {
	return &PersonStore{db: tx}
}

// FindByID returns a person regardless of its deleted flag, with the linked
// client preloaded.
func (s *PersonStore) FindByID(ctx context.Context, id uint) (*models.Person, error) {
	var p models.Person
	if err := s.db.WithContext(ctx).Preload("Client").First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// List returns people ordered by name with their client preloaded.
func (s *PersonStore) List(ctx context.Context, includeDeleted bool) ([]models.Person, error) {
	return s.ListWhere(ctx, includeDeleted, nil)
}

// ListWhere is List with an extra condition (nil for none).
func (s *PersonStore) ListWhere(ctx context.Context, includeDeleted bool, query any, args ...any) ([]models.Person, error) {
	q := s.db.WithContext(ctx).Preload("Client").Scopes(Visible(includeDeleted))
	if query != nil {
		q = q.Where(query, args...)
	}
	people := []models.Person{}
	if err := q.Order("last_name, first_name, id").Find(&people).Error; err != nil {
		return nil, fmt.Errorf("listing people: %w", err)
	}
	return people, nil
}

// ByClient returns the non-deleted people currently linked to clientID.
func (s *PersonStore) ByClient(ctx context.Context, clientID uint) ([]models.Person, error) {
	return s.ListWhere(ctx, false, "client_id = ?", clientID)
}

// Unassigned returns the non-deleted people not linked to any client.
func (s *PersonStore) Unassigned(ctx context.Context) ([]models.Person, error) {
	return s.ListWhere(ctx, false, "client_id IS NULL")
}

// Eligible returns the people a reassignment for clientID may touch: not
// deleted, and either unassigned or already linked to clientID. People
// belonging to another client are never part of this set.
func (s *PersonStore) Eligible(ctx context.Context, clientID uint) ([]models.Person, error) {
	return s.ListWhere(ctx, false, "(client_id IS NULL OR client_id = ?)", clientID)
}

// Insert creates the person; the store assigns the id.
func (s *PersonStore) Insert(ctx context.Context, p *models.Person) error {
	p.ID = 0
	p.Version = 1
	if err := s.db.WithContext(ctx).Omit("Client").Create(p).Error; err != nil {
		return fmt.Errorf("creating person: %w", err)
	}
	return nil
}

// Update replaces every mutable column of the person. p.Version must be the
// version the caller read; on success it is advanced.
func (s *PersonStore) Update(ctx context.Context, p *models.Person) error {
	err := updateVersioned(ctx, s.db, &models.Person{}, p.ID, p.Version, map[string]any{
		"first_name":     p.FirstName,
		"last_name":      p.LastName,
		"email_address":  p.EmailAddress,
		"street_address": p.StreetAddress,
		"city":           p.City,
		"state":          p.State,
		"zip_code":       p.ZipCode,
		"client_id":      p.ClientID,
		"is_deleted":     p.IsDeleted,
	})
	if err != nil {
		return fmt.Errorf("updating person %d: %w", p.ID, err)
	}
	p.Version++
	return nil
}

// Count returns the number of people that are not deleted.
func (s *PersonStore) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Person{}).Scopes(Visible(false)).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting people: %w", err)
	}
	return int(n), nil
}
