package store

import (
	"context"
	"fmt"

	"github.com/diewo77/go-records/internal/models"
	"gorm.io/gorm"
)

// ClientStore reads and writes clients.
type ClientStore struct {
	db *gorm.DB
}

// NewClientStore returns a store bound to db (a connection or a transaction).
func NewClientStore(db *gorm.DB) *ClientStore {
	return &ClientStore{db: db}
}

// WithTx returns a copy of the store running on tx.
func (s *ClientStore) WithTx(tx *gorm.DB) *ClientStore {
	return &ClientStore{db: tx}
}

// FindByID returns a client regardless of its deleted flag.
func (s *ClientStore) FindByID(ctx context.Context, id uint) (*models.Client, error) {
	var c models.Client
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// List returns clients ordered by company name. Soft-deleted clients are
// only included when includeDeleted is true.
func (s *ClientStore) List(ctx context.Context, includeDeleted bool) ([]models.Client, error) {
	return s.ListWhere(ctx, includeDeleted, nil)
}

// ListWhere is List with an extra condition (nil for none).
func (s *ClientStore) ListWhere(ctx context.Context, includeDeleted bool, query any, args ...any) ([]models.Client, error) {
	q := s.db.WithContext(ctx).Scopes(Visible(includeDeleted))
	if query != nil {
		q = q.Where(query, args...)
	}
	clients := []models.Client{}
	if err := q.Order("company_name, id").Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	return clients, nil
}

// Insert creates the client; the store assigns the id.
func (s *ClientStore) Insert(ctx context.Context, c *models.Client) error {
	c.ID = 0
	c.Version = 1
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("creating client: %w", err)
	}
	return nil
}

// Update replaces every mutable column of the client. c.Version must be the
// version the caller read; on success it is advanced.
func (s *ClientStore) Update(ctx context.Context, c *models.Client) error {
	err := updateVersioned(ctx, s.db, &models.Client{}, c.ID, c.Version, map[string]any{
		"company_name": c.CompanyName,
		"website":      c.Website,
		"phone":        c.Phone,
		"address":      c.Address,
		"is_deleted":   c.IsDeleted,
	})
	if err != nil {
		return fmt.Errorf("updating client %d: %w", c.ID, err)
	}
	c.Version++
	return nil
}

// Exists reports whether a client with id exists and is not deleted.
func (s *ClientStore) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Client{}).
		Scopes(Visible(false)).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking client %d: %w", id, err)
	}
	return count > 0, nil
}

// Count returns the number of clients that are not deleted.
func (s *ClientStore) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Client{}).Scopes(Visible(false)).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting clients: %w", err)
	}
	return int(n), nil
}
