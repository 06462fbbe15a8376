package services

import (
	"context"
	"errors"
	"testing"

	"github.com/diewo77/go-records/internal/db"
	"github.com/diewo77/go-records/internal/models"
	"github.com/diewo77/go-records/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type spy struct {
	writes     []string
	reassigned [][]Change
}

func (s *spy) Written(_ context.Context, entity, operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.writes = append(s.writes, entity+"/"+operation+"/"+outcome)
}

func (s *spy) Reassigned(_ context.Context, _ uint, changes []Change) {
	s.reassigned = append(s.reassigned, changes)
}

type fixture struct {
	conn    *gorm.DB
	clients *ClientService
	people  *PersonService
	obs     *spy
}

func newFixture(t *testing.T) *fixture {
	conn := db.NewTestDB(t)
	obs := &spy{}
	return &fixture{
		conn:    conn,
		clients: NewClientService(conn, obs),
		people:  NewPersonService(conn, obs),
		obs:     obs,
	}
}

func (f *fixture) client(t *testing.T, name string) *models.Client {
	t.Helper()
	c := &models.Client{CompanyName: name}
	require.NoError(t, store.NewClientStore(f.conn).Insert(context.Background(), c))
	return c
}

func (f *fixture) person(t *testing.T, first string, clientID *uint) *models.Person {
	t.Helper()
	p := &models.Person{
		FirstName: first, LastName: "Tester", EmailAddress: first + "@example.com",
		StreetAddress: "1 Main St", City: "Boston", State: "MA", ZipCode: "02110",
		ClientID: clientID,
	}
	require.NoError(t, store.NewPersonStore(f.conn).Insert(context.Background(), p))
	return p
}

func (f *fixture) reload(t *testing.T, id uint) *models.Person {
	t.Helper()
	p, err := store.NewPersonStore(f.conn).FindByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func TestClientUpdateReassigns(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.client(t, "Aquent")
	p1 := f.person(t, "One", ptr(c.ID))
	p2 := f.person(t, "Two", nil)

	// selecting only p1 changes nothing
	upd := &models.Client{ID: c.ID, Version: c.Version, CompanyName: "Aquent"}
	changes, err := f.clients.Update(ctx, upd, []uint{p1.ID})
	require.NoError(t, err)
	assert.Empty(t, changes)
	assert.True(t, f.reload(t, p1.ID).AssignedTo(c.ID))
	assert.Nil(t, f.reload(t, p2.ID).ClientID)

	// selecting only p2 swaps them
	upd = &models.Client{ID: c.ID, Version: upd.Version, CompanyName: "Aquent LLC"}
	changes, err = f.clients.Update(ctx, upd, []uint{p2.ID})
	require.NoError(t, err)
	assert.Len(t, changes, 2)
	assert.Nil(t, f.reload(t, p1.ID).ClientID)
	assert.True(t, f.reload(t, p2.ID).AssignedTo(c.ID))

	got, err := f.clients.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aquent LLC", got.CompanyName)
	assert.Equal(t, uint(3), got.Version)

	require.Len(t, f.obs.reassigned, 2)
	assert.Len(t, f.obs.reassigned[1], 2)
	assert.Equal(t, []string{"client/update/ok", "client/update/ok"}, f.obs.writes)
}

func TestClientUpdateNeverStealsOrTouchesDeleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.client(t, "Aquent")
	other := f.client(t, "Globex")
	p3 := f.person(t, "Three", ptr(other.ID))
	gone := f.person(t, "Gone", ptr(c.ID))

	gone.IsDeleted = true
	require.NoError(t, store.NewPersonStore(f.conn).Update(ctx, gone))

	upd := &models.Client{ID: c.ID, Version: c.Version, CompanyName: "Aquent"}
	changes, err := f.clients.Update(ctx, upd, []uint{p3.ID})
	require.NoError(t, err)
	assert.Empty(t, changes)

	assert.True(t, f.reload(t, p3.ID).AssignedTo(other.ID))
	// deleted people are out of the eligible set: not unassigned either
	assert.True(t, f.reload(t, gone.ID).AssignedTo(c.ID))
}

func TestClientUpdateIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.client(t, "Aquent")
	p := f.person(t, "One", nil)

	upd := &models.Client{ID: c.ID, Version: c.Version, CompanyName: "Aquent"}
	changes, err := f.clients.Update(ctx, upd, []uint{p.ID})
	require.NoError(t, err)
	assert.Len(t, changes, 1)

	upd = &models.Client{ID: c.ID, Version: upd.Version, CompanyName: "Aquent"}
	changes, err = f.clients.Update(ctx, upd, []uint{p.ID})
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestClientUpdateConflictWritesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.client(t, "Aquent")
	p := f.person(t, "One", nil)

	stale := &models.Client{ID: c.ID, Version: c.Version + 5, CompanyName: "Stale"}
	_, err := f.clients.Update(ctx, stale, []uint{p.ID})
	require.ErrorIs(t, err, store.ErrConflict)

	assert.Nil(t, f.reload(t, p.ID).ClientID)
	assert.Empty(t, f.obs.reassigned)
	assert.Equal(t, []string{"client/update/error"}, f.obs.writes)
}

func TestClientUpdateRollsBackOnPersonFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.client(t, "Aquent")
	p := f.person(t, "One", nil)

	boom := errors.New("boom")
	err := f.conn.Callback().Update().Before("gorm:update").Register("test:fail_people", func(tx *gorm.DB) {
		if tx.Statement.Table == "people" {
			_ = tx.AddError(boom)
		}
	})
	require.NoError(t, err)

	upd := &models.Client{ID: c.ID, Version: c.Version, CompanyName: "Renamed"}
	_, err = f.clients.Update(ctx, upd, []uint{p.ID})
	require.ErrorIs(t, err, boom)

	got, err := f.clients.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aquent", got.CompanyName)
	assert.Equal(t, c.Version, got.Version)
	assert.Nil(t, f.reload(t, p.ID).ClientID)
}

func TestClientUpdateMissing(t *testing.T) {
	f := newFixture(t)
	_, err := f.clients.Update(context.Background(), &models.Client{ID: 404, Version: 1, CompanyName: "Nope"}, nil)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestClientCreateLinksUnassignedOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	other := f.client(t, "Globex")
	free := f.person(t, "Free", nil)
	taken := f.person(t, "Taken", ptr(other.ID))

	c := &models.Client{CompanyName: "Aquent"}
	changes, err := f.clients.Create(ctx, c, []uint{free.ID, taken.ID})
	require.NoError(t, err)
	require.NotZero(t, c.ID)
	require.Len(t, changes, 1)

	assert.True(t, f.reload(t, free.ID).AssignedTo(c.ID))
	assert.True(t, f.reload(t, taken.ID).AssignedTo(other.ID))

	contacts, err := f.clients.Contacts(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, free.ID, contacts[0].ID)
}

func TestEligiblePeopleForNewClient(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	other := f.client(t, "Globex")
	free := f.person(t, "Free", nil)
	f.person(t, "Taken", ptr(other.ID))

	people, err := f.clients.EligiblePeople(ctx, 0)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, free.ID, people[0].ID)
}

func TestClientDeleteKeepsLinks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.client(t, "Aquent")
	p := f.person(t, "One", ptr(c.ID))

	deleted, err := f.clients.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)

	visible, err := f.clients.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, visible)
	assert.True(t, f.reload(t, p.ID).AssignedTo(c.ID))

	_, err = f.clients.Delete(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeletedClientTakesNoNewContacts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.client(t, "Aquent")
	linked := f.person(t, "Linked", ptr(c.ID))
	kept := f.person(t, "Kept", ptr(c.ID))
	free := f.person(t, "Free", nil)

	deleted, err := f.clients.Delete(ctx, c.ID)
	require.NoError(t, err)

	offered, err := f.clients.OfferedPeople(ctx, deleted)
	require.NoError(t, err)
	require.Len(t, offered, 2)

	upd := &models.Client{ID: c.ID, Version: deleted.Version, CompanyName: "Aquent"}
	changes, err := f.clients.Update(ctx, upd, []uint{kept.ID, free.ID})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, linked.ID, changes[0].PersonID)
	assert.False(t, changes[0].Assigned())

	assert.Nil(t, f.reload(t, free.ID).ClientID)
	assert.Nil(t, f.reload(t, linked.ID).ClientID)
	assert.True(t, f.reload(t, kept.ID).AssignedTo(c.ID))

	got, err := f.clients.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
}

func TestPersonCreateRequiresActiveClient(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.client(t, "Aquent")
	_, err := f.clients.Delete(ctx, c.ID)
	require.NoError(t, err)

	p := &models.Person{FirstName: "Ada", LastName: "Lovelace", EmailAddress: "ada@example.com",
		StreetAddress: "1 Main St", City: "London", State: "LN", ZipCode: "12345", ClientID: ptr(c.ID)}
	assert.ErrorIs(t, f.people.Create(ctx, p), ErrClientUnavailable)
	assert.ErrorIs(t, f.people.Create(ctx, &models.Person{FirstName: "X", ClientID: ptr(999)}), ErrClientUnavailable)

	p.ClientID = nil
	require.NoError(t, f.people.Create(ctx, p))
	assert.NotZero(t, p.ID)
}

func TestPersonUpdateKeepsDeletedClientLink(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.client(t, "Aquent")
	active := f.client(t, "Globex")
	p := f.person(t, "One", ptr(c.ID))
	_, err := f.clients.Delete(ctx, c.ID)
	require.NoError(t, err)

	// unchanged link to a deleted client is allowed
	p.City = "Salem"
	require.NoError(t, f.people.Update(ctx, p))

	// moving to a deleted client is not
	options, err := f.people.ClientOptions(ctx, p.ClientID)
	require.NoError(t, err)
	assert.Len(t, options, 2)

	p.ClientID = ptr(active.ID)
	require.NoError(t, f.people.Update(ctx, p))
	p.ClientID = ptr(c.ID)
	assert.ErrorIs(t, f.people.Update(ctx, p), ErrClientUnavailable)
}

func TestPersonUpdateConflictAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.person(t, "One", nil)

	stale := *p
	p.City = "Salem"
	require.NoError(t, f.people.Update(ctx, p))

	stale.City = "Lowell"
	assert.ErrorIs(t, f.people.Update(ctx, &stale), store.ErrConflict)

	deleted, err := f.people.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)

	// an edit of a deleted person keeps it deleted
	deleted.City = "Quincy"
	require.NoError(t, f.people.Update(ctx, deleted))
	assert.True(t, f.reload(t, p.ID).IsDeleted)

	all, err := f.people.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	visible, err := f.people.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, visible)
}
