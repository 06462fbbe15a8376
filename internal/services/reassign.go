package services

import (
	"fmt"

	"github.com/diewo77/go-records/internal/models"
)

// Change describes one person whose client link moved during a client edit.
type Change struct {
	PersonID uint
	From     *uint
	To       *uint
	// Person points into the slice handed to Reconcile, already mutated.
	Person *models.Person
}

// Assigned reports whether the person was linked (rather than unlinked).
func (c Change) Assigned() bool { return c.To != nil }

func (c Change) String() string {
	return fmt.Sprintf("Person %d ClientId changed %s -> %s", c.PersonID, idString(c.From), idString(c.To))
}

func idString(id *uint) string {
	if id == nil {
		return "null"
	}
	return fmt.Sprint(*id)
}

// Reconcile aligns every eligible person with the selection for clientID:
// selected people point at the client, the others are unassigned. People
// already in the right state are left alone. It mutates eligible in place and
// returns one Change per mutated person, in eligible order.
//
// Ids in selected that are not in eligible are ignored, so a stale or forged
// checkbox can never pull a person away from another client.
func Reconcile(clientID uint, selected []uint, eligible []models.Person) []Change {
	want := make(map[uint]struct{}, len(selected))
	for _, id := range selected {
		want[id] = struct{}{}
	}

	var changes []Change
	for i := range eligible {
		p := &eligible[i]
		_, keep := want[p.ID]
		if keep == p.AssignedTo(clientID) {
			continue
		}

		from := p.ClientID
		var to *uint
		if keep {
			id := clientID
			to = &id
		}
		p.ClientID = to
		p.Client = nil
		changes = append(changes, Change{PersonID: p.ID, From: from, To: to, Person: p})
	}
	return changes
}
