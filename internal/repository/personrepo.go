package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/bdaybook/internal/model"
)

// PersonRepository provides owner-scoped access to birthday records. Every
// mutating call runs inside its own relational transaction.
type PersonRepository interface {
	// Create inserts a new record.
	Create(ctx context.Context, p *model.Person) error

	// Get loads a record by (id, owner); errs.ErrNotFound if absent or
	// owned by someone else.
	Get(ctx context.Context, ownerID, id uuid.UUID) (*model.Person, error)

	// List returns all records for the owner, ordered by id for stable output.
	List(ctx context.Context, ownerID uuid.UUID) ([]model.Person, error)

	// Update rewrites the row identified by (p.ID, p.OwnerID);
	// errs.ErrNotFound if it vanished.
	Update(ctx context.Context, p *model.Person) error

	// Delete removes the row; errs.ErrNotFound if absent.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}
