package journal

import "context"

// Repository defines the primitive data access operations for journal
// entities. Implementations live in infrastructure/persistence.
type Repository interface {
	// Insert persists a new row built from the field bag and returns its
	// generated id. Returns ErrValidation when a referenced foreign key
	// does not exist or a stored constraint rejects the values.
	Insert(ctx context.Context, kind Kind, fields FieldBag) (int64, error)

	// GetByID returns one row as a field map.
	// Returns ErrNotFound when no row has that id.
	GetByID(ctx context.Context, kind Kind, id int64) (Record, error)

	// List returns every row of the kind in insertion order.
	List(ctx context.Context, kind Kind) ([]Record, error)

	// UpdateFields applies only the supplied fields to the row.
	// Returns ErrNotFound when no row has that id.
	UpdateFields(ctx context.Context, kind Kind, id int64, fields FieldBag) error

	// Delete removes the row. Returns ErrNotFound when absent and
	// ErrConstraint when dependent rows still reference it.
	Delete(ctx context.Context, kind Kind, id int64) error
}
