package massshift

import "errors"

var (
	// ErrCatalogLoad is returned (wrapped) when reference modification
	// records are malformed or contain duplicate ids.
	ErrCatalogLoad = errors.New("massshift: invalid modification catalog")
	// ErrNotFound is returned when a modification id is not in the catalog.
	ErrNotFound = errors.New("massshift: unknown modification id")
	// ErrInvalidQuery is returned (wrapped) for a malformed query.
	// In batch resolution it is reported per query index, the batch
	// itself continues.
	ErrInvalidQuery = errors.New("massshift: invalid query")
	// ErrSearchCancelled is returned when a search is interrupted by
	// context cancellation. It is distinct from an empty candidate set,
	// which is a normal outcome.
	ErrSearchCancelled = errors.New("massshift: search cancelled")
)
