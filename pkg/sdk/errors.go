package recodex

import "github.com/kailas-cloud/recodex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyCatalog       = domain.ErrEmptyCatalog
	ErrDuplicateProductID = domain.ErrDuplicateProductID
	ErrEmptyHistory       = domain.ErrEmptyHistory
	ErrProductNotFound    = domain.ErrProductNotFound
	ErrHistoryTooLong     = domain.ErrHistoryTooLong
)

// ProductNotFoundError names the first history id missing from the catalog.
// Use errors.As() to extract it.
type ProductNotFoundError = domain.ProductNotFoundError
