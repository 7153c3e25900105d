package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCatalog signals an attempt to build an index over zero products.
	ErrEmptyCatalog = errors.New("catalog is empty")
	// ErrDuplicateProductID signals two catalog records sharing one identifier.
	ErrDuplicateProductID = errors.New("duplicate product id")
	// ErrEmptyHistory signals a recommendation query without any viewed products.
	ErrEmptyHistory = errors.New("browsing history is empty")
	// ErrProductNotFound signals a history id that is absent from the catalog.
	ErrProductNotFound = errors.New("product not found")
	// ErrHistoryTooLong signals a history exceeding the configured limit.
	ErrHistoryTooLong = errors.New("browsing history too long")
)

// ProductNotFoundError wraps ErrProductNotFound with the offending product id.
type ProductNotFoundError struct {
	ID int
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("%s: id %d", ErrProductNotFound.Error(), e.ID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }

// NewProductNotFound creates a product-not-found error for id.
func NewProductNotFound(id int) error {
	return &ProductNotFoundError{ID: id}
}
