package application

import (
	"errors"
	"fmt"

	catalog "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid inventory input")
	// ErrConflict signals the request is valid but the current stock or cart cannot satisfy it.
	ErrConflict = errors.New("inventory conflict")
	// ErrEmptyCart is returned when checking out a cart without lines.
	ErrEmptyCart = errors.New("cart is empty")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrNilItem),
		errors.Is(err, domain.ErrUnknownSortOrder),
		errors.Is(err, catalog.ErrInvalidISBN),
		errors.Is(err, catalog.ErrInvalidTitle),
		errors.Is(err, catalog.ErrNegativePrice):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrInsufficientReserved),
		errors.Is(err, ErrEmptyCart):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, domain.ErrNotStocked),
		errors.Is(err, domain.ErrNotInCart),
		errors.Is(err, catalogports.ErrNotFound):
		return fmt.Errorf("%w: %w", ports.ErrNotFound, err)
	}
	return err
}
