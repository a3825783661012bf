package application

import (
	"errors"
	"fmt"

	"github.com/devstore/sales-api/internal/domains/sales/domain"
	"github.com/devstore/sales-api/internal/domains/sales/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid sale input")
	// ErrDuplicateSaleNumber signals the business number is already taken.
	ErrDuplicateSaleNumber = errors.New("sale number already exists")
)

var domainRuleErrors = []error{
	domain.ErrSaleCancelled,
	domain.ErrSaleAlreadyCancelled,
	domain.ErrItemNotFound,
	domain.ErrItemAlreadyCancelled,
	domain.ErrQuantityAboveLimit,
	domain.ErrInvalidQuantity,
	domain.ErrInvalidUnitPrice,
	domain.ErrUnexpectedDiscount,
	domain.ErrEmptySaleNumber,
	domain.ErrSaleNumberTooLong,
	domain.ErrEmptyCustomer,
	domain.ErrCustomerTooLong,
	domain.ErrEmptyBranch,
	domain.ErrBranchTooLong,
	domain.ErrNoActiveItems,
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ports.ErrDuplicateNumber) {
		return fmt.Errorf("%w: %w", ErrDuplicateSaleNumber, err)
	}
	for _, rule := range domainRuleErrors {
		if errors.Is(err, rule) {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}
	return err
}
