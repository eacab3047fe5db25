package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nurpe/licitaciones-portal/internal/listing"
	"github.com/nurpe/licitaciones-portal/internal/tenderapi"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUpstream     = errors.New("tender API unavailable")
)

// classify maps lower-layer errors onto the service sentinels, keeping the
// original error in the chain.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, listing.ErrSuperseded):
		return err
	case errors.Is(err, tenderapi.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, listing.ErrInvalidFilter), errors.Is(err, listing.ErrUnknownField):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	default:
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
}

// UserMessage is the text shown on error pages and in JSON error bodies.
func UserMessage(err error) string {
	var connErr *tenderapi.ConnectionError
	var apiErr *tenderapi.APIError
	switch {
	case errors.As(err, &connErr):
		return connErr.Error()
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, ErrNotFound):
		return "Licitación no encontrada"
	case errors.Is(err, ErrInvalidInput):
		return err.Error()
	default:
		return "Error desconocido"
	}
}
