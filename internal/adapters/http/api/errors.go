package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/skilltree/internal/adapters/repository"
	service "github.com/okian/skilltree/internal/app"
	"github.com/okian/skilltree/internal/domain/filter"
	"github.com/okian/skilltree/internal/domain/scoring"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("missing caller identity")
	ErrInternal     = errors.New("internal server error")
)

// NewKind returns an error of kind annotated with op.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind returns err annotated with op and kind. Both stay matchable with errors.Is.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// Wrap annotates err with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// classify maps an error to its HTTP status and response code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, scoring.ErrInvalidMode),
		errors.Is(err, scoring.ErrInvalidNotAssessed),
		errors.Is(err, filter.ErrInvalidManagerID),
		errors.Is(err, service.ErrInvalidSetting),
		errors.Is(err, service.ErrInvalidView),
		errors.Is(err, repository.ErrInvalidSettingValue):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, filter.ErrNoEmployeeRecord),
		errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrNotOwner):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
