package bookstoreserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	invapp "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/application"
	invdomain "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/domain"
	invports "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/ports"
	apierrors "github.com/Apurer/go-gin-bookstore/internal/shared/errors"
)

var inventoryResponder = apierrors.NewResponder(mapInventoryError)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	apierrors.Respond(c, problem)
}

// respondInventoryError translates application errors into RFC 7807 responses.
func respondInventoryError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	inventoryResponder.RespondError(c, err)
}

func mapInventoryError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, invdomain.ErrMissingShopper):
		return apierrors.ErrShopperRequired.WithDetail(err.Error()), true
	case errors.Is(err, invapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, invports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, invports.ErrIdempotencyConflict):
		return apierrors.ErrIdempotencyConflict.WithDetail(err.Error()), true
	case errors.Is(err, invdomain.ErrInsufficientStock), errors.Is(err, invdomain.ErrInsufficientReserved):
		return apierrors.ErrInsufficientStock.WithDetail(err.Error()), true
	case errors.Is(err, invapp.ErrEmptyCart):
		return apierrors.ErrEmptyCart.WithDetail(err.Error()), true
	case errors.Is(err, invapp.ErrConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
