// Package orders serves the customer's order history.
package orders

import (
	"net/http"

	"github.com/delish-app/tiffin-backend/api/middleware"
	"github.com/delish-app/tiffin-backend/api/responses"
	"github.com/delish-app/tiffin-backend/api/validators"
	internalorders "github.com/delish-app/tiffin-backend/internal/orders"
	pkgerrors "github.com/delish-app/tiffin-backend/pkg/errors"
	"github.com/delish-app/tiffin-backend/pkg/logger"
	"github.com/delish-app/tiffin-backend/pkg/pagination"
)

var (
	errUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable")
	errAnonymous   = pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
)

// List pages through the caller's orders, newest first. ?limit defaults to
// pagination.DefaultLimit; ?cursor continues from a previous next_cursor.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		p, ok := middleware.PrincipalFromContext(ctx)
		switch {
		case svc == nil:
			responses.WriteError(ctx, logg, w, errUnavailable)
			return
		case !ok:
			responses.WriteError(ctx, logg, w, errAnonymous)
			return
		}

		page, err := pageParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		list, err := svc.ListMine(ctx, p.UserID, page)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Detail returns one order. Customers see only their own; admins see any.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		p, ok := middleware.PrincipalFromContext(ctx)
		switch {
		case svc == nil:
			responses.WriteError(ctx, logg, w, errUnavailable)
			return
		case !ok:
			responses.WriteError(ctx, logg, w, errAnonymous)
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		order, err := svc.Get(ctx, p, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: validators.ParseQueryString(r, "cursor", pagination.MaxCursorLen),
	}, nil
}
