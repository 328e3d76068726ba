package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/delish-app/tiffin-backend/api/middleware"
	"github.com/delish-app/tiffin-backend/api/responses"
	"github.com/delish-app/tiffin-backend/api/validators"
	"github.com/delish-app/tiffin-backend/internal/checkout"
	"github.com/delish-app/tiffin-backend/internal/users"
	"github.com/delish-app/tiffin-backend/pkg/enums"
	pkgerrors "github.com/delish-app/tiffin-backend/pkg/errors"
	"github.com/delish-app/tiffin-backend/pkg/logger"
	"github.com/google/uuid"
)

type profileReader interface {
	Profile(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error)
}

type checkoutAddress struct {
	Street  string `json:"street" validate:"omitempty,max=200"`
	City    string `json:"city" validate:"omitempty,max=100"`
	State   string `json:"state" validate:"omitempty,max=100"`
	ZipCode string `json:"zip_code" validate:"omitempty,max=20"`
}

type checkoutRequest struct {
	Address         *checkoutAddress    `json:"delivery_address"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method" validate:"required"`
	PaymentMethodID string              `json:"payment_method_id" validate:"omitempty,max=255"`
}

// Checkout places an order from the caller's cart. A missing delivery address falls
// back to the one saved on the profile.
func Checkout(svc checkout.Service, profiles profileReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || profiles == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		p, err := requirePrincipal(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := profiles.Profile(r.Context(), p.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Execute(r.Context(), checkout.Input{
			UserID:          p.UserID,
			Name:            profile.Name,
			Email:           profile.Email,
			CartKey:         middleware.CartSessionFromContext(r.Context()),
			Address:         deliveryAddress(body.Address, profile.Address),
			PaymentMethod:   body.PaymentMethod,
			PaymentMethodID: strings.TrimSpace(body.PaymentMethodID),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func deliveryAddress(req *checkoutAddress, saved users.Address) checkout.Address {
	if req != nil && strings.TrimSpace(req.Street) != "" {
		return checkout.Address{
			Street:  strings.TrimSpace(req.Street),
			City:    strings.TrimSpace(req.City),
			State:   strings.TrimSpace(req.State),
			ZipCode: strings.TrimSpace(req.ZipCode),
		}
	}
	return checkout.Address{
		Street:  deref(saved.Street),
		City:    deref(saved.City),
		State:   deref(saved.State),
		ZipCode: deref(saved.ZipCode),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
