package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delish-app/tiffin-backend/api/middleware"
	internalorders "github.com/delish-app/tiffin-backend/internal/orders"
	"github.com/delish-app/tiffin-backend/pkg/auth"
	"github.com/delish-app/tiffin-backend/pkg/enums"
	pkgerrors "github.com/delish-app/tiffin-backend/pkg/errors"
	"github.com/delish-app/tiffin-backend/pkg/pagination"
	"github.com/delish-app/tiffin-backend/pkg/types"
)

type fakeOrders struct {
	seenPage pagination.Params
	seenUser uuid.UUID
	order    *internalorders.OrderDTO
}

func (f *fakeOrders) ListMine(_ context.Context, userID uuid.UUID, params pagination.Params) (*internalorders.OrderList, error) {
	f.seenUser, f.seenPage = userID, params
	return &internalorders.OrderList{Orders: []internalorders.OrderDTO{}, NextCursor: "next"}, nil
}

func (f *fakeOrders) Get(_ context.Context, viewer auth.Principal, orderID uuid.UUID) (*internalorders.OrderDTO, error) {
	if f.order == nil || (f.order.UserID != viewer.UserID && viewer.Role != enums.RoleAdmin) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return f.order, nil
}

func (f *fakeOrders) ListRecent(context.Context, int) ([]internalorders.OrderDTO, error) {
	return nil, nil
}

func signedIn(req *http.Request, userID uuid.UUID, role enums.Role) *http.Request {
	return req.WithContext(middleware.WithPrincipal(req.Context(), auth.Principal{UserID: userID, Role: role}))
}

func withOrderID(req *http.Request, id string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add("orderId", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestListPassesPageParams(t *testing.T) {
	svc := &fakeOrders{}
	userID := uuid.New()
	req := signedIn(httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=5&cursor=abc", nil), userID, enums.RoleCustomer)
	rec := httptest.NewRecorder()
	List(svc, nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, svc.seenUser)
	assert.Equal(t, pagination.Params{Limit: 5, Cursor: "abc"}, svc.seenPage)
	assert.Contains(t, rec.Body.String(), `"next_cursor":"next"`)
}

func TestListRejectsBadLimitAndAnonymous(t *testing.T) {
	rec := httptest.NewRecorder()
	List(&fakeOrders{}, nil)(rec, signedIn(httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=0", nil), uuid.New(), enums.RoleCustomer))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	List(&fakeOrders{}, nil)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDetailHidesOtherCustomersOrders(t *testing.T) {
	owner := uuid.New()
	order := &internalorders.OrderDTO{ID: uuid.New(), UserID: owner, TotalAmount: "283.50"}
	svc := &fakeOrders{order: order}

	rec := httptest.NewRecorder()
	Detail(svc, nil)(rec, withOrderID(signedIn(httptest.NewRequest(http.MethodGet, "/", nil), owner, enums.RoleCustomer), order.ID.String()))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data internalorders.OrderDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "283.50", body.Data.TotalAmount)

	rec = httptest.NewRecorder()
	Detail(svc, nil)(rec, withOrderID(signedIn(httptest.NewRequest(http.MethodGet, "/", nil), uuid.New(), enums.RoleCustomer), order.ID.String()))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	Detail(svc, nil)(rec, withOrderID(signedIn(httptest.NewRequest(http.MethodGet, "/", nil), uuid.New(), enums.RoleAdmin), order.ID.String()))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDetailRejectsMalformedID(t *testing.T) {
	rec := httptest.NewRecorder()
	Detail(&fakeOrders{}, nil)(rec, withOrderID(signedIn(httptest.NewRequest(http.MethodGet, "/", nil), uuid.New(), enums.RoleCustomer), "not-a-uuid"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var env types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, string(pkgerrors.CodeValidation), env.Error.Code)
}
