package subscriptions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delish-app/tiffin-backend/api/middleware"
	subscriptionsvc "github.com/delish-app/tiffin-backend/internal/subscriptions"
	"github.com/delish-app/tiffin-backend/pkg/auth"
	"github.com/delish-app/tiffin-backend/pkg/enums"
	pkgerrors "github.com/delish-app/tiffin-backend/pkg/errors"
)

type fakeSubscriptions struct {
	subscribed *subscriptionsvc.SubscribeRequest
	owner      uuid.UUID
}

func (f *fakeSubscriptions) Plans() []subscriptionsvc.PresetView { return nil }

func (f *fakeSubscriptions) Quote(enums.PlanTier, decimal.Decimal) (*subscriptionsvc.PlanQuote, error) {
	return nil, nil
}

func (f *fakeSubscriptions) Subscribe(_ context.Context, userID uuid.UUID, req subscriptionsvc.SubscribeRequest) (*subscriptionsvc.SubscribeResult, error) {
	f.subscribed = &req
	return &subscriptionsvc.SubscribeResult{Subscription: subscriptionsvc.SubscriptionDTO{ID: uuid.New(), UserID: userID, PaymentStatus: enums.PaymentStatusPending}}, nil
}

func (f *fakeSubscriptions) ListMine(context.Context, uuid.UUID) ([]subscriptionsvc.SubscriptionDTO, error) {
	return []subscriptionsvc.SubscriptionDTO{}, nil
}

func (f *fakeSubscriptions) Get(_ context.Context, viewer auth.Principal, id uuid.UUID) (*subscriptionsvc.SubscriptionDTO, error) {
	if viewer.UserID != f.owner {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
	}
	return &subscriptionsvc.SubscriptionDTO{ID: id, UserID: f.owner}, nil
}

const purchase = `{
	"service_name": "Annapurna Tiffins",
	"tier": "weekly",
	"price_per_meal": 79,
	"customer": {"full_name": "Asha Rao", "email": "asha@example.com", "phone": "9800000000",
		"address": "12 MG Road", "city": "Pune", "pincode": "411001"},
	"payment_method": "upi"
}`

func as(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithPrincipal(req.Context(), auth.Principal{UserID: userID, Role: enums.RoleCustomer}))
}

func TestCreateDecodesPurchase(t *testing.T) {
	svc := &fakeSubscriptions{}
	rec := httptest.NewRecorder()
	Create(svc, nil)(rec, as(httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions", strings.NewReader(purchase)), uuid.New()))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, svc.subscribed)
	assert.Equal(t, enums.PlanTierWeekly, svc.subscribed.Tier)
	assert.Equal(t, "Pune", svc.subscribed.Customer.City)
	assert.Contains(t, rec.Body.String(), `"payment_status":"pending"`)
}

func TestCreateValidatesBody(t *testing.T) {
	svc := &fakeSubscriptions{}
	rec := httptest.NewRecorder()
	Create(svc, nil)(rec, as(httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions", strings.NewReader(`{"tier":"weekly"}`)), uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, svc.subscribed)
}

func TestHandlersRequireCaller(t *testing.T) {
	for name, h := range map[string]http.HandlerFunc{
		"create": Create(&fakeSubscriptions{}, nil),
		"list":   List(&fakeSubscriptions{}, nil),
		"detail": Detail(&fakeSubscriptions{}, nil),
	} {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/", strings.NewReader(purchase)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}

	rec := httptest.NewRecorder()
	List(nil, nil)(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDetailScopesToOwner(t *testing.T) {
	owner := uuid.New()
	svc := &fakeSubscriptions{owner: owner}
	req := func(userID uuid.UUID) *http.Request {
		r := as(httptest.NewRequest(http.MethodGet, "/", nil), userID)
		rc := chi.NewRouteContext()
		rc.URLParams.Add("subscriptionId", uuid.NewString())
		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rc))
	}

	rec := httptest.NewRecorder()
	Detail(svc, nil)(rec, req(owner))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	Detail(svc, nil)(rec, req(uuid.New()))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
