package checkout

import (
	"context"
	"testing"

	"github.com/delish-app/tiffin-backend/internal/cart"
	"github.com/delish-app/tiffin-backend/internal/orders"
	"github.com/delish-app/tiffin-backend/internal/payments"
	"github.com/delish-app/tiffin-backend/pkg/enums"
	pkgerrors "github.com/delish-app/tiffin-backend/pkg/errors"
	"github.com/delish-app/tiffin-backend/pkg/migrate/migratetest"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type menu map[uuid.UUID]cart.CatalogItem

func (m menu) CartItem(_ context.Context, id uuid.UUID) (cart.CatalogItem, error) {
	it, ok := m[id]
	if !ok {
		return cart.CatalogItem{}, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	return it, nil
}

type scriptedGateway struct {
	conf    payments.Confirmation
	err     error
	charged []decimal.Decimal
	billing []payments.BillingInfo
	// during runs inside Charge, while the order is already stored.
	during func()
}

func (g *scriptedGateway) Charge(_ context.Context, amount decimal.Decimal, info payments.BillingInfo) (payments.Confirmation, error) {
	g.charged = append(g.charged, amount)
	g.billing = append(g.billing, info)
	if g.during != nil {
		g.during()
	}
	return g.conf, g.err
}

type totalsSpy struct{ seen []float64 }

func (s *totalsSpy) ObserveCheckoutTotal(v float64) { s.seen = append(s.seen, v) }

type fixture struct {
	svc        Service
	carts      cart.Service
	repo       orders.Repository
	gateway    *scriptedGateway
	spy        *totalsSpy
	thali      uuid.UUID
	restaurant uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	restaurant := uuid.New()
	thali := uuid.New()
	carts, err := cart.NewService(cart.NewMemoryStore(), menu{
		thali: {
			ID:           thali.String(),
			Name:         "Veg Thali",
			Price:        decimal.NewFromInt(250),
			Category:     "thali",
			IsAvailable:  true,
			RestaurantID: restaurant.String(),
		},
	}, nil, nil)
	require.NoError(t, err)

	repo := orders.NewRepository(migratetest.NewSQLite(t))
	gateway := &scriptedGateway{conf: payments.Confirmation{ID: "pi_ok", Status: enums.PaymentStatusPaid}}
	spy := &totalsSpy{}
	svc, err := NewService(ServiceParams{
		Carts:    carts,
		Orders:   repo,
		Gateway:  gateway,
		Fees:     DefaultFees(),
		Currency: "INR",
		Metrics:  spy,
	})
	require.NoError(t, err)
	return &fixture{svc: svc, carts: carts, repo: repo, gateway: gateway, spy: spy, thali: thali, restaurant: restaurant}
}

func (f *fixture) fill(t *testing.T, key string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := f.carts.AddItem(context.Background(), key, f.thali)
		require.NoError(t, err)
	}
}

func input(key string, method enums.PaymentMethod) Input {
	return Input{
		UserID:          uuid.New(),
		Name:            "Asha",
		Email:           "asha@example.com",
		CartKey:         key,
		Address:         Address{Street: "4 Park Street", City: "Kolkata", ZipCode: "700016"},
		PaymentMethod:   method,
		PaymentMethodID: "pm_card_visa",
	}
}

func TestQuoteUsesCartTotal(t *testing.T) {
	f := newFixture(t)
	f.fill(t, "guest:q", 2)

	quote, err := f.svc.Quote(context.Background(), "guest:q")
	require.NoError(t, err)
	assert.Equal(t, 2, quote.Cart.ItemCount)
	assert.Equal(t, "500.00", quote.Totals.Subtotal)
	assert.Equal(t, "90.00", quote.Totals.Tax)
	assert.Equal(t, "839.00", quote.Totals.FinalTotal)
}

func TestExecuteCardPaid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fill(t, "guest:c", 2)

	in := input("guest:c", enums.PaymentMethodCard)
	result, err := f.svc.Execute(ctx, in)
	require.NoError(t, err)

	require.Len(t, f.gateway.charged, 1)
	assert.True(t, decimal.NewFromInt(839).Equal(f.gateway.charged[0]))
	assert.Equal(t, payments.PurposeOrder, f.gateway.billing[0].Purpose)
	assert.Equal(t, result.Order.ID, f.gateway.billing[0].Reference)

	assert.Equal(t, "839.00", result.Order.TotalAmount)
	assert.Equal(t, "90.00", result.Order.Tax)
	assert.Equal(t, "249.00", result.Order.DeliveryFee)
	assert.Equal(t, "inr", result.Order.Currency)
	assert.Equal(t, enums.PaymentStatusPaid, result.Order.PaymentStatus)
	assert.Equal(t, enums.OrderStatusConfirmed, result.Order.Status)
	require.NotNil(t, result.Order.PaymentIntentID)
	assert.Equal(t, "pi_ok", *result.Order.PaymentIntentID)
	require.NotNil(t, result.Order.RestaurantID)
	assert.Equal(t, f.restaurant, *result.Order.RestaurantID)
	require.Len(t, result.Order.Items, 1)
	assert.Equal(t, 2, result.Order.Items[0].Quantity)
	require.NotNil(t, result.Payment)

	state, err := f.carts.Get(ctx, "guest:c")
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())
	assert.Equal(t, []float64{839}, f.spy.seen)
}

func TestExecutePendingConfirmationClearsCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.gateway.conf = payments.Confirmation{ID: "pi_wait", Status: enums.PaymentStatusPending, ClientSecret: "pi_wait_secret"}
	f.fill(t, "guest:p", 1)

	result, err := f.svc.Execute(ctx, input("guest:p", enums.PaymentMethodCard))
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPending, result.Order.PaymentStatus)
	assert.Equal(t, enums.OrderStatusPending, result.Order.Status)
	assert.Equal(t, "pi_wait_secret", result.Payment.ClientSecret)

	state, err := f.carts.Get(ctx, "guest:p")
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())
}

func TestExecuteKeepsItemsAddedDuringPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fill(t, "guest:race", 1)
	f.gateway.during = func() {
		_, err := f.carts.AddItem(ctx, "guest:race", f.thali)
		require.NoError(t, err)
	}

	result, err := f.svc.Execute(ctx, input("guest:race", enums.PaymentMethodCard))
	require.NoError(t, err)
	require.Len(t, result.Order.Items, 1)
	assert.Equal(t, 1, result.Order.Items[0].Quantity)

	state, err := f.carts.Get(ctx, "guest:race")
	require.NoError(t, err)
	assert.Equal(t, 1, state.ItemCount)
	assert.Equal(t, "250.00", state.Total.StringFixed(2))
}

func TestExecuteGatewayFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.gateway.conf = payments.Confirmation{ID: "pi_bad", Status: enums.PaymentStatusFailed}
	f.gateway.err = pkgerrors.New(pkgerrors.CodePayment, "payment declined")
	f.fill(t, "guest:f", 1)

	_, err := f.svc.Execute(ctx, input("guest:f", enums.PaymentMethodCard))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodePayment))

	state, err := f.carts.Get(ctx, "guest:f")
	require.NoError(t, err)
	assert.Equal(t, 1, state.ItemCount)

	failed, err := f.repo.FindByPaymentIntent(ctx, "pi_bad")
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusFailed, failed.PaymentStatus)
	assert.Empty(t, f.spy.seen)
}

func TestExecuteCashSkipsGateway(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fill(t, "guest:cash", 1)

	result, err := f.svc.Execute(ctx, input("guest:cash", enums.PaymentMethodCash))
	require.NoError(t, err)
	assert.Empty(t, f.gateway.charged)
	assert.Nil(t, result.Payment)
	assert.Equal(t, enums.PaymentMethodCash, result.Order.PaymentMethod)
	assert.Equal(t, enums.PaymentStatusPending, result.Order.PaymentStatus)
	assert.Equal(t, "544.00", result.Order.TotalAmount)
}

func TestExecuteValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Execute(ctx, input("guest:empty", enums.PaymentMethodCard))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeEmptyCart))

	f.fill(t, "guest:v", 1)
	bad := input("guest:v", enums.PaymentMethodUPI)
	_, err = f.svc.Execute(ctx, bad)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	noAddress := input("guest:v", enums.PaymentMethodCard)
	noAddress.Address.City = " "
	_, err = f.svc.Execute(ctx, noAddress)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	anon := input("guest:v", enums.PaymentMethodCard)
	anon.UserID = uuid.Nil
	_, err = f.svc.Execute(ctx, anon)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	assert.Empty(t, f.gateway.charged)
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}
