package admin

import (
	"context"
	"testing"
	"time"

	"github.com/delish-app/tiffin-backend/internal/catalog"
	"github.com/delish-app/tiffin-backend/internal/orders"
	"github.com/delish-app/tiffin-backend/internal/users"
	"github.com/delish-app/tiffin-backend/pkg/db/models"
	"github.com/delish-app/tiffin-backend/pkg/enums"
	pkgerrors "github.com/delish-app/tiffin-backend/pkg/errors"
	"github.com/delish-app/tiffin-backend/pkg/migrate/migratetest"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc         Service
	users       *users.Repository
	restaurants catalog.Repository
	orders      orders.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := migratetest.NewSQLite(t)
	f := &fixture{
		users:       users.NewRepository(conn),
		restaurants: catalog.NewRepository(conn),
		orders:      orders.NewRepository(conn),
	}
	svc, err := NewService(ServiceParams{Users: f.users, Restaurants: f.restaurants, Orders: f.orders})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) restaurant(t *testing.T, name string, approved bool) *models.Restaurant {
	t.Helper()
	r := &models.Restaurant{Name: name, IsActive: true, IsApproved: approved, CreatedBy: uuid.New()}
	require.NoError(t, f.restaurants.CreateRestaurant(context.Background(), r))
	return r
}

func (f *fixture) order(t *testing.T, total string, status enums.PaymentStatus, at time.Time) *models.Order {
	t.Helper()
	amount := decimal.RequireFromString(total)
	o := &models.Order{
		UserID:         uuid.New(),
		Subtotal:       amount,
		TotalAmount:    amount,
		Currency:       "inr",
		DeliveryStreet: "1 Park Street",
		DeliveryCity:   "Kolkata",
		Status:         enums.OrderStatusPending,
		PaymentStatus:  status,
		PaymentMethod:  enums.PaymentMethodCard,
		CreatedAt:      at,
		Items: []models.OrderItem{
			{MenuItemID: uuid.New(), Name: "Fish Curry", Price: amount, Quantity: 1, LineTotal: amount},
		},
	}
	require.NoError(t, f.orders.Create(context.Background(), o))
	return o
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.users.Create(ctx, users.CreateUserDTO{Name: "A", Email: "a@delish.com", PasswordHash: "x"})
	require.NoError(t, err)
	f.restaurant(t, "Spice Garden", true)
	f.restaurant(t, "Pizza Palace", false)
	now := time.Now().UTC()
	f.order(t, "839", enums.PaymentStatusPaid, now)
	f.order(t, "100.50", enums.PaymentStatusPaid, now)
	f.order(t, "999", enums.PaymentStatusPending, now)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalUsers)
	assert.EqualValues(t, 2, stats.TotalRestaurants)
	assert.EqualValues(t, 1, stats.PendingRestaurants)
	assert.EqualValues(t, 3, stats.TotalOrders)
	assert.Equal(t, "939.50", stats.TotalRevenue)
}

func TestApproveRestaurant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pending := f.restaurant(t, "Green Leaf Tiffin", false)

	list, err := f.svc.PendingRestaurants(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pending.ID, list[0].ID)

	require.NoError(t, f.svc.ApproveRestaurant(ctx, pending.ID))
	list, err = f.svc.PendingRestaurants(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	err = f.svc.ApproveRestaurant(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRecentOrdersDefaultLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	base := time.Now().UTC().Add(-time.Hour)
	var newest *models.Order
	for i := 0; i < 12; i++ {
		newest = f.order(t, "10", enums.PaymentStatusPending, base.Add(time.Duration(i)*time.Minute))
	}

	recent, err := f.svc.RecentOrders(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, DefaultRecentOrders)
	assert.Equal(t, newest.ID, recent[0].ID)

	recent, err = f.svc.RecentOrders(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestUsersList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.users.Create(ctx, users.CreateUserDTO{Name: "Admin", Email: "admin@delish.com", PasswordHash: "x", Role: enums.RoleAdmin})
	require.NoError(t, err)

	list, err := f.svc.Users(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, enums.RoleAdmin, list[0].Role)
}
