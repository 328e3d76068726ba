package subscriptions

import (
	"context"
	"testing"
	"time"

	"github.com/delish-app/tiffin-backend/pkg/db/models"
	"github.com/delish-app/tiffin-backend/pkg/enums"
	"github.com/delish-app/tiffin-backend/pkg/migrate/migratetest"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubscription(userID uuid.UUID, method enums.PaymentMethod, createdAt time.Time) *models.Subscription {
	starts := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	return &models.Subscription{
		UserID:            userID,
		ServiceName:       "Annapurna Tiffins",
		Tier:              enums.PlanTierWeekly,
		PricePerMeal:      decimal.NewFromInt(120),
		MealsPerDay:       2,
		BillableDays:      6,
		FreeDays:          1,
		BasePrice:         decimal.NewFromInt(1440),
		Tax:               decimal.NewFromInt(72),
		Total:             decimal.NewFromInt(1512),
		FreeDaysValue:     decimal.NewFromInt(240),
		FullName:          "Asha Rao",
		Email:             "asha@example.com",
		Phone:             "9876543210",
		Address:           "12 MG Road",
		City:              "Pune",
		Pincode:           "411001",
		DeliverySlot:      enums.DeliverySlotLunch,
		DietaryPreference: enums.DietVegetarian,
		PaymentMethod:     method,
		PaymentStatus:     enums.PaymentStatusPending,
		StartsOn:          starts,
		EndsOn:            starts.AddDate(0, 0, 7),
		CreatedAt:         createdAt,
	}
}

func TestRepositoryListByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(migratetest.NewSQLite(t))
	userID := uuid.New()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	older := newSubscription(userID, enums.PaymentMethodUPI, base)
	newer := newSubscription(userID, enums.PaymentMethodCard, base.Add(time.Hour))
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, newSubscription(uuid.New(), enums.PaymentMethodCard, base)))

	rows, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID, rows[0].ID)
	assert.Equal(t, older.ID, rows[1].ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, IsNotFound(err))
}

func TestRepositoryExpireStalePayments(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(migratetest.NewSQLite(t))
	now := time.Now().UTC()

	stale := newSubscription(uuid.New(), enums.PaymentMethodCard, now.Add(-48*time.Hour))
	upi := newSubscription(uuid.New(), enums.PaymentMethodUPI, now.Add(-48*time.Hour))
	fresh := newSubscription(uuid.New(), enums.PaymentMethodCard, now)
	for _, sub := range []*models.Subscription{stale, upi, fresh} {
		require.NoError(t, repo.Create(ctx, sub))
	}

	expired, err := repo.ExpireStalePayments(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	found, err := repo.FindByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusFailed, found.PaymentStatus)

	found, err = repo.FindByID(ctx, upi.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPending, found.PaymentStatus)

	expired, err = repo.ExpireStalePayments(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, expired)
}
