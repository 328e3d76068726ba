package catalog

import (
	"context"
	"testing"

	"github.com/delish-app/tiffin-backend/pkg/auth"
	"github.com/delish-app/tiffin-backend/pkg/enums"
	pkgerrors "github.com/delish-app/tiffin-backend/pkg/errors"
	"github.com/delish-app/tiffin-backend/pkg/migrate/migratetest"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newCatalog(t *testing.T) (Service, Repository) {
	t.Helper()
	repo := NewRepository(migratetest.NewSQLite(t))
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func owner() auth.Principal {
	return auth.Principal{UserID: uuid.New(), Role: enums.RoleRestaurant}
}

func createListed(t *testing.T, svc Service, repo Repository, actor auth.Principal, name, city string, cuisines ...string) *RestaurantDTO {
	t.Helper()
	r, err := svc.CreateRestaurant(context.Background(), actor, RestaurantInput{
		Name:     name,
		Address:  Address{City: strPtr(city)},
		Cuisines: cuisines,
	})
	require.NoError(t, err)
	require.NoError(t, repo.ApproveRestaurant(context.Background(), r.ID))
	return r
}

func TestCreateRestaurantStartsUnapproved(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalog(t)
	actor := owner()

	r, err := svc.CreateRestaurant(ctx, actor, RestaurantInput{
		Name:     "Spice Garden",
		Cuisines: []string{"North Indian", " ", "Mughlai"},
		MinOrder: price("199"),
	})
	require.NoError(t, err)
	assert.False(t, r.IsApproved)
	assert.True(t, r.IsActive)
	assert.Equal(t, actor.UserID, r.CreatedBy)
	assert.Equal(t, []string{"North Indian", "Mughlai"}, r.Cuisines)
	assert.Equal(t, "199.00", r.MinOrder)
	assert.Equal(t, "India", r.Address.Country)

	list, err := svc.ListRestaurants(ctx, RestaurantFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.GetRestaurant(ctx, nil, r.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	own, err := svc.GetRestaurant(ctx, &actor, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spice Garden", own.Name)
}

func TestCreateRestaurantRequiresRestaurantRole(t *testing.T) {
	svc, _ := newCatalog(t)
	_, err := svc.CreateRestaurant(context.Background(), auth.Principal{UserID: uuid.New(), Role: enums.RoleCustomer}, RestaurantInput{Name: "Nope"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestListRestaurantsFilters(t *testing.T) {
	ctx := context.Background()
	svc, repo := newCatalog(t)
	createListed(t, svc, repo, owner(), "Spice Garden", "Mumbai", "North Indian", "Mughlai")
	createListed(t, svc, repo, owner(), "Pizza Palace", "Delhi", "Italian")
	createListed(t, svc, repo, owner(), "Green Leaf Tiffin", "mumbai", "South Indian")

	all, err := svc.ListRestaurants(ctx, RestaurantFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byCuisine, err := svc.ListRestaurants(ctx, RestaurantFilter{Cuisine: "italian"})
	require.NoError(t, err)
	require.Len(t, byCuisine, 1)
	assert.Equal(t, "Pizza Palace", byCuisine[0].Name)

	partial, err := svc.ListRestaurants(ctx, RestaurantFilter{Cuisine: "Indian"})
	require.NoError(t, err)
	assert.Empty(t, partial)

	byCity, err := svc.ListRestaurants(ctx, RestaurantFilter{City: "MUMBAI"})
	require.NoError(t, err)
	assert.Len(t, byCity, 2)
}

func TestUpdateRestaurantOwnership(t *testing.T) {
	ctx := context.Background()
	svc, repo := newCatalog(t)
	actor := owner()
	r := createListed(t, svc, repo, actor, "Spice Garden", "Mumbai")

	updated, err := svc.UpdateRestaurant(ctx, actor, r.ID, RestaurantInput{Name: "Spice Garden Express", Description: "Fast"})
	require.NoError(t, err)
	assert.Equal(t, "Spice Garden Express", updated.Name)
	assert.True(t, updated.IsApproved)

	_, err = svc.UpdateRestaurant(ctx, owner(), r.ID, RestaurantInput{Name: "Hijack"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	admin := auth.Principal{UserID: uuid.New(), Role: enums.RoleAdmin}
	_, err = svc.UpdateRestaurant(ctx, admin, r.ID, RestaurantInput{Name: "Renamed by admin"})
	require.NoError(t, err)

	_, err = svc.UpdateRestaurant(ctx, admin, uuid.New(), RestaurantInput{Name: "Ghost"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestMenuLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, repo := newCatalog(t)
	actor := owner()
	r := createListed(t, svc, repo, actor, "Green Leaf Tiffin", "Pune")

	dal, err := svc.CreateMenuItem(ctx, actor, MenuItemInput{
		RestaurantID: r.ID,
		Name:         "Dal Tadka",
		Price:        price("149.5"),
		Category:     "mains",
		IsVegetarian: true,
		Tags:         []string{"popular"},
	})
	require.NoError(t, err)
	assert.True(t, dal.IsAvailable)
	assert.Equal(t, enums.SpiceLevelMild, dal.SpiceLevel)
	assert.Equal(t, 15, dal.PreparationTimeMinutes)
	assert.Equal(t, "149.50", dal.Price)

	unavailable := false
	_, err = svc.CreateMenuItem(ctx, actor, MenuItemInput{
		RestaurantID: r.ID,
		Name:         "Gulab Jamun",
		Price:        price("60"),
		Category:     "desserts",
		IsAvailable:  &unavailable,
		SpiceLevel:   enums.SpiceLevelMild,
	})
	require.NoError(t, err)

	public, err := svc.ListMenu(ctx, nil, r.ID)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Dal Tadka", public[0].Name)

	ownerView, err := svc.ListMenu(ctx, &actor, r.ID)
	require.NoError(t, err)
	require.Len(t, ownerView, 2)
	assert.Equal(t, "desserts", ownerView[0].Category)

	updated, err := svc.UpdateMenuItem(ctx, actor, dal.ID, MenuItemInput{
		RestaurantID: r.ID,
		Name:         "Dal Tadka",
		Price:        price("159"),
		Category:     "mains",
		SpiceLevel:   enums.SpiceLevelHot,
	})
	require.NoError(t, err)
	assert.Equal(t, "159.00", updated.Price)
	assert.Equal(t, enums.SpiceLevelHot, updated.SpiceLevel)

	snapshot, err := svc.CartItem(ctx, dal.ID)
	require.NoError(t, err)
	assert.Equal(t, dal.ID.String(), snapshot.ID)
	assert.Equal(t, r.ID.String(), snapshot.RestaurantID)
	assert.True(t, decimal.NewFromInt(159).Equal(snapshot.Price))

	require.NoError(t, svc.DeleteMenuItem(ctx, actor, dal.ID))
	_, err = svc.GetMenuItem(ctx, &actor, dal.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = svc.CartItem(ctx, dal.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestMenuOfUnlistedRestaurantIsHidden(t *testing.T) {
	ctx := context.Background()
	svc, repo := newCatalog(t)
	actor := owner()
	r, err := svc.CreateRestaurant(ctx, actor, RestaurantInput{Name: "Hidden Kitchen", Address: Address{City: strPtr("Pune")}})
	require.NoError(t, err)
	require.False(t, r.IsApproved)

	thali, err := svc.CreateMenuItem(ctx, actor, MenuItemInput{
		RestaurantID: r.ID,
		Name:         "Veg Thali",
		Price:        price("250"),
		Category:     "mains",
	})
	require.NoError(t, err)

	_, err = svc.ListMenu(ctx, nil, r.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = svc.GetMenuItem(ctx, nil, thali.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	stranger := auth.Principal{UserID: uuid.New(), Role: enums.RoleCustomer}
	_, err = svc.GetMenuItem(ctx, &stranger, thali.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = svc.CartItem(ctx, thali.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	own, err := svc.GetMenuItem(ctx, &actor, thali.ID)
	require.NoError(t, err)
	assert.Equal(t, "Veg Thali", own.Name)

	require.NoError(t, repo.ApproveRestaurant(ctx, r.ID))
	public, err := svc.GetMenuItem(ctx, nil, thali.ID)
	require.NoError(t, err)
	assert.Equal(t, thali.ID, public.ID)
	snapshot, err := svc.CartItem(ctx, thali.ID)
	require.NoError(t, err)
	assert.True(t, snapshot.IsAvailable)

	inactive := false
	_, err = svc.UpdateRestaurant(ctx, actor, r.ID, RestaurantInput{Name: "Hidden Kitchen", IsActive: &inactive})
	require.NoError(t, err)
	_, err = svc.CartItem(ctx, thali.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = svc.GetMenuItem(ctx, nil, thali.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestMenuValidationAndOwnership(t *testing.T) {
	ctx := context.Background()
	svc, repo := newCatalog(t)
	actor := owner()
	r := createListed(t, svc, repo, actor, "Pizza Palace", "Delhi")

	_, err := svc.CreateMenuItem(ctx, actor, MenuItemInput{RestaurantID: r.ID, Name: "Free", Price: price("-1"), Category: "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.CreateMenuItem(ctx, actor, MenuItemInput{RestaurantID: r.ID, Name: "Blaze", Price: price("1"), Category: "x", SpiceLevel: "nuclear"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.CreateMenuItem(ctx, owner(), MenuItemInput{RestaurantID: r.ID, Name: "Stolen", Price: price("1"), Category: "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	item, err := svc.CreateMenuItem(ctx, actor, MenuItemInput{RestaurantID: r.ID, Name: "Margherita", Price: price("0"), Category: "pizza"})
	require.NoError(t, err)

	err = svc.DeleteMenuItem(ctx, owner(), item.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = svc.UpdateMenuItem(ctx, actor, item.ID, MenuItemInput{RestaurantID: uuid.New(), Name: "Moved", Price: price("1"), Category: "x"})
	assert.Error(t, err)
}

func TestRepositoryPendingAndCounts(t *testing.T) {
	ctx := context.Background()
	svc, repo := newCatalog(t)
	createListed(t, svc, repo, owner(), "Listed", "Pune")
	pending, err := svc.CreateRestaurant(ctx, owner(), RestaurantInput{Name: "Waiting"})
	require.NoError(t, err)

	rows, err := repo.ListPendingRestaurants(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, pending.ID, rows[0].ID)

	total, err := repo.CountRestaurants(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	waiting, err := repo.CountPendingRestaurants(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), waiting)

	assert.True(t, isNotFound(repo.ApproveRestaurant(ctx, uuid.New())))
}
