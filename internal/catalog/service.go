// Package catalog manages restaurants and their menus and resolves menu
// items for the cart.
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/delish-app/tiffin-backend/internal/cart"
	"github.com/delish-app/tiffin-backend/pkg/auth"
	"github.com/delish-app/tiffin-backend/pkg/db/models"
	"github.com/delish-app/tiffin-backend/pkg/enums"
	pkgerrors "github.com/delish-app/tiffin-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Service exposes catalog reads and owner writes.
type Service interface {
	ListRestaurants(ctx context.Context, filter RestaurantFilter) ([]RestaurantDTO, error)
	GetRestaurant(ctx context.Context, viewer *auth.Principal, id uuid.UUID) (*RestaurantDTO, error)
	CreateRestaurant(ctx context.Context, actor auth.Principal, input RestaurantInput) (*RestaurantDTO, error)
	UpdateRestaurant(ctx context.Context, actor auth.Principal, id uuid.UUID, input RestaurantInput) (*RestaurantDTO, error)

	ListMenu(ctx context.Context, viewer *auth.Principal, restaurantID uuid.UUID) ([]MenuItemDTO, error)
	GetMenuItem(ctx context.Context, viewer *auth.Principal, id uuid.UUID) (*MenuItemDTO, error)
	CreateMenuItem(ctx context.Context, actor auth.Principal, input MenuItemInput) (*MenuItemDTO, error)
	UpdateMenuItem(ctx context.Context, actor auth.Principal, id uuid.UUID, input MenuItemInput) (*MenuItemDTO, error)
	DeleteMenuItem(ctx context.Context, actor auth.Principal, id uuid.UUID) error

	CartItem(ctx context.Context, id uuid.UUID) (cart.CatalogItem, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, errors.New("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListRestaurants(ctx context.Context, filter RestaurantFilter) ([]RestaurantDTO, error) {
	rows, err := s.repo.ListListedRestaurants(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list restaurants")
	}
	return restaurantsFromModels(rows), nil
}

func (s *service) GetRestaurant(ctx context.Context, viewer *auth.Principal, id uuid.UUID) (*RestaurantDTO, error) {
	restaurant, err := s.visibleRestaurant(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	dto := RestaurantFromModel(*restaurant)
	return &dto, nil
}

func (s *service) CreateRestaurant(ctx context.Context, actor auth.Principal, input RestaurantInput) (*RestaurantDTO, error) {
	if actor.Role != enums.RoleRestaurant && actor.Role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only restaurant accounts can list restaurants")
	}
	restaurant := &models.Restaurant{
		CreatedBy:           actor.UserID,
		IsActive:            true,
		IsApproved:          false,
		Country:             "India",
		DeliveryTimeMinutes: 30,
		Rating:              decimal.Zero,
		MinOrder:            decimal.Zero,
	}
	if err := applyRestaurantInput(restaurant, input); err != nil {
		return nil, err
	}
	if err := s.repo.CreateRestaurant(ctx, restaurant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create restaurant")
	}
	dto := RestaurantFromModel(*restaurant)
	return &dto, nil
}

func (s *service) UpdateRestaurant(ctx context.Context, actor auth.Principal, id uuid.UUID, input RestaurantInput) (*RestaurantDTO, error) {
	restaurant, err := s.ownedRestaurant(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := applyRestaurantInput(restaurant, input); err != nil {
		return nil, err
	}
	if err := s.repo.SaveRestaurant(ctx, restaurant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update restaurant")
	}
	dto := RestaurantFromModel(*restaurant)
	return &dto, nil
}

// ListMenu returns the available items of a visible restaurant. Owners and
// admins also see unavailable items.
func (s *service) ListMenu(ctx context.Context, viewer *auth.Principal, restaurantID uuid.UUID) ([]MenuItemDTO, error) {
	restaurant, err := s.visibleRestaurant(ctx, viewer, restaurantID)
	if err != nil {
		return nil, err
	}
	availableOnly := viewer == nil || !viewer.Owns(restaurant.CreatedBy)
	rows, err := s.repo.ListMenu(ctx, restaurantID, availableOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list menu")
	}
	out := make([]MenuItemDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, MenuItemFromModel(row))
	}
	return out, nil
}

// GetMenuItem follows ListMenu visibility: items of unlisted restaurants are
// only found by their owner.
func (s *service) GetMenuItem(ctx context.Context, viewer *auth.Principal, id uuid.UUID) (*MenuItemDTO, error) {
	item, err := s.findMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.visibleRestaurant(ctx, viewer, item.RestaurantID); err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return nil, err
	}
	dto := MenuItemFromModel(*item)
	return &dto, nil
}

func (s *service) CreateMenuItem(ctx context.Context, actor auth.Principal, input MenuItemInput) (*MenuItemDTO, error) {
	if _, err := s.ownedRestaurant(ctx, actor, input.RestaurantID); err != nil {
		return nil, err
	}
	item := &models.MenuItem{
		RestaurantID:           input.RestaurantID,
		IsAvailable:            true,
		PreparationTimeMinutes: 15,
		SpiceLevel:             enums.DefaultSpiceLevel,
	}
	if err := applyMenuInput(item, input); err != nil {
		return nil, err
	}
	if err := s.repo.CreateMenuItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create menu item")
	}
	dto := MenuItemFromModel(*item)
	return &dto, nil
}

func (s *service) UpdateMenuItem(ctx context.Context, actor auth.Principal, id uuid.UUID, input MenuItemInput) (*MenuItemDTO, error) {
	item, err := s.findMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedRestaurant(ctx, actor, item.RestaurantID); err != nil {
		return nil, err
	}
	if input.RestaurantID != item.RestaurantID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu items cannot move between restaurants")
	}
	if err := applyMenuInput(item, input); err != nil {
		return nil, err
	}
	if err := s.repo.SaveMenuItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update menu item")
	}
	dto := MenuItemFromModel(*item)
	return &dto, nil
}

func (s *service) DeleteMenuItem(ctx context.Context, actor auth.Principal, id uuid.UUID) error {
	item, err := s.findMenuItem(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.ownedRestaurant(ctx, actor, item.RestaurantID); err != nil {
		return err
	}
	if err := s.repo.DeleteMenuItem(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete menu item")
	}
	return nil
}

// CartItem snapshots a menu item for a cart line. Items of restaurants that
// are not approved and active cannot be ordered by anyone, owners included.
func (s *service) CartItem(ctx context.Context, id uuid.UUID) (cart.CatalogItem, error) {
	item, err := s.findMenuItem(ctx, id)
	if err != nil {
		return cart.CatalogItem{}, err
	}
	if _, err := s.visibleRestaurant(ctx, nil, item.RestaurantID); err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return cart.CatalogItem{}, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return cart.CatalogItem{}, err
	}
	snapshot := cart.CatalogItem{
		ID:           item.ID.String(),
		Name:         item.Name,
		Description:  item.Description,
		Price:        item.Price,
		Category:     item.Category,
		IsAvailable:  item.IsAvailable,
		RestaurantID: item.RestaurantID.String(),
	}
	if item.Image != nil {
		snapshot.Image = *item.Image
	}
	return snapshot, nil
}

func (s *service) visibleRestaurant(ctx context.Context, viewer *auth.Principal, id uuid.UUID) (*models.Restaurant, error) {
	restaurant, err := s.repo.FindRestaurant(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load restaurant")
	}
	listed := restaurant.IsApproved && restaurant.IsActive
	if !listed && (viewer == nil || !viewer.Owns(restaurant.CreatedBy)) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
	}
	return restaurant, nil
}

func (s *service) ownedRestaurant(ctx context.Context, actor auth.Principal, id uuid.UUID) (*models.Restaurant, error) {
	restaurant, err := s.repo.FindRestaurant(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load restaurant")
	}
	if !actor.Owns(restaurant.CreatedBy) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not the owner of this restaurant")
	}
	return restaurant, nil
}

func (s *service) findMenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	item, err := s.repo.FindMenuItem(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu item")
	}
	return item, nil
}

func applyRestaurantInput(r *models.Restaurant, in RestaurantInput) error {
	r.Name = strings.TrimSpace(in.Name)
	r.Description = strings.TrimSpace(in.Description)
	r.Street = in.Address.Street
	r.City = in.Address.City
	r.State = in.Address.State
	r.ZipCode = in.Address.ZipCode
	if in.Address.Country != "" {
		r.Country = in.Address.Country
	}
	r.Cuisines = pq.StringArray(cleanList(in.Cuisines))
	if in.DeliveryTimeMinutes != nil {
		r.DeliveryTimeMinutes = *in.DeliveryTimeMinutes
	}
	if in.MinOrder != nil {
		if in.MinOrder.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "min_order must be non-negative")
		}
		r.MinOrder = *in.MinOrder
	}
	r.Phone = in.Phone
	r.Email = in.Email
	r.Image = in.Image
	r.OpeningHours = in.OpeningHours
	if in.IsActive != nil {
		r.IsActive = *in.IsActive
	}
	return nil
}

func applyMenuInput(m *models.MenuItem, in MenuItemInput) error {
	if in.Price == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "price is required")
	}
	if in.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	if in.SpiceLevel != "" {
		if !in.SpiceLevel.IsValid() {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid spice level %q", in.SpiceLevel)
		}
		m.SpiceLevel = in.SpiceLevel
	}
	m.Name = strings.TrimSpace(in.Name)
	m.Description = strings.TrimSpace(in.Description)
	m.Price = *in.Price
	m.Category = strings.TrimSpace(in.Category)
	m.Image = in.Image
	m.IsVegetarian = in.IsVegetarian
	m.IsVegan = in.IsVegan
	m.IsGlutenFree = in.IsGlutenFree
	if in.IsAvailable != nil {
		m.IsAvailable = *in.IsAvailable
	}
	m.Ingredients = pq.StringArray(cleanList(in.Ingredients))
	m.Allergens = pq.StringArray(cleanList(in.Allergens))
	m.Tags = pq.StringArray(cleanList(in.Tags))
	if in.PreparationTimeMinutes != nil {
		m.PreparationTimeMinutes = *in.PreparationTimeMinutes
	}
	m.Calories = in.Calories
	return nil
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
