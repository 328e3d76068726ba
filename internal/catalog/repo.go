package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/delish-app/tiffin-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RestaurantFilter narrows the public restaurant listing.
type RestaurantFilter struct {
	Cuisine string
	City    string
}

// Repository persists restaurants and their menus.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateRestaurant(ctx context.Context, r *models.Restaurant) error
	SaveRestaurant(ctx context.Context, r *models.Restaurant) error
	FindRestaurant(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
	ListListedRestaurants(ctx context.Context, filter RestaurantFilter) ([]models.Restaurant, error)
	ListPendingRestaurants(ctx context.Context) ([]models.Restaurant, error)
	ApproveRestaurant(ctx context.Context, id uuid.UUID) error
	CountRestaurants(ctx context.Context) (int64, error)
	CountPendingRestaurants(ctx context.Context) (int64, error)

	CreateMenuItem(ctx context.Context, item *models.MenuItem) error
	SaveMenuItem(ctx context.Context, item *models.MenuItem) error
	DeleteMenuItem(ctx context.Context, id uuid.UUID) error
	FindMenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	ListMenu(ctx context.Context, restaurantID uuid.UUID, availableOnly bool) ([]models.MenuItem, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateRestaurant(ctx context.Context, restaurant *models.Restaurant) error {
	return r.db.WithContext(ctx).Create(restaurant).Error
}

func (r *repository) SaveRestaurant(ctx context.Context, restaurant *models.Restaurant) error {
	return r.db.WithContext(ctx).Save(restaurant).Error
}

func (r *repository) FindRestaurant(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&restaurant).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// ListListedRestaurants returns approved, active restaurants by rating.
// Cuisines are stored as a quoted array literal, so a cuisine matches on its
// quoted form.
func (r *repository) ListListedRestaurants(ctx context.Context, filter RestaurantFilter) ([]models.Restaurant, error) {
	query := r.db.WithContext(ctx).Where("is_approved = ? AND is_active = ?", true, true)
	if cuisine := strings.ToLower(strings.TrimSpace(filter.Cuisine)); cuisine != "" {
		query = query.Where("LOWER(cuisines) LIKE ?", `%"`+likeSafe(cuisine)+`"%`)
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		query = query.Where("LOWER(city) = ?", strings.ToLower(city))
	}
	var rows []models.Restaurant
	err := query.Order("rating DESC, name ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) ListPendingRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	var rows []models.Restaurant
	err := r.db.WithContext(ctx).
		Where("is_approved = ?", false).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ApproveRestaurant(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.Restaurant{}).Where("id = ?", id).Update("is_approved", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CountRestaurants(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Restaurant{}).Count(&count).Error
	return count, err
}

func (r *repository) CountPendingRestaurants(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Restaurant{}).Where("is_approved = ?", false).Count(&count).Error
	return count, err
}

func (r *repository) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) SaveMenuItem(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.MenuItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindMenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListMenu(ctx context.Context, restaurantID uuid.UUID, availableOnly bool) ([]models.MenuItem, error) {
	query := r.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID)
	if availableOnly {
		query = query.Where("is_available = ?", true)
	}
	var rows []models.MenuItem
	err := query.Order("category ASC, name ASC").Find(&rows).Error
	return rows, err
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func likeSafe(s string) string {
	return strings.NewReplacer(`%`, "", `_`, "", `"`, "").Replace(s)
}
