// Package admin backs the operator dashboard: platform counters, the
// restaurant approval queue and recent activity.
package admin

import (
	"context"
	"errors"

	"github.com/delish-app/tiffin-backend/internal/catalog"
	"github.com/delish-app/tiffin-backend/internal/orders"
	"github.com/delish-app/tiffin-backend/internal/users"
	"github.com/delish-app/tiffin-backend/pkg/db/models"
	pkgerrors "github.com/delish-app/tiffin-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultRecentOrders is the page size of RecentOrders when none is given.
const DefaultRecentOrders = 10

// Stats are the dashboard counters.
type Stats struct {
	TotalUsers         int64  `json:"total_users"`
	TotalRestaurants   int64  `json:"total_restaurants"`
	TotalOrders        int64  `json:"total_orders"`
	TotalRevenue       string `json:"total_revenue"`
	PendingRestaurants int64  `json:"pending_restaurants"`
}

type userDirectory interface {
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context) ([]models.User, error)
}

type restaurantQueue interface {
	CountRestaurants(ctx context.Context) (int64, error)
	CountPendingRestaurants(ctx context.Context) (int64, error)
	ListPendingRestaurants(ctx context.Context) ([]models.Restaurant, error)
	ApproveRestaurant(ctx context.Context, id uuid.UUID) error
}

type orderLedger interface {
	Count(ctx context.Context) (int64, error)
	SumPaidRevenue(ctx context.Context) (decimal.Decimal, error)
	ListRecent(ctx context.Context, limit int) ([]models.Order, error)
}

// Service is the admin surface. Callers are expected to have checked the
// admin role already.
type Service interface {
	Stats(ctx context.Context) (*Stats, error)
	PendingRestaurants(ctx context.Context) ([]catalog.RestaurantDTO, error)
	ApproveRestaurant(ctx context.Context, id uuid.UUID) error
	RecentOrders(ctx context.Context, limit int) ([]orders.OrderDTO, error)
	Users(ctx context.Context) ([]users.UserDTO, error)
}

// ServiceParams wires the admin service.
type ServiceParams struct {
	Users       userDirectory
	Restaurants restaurantQueue
	Orders      orderLedger
}

type service struct {
	users       userDirectory
	restaurants restaurantQueue
	orders      orderLedger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, errors.New("user directory required")
	}
	if params.Restaurants == nil {
		return nil, errors.New("restaurant repository required")
	}
	if params.Orders == nil {
		return nil, errors.New("orders repository required")
	}
	return &service{users: params.Users, restaurants: params.Restaurants, orders: params.Orders}, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	var (
		stats   Stats
		revenue decimal.Decimal
		err     error
	)
	if stats.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	if stats.TotalRestaurants, err = s.restaurants.CountRestaurants(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count restaurants")
	}
	if stats.PendingRestaurants, err = s.restaurants.CountPendingRestaurants(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending restaurants")
	}
	if stats.TotalOrders, err = s.orders.Count(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	if revenue, err = s.orders.SumPaidRevenue(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum revenue")
	}
	stats.TotalRevenue = revenue.StringFixed(2)
	return &stats, nil
}

func (s *service) PendingRestaurants(ctx context.Context) ([]catalog.RestaurantDTO, error) {
	rows, err := s.restaurants.ListPendingRestaurants(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending restaurants")
	}
	out := make([]catalog.RestaurantDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, catalog.RestaurantFromModel(row))
	}
	return out, nil
}

func (s *service) ApproveRestaurant(ctx context.Context, id uuid.UUID) error {
	if err := s.restaurants.ApproveRestaurant(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve restaurant")
	}
	return nil
}

func (s *service) RecentOrders(ctx context.Context, limit int) ([]orders.OrderDTO, error) {
	if limit <= 0 {
		limit = DefaultRecentOrders
	}
	rows, err := s.orders.ListRecent(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recent orders")
	}
	out := make([]orders.OrderDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, orders.FromModel(row))
	}
	return out, nil
}

func (s *service) Users(ctx context.Context) ([]users.UserDTO, error) {
	rows, err := s.users.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	out := make([]users.UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *users.FromModel(&rows[i]))
	}
	return out, nil
}
