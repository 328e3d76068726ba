// Package seed loads the demo accounts, restaurants and menus used by local runs.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/delish-app/tiffin-backend/internal/catalog"
	"github.com/delish-app/tiffin-backend/internal/users"
	"github.com/delish-app/tiffin-backend/pkg/config"
	"github.com/delish-app/tiffin-backend/pkg/db/models"
	"github.com/delish-app/tiffin-backend/pkg/enums"
	"github.com/delish-app/tiffin-backend/pkg/logger"
	"github.com/delish-app/tiffin-backend/pkg/security"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type account struct {
	name     string
	email    string
	password string
	role     enums.Role
}

type dish struct {
	name        string
	description string
	price       string
	category    string
	vegetarian  bool
	spice       enums.SpiceLevel
}

type restaurant struct {
	name        string
	description string
	street      string
	zip         string
	cuisines    []string
	minutes     int
	minOrder    string
	phone       string
	email       string
	menu        []dish
}

var accounts = []account{
	{name: "Admin User", email: "admin@delish.com", password: "admin123", role: enums.RoleAdmin},
	{name: "Restaurant Owner", email: "owner@delish.com", password: "owner123", role: enums.RoleRestaurant},
	{name: "John Customer", email: "customer@delish.com", password: "customer123", role: enums.RoleCustomer},
}

var restaurants = []restaurant{
	{
		name:        "Spice Garden",
		description: "Authentic Indian cuisine with a modern twist",
		street:      "123 Main Street",
		zip:         "10001",
		cuisines:    []string{"Indian", "Vegetarian", "Halal"},
		minutes:     30,
		minOrder:    "15",
		phone:       "+1-555-0123",
		email:       "info@spicegarden.com",
		menu: []dish{
			{"Butter Chicken", "Tender chicken in a rich buttery tomato sauce", "16.99", "Main Course", false, enums.SpiceLevelMedium},
			{"Paneer Tikka", "Grilled cottage cheese with spices and vegetables", "14.99", "Appetizer", true, enums.SpiceLevelMild},
			{"Vegetable Biryani", "Fragrant rice with mixed vegetables and spices", "12.99", "Main Course", true, enums.SpiceLevelMedium},
		},
	},
	{
		name:        "Pizza Palace",
		description: "The best pizza in town with fresh ingredients",
		street:      "456 Oak Avenue",
		zip:         "10002",
		cuisines:    []string{"Italian", "Pizza", "Fast Food"},
		minutes:     25,
		minOrder:    "12",
		phone:       "+1-555-0456",
		email:       "order@pizzapalace.com",
		menu: []dish{
			{"Margherita Pizza", "Classic pizza with tomato sauce, mozzarella, and basil", "14.99", "Pizza", true, enums.DefaultSpiceLevel},
			{"Pepperoni Pizza", "Pizza with pepperoni and mozzarella cheese", "16.99", "Pizza", false, enums.DefaultSpiceLevel},
		},
	},
	{
		name:        "Green Leaf Tiffin",
		description: "Healthy home-style meals delivered daily",
		street:      "789 Green Road",
		zip:         "10003",
		cuisines:    []string{"Home-style", "Vegetarian", "Healthy"},
		minutes:     35,
		minOrder:    "8",
		phone:       "+1-555-0789",
		email:       "tiffin@greenleaf.com",
		menu: []dish{
			{"Daily Tiffin Special", "Rotating menu of home-style dishes with rice and bread", "8.99", "Tiffin", true, enums.DefaultSpiceLevel},
			{"Healthy Bowl", "Quinoa with roasted vegetables and protein of choice", "10.99", "Healthy", false, enums.DefaultSpiceLevel},
		},
	},
}

// Run inserts the demo data unless the admin account already exists.
func Run(ctx context.Context, db *gorm.DB, passwords config.PasswordConfig, logg *logger.Logger) error {
	userRepo := users.NewRepository(db)
	if _, err := userRepo.FindByEmail(ctx, accounts[0].email); err == nil {
		if logg != nil {
			logg.Info(ctx, "demo data already present")
		}
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check demo admin: %w", err)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txUsers := userRepo.WithTx(tx)
		created := make(map[enums.Role]*models.User, len(accounts))
		for _, a := range accounts {
			hash, err := security.HashPassword(a.password, passwords)
			if err != nil {
				return fmt.Errorf("hash %s: %w", a.email, err)
			}
			user, err := txUsers.Create(ctx, users.CreateUserDTO{
				Name:         a.name,
				Email:        a.email,
				PasswordHash: hash,
				Role:         a.role,
			})
			if err != nil {
				return fmt.Errorf("create %s: %w", a.email, err)
			}
			created[a.role] = user
		}

		owner := created[enums.RoleRestaurant].ID
		repo := catalog.NewRepository(tx)
		for _, r := range restaurants {
			row := &models.Restaurant{
				Name:                r.name,
				Description:         r.description,
				Street:              strPtr(r.street),
				City:                strPtr("New York"),
				State:               strPtr("NY"),
				ZipCode:             strPtr(r.zip),
				Country:             "USA",
				Cuisines:            pq.StringArray(r.cuisines),
				Rating:              decimal.Zero,
				DeliveryTimeMinutes: r.minutes,
				MinOrder:            decimal.RequireFromString(r.minOrder),
				Phone:               strPtr(r.phone),
				Email:               strPtr(r.email),
				IsActive:            true,
				IsApproved:          true,
				CreatedBy:           owner,
			}
			if err := repo.CreateRestaurant(ctx, row); err != nil {
				return fmt.Errorf("create restaurant %s: %w", r.name, err)
			}
			for _, d := range r.menu {
				item := &models.MenuItem{
					RestaurantID: row.ID,
					Name:         d.name,
					Description:  d.description,
					Price:        decimal.RequireFromString(d.price),
					Category:     d.category,
					IsVegetarian: d.vegetarian,
					IsAvailable:  true,
					SpiceLevel:   d.spice,
				}
				if err := repo.CreateMenuItem(ctx, item); err != nil {
					return fmt.Errorf("create menu item %s: %w", d.name, err)
				}
			}
		}

		if logg != nil {
			logg.Info(ctx, "demo data seeded")
		}
		return nil
	})
}

func strPtr(s string) *string {
	return &s
}
