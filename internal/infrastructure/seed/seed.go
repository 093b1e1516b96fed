// Package seed bootstraps the database on startup: a default admin
// account, and sample customers and stock when their collections are
// empty. Seeding is idempotent and safe to run on every boot.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
	"github.com/stillmaster/stillmaster-api/internal/core/ports"
	mongodb "github.com/stillmaster/stillmaster-api/internal/infrastructure/db/mongo"
)

// Run seeds the admin user and, on an empty database, sample data.
func Run(
	ctx context.Context,
	users ports.UserRepository,
	customers *mongodb.CustomerRepository,
	stocks *mongodb.StockRepository,
	auth ports.AuthService,
	adminEmail, adminPassword string,
	log zerolog.Logger,
) error {
	if err := seedAdmin(ctx, users, auth, adminEmail, adminPassword, log); err != nil {
		return err
	}
	if err := seedCustomers(ctx, customers, adminEmail, log); err != nil {
		return err
	}
	return seedStocks(ctx, stocks, adminEmail, log)
}

func seedAdmin(ctx context.Context, users ports.UserRepository, auth ports.AuthService, email, password string, log zerolog.Logger) error {
	if _, err := users.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("seed admin: %w", err)
	}

	_, err := auth.Register(ctx, ports.RegisterInput{
		Email:     email,
		Password:  password,
		FirstName: "Admin",
		LastName:  "User",
		Roles:     []string{domain.RoleAdmin},
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	log.Info().Str("email", email).Msg("seeded admin user")
	return nil
}

func seedCustomers(ctx context.Context, repo *mongodb.CustomerRepository, createdBy string, log zerolog.Logger) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed customers: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	samples := []*domain.Customer{
		{
			Name:          "Galway Spirits Trading",
			CompanyName:   "Galway Spirits Trading Ltd",
			Email:         "orders@galwayspirits.ie",
			Address:       "12 Quay Street",
			City:          "Galway",
			Country:       "Ireland",
			CustomerType:  domain.CustomerWholesale,
			LicenseNumber: "WL-2024-0042",
			CreatedAt:     now,
		},
		{
			Name:         "The Long Hall",
			Email:        "bar@thelonghall.ie",
			Address:      "51 South Great George's Street",
			City:         "Dublin",
			Country:      "Ireland",
			CustomerType: domain.CustomerRetail,
			CreatedAt:    now,
		},
	}

	for _, c := range samples {
		if _, err := repo.Insert(ctx, c); err != nil {
			return fmt.Errorf("seed customers: %w", err)
		}
	}

	log.Info().Int("count", len(samples)).Msg("seeded sample customers")
	return nil
}

func seedStocks(ctx context.Context, repo *mongodb.StockRepository, createdBy string, log zerolog.Logger) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed stocks: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	samples := []*domain.Stock{
		{
			ProductName:     "Micil Long Walk",
			ProductType:     "Whiskey",
			BatchNumber:     "BATCH-2025-001",
			QuantityInStock: decimal.NewFromInt(50),
			UnitOfMeasure:   "bottles",
			AlcoholByVolume: decimal.NewFromInt(43),
			UnitPrice:       decimal.NewFromInt(39),
			Location:        "Warehouse A-1",
			CreatedAt:       now,
			CreatedBy:       createdBy,
		},
		{
			ProductName:     "Micil Earls Island",
			ProductType:     "Whiskey",
			BatchNumber:     "BATCH-2025-002",
			QuantityInStock: decimal.NewFromInt(35),
			UnitOfMeasure:   "bottles",
			AlcoholByVolume: decimal.NewFromInt(46),
			UnitPrice:       decimal.NewFromInt(55),
			Location:        "Warehouse A-1",
			CreatedAt:       now,
			CreatedBy:       createdBy,
		},
		{
			ProductName:     "Micil Irish Poitin",
			ProductType:     "Poitin",
			BatchNumber:     "BATCH-2025-003",
			QuantityInStock: decimal.NewFromInt(120),
			UnitOfMeasure:   "bottles",
			AlcoholByVolume: decimal.NewFromInt(44),
			UnitPrice:       decimal.NewFromInt(32),
			Location:        "Warehouse B-2",
			CreatedAt:       now,
			CreatedBy:       createdBy,
		},
	}

	for _, s := range samples {
		if _, err := repo.Insert(ctx, s); err != nil {
			return fmt.Errorf("seed stocks: %w", err)
		}
	}

	log.Info().Int("count", len(samples)).Msg("seeded sample stock")
	return nil
}
