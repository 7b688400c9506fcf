// Package restaurants resolves restaurant identifiers to pickup
// locations backed by Postgres.
package restaurants

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/cvneat/delivery-quote-service/internal/domain"
)

type restaurantRow struct {
	ID        string `gorm:"primaryKey;size:64"`
	Name      string
	Address   string
	Lat       float64
	Lng       float64
	CreatedAt time.Time
}

func (restaurantRow) TableName() string { return "restaurants" }

// PostgresDirectory reads restaurants from a gorm-managed table.
// It implements domain.RestaurantDirectory.
type PostgresDirectory struct {
	db *gorm.DB
}

// NewPostgresDirectory migrates the restaurants table and returns a
// directory over it.
func NewPostgresDirectory(db *gorm.DB) (*PostgresDirectory, error) {
	if err := db.AutoMigrate(&restaurantRow{}); err != nil {
		return nil, err
	}
	return &PostgresDirectory{db: db}, nil
}

func (d *PostgresDirectory) Lookup(ctx context.Context, id string) (domain.Restaurant, error) {
	var row restaurantRow
	err := d.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Restaurant{}, domain.ErrRestaurantNotFound
	}
	if err != nil {
		return domain.Restaurant{}, err
	}
	return domain.Restaurant{
		ID:      row.ID,
		Name:    row.Name,
		Address: row.Address,
		Center:  domain.Coordinate{Lat: row.Lat, Lng: row.Lng},
	}, nil
}

// NullDirectory is used when no database is configured. Every lookup
// reports the restaurant as unknown so callers fall back to the
// request address or the default origin.
type NullDirectory struct{}

func (NullDirectory) Lookup(context.Context, string) (domain.Restaurant, error) {
	return domain.Restaurant{}, domain.ErrRestaurantNotFound
}
