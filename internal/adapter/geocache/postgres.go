package geocache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cvneat/delivery-quote-service/internal/domain"
)

// geocodeRow is the gorm model for the persistent cache table.
type geocodeRow struct {
	AddressHash string    `gorm:"column:address_hash;primaryKey;size:32"`
	RawAddress  string    `gorm:"column:raw_address"`
	Lat         float64   `gorm:"column:lat"`
	Lng         float64   `gorm:"column:lng"`
	PostalCode  string    `gorm:"column:postal_code;size:5"`
	City        string    `gorm:"column:city"`
	DisplayName string    `gorm:"column:display_name"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	LastUsedAt  time.Time `gorm:"column:last_used_at"`
}

func (geocodeRow) TableName() string { return "geocode_cache" }

// PostgresStore implements Store on a gorm Postgres connection.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore migrates the cache table and returns the store.
func NewPostgresStore(db *gorm.DB) (*PostgresStore, error) {
	if err := db.AutoMigrate(&geocodeRow{}); err != nil {
		return nil, fmt.Errorf("migrate geocode_cache: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Get(ctx context.Context, addressHash string) (domain.GeocodedAddress, bool, error) {
	var row geocodeRow
	err := s.db.WithContext(ctx).First(&row, "address_hash = ?", addressHash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.GeocodedAddress{}, false, nil
	}
	if err != nil {
		return domain.GeocodedAddress{}, false, fmt.Errorf("get geocode row: %w", err)
	}
	return domain.GeocodedAddress{
		AddressHash: row.AddressHash,
		RawAddress:  row.RawAddress,
		Coordinate:  domain.Coordinate{Lat: row.Lat, Lng: row.Lng},
		PostalCode:  row.PostalCode,
		City:        row.City,
		DisplayName: row.DisplayName,
		LastUsedAt:  row.LastUsedAt,
	}, true, nil
}

func (s *PostgresStore) Put(ctx context.Context, addr domain.GeocodedAddress) error {
	row := geocodeRow{
		AddressHash: addr.AddressHash,
		RawAddress:  addr.RawAddress,
		Lat:         addr.Coordinate.Lat,
		Lng:         addr.Coordinate.Lng,
		PostalCode:  addr.PostalCode,
		City:        addr.City,
		DisplayName: addr.DisplayName,
		CreatedAt:   addr.LastUsedAt,
		LastUsedAt:  addr.LastUsedAt,
	}
	// Single-key upsert keeps concurrent writes of the same address
	// harmless: entries are content-addressed and identical.
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address_hash"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_used_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert geocode row: %w", err)
	}
	return nil
}

func (s *PostgresStore) Touch(ctx context.Context, addressHash string, usedAt time.Time) error {
	err := s.db.WithContext(ctx).Model(&geocodeRow{}).
		Where("address_hash = ?", addressHash).
		Update("last_used_at", usedAt).Error
	if err != nil {
		return fmt.Errorf("touch geocode row: %w", err)
	}
	return nil
}
