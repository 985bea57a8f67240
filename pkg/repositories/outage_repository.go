package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"outage-pulse/pkg/types"
)

// OutageRepository defines the interface for outage database operations.
type OutageRepository interface {
	CreateOutage(outage *types.Outage) error
	SaveOutage(outage *types.Outage) error

	GetOutageByID(outageID uint) (*types.Outage, error)
	// GetOngoingOutageForUpdate looks up the single ongoing outage for a
	// (service, area) pair, locking the row when called inside a transaction.
	// Returns (nil, nil) when no ongoing outage exists.
	GetOngoingOutageForUpdate(service types.ServiceType, area string) (*types.Outage, error)

	// ListOutages returns all outages ordered by creation time, newest first.
	ListOutages() ([]types.Outage, error)
	ListAllForAnalytics() ([]types.Outage, error)
	ListResolvedOutages() ([]types.Outage, error)

	// DeleteOutageByID deletes the outage if present. Deleting a missing
	// record is not an error.
	DeleteOutageByID(outageID uint) error

	Transaction(fn func(OutageRepository) error) error
}

// gormOutageRepository is a GORM implementation of OutageRepository.
type gormOutageRepository struct {
	db *gorm.DB
}

// NewGORMOutageRepository creates a new GORM-based OutageRepository.
func NewGORMOutageRepository(db *gorm.DB) OutageRepository {
	return &gormOutageRepository{db: db}
}

// roundOutageTimes rounds the reported timestamps to the nearest millisecond.
// Duration math is specified at millisecond resolution.
func roundOutageTimes(outage *types.Outage) {
	outage.DownTime = outage.DownTime.Round(time.Millisecond)
	if outage.UpTime.Valid {
		outage.UpTime.Time = outage.UpTime.Time.Round(time.Millisecond)
	}
}

// CreateOutage creates a new outage record in the database.
func (r *gormOutageRepository) CreateOutage(outage *types.Outage) error {
	roundOutageTimes(outage)
	return r.db.Create(outage).Error
}

// SaveOutage updates an existing outage record in the database.
func (r *gormOutageRepository) SaveOutage(outage *types.Outage) error {
	roundOutageTimes(outage)
	return r.db.Save(outage).Error
}

// GetOutageByID retrieves a specific outage by ID.
// Returns gorm.ErrRecordNotFound if the outage is not found.
func (r *gormOutageRepository) GetOutageByID(outageID uint) (*types.Outage, error) {
	var outage types.Outage
	err := r.db.Where("id = ?", outageID).First(&outage).Error
	if err != nil {
		return nil, err
	}
	return &outage, nil
}

// GetOngoingOutageForUpdate retrieves the ongoing outage for a (service, area)
// pair with a row-level lock. Inside a transaction this serializes concurrent
// reports for the same pair, so only one of them can insert.
func (r *gormOutageRepository) GetOngoingOutageForUpdate(service types.ServiceType, area string) (*types.Outage, error) {
	var outage types.Outage
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("service = ? AND area = ? AND status = ?", service, area, types.StatusOngoing).
		First(&outage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &outage, nil
}

// ListOutages retrieves all outages ordered by creation time descending.
func (r *gormOutageRepository) ListOutages() ([]types.Outage, error) {
	var outages []types.Outage
	err := r.db.Order("created_at DESC").Find(&outages).Error
	return outages, err
}

// ListAllForAnalytics retrieves every outage without any ordering guarantee.
// Analytics reductions are order-independent.
func (r *gormOutageRepository) ListAllForAnalytics() ([]types.Outage, error) {
	var outages []types.Outage
	err := r.db.Find(&outages).Error
	return outages, err
}

// ListResolvedOutages retrieves all outages that have reached the resolved state.
func (r *gormOutageRepository) ListResolvedOutages() ([]types.Outage, error) {
	var outages []types.Outage
	err := r.db.Where("status = ?", types.StatusResolved).Find(&outages).Error
	return outages, err
}

// DeleteOutageByID deletes an outage from the database. GORM's Delete does not
// report an error for a missing record, which matches the idempotent contract.
func (r *gormOutageRepository) DeleteOutageByID(outageID uint) error {
	return r.db.Delete(&types.Outage{}, outageID).Error
}

// Transaction runs fn against a repository bound to a database transaction.
func (r *gormOutageRepository) Transaction(fn func(OutageRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormOutageRepository{db: tx})
	})
}
