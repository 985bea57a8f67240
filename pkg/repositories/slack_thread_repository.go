package repositories

import (
	"gorm.io/gorm"

	"outage-pulse/pkg/types"
)

// SlackThreadRepository defines the interface for Slack thread persistence.
type SlackThreadRepository interface {
	CreateThread(thread *types.SlackThread) error
	GetThreadsForOutage(outageID uint) ([]types.SlackThread, error)
}

// gormSlackThreadRepository is a GORM implementation of SlackThreadRepository.
type gormSlackThreadRepository struct {
	db *gorm.DB
}

// NewGORMSlackThreadRepository creates a new GORM-based SlackThreadRepository.
func NewGORMSlackThreadRepository(db *gorm.DB) SlackThreadRepository {
	return &gormSlackThreadRepository{db: db}
}

func (r *gormSlackThreadRepository) CreateThread(thread *types.SlackThread) error {
	return r.db.Create(thread).Error
}

func (r *gormSlackThreadRepository) GetThreadsForOutage(outageID uint) ([]types.SlackThread, error) {
	var threads []types.SlackThread
	err := r.db.Where("outage_id = ?", outageID).Find(&threads).Error
	return threads, err
}
