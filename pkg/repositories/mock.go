package repositories

import (
	"gorm.io/gorm"

	"outage-pulse/pkg/types"
)

// MockOutageRepository is a mock implementation of OutageRepository for testing.
type MockOutageRepository struct {
	CreateOutageError  error
	SaveOutageError    error
	OngoingOutageError error
	ListError          error
	DeleteOutageError  error
	TransactionError   error
	// Mock data for queries
	OngoingOutage   *types.Outage
	OutageByID      *types.Outage
	OutageByIDError error
	Outages         []types.Outage
	ResolvedOutages []types.Outage
	// Captured data for assertions
	CreatedOutages []*types.Outage
	SavedOutages   []*types.Outage
	DeletedIDs     []uint
}

func (m *MockOutageRepository) CreateOutage(outage *types.Outage) error {
	if m.CreateOutageError != nil {
		return m.CreateOutageError
	}
	outageCopy := *outage
	m.CreatedOutages = append(m.CreatedOutages, &outageCopy)
	return nil
}

func (m *MockOutageRepository) SaveOutage(outage *types.Outage) error {
	if m.SaveOutageError != nil {
		return m.SaveOutageError
	}
	outageCopy := *outage
	m.SavedOutages = append(m.SavedOutages, &outageCopy)
	return nil
}

func (m *MockOutageRepository) GetOutageByID(outageID uint) (*types.Outage, error) {
	if m.OutageByIDError != nil {
		return nil, m.OutageByIDError
	}
	if m.OutageByID == nil {
		return nil, gorm.ErrRecordNotFound
	}
	outageCopy := *m.OutageByID
	return &outageCopy, nil
}

func (m *MockOutageRepository) GetOngoingOutageForUpdate(service types.ServiceType, area string) (*types.Outage, error) {
	if m.OngoingOutageError != nil {
		return nil, m.OngoingOutageError
	}
	if m.OngoingOutage == nil {
		return nil, nil
	}
	if m.OngoingOutage.Service != service || m.OngoingOutage.Area != area {
		return nil, nil
	}
	outageCopy := *m.OngoingOutage
	return &outageCopy, nil
}

func (m *MockOutageRepository) ListOutages() ([]types.Outage, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.Outages, nil
}

func (m *MockOutageRepository) ListAllForAnalytics() ([]types.Outage, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.Outages, nil
}

func (m *MockOutageRepository) ListResolvedOutages() ([]types.Outage, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.ResolvedOutages, nil
}

func (m *MockOutageRepository) DeleteOutageByID(outageID uint) error {
	if m.DeleteOutageError != nil {
		return m.DeleteOutageError
	}
	m.DeletedIDs = append(m.DeletedIDs, outageID)
	return nil
}

func (m *MockOutageRepository) Transaction(fn func(OutageRepository) error) error {
	if m.TransactionError != nil {
		return m.TransactionError
	}
	return fn(m)
}

// MockSlackThreadRepository is a mock implementation of SlackThreadRepository for testing.
type MockSlackThreadRepository struct {
	CreateThreadError error
	ThreadsForOutage  []types.SlackThread
	// Captured data for assertions
	CreatedThreads []*types.SlackThread
}

func (m *MockSlackThreadRepository) CreateThread(thread *types.SlackThread) error {
	if m.CreateThreadError != nil {
		return m.CreateThreadError
	}
	threadCopy := *thread
	m.CreatedThreads = append(m.CreatedThreads, &threadCopy)
	return nil
}

func (m *MockSlackThreadRepository) GetThreadsForOutage(outageID uint) ([]types.SlackThread, error) {
	return m.ThreadsForOutage, nil
}
