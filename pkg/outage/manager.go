package outage

import (
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"outage-pulse/pkg/repositories"
	"outage-pulse/pkg/types"
)

// Metrics receives lifecycle events for monitoring. The prometheus collector
// implements it; tests pass nil-safe no-ops via the manager's guard.
type Metrics interface {
	RecordReport(created bool)
	RecordRestore()
	RecordDelete()
}

// Manager implements the outage lifecycle: deduplicating reports into tracked
// outages, escalating confidence, and applying the one-way resolved transition.
type Manager struct {
	outageRepo    repositories.OutageRepository
	slackReporter *SlackReporter
	clock         clockwork.Clock
	metrics       Metrics
	logger        *logrus.Logger
}

// NewManager creates a new Manager instance. slackReporter and metrics may be
// nil, in which case Slack reporting and metric recording are skipped.
func NewManager(
	outageRepo repositories.OutageRepository,
	slackReporter *SlackReporter,
	clock clockwork.Clock,
	metrics Metrics,
	logger *logrus.Logger,
) *Manager {
	return &Manager{
		outageRepo:    outageRepo,
		slackReporter: slackReporter,
		clock:         clock,
		metrics:       metrics,
		logger:        logger,
	}
}

// ReportOutage records a disruption report. When an ongoing outage already
// exists for the (service, area) pair the report counts as a confirmation:
// ConfirmCount is incremented and ConfidenceLevel recomputed. Otherwise a new
// ongoing outage is created. The returned created flag distinguishes the two
// outcomes. The lookup and write run in one transaction with a row lock, so
// concurrent identical reports cannot both insert.
func (m *Manager) ReportOutage(req *types.ReportOutageRequest) (*types.Outage, bool, error) {
	candidate := types.Outage{
		Service: types.ServiceType(req.Service),
		Area:    req.Area,
	}
	if req.DownTime != nil {
		candidate.DownTime = *req.DownTime
	}

	if message, valid := candidate.Validate(); !valid {
		m.logger.WithFields(logrus.Fields{
			"service":          req.Service,
			"area":             req.Area,
			"validation_error": message,
		}).Warn("Rejected invalid outage report")
		return nil, false, types.ErrMissingFields
	}

	var outage *types.Outage
	var created bool
	err := m.outageRepo.Transaction(func(txRepo repositories.OutageRepository) error {
		existing, err := txRepo.GetOngoingOutageForUpdate(candidate.Service, candidate.Area)
		if err != nil {
			return err
		}

		if existing != nil {
			existing.ConfirmCount++
			existing.ConfidenceLevel = types.ConfidenceForCount(existing.ConfirmCount)
			if err := txRepo.SaveOutage(existing); err != nil {
				return err
			}
			outage = existing
			return nil
		}

		outage = &types.Outage{
			Service:         candidate.Service,
			Area:            candidate.Area,
			DownTime:        candidate.DownTime,
			Status:          types.StatusOngoing,
			ConfirmCount:    1,
			ConfidenceLevel: types.ConfidenceUnverified,
		}
		created = true
		return txRepo.CreateOutage(outage)
	})
	if err != nil {
		return nil, false, err
	}

	if m.metrics != nil {
		m.metrics.RecordReport(created)
	}

	m.logger.WithFields(logrus.Fields{
		"outage_id":     outage.ID,
		"service":       outage.Service,
		"area":          outage.Area,
		"confirm_count": outage.ConfirmCount,
		"created":       created,
	}).Info("Processed outage report")

	// Slack reporting happens outside the transaction: a notification failure
	// must not fail the write.
	if m.slackReporter != nil && created {
		if err := m.slackReporter.ReportOutage(outage); err != nil {
			m.logger.WithFields(logrus.Fields{
				"outage_id": outage.ID,
				"error":     err,
			}).Error("Failed to report outage to Slack, but outage was created")
		}
	}

	return outage, created, nil
}

// ListOutages returns all outages, newest first by creation time.
func (m *Manager) ListOutages() ([]types.Outage, error) {
	return m.outageRepo.ListOutages()
}

// RestoreOutage marks an ongoing outage as resolved, freezing its up time and
// duration. Restoring an already resolved outage fails with ErrAlreadyResolved;
// the values set by the first restore never change. The down time is reporter
// supplied and not clamped, so a restore before a claimed future start yields
// a negative duration.
func (m *Manager) RestoreOutage(outageID uint) (*types.Outage, error) {
	outage, err := m.outageRepo.GetOutageByID(outageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}

	if outage.Resolved() {
		return nil, types.ErrAlreadyResolved
	}

	now := m.clock.Now().Round(time.Millisecond)
	duration := now.Sub(outage.DownTime).Minutes()

	outage.UpTime.Time = now
	outage.UpTime.Valid = true
	outage.DurationMinutes = &duration
	outage.Status = types.StatusResolved

	if err := m.outageRepo.SaveOutage(outage); err != nil {
		return nil, err
	}

	if m.metrics != nil {
		m.metrics.RecordRestore()
	}

	m.logger.WithFields(logrus.Fields{
		"outage_id":        outage.ID,
		"service":          outage.Service,
		"area":             outage.Area,
		"duration_minutes": duration,
	}).Info("Outage restored")

	if m.slackReporter != nil {
		if err := m.slackReporter.ReportRestore(outage); err != nil {
			m.logger.WithFields(logrus.Fields{
				"outage_id": outage.ID,
				"error":     err,
			}).Error("Failed to report restore to Slack, but outage was resolved")
		}
	}

	return outage, nil
}

// DeleteOutage removes an outage. Deleting a missing record succeeds, so the
// operation is idempotent from the caller's perspective. Authorization is
// enforced at the transport boundary before this is reached.
func (m *Manager) DeleteOutage(outageID uint) error {
	if err := m.outageRepo.DeleteOutageByID(outageID); err != nil {
		return err
	}

	if m.metrics != nil {
		m.metrics.RecordDelete()
	}

	m.logger.WithField("outage_id", outageID).Info("Outage deleted")
	return nil
}
