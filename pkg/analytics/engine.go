// Package analytics computes read-side summaries over the stored outages.
// Every computation is a full scan reduced in memory; nothing is persisted, so
// results always reflect the records committed at scan time.
package analytics

import (
	"time"

	"github.com/sirupsen/logrus"

	"outage-pulse/pkg/repositories"
	"outage-pulse/pkg/types"
)

// Engine produces the stats, insights, and impact reports. Each Compute method
// returns nil when its scanned population is empty; the transport layer
// serializes that as an empty object.
type Engine struct {
	outageRepo repositories.OutageRepository
	logger     *logrus.Logger
}

// NewEngine creates a new Engine instance.
func NewEngine(outageRepo repositories.OutageRepository, logger *logrus.Logger) *Engine {
	return &Engine{
		outageRepo: outageRepo,
		logger:     logger,
	}
}

// ComputeStats aggregates downtime over resolved outages. The reliability
// score is a fixed linear penalty: max(0, 100 - downtimeHours*2) per service.
func (e *Engine) ComputeStats() (*types.StatsReport, error) {
	resolved, err := e.outageRepo.ListResolvedOutages()
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, nil
	}

	report := &types.StatsReport{
		ServiceWiseDowntime: make(map[types.ServiceType]float64),
		ReliabilityScores:   make(map[types.ServiceType]float64),
	}

	for _, outage := range resolved {
		if outage.DurationMinutes == nil {
			// Resolved outages always carry a duration; skip rather than crash
			// if a hand-edited record violates that.
			e.logger.WithField("outage_id", outage.ID).Warn("Resolved outage without duration, skipping in stats")
			continue
		}
		report.TotalDowntimeMinutes += *outage.DurationMinutes
		report.ServiceWiseDowntime[outage.Service] += *outage.DurationMinutes
	}

	report.AverageDowntimeMinutes = report.TotalDowntimeMinutes / float64(len(resolved))

	for service, minutes := range report.ServiceWiseDowntime {
		score := 100 - (minutes/60)*2
		if score < 0 {
			score = 0
		}
		report.ReliabilityScores[service] = score
	}

	return report, nil
}

// ComputeInsights summarizes when and where outages start, over all outages
// regardless of status. Ties on the peak hour and worst day resolve to the
// lowest value.
func (e *Engine) ComputeInsights() (*types.InsightsReport, error) {
	outages, err := e.outageRepo.ListAllForAnalytics()
	if err != nil {
		return nil, err
	}
	if len(outages) == 0 {
		return nil, nil
	}

	var hourCounts [24]int
	var dayCounts [7]int
	areas := make(map[string]int)

	for _, outage := range outages {
		hourCounts[outage.DownTime.Hour()]++
		dayCounts[outage.DownTime.Weekday()]++
		areas[outage.Area]++
	}

	return &types.InsightsReport{
		PeakOutageHour: maxIndex(hourCounts[:]),
		WorstDayOfWeek: time.Weekday(maxIndex(dayCounts[:])),
		RecurringAreas: areas,
	}, nil
}

// ComputeImpact estimates the cumulative effect of resolved outages. Ties on
// the most affected area resolve to the lexicographically smallest area; ties
// on the most disruptive service resolve to the first service in enum order.
func (e *Engine) ComputeImpact() (*types.ImpactReport, error) {
	resolved, err := e.outageRepo.ListResolvedOutages()
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, nil
	}

	areaHours := make(map[string]float64)
	serviceHours := make(map[types.ServiceType]float64)
	var totalHours float64

	for _, outage := range resolved {
		if outage.DurationMinutes == nil {
			e.logger.WithField("outage_id", outage.ID).Warn("Resolved outage without duration, skipping in impact")
			continue
		}
		hours := *outage.DurationMinutes / 60
		totalHours += hours
		areaHours[outage.Area] += hours
		serviceHours[outage.Service] += hours
	}

	report := &types.ImpactReport{
		EstimatedTimeLostHours: totalHours,
	}

	var bestAreaSet bool
	var bestAreaHours float64
	for area, hours := range areaHours {
		if !bestAreaSet || hours > bestAreaHours || (hours == bestAreaHours && area < report.MostAffectedArea) {
			report.MostAffectedArea = area
			bestAreaHours = hours
			bestAreaSet = true
		}
	}

	var bestServiceHours float64
	var bestServiceSet bool
	for _, service := range types.AllServices {
		hours, ok := serviceHours[service]
		if !ok {
			continue
		}
		if !bestServiceSet || hours > bestServiceHours {
			report.MostDisruptiveService = service
			bestServiceHours = hours
			bestServiceSet = true
		}
	}

	return report, nil
}

// maxIndex returns the index of the highest count, preferring the lowest index
// on ties.
func maxIndex(counts []int) int {
	best := 0
	for i, count := range counts {
		if count > counts[best] {
			best = i
		}
	}
	return best
}
