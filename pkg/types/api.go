package types

import "time"

// ReportOutageRequest represents the fields a client submits when reporting a
// service disruption.
type ReportOutageRequest struct {
	Service  string     `json:"service"`
	Area     string     `json:"area"`
	DownTime *time.Time `json:"down_time"`
}

// ReportOutageResponse wraps the stored outage together with the signal that
// distinguishes a freshly created record from a confirmation of an existing one.
type ReportOutageResponse struct {
	Outage    *Outage `json:"outage"`
	Confirmed bool    `json:"confirmed"`
}

// StatsReport aggregates downtime totals over resolved outages.
type StatsReport struct {
	TotalDowntimeMinutes   float64                 `json:"total_downtime_minutes"`
	AverageDowntimeMinutes float64                 `json:"average_downtime_minutes"`
	ServiceWiseDowntime    map[ServiceType]float64 `json:"service_wise_downtime"`
	ReliabilityScores      map[ServiceType]float64 `json:"reliability_scores"`
}

// InsightsReport summarizes when and where outages tend to start, over all
// outages regardless of status.
type InsightsReport struct {
	PeakOutageHour int            `json:"peak_outage_hour"`
	WorstDayOfWeek time.Weekday   `json:"worst_day_of_week"`
	RecurringAreas map[string]int `json:"recurring_areas"`
}

// ImpactReport estimates the cumulative effect of resolved outages.
type ImpactReport struct {
	EstimatedTimeLostHours float64     `json:"estimated_time_lost_hours"`
	MostAffectedArea       string      `json:"most_affected_area"`
	MostDisruptiveService  ServiceType `json:"most_disruptive_service"`
}
