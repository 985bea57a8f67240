package types

import (
	"database/sql"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ServiceType identifies which utility service an outage affects.
type ServiceType string

const (
	ServiceElectricity ServiceType = "electricity"
	ServiceWater       ServiceType = "water"
	ServiceInternet    ServiceType = "internet"
	ServiceTransport   ServiceType = "transport"
)

// AllServices lists every service type in a fixed order. Analytics reductions
// iterate this slice so ties resolve to the earliest entry.
var AllServices = []ServiceType{ServiceElectricity, ServiceWater, ServiceInternet, ServiceTransport}

// IsValidService checks if the provided service string is a known service type.
func IsValidService(service string) bool {
	switch ServiceType(service) {
	case ServiceElectricity, ServiceWater, ServiceInternet, ServiceTransport:
		return true
	default:
		return false
	}
}

// OutageStatus is the lifecycle state of an outage. The only transition is
// ongoing -> resolved, applied exactly once by the restore operation.
type OutageStatus string

const (
	StatusOngoing  OutageStatus = "ongoing"
	StatusResolved OutageStatus = "resolved"
)

// ConfidenceLevel is a three-tier trust signal derived solely from the number
// of reports confirming an outage.
type ConfidenceLevel string

const (
	ConfidenceUnverified ConfidenceLevel = "unverified"
	ConfidenceLikely     ConfidenceLevel = "likely"
	ConfidenceConfirmed  ConfidenceLevel = "confirmed"
)

// ConfidenceForCount maps a confirmation count to its confidence level.
// The mapping is monotonic: 1 -> unverified, 2 -> likely, >=3 -> confirmed.
func ConfidenceForCount(count int) ConfidenceLevel {
	switch {
	case count >= 3:
		return ConfidenceConfirmed
	case count == 2:
		return ConfidenceLikely
	default:
		return ConfidenceUnverified
	}
}

// Outage represents one tracked disruption of a service in an area.
// Exactly one ongoing outage may exist per (service, area) pair; additional
// reports for the same pair increment ConfirmCount instead of inserting.
type Outage struct {
	gorm.Model
	Service  ServiceType  `json:"service" gorm:"column:service;not null;index:idx_service_area"`
	Area     string       `json:"area" gorm:"column:area;not null;index:idx_service_area"`
	DownTime time.Time    `json:"down_time" gorm:"column:down_time;not null"`
	UpTime   sql.NullTime `json:"up_time" gorm:"column:up_time"`
	// DurationMinutes is computed once at restoration and never recomputed.
	// Fractional minutes are preserved.
	DurationMinutes *float64        `json:"duration_minutes,omitempty" gorm:"column:duration_minutes"`
	Status          OutageStatus    `json:"status" gorm:"column:status;not null;index"`
	ConfirmCount    int             `json:"confirm_count" gorm:"column:confirm_count;not null;default:1"`
	ConfidenceLevel ConfidenceLevel `json:"confidence_level" gorm:"column:confidence_level;not null"`
}

// Resolved reports whether the outage has reached its terminal state.
func (o *Outage) Resolved() bool {
	return o.Status == StatusResolved
}

// SlackThread records the Slack message posted for an outage so the restore
// notification can reply in the same thread.
type SlackThread struct {
	gorm.Model
	OutageID        uint   `json:"-" gorm:"column:outage_id;not null;index"`
	Channel         string `json:"channel" gorm:"column:channel;not null"`
	ChannelID       string `json:"channel_id" gorm:"column:channel_id"`
	ThreadTimestamp string `json:"thread_timestamp" gorm:"column:thread_timestamp;not null"`
}

// Validate validates a new outage report and returns an error message and
// whether it's valid. Returns an empty string and true if valid, otherwise
// returns an aggregated error message and false.
func (o *Outage) Validate() (string, bool) {
	var validationErrors []string

	if o.Service == "" {
		validationErrors = append(validationErrors, "Service is required")
	} else if !IsValidService(string(o.Service)) {
		validationErrors = append(validationErrors, "Invalid service. Must be one of: electricity, water, internet, transport")
	}

	if strings.TrimSpace(o.Area) == "" {
		validationErrors = append(validationErrors, "Area is required")
	}

	if o.DownTime.IsZero() {
		validationErrors = append(validationErrors, "DownTime is required")
	}

	if len(validationErrors) > 0 {
		return strings.Join(validationErrors, "; "), false
	}

	return "", true
}
