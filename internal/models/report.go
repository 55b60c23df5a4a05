package models

import (
	"github.com/go-playground/validator/v10"
)

// Report type values. "diffrent_stop_location" is misspelled on the upstream
// wire contract and must stay that way.
const (
	ReportTypeDelay               = "delay"
	ReportTypeAccident            = "accident"
	ReportTypePress               = "press"
	ReportTypeFailure             = "failure"
	ReportTypeDidNotArrive        = "did_not_arrive"
	ReportTypeChange              = "change"
	ReportTypeOther               = "other"
	ReportTypeDifferentStopLoc    = "diffrent_stop_location"
	ReportTypeRequestStop         = "request_stop"
)

// ReportTypes lists every accepted report type, in upstream enum order.
var ReportTypes = []string{
	ReportTypeDelay,
	ReportTypeAccident,
	ReportTypePress,
	ReportTypeFailure,
	ReportTypeDidNotArrive,
	ReportTypeChange,
	ReportTypeOther,
	ReportTypeDifferentStopLoc,
	ReportTypeRequestStop,
}

// IsReportType reports whether t is a known report type.
func IsReportType(t string) bool {
	for _, rt := range ReportTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// Severity buckets for report display, derived from the report type.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// ReportSeverity classifies a report type: accidents, failures and no-shows
// are critical, delays and crowding are warnings, everything else is info.
func ReportSeverity(t string) Severity {
	switch t {
	case ReportTypeAccident, ReportTypeFailure, ReportTypeDidNotArrive:
		return SeverityCritical
	case ReportTypeDelay, ReportTypePress:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Report is a rider-submitted incident. Immutable once created except for
// delete; the upstream API owns its lifecycle.
type Report struct {
	ID          int64        `json:"id"`
	Run         *int         `json:"run,omitempty"`
	RouteID     *int64       `json:"route_id,omitempty"`
	Type        string       `json:"type,omitempty"`
	Description *string      `json:"description,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	CreatedAt   string       `json:"created_at,omitempty"`
}

// CreateReportInput is the validated payload for submitting a report against
// a route. Validation happens here, before the request is forwarded; the
// upstream API's own rejection is surfaced verbatim.
type CreateReportInput struct {
	Run         *int        `json:"run,omitempty"`
	Type        string      `json:"type" binding:"required,oneof=delay accident press failure did_not_arrive change other diffrent_stop_location request_stop"`
	Description string      `json:"description,omitempty" binding:"max=255"`
	Coordinates Coordinates `json:"coordinates" binding:"required"`
}

// NewValidator builds the validator used at the upstream decoding boundary.
// Payloads are validated exactly once, when they enter the process.
func NewValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}
