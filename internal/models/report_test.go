package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportSeverity(t *testing.T) {
	tests := []struct {
		reportType string
		expected   Severity
	}{
		{ReportTypeAccident, SeverityCritical},
		{ReportTypeFailure, SeverityCritical},
		{ReportTypeDidNotArrive, SeverityCritical},
		{ReportTypeDelay, SeverityWarning},
		{ReportTypePress, SeverityWarning},
		{ReportTypeChange, SeverityInfo},
		{ReportTypeOther, SeverityInfo},
		{ReportTypeDifferentStopLoc, SeverityInfo},
		{ReportTypeRequestStop, SeverityInfo},
		{"unknown", SeverityInfo},
	}

	for _, tt := range tests {
		t.Run(tt.reportType, func(t *testing.T) {
			assert.Equal(t, tt.expected, ReportSeverity(tt.reportType))
		})
	}
}

func TestIsReportType(t *testing.T) {
	for _, rt := range ReportTypes {
		assert.True(t, IsReportType(rt), rt)
	}
	assert.False(t, IsReportType(""))
	assert.False(t, IsReportType("Delay"))
	assert.False(t, IsReportType("different_stop_location"), "corrected spelling is not part of the contract")
}

func TestRouteDisplayType(t *testing.T) {
	assert.Equal(t, RouteTypeBus, Route{}.DisplayType())
	assert.Equal(t, RouteTypeTram, Route{Type: RouteTypeTram}.DisplayType())
}

func TestValidatorCoordinates(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(Coordinates{Latitude: 50.5, Longitude: 18.0}))
	assert.NoError(t, v.Struct(Coordinates{Latitude: -90, Longitude: 180}))
	assert.Error(t, v.Struct(Coordinates{Latitude: 90.1, Longitude: 0}))
	assert.Error(t, v.Struct(Coordinates{Latitude: 0, Longitude: -180.5}))
}
