package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Parameter identifiers understood by the downstream time-series store.
// Opaque to this service; it only assigns them.
const (
	ParamGaugeHeight    = "stage_gauge_height"
	ParamAirTemp        = "air_temperature"
	ParamWaterTemp      = "water_temperature"
	ParamSectionWidth   = "section_width"
	ParamSectionArea    = "section_area"
	ParamMeanVelocity   = "mean_velocity"
	ParamDischarge      = "discharge"
	ParamBatteryVoltage = "battery_voltage"
	ParamHeadStage      = "head_stage"
)

// Unit identifiers, equally opaque to this service.
const (
	UnitMetres               = "m"
	UnitCelsius              = "degC"
	UnitSquareMetres         = "m^2"
	UnitMetresPerSecond      = "m/s"
	UnitCubicMetresPerSecond = "m^3/s"
	UnitVolts                = "V"
)

// MeasurementRecord is one typed, time-stamped observation extracted from a
// field visit. StartTime never exceeds EndTime; instantaneous observations
// carry the same value in both. A record whose anchor could not be resolved
// carries the zero time in both.
type MeasurementRecord struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Parameter string    `json:"parameter"`
	Unit      string    `json:"unit"`
	Value     float64   `json:"value"`
	Remark    string    `json:"remark,omitempty"`
}

// VisitMeasurements aggregates the extracted records of one field visit.
// Each category keeps the order of its source rows; categories are never
// merged or re-sorted.
type VisitMeasurements struct {
	VisitID   string `json:"visit_id"`
	StationNo string `json:"station_no"`
	VisitDate string `json:"visit_date"`
	UTCOffset string `json:"utc_offset"`

	Stage       []MeasurementRecord `json:"stage,omitempty"`
	Discharge   []MeasurementRecord `json:"discharge,omitempty"`
	Environment []MeasurementRecord `json:"environment,omitempty"`
	Sensor      []MeasurementRecord `json:"sensor,omitempty"`

	ProcessedAt time.Time `json:"processed_at"`
}

// RecordCount returns the total number of records across all categories.
func (m VisitMeasurements) RecordCount() int {
	return len(m.Stage) + len(m.Discharge) + len(m.Environment) + len(m.Sensor)
}

// VisitID produces a deterministic ID from the visit's key fields.
// Deterministic IDs keep downstream upserts idempotent and make replaying
// the same raw visit safe.
func VisitID(stationNo, visitDate string) string {
	hash := sha256.Sum256([]byte(stationNo + "|" + visitDate))
	short := hex.EncodeToString(hash[:8])
	if stationNo == "" {
		return short
	}
	return stationNo + "-" + short
}
