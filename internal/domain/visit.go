package domain

// FieldVisit is the deserialized eHSN field-visit form. Every section is
// optional; an absent section simply contributes no records.
type FieldVisit struct {
	StageMeasurements       *StageMeasurementsSection `json:"stage_measurements,omitempty"`
	DischargeMeasurement    *DischargeSection         `json:"discharge_measurement,omitempty"`
	EnvironmentalConditions *EnvironmentSection       `json:"environmental_conditions,omitempty"`
	SensorResults           *SensorResultsSection     `json:"sensor_results,omitempty"`
}

// StageMeasurementsSection holds the ordered stage (water level) readings
// taken during the visit.
type StageMeasurementsSection struct {
	Rows []StageRow `json:"rows"`
}

// StageRow is a single water level reading. WL1 is the primary sensor
// reading, WL2 the secondary; the form guarantees at least one of the two.
type StageRow struct {
	Time              string   `json:"time"`
	WL1               *float64 `json:"wl1,omitempty"`
	WL2               *float64 `json:"wl2,omitempty"`
	Correction        *float64 `json:"correction,omitempty"`
	CorrectionApplied string   `json:"correction_applied,omitempty"` // who or what applied the correction
}

// DischargeSection is the discharge measurement summary. The form guarantees
// all seven scalars when the section is present.
type DischargeSection struct {
	StartTime       string   `json:"start_time"`
	EndTime         string   `json:"end_time"`
	AirTemp         *float64 `json:"air_temp,omitempty"`
	WaterTemp       *float64 `json:"water_temp,omitempty"`
	Width           *float64 `json:"width,omitempty"`
	Area            *float64 `json:"area,omitempty"`
	MeanVelocity    *float64 `json:"mean_velocity,omitempty"`
	MeanGaugeHeight *float64 `json:"mean_gauge_height,omitempty"`
	Discharge       *float64 `json:"discharge,omitempty"`
}

// EnvironmentSection holds environmental conditions noted at the station.
type EnvironmentSection struct {
	BatteryVoltage *float64 `json:"battery_voltage,omitempty"`
}

// SensorResultsSection holds the logged sensor samples as three parallel
// columns of equal length, indexed positionally: index i across all three
// slices describes one sample.
type SensorResultsSection struct {
	Names  []string  `json:"sensor_names"`
	Times  []string  `json:"sample_times"`
	Values []float64 `json:"sample_values"`
}
