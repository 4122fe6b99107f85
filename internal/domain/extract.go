package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// observationTimeRe matches the two clock shapes the eHSN form uses,
// "HH:MM" and "HH:MM:SS". Shape only; component ranges are left to the
// timestamp constructor.
var observationTimeRe = regexp.MustCompile(`^(\d{2}):(\d{2})(?::(\d{2}))?$`)

// ErrNilVisit is returned when an extractor is constructed without a visit.
var ErrNilVisit = errors.New("field visit is nil")

// MissingFieldError reports a scalar the eHSN format guarantees for a
// present section but which the source document did not carry. The host is
// expected to reject the whole visit and surface section and field to the
// operator.
type MissingFieldError struct {
	Section string
	Field   string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: required field %q is missing", e.Section, e.Field)
}

// channelSpec maps a recognized sensor channel to its parameter/unit pair.
type channelSpec struct {
	param string
	unit  string
}

// sensorChannels is the allow-list of sensor result columns that become
// records. Adding a channel is a data change here, not a code change in the
// extraction pass. Unlisted channels are silently ignored.
var sensorChannels = map[string]channelSpec{
	"Head Stage (m)": {param: ParamHeadStage, unit: UnitMetres},
}

// Extractor converts one field visit into measurement records. It holds only
// its three constructor inputs and is used once per visit; concurrent reuse
// is pointless but harmless since nothing is mutated.
type Extractor struct {
	visit     *FieldVisit
	visitDate time.Time
	offset    time.Duration
	loc       *time.Location
}

// NewExtractor validates the inputs and prepares an extractor for one visit.
// utcOffset is the station's standard UTC offset; record timestamps are
// composed in that fixed zone.
func NewExtractor(visit *FieldVisit, visitDate time.Time, utcOffset time.Duration) (*Extractor, error) {
	if visit == nil {
		return nil, ErrNilVisit
	}
	return &Extractor{
		visit:     visit,
		visitDate: visitDate,
		offset:    utcOffset,
		loc:       time.FixedZone("", int(utcOffset/time.Second)),
	}, nil
}

// Parse runs the four extraction passes and bundles their output. The passes
// are independent of each other; a hard failure in any of them rejects the
// whole visit.
func (e *Extractor) Parse() (VisitMeasurements, error) {
	stage, err := e.extractStage()
	if err != nil {
		return VisitMeasurements{}, err
	}
	discharge, err := e.extractDischarge()
	if err != nil {
		return VisitMeasurements{}, err
	}

	return VisitMeasurements{
		UTCOffset:   FormatUTCOffset(e.offset),
		Stage:       stage,
		Discharge:   discharge,
		Environment: e.extractEnvironment(),
		Sensor:      e.extractSensorResults(),
		ProcessedAt: clock.Now().UTC(),
	}, nil
}

// extractStage emits one instantaneous gauge height record per stage row,
// in row order. Rows whose time does not resolve are dropped; a row with
// neither water level reading rejects the visit.
func (e *Extractor) extractStage() ([]MeasurementRecord, error) {
	section := e.visit.StageMeasurements
	if section == nil {
		return nil, nil
	}

	var records []MeasurementRecord
	for _, row := range section.Rows {
		at, ok := e.resolveTime(row.Time)
		if !ok {
			continue
		}
		value, err := stageReading(row)
		if err != nil {
			return nil, err
		}
		records = append(records, MeasurementRecord{
			StartTime: at,
			EndTime:   at,
			Parameter: ParamGaugeHeight,
			Unit:      UnitMetres,
			Value:     value,
			Remark:    stageRemark(row),
		})
	}
	return records, nil
}

// stageReading picks the primary reading, falling back to the secondary.
func stageReading(row StageRow) (float64, error) {
	switch {
	case row.WL1 != nil:
		return *row.WL1, nil
	case row.WL2 != nil:
		return *row.WL2, nil
	default:
		return 0, &MissingFieldError{Section: "stage_measurements", Field: "wl1/wl2"}
	}
}

// stageRemark renders the sensor reset correction note for a corrected row.
// Uncorrected rows get no remark.
func stageRemark(row StageRow) string {
	if row.Correction == nil {
		return ""
	}
	return fmt.Sprintf("@%s %s. Correction:%g", row.Time, row.CorrectionApplied, *row.Correction)
}

// extractDischarge emits the seven summary records of a present discharge
// section, all spanning the measurement window. A window end that does not
// resolve keeps its zero anchor; a missing scalar rejects the visit.
func (e *Extractor) extractDischarge() ([]MeasurementRecord, error) {
	section := e.visit.DischargeMeasurement
	if section == nil {
		return nil, nil
	}

	start, _ := e.resolveTime(section.StartTime)
	end, _ := e.resolveTime(section.EndTime)

	fields := []struct {
		name  string
		value *float64
		param string
		unit  string
	}{
		{"air_temp", section.AirTemp, ParamAirTemp, UnitCelsius},
		{"water_temp", section.WaterTemp, ParamWaterTemp, UnitCelsius},
		{"width", section.Width, ParamSectionWidth, UnitMetres},
		{"area", section.Area, ParamSectionArea, UnitSquareMetres},
		{"mean_velocity", section.MeanVelocity, ParamMeanVelocity, UnitMetresPerSecond},
		{"mean_gauge_height", section.MeanGaugeHeight, ParamGaugeHeight, UnitMetres},
		{"discharge", section.Discharge, ParamDischarge, UnitCubicMetresPerSecond},
	}

	records := make([]MeasurementRecord, 0, len(fields))
	for _, f := range fields {
		if f.value == nil {
			return nil, &MissingFieldError{Section: "discharge_measurement", Field: f.name}
		}
		records = append(records, MeasurementRecord{
			StartTime: start,
			EndTime:   end,
			Parameter: f.param,
			Unit:      f.unit,
			Value:     *f.value,
		})
	}
	return records, nil
}

// extractEnvironment emits the battery voltage record, anchored at the mean
// measurement time, when a voltage was noted.
func (e *Extractor) extractEnvironment() []MeasurementRecord {
	section := e.visit.EnvironmentalConditions
	if section == nil || section.BatteryVoltage == nil {
		return nil
	}

	at := e.meanMeasurementTime()
	return []MeasurementRecord{{
		StartTime: at,
		EndTime:   at,
		Parameter: ParamBatteryVoltage,
		Unit:      UnitVolts,
		Value:     *section.BatteryVoltage,
	}}
}

// meanMeasurementTime is the midpoint of the resolved discharge window.
// When the section is absent or either end does not resolve, the zero
// anchor stands in and still lands in the emitted record.
func (e *Extractor) meanMeasurementTime() time.Time {
	section := e.visit.DischargeMeasurement
	if section == nil {
		return time.Time{}
	}
	start, okStart := e.resolveTime(section.StartTime)
	end, okEnd := e.resolveTime(section.EndTime)
	if !okStart || !okEnd {
		return time.Time{}
	}
	return start.Add(end.Sub(start) / 2)
}

// extractSensorResults walks the parallel sensor columns and emits one
// instantaneous record per sample of a recognized channel. Samples of
// unrecognized channels never reach time resolution; samples of recognized
// channels with unresolvable times are dropped individually.
func (e *Extractor) extractSensorResults() []MeasurementRecord {
	section := e.visit.SensorResults
	if section == nil {
		return nil
	}

	n := min(len(section.Names), len(section.Times), len(section.Values))
	var records []MeasurementRecord
	for i := 0; i < n; i++ {
		ch, ok := sensorChannels[strings.TrimSpace(section.Names[i])]
		if !ok {
			continue
		}
		at, ok := e.resolveTime(section.Times[i])
		if !ok {
			continue
		}
		records = append(records, MeasurementRecord{
			StartTime: at,
			EndTime:   at,
			Parameter: ch.param,
			Unit:      ch.unit,
			Value:     section.Values[i],
		})
	}
	return records
}

func (e *Extractor) resolveTime(value string) (time.Time, bool) {
	return resolveObservationTime(e.visitDate, e.loc, value)
}

// resolveObservationTime combines an eHSN clock string with the visit date.
// The second return is false when the string does not have the HH:MM or
// HH:MM:SS shape; matching strings always resolve, with out-of-range
// components normalized by time.Date.
func resolveObservationTime(visitDate time.Time, loc *time.Location, value string) (time.Time, bool) {
	m := observationTimeRe.FindStringSubmatch(value)
	if m == nil {
		return time.Time{}, false
	}

	hour, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	secs := 0
	if m[3] != "" {
		secs, _ = strconv.Atoi(m[3])
	}

	return time.Date(
		visitDate.Year(), visitDate.Month(), visitDate.Day(),
		hour, mins, secs, 0, loc,
	), true
}
