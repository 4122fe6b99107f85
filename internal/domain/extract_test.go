package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testVisitDate = time.Date(2020, time.June, 15, 0, 0, 0, 0, time.UTC)
	testOffset    = -6 * time.Hour
	testZone      = time.FixedZone("", -6*3600)
)

func fp(v float64) *float64 { return &v }

func localTime(hour, minute, sec int) time.Time {
	return time.Date(2020, time.June, 15, hour, minute, sec, 0, testZone)
}

func newTestExtractor(t *testing.T, visit *FieldVisit) *Extractor {
	t.Helper()
	e, err := NewExtractor(visit, testVisitDate, testOffset)
	require.NoError(t, err)
	return e
}

func TestResolveObservationTime(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected time.Time
		ok       bool
	}{
		{"hours and minutes", "08:30", localTime(8, 30, 0), true},
		{"with seconds", "14:05:30", localTime(14, 5, 30), true},
		{"midnight", "00:00", localTime(0, 0, 0), true},
		{"end of day", "23:59:59", localTime(23, 59, 59), true},
		// Shape-only validation: out-of-range components are normalized
		// by time.Date, not rejected.
		{"out of range components", "99:99", localTime(99, 99, 0), true},
		{"empty string", "", time.Time{}, false},
		{"whitespace only", "   ", time.Time{}, false},
		{"single digit hour", "8:30", time.Time{}, false},
		{"padded", " 08:30", time.Time{}, false},
		{"trailing space", "08:30 ", time.Time{}, false},
		{"letters", "morning", time.Time{}, false},
		{"wrong delimiter", "08-30", time.Time{}, false},
		{"extra field", "08:30:15:99", time.Time{}, false},
		{"missing minutes", "08:", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := resolveObservationTime(testVisitDate, testZone, tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestExtractStage(t *testing.T) {
	t.Run("single row with primary reading", func(t *testing.T) {
		e := newTestExtractor(t, &FieldVisit{
			StageMeasurements: &StageMeasurementsSection{Rows: []StageRow{
				{Time: "08:30", WL1: fp(1.23)},
			}},
		})

		result, err := e.Parse()
		require.NoError(t, err)
		require.Len(t, result.Stage, 1)

		rec := result.Stage[0]
		assert.Equal(t, localTime(8, 30, 0), rec.StartTime)
		assert.Equal(t, rec.StartTime, rec.EndTime)
		assert.Equal(t, ParamGaugeHeight, rec.Parameter)
		assert.Equal(t, UnitMetres, rec.Unit)
		assert.Equal(t, 1.23, rec.Value)
		assert.Empty(t, rec.Remark)
	})

	t.Run("secondary reading fallback", func(t *testing.T) {
		e := newTestExtractor(t, &FieldVisit{
			StageMeasurements: &StageMeasurementsSection{Rows: []StageRow{
				{Time: "09:00", WL2: fp(2.5)},
				{Time: "09:05", WL1: fp(2.6), WL2: fp(99.9)}, // primary wins
			}},
		})

		result, err := e.Parse()
		require.NoError(t, err)
		require.Len(t, result.Stage, 2)
		assert.Equal(t, 2.5, result.Stage[0].Value)
		assert.Equal(t, 2.6, result.Stage[1].Value)
	})

	t.Run("both readings missing is a hard failure", func(t *testing.T) {
		e := newTestExtractor(t, &FieldVisit{
			StageMeasurements: &StageMeasurementsSection{Rows: []StageRow{
				{Time: "09:00"},
			}},
		})

		_, err := e.Parse()
		var missing *MissingFieldError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "stage_measurements", missing.Section)
	})

	t.Run("unresolvable time skips the row", func(t *testing.T) {
		e := newTestExtractor(t, &FieldVisit{
			StageMeasurements: &StageMeasurementsSection{Rows: []StageRow{
				{Time: "08:30", WL1: fp(1.0)},
				{Time: "bad", WL1: fp(2.0)},
				{Time: "", WL1: fp(3.0)},
				{Time: "10:45", WL1: fp(4.0)},
			}},
		})

		result, err := e.Parse()
		require.NoError(t, err)
		require.Len(t, result.Stage, 2)
		assert.Equal(t, 1.0, result.Stage[0].Value)
		assert.Equal(t, 4.0, result.Stage[1].Value)
	})

	t.Run("skipped row with missing readings does not fail", func(t *testing.T) {
		// The reading check only applies to rows that survive time
		// resolution.
		e := newTestExtractor(t, &FieldVisit{
			StageMeasurements: &StageMeasurementsSection{Rows: []StageRow{
				{Time: "not-a-time"},
			}},
		})

		result, err := e.Parse()
		require.NoError(t, err)
		assert.Empty(t, result.Stage)
	})

	t.Run("correction remark", func(t *testing.T) {
		e := newTestExtractor(t, &FieldVisit{
			StageMeasurements: &StageMeasurementsSection{Rows: []StageRow{
				{Time: "08:30", WL1: fp(1.23), Correction: fp(-0.005), CorrectionApplied: "Logger"},
				{Time: "08:35", WL1: fp(1.24)},
			}},
		})

		result, err := e.Parse()
		require.NoError(t, err)
		require.Len(t, result.Stage, 2)
		assert.Equal(t, "@08:30 Logger. Correction:-0.005", result.Stage[0].Remark)
		assert.Empty(t, result.Stage[1].Remark)
	})

	t.Run("absent section", func(t *testing.T) {
		e := newTestExtractor(t, &FieldVisit{})
		result, err := e.Parse()
		require.NoError(t, err)
		assert.Empty(t, result.Stage)
	})
}

func TestExtractDischarge(t *testing.T) {
	fullSection := func() *DischargeSection {
		return &DischargeSection{
			StartTime:       "09:00",
			EndTime:         "09:15",
			AirTemp:         fp(20.1),
			WaterTemp:       fp(15.4),
			Width:           fp(12.0),
			Area:            fp(8.5),
			MeanVelocity:    fp(0.9),
			MeanGaugeHeight: fp(1.1),
			Discharge:       fp(7.6),
		}
	}

	t.Run("seven records in fixed order", func(t *testing.T) {
		e := newTestExtractor(t, &FieldVisit{DischargeMeasurement: fullSection()})

		result, err := e.Parse()
		require.NoError(t, err)
		require.Len(t, result.Discharge, 7)

		start := localTime(9, 0, 0)
		end := localTime(9, 15, 0)

		expected := []MeasurementRecord{
			{StartTime: start, EndTime: end, Parameter: ParamAirTemp, Unit: UnitCelsius, Value: 20.1},
			{StartTime: start, EndTime: end, Parameter: ParamWaterTemp, Unit: UnitCelsius, Value: 15.4},
			{StartTime: start, EndTime: end, Parameter: ParamSectionWidth, Unit: UnitMetres, Value: 12.0},
			{StartTime: start, EndTime: end, Parameter: ParamSectionArea, Unit: UnitSquareMetres, Value: 8.5},
			{StartTime: start, EndTime: end, Parameter: ParamMeanVelocity, Unit: UnitMetresPerSecond, Value: 0.9},
			{StartTime: start, EndTime: end, Parameter: ParamGaugeHeight, Unit: UnitMetres, Value: 1.1},
			{StartTime: start, EndTime: end, Parameter: ParamDischarge, Unit: UnitCubicMetresPerSecond, Value: 7.6},
		}
		if diff := cmp.Diff(expected, result.Discharge); diff != "" {
			t.Fatalf("discharge records mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing scalar is a hard failure", func(t *testing.T) {
		section := fullSection()
		section.MeanVelocity = nil
		e := newTestExtractor(t, &FieldVisit{DischargeMeasurement: section})

		_, err := e.Parse()
		var missing *MissingFieldError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "discharge_measurement", missing.Section)
		assert.Equal(t, "mean_velocity", missing.Field)
	})

	t.Run("unresolvable window end is tolerated", func(t *testing.T) {
		section := fullSection()
		section.EndTime = "later"
		e := newTestExtractor(t, &FieldVisit{DischargeMeasurement: section})

		result, err := e.Parse()
		require.NoError(t, err)
		require.Len(t, result.Discharge, 7)
		for _, rec := range result.Discharge {
			assert.Equal(t, localTime(9, 0, 0), rec.StartTime)
			assert.True(t, rec.EndTime.IsZero())
		}
	})

	t.Run("absent section emits nothing", func(t *testing.T) {
		e := newTestExtractor(t, &FieldVisit{})
		result, err := e.Parse()
		require.NoError(t, err)
		assert.Empty(t, result.Discharge)
	})
}

func TestExtractEnvironment(t *testing.T) {
	t.Run("battery voltage anchored at window midpoint", func(t *testing.T) {
		e := newTestExtractor(t, &FieldVisit{
			DischargeMeasurement: &DischargeSection{
				StartTime: "09:00", EndTime: "09:15",
				AirTemp: fp(1), WaterTemp: fp(2), Width: fp(3), Area: fp(4),
				MeanVelocity: fp(5), MeanGaugeHeight: fp(6), Discharge: fp(7),
			},
			EnvironmentalConditions: &EnvironmentSection{BatteryVoltage: fp(12.7)},
		})

		result, err := e.Parse()
		require.NoError(t, err)
		require.Len(t, result.Environment, 1)

		rec := result.Environment[0]
		assert.Equal(t, localTime(9, 7, 30), rec.StartTime)
		assert.Equal(t, rec.StartTime, rec.EndTime)
		assert.Equal(t, ParamBatteryVoltage, rec.Parameter)
		assert.Equal(t, UnitVolts, rec.Unit)
		assert.Equal(t, 12.7, rec.Value)
	})

	t.Run("no voltage emits nothing", func(t *testing.T) {
		e := newTestExtractor(t, &FieldVisit{
			EnvironmentalConditions: &EnvironmentSection{},
		})
		result, err := e.Parse()
		require.NoError(t, err)
		assert.Empty(t, result.Environment)
	})

	t.Run("voltage without discharge section uses unresolved anchor", func(t *testing.T) {
		e := newTestExtractor(t, &FieldVisit{
			EnvironmentalConditions: &EnvironmentSection{BatteryVoltage: fp(13.1)},
		})

		result, err := e.Parse()
		require.NoError(t, err)
		require.Len(t, result.Environment, 1)
		assert.True(t, result.Environment[0].StartTime.IsZero())
		assert.True(t, result.Environment[0].EndTime.IsZero())
		assert.Equal(t, 13.1, result.Environment[0].Value)
	})

	t.Run("unresolvable window end uses unresolved anchor", func(t *testing.T) {
		e := newTestExtractor(t, &FieldVisit{
			DischargeMeasurement: &DischargeSection{
				StartTime: "09:00", EndTime: "??",
				AirTemp: fp(1), WaterTemp: fp(2), Width: fp(3), Area: fp(4),
				MeanVelocity: fp(5), MeanGaugeHeight: fp(6), Discharge: fp(7),
			},
			EnvironmentalConditions: &EnvironmentSection{BatteryVoltage: fp(12.0)},
		})

		result, err := e.Parse()
		require.NoError(t, err)
		require.Len(t, result.Environment, 1)
		assert.True(t, result.Environment[0].StartTime.IsZero())
	})
}

func TestExtractSensorResults(t *testing.T) {
	t.Run("only the head stage channel is recognized", func(t *testing.T) {
		e := newTestExtractor(t, &FieldVisit{
			SensorResults: &SensorResultsSection{
				Names:  []string{"IQ Plus Velocity", "Head Stage (m)"},
				Times:  []string{"10:00", "10:05"},
				Values: []float64{1.0, 2.0},
			},
		})

		result, err := e.Parse()
		require.NoError(t, err)
		require.Len(t, result.Sensor, 1)

		rec := result.Sensor[0]
		assert.Equal(t, localTime(10, 5, 0), rec.StartTime)
		assert.Equal(t, rec.StartTime, rec.EndTime)
		assert.Equal(t, ParamHeadStage, rec.Parameter)
		assert.Equal(t, UnitMetres, rec.Unit)
		assert.Equal(t, 2.0, rec.Value)
	})

	t.Run("channel name is trimmed before dispatch", func(t *testing.T) {
		e := newTestExtractor(t, &FieldVisit{
			SensorResults: &SensorResultsSection{
				Names:  []string{"  Head Stage (m)  "},
				Times:  []string{"11:00"},
				Values: []float64{0.42},
			},
		})

		result, err := e.Parse()
		require.NoError(t, err)
		require.Len(t, result.Sensor, 1)
		assert.Equal(t, 0.42, result.Sensor[0].Value)
	})

	t.Run("unresolvable sample time skips that sample only", func(t *testing.T) {
		e := newTestExtractor(t, &FieldVisit{
			SensorResults: &SensorResultsSection{
				Names:  []string{"Head Stage (m)", "Head Stage (m)", "Head Stage (m)"},
				Times:  []string{"10:00", "bad", "10:10"},
				Values: []float64{1.0, 2.0, 3.0},
			},
		})

		result, err := e.Parse()
		require.NoError(t, err)
		require.Len(t, result.Sensor, 2)
		assert.Equal(t, 1.0, result.Sensor[0].Value)
		assert.Equal(t, 3.0, result.Sensor[1].Value)
	})

	t.Run("unrecognized channel never produces a record", func(t *testing.T) {
		// Bad times on ignored channels are irrelevant; they are skipped
		// before time resolution.
		e := newTestExtractor(t, &FieldVisit{
			SensorResults: &SensorResultsSection{
				Names:  []string{"IQ Plus Discharge", "Water Temp (C)"},
				Times:  []string{"not-a-time", "10:05"},
				Values: []float64{5.0, 6.0},
			},
		})

		result, err := e.Parse()
		require.NoError(t, err)
		assert.Empty(t, result.Sensor)
	})

	t.Run("absent section", func(t *testing.T) {
		e := newTestExtractor(t, &FieldVisit{})
		result, err := e.Parse()
		require.NoError(t, err)
		assert.Empty(t, result.Sensor)
	})
}

func TestNewExtractor_NilVisit(t *testing.T) {
	_, err := NewExtractor(nil, testVisitDate, testOffset)
	require.ErrorIs(t, err, ErrNilVisit)
}

func TestParse_FullVisit(t *testing.T) {
	fixedNow := time.Date(2020, time.June, 16, 3, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixedNow))
	t.Cleanup(func() { SetClock(nil) })

	e := newTestExtractor(t, &FieldVisit{
		StageMeasurements: &StageMeasurementsSection{Rows: []StageRow{
			{Time: "08:30", WL1: fp(1.23)},
			{Time: "16:45", WL2: fp(1.21)},
		}},
		DischargeMeasurement: &DischargeSection{
			StartTime: "09:00", EndTime: "09:15",
			AirTemp: fp(20.1), WaterTemp: fp(15.4), Width: fp(12.0), Area: fp(8.5),
			MeanVelocity: fp(0.9), MeanGaugeHeight: fp(1.1), Discharge: fp(7.6),
		},
		EnvironmentalConditions: &EnvironmentSection{BatteryVoltage: fp(12.9)},
		SensorResults: &SensorResultsSection{
			Names:  []string{"IQ Plus Velocity", "Head Stage (m)"},
			Times:  []string{"10:00", "10:05"},
			Values: []float64{1.0, 2.0},
		},
	})

	result, err := e.Parse()
	require.NoError(t, err)

	assert.Equal(t, "-06:00", result.UTCOffset)
	assert.Len(t, result.Stage, 2)
	assert.Len(t, result.Discharge, 7)
	assert.Len(t, result.Environment, 1)
	assert.Len(t, result.Sensor, 1)
	assert.Equal(t, 11, result.RecordCount())
	assert.Equal(t, fixedNow, result.ProcessedAt)

	// Categories preserve source order and are never merged.
	assert.Equal(t, localTime(8, 30, 0), result.Stage[0].StartTime)
	assert.Equal(t, localTime(16, 45, 0), result.Stage[1].StartTime)
}
