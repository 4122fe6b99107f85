package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// RawVisitEnvelope is the JSON shape the collector publishes: the visit form
// plus the identifying metadata the form itself does not carry.
type RawVisitEnvelope struct {
	StationNo string     `json:"station_no"`
	VisitDate string     `json:"visit_date"` // calendar date, "2006-01-02"
	Visit     FieldVisit `json:"visit"`

	Date time.Time `json:"-"`
}

// ParseRawVisit deserializes a RawEvent's value into a visit envelope and
// validates the visit date.
func ParseRawVisit(raw RawEvent) (RawVisitEnvelope, error) {
	var env RawVisitEnvelope
	if err := json.Unmarshal(raw.Value, &env); err != nil {
		return RawVisitEnvelope{}, fmt.Errorf("parse raw visit: %w", err)
	}
	date, err := time.Parse("2006-01-02", env.VisitDate)
	if err != nil {
		return RawVisitEnvelope{}, fmt.Errorf("parse raw visit: invalid visit_date %q: %w", env.VisitDate, err)
	}
	env.Date = date
	return env, nil
}

// SerializeMeasurements marshals an aggregate into a sink message keyed by
// visit ID, with station and processing-time headers for consumers that
// route without deserializing the payload.
func SerializeMeasurements(m VisitMeasurements) (OutputEvent, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize visit measurements: %w", err)
	}
	return OutputEvent{
		Key:   []byte(m.VisitID),
		Value: data,
		Headers: map[string]string{
			"station_no":   m.StationNo,
			"processed_at": m.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
