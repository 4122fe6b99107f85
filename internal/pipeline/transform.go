package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hydrometrics/ehsn-measurements-etl/internal/domain"
	"github.com/hydrometrics/ehsn-measurements-etl/internal/observability"
)

// VisitTransformer implements Transformer: it parses the visit envelope,
// resolves the station's UTC offset and runs the measurement extractor.
type VisitTransformer struct {
	stations      domain.StationDirectory
	defaultOffset time.Duration
	metrics       *observability.Metrics
	logger        *slog.Logger
}

// NewTransformer creates a VisitTransformer. Pass a nil directory to pin
// every visit to the default offset; metrics may be nil in tests.
func NewTransformer(stations domain.StationDirectory, defaultOffset time.Duration, metrics *observability.Metrics, logger *slog.Logger) *VisitTransformer {
	return &VisitTransformer{
		stations:      stations,
		defaultOffset: defaultOffset,
		metrics:       metrics,
		logger:        logger,
	}
}

func (t *VisitTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	env, err := domain.ParseRawVisit(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	offset := domain.ResolveUTCOffset(ctx, env.StationNo, t.stations, t.defaultOffset, t.logger)

	extractor, err := domain.NewExtractor(&env.Visit, env.Date, offset)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	result, err := extractor.Parse()
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("extract visit %s/%s: %w", env.StationNo, env.VisitDate, err)
	}

	result.StationNo = env.StationNo
	result.VisitDate = env.VisitDate
	result.VisitID = domain.VisitID(env.StationNo, env.VisitDate)

	t.countRecords(result)

	return domain.SerializeMeasurements(result)
}

func (t *VisitTransformer) countRecords(m domain.VisitMeasurements) {
	if t.metrics == nil {
		return
	}
	t.metrics.RecordsExtracted.WithLabelValues("stage").Add(float64(len(m.Stage)))
	t.metrics.RecordsExtracted.WithLabelValues("discharge").Add(float64(len(m.Discharge)))
	t.metrics.RecordsExtracted.WithLabelValues("environment").Add(float64(len(m.Environment)))
	t.metrics.RecordsExtracted.WithLabelValues("sensor").Add(float64(len(m.Sensor)))
}
