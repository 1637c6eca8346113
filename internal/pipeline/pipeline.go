// Package pipeline orchestrates the extract-accumulate-build-write loop
// that turns raw daily observations into per-year .WTH files.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/agroclim/dssat-weather-etl/internal/domain"
	"github.com/agroclim/dssat-weather-etl/internal/observability"
)

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// FileWriter persists a validated station as per-year weather files.
type FileWriter interface {
	Write(station *domain.WeatherStation, simulationStart *time.Time) ([]string, error)
}

// Rejecter diverts datasets that failed validation to a dead-letter sink.
// A nil Rejecter drops them after logging.
type Rejecter interface {
	Reject(ctx context.Context, rejected domain.RejectedDataset) error
}

// Options carries the tuning knobs and build parameters for a Pipeline.
type Options struct {
	BatchSize          int
	FlushInterval      time.Duration
	MaxAccumulatedRows int
	ColumnMapping      map[string]string
	SimulationStart    *time.Time
}

// Pipeline accumulates observations per station and periodically builds and
// writes them out.
type Pipeline struct {
	extractor BatchExtractor
	writer    FileWriter
	rejecter  Rejecter
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	opts      Options

	acc   *Accumulator
	ready atomic.Bool
}

// New creates a Pipeline. A nil clock defaults to the real one.
func New(e BatchExtractor, w FileWriter, r Rejecter, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, opts Options) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		extractor: e,
		writer:    w,
		rejecter:  r,
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
		opts:      opts,
		acc:       NewAccumulator(),
	}
}

// CheckReadiness returns nil once the pipeline has completed at least one
// flush that wrote files.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not written any weather files yet")
	}
	return nil
}

// Run executes the loop until the context is cancelled, then flushes what
// remains accumulated.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started",
		"batch_size", p.opts.BatchSize,
		"flush_interval", p.opts.FlushInterval,
	)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff for extraction failures: start at 200ms, double
	// each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	nextFlush := p.clock.Now().Add(p.opts.FlushInterval)

	for {
		if ctx.Err() != nil {
			break
		}

		extractCtx, cancel := context.WithTimeout(ctx, p.opts.FlushInterval)
		batch, err := p.extractor.ExtractBatch(extractCtx, p.opts.BatchSize)
		cancel()
		switch {
		case err == nil:
			p.accumulateBatch(ctx, batch)
			backoff = 200 * time.Millisecond
		case ctx.Err() != nil:
			// Shutdown requested mid-extraction.
		case errors.Is(err, context.DeadlineExceeded):
			// Quiet topic; fall through to the flush check.
		default:
			p.logger.Error("extract batch failed", "error", err)
			if sleepWithContext(ctx, backoff) {
				backoff = nextBackoff(backoff, maxBackoff)
			}
			continue
		}

		if p.acc.Rows() >= p.opts.MaxAccumulatedRows || !p.clock.Now().Before(nextFlush) {
			p.flush(ctx)
			nextFlush = p.clock.Now().Add(p.opts.FlushInterval)
		}
	}

	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	// Final flush with a fresh context so accumulated data still lands.
	p.flush(context.WithoutCancel(ctx))
	return nil
}

// accumulateBatch parses and accumulates one extracted batch. Offsets are
// committed as messages enter the in-memory window, so an unflushed window
// is lost on crash; the upstream collector re-publishes daily files, which
// makes that an accepted trade against duplicate .WTH rewrites.
func (p *Pipeline) accumulateBatch(ctx context.Context, batch []domain.RawEvent) {
	if len(batch) == 0 {
		return
	}
	p.metrics.BatchSize.Observe(float64(len(batch)))

	for _, raw := range batch {
		obs, date, err := domain.ParseRawObservation(raw)
		if err != nil {
			p.logger.Warn("skipping malformed observation",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.ObservationsRejected.Inc()
			p.commitOffset(ctx, raw)
			continue
		}
		p.acc.Add(obs, date)
		p.metrics.ObservationsConsumed.Inc()
		p.commitOffset(ctx, raw)
	}
}

// flush builds every accumulated station dataset and writes its files.
// Datasets that fail validation go to the dead-letter sink; one bad station
// does not block the others.
func (p *Pipeline) flush(ctx context.Context) {
	datasets := p.acc.Drain()
	if len(datasets) == 0 {
		return
	}
	start := time.Now()

	var wrote bool
	for _, ds := range datasets {
		if p.flushStation(ctx, ds) {
			wrote = true
		}
	}

	p.metrics.FlushDuration.Observe(time.Since(start).Seconds())
	if wrote {
		p.ready.Store(true)
	}
}

func (p *Pipeline) flushStation(ctx context.Context, ds *StationDataset) bool {
	station, err := p.buildStation(ds)
	if err != nil {
		p.metrics.BuildFailures.WithLabelValues(buildFailureReason(err)).Inc()
		p.logger.Error("station build failed",
			"station", ds.StationID(),
			"rows", ds.Rows(),
			"error", err,
		)
		p.reject(ctx, ds, err)
		return false
	}
	p.metrics.StationsBuilt.Inc()

	files, err := p.writer.Write(station, p.opts.SimulationStart)
	if err != nil {
		p.logger.Error("write failed",
			"station", ds.StationID(),
			"files_written", len(files),
			"error", err,
		)
		return len(files) > 0
	}
	p.metrics.FilesWritten.Add(float64(len(files)))
	p.metrics.RowsWritten.Add(float64(station.Records.Len()))
	p.logger.Info("station flushed",
		"station", ds.StationID(),
		"files", len(files),
		"rows", station.Records.Len(),
	)
	return true
}

func (p *Pipeline) buildStation(ds *StationDataset) (*domain.WeatherStation, error) {
	tbl, err := ds.Table()
	if err != nil {
		return nil, err
	}
	lat, lon, elev := ds.Coordinates()
	station, err := domain.NewStation(tbl, p.opts.ColumnMapping, lat, lon, elev)
	if err != nil {
		return nil, err
	}
	station.InstituteCode = domain.NormalizeInstituteCode(ds.StationID())
	station.Description = "Station " + ds.StationID()
	return station, nil
}

func (p *Pipeline) reject(ctx context.Context, ds *StationDataset, cause error) {
	if p.rejecter == nil {
		return
	}
	err := p.rejecter.Reject(ctx, domain.RejectedDataset{
		StationID:    ds.StationID(),
		Reason:       cause.Error(),
		Rows:         ds.Rows(),
		Observations: ds.Observations(),
		RejectedAt:   p.clock.Now(),
	})
	if err != nil {
		p.logger.Error("dead-letter publish failed", "station", ds.StationID(), "error", err)
	}
}

// buildFailureReason maps a build error to a bounded metric label.
func buildFailureReason(err error) string {
	var (
		invalid   *domain.InvalidVariableNameError
		unknown   *domain.UnknownSourceColumnError
		mandatory *domain.MissingMandatoryVariableError
		qc        *domain.QualityControlError
		noDate    *domain.MissingDateColumnError
	)
	switch {
	case errors.As(err, &invalid), errors.As(err, &unknown):
		return "bad_mapping"
	case errors.As(err, &mandatory):
		return "missing_mandatory"
	case errors.As(err, &qc):
		return "quality_control"
	case errors.As(err, &noDate):
		return "missing_date"
	default:
		return "other"
	}
}

func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
