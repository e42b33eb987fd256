package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/orbis-globe/data-engine/internal/domain"
	"github.com/orbis-globe/data-engine/internal/observability"
)

// GeoSource loads the boundary features that define the country list.
type GeoSource interface {
	FetchCountries(ctx context.Context) ([]domain.GeoFeature, error)
}

// IndicatorSource fetches one World Bank series.
type IndicatorSource interface {
	FetchIndicator(ctx context.Context, code string) (domain.IndicatorMap, error)
}

// HazardSource fetches open natural hazard events.
type HazardSource interface {
	FetchEvents(ctx context.Context) ([]domain.HazardEvent, error)
}

// SeismicSource fetches recent earthquakes.
type SeismicSource interface {
	FetchEarthquakes(ctx context.Context) ([]domain.HazardEvent, error)
}

// ArtifactStore reads the previous artifact and writes the new one.
type ArtifactStore interface {
	LoadSnapshot() (domain.Snapshot, error)
	Save(a domain.Artifact) (int, error)
}

// Publisher distributes the country records of a finished run.
type Publisher interface {
	PublishCountries(ctx context.Context, runID string, generatedAt time.Time, countries domain.Countries) error
}

// Sources groups the upstream feeds. Hazards and Seismic may be nil.
type Sources struct {
	Geo        GeoSource
	Indicators IndicatorSource
	Hazards    HazardSource
	Seismic    SeismicSource
}

// Pipeline runs the refresh job: fetch, aggregate, write, publish.
type Pipeline struct {
	sources     Sources
	store       ArtifactStore
	publisher   Publisher
	queue       *Queue
	indicators  []domain.Indicator
	corrections domain.CorrectionTable
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates a Pipeline. publisher may be nil to skip publication.
func New(src Sources, store ArtifactStore, publisher Publisher, queue *Queue, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		sources:     src,
		store:       store,
		publisher:   publisher,
		queue:       queue,
		indicators:  domain.Indicators,
		corrections: domain.Corrections,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run executes one refresh. The returned error is non-nil only when no
// artifact was written: the boundary feed failed, the write failed, or ctx
// ended. Degraded sources are listed in the report's warnings.
func (p *Pipeline) Run(ctx context.Context) (domain.RunReport, error) {
	report := domain.RunReport{RunID: uuid.NewString(), StartedAt: domain.Now()}
	logger := p.logger.With("run_id", report.RunID)
	logger.Info("refresh started")

	err := p.run(ctx, logger, &report)
	report.FinishedAt = domain.Now()
	p.metrics.RunDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())

	if err != nil {
		report.Error = err.Error()
		p.metrics.Runs.WithLabelValues("error").Inc()
		logger.Error("refresh failed", "error", err)
		return report, err
	}

	p.metrics.Runs.WithLabelValues("success").Inc()
	p.metrics.LastSuccess.SetToCurrentTime()
	logger.Info("refresh complete",
		"updated", report.Updated,
		"preserved", report.Preserved,
		"missing", report.Missing,
		"global_events", report.GlobalEvents,
		"seismic_events", report.SeismicData,
		"warnings", len(report.Warnings),
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
	return report, nil
}

func (p *Pipeline) run(ctx context.Context, logger *slog.Logger, report *domain.RunReport) error {
	start := time.Now()
	features, err := p.sources.Geo.FetchCountries(ctx)
	p.observeFetch("geo", start, err)
	if err != nil {
		return fmt.Errorf("load boundaries: %w", err)
	}

	prior, err := p.store.LoadSnapshot()
	if err != nil {
		logger.Warn("prior artifact unreadable, starting from empty snapshot", "error", err)
		prior = domain.Snapshot{}
	}
	logger.Info("prior artifact loaded", "countries", prior.Len())

	var warn warnings
	for _, name := range prior.Malformed() {
		err := prior.DecodeErr(name)
		logger.Warn("prior record does not match schema, kept as written", "country", name, "error", err)
		warn.add(fmt.Sprintf("prior record %s: %v", name, err))
	}

	var (
		indicators domain.IndicatorSet
		hazards    []domain.HazardEvent
		seismic    []domain.HazardEvent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		indicators, err = p.fetchIndicators(gctx, logger, &warn)
		return err
	})
	if p.sources.Hazards != nil {
		g.Go(func() error {
			hazards = p.fetchEvents(gctx, logger, &warn, "eonet", p.sources.Hazards.FetchEvents)
			return nil
		})
	}
	if p.sources.Seismic != nil {
		g.Go(func() error {
			seismic = p.fetchEvents(gctx, logger, &warn, "usgs", p.sources.Seismic.FetchEarthquakes)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	res := domain.Aggregate(features, indicators, prior, p.corrections)
	for _, o := range res.Outcomes {
		if o.Outcome == domain.OutcomeMissing {
			logger.Debug("no data for country", "country", o.Name, "iso3", o.ISO3)
		}
	}
	p.metrics.Countries.WithLabelValues(string(domain.OutcomeUpdated)).Set(float64(res.Updated))
	p.metrics.Countries.WithLabelValues(string(domain.OutcomePreserved)).Set(float64(res.Preserved))
	p.metrics.Countries.WithLabelValues(string(domain.OutcomeMissing)).Set(float64(res.Missing))
	p.metrics.Events.WithLabelValues("eonet").Set(float64(len(hazards)))
	p.metrics.Events.WithLabelValues("usgs").Set(float64(len(seismic)))

	artifact := domain.Artifact{
		GeneratedAt:  domain.Now(),
		Countries:    res.Countries,
		GlobalEvents: hazards,
		SeismicData:  seismic,
	}
	n, err := p.store.Save(artifact)
	if err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	p.metrics.ArtifactBytes.Set(float64(n))
	logger.Info("artifact written", "bytes", n, "countries", res.Countries.Len())

	if p.publisher != nil {
		if err := p.publisher.PublishCountries(ctx, report.RunID, artifact.GeneratedAt, res.Countries); err != nil {
			p.metrics.PublishErrors.Inc()
			logger.Warn("publish country records failed", "error", err)
			warn.add("publish: " + err.Error())
		}
	}

	report.Updated = res.Updated
	report.Preserved = res.Preserved
	report.Missing = res.Missing
	report.GlobalEvents = len(hazards)
	report.SeismicData = len(seismic)
	report.ArtifactBytes = n
	report.Warnings = warn.list()
	return nil
}

// fetchIndicators runs every indicator through the queue. A failed indicator
// contributes an empty map. Only cancellation of ctx aborts the chain.
func (p *Pipeline) fetchIndicators(ctx context.Context, logger *slog.Logger, warn *warnings) (domain.IndicatorSet, error) {
	set := make(domain.IndicatorSet, len(p.indicators))
	for _, ind := range p.indicators {
		err := p.queue.Do(ctx, func(ctx context.Context) error {
			start := time.Now()
			values, err := p.sources.Indicators.FetchIndicator(ctx, ind.Code)
			p.observeFetch("worldbank", start, err)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Warn("indicator fetch failed, using empty values",
					"indicator", ind.Code, "error", err)
				warn.add(fmt.Sprintf("indicator %s: %v", ind.Code, err))
				values = domain.IndicatorMap{}
			}
			set[ind.Key] = values
			p.metrics.IndicatorSize.WithLabelValues(ind.Key).Set(float64(len(values)))
			logger.Info("indicator fetched", "indicator", ind.Code, "countries", len(values))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("fetch indicators: %w", err)
		}
	}
	return set, nil
}

// fetchEvents calls fetch and degrades any failure to an empty list.
func (p *Pipeline) fetchEvents(
	ctx context.Context,
	logger *slog.Logger,
	warn *warnings,
	source string,
	fetch func(context.Context) ([]domain.HazardEvent, error),
) []domain.HazardEvent {
	start := time.Now()
	events, err := fetch(ctx)
	p.observeFetch(source, start, err)
	if err != nil {
		logger.Warn("event feed unavailable, using empty list", "source", source, "error", err)
		warn.add(fmt.Sprintf("%s: %v", source, err))
		return []domain.HazardEvent{}
	}
	logger.Info("events fetched", "source", source, "count", len(events))
	return events
}

func (p *Pipeline) observeFetch(source string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
		if errors.Is(err, context.Canceled) {
			outcome = "canceled"
		}
	}
	p.metrics.FetchRequests.WithLabelValues(source, outcome).Inc()
	p.metrics.FetchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
}

// warnings collects degraded-source messages from concurrent fetchers.
type warnings struct {
	mu    sync.Mutex
	items []string
}

func (w *warnings) add(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = append(w.items, msg)
}

func (w *warnings) list() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.items...)
}
