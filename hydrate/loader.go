package hydrate

import (
	"context"
	"errors"
	"math"
	"time"
)

const (
	logMsgFetchDeclarationsFailed = "failed to fetch hint declarations"
	logMsgFetchRecordsFailed      = "failed to fetch records"
	logMsgLoadCompleted           = "context load completed"
	logMsgNoHintsApply            = "no hint declarations apply, events passed through"
	logAttrError                  = "error"
	logAttrEventCount             = "event_count"
	logAttrMediumCount            = "medium_count"
	logAttrSourceCount            = "source_count"
	logAttrTypeCount              = "type_count"
	logAttrDurationMS             = "duration_ms"
	metricLoadDuration            = "hydrate_load_duration"
	metricLoadFailures            = "hydrate_load_failures"
	metricLabelStage              = "stage"
	metricStageDeclarations       = "declarations"
	metricStageRecords            = "records"
)

// ContextLoader composes the hydration pipeline: resolve the applicable hint
// declarations, merge them, plan one query per record type, collect
// identifiers, fetch each type once, and substitute the fetched records into
// the events' context trees.
type ContextLoader struct {
	hintSource        HintSource
	records           RecordStore
	logger            Logger
	contextualLogger  ContextualLogger
	metricsCollector  MetricsCollector
	concurrentFetches bool
}

// Option defines a functional option for configuring ContextLoader.
type Option func(*ContextLoader) error

// WithLogger sets the logger for the ContextLoader.
//
// Debug level: pass-through decisions (development use)
// Info level: event counts and durations (production-safe)
// Error level: collaborator failures that abort the load.
func WithLogger(logger Logger) Option {
	return func(cl *ContextLoader) error {
		cl.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the ContextLoader.
// When both loggers are configured the contextual one is preferred.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(cl *ContextLoader) error {
		cl.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the ContextLoader. It receives
// load durations and failure counts per pipeline stage.
func WithMetrics(collector MetricsCollector) Option {
	return func(cl *ContextLoader) error {
		cl.metricsCollector = collector
		return nil
	}
}

// WithConcurrentFetches makes the loader issue the per-type record fetches
// concurrently. The per-type calls are mutually independent, hydration only
// starts after all of them have completed.
func WithConcurrentFetches() Option {
	return func(cl *ContextLoader) error {
		cl.concurrentFetches = true
		return nil
	}
}

// NewContextLoader creates a ContextLoader with the two collaborators it
// needs and optional configuration.
func NewContextLoader(hintSource HintSource, records RecordStore, options ...Option) (ContextLoader, error) {
	if hintSource == nil {
		return ContextLoader{}, ErrNilHintSource
	}

	if records == nil {
		return ContextLoader{}, ErrNilRecordStore
	}

	cl := ContextLoader{
		hintSource: hintSource,
		records:    records,
	}

	for _, option := range options {
		if err := option(&cl); err != nil {
			return ContextLoader{}, err
		}
	}

	return cl, nil
}

// Load hydrates the events' context trees in place and returns the same
// slice for chaining.
//
// The applicable hint declarations are scoped by the distinct sources of the
// events and the distinct render groups of the mediums. Events whose source
// has no applicable declaration pass through unchanged. A collaborator
// failure aborts the whole call; events hydrated by fetches that had already
// completed for other types keep their current, possibly partially hydrated
// state (known limitation, not a guarantee).
func (cl ContextLoader) Load(ctx context.Context, events Events, mediums []Medium) (Events, error) {
	if len(events) == 0 {
		return events, nil
	}

	start := time.Now()

	declarations, declErr := cl.fetchDeclarations(ctx, events, mediums)
	if declErr != nil {
		return nil, declErr
	}

	merged := MergeDeclarations(declarations)
	if len(merged) == 0 {
		cl.logDebug(ctx, logMsgNoHintsApply, logAttrEventCount, len(events))
		return events, nil
	}

	specs := PlanQueries(merged)
	idsByType := CollectIdentifiers(events, merged)

	fetched, fetchErr := cl.fetchRecords(ctx, idsByType, specs)
	if fetchErr != nil {
		return nil, fetchErr
	}

	ApplyRecords(events, merged, fetched)

	duration := time.Since(start)
	cl.recordDuration(duration)
	cl.logInfo(ctx, logMsgLoadCompleted,
		logAttrEventCount, len(events),
		logAttrTypeCount, len(idsByType),
		logAttrDurationMS, durationToMilliseconds(duration))

	return events, nil
}

func (cl ContextLoader) fetchDeclarations(ctx context.Context, events Events, mediums []Medium) ([]HintDeclaration, error) {
	sources := distinctSources(events)
	renderGroups := distinctRenderGroups(mediums)

	declarations, fetchErr := cl.hintSource.FetchDeclarations(ctx, sources, renderGroups)
	if fetchErr != nil {
		cl.logError(ctx, logMsgFetchDeclarationsFailed,
			logAttrError, fetchErr.Error(),
			logAttrSourceCount, len(sources),
			logAttrMediumCount, len(mediums))
		cl.countFailure(metricStageDeclarations)

		return nil, errors.Join(ErrFetchingDeclarationsFailed, fetchErr)
	}

	return declarations, nil
}

func (cl ContextLoader) fetchRecords(
	ctx context.Context,
	idsByType map[TypeNameString]IDSet,
	specs map[TypeNameString]QuerySpec,
) (FetchedRecords, error) {

	fetcher := NewBatchFetcher(cl.records)
	if cl.concurrentFetches {
		fetcher = NewConcurrentBatchFetcher(cl.records)
	}

	fetched, fetchErr := fetcher.Fetch(ctx, idsByType, specs)
	if fetchErr != nil {
		cl.logError(ctx, logMsgFetchRecordsFailed,
			logAttrError, fetchErr.Error(),
			logAttrTypeCount, len(idsByType))
		cl.countFailure(metricStageRecords)

		return nil, fetchErr
	}

	return fetched, nil
}

func distinctSources(events Events) []SourceString {
	seen := make(map[SourceString]struct{}, len(events))
	sources := make([]SourceString, 0, len(events))

	for _, event := range events {
		if _, exists := seen[event.Source]; exists {
			continue
		}

		seen[event.Source] = struct{}{}
		sources = append(sources, event.Source)
	}

	return sources
}

func distinctRenderGroups(mediums []Medium) []RenderGroupString {
	seen := make(map[RenderGroupString]struct{}, len(mediums))
	renderGroups := make([]RenderGroupString, 0, len(mediums))

	for _, medium := range mediums {
		if _, exists := seen[medium.RenderGroup]; exists {
			continue
		}

		seen[medium.RenderGroup] = struct{}{}
		renderGroups = append(renderGroups, medium.RenderGroup)
	}

	return renderGroups
}

// logDebug logs at debug level, preferring the contextual logger.
func (cl ContextLoader) logDebug(ctx context.Context, msg string, args ...any) {
	if cl.contextualLogger != nil {
		cl.contextualLogger.DebugContext(ctx, msg, args...)
		return
	}

	if cl.logger != nil {
		cl.logger.Debug(msg, args...)
	}
}

// logInfo logs at info level, preferring the contextual logger.
func (cl ContextLoader) logInfo(ctx context.Context, msg string, args ...any) {
	if cl.contextualLogger != nil {
		cl.contextualLogger.InfoContext(ctx, msg, args...)
		return
	}

	if cl.logger != nil {
		cl.logger.Info(msg, args...)
	}
}

// logError logs at error level, preferring the contextual logger.
func (cl ContextLoader) logError(ctx context.Context, msg string, args ...any) {
	if cl.contextualLogger != nil {
		cl.contextualLogger.ErrorContext(ctx, msg, args...)
		return
	}

	if cl.logger != nil {
		cl.logger.Error(msg, args...)
	}
}

func (cl ContextLoader) recordDuration(duration time.Duration) {
	if cl.metricsCollector != nil {
		cl.metricsCollector.RecordDuration(metricLoadDuration, duration, nil)
	}
}

func (cl ContextLoader) countFailure(stage string) {
	if cl.metricsCollector != nil {
		cl.metricsCollector.IncrementCounter(metricLoadFailures, map[string]string{metricLabelStage: stage})
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
