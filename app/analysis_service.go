package app

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"datalens/domain/core"
	"datalens/domain/table"
	"datalens/internal"
	"datalens/internal/analyzer"
	"datalens/internal/charts"
	"datalens/internal/metrics"
	"datalens/internal/report"
	"datalens/ports"
)

// Engine names used for cache keys, metrics and logs.
const (
	EngineTable       = "table"
	EngineStatistics  = "statistics"
	EngineCorrelation = "correlation"
	EngineOutliers    = "outliers"
	EngineTrends      = "trends"
	EngineOverview    = "overview"
	EngineChart       = "chart"
)

// Options carries service-wide defaults applied when a request leaves a
// parameter unset.
type Options struct {
	Bins             int
	MaxPoints        int
	OutlierMaxValues int
	CacheTTL         time.Duration
	CacheMaxEntries  int

	// MaxConcurrentLoads bounds how many datasets are parsed at once.
	// Zero or less means DefaultMaxConcurrentLoads.
	MaxConcurrentLoads int
}

// DefaultMaxConcurrentLoads applies when Options.MaxConcurrentLoads is unset.
const DefaultMaxConcurrentLoads = 4

// ReportOptions selects the engine parameters of a combined report.
type ReportOptions struct {
	Bins              int
	CorrelationMethod analyzer.CorrelationMethod
	Outliers          analyzer.OutlierOptions
	Trends            analyzer.TrendOptions
}

// AnalysisService loads datasets and runs the analysis engines over them.
type AnalysisService struct {
	loader  ports.TableLoader
	loads   *semaphore.Weighted
	cache   *ResultCache
	metrics *metrics.Metrics
	logger  *internal.Logger
	opts    Options
}

// NewAnalysisService wires a service. metrics and logger may be nil.
func NewAnalysisService(loader ports.TableLoader, opts Options, m *metrics.Metrics, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if opts.MaxConcurrentLoads <= 0 {
		opts.MaxConcurrentLoads = DefaultMaxConcurrentLoads
	}
	return &AnalysisService{
		loader:  loader,
		loads:   semaphore.NewWeighted(int64(opts.MaxConcurrentLoads)),
		cache:   NewResultCache(opts.CacheTTL, opts.CacheMaxEntries),
		metrics: m,
		logger:  logger.Named("analysis"),
		opts:    opts,
	}
}

// Invalidate drops cached results for a dataset.
func (s *AnalysisService) Invalidate(id core.ID) {
	if n := s.cache.Invalidate(id); n > 0 {
		s.logger.Debug("invalidated %d cached results for dataset %s", n, id)
	}
}

// Table returns the parsed dataset.
func (s *AnalysisService) Table(ctx context.Context, id core.ID) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := CacheKey(id, EngineTable, nil)
	if v, ok := s.cache.Get(key); ok {
		s.countLookup(EngineTable, true)
		return v.(*table.Table), nil
	}
	s.countLookup(EngineTable, false)

	if err := s.loads.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.loads.Release(1)
	// a concurrent request may have parsed it while we waited
	if v, ok := s.cache.Get(key); ok {
		return v.(*table.Table), nil
	}

	start := time.Now()
	t, err := s.loader.Load(ctx, id)
	if s.metrics != nil {
		s.metrics.LoadDuration.WithLabelValues(metrics.Status(err)).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, err
	}
	s.logger.Debug("loaded dataset %s: %d rows, %d columns in %s", id, t.NumRows(), t.NumColumns(), time.Since(start))
	s.cache.Put(key, id, t)
	return t, nil
}

// Statistics summarizes every numeric column.
func (s *AnalysisService) Statistics(ctx context.Context, id core.ID, bins int) (*analyzer.StatisticsResult, error) {
	opts := analyzer.SummaryOptions{Bins: s.bins(bins)}
	params := map[string]string{"bins": strconv.Itoa(opts.Bins)}
	return cached(ctx, s, id, EngineStatistics, params, func(t *table.Table) (*analyzer.StatisticsResult, error) {
		return analyzer.Summarize(t, opts)
	})
}

// Correlation computes the pairwise coefficient matrix.
func (s *AnalysisService) Correlation(ctx context.Context, id core.ID, method analyzer.CorrelationMethod) (*analyzer.CorrelationResult, error) {
	method, err := analyzer.ParseCorrelationMethod(string(method))
	if err != nil {
		return nil, err
	}
	params := map[string]string{"method": string(method)}
	return cached(ctx, s, id, EngineCorrelation, params, func(t *table.Table) (*analyzer.CorrelationResult, error) {
		return analyzer.Correlate(t, method)
	})
}

// Outliers flags outlying values per numeric column.
func (s *AnalysisService) Outliers(ctx context.Context, id core.ID, opts analyzer.OutlierOptions) (*analyzer.OutlierResult, error) {
	opts, err := s.outlierOptions(opts)
	if err != nil {
		return nil, err
	}
	params := map[string]string{
		"method":     string(opts.Method),
		"threshold":  strconv.FormatFloat(opts.Threshold, 'g', -1, 64),
		"max_values": strconv.Itoa(opts.MaxValues),
	}
	return cached(ctx, s, id, EngineOutliers, params, func(t *table.Table) (*analyzer.OutlierResult, error) {
		return analyzer.DetectOutliers(t, opts)
	})
}

// Trends fits a linear trend per numeric column.
func (s *AnalysisService) Trends(ctx context.Context, id core.ID, opts analyzer.TrendOptions) (*analyzer.TrendsResult, error) {
	opts = s.trendOptions(opts)
	params := map[string]string{
		"max_points": strconv.Itoa(opts.MaxPoints),
		"columns":    strings.Join(opts.Columns, "\x1f"),
	}
	return cached(ctx, s, id, EngineTrends, params, func(t *table.Table) (*analyzer.TrendsResult, error) {
		return analyzer.AnalyzeTrends(t, opts)
	})
}

// Overview profiles the table shape and quality.
func (s *AnalysisService) Overview(ctx context.Context, id core.ID) (analyzer.DatasetOverview, error) {
	return cached(ctx, s, id, EngineOverview, nil, func(t *table.Table) (analyzer.DatasetOverview, error) {
		return analyzer.Overview(t), nil
	})
}

// Chart shapes a chart payload.
func (s *AnalysisService) Chart(ctx context.Context, id core.ID, p charts.Params) (*charts.Payload, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chart params: %w", err)
	}
	params := map[string]string{"params": string(raw)}
	return cached(ctx, s, id, EngineChart, params, func(t *table.Table) (*charts.Payload, error) {
		return charts.Shape(t, p)
	})
}

// Suggest recommends a chart for the named columns. y may be empty.
func (s *AnalysisService) Suggest(ctx context.Context, id core.ID, x, y string) (charts.Suggestion, error) {
	t, err := s.Table(ctx, id)
	if err != nil {
		return charts.Suggestion{}, err
	}
	return charts.SuggestForColumns(t, x, y)
}

// Report runs every engine over the dataset concurrently.
func (s *AnalysisService) Report(ctx context.Context, id core.ID, opts ReportOptions) (*report.Report, error) {
	t, err := s.Table(ctx, id)
	if err != nil {
		return nil, err
	}
	r, err := s.BuildReport(ctx, t, opts)
	if err != nil {
		return nil, err
	}
	r.DatasetID = id
	r.Title = id.String()
	return r, nil
}

// BuildReport runs every engine over t concurrently. The table is shared
// read-only between the goroutines.
func (s *AnalysisService) BuildReport(ctx context.Context, t *table.Table, opts ReportOptions) (*report.Report, error) {
	method, err := analyzer.ParseCorrelationMethod(string(opts.CorrelationMethod))
	if err != nil {
		return nil, err
	}
	opts.Bins = s.bins(opts.Bins)
	if opts.Outliers, err = s.outlierOptions(opts.Outliers); err != nil {
		return nil, err
	}
	opts.Trends = s.trendOptions(opts.Trends)

	r := &report.Report{GeneratedAt: time.Now().UTC()}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.observe(gctx, EngineOverview, func() error {
			r.Overview = analyzer.Overview(t)
			return nil
		})
	})
	g.Go(func() error {
		return s.observe(gctx, EngineStatistics, func() (err error) {
			r.Statistics, err = analyzer.Summarize(t, analyzer.SummaryOptions{Bins: opts.Bins})
			return err
		})
	})
	g.Go(func() error {
		return s.observe(gctx, EngineCorrelation, func() (err error) {
			r.Correlation, err = analyzer.Correlate(t, method)
			return err
		})
	})
	g.Go(func() error {
		return s.observe(gctx, EngineOutliers, func() (err error) {
			r.Outliers, err = analyzer.DetectOutliers(t, opts.Outliers)
			return err
		})
	})
	g.Go(func() error {
		return s.observe(gctx, EngineTrends, func() (err error) {
			r.Trends, err = analyzer.AnalyzeTrends(t, opts.Trends)
			return err
		})
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return r, nil
}

// cached looks up the result of engine over dataset id, computing and storing
// it on a miss.
func cached[T any](ctx context.Context, s *AnalysisService, id core.ID, engine string, params map[string]string, run func(*table.Table) (T, error)) (T, error) {
	var zero T
	key := CacheKey(id, engine, params)
	if v, ok := s.cache.Get(key); ok {
		s.countLookup(engine, true)
		return v.(T), nil
	}
	s.countLookup(engine, false)

	t, err := s.Table(ctx, id)
	if err != nil {
		return zero, err
	}

	var out T
	err = s.observe(ctx, engine, func() (err error) {
		out, err = run(t)
		return err
	})
	if err != nil {
		return zero, err
	}
	s.cache.Put(key, id, out)
	return out, nil
}

// observe runs fn unless ctx is done, recording its duration.
func (s *AnalysisService) observe(ctx context.Context, engine string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.EngineDuration.WithLabelValues(engine, metrics.Status(err)).Observe(elapsed.Seconds())
	}
	if err != nil {
		s.logger.Debug("%s failed after %s: %v", engine, elapsed, err)
		return err
	}
	s.logger.Trace("%s completed in %s", engine, elapsed)
	return ctx.Err()
}

func (s *AnalysisService) countLookup(engine string, hit bool) {
	if s.metrics == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	s.metrics.CacheLookups.WithLabelValues(engine, result).Inc()
}

func (s *AnalysisService) bins(requested int) int {
	if requested != 0 {
		return requested
	}
	return s.opts.Bins
}

// outlierOptions canonicalizes the method and fills defaults so equivalent
// requests share a cache entry.
func (s *AnalysisService) outlierOptions(opts analyzer.OutlierOptions) (analyzer.OutlierOptions, error) {
	method, err := analyzer.ParseOutlierMethod(string(opts.Method))
	if err != nil {
		return opts, err
	}
	opts.Method = method
	if opts.MaxValues <= 0 {
		opts.MaxValues = s.opts.OutlierMaxValues
	}
	if !(opts.Threshold > 0) || math.IsInf(opts.Threshold, 0) {
		opts.Threshold = method.DefaultThreshold()
	}
	return opts, nil
}

func (s *AnalysisService) trendOptions(opts analyzer.TrendOptions) analyzer.TrendOptions {
	if opts.MaxPoints == 0 {
		opts.MaxPoints = s.opts.MaxPoints
	}
	return opts
}
