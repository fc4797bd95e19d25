package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datalens/domain/core"
	"datalens/domain/table"
	"datalens/internal/analyzer"
	"datalens/internal/charts"
	"datalens/internal/metrics"
)

// memoryLoader serves fixed tables and counts loads.
type memoryLoader struct {
	tables map[core.ID]*table.Table
	loads  atomic.Int32
}

func (l *memoryLoader) Load(ctx context.Context, id core.ID) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.loads.Add(1)
	t, ok := l.tables[id]
	if !ok {
		return nil, core.NewNotFoundError("dataset", id.String())
	}
	return t, nil
}

func salesTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.FromColumns(
		table.TextColumn("region", "North", "South", "North", "East", "South", "North"),
		table.NumericColumn("units", 3, 5, 4, 1, 6, 40),
		table.NumericColumn("revenue", 30, 52, 41, 9, 63, 390),
	)
	require.NoError(t, err)
	return tbl
}

func newTestService(t *testing.T) (*AnalysisService, *memoryLoader, *metrics.Metrics) {
	t.Helper()
	loader := &memoryLoader{tables: map[core.ID]*table.Table{"sales": salesTable(t)}}
	m := metrics.New(prometheus.NewRegistry())
	svc := NewAnalysisService(loader, Options{
		Bins:             5,
		MaxPoints:        50,
		OutlierMaxValues: 10,
		CacheTTL:         time.Minute,
		CacheMaxEntries:  32,
	}, m, nil)
	return svc, loader, m
}

func TestStatistics_CachesTableAndResult(t *testing.T) {
	svc, loader, m := newTestService(t)
	ctx := context.Background()

	first, err := svc.Statistics(ctx, "sales", 0)
	require.NoError(t, err)
	second, err := svc.Statistics(ctx, "sales", 0)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.EqualValues(t, 1, loader.loads.Load())

	units, ok := first.Columns.Get("units")
	require.True(t, ok)
	assert.Equal(t, 5, units.Distribution.Bins)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues(EngineStatistics, "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues(EngineStatistics, "miss")))

	// A different parameter set reuses the table but not the result.
	other, err := svc.Statistics(ctx, "sales", 3)
	require.NoError(t, err)
	assert.NotSame(t, first, other)
	assert.EqualValues(t, 1, loader.loads.Load())
}

func TestInvalidate_ForcesReload(t *testing.T) {
	svc, loader, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Overview(ctx, "sales")
	require.NoError(t, err)
	svc.Invalidate("sales")
	_, err = svc.Overview(ctx, "sales")
	require.NoError(t, err)
	assert.EqualValues(t, 2, loader.loads.Load())
}

func TestOutliers_EquivalentRequestsShareEntry(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Outliers(ctx, "sales", analyzer.OutlierOptions{})
	require.NoError(t, err)
	b, err := svc.Outliers(ctx, "sales", analyzer.OutlierOptions{Method: "IQR", Threshold: 1.5})
	require.NoError(t, err)
	assert.Same(t, a, b)

	z, err := svc.Outliers(ctx, "sales", analyzer.OutlierOptions{Method: "z-score"})
	require.NoError(t, err)
	assert.Equal(t, analyzer.MethodZScore, z.Method)
	assert.Equal(t, analyzer.DefaultZScoreThreshold, z.Threshold)

	_, err = svc.Outliers(ctx, "sales", analyzer.OutlierOptions{Method: "mad"})
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestErrorsPropagate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Statistics(ctx, "missing", 0)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.Correlation(ctx, "sales", "cosine")
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	_, err = svc.Trends(ctx, "sales", analyzer.TrendOptions{Columns: []string{"nope"}})
	assert.ErrorIs(t, err, core.ErrInvalidColumnReference)

	_, err = svc.Chart(ctx, "sales", charts.Params{Kind: charts.Bar, X: "nope"})
	assert.ErrorIs(t, err, core.ErrInvalidColumnReference)
}

func TestCanceledContext(t *testing.T) {
	svc, loader, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Statistics(ctx, "sales", 0)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.EqualValues(t, 0, loader.loads.Load())
}

func TestChartAndSuggest(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.Chart(ctx, "sales", charts.Params{Kind: charts.Bar, X: "region", Y: []string{"revenue"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"North", "South", "East"}, p.Labels)

	s, err := svc.Suggest(ctx, "sales", "region", "revenue")
	require.NoError(t, err)
	assert.Equal(t, charts.Bar, s.Kind)
}

func TestReport_FansOutAllEngines(t *testing.T) {
	svc, loader, m := newTestService(t)

	r, err := svc.Report(context.Background(), "sales", ReportOptions{CorrelationMethod: analyzer.Spearman})
	require.NoError(t, err)

	assert.Equal(t, core.ID("sales"), r.DatasetID)
	assert.Equal(t, 6, r.Overview.TotalRows)
	require.NotNil(t, r.Statistics)
	require.NotNil(t, r.Correlation)
	require.NotNil(t, r.Outliers)
	require.NotNil(t, r.Trends)
	assert.Equal(t, analyzer.Spearman, r.Correlation.Method)
	assert.Equal(t, 2, r.Outliers.Columns.Len())
	assert.EqualValues(t, 1, loader.loads.Load())

	// One histogram series per engine, all with status ok.
	assert.Equal(t, 5, testutil.CollectAndCount(m.EngineDuration))
}

func TestReport_InvalidMethod(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Report(context.Background(), "sales", ReportOptions{CorrelationMethod: "cosine"})
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

// gatedLoader blocks every load until gate is closed.
type gatedLoader struct {
	*memoryLoader
	started chan struct{}
	gate    chan struct{}
}

func (l *gatedLoader) Load(ctx context.Context, id core.ID) (*table.Table, error) {
	l.started <- struct{}{}
	<-l.gate
	return l.memoryLoader.Load(ctx, id)
}

func TestTable_BoundsConcurrentLoads(t *testing.T) {
	loader := &gatedLoader{
		memoryLoader: &memoryLoader{tables: map[core.ID]*table.Table{"sales": salesTable(t)}},
		started:      make(chan struct{}, 1),
		gate:         make(chan struct{}),
	}
	svc := NewAnalysisService(loader, Options{CacheTTL: time.Minute, CacheMaxEntries: 8, MaxConcurrentLoads: 1}, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Table(context.Background(), "sales")
		done <- err
	}()
	<-loader.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := svc.Table(ctx, "sales")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(loader.gate)
	require.NoError(t, <-done)

	_, err = svc.Table(context.Background(), "sales")
	require.NoError(t, err)
	assert.EqualValues(t, 1, loader.loads.Load())
}
