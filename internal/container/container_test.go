package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datalens/adapters/filestore"
	"datalens/adapters/sqlstore"
	"datalens/internal"
	"datalens/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Data.Dir = t.TempDir()
	return cfg
}

func uploadAndSummarize(t *testing.T, c *Container) {
	t.Helper()
	ctx := context.Background()
	ds, err := c.Datasets.Upload(ctx, "", "units.csv", strings.NewReader("region,units\nN,1\nS,2\nN,6\n"))
	require.NoError(t, err)

	stats, err := c.Analysis.Statistics(ctx, ds.ID, 0)
	require.NoError(t, err)
	units, ok := stats.Columns.Get("units")
	require.True(t, ok)
	assert.Equal(t, 3, units.Count)
}

func TestNew_DirectoryCatalog(t *testing.T) {
	c, err := New(context.Background(), testConfig(t), internal.NewLogger(internal.LogLevelError))
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	assert.Nil(t, c.DB)
	assert.IsType(t, &filestore.Catalog{}, c.Repo)
	uploadAndSummarize(t, c)
}

func TestNew_SQLiteCatalog(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = "sqlite3"
	cfg.Database.URL = ":memory:"
	cfg.Database.MaxOpenConns = 1

	c, err := New(context.Background(), cfg, internal.NewLogger(internal.LogLevelError))
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	require.NotNil(t, c.DB)
	assert.IsType(t, sqlstore.NewDatasetRepository(c.DB), c.Repo)
	uploadAndSummarize(t, c)

	list, err := c.Datasets.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestHandlers(t *testing.T) {
	c, err := New(context.Background(), testConfig(t), internal.NewLogger(internal.LogLevelError))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/datasets", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	c.AdminHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(context.Background(), nil, nil)
	assert.Error(t, err)
}
