package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"datalens/domain/core"
	"datalens/internal/analyzer"
	"datalens/internal/charts"
)

type chartSpec struct {
	kind charts.Kind
	// x lists the accepted query names for the category or x column.
	x []string
	// y lists the accepted query names for value columns.
	y []string
	// limit lists the accepted query names for the group limit.
	limit []string
}

var (
	chartBar       = chartSpec{kind: charts.Bar, x: []string{"x_column"}, y: []string{"y_columns", "y_column"}, limit: []string{"limit"}}
	chartLine      = chartSpec{kind: charts.Line, x: []string{"x_column"}, y: []string{"y_columns", "y_column"}}
	chartPie       = chartSpec{kind: charts.Pie, x: []string{"category_column", "x_column"}, y: []string{"value_column", "y_column"}, limit: []string{"top_n", "limit"}}
	chartScatter   = chartSpec{kind: charts.Scatter, x: []string{"x_column"}, y: []string{"y_column"}}
	chartHistogram = chartSpec{kind: charts.Histogram, x: []string{"column", "x_column"}}
)

// postChart shapes a chart from query parameters. A JSON body, when sent,
// overrides them field by field.
func (s *Server) postChart(spec chartSpec) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := datasetID(c)
		if err != nil {
			s.respondError(c, err)
			return
		}
		p, err := chartParams(c, spec)
		if err != nil {
			s.respondError(c, err)
			return
		}
		payload, err := s.analysis.Chart(c.Request.Context(), id, p)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, payload)
	}
}

func (s *Server) getHeatmap(c *gin.Context) {
	id, err := datasetID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	method := strings.ToLower(strings.TrimSpace(c.Query("method")))
	if method == "correlation" {
		method = string(analyzer.Pearson)
	}
	payload, err := s.analysis.Chart(c.Request.Context(), id, charts.Params{
		Kind:   charts.Heatmap,
		Method: analyzer.CorrelationMethod(method),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (s *Server) getSuggestion(c *gin.Context) {
	id, err := datasetID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	x := strings.TrimSpace(c.Query("x_column"))
	if x == "" {
		s.respondError(c, core.NewParameterError("x_column", "is required"))
		return
	}
	suggestion, err := s.analysis.Suggest(c.Request.Context(), id, x, strings.TrimSpace(c.Query("y_column")))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestion)
}

func chartParams(c *gin.Context, spec chartSpec) (charts.Params, error) {
	p := charts.Params{
		Kind:        spec.kind,
		Aggregation: charts.Aggregation(c.Query("aggregation")),
		Color:       strings.TrimSpace(c.Query("color_column")),
		Size:        strings.TrimSpace(c.Query("size_column")),
	}
	_, p.X = firstQuery(c, spec.x...)
	if len(spec.y) > 0 {
		p.Y = listQuery(c, spec.y...)
	}

	var err error
	if len(spec.limit) > 0 {
		if p.Limit, err = intQuery(c, spec.limit...); err != nil {
			return p, err
		}
	}
	if p.Bins, err = intQuery(c, "bins"); err != nil {
		return p, err
	}
	if p.SampleSize, err = intQuery(c, "sample_size"); err != nil {
		return p, err
	}
	if p.FoldOther, err = boolQuery(c, "fold_other"); err != nil {
		return p, err
	}

	if c.Request.ContentLength != 0 && strings.HasPrefix(c.ContentType(), "application/json") {
		if err := c.ShouldBindJSON(&p); err != nil {
			return p, core.NewParameterError("body", fmt.Sprintf("invalid chart request: %v", err))
		}
		p.Kind = spec.kind
	}

	if p.X == "" {
		return p, core.NewParameterError(spec.x[0], "is required")
	}
	return p, nil
}
