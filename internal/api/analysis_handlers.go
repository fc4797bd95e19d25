package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"datalens/app"
	"datalens/internal/analyzer"
	"datalens/internal/report"
)

func (s *Server) getStatistics(c *gin.Context) {
	id, err := datasetID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	bins, err := intQuery(c, "bins")
	if err != nil {
		s.respondError(c, err)
		return
	}
	result, err := s.analysis.Statistics(c.Request.Context(), id, bins)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) getCorrelation(c *gin.Context) {
	id, err := datasetID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	method := analyzer.CorrelationMethod(c.Query("method"))
	result, err := s.analysis.Correlation(c.Request.Context(), id, method)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) getOutliers(c *gin.Context) {
	id, err := datasetID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	opts, err := outlierOptions(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	result, err := s.analysis.Outliers(c.Request.Context(), id, opts)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) getTrends(c *gin.Context) {
	id, err := datasetID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	maxPoints, err := intQuery(c, "max_points")
	if err != nil {
		s.respondError(c, err)
		return
	}
	opts := analyzer.TrendOptions{MaxPoints: maxPoints, Columns: listQuery(c, "columns", "value_column")}
	result, err := s.analysis.Trends(c.Request.Context(), id, opts)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// getSummary returns the overview together with per-column statistics.
func (s *Server) getSummary(c *gin.Context) {
	id, err := datasetID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	overview, err := s.analysis.Overview(ctx, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	stats, err := s.analysis.Statistics(ctx, id, 0)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"overview":   overview,
		"statistics": stats.Columns,
	})
}

func (s *Server) getReport(c *gin.Context) {
	id, err := datasetID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	opts, err := reportOptions(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	r, err := s.analysis.Report(c.Request.Context(), id, opts)
	if err != nil {
		s.respondError(c, err)
		return
	}
	switch format {
	case report.FormatMarkdown:
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(r)))
	case report.FormatHTML:
		c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(r))
	default:
		c.JSON(http.StatusOK, r)
	}
}

func outlierOptions(c *gin.Context) (analyzer.OutlierOptions, error) {
	threshold, err := floatQuery(c, "threshold")
	if err != nil {
		return analyzer.OutlierOptions{}, err
	}
	maxValues, err := intQuery(c, "max_values")
	if err != nil {
		return analyzer.OutlierOptions{}, err
	}
	_, method := firstQuery(c, "outlier_method", "method")
	return analyzer.OutlierOptions{
		Method:    analyzer.OutlierMethod(method),
		Threshold: threshold,
		MaxValues: maxValues,
	}, nil
}

func reportOptions(c *gin.Context) (app.ReportOptions, error) {
	bins, err := intQuery(c, "bins")
	if err != nil {
		return app.ReportOptions{}, err
	}
	maxPoints, err := intQuery(c, "max_points")
	if err != nil {
		return app.ReportOptions{}, err
	}
	threshold, err := floatQuery(c, "threshold")
	if err != nil {
		return app.ReportOptions{}, err
	}
	return app.ReportOptions{
		Bins:              bins,
		CorrelationMethod: analyzer.CorrelationMethod(c.Query("correlation_method")),
		Outliers: analyzer.OutlierOptions{
			Method:    analyzer.OutlierMethod(c.Query("outlier_method")),
			Threshold: threshold,
		},
		Trends: analyzer.TrendOptions{MaxPoints: maxPoints},
	}, nil
}
