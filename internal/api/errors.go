package api

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"datalens/domain/core"
	apperrors "datalens/internal/errors"
)

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError classifies err and writes the error envelope. Server-side
// failures are logged and their detail withheld.
func (s *Server) respondError(c *gin.Context, err error) {
	appErr := apperrors.FromDomain(err)
	status := apperrors.HTTPStatus(appErr.Code)
	message := err.Error()
	if status >= 500 {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		message = "internal server error"
	}
	c.AbortWithStatusJSON(status, errorBody{Error: errorDetail{Code: appErr.Code, Message: message}})
}

func datasetID(c *gin.Context) (core.ID, error) {
	return core.ParseID(c.Param("id"))
}

// intQuery reads an optional integer parameter; absent means zero.
func intQuery(c *gin.Context, names ...string) (int, error) {
	name, raw := firstQuery(c, names...)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.NewParameterError(name, fmt.Sprintf("%q is not an integer", raw))
	}
	return v, nil
}

func floatQuery(c *gin.Context, name string) (float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, core.NewParameterError(name, fmt.Sprintf("%q is not a number", raw))
	}
	return v, nil
}

// boolQuery returns nil when the parameter is absent.
func boolQuery(c *gin.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, core.NewParameterError(name, fmt.Sprintf("%q is not a boolean", raw))
	}
	return &v, nil
}

// firstQuery returns the first of names present in the query string.
func firstQuery(c *gin.Context, names ...string) (string, string) {
	for _, n := range names {
		if v := strings.TrimSpace(c.Query(n)); v != "" {
			return n, v
		}
	}
	return names[0], ""
}

// listQuery splits comma separated values, dropping blanks.
func listQuery(c *gin.Context, names ...string) []string {
	_, raw := firstQuery(c, names...)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
