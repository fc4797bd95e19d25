package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"datalens/domain/core"
)

const defaultListLimit = 50

func (s *Server) listDatasets(c *gin.Context) {
	limit, err := intQuery(c, "limit")
	if err != nil {
		s.respondError(c, err)
		return
	}
	offset, err := intQuery(c, "offset", "skip")
	if err != nil {
		s.respondError(c, err)
		return
	}
	if limit <= 0 || limit > 500 {
		limit = defaultListLimit
	}
	offset = max(offset, 0)

	list, err := s.datasets.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"datasets": list,
		"count":    len(list),
		"limit":    limit,
		"offset":   offset,
	})
}

func (s *Server) uploadDataset(c *gin.Context) {
	if s.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes)
	}
	header, err := c.FormFile("file")
	if err != nil {
		s.respondError(c, core.NewParameterError("file", fmt.Sprintf("multipart file is required: %v", err)))
		return
	}
	f, err := header.Open()
	if err != nil {
		s.respondError(c, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer f.Close()

	ds, err := s.datasets.Upload(c.Request.Context(), c.GetHeader("X-Owner-ID"), header.Filename, f)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ds)
}

func (s *Server) getDataset(c *gin.Context) {
	id, err := datasetID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	ds, err := s.datasets.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ds)
}

func (s *Server) deleteDataset(c *gin.Context) {
	id, err := datasetID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.datasets.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
