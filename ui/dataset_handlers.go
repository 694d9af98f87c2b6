package ui

import (
	"net/http"
	"strconv"

	"datalens/app"
	"datalens/domain/core"

	"github.com/gin-gonic/gin"
)

// handleUpload ingests an uploaded CSV or Excel file
func (s *Server) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field in multipart form"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	ds, err := s.datasets.Ingest(c.Request.Context(), file, fileHeader.Filename, fileHeader.Size)
	if err != nil {
		if ds != nil {
			// File parsed badly but the failed record was persisted
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   err.Error(),
				"dataset": ds,
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"dataset": ds})
}

// handleList returns datasets newest first
func (s *Server) handleList(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	datasets, err := s.datasets.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"datasets": datasets,
		"count":    len(datasets),
	})
}

// handleGet returns a single dataset record
func (s *Server) handleGet(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}

	ds, err := s.datasets.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dataset": ds})
}

// handleDelete removes a dataset, its file, and its history
func (s *Server) handleDelete(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}

	if err := s.datasets.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// handleDownload streams the originally uploaded file back
func (s *Server) handleDownload(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}

	ds, reader, err := s.datasets.Download(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+ds.OriginalFilename+`"`)
	c.DataFromReader(http.StatusOK, ds.FileSize, ds.MimeType, reader, nil)
}

// handleOverview returns column profiles, quality, validation, and a
// capped slice of raw rows (?rows=N, default 1000, max 5000)
func (s *Server) handleOverview(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}

	rows, _ := strconv.Atoi(c.DefaultQuery("rows", strconv.Itoa(app.DefaultOverviewRows)))

	overview, err := s.datasets.Overview(c.Request.Context(), id, rows)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// handleSummary returns describe-style numeric statistics
func (s *Server) handleSummary(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}

	briefs, err := s.datasets.Summary(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"columns": briefs})
}

// handleCorrelation returns the Pearson correlation matrix
func (s *Server) handleCorrelation(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}

	matrix, err := s.datasets.Correlation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, matrix)
}

// handleSuggestions returns recommended visualizations
func (s *Server) handleSuggestions(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}

	suggestions, err := s.datasets.ChartSuggestions(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func datasetID(c *gin.Context) (core.DatasetID, bool) {
	id, err := core.ParseDatasetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dataset id"})
		return "", false
	}
	return id, true
}

func intQuery(c *gin.Context, key string, defaultValue int) int {
	raw := c.DefaultQuery(key, strconv.Itoa(defaultValue))
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return defaultValue
	}
	return v
}
