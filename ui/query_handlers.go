package ui

import (
	"net/http"

	"datalens/domain/query"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

type queryRequest struct {
	Question string `json:"question" binding:"required"`
}

type chartRequest struct {
	Spec query.Spec `json:"spec" binding:"required"`
}

// handleQuery answers a natural-language question about a dataset
func (s *Server) handleQuery(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}

	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request must include a question"})
		return
	}

	result, err := s.queries.Ask(c.Request.Context(), id, req.Question)
	if err != nil {
		respondError(c, err)
		return
	}
	s.capTableRows(result)

	c.JSON(http.StatusOK, gin.H{
		"result":           result,
		"explanation_html": renderMarkdown(result.Explanation),
	})
}

// handleHistory returns recent queries for a dataset
func (s *Server) handleHistory(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}

	limit := intQuery(c, "limit", 50)
	entries, err := s.queries.History(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"history": entries,
		"count":   len(entries),
	})
}

// handleChart builds an explicitly requested chart
func (s *Server) handleChart(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}

	var req chartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request must include a chart spec"})
		return
	}

	result, err := s.queries.BuildChart(c.Request.Context(), id, req.Spec)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// capTableRows limits table payloads to the configured display size.
// TableData.Total still reports the uncapped match count.
func (s *Server) capTableRows(result *query.Result) {
	max := s.cfg.Data.MaxRowsDisplay
	if max <= 0 || result == nil || result.TableData == nil {
		return
	}
	if len(result.TableData.Rows) > max {
		result.TableData.Rows = result.TableData.Rows[:max]
	}
}

// renderMarkdown converts an explanation to HTML for direct embedding
func renderMarkdown(md string) string {
	if md == "" {
		return ""
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.SkipHTML,
	})

	return string(markdown.ToHTML([]byte(md), p, renderer))
}
