package ui

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shanky2010/batch-visual-insights/domain/core"
	"github.com/shanky2010/batch-visual-insights/internal/chartprep"
	"github.com/shanky2010/batch-visual-insights/internal/compare"
	"github.com/shanky2010/batch-visual-insights/internal/dataset"
	"github.com/shanky2010/batch-visual-insights/internal/describe"
	"github.com/shanky2010/batch-visual-insights/internal/export"
	"github.com/shanky2010/batch-visual-insights/internal/impute"
	"github.com/shanky2010/batch-visual-insights/internal/outlier"
	"github.com/shanky2010/batch-visual-insights/internal/report"
)

// defaultUserID stands in when the consuming layer supplies no user
// identity; the core neither authenticates nor authorizes.
const defaultUserID = "local"

func (s *Server) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to open upload: %v", err)})
		return
	}
	defer src.Close()

	f, err := s.service.ProcessUpload(c.Request.Context(), dataset.Upload{
		File:     src,
		Filename: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		UserID:   userID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, f)
}

func (s *Server) handleListFiles(c *gin.Context) {
	files, err := s.service.ListFiles(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (s *Server) handleGetFile(c *gin.Context) {
	f, err := s.service.GetFile(c.Request.Context(), fileID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (s *Server) handleDeleteFile(c *gin.Context) {
	if err := s.service.DeleteFile(c.Request.Context(), fileID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleNumericColumns(c *gin.Context) {
	columns, err := s.service.NumericColumns(c.Request.Context(), fileID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"columns": columns})
}

func (s *Server) handleColumnStats(c *gin.Context) {
	col, ok := intQuery(c, "column", -1)
	if !ok || col < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "column query parameter is required"})
		return
	}

	summary, err := s.service.ColumnSummary(c.Request.Context(), fileID(c), col)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaryJSON(summary))
}

func (s *Server) handleFileSummary(c *gin.Context) {
	summaries, err := s.service.SummarizeNumeric(c.Request.Context(), fileID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make(map[string]gin.H, len(summaries))
	for name, summary := range summaries {
		out[name] = summaryJSON(summary)
	}
	c.JSON(http.StatusOK, gin.H{"summaries": out})
}

func (s *Server) handleOutliers(c *gin.Context) {
	col, ok := intQuery(c, "column", -1)
	if !ok || col < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "column query parameter is required"})
		return
	}
	method := outlier.Method(c.DefaultQuery("method", string(outlier.MethodIQR)))
	threshold := floatQuery(c, "threshold", outlier.DefaultZThreshold)

	result, err := s.service.Outliers(c.Request.Context(), fileID(c), col, method, threshold)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type removeOutliersRequest struct {
	Column    int     `json:"column"`
	Method    string  `json:"method"`
	Threshold float64 `json:"threshold"`
}

func (s *Server) handleRemoveOutliers(c *gin.Context) {
	var req removeOutliersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	f, err := s.service.RemoveOutlierRows(c.Request.Context(), fileID(c), req.Column, outlier.Method(req.Method), req.Threshold)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

type imputeRequest struct {
	Method string `json:"method"`
	Value  string `json:"value"`
}

func (s *Server) handleImpute(c *gin.Context) {
	var req imputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	f, err := s.service.ImputeMissing(c.Request.Context(), fileID(c), impute.Method(req.Method), req.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (s *Server) handleBarChart(c *gin.Context) {
	f, err := s.service.GetFile(c.Request.Context(), fileID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	labelCol, _ := intQuery(c, "label", 0)
	valueCol, _ := intQuery(c, "value", 1)
	limit, _ := intQuery(c, "limit", 0)

	c.JSON(http.StatusOK, chartprep.Bar(f.Matrix, labelCol, valueCol, limit))
}

func (s *Server) handlePieChart(c *gin.Context) {
	f, err := s.service.GetFile(c.Request.Context(), fileID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	labelCol, _ := intQuery(c, "label", 0)
	valueCol, _ := intQuery(c, "value", 1)
	limit, _ := intQuery(c, "limit", 0)

	c.JSON(http.StatusOK, chartprep.Pie(f.Matrix, labelCol, valueCol, limit))
}

func (s *Server) handleHistogram(c *gin.Context) {
	f, err := s.service.GetFile(c.Request.Context(), fileID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	valueCol, _ := intQuery(c, "value", 0)
	bins, _ := intQuery(c, "bins", 0)

	c.JSON(http.StatusOK, chartprep.Histogram(f.Matrix, valueCol, bins))
}

func (s *Server) handleScatter(c *gin.Context) {
	f, err := s.service.GetFile(c.Request.Context(), fileID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	xCol, okX := intQuery(c, "x", -1)
	yCol, okY := intQuery(c, "y", -1)
	if !okX || !okY || xCol < 0 || yCol < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "x and y query parameters are required"})
		return
	}
	limit, _ := intQuery(c, "limit", 0)

	c.JSON(http.StatusOK, gin.H{"points": chartprep.Scatter(f.Matrix, xCol, yCol, limit)})
}

func (s *Server) handleTreemap(c *gin.Context) {
	f, err := s.service.GetFile(c.Request.Context(), fileID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	valueCol, _ := intQuery(c, "value", 1)
	limit, _ := intQuery(c, "limit", 0)

	c.JSON(http.StatusOK, gin.H{"nodes": chartprep.Treemap(f.Matrix, valueCol, limit)})
}

type compareRequest struct {
	Selections []struct {
		FileID  string `json:"file_id"`
		Columns []int  `json:"columns"`
	} `json:"selections"`
}

func (req compareRequest) toSelections() []dataset.Selection {
	selections := make([]dataset.Selection, 0, len(req.Selections))
	for _, sel := range req.Selections {
		selections = append(selections, dataset.Selection{
			FileID:  core.FileID(sel.FileID),
			Columns: sel.Columns,
		})
	}
	return selections
}

func (s *Server) handleCompare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	results, err := s.service.Compare(c.Request.Context(), req.toSelections())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comparisons": comparisonsJSON(results)})
}

func (s *Server) handleCompareExport(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	results, err := s.service.Compare(c.Request.Context(), req.toSelections())
	if err != nil {
		respondError(c, err)
		return
	}

	csvText := export.StatsCSV(export.EntriesFromComparison(results))
	c.Header("Content-Disposition", `attachment; filename="comparison.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(csvText))
}

func (s *Server) handleExport(c *gin.Context) {
	id := fileID(c)
	columns, err := parseColumns(c.Query("columns"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Default to every numeric column when no selection was supplied.
	if columns == nil {
		numeric, err := s.service.NumericColumns(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		for _, col := range numeric {
			columns = append(columns, col.Index)
		}
	}

	entries, err := s.service.StatsEntries(c.Request.Context(), id, columns)
	if err != nil {
		respondError(c, err)
		return
	}

	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		payload, err := export.StatsXLSX(entries)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="statistics.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", payload)
	default:
		c.Header("Content-Disposition", `attachment; filename="statistics.csv"`)
		c.Data(http.StatusOK, "text/csv", []byte(export.StatsCSV(entries)))
	}
}

func (s *Server) handleDownload(c *gin.Context) {
	reader, f, err := s.service.OpenOriginal(c.Request.Context(), fileID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))
	c.DataFromReader(http.StatusOK, f.FileSize, f.MimeType, reader, nil)
}

func (s *Server) handleReport(c *gin.Context) {
	f, err := s.service.GetFile(c.Request.Context(), fileID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	switch c.DefaultQuery("format", "html") {
	case "md":
		c.Data(http.StatusOK, "text/markdown", []byte(report.Markdown(f)))
	default:
		c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(f))
	}
}

// Helpers

func fileID(c *gin.Context) core.FileID {
	return core.FileID(c.Param("id"))
}

func userID(c *gin.Context) core.UserID {
	return core.UserID(c.DefaultQuery("user_id", defaultUserID))
}

func intQuery(c *gin.Context, key string, fallback int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, false
	}
	return v, true
}

func floatQuery(c *gin.Context, key string, fallback float64) float64 {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func parseColumns(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var columns []int
	for _, part := range strings.Split(raw, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid column index %q", part)
		}
		columns = append(columns, v)
	}
	return columns, nil
}

// statValue converts a nullable statistic for JSON: nil stays null,
// non-finite becomes "N/A" because JSON cannot represent NaN/Infinity.
func statValue(v *float64) interface{} {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return "N/A"
	}
	return *v
}

func summaryJSON(s describe.Summary) gin.H {
	return gin.H{
		"mean":     statValue(s.Mean),
		"median":   statValue(s.Median),
		"min":      statValue(s.Min),
		"max":      statValue(s.Max),
		"std_dev":  statValue(s.StdDev),
		"variance": statValue(s.Variance),
		"quartiles": gin.H{
			"q1": statValue(s.Quartiles.Q1),
			"q3": statValue(s.Quartiles.Q3),
		},
		"count":    s.Count,
		"skewness": statValue(s.Skewness),
		"kurtosis": statValue(s.Kurtosis),
	}
}

func comparisonsJSON(results []compare.Result) []gin.H {
	out := make([]gin.H, 0, len(results))
	for _, r := range results {
		files := make([]gin.H, 0, len(r.Files))
		for _, f := range r.Files {
			files = append(files, gin.H{
				"file_id":   f.FileID,
				"file_name": f.FileName,
				"summary":   summaryJSON(f.Summary),
			})
		}
		entry := gin.H{
			"column_name": r.ColumnName,
			"files":       files,
		}
		if r.Differences != nil {
			entry["differences"] = r.Differences
		}
		out = append(out, entry)
	}
	return out
}

func respondError(c *gin.Context, err error) {
	switch {
	case core.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case core.IsInputError(err), errors.Is(err, core.ErrUnknownMethod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
