package ui

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"paxclean/adapters/excel"
	"paxclean/domain/core"
	"paxclean/internal/errors"
	"paxclean/internal/report"

	"github.com/gin-gonic/gin"
)

const defaultListLimit = 20

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleCreateRun cleans an uploaded CSV or XLSX file sent as form field "dataset".
func (s *Server) handleCreateRun(c *gin.Context) {
	file, header, err := c.Request.FormFile("dataset")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	maxSize := int64(s.config.MaxUploadMB) << 20
	if header.Size > maxSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("File size (%.1f MB) exceeds the %d MB limit", float64(header.Size)/(1<<20), s.config.MaxUploadMB),
		})
		return
	}

	name := strings.ToLower(header.Filename)
	if !strings.HasSuffix(name, ".csv") && !strings.HasSuffix(name, ".xlsx") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only CSV (.csv) and Excel (.xlsx) files are allowed"})
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, maxSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload"})
		return
	}

	raw, err := s.cleaning.ReadBytes(content, excel.FileType(name))
	if err != nil {
		s.respondError(c, err)
		return
	}

	outcome, err := s.cleaning.RunTable(c.Request.Context(), raw, header.Filename)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if runErr := outcome.RunErr; runErr != nil {
		s.logger.WithError(runErr).WithField("run_id", outcome.Report.ID()).Warn("run failed")
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  runErr.Error(),
			"code":   errors.GetCode(runErr),
			"report": outcome.Report,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"run_id": outcome.Report.ID(),
		"files":  outcome.Files,
		"report": outcome.Report,
	})
}

func (s *Server) handleListRuns(c *gin.Context) {
	limit := defaultListLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	runs, err := s.runs.ListRuns(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"count": len(runs),
	})
}

func (s *Server) handleGetRun(c *gin.Context) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rep, err := s.runs.GetRun(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// handleRunReport renders a stored report. ?format=html|md|json, html by default.
func (s *Server) handleRunReport(c *gin.Context) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rep, err := s.runs.GetRun(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}

	format := c.DefaultQuery("format", report.FormatHTML)
	body, err := report.Render(rep, format)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, report.ContentType(format), body)
}

func (s *Server) respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).WithField("code", code).Error("request failed")
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

func statusFor(code string) int {
	switch code {
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeInvalidInput, errors.CodeSchemaError, errors.CodeInvalidRule:
		return http.StatusBadRequest
	case errors.CodeImputationGap, errors.CodeStageFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
