package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/floor_report/backend/internal/db"
	"github.com/floor_report/backend/internal/feeds"
	"github.com/floor_report/backend/internal/models"
	"github.com/floor_report/backend/internal/report"
	"github.com/floor_report/backend/internal/service"
)

type Handler struct {
	Store     service.RunStore
	Processor *service.ProcessingService
	Windows   service.WindowResolver
	Validator *validator.Validate
	Logger    zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type ReportForm struct {
	Window string `form:"window" validate:"omitempty,max=32"`
	Notes  string `form:"notes" validate:"max=4000"`
}

type ReportResponse struct {
	RunID  string        `json:"run_id"`
	Report models.Report `json:"report"`
}

type RunResponse struct {
	Run    models.Run      `json:"run"`
	Report json.RawMessage `json:"report,omitempty"`
}

type WindowInfo struct {
	models.Window
	Display string `json:"display"`
}

type WindowsResponse struct {
	Items   []WindowInfo `json:"items"`
	Current string       `json:"current,omitempty"`
}

type WindowDebug struct {
	DeliveryDate string `json:"delivery_date"`
	Current      string `json:"current"`
	Window       string `json:"window"`
	CrossWindow  bool   `json:"cross_window"`
	Error        string `json:"error,omitempty"`
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Generate expedition report
// @Description Upload one or more assignment exports and the validation export
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Param assignment formData file true "assignment export (repeatable)"
// @Param audit formData file true "validation export"
// @Param window formData string false "window key (MANHA, TARDE, NOITE)"
// @Param notes formData string false "closing notes"
// @Success 200 {object} ReportResponse
// @Failure 400 {object} map[string]any
// @Router /api/reports [post]
func (h *Handler) CreateReport(c *gin.Context) {
	var form ReportForm
	if err := c.ShouldBind(&form); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid form", err.Error())
		return
	}
	if err := h.Validator.Struct(form); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	mf, err := c.MultipartForm()
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "multipart form required", err.Error())
		return
	}
	assignments := mf.File["assignment"]
	if len(assignments) == 0 {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "assignment file required", nil)
		return
	}
	audits := mf.File["audit"]
	if len(audits) != 1 {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "exactly one audit file required", nil)
		return
	}
	for _, fh := range append(append([]*multipart.FileHeader(nil), assignments...), audits...) {
		if !validateExt(fh.Filename) {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "all files must be .csv", fh.Filename)
			return
		}
	}

	req := service.ProcessRequest{
		Audit:  feeds.MultipartSource(audits[0]),
		Window: strings.ToUpper(strings.TrimSpace(form.Window)),
		Notes:  form.Notes,
	}
	for _, fh := range assignments {
		req.Assignments = append(req.Assignments, feeds.MultipartSource(fh))
	}

	run, rep, err := h.Processor.Process(c.Request.Context(), req)
	if err != nil {
		writeProcessError(c, err)
		return
	}
	c.JSON(http.StatusOK, ReportResponse{RunID: run.ID, Report: rep})
}

// @Summary List runs
// @Tags runs
// @Produce json
// @Param limit query int false "max items (default 20)"
// @Success 200 {object} map[string]any
// @Router /api/runs [get]
func (h *Handler) RunsList(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	items, err := h.Store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list runs", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit})
}

// @Summary Latest run
// @Tags runs
// @Produce json
// @Success 200 {object} RunResponse
// @Router /api/runs/latest [get]
func (h *Handler) RunsLatest(c *gin.Context) {
	run, err := h.Store.GetLatestRun(c.Request.Context())
	if err != nil {
		writeStoreError(c, err, "No runs found")
		return
	}
	c.JSON(http.StatusOK, runResponse(run))
}

// @Summary Run details
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} RunResponse
// @Router /api/runs/{id} [get]
func (h *Handler) RunGet(c *gin.Context) {
	run, err := h.Store.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeStoreError(c, err, "Run not found")
		return
	}
	c.JSON(http.StatusOK, runResponse(run))
}

// @Summary Run report as CSV
// @Tags runs
// @Produce text/csv
// @Param id path string true "Run ID"
// @Success 200 {string} string
// @Router /api/runs/{id}/report.csv [get]
func (h *Handler) RunReportCSV(c *gin.Context) {
	run, err := h.Store.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeStoreError(c, err, "Run not found")
		return
	}
	if run.Status != models.RunSuccess || len(run.Report) == 0 {
		writeError(c, http.StatusConflict, "INVALID_STATE", "Run has no report", run.Status)
		return
	}
	var rep models.Report
	if err := json.Unmarshal(run.Report, &rep); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Stored report is corrupt", err.Error())
		return
	}
	name := report.FileName(rep.Window, rep.GeneratedAt)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Status(http.StatusOK)
	if err := report.WriteCSV(c.Writer, rep); err != nil {
		h.Logger.Error().Err(err).Str("run_id", run.ID).Msg("failed to write csv")
	}
}

// @Summary Configured windows
// @Tags windows
// @Produce json
// @Success 200 {object} WindowsResponse
// @Router /api/windows [get]
func (h *Handler) WindowsList(c *gin.Context) {
	resp := WindowsResponse{Items: []WindowInfo{}}
	for _, w := range h.Windows.Windows {
		resp.Items = append(resp.Items, WindowInfo{Window: w, Display: service.WindowDisplay(w)})
	}
	if w, ok := h.Windows.Current(h.now()); ok {
		resp.Current = w.Key
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Debug window resolution
// @Tags debug
// @Produce json
// @Param delivery_date query string true "delivery date (YYYY-MM-DD)"
// @Param window query string true "current window key"
// @Success 200 {object} WindowDebug
// @Router /api/debug/window [get]
func (h *Handler) DebugWindow(c *gin.Context) {
	date := strings.TrimSpace(c.Query("delivery_date"))
	current := strings.ToUpper(strings.TrimSpace(c.Query("window")))
	if date == "" || current == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "delivery_date and window are required", nil)
		return
	}
	if _, err := h.Windows.Lookup(current); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown window", err.Error())
		return
	}
	key, cross, err := h.Windows.Resolve(date, current, h.now())
	resp := WindowDebug{DeliveryDate: date, Current: current, Window: key, CrossWindow: cross}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func runResponse(run models.Run) RunResponse {
	resp := RunResponse{Run: run}
	if len(run.Report) > 0 {
		resp.Report = json.RawMessage(run.Report)
	}
	return resp
}

func writeProcessError(c *gin.Context, err error) {
	var verr *feeds.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(c, http.StatusBadRequest, "FILE_VALIDATION_ERROR", verr.Error(), gin.H{
			"file":   verr.File,
			"column": verr.Column,
			"line":   verr.Line,
		})
	case errors.Is(err, service.ErrUnknownWindow):
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown window", err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "PROCESSING_ERROR", "Processing failed", err.Error())
	}
}

func writeStoreError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, db.ErrNotFound) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", notFound, nil)
		return
	}
	writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load run", err.Error())
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

func validateExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".csv"
}
