package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/floor_report/backend/internal/db"
	"github.com/floor_report/backend/internal/feeds"
	"github.com/floor_report/backend/internal/models"
	"github.com/floor_report/backend/internal/service"
)

const (
	assignmentCSV = "Task ID,Agency,Driver name,SPX tracking num,Status,Delivery Date,Vehicle Type\n" +
		"AT001,Carrier A,ana,BR1,Processing,2026-10-19,Van\n" +
		"AT003,Carrier A,bia,BR3,Completed,2026-10-19,Fiorino Baú\n"
	auditCSV = "AT/TO,AT/TO Validation Status,Total Final Orders Inside AT/TO,Total Initial Orders Inside AT/TO,Validation Start Time,Validation End Time,Validation Operator\n" +
		"AT001,Validated,10,12,2026-10-19 05:00:00,2026-10-19 05:10:00,[ops1] ana\n" +
		"AT002,NotValidated,,5,,,\n" +
		"AT003,Validated,7,7,2026-10-19 05:20:00,2026-10-19 05:30:00,[ops1] ana\n"
)

type upload struct {
	field, name, content string
}

func testWindows() []models.Window {
	return []models.Window{
		{Key: "MANHA", Name: "Manhã (Madrugada)", Start: 4 * 60, End: 9 * 60},
		{Key: "TARDE", Name: "Tarde", Start: 13 * 60, End: 18 * 60},
		{Key: "NOITE", Name: "Noite", Start: 19 * 60, End: 23 * 60},
	}
}

func newTestRouter(t *testing.T) (*gin.Engine, *db.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := db.NewMemoryStore()
	now := func() time.Time { return time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC) }
	processor := &service.ProcessingService{
		Store:         store,
		Logger:        zerolog.Nop(),
		Windows:       testWindows(),
		DefaultWindow: "MANHA",
		Location:      time.UTC,
		Workers:       2,
		Now:           now,
	}
	h := &Handler{
		Store:     store,
		Processor: processor,
		Windows:   service.NewWindowResolver(testWindows(), time.UTC),
		Validator: validator.New(),
		Logger:    zerolog.Nop(),
		Now:       now,
	}
	r := gin.New()
	r.POST("/api/reports", h.CreateReport)
	r.GET("/api/runs", h.RunsList)
	r.GET("/api/runs/latest", h.RunsLatest)
	r.GET("/api/runs/:id", h.RunGet)
	r.GET("/api/runs/:id/report.csv", h.RunReportCSV)
	r.GET("/api/windows", h.WindowsList)
	r.GET("/api/debug/window", h.DebugWindow)
	r.GET("/healthz", h.Healthz)
	return r, store
}

func multipartRequest(t *testing.T, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(f.content)); err != nil {
			t.Fatalf("write content: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req, _ := http.NewRequest(http.MethodPost, "/api/reports", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, w.Body.String())
	}
	return body["error"]
}

func TestCreateReportRoundTrip(t *testing.T) {
	r, store := newTestRouter(t)

	req := multipartRequest(t, map[string]string{"window": "manha", "notes": "sem ocorrências"},
		upload{"assignment", "exp1.csv", assignmentCSV},
		upload{"assignment", "exp2.csv", "Task ID,Agency,Driver name,SPX tracking num,Status\nAT009,Carrier B,caio,BR9,Processing\n"},
		upload{"audit", "conf.csv", auditCSV},
	)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp ReportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RunID == "" {
		t.Fatalf("expected a run id")
	}
	rep := resp.Report
	if rep.Summary.ExpeditedRoutes != 1 || rep.Summary.FloorRoutes != 2 || rep.Window != "MANHA" {
		t.Fatalf("unexpected report: %+v", rep.Summary)
	}
	if len(rep.NotInAudit) != 1 || rep.NotInAudit[0] != "AT009" {
		t.Fatalf("unexpected not-in-audit list: %v", rep.NotInAudit)
	}
	if rep.Vehicles[0].Category != "FIORINO" {
		t.Fatalf("unexpected vehicles: %+v", rep.Vehicles)
	}

	run, err := store.GetRun(req.Context(), resp.RunID)
	if err != nil || run.Status != models.RunSuccess || len(run.Inputs) != 3 {
		t.Fatalf("unexpected stored run: %+v %v", run, err)
	}

	w = httptest.NewRecorder()
	get, _ := http.NewRequest(http.MethodGet, "/api/runs/"+resp.RunID+"/report.csv", nil)
	r.ServeHTTP(w, get)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for csv, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "resumo_expedicao_20261019_MANHA.csv") {
		t.Fatalf("unexpected disposition: %q", w.Header().Get("Content-Disposition"))
	}
	if !strings.HasPrefix(w.Body.String(), "Métrica,Valor\n") || !strings.Contains(w.Body.String(), "sem ocorrências") {
		t.Fatalf("unexpected csv body: %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	latest, _ := http.NewRequest(http.MethodGet, "/api/runs/latest", nil)
	r.ServeHTTP(w, latest)
	var runResp struct {
		Run    models.Run    `json:"run"`
		Report models.Report `json:"report"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &runResp); err != nil {
		t.Fatalf("decode latest: %v", err)
	}
	if runResp.Run.ID != resp.RunID || runResp.Report.Summary.ProgrammedRoutes != 3 {
		t.Fatalf("unexpected latest run: %+v", runResp)
	}
}

func TestCreateReportValidationError(t *testing.T) {
	r, store := newTestRouter(t)
	badAudit := "AT/TO,AT/TO Validation Status,Total Final Orders Inside AT/TO,Total Initial Orders Inside AT/TO,Validation Start Time,Validation End Time\n" +
		"AT001,Pending,1,1,,\n"
	req := multipartRequest(t, nil,
		upload{"assignment", "exp.csv", assignmentCSV},
		upload{"audit", "conf.csv", badAudit},
	)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	e := decodeError(t, w)
	if e["code"] != "FILE_VALIDATION_ERROR" {
		t.Fatalf("unexpected error code: %v", e)
	}
	if !strings.Contains(e["message"].(string), feeds.ErrNoValidatedRoutes.Error()) {
		t.Fatalf("unexpected message: %v", e["message"])
	}
	runs, _ := store.ListRuns(req.Context(), 10)
	if len(runs) != 1 || runs[0].Status != models.RunFailed {
		t.Fatalf("expected one failed run, got %+v", runs)
	}
}

func TestCreateReportRequestErrors(t *testing.T) {
	r, _ := newTestRouter(t)
	cases := []struct {
		name   string
		fields map[string]string
		files  []upload
		code   string
	}{
		{"missing assignment", nil, []upload{{"audit", "conf.csv", auditCSV}}, "INVALID_REQUEST"},
		{"missing audit", nil, []upload{{"assignment", "exp.csv", assignmentCSV}}, "INVALID_REQUEST"},
		{"wrong extension", nil, []upload{{"assignment", "exp.xlsx", assignmentCSV}, {"audit", "conf.csv", auditCSV}}, "INVALID_REQUEST"},
		{"notes too long", map[string]string{"notes": strings.Repeat("x", 4001)}, []upload{{"assignment", "exp.csv", assignmentCSV}, {"audit", "conf.csv", auditCSV}}, "VALIDATION_ERROR"},
		{"unknown window", map[string]string{"window": "MADRUGADA"}, []upload{{"assignment", "exp.csv", assignmentCSV}, {"audit", "conf.csv", auditCSV}}, "VALIDATION_ERROR"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, multipartRequest(t, c.fields, c.files...))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if e := decodeError(t, w); e["code"] != c.code {
				t.Fatalf("expected %s, got %v", c.code, e)
			}
		})
	}
}

func TestRunNotFound(t *testing.T) {
	r, _ := newTestRouter(t)
	for _, path := range []string{"/api/runs/nope", "/api/runs/latest", "/api/runs/nope/report.csv"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, w.Code)
		}
	}
}

func TestWindowsList(t *testing.T) {
	r, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/windows", nil)
	r.ServeHTTP(w, req)
	var resp WindowsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 3 || resp.Items[1].Display != "Tarde - 13:00 às 18:00" || resp.Current != "MANHA" {
		t.Fatalf("unexpected windows: %+v", resp)
	}
}

func TestDebugWindow(t *testing.T) {
	r, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/debug/window?delivery_date=2026-10-18&window=tarde", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp WindowDebug
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Window != "MANHA" || !resp.CrossWindow || resp.Current != "TARDE" {
		t.Fatalf("unexpected debug response: %+v", resp)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/debug/window?delivery_date=2026-10-18", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without window, got %d", w.Code)
	}
}
