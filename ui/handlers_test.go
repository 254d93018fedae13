package ui

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"paxclean/adapters/memory"
	"paxclean/app"
	"paxclean/domain/core"
	"paxclean/domain/run"
	"paxclean/domain/table"
	"paxclean/internal/config"
	"paxclean/internal/errors"
	"paxclean/internal/logging"
	"paxclean/internal/pipeline"
	"paxclean/ports"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uploadCSV = "Survived,Pclass,Sex,Age,Siblings/Spouses Aboard,Parents/Children Aboard,Fare\n" +
	"0,3,male,22,1,0,7.25\n" +
	"1,1,female,38,1,0,71.2833\n" +
	"1,3,female,,0,0,7.925\n" +
	"0,3,male,35,0,0,8.05\n"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	schema := table.PassengerSchema()
	p, err := pipeline.New(schema, config.DefaultRules(), logging.Discard())
	require.NoError(t, err)
	runs := memory.NewRunRepository()
	cleaning := app.NewCleaningService(p, schema, runs, app.OutputOptions{}, logging.Discard())
	cfg := config.ServerConfig{Port: "8080", GinMode: gin.TestMode, MaxUploadMB: 1}
	return NewServer(cleaning, runs, cfg, logging.Discard())
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("dataset", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/runs", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(newTestServer(t), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateRun_ThenFetch(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, uploadRequest(t, "titanic.csv", uploadCSV))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		RunID  string `json:"run_id"`
		Report struct {
			Status string `json:"status"`
			Stage  string `json:"stage"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "succeeded", created.Report.Status)
	assert.Equal(t, "reported", created.Report.Stage)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/runs/"+created.RunID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.RunID)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/runs/"+created.RunID+"/report", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, rec.Body.String(), "Passenger data cleaning report")

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/runs/"+created.RunID+"/report?format=md", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "## Survival")

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/runs?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
}

func TestCreateRun_FailedRun(t *testing.T) {
	s := newTestServer(t)
	csv := "Survived,Pclass,Sex,Age,Siblings/Spouses Aboard,Parents/Children Aboard,Fare\n" +
		"0,3,male,,0,0,7.25\n" +
		"1,1,female,,0,0,71.28\n"

	rec := serve(s, uploadRequest(t, "gap.csv", csv))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"IMPUTATION_GAP"`)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	assert.Contains(t, rec.Body.String(), `"failed_stage":"imputed"`)
}

func TestCreateRun_BadInput(t *testing.T) {
	tests := []struct {
		name     string
		req      func(t *testing.T) *http.Request
		wantCode int
	}{
		{
			name: "no file",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/runs", nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "wrong extension",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "titanic.json", "{}")
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "pclass out of domain",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "bad.csv", strings.Replace(uploadCSV, "0,3,male,22", "0,5,male,22", 1))
			},
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name: "non numeric fare",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "bad.csv", strings.Replace(uploadCSV, "7.25", "cheap", 1))
			},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newTestServer(t), tt.req(t))
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestGetRun_Errors(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/runs/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/runs/"+core.NewRunID().String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/runs?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor("NOT_FOUND"))
	assert.Equal(t, http.StatusBadRequest, statusFor("SCHEMA_ERROR"))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor("IMPUTATION_GAP"))
	assert.Equal(t, http.StatusInternalServerError, statusFor("DATABASE_ERROR"))
}

// unavailableStore fails every save.
type unavailableStore struct {
	ports.RunRepository
}

func (unavailableStore) SaveRun(context.Context, *run.Report) error {
	return stderrors.New("connection refused")
}

func TestCreateRun_StoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	schema := table.PassengerSchema()
	p, err := pipeline.New(schema, config.DefaultRules(), logging.Discard())
	require.NoError(t, err)
	runs := unavailableStore{memory.NewRunRepository()}
	cleaning := app.NewCleaningService(p, schema, runs, app.OutputOptions{}, logging.Discard())
	s := NewServer(cleaning, runs, config.ServerConfig{Port: "8080", GinMode: gin.TestMode, MaxUploadMB: 1}, logging.Discard())

	rec := serve(s, uploadRequest(t, "titanic.csv", uploadCSV))
	require.Equal(t, http.StatusInternalServerError, rec.Code, rec.Body.String())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, errors.CodeDatabaseError, body["code"])
	assert.NotContains(t, body, "report")
}
