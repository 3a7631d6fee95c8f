package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/gymbmi/internal/session"
)

func init() { gin.SetMode(gin.TestMode) }

func newServer(t *testing.T) (*Server, *session.Session) {
	t.Helper()
	sess := session.New()
	return New(sess, DefaultConfig(), nil), sess
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func upload(t *testing.T, s *Server, name, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/batch/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s, sess := newServer(t)
	w := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sess.ID, decode(t, w)["session"])
}

func TestComputeBMIIsStateless(t *testing.T) {
	s, sess := newServer(t)
	w := do(t, s, http.MethodPost, "/api/v1/bmi", `{"height_m":1.6,"weight_kg":120}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, 46.88, body["bmi"])
	assert.Equal(t, "Obesity III", body["category"])
	assert.Equal(t, 0, sess.History().Len())
}

func TestHistoryRoundTrip(t *testing.T) {
	s, _ := newServer(t)
	w := do(t, s, http.MethodPost, "/api/v1/history", `{"name":"Ana","sex":"f","race_or_ethnicity":"Mixed","age":30,"height_m":1.7,"weight_kg":70}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, decode(t, w)["id"])

	w = do(t, s, http.MethodGet, "/api/v1/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["count"])

	w = do(t, s, http.MethodGet, "/api/v1/history.csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "name,sex,race_or_ethnicity,age,height_m,weight_kg,bmi,category\nAna,Female,Mixed,30,1.7,70,24.22,Normal weight\n", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "history.csv")
}

func TestHistoryRejectsBadInput(t *testing.T) {
	s, sess := newServer(t)
	w := do(t, s, http.MethodPost, "/api/v1/history", `{"height_m":1.7}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/api/v1/history", `{"height_m":3.0,"weight_kg":70}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode(t, w)["error"], "height_m")
	assert.Equal(t, 0, sess.History().Len())
}

func TestGenerateThenDashboard(t *testing.T) {
	s, _ := newServer(t)
	w := do(t, s, http.MethodPost, "/api/v1/batch/generate", `{"count":12,"seed":7}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "synthetic", body["source"])
	assert.EqualValues(t, 12, body["rows"])

	w = do(t, s, http.MethodGet, "/api/v1/dashboard?bins=10", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = decode(t, w)
	assert.Equal(t, "synthetic", body["source"])
	assert.EqualValues(t, 12, body["total"])
	assert.LessOrEqual(t, len(body["histogram"].([]any)), 10)

	w = do(t, s, http.MethodGet, "/api/v1/batch.csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "name,sex,age,height_m,weight_kg,race_or_ethnicity,bmi,category\n"))

	w = do(t, s, http.MethodGet, "/api/v1/dashboard?format=md", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "[KPIS]")
}

func TestGenerateWithoutBody(t *testing.T) {
	s, _ := newServer(t)
	w := do(t, s, http.MethodPost, "/api/v1/batch/generate", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 30, decode(t, w)["rows"])
}

func TestDashboardFilters(t *testing.T) {
	s, _ := newServer(t)
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/api/v1/history", `{"sex":"Male","age":40,"height_m":1.8,"weight_kg":100}`).Code)
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/api/v1/history", `{"sex":"Female","age":25,"height_m":1.6,"weight_kg":50}`).Code)

	w := do(t, s, http.MethodGet, "/api/v1/dashboard?sex=female", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "history", body["source"])
	assert.EqualValues(t, 1, body["summary"].(map[string]any)["count"])

	w = do(t, s, http.MethodGet, "/api/v1/dashboard?age_min=50&age_max=20", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, "/api/v1/dashboard?bins=99", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, "/api/v1/dashboard?age_min=90", "")
	require.Equal(t, http.StatusOK, w.Code)
	sum := decode(t, w)["summary"].(map[string]any)
	assert.EqualValues(t, 0, sum["count"])
	assert.Nil(t, sum["mean_bmi"])
}

func TestUploadAndFailedUploadFallsBack(t *testing.T) {
	s, sess := newServer(t)
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/api/v1/history", `{"height_m":1.7,"weight_kg":70}`).Code)

	w := upload(t, s, "members.csv", "name,height_m,weight_kg\nBo,1.8,80\nCy,0,70\n")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "upload", body["source"])
	assert.EqualValues(t, 2, body["rows"])

	w = upload(t, s, "bad.csv", "name,weight_kg\nBo,80\n")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body = decode(t, w)
	assert.Contains(t, body["error"], "height_m")
	assert.Equal(t, "history", body["source"])
	assert.Nil(t, sess.Batch())

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/v1/batch.csv", "").Code)
}

func TestUploadRequiresFile(t *testing.T) {
	s, _ := newServer(t)
	w := do(t, s, http.MethodPost, "/api/v1/batch/upload", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCharts(t *testing.T) {
	s, _ := newServer(t)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/v1/charts/histogram", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/v1/charts/pie", "").Code)

	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/v1/batch/generate", `{"count":20}`).Code)
	w := do(t, s, http.MethodGet, "/api/v1/charts/scatter", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
}
