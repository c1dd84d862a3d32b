package main

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(testConfig(t), zap.NewNop())
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/display", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func upload(t *testing.T, s *Server, filename string, content []byte) string {
	t.Helper()
	rec := do(t, s, uploadRequest(t, filename, content))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	location := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/sheets/"))
	return strings.TrimPrefix(location, "/sheets/")
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, body io.Reader) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.NewDecoder(body).Decode(&env))
	return env
}

func decodeEvaluate(t *testing.T, rec *httptest.ResponseRecorder) EvaluateResponse {
	t.Helper()
	env := decodeEnvelope(t, rec.Body)
	require.True(t, env.Success, env.Error)
	var resp EvaluateResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	return resp
}

func TestUploadPage(t *testing.T) {
	rec := do(t, newTestServer(t), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/display"`)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
}

func TestUploadDisplayCalculate(t *testing.T) {
	s := newTestServer(t)
	id := upload(t, s, "scores.csv", []byte(scoresCSV))

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/sheets/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	page := rec.Body.String()
	assert.Contains(t, page, "scores.csv")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "Alice")
	assert.Contains(t, page, "/sheets/"+id+"/calculate")

	form := url.Values{"formula": {"=SUM(B2:B3)"}}
	req := httptest.NewRequest(http.MethodPost, "/sheets/"+id+"/calculate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = do(t, s, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<p class="result">30</p>`)

	form = url.Values{"formula": {"=FOO(B2:B3)"}}
	req = httptest.NewRequest(http.MethodPost, "/sheets/"+id+"/calculate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = do(t, s, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<p class="error">Formula not supported</p>`)
}

func TestUploadExcel(t *testing.T) {
	s := newTestServer(t)
	data := writeWorkbook(t,
		[]interface{}{"Name", "Score"},
		[]interface{}{"Alice", 4},
		[]interface{}{"Bob", 6},
	)
	id := upload(t, s, "scores.xlsx", data)

	wb, ok := s.store.Get(id)
	require.True(t, ok)
	assert.Equal(t, "5", s.eval.Evaluate("=AVERAGE(B2:B3)", wb.Table.Cells).String())
}

func TestUploadRejected(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		want     string
	}{
		{"file type", "notes.txt", scoresCSV, "Invalid file type"},
		{"empty", "empty.csv", "", ErrEmptyInput.Error()},
		{"mismatch", "bad.csv", "a,b\n1\n", ErrColumnMismatch.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := do(t, s, uploadRequest(t, tt.filename, []byte(tt.content)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
			assert.Equal(t, 0, s.store.Len())
		})
	}
}

func TestUploadTooManyRows(t *testing.T) {
	s := newTestServer(t)
	s.cfg.MaxRows = 1
	rec := do(t, s, uploadRequest(t, "scores.csv", []byte(scoresCSV)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Too many rows")
}

func TestUnknownSheet(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/sheets/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/sheets/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, decodeEnvelope(t, rec.Body).Success)
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func evaluateRequest(t *testing.T, path string, req EvaluateRequest) *http.Request {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestAPIEvaluate(t *testing.T) {
	s := newTestServer(t)
	csv := "n\n5\n10\n15\n"

	rec := do(t, s, evaluateRequest(t, "/api/evaluate", EvaluateRequest{CSV: csv, Formula: "=SUM(A2:A4)"}))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEvaluate(t, rec)
	require.NotNil(t, resp.Value)
	assert.Equal(t, 30.0, *resp.Value)
	assert.Equal(t, "30", resp.Display)
	assert.Empty(t, resp.Error)

	rec = do(t, s, evaluateRequest(t, "/api/evaluate", EvaluateRequest{CSV: csv, Formula: "=INVALID(A2:A4)"}))
	resp = decodeEvaluate(t, rec)
	assert.Nil(t, resp.Value)
	assert.Equal(t, "Formula not supported", resp.Error)

	rec = do(t, s, evaluateRequest(t, "/api/evaluate", EvaluateRequest{CSV: "n\nx\n", Formula: "=MAX(A2:A2)"}))
	resp = decodeEvaluate(t, rec)
	assert.Nil(t, resp.Value)
	assert.True(t, resp.NoData)
	assert.Equal(t, "No data", resp.Display)

	rec = do(t, s, evaluateRequest(t, "/api/evaluate", EvaluateRequest{CSV: "a;b\n1;2\n", Delimiter: ";", Formula: "=SUM(A2:B2)"}))
	resp = decodeEvaluate(t, rec)
	require.NotNil(t, resp.Value)
	assert.Equal(t, 3.0, *resp.Value)
}

func TestAPIEvaluateIngestionErrors(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, evaluateRequest(t, "/api/evaluate", EvaluateRequest{CSV: "", Formula: "=SUM(A1:A2)"}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeEnvelope(t, rec.Body)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, ErrEmptyInput.Error())

	rec = do(t, s, evaluateRequest(t, "/api/evaluate", EvaluateRequest{CSV: "a,b\n1\n", Formula: "=SUM(A1:A2)"}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, s, httptest.NewRequest(http.MethodPost, "/api/evaluate", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPISheet(t *testing.T) {
	s := newTestServer(t)
	id := upload(t, s, "scores.csv", []byte(scoresCSV))

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/sheets/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec.Body)
	require.True(t, env.Success)

	var sheet SheetResponse
	require.NoError(t, json.Unmarshal(env.Data, &sheet))
	assert.Equal(t, id, sheet.ID)
	assert.Equal(t, []string{"Name", "Score"}, sheet.Header)
	assert.Len(t, sheet.Rows, 2)
	assert.Equal(t, []string{"B"}, sheet.Numeric)

	rec = do(t, s, evaluateRequest(t, "/api/sheets/"+id+"/evaluate", EvaluateRequest{Formula: "=MIN(B2:B3)"}))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEvaluate(t, rec)
	require.NotNil(t, resp.Value)
	assert.Equal(t, 10.0, *resp.Value)
}

func TestAPIValidate(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader(scoresCSV)))
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec.Body)
	require.True(t, env.Success)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "File valid", data["status"])
	assert.Equal(t, 2.0, data["columns"])
	assert.Equal(t, 2.0, data["rows"])

	rec = do(t, s, httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader("a,b\n1\n")))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
