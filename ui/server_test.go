package ui

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

	"github.com/shanky2010/batch-visual-insights/internal/config"
	"github.com/shanky2010/batch-visual-insights/internal/dataset"
	"github.com/shanky2010/batch-visual-insights/internal/testkit"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.GinMode = gin.TestMode
	service := dataset.NewService(dataset.NewMemoryRepository(), nil, 0, 0)
	return NewServer(service, cfg)
}

func uploadCSV(t *testing.T, s *Server, name, content string) string {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var f struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &f))
	require.NotEmpty(t, f.ID)
	return f.ID
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func postJSON(s *Server, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w := get(s, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUploadAndListFiles(t *testing.T) {
	s := newTestServer(t)
	id := uploadCSV(t, s, "grades.csv", "name,score\nalice,90\nbob,80\n")

	w := get(s, "/api/files")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id)
}

func TestNumericColumnsEndpoint(t *testing.T) {
	s := newTestServer(t)
	id := uploadCSV(t, s, "grades.csv", "name,score\nalice,90\nbob,80\n")

	w := get(s, "/api/files/"+id+"/columns")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Columns []struct {
			Index int    `json:"index"`
			Name  string `json:"name"`
		} `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Columns, 1)
	assert.Equal(t, "score", resp.Columns[0].Name)
	assert.Equal(t, 1, resp.Columns[0].Index)
}

func TestColumnStatsEndpoint(t *testing.T) {
	s := newTestServer(t)
	id := uploadCSV(t, s, "grades.csv", "score\n1\n2\n3\n4\n5\n")

	w := get(s, "/api/files/"+id+"/stats?column=0")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 3, resp["mean"])
	assert.EqualValues(t, 5, resp["count"])
}

func TestColumnStatsNonFiniteFormattedAsNA(t *testing.T) {
	s := newTestServer(t)
	// Constant column: skewness and kurtosis are undefined.
	id := uploadCSV(t, s, "const.csv", "v\n5\n5\n5\n")

	w := get(s, "/api/files/"+id+"/stats?column=0")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "N/A", resp["skewness"])
	assert.Equal(t, "N/A", resp["kurtosis"])
}

func TestColumnStatsMissingParameter(t *testing.T) {
	s := newTestServer(t)
	id := uploadCSV(t, s, "grades.csv", "score\n1\n")

	w := get(s, "/api/files/"+id+"/stats")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetFileNotFound(t *testing.T) {
	s := newTestServer(t)
	w := get(s, "/api/files/no-such-id")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOutliersEndpoint(t *testing.T) {
	s := newTestServer(t)
	id := uploadCSV(t, s, "obs.csv", "v\n11\n12\n12\n13\n12\n200\n")

	w := get(s, "/api/files/"+id+"/outliers?column=0&method=iqr")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "200")
}

func TestImputeEndpoint(t *testing.T) {
	s := newTestServer(t)
	id := uploadCSV(t, s, "xy.csv", "x,y\n1,\n2,5\n")

	w := postJSON(s, "/api/files/"+id+"/impute", `{"method":"mean"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Version  int `json:"version"`
		RowCount int `json:"row_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Version)
	assert.Equal(t, 2, resp.RowCount)
}

func TestImputeUnknownMethodIsBadRequest(t *testing.T) {
	s := newTestServer(t)
	id := uploadCSV(t, s, "xy.csv", "x,y\n1,2\n")

	w := postJSON(s, "/api/files/"+id+"/impute", `{"method":"drop"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBarChartEndpoint(t *testing.T) {
	s := newTestServer(t)
	id := uploadCSV(t, s, "sales.csv", "city,amount\npune,40\ndelhi,100\n")

	w := get(s, "/api/files/"+id+"/charts/bar?label=0&value=1")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Labels   []string `json:"labels"`
		Datasets []struct {
			Data []float64 `json:"data"`
		} `json:"datasets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"delhi", "pune"}, resp.Labels)
	assert.Equal(t, []float64{100, 40}, resp.Datasets[0].Data)
}

func TestScatterRequiresAxes(t *testing.T) {
	s := newTestServer(t)
	id := uploadCSV(t, s, "xy.csv", "x,y\n1,2\n")

	w := get(s, "/api/files/"+id+"/charts/scatter")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompareEndpoint(t *testing.T) {
	s := newTestServer(t)
	first := uploadCSV(t, s, "first.csv", "Score\n40\n50\n60\n")
	second := uploadCSV(t, s, "second.csv", "Score\n50\n60\n70\n")

	body := `{"selections":[{"file_id":"` + first + `","columns":[0]},{"file_id":"` + second + `","columns":[0]}]}`
	w := postJSON(s, "/api/compare", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Comparisons []struct {
			ColumnName  string `json:"column_name"`
			Differences struct {
				Mean float64 `json:"mean"`
			} `json:"differences"`
		} `json:"comparisons"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Comparisons, 1)
	assert.Equal(t, "Score", resp.Comparisons[0].ColumnName)
	assert.InDelta(t, -10, resp.Comparisons[0].Differences.Mean, 1e-9)
}

func TestExportEndpointDefaultsToNumericColumns(t *testing.T) {
	s := newTestServer(t)
	id := uploadCSV(t, s, "grades.csv", "name,score\nalice,90\nbob,80\n")

	w := get(s, "/api/files/"+id+"/export")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))

	lines := strings.Split(w.Body.String(), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Column Name,File Name,Mean,Median,Min,Max,Standard Deviation,Variance,Count", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "score,grades.csv,85,"))
}

func TestReportEndpoint(t *testing.T) {
	s := newTestServer(t)
	gen := testkit.NewGenerator(42)
	id := uploadCSV(t, s, "sales.csv", gen.CSV(gen.SalesMatrix(40)))

	w := get(s, "/api/files/"+id+"/report?format=md")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# Insights: sales.csv")
	assert.Contains(t, w.Body.String(), "| revenue |")
}

func TestDownloadWithoutBackingStorageIsNotFound(t *testing.T) {
	s := newTestServer(t)
	id := uploadCSV(t, s, "grades.csv", "score\n1\n")

	w := get(s, "/api/files/"+id+"/download")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteFileEndpoint(t *testing.T) {
	s := newTestServer(t)
	id := uploadCSV(t, s, "grades.csv", "score\n1\n")

	req := httptest.NewRequest(http.MethodDelete, "/api/files/"+id, nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, http.StatusNotFound, get(s, "/api/files/"+id).Code)
}
