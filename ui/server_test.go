package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goeda/internal"
	"goeda/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Server:   config.ServerConfig{Port: "0", GinMode: "test"},
		Analysis: config.DefaultAnalysisConfig(),
	}
	return NewServer(cfg, internal.NewLogger(internal.LogLevelError))
}

func writeFixtureCSV(t *testing.T) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("date,region,sales,price\n")
	for i := 0; i < 60; i++ {
		region := "north"
		base := 100
		if i%2 == 1 {
			region = "south"
			base = 140
		}
		sales := base + i%7
		fmt.Fprintf(&sb, "2024-01-%02d,%s,%d,%d\n", i%28+1, region, sales, sales/2+10)
	}
	path := filepath.Join(t.TempDir(), "retail.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, s *Server) string {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/api/sessions", map[string]string{"source": writeFixtureCSV(t)})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

func TestHealth(t *testing.T) {
	w := doJSON(t, newTestServer(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateSessionRejectsUnknownExtension(t *testing.T) {
	w := doJSON(t, newTestServer(t), http.MethodPost, "/api/sessions", map[string]string{"source": "data.parquet"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSessionMissingFile(t *testing.T) {
	w := doJSON(t, newTestServer(t), http.MethodPost, "/api/sessions", map[string]string{"source": "/no/such/file.csv"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUnknownSessionIs404(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodPost, "/api/sessions/nope/analyze/statistical", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyzeFlow(t *testing.T) {
	s := newTestServer(t)
	id := createSession(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/sessions/"+id+"/analyze/statistical", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "descriptive_stats")

	w = doJSON(t, s, http.MethodPost, "/api/sessions/"+id+"/analyze/clustering", map[string]int{"n_clusters": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "kmeans")

	w = doJSON(t, s, http.MethodPost, "/api/sessions/"+id+"/analyze/importance", map[string]string{"target": "sales"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "feature_importance")

	w = doJSON(t, s, http.MethodPost, "/api/sessions/"+id+"/analyze/timeseries",
		map[string]string{"date_column": "date", "value_column": "sales"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, s, http.MethodGet, "/api/sessions/"+id+"/results", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var results map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	assert.Len(t, results, 4)

	w = doJSON(t, s, http.MethodGet, "/api/sessions/"+id+"/insights", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "executive_summary")

	w = doJSON(t, s, http.MethodGet, "/api/sessions/"+id+"/insights/html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	w = doJSON(t, s, http.MethodPost, "/api/sessions/"+id+"/ask", map[string]string{"question": "how many rows?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rows")
}

func TestPreprocessReplacesDataset(t *testing.T) {
	s := newTestServer(t)
	id := createSession(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/sessions/"+id+"/preprocess",
		map[string]any{"encode": "onehot", "scale": "standard"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Applied []string `json:"applied"`
		Dataset struct {
			Columns []struct {
				Name string `json:"name"`
			} `json:"columns"`
		} `json:"dataset"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Applied)

	names := make([]string, 0, len(resp.Dataset.Columns))
	for _, c := range resp.Dataset.Columns {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "region_south", "one-hot encoding should replace the region column")
	assert.NotContains(t, names, "region")

	// Later analyses run against the cleaned dataset.
	w = doJSON(t, s, http.MethodGet, "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "region_south")
}

func TestPreprocessRejectsUnknownStrategy(t *testing.T) {
	s := newTestServer(t)
	id := createSession(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/sessions/"+id+"/preprocess",
		map[string]any{"impute": "magic"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalysisErrorIsStillOK(t *testing.T) {
	s := newTestServer(t)
	id := createSession(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/sessions/"+id+"/analyze/importance", map[string]string{"target": "nonexistent"})
	require.Equal(t, http.StatusOK, w.Code, "recoverable analysis errors are results, not HTTP failures")
	assert.Contains(t, w.Body.String(), "not found")
}
