package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"daxforge/adapters/llm/heuristic"
	"daxforge/internal/api"
	"daxforge/internal/config"
	"daxforge/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer() *Server {
	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0", GinMode: "test"},
		Upload: config.UploadConfig{MaxFileSizeMB: 10},
	}
	suggester := heuristic.NewSuggester()
	hub := api.NewSSEHub()
	store := session.NewStore()
	pipeline := session.NewPipeline(store, suggester, hub)
	return NewServer(cfg, store, pipeline, suggester, hub)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	parsed := make(map[string]json.RawMessage)
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed), "body: %s", w.Body.String())
	}
	return w, parsed
}

func uploadCSV(t *testing.T, s *Server, sessionID, filename, content string) string {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+sessionID+"/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code, "body: %s", w.Body.String())

	var resp struct {
		Files []struct {
			FileID string `json:"file_id"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Files, 1)
	return resp.Files[0].FileID
}

// waitComplete polls the file list until the pipeline finishes
func waitComplete(t *testing.T, s *Server, sessionID, fileID string) {
	t.Helper()
	require.Eventually(t, func() bool {
		w, _ := doJSON(t, s, http.MethodGet, "/api/sessions/"+sessionID+"/files", nil)
		if w.Code != http.StatusOK {
			return false
		}
		var resp struct {
			Files []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"files"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			return false
		}
		for _, f := range resp.Files {
			if f.ID == fileID {
				return f.Status == "complete" || f.Status == "error"
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)
}

func TestCreateSession(t *testing.T) {
	s := testServer()

	w, body := doJSON(t, s, http.MethodPost, "/api/sessions", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, string(body["session_id"]))
}

func TestUploadProfileAndIssuesFlow(t *testing.T) {
	s := testServer()
	sessionID := "sess-upload-flow"

	fileID := uploadCSV(t, s, sessionID, "sales.csv", "name,amount\nAlice,10\nBob,\nCara,abc\n")
	waitComplete(t, s, sessionID, fileID)

	w, _ := doJSON(t, s, http.MethodGet,
		fmt.Sprintf("/api/sessions/%s/files/%s/profile", sessionID, fileID), nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var profileResp struct {
		Profile struct {
			FileName string `json:"file_name"`
			RowCount int    `json:"row_count"`
			Version  int    `json:"version"`
			Columns  []struct {
				Name          string `json:"name"`
				DataType      string `json:"data_type"`
				MissingValues int    `json:"missing_values"`
			} `json:"columns"`
		} `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profileResp))
	assert.Equal(t, "sales.csv", profileResp.Profile.FileName)
	assert.Equal(t, 3, profileResp.Profile.RowCount)
	assert.Equal(t, 1, profileResp.Profile.Version)
	require.Len(t, profileResp.Profile.Columns, 2)
	assert.Equal(t, "mixed", profileResp.Profile.Columns[1].DataType)
	assert.Equal(t, 1, profileResp.Profile.Columns[1].MissingValues)

	w, _ = doJSON(t, s, http.MethodGet,
		fmt.Sprintf("/api/sessions/%s/files/%s/issues", sessionID, fileID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var issuesResp struct {
		Issues []struct {
			ColumnName string `json:"column_name"`
			Kind       string `json:"kind"`
		} `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issuesResp))
	require.Len(t, issuesResp.Issues, 2)
	assert.Equal(t, "missing_values", issuesResp.Issues[0].Kind)
	assert.Equal(t, "mixed_type", issuesResp.Issues[1].Kind)
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	s := testServer()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", "report.pdf")
	require.NoError(t, err)
	part.Write([]byte("%PDF-1.4"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/sess-pdf/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "report.pdf")
}

func TestSelectionsAndApplyFlow(t *testing.T) {
	s := testServer()
	sessionID := "sess-cleaning"

	fileID := uploadCSV(t, s, sessionID, "data.csv", "name,amount\nA,10\nB,\nC,20\n")
	waitComplete(t, s, sessionID, fileID)

	base := fmt.Sprintf("/api/sessions/%s/files/%s", sessionID, fileID)

	// Invalid action kind is rejected before staging
	w, _ := doJSON(t, s, http.MethodPut, base+"/selections/amount",
		map[string]string{"action_kind": "shred"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// fill_custom without a value is rejected
	w, _ = doJSON(t, s, http.MethodPut, base+"/selections/amount",
		map[string]string{"action_kind": "fill_custom"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, s, http.MethodPut, base+"/selections/amount",
		map[string]string{"action_kind": "remove_rows"})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	w, _ = doJSON(t, s, http.MethodGet, base+"/selections", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "remove_rows")

	w, _ = doJSON(t, s, http.MethodPost, base+"/apply", nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var applyResp struct {
		Profile struct {
			RowCount int `json:"row_count"`
			Version  int `json:"version"`
		} `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &applyResp))
	assert.Equal(t, 2, applyResp.Profile.RowCount)
	assert.Equal(t, 2, applyResp.Profile.Version)

	// The apply consumed the staged selections
	w, _ = doJSON(t, s, http.MethodGet, base+"/selections", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "remove_rows")
}

func TestCleaningSuggestionsEndpoint(t *testing.T) {
	s := testServer()
	sessionID := "sess-suggest"

	fileID := uploadCSV(t, s, sessionID, "data.csv", "amount\n10\n\n20\n")
	waitComplete(t, s, sessionID, fileID)

	base := fmt.Sprintf("/api/sessions/%s/files/%s", sessionID, fileID)

	w, _ := doJSON(t, s, http.MethodGet, base+"/suggestions/amount/missing_values", nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	assert.Contains(t, w.Body.String(), "fill_mean")

	w, _ = doJSON(t, s, http.MethodGet, base+"/suggestions/amount/exotic", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, s, http.MethodGet, base+"/suggestions/ghost/missing_values", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRelationshipsEndpoint(t *testing.T) {
	s := testServer()
	sessionID := "sess-rel"

	ordersID := uploadCSV(t, s, sessionID, "orders.csv", "order_id,customer_id\n1,10\n2,11\n")
	customersID := uploadCSV(t, s, sessionID, "customers.csv", "customer_id,name\n10,Ann\n11,Ben\n")
	waitComplete(t, s, sessionID, ordersID)
	waitComplete(t, s, sessionID, customersID)

	w, _ := doJSON(t, s, http.MethodGet, "/api/sessions/"+sessionID+"/relationships", nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var resp struct {
		Relationships []struct {
			FromColumn string `json:"from_column"`
			ToColumn   string `json:"to_column"`
		} `json:"relationships"`
		FileCount int `json:"file_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.FileCount)
	require.NotEmpty(t, resp.Relationships)
	assert.Equal(t, "customer_id", resp.Relationships[0].FromColumn)
}

func TestGenerateDaxEndpoint(t *testing.T) {
	s := testServer()

	w, body := doJSON(t, s, http.MethodPost, "/api/dax",
		map[string]string{"prompt": "average revenue"})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var formula string
	require.NoError(t, json.Unmarshal(body["dax_formula"], &formula))
	assert.Contains(t, formula, "AVERAGE")

	var html string
	require.NoError(t, json.Unmarshal(body["explanation_html"], &html))
	assert.NotEmpty(t, html)

	// An empty prompt is rejected
	w, _ = doJSON(t, s, http.MethodPost, "/api/dax", map[string]string{"prompt": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileNotFoundMapsTo404(t *testing.T) {
	s := testServer()
	sessionID := "sess-404"

	// Session exists, file does not
	uploadCSV(t, s, sessionID, "a.csv", "x\n1\n")
	w, _ := doJSON(t, s, http.MethodGet,
		"/api/sessions/"+sessionID+"/files/no-such-file/profile", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Session does not exist at all
	w, _ = doJSON(t, s, http.MethodGet,
		"/api/sessions/ghost-session/files/no-such-file/profile", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRenderMarkdown(t *testing.T) {
	html := renderMarkdown("The **Amount** column")
	assert.Contains(t, html, "<strong>Amount</strong>")

	// Raw HTML in collaborator output is not passed through
	html = renderMarkdown(`<script>alert(1)</script>`)
	assert.NotContains(t, strings.ToLower(html), "<script>")
}
