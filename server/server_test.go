package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RawatRahul14/ragpipe/config"
	"github.com/RawatRahul14/ragpipe/metadata"
	"github.com/RawatRahul14/ragpipe/pipeline"
	"github.com/RawatRahul14/ragpipe/rag"
)

// hashEmbedder produces deterministic vectors so indexing works offline.
type hashEmbedder struct{}

func (hashEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return embedText(text), nil
}

func (hashEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = embedText(text)
	}
	return vectors, nil
}

func embedText(text string) []float32 {
	vec := make([]float32, 8)
	for i, r := range text {
		vec[i%8] += float32(r) / 1000
	}
	return vec
}

type stubRunner struct {
	answer string
	err    error
	gotCfg pipeline.Config
}

func (r *stubRunner) Run(ctx context.Context, cfg pipeline.Config, question string) (*pipeline.State, error) {
	r.gotCfg = cfg
	if r.err != nil {
		return nil, r.err
	}
	return &pipeline.State{Question: question, Answer: r.answer}, nil
}

func newTestServer(t *testing.T, runner QueryRunner) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	return NewServer(cfg, hashEmbedder{}, runner, metadata.NopStore{})
}

func uploadRequest(t *testing.T, files map[string]string, sessionID string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	if sessionID != "" {
		require.NoError(t, writer.WriteField("session_id", sessionID))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadCreatesSessionAndIndex(t *testing.T) {
	s := newTestServer(t, &stubRunner{answer: "ok"})

	req := uploadRequest(t, map[string]string{
		"notes.txt": "First paragraph about alpha.\n\nSecond paragraph about beta.",
	}, "")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.True(t, strings.HasPrefix(resp.SessionID, "session_"))
	assert.Contains(t, resp.SavedPath, resp.SessionID)
	assert.NotEmpty(t, resp.Message)
	require.Len(t, resp.Files, 1)
	assert.Equal(t, "notes.txt", resp.Files[0].FileName)

	_, bound := s.sessions.Get(resp.SessionID)
	assert.True(t, bound)
}

func TestUploadReusesSessionID(t *testing.T) {
	s := newTestServer(t, &stubRunner{answer: "ok"})

	req := uploadRequest(t, map[string]string{"a.txt": "some content here"}, "session_fixed01")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "session_fixed01", resp.SessionID)
}

func TestUploadRejectsEmptyAndOversized(t *testing.T) {
	s := newTestServer(t, &stubRunner{answer: "ok"})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, nil, ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	many := make(map[string]string)
	for i := 0; i < config.Default().MaxUploadFiles+1; i++ {
		many[strings.Repeat("a", i+1)+".txt"] = "content"
	}
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, many, ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadWithNoIndexableContentFails(t *testing.T) {
	s := newTestServer(t, &stubRunner{answer: "ok"})

	// An unsupported extension yields no chunks, so there is nothing to index.
	req := uploadRequest(t, map[string]string{"image.png": "binarydata"}, "")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "failure", resp.Status)
}

func queryRequest(t *testing.T, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/query/", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestQueryAnswersBoundSession(t *testing.T) {
	runner := &stubRunner{answer: "grounded answer"}
	s := newTestServer(t, runner)
	s.sessions.Bind("session_abc", &staticRetriever{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, queryRequest(t, QueryRequest{SessionID: "session_abc", Question: "what?"}))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "grounded answer", resp.Answer)
	assert.Equal(t, "session_abc", runner.gotCfg.SessionID)
	assert.NotNil(t, runner.gotCfg.Retriever)
}

func TestQueryAcceptsWireFieldNames(t *testing.T) {
	runner := &stubRunner{answer: "grounded answer"}
	s := newTestServer(t, runner)
	s.sessions.Bind("session_abc", &staticRetriever{})

	// Clients send these exact field names; the handler must not expect
	// any other spelling for the question.
	body := `{"session_id": "session_abc", "user_query": "What is RAG?"}`
	req := httptest.NewRequest(http.MethodPost, "/query/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "grounded answer", resp.Answer)
}

func TestQueryUnboundSessionIsFailureNotError(t *testing.T) {
	s := newTestServer(t, &stubRunner{answer: "unused"})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, queryRequest(t, QueryRequest{SessionID: "session_unknown", Question: "what?"}))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "failure", resp.Status)
	assert.NotEmpty(t, resp.Error)
}

func TestQueryPipelineErrorReturnsFailure(t *testing.T) {
	s := newTestServer(t, &stubRunner{err: errors.New("model down")})
	s.sessions.Bind("session_abc", &staticRetriever{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, queryRequest(t, QueryRequest{SessionID: "session_abc", Question: "what?"}))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "failure", resp.Status)
}

func TestQueryValidation(t *testing.T) {
	s := newTestServer(t, &stubRunner{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, queryRequest(t, QueryRequest{SessionID: "", Question: ""}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/query/", strings.NewReader("not json"))
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/query/", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &stubRunner{})
	s.sessions.Bind("session_abc", &staticRetriever{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, float64(1), resp["sessions"])
}

type staticRetriever struct{}

func (staticRetriever) Retrieve(ctx context.Context, query string) ([]rag.Document, error) {
	return []rag.Document{{ID: "d1", Content: "passage"}}, nil
}
