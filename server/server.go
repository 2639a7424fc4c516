// Package server exposes the upload and query HTTP API. Uploads extract and
// index documents into a per-session retriever; queries run the answering
// pipeline against that retriever.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RawatRahul14/ragpipe/config"
	"github.com/RawatRahul14/ragpipe/extract"
	"github.com/RawatRahul14/ragpipe/log"
	"github.com/RawatRahul14/ragpipe/metadata"
	"github.com/RawatRahul14/ragpipe/pipeline"
	"github.com/RawatRahul14/ragpipe/rag"
)

// QueryRunner executes one query invocation. Satisfied by pipeline.Pipeline.
type QueryRunner interface {
	Run(ctx context.Context, cfg pipeline.Config, question string) (*pipeline.State, error)
}

// Server is the HTTP front end of the service.
type Server struct {
	cfg      config.Config
	embedder rag.Embedder
	runner   QueryRunner
	sessions *SessionRegistry
	metadata metadata.Store
	mux      *http.ServeMux
}

// NewServer wires the HTTP routes.
func NewServer(cfg config.Config, embedder rag.Embedder, runner QueryRunner, meta metadata.Store) *Server {
	s := &Server{
		cfg:      cfg,
		embedder: embedder,
		runner:   runner,
		sessions: NewSessionRegistry(),
		metadata: meta,
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("/upload/", s.handleUpload)
	s.mux.HandleFunc("/query/", s.handleQuery)
	s.mux.HandleFunc("/health", s.handleHealth)
	return s
}

// Handler returns the route multiplexer.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start blocks serving HTTP on the configured address.
func (s *Server) Start() error {
	addr := s.cfg.Addr()
	log.Info("serving on %s", addr)
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

// handleUpload accepts multipart files, extracts and indexes them, and binds
// the resulting retriever to a new or existing session.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		sendJSON(w, http.StatusBadRequest, UploadResponse{Status: "failure", Error: "invalid multipart form"})
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		sendJSON(w, http.StatusBadRequest, UploadResponse{Status: "failure", Error: "no files uploaded"})
		return
	}
	if len(files) > s.cfg.MaxUploadFiles {
		sendJSON(w, http.StatusBadRequest, UploadResponse{
			Status: "failure",
			Error:  fmt.Sprintf("too many files: maximum is %d", s.cfg.MaxUploadFiles),
		})
		return
	}

	sessionID := strings.TrimSpace(r.FormValue("session_id"))
	if sessionID == "" {
		sessionID = newSessionID()
	}

	folder := filepath.Join(s.cfg.DataDir, sessionID)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		log.Error("create session folder: %v", err)
		sendJSON(w, http.StatusInternalServerError, UploadResponse{Status: "failure", Error: "failed to store files"})
		return
	}

	for _, header := range files {
		if err := saveUploadedFile(header, filepath.Join(folder, filepath.Base(header.Filename))); err != nil {
			log.Error("save %s: %v", header.Filename, err)
			sendJSON(w, http.StatusInternalServerError, UploadResponse{Status: "failure", Error: "failed to store files"})
			return
		}
	}

	ctx := r.Context()
	result, err := extract.FromFolder(ctx, folder)
	if err != nil {
		log.Error("extract session %s: %v", sessionID, err)
		sendJSON(w, http.StatusInternalServerError, UploadResponse{Status: "failure", Error: "extraction failed"})
		return
	}

	retriever, err := s.buildIndex(ctx, result)
	if err != nil {
		log.Error("index session %s: %v", sessionID, err)
		sendJSON(w, http.StatusBadRequest, UploadResponse{
			Status: "failure",
			Error:  "no indexable content found in the uploaded files",
		})
		return
	}
	s.sessions.Bind(sessionID, retriever)

	record := &metadata.Record{
		SessionID:     sessionID,
		UploadedFiles: result.Files,
		UploadedAt:    time.Now().UTC(),
	}
	if err := s.metadata.SaveUpload(ctx, record); err != nil {
		// Metadata is best effort; the session is already usable.
		log.Warn("save metadata for session %s: %v", sessionID, err)
	}

	log.Info("session %s: indexed %d chunks and %d tables from %d files",
		sessionID, len(result.Chunks), len(result.Tables), len(result.Files))
	sendJSON(w, http.StatusOK, UploadResponse{
		Status:    "success",
		SessionID: sessionID,
		SavedPath: folder,
		Files:     result.Files,
		Message:   fmt.Sprintf("uploaded %d file(s)", len(files)),
	})
}

func (s *Server) buildIndex(ctx context.Context, result *extract.Result) (rag.Retriever, error) {
	passages := make([]rag.Document, 0, len(result.Chunks))
	for _, chunk := range result.Chunks {
		passages = append(passages, rag.Document{
			Content:  chunk.Content,
			Metadata: chunk.Metadata,
		})
	}
	tables := make([]rag.Table, 0, len(result.Tables))
	for _, table := range result.Tables {
		tables = append(tables, rag.Table(table))
	}
	return rag.BuildSessionIndex(ctx, s.embedder, passages, tables, s.cfg.TopK)
}

// handleQuery runs the answering pipeline for a session. A session with no
// bound retriever is a failure response, not an error.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSON(w, http.StatusBadRequest, QueryResponse{Status: "failure", Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.Question) == "" {
		sendJSON(w, http.StatusBadRequest, QueryResponse{Status: "failure", Error: "session_id and user_query are required"})
		return
	}

	retriever, ok := s.sessions.Get(req.SessionID)
	if !ok {
		sendJSON(w, http.StatusOK, QueryResponse{
			Status:    "failure",
			SessionID: req.SessionID,
			Error:     "no documents uploaded for this session",
		})
		return
	}

	state, err := s.runner.Run(r.Context(), pipeline.Config{
		SessionID: req.SessionID,
		Retriever: retriever,
	}, req.Question)
	if err != nil {
		log.Error("query for session %s: %v", req.SessionID, err)
		sendJSON(w, http.StatusInternalServerError, QueryResponse{
			Status:    "failure",
			SessionID: req.SessionID,
			Error:     "failed to answer the question",
		})
		return
	}

	sendJSON(w, http.StatusOK, QueryResponse{
		Status:    "success",
		SessionID: req.SessionID,
		Answer:    state.Answer,
	})
}

func saveUploadedFile(header *multipart.FileHeader, dst string) error {
	src, err := header.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func newSessionID() string {
	return "session_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
