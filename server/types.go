package server

import "github.com/RawatRahul14/ragpipe/extract"

// UploadResponse is returned by POST /upload/.
type UploadResponse struct {
	Status    string             `json:"status"`
	SessionID string             `json:"session_id,omitempty"`
	SavedPath string             `json:"saved_path,omitempty"`
	Files     []extract.FileInfo `json:"files,omitempty"`
	Message   string             `json:"message,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// QueryRequest is the body of POST /query/.
type QueryRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"user_query"`
}

// QueryResponse is returned by POST /query/.
type QueryResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id,omitempty"`
	Answer    string `json:"answer,omitempty"`
	Error     string `json:"error,omitempty"`
}
