package client

import (
	"fmt"

	"graphchat/internal/viz"
)

// UploadResponse is the body returned by a successful upload.
type UploadResponse struct {
	SessionID string `json:"session_id"`
}

// QueryRequest is the request body for the /query endpoint.
type QueryRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

// QueryResponse is the body returned by the /query endpoint.
type QueryResponse struct {
	Success       bool         `json:"success"`
	Message       string       `json:"message"`
	Visualization *viz.Payload `json:"visualization,omitempty"`
	Error         string       `json:"error,omitempty"`
}

// HealthResponse is the body returned by the /health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorBody is the JSON error shape used on non-2xx responses.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Detail     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}
