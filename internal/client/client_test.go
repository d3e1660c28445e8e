package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"graphchat/internal/client"
)

// testServer is a minimal backend recording what the client sent.
type testServer struct {
	server       *httptest.Server
	mu           sync.Mutex
	lastFilename string
	lastPayload  string
	lastLength   int64
	lastQuery    client.QueryRequest
	queryResp    any
	queryStatus  int
}

func newTestServer() *testServer {
	ts := &testServer{queryStatus: http.StatusOK}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(client.HealthResponse{Status: "ok"})
	})
	mux.HandleFunc("/upload", ts.handleUpload)
	mux.HandleFunc("/query", ts.handleQuery)

	ts.server = httptest.NewServer(mux)
	return ts
}

func (ts *testServer) Close() { ts.server.Close() }

func (ts *testServer) URL() string { return ts.server.URL }

func (ts *testServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(client.ErrorBody{Detail: "missing file"})
		return
	}
	defer f.Close()

	data, _ := io.ReadAll(f)
	ts.mu.Lock()
	ts.lastFilename = hdr.Filename
	ts.lastPayload = string(data)
	ts.lastLength = r.ContentLength
	ts.mu.Unlock()

	if !strings.HasSuffix(hdr.Filename, ".dump") {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(client.ErrorBody{Detail: "Only .dump files are supported"})
		return
	}
	json.NewEncoder(w).Encode(client.UploadResponse{SessionID: "abc123"})
}

func (ts *testServer) handleQuery(w http.ResponseWriter, r *http.Request) {
	if got := r.Header.Get("Content-Type"); got != "application/json" {
		http.Error(w, "bad content type "+got, http.StatusUnsupportedMediaType)
		return
	}
	var q client.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ts.mu.Lock()
	ts.lastQuery = q
	status, body := ts.queryStatus, ts.queryResp
	ts.mu.Unlock()

	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (ts *testServer) respond(status int, body any) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.queryStatus, ts.queryResp = status, body
}

func (ts *testServer) received() (filename, payload string, q client.QueryRequest) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.lastFilename, ts.lastPayload, ts.lastQuery
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk read failed") }

func TestUpload(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	c := client.NewClient(srv.URL() + "/")
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		resp, err := c.Upload(ctx, "graph.dump", strings.NewReader("DUMPDATA"))
		if err != nil {
			t.Fatalf("Upload() error = %v", err)
		}
		if resp.SessionID != "abc123" {
			t.Errorf("expected session id abc123, got %s", resp.SessionID)
		}
		name, payload, _ := srv.received()
		if name != "graph.dump" || payload != "DUMPDATA" {
			t.Errorf("server received %q / %q", name, payload)
		}
	})

	t.Run("streams plain reader", func(t *testing.T) {
		dump := strings.Repeat("neo4j-dump-block-", 256*1024)
		// Hides Len and Seek so the body cannot be sized up front.
		content := struct{ io.Reader }{strings.NewReader(dump)}

		if _, err := c.Upload(ctx, "big.dump", content); err != nil {
			t.Fatalf("Upload() error = %v", err)
		}
		_, payload, _ := srv.received()
		if len(payload) != len(dump) || payload != dump {
			t.Errorf("payload corrupted: got %d bytes, want %d", len(payload), len(dump))
		}
		srv.mu.Lock()
		length := srv.lastLength
		srv.mu.Unlock()
		if length != -1 {
			t.Errorf("expected a chunked body, got Content-Length %d", length)
		}
	})

	t.Run("read failure", func(t *testing.T) {
		content := io.MultiReader(strings.NewReader("partial"), failingReader{})
		if _, err := c.Upload(ctx, "broken.dump", content); err == nil {
			t.Fatal("expected error when the content cannot be read")
		}
	})

	t.Run("error detail", func(t *testing.T) {
		_, err := c.Upload(ctx, "report.txt", strings.NewReader("x"))
		if err == nil {
			t.Fatal("expected error")
		}
		var apiErr *client.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %T", err)
		}
		if apiErr.StatusCode != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", apiErr.StatusCode)
		}
		if apiErr.Detail != "Only .dump files are supported" {
			t.Errorf("unexpected detail %q", apiErr.Detail)
		}
	})
}

func TestQuery(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	c := client.NewClient(srv.URL())
	ctx := context.Background()

	t.Run("with visualization", func(t *testing.T) {
		srv.respond(http.StatusOK, map[string]any{
			"success": true,
			"message": "ok",
			"visualization": map[string]any{
				"figure":       map[string]any{"data": []any{}, "layout": map[string]any{"title": "X"}},
				"type":         "bar",
				"config_used":  map[string]any{"color_scheme": "primary"},
				"generated_at": "2024-01-01T00:00:00Z",
			},
		})

		resp, err := c.Query(ctx, "abc123", "show me nodes")
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if _, _, q := srv.received(); q.SessionID != "abc123" || q.Question != "show me nodes" {
			t.Errorf("server received %+v", q)
		}
		if !resp.Success || resp.Message != "ok" {
			t.Errorf("unexpected response %+v", resp)
		}
		if resp.Visualization == nil {
			t.Fatal("expected visualization payload")
		}
		if resp.Visualization.Type != "bar" || resp.Visualization.ConfigUsed["color_scheme"] != "primary" {
			t.Errorf("unexpected visualization %+v", resp.Visualization)
		}
		if !strings.Contains(string(resp.Visualization.Figure), `"title":"X"`) {
			t.Errorf("figure not passed through: %s", resp.Visualization.Figure)
		}
	})

	t.Run("failure payload", func(t *testing.T) {
		srv.respond(http.StatusOK, map[string]any{"success": false, "message": "Query failed", "error": "invalid session"})

		resp, err := c.Query(ctx, "", "hi")
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if resp.Success || resp.Error != "invalid session" || resp.Visualization != nil {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("server error", func(t *testing.T) {
		srv.respond(http.StatusInternalServerError, map[string]any{"detail": "boom"})

		_, err := c.Query(ctx, "abc123", "hi")
		var apiErr *client.APIError
		if !errors.As(err, &apiErr) || apiErr.Detail != "boom" {
			t.Fatalf("expected APIError with detail, got %v", err)
		}
	})
}

func TestHealth(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp, err := client.NewClient(srv.URL()).Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %s", resp.Status)
	}
}

func TestTransportError(t *testing.T) {
	srv := newTestServer()
	url := srv.URL()
	srv.Close()

	_, err := client.NewClient(url).Query(context.Background(), "abc", "hi")
	if err == nil {
		t.Fatal("expected transport error")
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		t.Errorf("transport failure should not be an APIError: %v", err)
	}
}
