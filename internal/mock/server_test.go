package mock

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"graphchat/internal/client"
	"graphchat/internal/viz"
)

func newTestClient(t *testing.T, opts ...Option) (*client.Client, *Server) {
	t.Helper()
	s := NewServer(0, opts...)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return client.NewClient(srv.URL), s
}

func TestHealth(t *testing.T) {
	c, _ := newTestClient(t)
	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected ok, got %s", resp.Status)
	}
}

func TestUploadAndQuery(t *testing.T) {
	c, s := newTestClient(t)
	ctx := context.Background()

	up, err := c.Upload(ctx, "movies.dump", strings.NewReader("DUMP"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if up.SessionID == "" || s.SessionCount() != 1 {
		t.Fatalf("expected a session, got %+v (count %d)", up, s.SessionCount())
	}

	t.Run("scatter", func(t *testing.T) {
		resp, err := c.Query(ctx, up.SessionID, "Show me the distribution of nodes")
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if !resp.Success || resp.Visualization == nil {
			t.Fatalf("expected visualization, got %+v", resp)
		}
		v, err := viz.Normalize(*resp.Visualization, "viz-1")
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		if v.Title != "Node Distribution Analysis" || v.Type != "Scatter Plot" {
			t.Errorf("unexpected visualization %+v", v)
		}
	})

	t.Run("bar", func(t *testing.T) {
		resp, _ := c.Query(ctx, up.SessionID, "chart the database")
		v, err := viz.Normalize(*resp.Visualization, "viz-2")
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		if v.Title != "Database Statistics" {
			t.Errorf("unexpected title %q", v.Title)
		}
		traces := viz.Traces(v.Figure)
		if len(traces) != 1 || len(traces[0].Values) != 4 || traces[0].Values[0] != 150 {
			t.Errorf("unexpected traces %+v", traces)
		}
	})

	t.Run("text", func(t *testing.T) {
		resp, _ := c.Query(ctx, up.SessionID, "what is this?")
		if !resp.Success || resp.Visualization != nil || !strings.Contains(resp.Message, "what is this?") {
			t.Errorf("unexpected response %+v", resp)
		}
	})
}

func TestUploadRejectsExtension(t *testing.T) {
	c, s := newTestClient(t)
	_, err := c.Upload(context.Background(), "report.txt", strings.NewReader("x"))

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Detail != "Only .dump files are supported" {
		t.Errorf("unexpected error %+v", apiErr)
	}
	if s.SessionCount() != 0 {
		t.Error("rejected upload should not create a session")
	}
}

func TestQueryUnknownSession(t *testing.T) {
	c, _ := newTestClient(t)
	resp, err := c.Query(context.Background(), "nope", "show")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if resp.Success || resp.Error != "invalid session" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestSessionExpiry(t *testing.T) {
	c, _ := newTestClient(t, WithSessionTTL(50*time.Millisecond))
	ctx := context.Background()

	up, err := c.Upload(ctx, "a.dump", strings.NewReader(""))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	resp, _ := c.Query(ctx, up.SessionID, "hi")
	if resp.Success {
		t.Error("expected expired session")
	}
}

func TestQueryDelayHonoursCancel(t *testing.T) {
	c, s := newTestClient(t, WithDelay(time.Hour))
	s.sessions.SetDefault("abc", sessionInfo{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.Query(ctx, "abc", "hi"); err == nil {
		t.Fatal("expected context error")
	}
}

func TestWantsVisualization(t *testing.T) {
	tests := map[string]bool{
		"Show me nodes":         true,
		"ANALYZE relationships": true,
		"draw a graph":          true,
		"hello":                 false,
		"":                      false,
	}
	for q, want := range tests {
		if got := WantsVisualization(q); got != want {
			t.Errorf("WantsVisualization(%q) = %v, want %v", q, got, want)
		}
	}
}
