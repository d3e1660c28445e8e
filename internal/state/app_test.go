package state_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"graphchat/internal/client"
	"graphchat/internal/session"
	"graphchat/internal/state"
	"graphchat/internal/viz"
)

type stubBackend struct {
	uploadResp *client.UploadResponse
	uploadErr  error
	queryResp  *client.QueryResponse
	queryErr   error

	mu       sync.Mutex
	uploads  []string
	payloads []string
	queries  []client.QueryRequest
}

func (b *stubBackend) Upload(ctx context.Context, filename string, content io.Reader) (*client.UploadResponse, error) {
	data, _ := io.ReadAll(content)
	b.mu.Lock()
	b.uploads = append(b.uploads, filename)
	b.payloads = append(b.payloads, string(data))
	b.mu.Unlock()
	return b.uploadResp, b.uploadErr
}

func (b *stubBackend) Query(ctx context.Context, sessionID, question string) (*client.QueryResponse, error) {
	b.mu.Lock()
	b.queries = append(b.queries, client.QueryRequest{SessionID: sessionID, Question: question})
	b.mu.Unlock()
	return b.queryResp, b.queryErr
}

func seqIDs() state.IDFunc {
	var mu sync.Mutex
	n := 0
	return func(prefix string) string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func fixedClock() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func newApp(store session.Store) *state.App {
	return state.New(store, state.WithIDFunc(seqIDs()), state.WithClock(fixedClock))
}

func vizPayload(title string) *viz.Payload {
	return &viz.Payload{
		Figure:      []byte(`{"data":[],"layout":{"title":"` + title + `"}}`),
		Type:        "bar",
		ConfigUsed:  map[string]any{"color_scheme": "primary"},
		GeneratedAt: "2024-01-01T00:00:00Z",
	}
}

// uploadedApp returns an app with session abc123 established.
func uploadedApp(t *testing.T) (*state.App, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	app := newApp(store)
	if err := app.OnUploadSuccess("abc123", "graph.dump"); err != nil {
		t.Fatalf("OnUploadSuccess() error = %v", err)
	}
	return app, store
}

func TestUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong extension", func(t *testing.T) {
		store := session.NewMemoryStore()
		app := newApp(store)
		b := &stubBackend{}

		err := app.Upload(ctx, b, state.File{Name: "report.txt", Content: strings.NewReader("x")})
		if !errors.Is(err, state.ErrInvalidFileType) {
			t.Fatalf("expected ErrInvalidFileType, got %v", err)
		}
		if len(b.uploads) != 0 {
			t.Errorf("backend should not be called, got %v", b.uploads)
		}
		if _, err := store.Get(); !errors.Is(err, session.ErrNotFound) {
			t.Errorf("session should be untouched, got %v", err)
		}
		snap := app.Snapshot()
		if snap.Uploaded || snap.UploadError != "invalid file type" {
			t.Errorf("unexpected snapshot %+v", snap)
		}
	})

	t.Run("no files", func(t *testing.T) {
		app := newApp(session.NewMemoryStore())
		if err := app.Upload(ctx, &stubBackend{}); err != nil {
			t.Fatalf("Upload() error = %v", err)
		}
		if snap := app.Snapshot(); snap.UploadState != state.UploadIdle {
			t.Errorf("expected idle, got %s", snap.UploadState)
		}
	})

	t.Run("success", func(t *testing.T) {
		store := session.NewMemoryStore()
		app := newApp(store)
		b := &stubBackend{uploadResp: &client.UploadResponse{SessionID: "abc123"}}

		err := app.Upload(ctx, b, state.File{Name: "graph.dump", Content: strings.NewReader("DUMP")})
		if err != nil {
			t.Fatalf("Upload() error = %v", err)
		}
		if id, _ := store.Get(); id != "abc123" {
			t.Errorf("expected stored id abc123, got %q", id)
		}
		if b.payloads[0] != "DUMP" {
			t.Errorf("unexpected payload %q", b.payloads[0])
		}

		snap := app.Snapshot()
		if !snap.Uploaded || snap.Filename != "graph.dump" || snap.UploadState != state.UploadSucceeded {
			t.Errorf("unexpected snapshot %+v", snap)
		}
		if len(snap.Messages) != 1 {
			t.Fatalf("expected one welcome message, got %d", len(snap.Messages))
		}
		msg := snap.Messages[0]
		if msg.Type != state.MessageBot || !strings.Contains(msg.Content, "graph.dump") {
			t.Errorf("unexpected welcome message %+v", msg)
		}
	})

	t.Run("backend detail", func(t *testing.T) {
		store := session.NewMemoryStore()
		app := newApp(store)
		b := &stubBackend{uploadErr: &client.APIError{StatusCode: http.StatusBadRequest, Detail: "Only .dump files are supported"}}

		err := app.Upload(ctx, b, state.File{Name: "graph.dump", Content: strings.NewReader("")})
		var upErr *state.UploadError
		if !errors.As(err, &upErr) {
			t.Fatalf("expected *UploadError, got %v", err)
		}
		if upErr.Message != "Only .dump files are supported" {
			t.Errorf("unexpected message %q", upErr.Message)
		}
		snap := app.Snapshot()
		if snap.Uploaded || snap.UploadState != state.UploadIdle || len(snap.Messages) != 0 {
			t.Errorf("failed upload changed state: %+v", snap)
		}
	})

	t.Run("generic failure", func(t *testing.T) {
		app := newApp(session.NewMemoryStore())
		b := &stubBackend{uploadErr: errors.New("connection refused")}

		err := app.Upload(ctx, b, state.File{Name: "graph.dump", Content: strings.NewReader("")})
		if err == nil || err.Error() != state.DefaultUploadError {
			t.Fatalf("expected %q, got %v", state.DefaultUploadError, err)
		}
	})

	t.Run("reupload replaces session", func(t *testing.T) {
		app, store := uploadedApp(t)
		b := &stubBackend{uploadResp: &client.UploadResponse{SessionID: "def456"}}
		if err := app.Upload(ctx, b, state.File{Name: "other.dump", Content: strings.NewReader("")}); err != nil {
			t.Fatalf("Upload() error = %v", err)
		}
		if id, _ := store.Get(); id != "def456" {
			t.Errorf("expected def456, got %q", id)
		}
	})
}

func TestUploadTickets(t *testing.T) {
	app := newApp(session.NewMemoryStore())

	first, err := app.BeginUpload("a.dump")
	if err != nil {
		t.Fatalf("BeginUpload() error = %v", err)
	}
	if _, err := app.BeginUpload("b.dump"); !errors.Is(err, state.ErrUploadInProgress) {
		t.Fatalf("expected ErrUploadInProgress, got %v", err)
	}

	stale := state.UploadTicket{Token: first.Token + 1, Filename: "a.dump"}
	if err := app.CompleteUpload(stale, "zzz", nil); !errors.Is(err, state.ErrStaleTicket) {
		t.Errorf("expected ErrStaleTicket, got %v", err)
	}
	if err := app.CompleteUpload(*first, "abc123", nil); err != nil {
		t.Fatalf("CompleteUpload() error = %v", err)
	}
	if err := app.CompleteUpload(*first, "abc123", nil); !errors.Is(err, state.ErrStaleTicket) {
		t.Errorf("second completion should be stale, got %v", err)
	}
	if n := len(app.Snapshot().Messages); n != 1 {
		t.Errorf("expected one welcome message, got %d", n)
	}
}

func TestAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("no session", func(t *testing.T) {
		app := newApp(session.NewMemoryStore())
		b := &stubBackend{}
		if _, err := app.Ask(ctx, b, "show me nodes"); !errors.Is(err, state.ErrNoSession) {
			t.Fatalf("expected ErrNoSession, got %v", err)
		}
		if len(b.queries) != 0 || len(app.Snapshot().Messages) != 0 {
			t.Error("nothing should be sent or appended")
		}
	})

	t.Run("empty message", func(t *testing.T) {
		app, _ := uploadedApp(t)
		if _, err := app.Ask(ctx, &stubBackend{}, "   "); !errors.Is(err, state.ErrEmptyMessage) {
			t.Fatalf("expected ErrEmptyMessage, got %v", err)
		}
		if n := len(app.Snapshot().Messages); n != 1 {
			t.Errorf("expected only the welcome message, got %d", n)
		}
	})

	t.Run("visualization", func(t *testing.T) {
		app, _ := uploadedApp(t)
		b := &stubBackend{queryResp: &client.QueryResponse{Success: true, Message: "ok", Visualization: vizPayload("X")}}

		msg, err := app.Ask(ctx, b, "  show me nodes ")
		if err != nil {
			t.Fatalf("Ask() error = %v", err)
		}
		if b.queries[0].SessionID != "abc123" || b.queries[0].Question != "show me nodes" {
			t.Errorf("unexpected request %+v", b.queries[0])
		}
		if msg.Type != state.MessageBot || msg.Content != "ok" {
			t.Errorf("unexpected bot message %+v", msg)
		}
		if msg.Visualization == nil || msg.Visualization.Title != "X" || msg.Visualization.Type != "bar" {
			t.Fatalf("unexpected visualization %+v", msg.Visualization)
		}

		snap := app.Snapshot()
		if len(snap.Messages) != 3 {
			t.Fatalf("expected welcome, user and bot messages, got %d", len(snap.Messages))
		}
		if snap.Messages[1].Type != state.MessageUser || snap.Messages[1].Content != "show me nodes" {
			t.Errorf("unexpected user message %+v", snap.Messages[1])
		}
		if len(snap.Visualizations) != 0 {
			t.Error("query must not pin to the dashboard")
		}
		if snap.QueryPending {
			t.Error("query should no longer be pending")
		}
	})

	t.Run("failure appends error", func(t *testing.T) {
		app, _ := uploadedApp(t)
		b := &stubBackend{queryResp: &client.QueryResponse{Success: false, Message: "Query failed", Error: "invalid session"}}

		msg, err := app.Ask(ctx, b, "hi")
		if err != nil {
			t.Fatalf("Ask() error = %v", err)
		}
		if msg.Content != "Query failed\ninvalid session" || msg.Visualization != nil {
			t.Errorf("unexpected bot message %+v", msg)
		}
	})

	t.Run("success ignores error field", func(t *testing.T) {
		app, _ := uploadedApp(t)
		b := &stubBackend{queryResp: &client.QueryResponse{Success: true, Message: "Done", Error: "warning"}}

		msg, _ := app.Ask(ctx, b, "hi")
		if msg.Content != "Done" {
			t.Errorf("expected Done, got %q", msg.Content)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		app, _ := uploadedApp(t)
		b := &stubBackend{queryErr: errors.New("connection refused")}

		msg, err := app.Ask(ctx, b, "hi")
		if err != nil {
			t.Fatalf("Ask() error = %v", err)
		}
		if !strings.Contains(msg.Content, "connection refused") || msg.Visualization != nil {
			t.Errorf("unexpected bot message %+v", msg)
		}
		if app.Snapshot().QueryPending {
			t.Error("query should no longer be pending")
		}
	})

	t.Run("invalid figure", func(t *testing.T) {
		app, _ := uploadedApp(t)
		payload := vizPayload("X")
		payload.Figure = []byte(`[1,2]`)
		b := &stubBackend{queryResp: &client.QueryResponse{Success: true, Message: "ok", Visualization: payload}}

		msg, _ := app.Ask(ctx, b, "hi")
		if msg.Visualization != nil {
			t.Error("invalid figure should be dropped")
		}
		if !strings.HasPrefix(msg.Content, "ok\n") {
			t.Errorf("unexpected content %q", msg.Content)
		}
	})
}

func TestQueryTickets(t *testing.T) {
	app, _ := uploadedApp(t)

	ticket, err := app.SendMessage("first")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if _, err := app.SendMessage("second"); !errors.Is(err, state.ErrQueryPending) {
		t.Fatalf("expected ErrQueryPending, got %v", err)
	}
	if !app.Snapshot().QueryPending {
		t.Error("expected pending")
	}

	stale := *ticket
	stale.Token++
	if _, err := app.ApplyQuery(stale, &client.QueryResponse{Success: true, Message: "x"}, nil); !errors.Is(err, state.ErrStaleTicket) {
		t.Errorf("expected ErrStaleTicket, got %v", err)
	}
	if _, err := app.ApplyQuery(*ticket, &client.QueryResponse{Success: true, Message: "x"}, nil); err != nil {
		t.Fatalf("ApplyQuery() error = %v", err)
	}
	if _, err := app.ApplyQuery(*ticket, &client.QueryResponse{Success: true, Message: "x"}, nil); !errors.Is(err, state.ErrStaleTicket) {
		t.Errorf("second apply should be stale, got %v", err)
	}

	bots := 0
	for _, m := range app.Snapshot().Messages {
		if m.Type == state.MessageBot {
			bots++
		}
	}
	if bots != 2 {
		t.Errorf("expected welcome plus one answer, got %d bot messages", bots)
	}
}

func TestDashboardTransitions(t *testing.T) {
	app, _ := uploadedApp(t)
	b := &stubBackend{queryResp: &client.QueryResponse{Success: true, Message: "ok", Visualization: vizPayload("X")}}
	msg, err := app.Ask(context.Background(), b, "show")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	v := *msg.Visualization

	if !app.OnSendToDashboard(v) {
		t.Fatal("first send should add")
	}
	app.OnTabChange(state.ViewChat)
	if app.OnSendToDashboard(v) {
		t.Error("second send should not add")
	}
	snap := app.Snapshot()
	if len(snap.Visualizations) != 1 || snap.ActiveView != state.ViewDashboard {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	title := "Renamed"
	if !app.OnVisualizationUpdate(v.ID, state.Patch{Title: &title, ConfigUsed: map[string]any{"color_scheme": "dark"}}) {
		t.Fatal("update should apply")
	}
	pinned, _ := app.Visualization(v.ID)
	if pinned.Title != "Renamed" || pinned.ConfigUsed["color_scheme"] != "dark" {
		t.Errorf("unexpected pinned visualization %+v", pinned)
	}
	if viz.DeriveTitle(pinned.Figure, pinned.Type) != "Renamed" {
		t.Errorf("figure title not updated: %s", pinned.Figure)
	}

	chatCopy := app.Snapshot().Messages[2].Visualization
	if chatCopy.Title != "X" || chatCopy.ConfigUsed["color_scheme"] != "primary" {
		t.Errorf("chat copy changed with dashboard: %+v", chatCopy)
	}

	if app.OnVisualizationUpdate("missing", state.Patch{Title: &title}) {
		t.Error("update of unknown id should be a no-op")
	}

	app.OnLayoutChange(state.Layouts{state.BreakpointLG: {{ItemID: v.ID, X: 0, Y: 0, W: 8, H: 5}}})
	if !app.OnVisualizationRemove(v.ID) {
		t.Fatal("remove should apply")
	}
	if rects := app.ResolveLayout(state.BreakpointLG); len(rects) != 0 {
		t.Errorf("stale rect should be skipped, got %+v", rects)
	}
	if got := app.Snapshot().Layouts[state.BreakpointLG]; len(got) != 1 {
		t.Errorf("layouts should be untouched by remove, got %+v", got)
	}
}

func TestTabChange(t *testing.T) {
	app := newApp(session.NewMemoryStore())
	if app.Snapshot().ActiveView != state.ViewChat {
		t.Fatal("expected chat view by default")
	}
	app.OnTabChange(state.ViewDashboard)
	app.OnTabChange(state.View("settings"))
	if got := app.Snapshot().ActiveView; got != state.ViewDashboard {
		t.Errorf("expected dashboard, got %s", got)
	}
}

func TestConcurrentSnapshots(t *testing.T) {
	app, _ := uploadedApp(t)
	b := &stubBackend{queryResp: &client.QueryResponse{Success: true, Message: "ok", Visualization: vizPayload("X")}}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			app.Ask(context.Background(), b, "show")
		}()
		go func() {
			defer wg.Done()
			_ = app.Snapshot()
		}()
	}
	wg.Wait()

	snap := app.Snapshot()
	users, bots := 0, 0
	for _, m := range snap.Messages {
		switch m.Type {
		case state.MessageUser:
			users++
		case state.MessageBot:
			bots++
		}
	}
	if bots != users+1 {
		t.Errorf("every accepted query needs one answer: %d users, %d bots", users, bots)
	}
}

func TestCancelQuery(t *testing.T) {
	app, _ := uploadedApp(t)

	if app.CancelQuery() {
		t.Error("nothing pending, CancelQuery() should report false")
	}

	ticket, err := app.SendMessage("slow question")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if !app.CancelQuery() {
		t.Fatal("CancelQuery() = false with a pending query")
	}

	snap := app.Snapshot()
	if snap.QueryPending {
		t.Error("query should no longer be pending")
	}
	last := snap.Messages[len(snap.Messages)-1]
	if last.Type != state.MessageBot || last.Content != state.CancelledReply {
		t.Errorf("expected cancellation reply, got %+v", last)
	}

	if _, err := app.ApplyQuery(*ticket, nil, context.Canceled); !errors.Is(err, state.ErrStaleTicket) {
		t.Errorf("late result should be stale, got %v", err)
	}
	if got := len(app.Snapshot().Messages); got != len(snap.Messages) {
		t.Errorf("late result appended a message: %d -> %d", len(snap.Messages), got)
	}

	if _, err := app.SendMessage("next"); err != nil {
		t.Errorf("a new query should be accepted after cancel, got %v", err)
	}
}

func TestCancelUpload(t *testing.T) {
	store := session.NewMemoryStore()
	app := newApp(store)

	if app.CancelUpload() {
		t.Error("nothing uploading, CancelUpload() should report false")
	}

	ticket, err := app.BeginUpload("movies.dump")
	if err != nil {
		t.Fatalf("BeginUpload() error = %v", err)
	}
	if got := app.Snapshot().UploadFile; got != "movies.dump" {
		t.Errorf("UploadFile = %q", got)
	}
	if !app.CancelUpload() {
		t.Fatal("CancelUpload() = false while uploading")
	}

	snap := app.Snapshot()
	if snap.UploadState != state.UploadIdle || snap.UploadFile != "" {
		t.Errorf("expected idle without a file, got %v %q", snap.UploadState, snap.UploadFile)
	}
	if err := app.CompleteUpload(*ticket, "late-session", nil); !errors.Is(err, state.ErrStaleTicket) {
		t.Errorf("late result should be stale, got %v", err)
	}
	if _, err := store.Get(); err == nil {
		t.Error("cancelled upload must not store a session")
	}
	if app.Snapshot().Uploaded {
		t.Error("cancelled upload must not mark the app uploaded")
	}
}
