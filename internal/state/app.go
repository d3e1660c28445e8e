// Package state holds the client-side application state: the chat
// transcript, the dashboard collection and the upload and query flows.
//
// All mutation goes through App transitions, which serialize on a single
// mutex. Network calls happen outside the lock: a Begin transition hands
// out a ticket, the caller performs the request, and the matching Complete
// or Apply transition consumes the ticket. Results for superseded tickets
// are dropped.
package state

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"graphchat/internal/client"
	"graphchat/internal/logging"
	"graphchat/internal/session"
	"graphchat/internal/viz"
)

// View is the main view shown once a session exists.
type View string

const (
	ViewChat      View = "chat"
	ViewDashboard View = "dashboard"
)

// Snapshot is a read-only copy of the state for rendering.
type Snapshot struct {
	Uploaded       bool
	Filename       string
	Messages       []ChatMessage
	Visualizations []viz.Visualization
	Layouts        Layouts
	ActiveView     View
	QueryPending   bool
	UploadState    UploadState
	UploadFile     string
	UploadError    string
}

// Option configures an App.
type Option func(*App)

// WithExtension sets the accepted upload suffix.
func WithExtension(ext string) Option {
	return func(a *App) {
		a.upload = NewUploadFlow(ext)
	}
}

// WithIDFunc overrides id generation.
func WithIDFunc(fn IDFunc) Option {
	return func(a *App) {
		if fn != nil {
			a.newID = fn
		}
	}
}

// WithClock overrides the time source.
func WithClock(now Clock) Option {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

// App is the single owner of application state.
type App struct {
	mu sync.Mutex

	sessions session.Store
	log      *logging.Logger
	newID    IDFunc
	now      Clock

	uploaded   bool
	filename   string
	transcript *Transcript
	dashboard  *Dashboard
	activeView View
	upload     *UploadFlow
	query      QueryFlow
}

// New returns an App with empty defaults.
func New(sessions session.Store, opts ...Option) *App {
	a := &App{
		sessions:   sessions,
		log:        logging.Nop(),
		newID:      NewID,
		now:        time.Now,
		dashboard:  NewDashboard(),
		activeView: ViewChat,
		upload:     NewUploadFlow(DefaultExtension),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.transcript = NewTranscript(a.newID, a.now)
	return a
}

// Extension returns the accepted upload suffix.
func (a *App) Extension() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.upload.Extension()
}

// BeginUpload validates the chosen file and starts an upload attempt.
// A nil ticket with a nil error means nothing was chosen.
func (a *App) BeginUpload(names ...string) (*UploadTicket, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, err := a.upload.Begin(names...)
	if err != nil {
		a.log.Warn("upload rejected", "file", first(names), "error", err)
		return nil, err
	}
	if t != nil {
		a.log.Debug("upload started", "file", t.Filename, "token", t.Token)
	}
	return t, nil
}

// CompleteUpload applies the result of an upload. On failure the returned
// *UploadError carries the message to show.
func (a *App) CompleteUpload(t UploadTicket, sessionID string, uploadErr error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if uploadErr == nil && sessionID == "" {
		uploadErr = errors.New("upload response missing session id")
	}
	if uploadErr != nil {
		msg := uploadFailureMessage(uploadErr)
		if !a.upload.Fail(t, msg) {
			return ErrStaleTicket
		}
		a.log.Warn("upload failed", "file", t.Filename, "error", uploadErr)
		return &UploadError{Message: msg, Err: uploadErr}
	}

	if !a.upload.current(t) {
		return ErrStaleTicket
	}
	if err := a.onUploadSuccess(sessionID, t.Filename); err != nil {
		msg := fmt.Sprintf("Could not save session: %v", err)
		a.upload.Fail(t, msg)
		return &UploadError{Message: msg, Err: err}
	}
	a.upload.Succeed(t)
	return nil
}

// OnUploadSuccess records an established session and greets the user.
func (a *App) OnUploadSuccess(sessionID, filename string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.onUploadSuccess(sessionID, filename)
}

func (a *App) onUploadSuccess(sessionID, filename string) error {
	if err := a.sessions.Save(sessionID); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	a.uploaded = true
	a.filename = filename
	a.transcript.AppendBot(WelcomeMessage(filename), nil)
	a.log.Info("session established", "file", filename)
	return nil
}

// SendMessage appends the user's message and returns the ticket for the
// backend query.
func (a *App) SendMessage(text string) (*QueryTicket, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	question := strings.TrimSpace(text)
	if question == "" {
		return nil, ErrEmptyMessage
	}
	if a.query.Pending() {
		return nil, ErrQueryPending
	}
	sessionID, err := a.sessions.Get()
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	token, err := a.query.Begin()
	if err != nil {
		return nil, err
	}
	msg := a.transcript.AppendUser(question)
	a.log.Debug("query started", "token", token)
	return &QueryTicket{
		Token:         token,
		SessionID:     sessionID,
		Question:      question,
		UserMessageID: msg.ID,
	}, nil
}

// ApplyQuery appends exactly one bot message for the ticket's result.
func (a *App) ApplyQuery(t QueryTicket, resp *client.QueryResponse, queryErr error) (ChatMessage, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.query.Resolve(t.Token) {
		return ChatMessage{}, ErrStaleTicket
	}

	if queryErr != nil || resp == nil {
		if queryErr == nil {
			queryErr = errors.New("empty response")
		}
		a.log.Warn("query failed", "error", queryErr)
		return a.transcript.AppendBot(fmt.Sprintf("Error: %v", queryErr), nil), nil
	}

	content := botContent(resp)
	var v *viz.Visualization
	if resp.Success && resp.Visualization != nil {
		normalized, err := viz.Normalize(*resp.Visualization, a.newID("viz"))
		if err != nil {
			a.log.Warn("visualization dropped", "error", err)
			content += "\n(The visualization could not be displayed.)"
		} else {
			v = &normalized
		}
	}
	return a.transcript.AppendBot(content, v), nil
}

// CancelledReply is the bot message recorded for a cancelled query.
const CancelledReply = "Query cancelled."

// CancelQuery abandons the pending query. The cancellation becomes that
// query's bot message and its late result is dropped as stale. It reports
// false when nothing was pending.
func (a *App) CancelQuery() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.query.Pending() {
		return false
	}
	a.query.Cancel()
	a.transcript.AppendBot(CancelledReply, nil)
	a.log.Info("query cancelled")
	return true
}

// CancelUpload abandons the upload in flight and returns to idle. Its
// result is dropped as stale. It reports false when nothing was uploading.
func (a *App) CancelUpload() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.upload.State() != UploadUploading {
		return false
	}
	a.log.Info("upload cancelled", "file", a.upload.Filename())
	a.upload.Cancel()
	return true
}

// botContent is the message, plus the error on its own line when the
// backend reports failure.
func botContent(resp *client.QueryResponse) string {
	content := resp.Message
	if !resp.Success && resp.Error != "" {
		if content == "" {
			return resp.Error
		}
		content += "\n" + resp.Error
	}
	return content
}

// OnTabChange switches the main view. Unknown views are ignored.
func (a *App) OnTabChange(v View) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if v == ViewChat || v == ViewDashboard {
		a.activeView = v
	}
}

// OnSendToDashboard pins a copy of v if absent and shows the dashboard.
func (a *App) OnSendToDashboard(v viz.Visualization) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	added := a.dashboard.Add(v)
	a.activeView = ViewDashboard
	a.log.Debug("send to dashboard", "id", v.ID, "added", added)
	return added
}

// OnVisualizationUpdate patches a pinned visualization.
func (a *App) OnVisualizationUpdate(id string, p Patch) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dashboard.Update(id, p)
}

// OnVisualizationRemove unpins a visualization.
func (a *App) OnVisualizationRemove(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dashboard.Remove(id)
}

// OnLayoutChange replaces the dashboard layouts.
func (a *App) OnLayoutChange(l Layouts) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dashboard.SetLayout(l)
}

// ResolveLayout returns the rectangles to render at bp.
func (a *App) ResolveLayout(bp Breakpoint) []Rect {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dashboard.Resolve(bp)
}

// Visualization returns a copy of a pinned visualization.
func (a *App) Visualization(id string) (viz.Visualization, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dashboard.Get(id)
}

// Snapshot returns a copy of the state.
func (a *App) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Snapshot{
		Uploaded:       a.uploaded,
		Filename:       a.filename,
		Messages:       a.transcript.Messages(),
		Visualizations: a.dashboard.List(),
		Layouts:        a.dashboard.Layouts(),
		ActiveView:     a.activeView,
		QueryPending:   a.query.Pending(),
		UploadState:    a.upload.State(),
		UploadFile:     uploading(a.upload),
		UploadError:    a.upload.Err(),
	}
}

// uploading is the name of the file in flight, if any.
func uploading(f *UploadFlow) string {
	if f.State() != UploadUploading {
		return ""
	}
	return f.Filename()
}

func uploadFailureMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return DefaultUploadError
}

func first(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return names[0]
}
