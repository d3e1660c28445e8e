package state

// QueryState is the query lifecycle position.
type QueryState int

const (
	QueryIdle QueryState = iota
	QueryPending
)

func (s QueryState) String() string {
	if s == QueryPending {
		return "pending"
	}
	return "idle"
}

// QueryTicket identifies one question sent to the backend.
type QueryTicket struct {
	Token         uint64
	SessionID     string
	Question      string
	UserMessageID string
}

// QueryFlow allows at most one outstanding query.
type QueryFlow struct {
	state  QueryState
	token  uint64
	active uint64
}

// Begin starts a query and returns its token.
func (f *QueryFlow) Begin() (uint64, error) {
	if f.state == QueryPending {
		return 0, ErrQueryPending
	}
	f.token++
	f.active = f.token
	f.state = QueryPending
	return f.active, nil
}

// Resolve applies the result for token and returns to idle. It reports
// false for a stale token.
func (f *QueryFlow) Resolve(token uint64) bool {
	if f.state != QueryPending || token == 0 || token != f.active {
		return false
	}
	f.active = 0
	f.state = QueryIdle
	return true
}

// Cancel drops the outstanding query; its result will be ignored.
func (f *QueryFlow) Cancel() {
	f.active = 0
	f.state = QueryIdle
}

// Pending reports whether a query is outstanding.
func (f *QueryFlow) Pending() bool { return f.state == QueryPending }

// State returns the current lifecycle position.
func (f *QueryFlow) State() QueryState { return f.state }
