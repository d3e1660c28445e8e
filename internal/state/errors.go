package state

import "errors"

var (
	// ErrInvalidFileType is returned when an upload does not carry the
	// required file extension.
	ErrInvalidFileType = errors.New("invalid file type")
	// ErrUploadInProgress is returned when an upload is started while
	// another one is pending.
	ErrUploadInProgress = errors.New("upload already in progress")
	// ErrEmptyMessage is returned for blank chat input.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrQueryPending is returned when a message is sent while a query is
	// still awaiting its response.
	ErrQueryPending = errors.New("a query is already pending")
	// ErrNoSession is returned when querying before any successful upload.
	ErrNoSession = errors.New("no active session: upload a database first")
	// ErrStaleTicket is returned when a result arrives for a request that
	// is no longer current.
	ErrStaleTicket = errors.New("stale request ticket")
)

// UploadError carries the user-facing message for a failed upload.
type UploadError struct {
	Message string
	Err     error
}

func (e *UploadError) Error() string { return e.Message }

func (e *UploadError) Unwrap() error { return e.Err }
