package state

import "strings"

// DefaultExtension is the only accepted upload suffix unless configured.
const DefaultExtension = ".dump"

// DefaultUploadError is shown when the backend gives no failure detail.
const DefaultUploadError = "Upload failed. Please try again."

// UploadState is the upload lifecycle position.
type UploadState int

const (
	UploadIdle UploadState = iota
	UploadValidating
	UploadUploading
	UploadSucceeded
	UploadFailed
)

func (s UploadState) String() string {
	switch s {
	case UploadIdle:
		return "idle"
	case UploadValidating:
		return "validating"
	case UploadUploading:
		return "uploading"
	case UploadSucceeded:
		return "succeeded"
	case UploadFailed:
		return "failed"
	}
	return "unknown"
}

// UploadTicket identifies one upload attempt.
type UploadTicket struct {
	Token    uint64
	Filename string
}

// UploadFlow validates a chosen file and tracks the in-flight upload.
type UploadFlow struct {
	extension string
	state     UploadState
	token     uint64
	active    uint64
	filename  string
	lastErr   string
}

// NewUploadFlow returns an idle flow accepting files ending in extension.
func NewUploadFlow(extension string) *UploadFlow {
	if extension == "" {
		extension = DefaultExtension
	}
	return &UploadFlow{extension: extension}
}

// Begin validates the first of names and starts an attempt. An empty list
// returns a nil ticket and no error.
func (f *UploadFlow) Begin(names ...string) (*UploadTicket, error) {
	if len(names) == 0 {
		return nil, nil
	}
	if f.state == UploadUploading {
		return nil, ErrUploadInProgress
	}

	name := names[0]
	f.state = UploadValidating
	if !strings.HasSuffix(name, f.extension) {
		f.state = UploadIdle
		f.lastErr = ErrInvalidFileType.Error()
		return nil, ErrInvalidFileType
	}

	f.token++
	f.active = f.token
	f.filename = name
	f.lastErr = ""
	f.state = UploadUploading
	return &UploadTicket{Token: f.active, Filename: name}, nil
}

func (f *UploadFlow) current(t UploadTicket) bool {
	return f.state == UploadUploading && t.Token != 0 && t.Token == f.active
}

// Succeed ends the attempt successfully. Stale tickets are ignored.
func (f *UploadFlow) Succeed(t UploadTicket) bool {
	if !f.current(t) {
		return false
	}
	f.active = 0
	f.state = UploadSucceeded
	return true
}

// Fail ends the attempt with msg and returns to idle. Stale tickets are
// ignored.
func (f *UploadFlow) Fail(t UploadTicket, msg string) bool {
	if !f.current(t) {
		return false
	}
	f.active = 0
	f.lastErr = msg
	f.state = UploadIdle
	return true
}

// Cancel abandons the in-flight attempt; its result will be ignored.
func (f *UploadFlow) Cancel() {
	if f.state == UploadUploading {
		f.active = 0
		f.state = UploadIdle
	}
}

// State returns the current lifecycle position.
func (f *UploadFlow) State() UploadState { return f.state }

// Err returns the message of the last failure, if any.
func (f *UploadFlow) Err() string { return f.lastErr }

// Filename returns the name of the last accepted file.
func (f *UploadFlow) Filename() string { return f.filename }

// Extension returns the accepted suffix.
func (f *UploadFlow) Extension() string { return f.extension }
