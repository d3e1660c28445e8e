package messages

import "graphchat/internal/state"

// Backend results

type UploadDoneMsg struct {
	Filename string
	Err      error
}

type QueryDoneMsg struct {
	Message state.ChatMessage
	Err     error
}

// Local results

type ExportDoneMsg struct {
	Path string
	Err  error
}
