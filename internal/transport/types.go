package transport

import "context"

// ChatTarget addresses a chat. ChatID is kept as a string so both numeric
// ids ("-1001234567890") and public usernames ("@channel") work.
type ChatTarget struct {
	ChatID   string
	ThreadID int // telegram forum topic thread id (0 if none)
}

type MessageRef struct {
	ChatID    string
	ThreadID  int
	MessageID int
}

// SendOptions tune a plain-text send.
type SendOptions struct {
	DisablePreview bool
}

// Sender is the messaging sink. One call is one attempt; implementations
// must not retry internally.
type Sender interface {
	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
}
