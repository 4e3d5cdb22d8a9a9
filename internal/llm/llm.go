package llm

import (
	"context"
	"errors"
)

// Message is one role-tagged chat message.
type Message struct {
	Role    string
	Content string
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Completer sends a chat conversation to a hosted model and returns the text
// of the first choice.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (Completion, error)
}

// Completion is the model's reply plus token accounting when the provider
// reports it.
type Completion struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// ErrNotConfigured is returned by Disabled.
var ErrNotConfigured = errors.New("completion API key not configured")

// Disabled is the Completer used when no API key is set.
type Disabled struct{}

func (Disabled) Complete(context.Context, []Message) (Completion, error) {
	return Completion{}, ErrNotConfigured
}
