package chat

import (
	"context"
)

// Action names the conversational flow a chain belongs to.
type Action string

// Interaction carries the parameters of one inbound message.
type Interaction struct {
	UserID string `json:"user_id" validate:"required"`
	Action Action `json:"action,omitempty"`
	Value  string `json:"value,omitempty"`
	Name   string `json:"name,omitempty"`
}

// StepResult represents the outcome of executing a step provider.
// Error is reserved for infrastructure failures; user mistakes and backend
// failures are rendered into View.
type StepResult struct {
	View  string
	Next  *Step
	Error error
}

// Result is what a transport receives for one interaction.
type Result struct {
	View string
	Next *Step
}

// Done reports whether the dialogue ended with this interaction.
func (r Result) Done() bool {
	return r.Next == nil
}

// StepProvider implements one stage of a dialogue.
type StepProvider interface {
	// Validate decides whether the interaction is acceptable after previous.
	// It must not mutate anything.
	Validate(in Interaction, previous *Step) bool

	// Execute performs the step's side effects and decides the next step.
	Execute(ctx context.Context, in Interaction, previous *Step) StepResult

	// CreateView renders the text shown for step.
	CreateView(step *Step) string
}

// PostStepAction runs after the entry step created a fresh step for its action.
type PostStepAction interface {
	Execute(ctx context.Context, step *Step) error

	// PrepareStep returns the step that becomes current, or nil to end the dialogue.
	PrepareStep(step *Step) *Step
}

// ViewProvider renders the view of an entry step for one action.
type ViewProvider interface {
	View(step *Step) string
}

// ViewFunc adapts a plain function to ViewProvider.
type ViewFunc func(step *Step) string

func (f ViewFunc) View(step *Step) string { return f(step) }

// ChainStorage handles persistence of step chains.
type ChainStorage interface {
	Save(ctx context.Context, chain *Chain) error
	Load(ctx context.Context, userID string) (*Chain, error)
	Delete(ctx context.Context, userID string) error
}
