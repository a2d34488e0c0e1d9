package chat

import (
	"context"
	"fmt"
)

const (
	WrongInputView   = "Wrong input provided, try following the instructions..."
	QuitView         = "Ok, maybe next time. Nothing was changed."
	BackendErrorView = "An error occured, please try again later"
)

// IsRejectResponse reports whether the user asked to abort the dialogue.
func IsRejectResponse(option Option, token string) bool {
	return NormalizeToken(token) == QuitToken || option.Type == OptionSystem
}

// Continuation carries the behaviour shared by every provider past the entry step.
type Continuation struct {
	Sessions *SessionStore
}

// Validate accepts a reply only when it is one of the tokens offered by previous.
func (c Continuation) Validate(in Interaction, previous *Step) bool {
	if previous == nil {
		return false
	}
	return previous.Options.Has(in.Value)
}

func (c Continuation) IsRejectResponse(option Option, token string) bool {
	return IsRejectResponse(option, token)
}

// ExecuteRejectResponse clears the user's session and answers with the quit view.
func (c Continuation) ExecuteRejectResponse(ctx context.Context, userID string) StepResult {
	if err := c.Sessions.Clear(ctx, userID); err != nil {
		return StepResult{View: BackendErrorView, Error: fmt.Errorf("rejecting: %w", err)}
	}
	return StepResult{View: QuitView}
}
