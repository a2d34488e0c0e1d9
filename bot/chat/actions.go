package chat

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrMissingView   = errors.New("action has no view")
)

// ActionTable dispatches entry steps by action over a closed set of actions.
type ActionTable struct {
	actions []Action
	post    map[Action]PostStepAction
	views   map[Action]ViewProvider
}

func NewActionTable(actions ...Action) *ActionTable {
	return &ActionTable{
		actions: actions,
		post:    make(map[Action]PostStepAction),
		views:   make(map[Action]ViewProvider),
	}
}

// HandlePostStep registers the post-step action of a known action.
func (t *ActionTable) HandlePostStep(action Action, p PostStepAction) *ActionTable {
	t.post[action] = p
	return t
}

// HandleView registers the view of a known action.
func (t *ActionTable) HandleView(action Action, v ViewProvider) *ActionTable {
	t.views[action] = v
	return t
}

// Check fails when a handler is registered for an action outside the set,
// or when a known action has no view.
func (t *ActionTable) Check() error {
	for action := range t.post {
		if !t.Known(action) {
			return fmt.Errorf("%w: post-step action %q", ErrUnknownAction, action)
		}
	}
	for action := range t.views {
		if !t.Known(action) {
			return fmt.Errorf("%w: view %q", ErrUnknownAction, action)
		}
	}
	for _, action := range t.actions {
		if _, ok := t.views[action]; !ok {
			return fmt.Errorf("%w: %q", ErrMissingView, action)
		}
	}
	return nil
}

func (t *ActionTable) Known(action Action) bool {
	for _, a := range t.actions {
		if a == action {
			return true
		}
	}
	return false
}

// PostStepAction returns the post-step action of the step's flow, or nil.
func (t *ActionTable) PostStepAction(step *Step) PostStepAction {
	action, err := step.GetAction()
	if err != nil {
		return nil
	}
	return t.post[action]
}

// View renders step with the view of its action. A step without a usable
// action gets the wrong input view.
func (t *ActionTable) View(step *Step) string {
	action, err := step.GetAction()
	if err != nil {
		return WrongInputView
	}
	v, ok := t.views[action]
	if !ok {
		return WrongInputView
	}
	return v.View(step)
}
