package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingAction  = errors.New("step has no action")
	ErrUnknownOption  = errors.New("unknown option")
	ErrActionMismatch = errors.New("action differs from chain action")
	ErrCorruptChain   = errors.New("corrupt step chain")
)

// Step is one stage of a user's dialogue. Steps live in the arena of their
// Chain; Parent is the arena index of the step that produced this one.
type Step struct {
	ID        string                     `json:"id"`
	Ordinal   int                        `json:"ordinal"`
	Parent    int                        `json:"parent"`
	Action    Action                     `json:"action"`
	Options   Options                    `json:"options"`
	Params    map[string]json.RawMessage `json:"params,omitempty"`
	CreatedAt time.Time                  `json:"created_at"`

	chain *Chain
}

// GetAction returns the flow this step belongs to.
func (s *Step) GetAction() (Action, error) {
	if s == nil || s.Action == "" {
		return "", ErrMissingAction
	}
	return s.Action, nil
}

// GetOption resolves a user token against the options offered by this step.
func (s *Step) GetOption(token string) (Option, error) {
	opt, ok := s.Options.Get(token)
	if !ok {
		return Option{}, fmt.Errorf("%w: %q", ErrUnknownOption, token)
	}
	return opt, nil
}

// GetOptions returns a copy of the offered options.
func (s *Step) GetOptions() Options {
	out := make(Options, len(s.Options))
	copy(out, s.Options)
	return out
}

// GetParam decodes the param stored under key into out.
// It reports false when the key is absent.
func (s *Step) GetParam(key string, out any) (bool, error) {
	raw, ok := s.Params[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("decoding param %s: %w", key, err)
	}
	return true, nil
}

func (s *Step) HasParam(key string) bool {
	_, ok := s.Params[key]
	return ok
}

// AddParam stores value under key, replacing any previous value.
func (s *Step) AddParam(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding param %s: %w", key, err)
	}
	if s.Params == nil {
		s.Params = make(map[string]json.RawMessage)
	}
	s.Params[key] = raw
	return nil
}

// PreviousStep returns the step that produced this one, or nil for the first step.
func (s *Step) PreviousStep() *Step {
	if s == nil || s.chain == nil || s.Parent < 0 || s.Parent >= len(s.chain.Steps) {
		return nil
	}
	return s.chain.Steps[s.Parent]
}

// Ancestor walks back to the step with the given ordinal.
func (s *Step) Ancestor(ordinal int) *Step {
	for step := s; step != nil; step = step.PreviousStep() {
		if step.Ordinal == ordinal {
			return step
		}
	}
	return nil
}

// UserID returns the owner of the chain holding this step.
func (s *Step) UserID() string {
	if s == nil || s.chain == nil {
		return ""
	}
	return s.chain.UserID
}

// Chain is the arena of steps of one in-progress dialogue; the index of a
// step equals its ordinal and the last step is the current one.
type Chain struct {
	UserID    string    `json:"user_id"`
	Steps     []*Step   `json:"steps"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewChain(userID string) *Chain {
	return &Chain{
		UserID:    userID,
		UpdatedAt: time.Now(),
	}
}

// Tail returns the current step, or nil for an empty chain.
func (c *Chain) Tail() *Step {
	if c == nil || len(c.Steps) == 0 {
		return nil
	}
	return c.Steps[len(c.Steps)-1]
}

// Action returns the action fixed by the first step.
func (c *Chain) Action() Action {
	if c == nil || len(c.Steps) == 0 {
		return ""
	}
	return c.Steps[0].Action
}

// push appends a step after the tail. The first step fixes the chain action;
// later steps must repeat it.
func (c *Chain) push(options Options, action Action) (*Step, error) {
	if action == "" {
		return nil, ErrMissingAction
	}
	tail := c.Tail()
	if tail != nil && action != c.Action() {
		return nil, fmt.Errorf("%w: chain %s, got %s", ErrActionMismatch, c.Action(), action)
	}

	step := &Step{
		ID:        uuid.NewString(),
		Ordinal:   len(c.Steps),
		Parent:    len(c.Steps) - 1,
		Action:    action,
		Options:   options.withQuit(),
		CreatedAt: time.Now(),
		chain:     c,
	}
	c.Steps = append(c.Steps, step)
	c.UpdatedAt = step.CreatedAt
	return step, nil
}

// Bind restores the back references of decoded steps and checks that the
// arena forms a single chain with one action.
func (c *Chain) Bind() error {
	if len(c.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrCorruptChain)
	}
	action := c.Steps[0].Action
	for i, step := range c.Steps {
		if step == nil {
			return fmt.Errorf("%w: missing step %d", ErrCorruptChain, i)
		}
		if step.Ordinal != i || step.Parent != i-1 {
			return fmt.Errorf("%w: step %d has ordinal %d and parent %d", ErrCorruptChain, i, step.Ordinal, step.Parent)
		}
		if step.Action != action {
			return fmt.Errorf("%w: step %d changes action", ErrCorruptChain, i)
		}
		if step.chain == c {
			continue
		}
		step.Options = step.Options.withQuit()
		step.chain = c
	}
	return nil
}

// detach returns a copy of step, bound to a copy of its chain, that
// callers may keep after the session moves on.
func detach(step *Step) *Step {
	if step == nil || step.chain == nil {
		return step
	}
	return step.chain.clone().Steps[step.Ordinal]
}

// clone returns a bound deep copy of the chain.
func (c *Chain) clone() *Chain {
	out := &Chain{
		UserID:    c.UserID,
		Steps:     make([]*Step, len(c.Steps)),
		UpdatedAt: c.UpdatedAt,
	}
	for i, step := range c.Steps {
		cp := *step
		cp.Options = step.GetOptions()
		cp.Params = make(map[string]json.RawMessage, len(step.Params))
		for k, v := range step.Params {
			cp.Params[k] = append(json.RawMessage(nil), v...)
		}
		cp.chain = out
		out.Steps[i] = &cp
	}
	return out
}
