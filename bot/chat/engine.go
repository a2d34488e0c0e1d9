package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"TimerBot/internal/lib/sl"
)

var (
	ErrMissingUser     = errors.New("interaction has no user id")
	ErrNoProviders     = errors.New("no step providers registered")
	ErrProviderOrdinal = errors.New("step provider registered out of order")
)

// Resolver routes every interaction to the step provider for the user's
// position in the dialogue. Interactions of one user never overlap.
type Resolver struct {
	providers []StepProvider
	sessions  *SessionStore
	locks     *keyedMutex
	log       *slog.Logger
	listener  MessageListener
}

func NewResolver(sessions *SessionStore, log *slog.Logger) *Resolver {
	return &Resolver{
		sessions: sessions,
		locks:    newKeyedMutex(),
		log:      log.With(sl.Module("chat.resolver")),
	}
}

// SetMessageListener sets the listener notified about handled interactions.
func (r *Resolver) SetMessageListener(l MessageListener) {
	r.listener = l
}

// AddStepProvider registers p for steps of the given ordinal. Providers are
// added in ordinal order starting at 0.
func (r *Resolver) AddStepProvider(ordinal int, p StepProvider) error {
	if ordinal != len(r.providers) {
		return fmt.Errorf("%w: got %d, expected %d", ErrProviderOrdinal, ordinal, len(r.providers))
	}
	r.providers = append(r.providers, p)
	r.log.Debug("step provider registered", slog.Int("ordinal", ordinal))
	return nil
}

// Resolve handles one interaction and returns the view for the user.
// The error is reserved for failures of the session storage or of the
// infrastructure behind a provider. Result.Next is a copy detached from
// the session.
func (r *Resolver) Resolve(ctx context.Context, in Interaction) (Result, error) {
	if err := r.check(in); err != nil {
		return Result{}, err
	}
	unlock := r.locks.Lock(in.UserID)
	defer unlock()

	return r.resolve(ctx, in)
}

// Restart drops the user's dialogue and resolves in as the opening of a
// new one, without letting other interactions of the user in between.
func (r *Resolver) Restart(ctx context.Context, in Interaction) (Result, error) {
	if err := r.check(in); err != nil {
		return Result{}, err
	}
	unlock := r.locks.Lock(in.UserID)
	defer unlock()

	if err := r.sessions.Clear(ctx, in.UserID); err != nil {
		return Result{}, err
	}
	return r.resolve(ctx, in)
}

func (r *Resolver) check(in Interaction) error {
	if in.UserID == "" {
		return ErrMissingUser
	}
	if len(r.providers) == 0 {
		return ErrNoProviders
	}
	return nil
}

// resolve runs with the user's lock held.
func (r *Resolver) resolve(ctx context.Context, in Interaction) (Result, error) {
	log := r.log.With(slog.String("user_id", in.UserID))

	current, err := r.sessions.Current(ctx, in.UserID)
	if err != nil {
		return Result{}, err
	}

	ordinal := 0
	if current != nil {
		ordinal = current.Ordinal + 1
	}

	if ordinal >= len(r.providers) {
		log.Warn("no provider for session, clearing", slog.Int("ordinal", ordinal))
		if err = r.sessions.Clear(ctx, in.UserID); err != nil {
			return Result{}, err
		}
		return r.notify(ctx, in, Result{View: WrongInputView}), nil
	}

	provider := r.providers[ordinal]
	if !provider.Validate(in, current) {
		log.Debug("invalid reply",
			slog.Int("ordinal", ordinal),
			slog.String("value", in.Value),
		)
		return r.notify(ctx, in, Result{View: WrongInputView, Next: detach(current)}), nil
	}

	res := provider.Execute(ctx, in, current)
	if res.Error != nil {
		log.With(
			slog.Int("ordinal", ordinal),
			sl.Err(res.Error),
		).Error("step execution failed")
		if err = r.sessions.Clear(ctx, in.UserID); err != nil {
			log.With(sl.Err(err)).Error("clearing session")
		}
		view := res.View
		if view == "" {
			view = BackendErrorView
		}
		return Result{View: view}, fmt.Errorf("executing step %d: %w", ordinal, res.Error)
	}

	if res.Next != nil {
		err = r.sessions.Commit(ctx, res.Next)
	} else {
		err = r.sessions.Clear(ctx, in.UserID)
	}
	if err != nil {
		return Result{View: res.View}, err
	}

	log.Debug("interaction resolved",
		slog.Int("ordinal", ordinal),
		slog.Bool("done", res.Next == nil),
	)
	return r.notify(ctx, in, Result{View: res.View, Next: detach(res.Next)}), nil
}

// Reset drops any dialogue in progress for the user.
func (r *Resolver) Reset(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUser
	}
	unlock := r.locks.Lock(userID)
	defer unlock()

	return r.sessions.Clear(ctx, userID)
}

// Current returns a copy of the user's current step, or nil when no
// dialogue is open. The copy is safe to read while the user keeps talking.
func (r *Resolver) Current(ctx context.Context, userID string) (*Step, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	unlock := r.locks.Lock(userID)
	defer unlock()

	step, err := r.sessions.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	return detach(step), nil
}

func (r *Resolver) notify(ctx context.Context, in Interaction, res Result) Result {
	if r.listener == nil {
		return res
	}
	if err := r.listener.SaveInteraction(ctx, in, res); err != nil {
		r.log.With(
			slog.String("user_id", in.UserID),
			sl.Err(err),
		).Warn("saving interaction")
	}
	return res
}
