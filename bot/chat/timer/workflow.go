// Package timer implements the status, start and stop dialogues of the
// time-tracking bot on top of the chat step engine.
package timer

import (
	"context"
	"log/slog"

	"TimerBot/bot/chat"
	"TimerBot/entity"
	"TimerBot/internal/lib/sl"
)

const (
	ActionStatus chat.Action = "status"
	ActionStart  chat.Action = "start"
	ActionStop   chat.Action = "stop"
)

const (
	OptionProject chat.OptionType = "project"
	OptionTask    chat.OptionType = "task"
)

// Step param keys
const (
	KeyEntries        = "entries"
	KeyEntry          = "entry"
	KeyToggled        = "toggled"
	KeyStopError      = "stopError"
	KeySelectedOption = "selectedOption"
	KeyError          = "error"
)

// Tracker is the time-tracking backend.
type Tracker interface {
	ListTasksAndEntries(ctx context.Context, userID string) (*entity.Daily, error)
	CreateEntry(ctx context.Context, userID string, projectID, taskID int64) (*entity.DayEntry, error)
	ToggleEntry(ctx context.Context, userID string, entryID int64) (*entity.DayEntry, error)
}

// Register adds the timer providers to the resolver at ordinals 0, 1 and 2.
func Register(resolver *chat.Resolver, sessions *chat.SessionStore, tracker Tracker, log *slog.Logger) error {
	log = log.With(sl.Module("chat.timer"))

	entry, err := NewEntryStep(sessions, tracker, log)
	if err != nil {
		return err
	}

	providers := []chat.StepProvider{
		entry,
		&ProjectStep{Continuation: chat.Continuation{Sessions: sessions}},
		&TaskStep{Continuation: chat.Continuation{Sessions: sessions}, tracker: tracker, log: log},
	}
	for ordinal, p := range providers {
		if err = resolver.AddStepProvider(ordinal, p); err != nil {
			return err
		}
	}
	return nil
}

// Commands lists the actions a transport may expose as commands.
func Commands() []chat.Action {
	return []chat.Action{ActionStatus, ActionStart, ActionStop}
}

var descriptions = map[chat.Action]string{
	ActionStatus: "Show the running timer",
	ActionStart:  "Start a timer, optionally filtered by project name",
	ActionStop:   "Stop the running timer",
}

// Description is the help text shown next to a command.
func Description(action chat.Action) string {
	return descriptions[action]
}
