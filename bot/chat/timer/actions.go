package timer

import (
	"context"
	"log/slog"

	"TimerBot/bot/chat"
	"TimerBot/internal/lib/daily"
	"TimerBot/internal/lib/sl"
)

// endDialogue answers from the fetched day alone and ends the dialogue.
type endDialogue struct{}

func (endDialogue) Execute(context.Context, *chat.Step) error { return nil }

func (endDialogue) PrepareStep(*chat.Step) *chat.Step { return nil }

// startAction keeps the dialogue open while there is a project to choose.
type startAction struct{}

func (startAction) Execute(context.Context, *chat.Step) error { return nil }

func (startAction) PrepareStep(step *chat.Step) *chat.Step {
	if len(step.Options.OfType(OptionProject)) == 0 {
		return nil
	}
	return step
}

// stopAction stops the running timer, if any.
type stopAction struct {
	tracker Tracker
	log     *slog.Logger
}

func (a *stopAction) Execute(ctx context.Context, step *chat.Step) error {
	records, err := entriesOf(step)
	if err != nil {
		return err
	}

	entry := daily.FilterCurrentEntry(records.DayEntries)
	if entry == nil {
		return step.AddParam(KeyStopError, NoRunningTasksView)
	}
	if err = step.AddParam(KeyEntry, entry); err != nil {
		return err
	}

	if _, err = a.tracker.ToggleEntry(ctx, step.UserID(), entry.ID); err != nil {
		a.log.With(
			slog.String("user_id", step.UserID()),
			slog.Int64("entry_id", entry.ID),
			sl.Err(err),
		).Error("stop timer")
		return step.AddParam(KeyStopError, StopErrorView)
	}
	return nil
}

func (a *stopAction) PrepareStep(*chat.Step) *chat.Step { return nil }
