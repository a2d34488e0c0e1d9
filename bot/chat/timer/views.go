package timer

import (
	"strings"

	"TimerBot/bot/chat"
	"TimerBot/entity"
	"TimerBot/internal/lib/daily"
)

const (
	NoRunningTasksView = "Currently you have no running tasks."
	StopErrorView      = "An error occured, please try again later."
	NoProjectsView     = "Couldn't find any project for you, try another name or no name at all."
)

func statusView(step *chat.Step) string {
	records, err := entriesOf(step)
	if err != nil {
		return chat.WrongInputView
	}
	entry := daily.FilterCurrentEntry(records.DayEntries)
	if entry == nil {
		return NoRunningTasksView
	}
	return strings.Join([]string{
		"You are currently working on \n",
		entry.Title(),
	}, "\n")
}

func startView(step *chat.Step) string {
	projects := chat.FormatChoices(step.Options, OptionProject, nil)
	if len(projects) == 0 {
		return NoProjectsView
	}

	view := []string{
		"Choose the awesome project you are working on today!",
		"",
	}
	view = append(view, projects...)
	view = append(view,
		"",
		"Just type the number to choose it or write 'no' to quit the timer setup",
	)
	return strings.Join(view, "\n")
}

func stopView(step *chat.Step) string {
	var stopErr string
	if ok, _ := step.GetParam(KeyStopError, &stopErr); ok {
		return stopErr
	}

	var entry entity.DayEntry
	if ok, err := step.GetParam(KeyEntry, &entry); !ok || err != nil {
		return chat.WrongInputView
	}
	return strings.Join([]string{
		"Successfully stopped the timer for ",
		entry.Title(),
	}, "\n")
}

func tasksView(step *chat.Step) string {
	var running []entity.DayEntry
	if records, err := entriesOf(step); err == nil {
		running = records.DayEntries
	}

	view := []string{
		"Cool, love that project!",
		"\n",
		"What task are you on?",
		"\n",
	}
	view = append(view, chat.FormatChoices(step.Options, OptionTask, func(c chat.Choice) string {
		if daily.IsRunningTask(c.Option.ID, running) {
			return " (Currently running)"
		}
		return ""
	})...)
	view = append(view,
		"",
		"Just type the number to choose it or write 'no' if you picked the wrong project.",
	)
	return strings.Join(view, "\n")
}

func timerView(step *chat.Step) string {
	if step.HasParam(KeyError) {
		return chat.BackendErrorView
	}

	var entry entity.DayEntry
	if ok, err := step.GetParam(KeyEntry, &entry); !ok || err != nil {
		return chat.BackendErrorView
	}

	var toggled bool
	if _, err := step.GetParam(KeyToggled, &toggled); err == nil && toggled && !entry.IsRunning() {
		return strings.Join([]string{
			"Successfully stopped the timer for",
			entry.Title(),
		}, "\n")
	}
	return strings.Join([]string{
		"Successfully created and started an entry for",
		entry.Title(),
	}, "\n")
}
