package timer

import (
	"context"
	"fmt"
	"log/slog"

	"TimerBot/bot/chat"
	"TimerBot/entity"
	"TimerBot/internal/lib/daily"
	"TimerBot/internal/lib/sl"
)

// EntryStep opens a dialogue: it fetches the user's day from the tracker,
// offers the matching projects and hands over to the action's post-step action.
type EntryStep struct {
	sessions *chat.SessionStore
	tracker  Tracker
	actions  *chat.ActionTable
	log      *slog.Logger
}

func NewEntryStep(sessions *chat.SessionStore, tracker Tracker, log *slog.Logger) (*EntryStep, error) {
	s := &EntryStep{
		sessions: sessions,
		tracker:  tracker,
		log:      log,
	}

	s.actions = chat.NewActionTable(Commands()...).
		HandlePostStep(ActionStatus, endDialogue{}).
		HandlePostStep(ActionStart, startAction{}).
		HandlePostStep(ActionStop, &stopAction{tracker: tracker, log: log}).
		HandleView(ActionStatus, chat.ViewFunc(statusView)).
		HandleView(ActionStart, chat.ViewFunc(startView)).
		HandleView(ActionStop, chat.ViewFunc(stopView))

	if err := s.actions.Check(); err != nil {
		return nil, fmt.Errorf("timer actions: %w", err)
	}
	return s, nil
}

// Validate only starts new dialogues for known actions.
func (s *EntryStep) Validate(in chat.Interaction, previous *chat.Step) bool {
	return previous == nil && s.actions.Known(in.Action)
}

func (s *EntryStep) Execute(ctx context.Context, in chat.Interaction, _ *chat.Step) chat.StepResult {
	records, err := s.tracker.ListTasksAndEntries(ctx, in.UserID)
	if err != nil {
		s.log.With(
			slog.String("user_id", in.UserID),
			slog.String("action", string(in.Action)),
			sl.Err(err),
		).Error("list tasks and entries")
		return chat.StepResult{View: chat.BackendErrorView}
	}

	options := chat.NewOptions()
	for _, m := range daily.FindMatchingClientsOrProjects(in.Name, records.Projects) {
		options = options.Add(chat.Option{Name: m.Title(), ID: m.ProjectID, Type: OptionProject})
	}

	step, err := s.sessions.CreateStep(ctx, in.UserID, options, in.Action)
	if err != nil {
		return chat.StepResult{Error: err}
	}
	if err = step.AddParam(KeyEntries, records); err != nil {
		return chat.StepResult{Error: err}
	}

	post := s.actions.PostStepAction(step)
	if post == nil {
		return chat.StepResult{View: s.CreateView(step), Next: step}
	}
	if err = post.Execute(ctx, step); err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{View: s.CreateView(step), Next: post.PrepareStep(step)}
}

func (s *EntryStep) CreateView(step *chat.Step) string {
	return s.actions.View(step)
}

// ProjectStep takes the chosen project and offers its tasks.
type ProjectStep struct {
	chat.Continuation
}

func (p *ProjectStep) Execute(ctx context.Context, in chat.Interaction, previous *chat.Step) chat.StepResult {
	option, _ := previous.GetOption(in.Value)
	if p.IsRejectResponse(option, in.Value) {
		return p.ExecuteRejectResponse(ctx, in.UserID)
	}

	records, err := entriesOf(previous)
	if err != nil {
		return chat.StepResult{Error: err}
	}

	options := chat.NewOptions()
	for _, t := range daily.ProjectTasks(option.ID, records.Projects) {
		options = options.Add(chat.Option{Name: t.Name, ID: t.ID, Type: OptionTask})
	}

	step, err := p.Sessions.CreateStep(ctx, in.UserID, options, previous.Action)
	if err != nil {
		return chat.StepResult{Error: err}
	}
	if err = step.AddParam(KeySelectedOption, option); err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{View: p.CreateView(step), Next: step}
}

func (p *ProjectStep) CreateView(step *chat.Step) string {
	return tasksView(step)
}

// TaskStep starts the timer for the chosen task: it toggles today's entry
// for the task when one exists, otherwise it creates one. The dialogue ends
// on every path.
type TaskStep struct {
	chat.Continuation
	tracker Tracker
	log     *slog.Logger
}

func (t *TaskStep) Execute(ctx context.Context, in chat.Interaction, previous *chat.Step) chat.StepResult {
	option, _ := previous.GetOption(in.Value)
	if t.IsRejectResponse(option, in.Value) {
		return t.ExecuteRejectResponse(ctx, in.UserID)
	}

	var project chat.Option
	if _, err := previous.GetParam(KeySelectedOption, &project); err != nil {
		return chat.StepResult{Error: err}
	}
	records, err := entriesOf(previous)
	if err != nil {
		return chat.StepResult{Error: err}
	}

	step, err := t.Sessions.CreateStep(ctx, in.UserID, chat.NewOptions(), previous.Action)
	if err != nil {
		return chat.StepResult{Error: err}
	}

	log := t.log.With(
		slog.String("user_id", in.UserID),
		slog.Int64("project_id", project.ID),
		slog.Int64("task_id", option.ID),
	)

	var entry *entity.DayEntry
	existing := daily.DailyEntry(project.ID, option.ID, records.DayEntries)
	if existing == nil {
		entry, err = t.tracker.CreateEntry(ctx, in.UserID, project.ID, option.ID)
	} else {
		entry, err = t.tracker.ToggleEntry(ctx, in.UserID, existing.ID)
	}

	if err == nil && entry == nil {
		err = fmt.Errorf("tracker returned no entry")
	}
	if err != nil {
		log.With(sl.Err(err)).Error("start timer")
		err = step.AddParam(KeyError, err.Error())
	} else {
		err = step.AddParam(KeyEntry, entry)
		if err == nil {
			err = step.AddParam(KeyToggled, existing != nil)
		}
	}
	if err != nil {
		return chat.StepResult{Error: err}
	}

	return chat.StepResult{View: t.CreateView(step)}
}

func (t *TaskStep) CreateView(step *chat.Step) string {
	return timerView(step)
}

// entriesOf reads the day fetched by the entry step of the chain.
func entriesOf(step *chat.Step) (*entity.Daily, error) {
	first := step.Ancestor(0)
	if first == nil {
		return nil, fmt.Errorf("%w: no entry step", chat.ErrCorruptChain)
	}

	var records entity.Daily
	ok, err := first.GetParam(KeyEntries, &records)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", chat.ErrCorruptChain, KeyEntries)
	}
	return &records, nil
}
