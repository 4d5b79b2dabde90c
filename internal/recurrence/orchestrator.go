package recurrence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"task-engine/internal/model"
)

// TaskStore is the task persistence the orchestrator needs.
type TaskStore interface {
	Get(ctx context.Context, id int64) (*model.Task, error)
	Insert(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, id int64, fields map[string]any) error
	FindSuccessor(ctx context.Context, predecessorID int64) (*model.Task, error)
}

// SubtaskStore copies checklist items onto spawned occurrences.
type SubtaskStore interface {
	ListByTask(ctx context.Context, taskID int64) ([]model.Subtask, error)
	InsertMany(ctx context.Context, subtasks []model.Subtask) error
}

// Outcome classifies what a completion event produced.
type Outcome string

const (
	// OutcomeNotRecurring: the completed task carries no recurrence; nothing to do.
	OutcomeNotRecurring Outcome = "not_recurring"
	// OutcomeSeriesTerminated: the series reached its end date or occurrence cap.
	OutcomeSeriesTerminated Outcome = "series_terminated"
	// OutcomeAlreadySpawned: a successor for this predecessor already exists.
	OutcomeAlreadySpawned Outcome = "already_spawned"
	// OutcomeSuccessorCreated: a new occurrence was persisted.
	OutcomeSuccessorCreated Outcome = "successor_created"
)

// Result reports the effect of one completion event.
type Result struct {
	Outcome   Outcome
	Successor *model.Task
	NextDue   time.Time
}

// Orchestrator spawns the next occurrence of a recurring series when one of
// its tasks is completed. Terminated series are absorbing: once the policy
// says stop, no later event appends another occurrence.
type Orchestrator struct {
	tasks    TaskStore
	subtasks SubtaskStore
}

func NewOrchestrator(tasks TaskStore, subtasks SubtaskStore) *Orchestrator {
	return &Orchestrator{tasks: tasks, subtasks: subtasks}
}

// OnTaskCompleted reacts to a task reaching completed status. A store failure
// while creating the successor is surfaced as a hard error: an un-created
// occurrence is a scheduling gap the caller must know about.
func (o *Orchestrator) OnTaskCompleted(ctx context.Context, taskID int64) (*Result, error) {
	task, err := o.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("load task %d: %w", taskID, err)
	}

	if !task.IsRecurring {
		return &Result{Outcome: OutcomeNotRecurring}, nil
	}

	nextDue, err := NextOccurrence(task.DueDate, Pattern(task.RecurrencePattern), task.RecurrenceInterval, storedWeekday(task))
	if err != nil {
		return nil, fmt.Errorf("task %d: %w", taskID, err)
	}

	occurrence := task.RecurrenceCount
	if occurrence < 1 {
		occurrence = 1
	}

	if !ShouldContinue(nextDue, task.RecurrenceEndDate, task.RecurrenceMaxCount, occurrence) {
		return &Result{Outcome: OutcomeSeriesTerminated, NextDue: nextDue}, nil
	}

	// Duplicate completion triggers must not fork the series. The pre-check
	// handles the common retry; the unique index on predecessor_id closes the
	// race under concurrent invocation.
	if existing, err := o.tasks.FindSuccessor(ctx, task.ID); err != nil {
		return nil, fmt.Errorf("check successor of task %d: %w", taskID, err)
	} else if existing != nil {
		return &Result{Outcome: OutcomeAlreadySpawned, Successor: existing, NextDue: existing.DueDate}, nil
	}

	// Tasks created before series tracking existed carry no series id; the
	// first spawn names the series and stamps the predecessor too, so the
	// whole chain stays queryable by one id.
	seriesID := task.RecurrenceSeriesID
	if seriesID == "" {
		seriesID = uuid.NewString()
		if err := o.tasks.Update(ctx, task.ID, map[string]any{"recurrence_series_id": seriesID}); err != nil {
			return nil, fmt.Errorf("stamp series id on task %d: %w", taskID, err)
		}
	}

	successor := spawnFrom(task, nextDue, seriesID, occurrence+1)
	if err := o.tasks.Insert(ctx, successor); err != nil {
		return nil, fmt.Errorf("create successor of task %d: %w", taskID, err)
	}

	if err := o.copySubtasks(ctx, task.ID, successor.ID); err != nil {
		return nil, err
	}

	return &Result{Outcome: OutcomeSuccessorCreated, Successor: successor, NextDue: nextDue}, nil
}

// spawnFrom builds the next occurrence. The recurrence weekday travels with
// every occurrence so the series stays pinned to the weekday chosen at
// creation, however many iterations have passed.
func spawnFrom(task *model.Task, nextDue time.Time, seriesID string, occurrence int) *model.Task {
	pred := task.ID
	return &model.Task{
		ProjectID:     task.ProjectID,
		Title:         task.Title,
		Description:   task.Description,
		Priority:      task.Priority,
		Status:        model.StatusOngoing,
		DueDate:       nextDue,
		OwnerID:       task.OwnerID,
		Collaborators: task.Collaborators,
		AttachmentRef: task.AttachmentRef,

		IsRecurring:        true,
		RecurrencePattern:  task.RecurrencePattern,
		RecurrenceInterval: task.RecurrenceInterval,
		RecurrenceWeekday:  task.RecurrenceWeekday,
		RecurrenceEndDate:  task.RecurrenceEndDate,
		RecurrenceCount:    occurrence,
		RecurrenceMaxCount: task.RecurrenceMaxCount,
		RecurrenceSeriesID: seriesID,
		PredecessorID:      &pred,
	}
}

func (o *Orchestrator) copySubtasks(ctx context.Context, fromTaskID, toTaskID int64) error {
	subtasks, err := o.subtasks.ListByTask(ctx, fromTaskID)
	if err != nil {
		return fmt.Errorf("list subtasks of task %d: %w", fromTaskID, err)
	}
	if len(subtasks) == 0 {
		return nil
	}

	copies := make([]model.Subtask, 0, len(subtasks))
	for _, st := range subtasks {
		copies = append(copies, model.Subtask{
			TaskID: toTaskID,
			Title:  st.Title,
			Status: model.SubtaskNotStarted,
		})
	}
	if err := o.subtasks.InsertMany(ctx, copies); err != nil {
		return fmt.Errorf("copy subtasks to task %d: %w", toTaskID, err)
	}
	return nil
}

func storedWeekday(task *model.Task) *time.Weekday {
	if task.RecurrenceWeekday == nil {
		return nil
	}
	wd := time.Weekday(*task.RecurrenceWeekday)
	return &wd
}
