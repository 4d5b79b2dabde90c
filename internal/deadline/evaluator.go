package deadline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"task-engine/internal/calendar"
	"task-engine/internal/model"
)

// upcomingOffsets are the look-ahead windows, in days, swept on every
// upcoming-deadline check.
var upcomingOffsets = []int{1, 3, 7}

// TaskQueries is the task-store surface the evaluator scans.
type TaskQueries interface {
	ListDueOn(ctx context.Context, date time.Time) ([]model.Task, error)
	ListOverdue(ctx context.Context, before time.Time) ([]model.Task, error)
}

// NotificationStore persists reminders with an unread-dedup read path.
type NotificationStore interface {
	FindUnread(ctx context.Context, taskID, empID int64, typ string, dayOffset int) (*model.Notification, error)
	Insert(ctx context.Context, n *model.Notification) error
	RefreshSentAt(ctx context.Context, id int64, at time.Time) error
}

// EmployeeDirectory answers whether a recipient id names a real employee.
type EmployeeDirectory interface {
	Exists(ctx context.Context, empID int64) (bool, error)
}

// OffsetCounts breaks a sweep down per look-ahead window.
type OffsetCounts struct {
	Tasks      int `json:"tasks"`
	Created    int `json:"created"`
	Duplicates int `json:"duplicates"`
}

// Report is the structured outcome of one evaluator run. A skipped run is
// distinguishable from a completed run that found nothing due.
type Report struct {
	Skipped           bool                 `json:"skipped"`
	TasksScanned      int                  `json:"tasks_scanned"`
	Created           int                  `json:"created"`
	Duplicates        int                  `json:"duplicates_prevented"`
	SkippedRecipients int                  `json:"skipped_recipients"`
	Failures          int                  `json:"failures"`
	PerOffset         map[int]OffsetCounts `json:"per_offset,omitempty"`
}

// Outcome renders the report as one of the caller-facing states.
func (r *Report) Outcome() string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Failures > 0:
		return "completed_with_failures"
	case r.Created == 0 && r.TasksScanned == 0:
		return "no_matching_tasks"
	default:
		return "completed"
	}
}

// Evaluator reconciles task due dates against the current date and emits
// idempotent notifications. Failures on individual tasks or recipients are
// counted and logged, never fatal to the batch.
type Evaluator struct {
	tasks         TaskQueries
	notifications NotificationStore
	directory     EmployeeDirectory
	clock         *calendar.Clock
	throttle      *Throttle
}

func NewEvaluator(tasks TaskQueries, notifications NotificationStore, directory EmployeeDirectory, clock *calendar.Clock, throttle *Throttle) *Evaluator {
	return &Evaluator{
		tasks:         tasks,
		notifications: notifications,
		directory:     directory,
		clock:         clock,
		throttle:      throttle,
	}
}

// CheckUpcoming scans for tasks due 1, 3 and 7 days out and notifies every
// recipient once per (task, recipient, offset). Gated by the cooldown unless
// force is set.
func (e *Evaluator) CheckUpcoming(ctx context.Context, force bool) (*Report, error) {
	if !e.throttle.ShouldRun(force) {
		return &Report{Skipped: true}, nil
	}

	report := &Report{PerOffset: make(map[int]OffsetCounts)}
	for _, offset := range upcomingOffsets {
		target := e.clock.Today(offset)
		tasks, err := e.tasks.ListDueOn(ctx, target)
		if err != nil {
			log.Printf("deadline: list tasks due %s: %v", target.Format("2006-01-02"), err)
			report.Failures++
			continue
		}

		counts := OffsetCounts{Tasks: len(tasks)}
		report.TasksScanned += len(tasks)
		for _, task := range tasks {
			created, dupes := e.notifyRecipients(ctx, task, model.TypeUpcomingDeadline, offset, report)
			counts.Created += created
			counts.Duplicates += dupes
		}
		report.PerOffset[offset] = counts
		report.Created += counts.Created
		report.Duplicates += counts.Duplicates
	}
	return report, nil
}

// CheckMissed scans every overdue task, however stale, and notifies each
// recipient once. Not throttled: overdue state does not churn the way the
// rolling upcoming windows do, and a missed sweep must never be silently
// swallowed by the gate.
func (e *Evaluator) CheckMissed(ctx context.Context) (*Report, error) {
	today := e.clock.Today(0)
	tasks, err := e.tasks.ListOverdue(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("list overdue tasks: %w", err)
	}

	report := &Report{TasksScanned: len(tasks)}
	for _, task := range tasks {
		created, dupes := e.notifyRecipients(ctx, task, model.TypeDeadlineMissed, 0, report)
		report.Created += created
		report.Duplicates += dupes
	}
	return report, nil
}

// Status reports the cooldown gate for observability.
func (e *Evaluator) Status() ThrottleStatus {
	return e.throttle.Status()
}

// notifyRecipients emits one notification per resolved recipient, deduping
// against existing unread rows. The read-then-write here is a first line of
// defense only; the partial unique index on notifications makes the dedup
// race-free across processes.
func (e *Evaluator) notifyRecipients(ctx context.Context, task model.Task, typ string, offset int, report *Report) (created, duplicates int) {
	recipients, skipped := resolveRecipients(task)
	report.SkippedRecipients += skipped

	for _, empID := range recipients {
		if ok, err := e.directory.Exists(ctx, empID); err != nil {
			log.Printf("deadline: directory lookup emp %d: %v", empID, err)
			report.Failures++
			continue
		} else if !ok {
			report.SkippedRecipients++
			continue
		}

		existing, err := e.notifications.FindUnread(ctx, task.ID, empID, typ, offset)
		if err != nil {
			log.Printf("deadline: find unread (task %d, emp %d): %v", task.ID, empID, err)
			report.Failures++
			continue
		}
		if existing != nil {
			if err := e.notifications.RefreshSentAt(ctx, existing.ID, e.clock.Now()); err != nil {
				log.Printf("deadline: refresh notification %d: %v", existing.ID, err)
				report.Failures++
				continue
			}
			duplicates++
			continue
		}

		n := buildNotification(task, empID, typ, offset, e.clock.Now())
		if err := e.notifications.Insert(ctx, n); err != nil {
			log.Printf("deadline: insert notification (task %d, emp %d): %v", task.ID, empID, err)
			report.Failures++
			continue
		}
		created++
	}
	return created, duplicates
}

func buildNotification(task model.Task, empID int64, typ string, offset int, now time.Time) *model.Notification {
	n := &model.Notification{
		EmpID:     empID,
		TaskID:    task.ID,
		Type:      typ,
		DayOffset: offset,
		SentAt:    now,
	}
	due := task.DueDate.Format("2006-01-02")
	switch typ {
	case model.TypeUpcomingDeadline:
		n.Title = fmt.Sprintf("%d days before %s is due", offset, task.Title)
		n.Description = fmt.Sprintf("Task %q is due on %s.", task.Title, due)
	case model.TypeDeadlineMissed:
		n.Title = fmt.Sprintf("Deadline missed for %s", task.Title)
		n.Description = fmt.Sprintf("Task %q was due on %s and is not completed.", task.Title, due)
	}
	return n
}

// resolveRecipients returns the owner plus every well-formed collaborator id,
// deduplicated. Malformed collaborator entries are dropped and counted, never
// fatal.
func resolveRecipients(task model.Task) (ids []int64, skipped int) {
	seen := map[int64]struct{}{task.OwnerID: {}}
	ids = []int64{task.OwnerID}

	if len(task.Collaborators) == 0 {
		return ids, 0
	}

	var raw []any
	if err := json.Unmarshal(task.Collaborators, &raw); err != nil {
		log.Printf("deadline: task %d collaborators not a JSON array: %v", task.ID, err)
		return ids, 1
	}

	for _, entry := range raw {
		id, ok := parseEmpID(entry)
		if !ok {
			skipped++
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, skipped
}

// parseEmpID accepts JSON numbers and numeric strings; anything else is
// malformed. Ids are normalized here once, not coerced per comparison.
func parseEmpID(entry any) (int64, bool) {
	switch v := entry.(type) {
	case float64:
		if v != math.Trunc(v) || v <= 0 {
			return 0, false
		}
		return int64(v), true
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}
