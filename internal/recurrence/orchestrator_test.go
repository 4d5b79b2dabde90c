package recurrence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"task-engine/internal/calendar"
	"task-engine/internal/model"
)

// mockTaskStore implements TaskStore with overridable functions.
type mockTaskStore struct {
	GetFunc           func(ctx context.Context, id int64) (*model.Task, error)
	InsertFunc        func(ctx context.Context, task *model.Task) error
	UpdateFunc        func(ctx context.Context, id int64, fields map[string]any) error
	FindSuccessorFunc func(ctx context.Context, predecessorID int64) (*model.Task, error)
}

func (m *mockTaskStore) Get(ctx context.Context, id int64) (*model.Task, error) {
	return m.GetFunc(ctx, id)
}

func (m *mockTaskStore) Insert(ctx context.Context, task *model.Task) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, task)
	}
	return nil
}

func (m *mockTaskStore) Update(ctx context.Context, id int64, fields map[string]any) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, fields)
	}
	return nil
}

func (m *mockTaskStore) FindSuccessor(ctx context.Context, predecessorID int64) (*model.Task, error) {
	if m.FindSuccessorFunc != nil {
		return m.FindSuccessorFunc(ctx, predecessorID)
	}
	return nil, nil
}

type mockSubtaskStore struct {
	ListByTaskFunc func(ctx context.Context, taskID int64) ([]model.Subtask, error)
	InsertManyFunc func(ctx context.Context, subtasks []model.Subtask) error
}

func (m *mockSubtaskStore) ListByTask(ctx context.Context, taskID int64) ([]model.Subtask, error) {
	if m.ListByTaskFunc != nil {
		return m.ListByTaskFunc(ctx, taskID)
	}
	return nil, nil
}

func (m *mockSubtaskStore) InsertMany(ctx context.Context, subtasks []model.Subtask) error {
	if m.InsertManyFunc != nil {
		return m.InsertManyFunc(ctx, subtasks)
	}
	return nil
}

func intPtr(v int) *int { return &v }

func weeklyWednesdayTask() *model.Task {
	return &model.Task{
		ID:                 41,
		ProjectID:          7,
		Title:              "Weekly report",
		Description:        "Compile numbers",
		Priority:           2,
		Status:             model.StatusCompleted,
		DueDate:            calendar.Date(2025, time.October, 20), // Monday
		OwnerID:            1,
		Collaborators:      datatypes.JSON([]byte(`["2","3"]`)),
		IsRecurring:        true,
		RecurrencePattern:  string(Weekly),
		RecurrenceInterval: 1,
		RecurrenceWeekday:  intPtr(3), // Wednesday
		RecurrenceCount:    1,
		RecurrenceMaxCount: 5,
		RecurrenceSeriesID: "series-41",
	}
}

func TestOnTaskCompleted_NonRecurringIsNoop(t *testing.T) {
	tasks := &mockTaskStore{
		GetFunc: func(ctx context.Context, id int64) (*model.Task, error) {
			return &model.Task{ID: id, IsRecurring: false}, nil
		},
		InsertFunc: func(ctx context.Context, task *model.Task) error {
			t.Fatal("insert must not be called for non-recurring tasks")
			return nil
		},
	}
	o := NewOrchestrator(tasks, &mockSubtaskStore{})

	res, err := o.OnTaskCompleted(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotRecurring, res.Outcome)
	assert.Nil(t, res.Successor)
}

func TestOnTaskCompleted_SpawnsPinnedWeekdaySuccessor(t *testing.T) {
	var inserted *model.Task
	tasks := &mockTaskStore{
		GetFunc: func(ctx context.Context, id int64) (*model.Task, error) {
			return weeklyWednesdayTask(), nil
		},
		InsertFunc: func(ctx context.Context, task *model.Task) error {
			task.ID = 42
			inserted = task
			return nil
		},
	}
	o := NewOrchestrator(tasks, &mockSubtaskStore{})

	res, err := o.OnTaskCompleted(context.Background(), 41)
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccessorCreated, res.Outcome)
	require.NotNil(t, inserted)

	assert.Equal(t, calendar.Date(2025, time.October, 22), inserted.DueDate, "Monday task pinned to Wednesday lands two days later")
	assert.Equal(t, 2, inserted.RecurrenceCount)
	assert.Equal(t, "series-41", inserted.RecurrenceSeriesID)
	assert.Equal(t, model.StatusOngoing, inserted.Status)
	assert.Equal(t, "Weekly report", inserted.Title)
	assert.Equal(t, int64(1), inserted.OwnerID)
	assert.Equal(t, 5, inserted.RecurrenceMaxCount)
	require.NotNil(t, inserted.RecurrenceWeekday)
	assert.Equal(t, 3, *inserted.RecurrenceWeekday)
	require.NotNil(t, inserted.PredecessorID)
	assert.Equal(t, int64(41), *inserted.PredecessorID)
}

func TestOnTaskCompleted_CopiesSubtasksReset(t *testing.T) {
	tasks := &mockTaskStore{
		GetFunc: func(ctx context.Context, id int64) (*model.Task, error) {
			return weeklyWednesdayTask(), nil
		},
		InsertFunc: func(ctx context.Context, task *model.Task) error {
			task.ID = 42
			return nil
		},
	}
	var copied []model.Subtask
	subtasks := &mockSubtaskStore{
		ListByTaskFunc: func(ctx context.Context, taskID int64) ([]model.Subtask, error) {
			return []model.Subtask{
				{ID: 1, TaskID: 41, Title: "Gather data", Status: model.SubtaskDone},
				{ID: 2, TaskID: 41, Title: "Write summary", Status: model.SubtaskOngoing},
			}, nil
		},
		InsertManyFunc: func(ctx context.Context, sts []model.Subtask) error {
			copied = sts
			return nil
		},
	}
	o := NewOrchestrator(tasks, subtasks)

	_, err := o.OnTaskCompleted(context.Background(), 41)
	require.NoError(t, err)
	require.Len(t, copied, 2)
	for _, st := range copied {
		assert.Equal(t, int64(42), st.TaskID)
		assert.Equal(t, model.SubtaskNotStarted, st.Status)
		assert.Zero(t, st.ID, "copies are fresh rows")
	}
}

func TestOnTaskCompleted_BackfillsMissingSeriesID(t *testing.T) {
	task := weeklyWednesdayTask()
	task.RecurrenceSeriesID = ""

	var stamped string
	tasks := &mockTaskStore{
		GetFunc: func(ctx context.Context, id int64) (*model.Task, error) { return task, nil },
		UpdateFunc: func(ctx context.Context, id int64, fields map[string]any) error {
			require.Equal(t, task.ID, id)
			stamped = fields["recurrence_series_id"].(string)
			return nil
		},
		InsertFunc: func(ctx context.Context, task *model.Task) error {
			task.ID = 42
			return nil
		},
	}
	o := NewOrchestrator(tasks, &mockSubtaskStore{})

	res, err := o.OnTaskCompleted(context.Background(), 41)
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccessorCreated, res.Outcome)

	require.NotEmpty(t, stamped, "predecessor gets the new series id")
	assert.Equal(t, stamped, res.Successor.RecurrenceSeriesID, "successor shares it")
}

func TestOnTaskCompleted_SeriesTerminatesAtMaxCount(t *testing.T) {
	task := weeklyWednesdayTask()
	task.RecurrenceCount = 5 // cap is 5

	tasks := &mockTaskStore{
		GetFunc: func(ctx context.Context, id int64) (*model.Task, error) { return task, nil },
		InsertFunc: func(ctx context.Context, task *model.Task) error {
			t.Fatal("terminated series must not spawn")
			return nil
		},
	}
	o := NewOrchestrator(tasks, &mockSubtaskStore{})

	res, err := o.OnTaskCompleted(context.Background(), 41)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSeriesTerminated, res.Outcome)
	assert.Nil(t, res.Successor)
}

func TestOnTaskCompleted_SeriesTerminatesPastEndDate(t *testing.T) {
	task := weeklyWednesdayTask()
	end := calendar.Date(2025, time.October, 21)
	task.RecurrenceEndDate = &end

	tasks := &mockTaskStore{
		GetFunc: func(ctx context.Context, id int64) (*model.Task, error) { return task, nil },
	}
	o := NewOrchestrator(tasks, &mockSubtaskStore{})

	res, err := o.OnTaskCompleted(context.Background(), 41)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSeriesTerminated, res.Outcome)
}

func TestOnTaskCompleted_DuplicateTriggerReturnsExisting(t *testing.T) {
	existing := &model.Task{ID: 42, DueDate: calendar.Date(2025, time.October, 22), RecurrenceCount: 2}
	tasks := &mockTaskStore{
		GetFunc: func(ctx context.Context, id int64) (*model.Task, error) {
			return weeklyWednesdayTask(), nil
		},
		FindSuccessorFunc: func(ctx context.Context, predecessorID int64) (*model.Task, error) {
			return existing, nil
		},
		InsertFunc: func(ctx context.Context, task *model.Task) error {
			t.Fatal("duplicate trigger must not insert a second successor")
			return nil
		},
	}
	o := NewOrchestrator(tasks, &mockSubtaskStore{})

	res, err := o.OnTaskCompleted(context.Background(), 41)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadySpawned, res.Outcome)
	assert.Same(t, existing, res.Successor)
}

func TestOnTaskCompleted_InvalidPatternSurfaces(t *testing.T) {
	task := weeklyWednesdayTask()
	task.RecurrencePattern = "sometimes"

	tasks := &mockTaskStore{
		GetFunc: func(ctx context.Context, id int64) (*model.Task, error) { return task, nil },
	}
	o := NewOrchestrator(tasks, &mockSubtaskStore{})

	_, err := o.OnTaskCompleted(context.Background(), 41)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestOnTaskCompleted_InsertFailureIsHard(t *testing.T) {
	boom := errors.New("disk full")
	tasks := &mockTaskStore{
		GetFunc: func(ctx context.Context, id int64) (*model.Task, error) {
			return weeklyWednesdayTask(), nil
		},
		InsertFunc: func(ctx context.Context, task *model.Task) error { return boom },
	}
	o := NewOrchestrator(tasks, &mockSubtaskStore{})

	_, err := o.OnTaskCompleted(context.Background(), 41)
	assert.ErrorIs(t, err, boom)
}

// Completing occurrences 1..k of a capped series yields exactly k tasks.
func TestOnTaskCompleted_ChainStopsExactlyAtCap(t *testing.T) {
	const maxOccurrences = 5

	chain := []*model.Task{weeklyWednesdayTask()}
	tasks := &mockTaskStore{}
	tasks.GetFunc = func(ctx context.Context, id int64) (*model.Task, error) {
		return chain[len(chain)-1], nil
	}
	tasks.InsertFunc = func(ctx context.Context, task *model.Task) error {
		task.ID = int64(41 + len(chain))
		chain = append(chain, task)
		return nil
	}
	o := NewOrchestrator(tasks, &mockSubtaskStore{})

	for i := 0; i < maxOccurrences+3; i++ {
		res, err := o.OnTaskCompleted(context.Background(), chain[len(chain)-1].ID)
		require.NoError(t, err)
		if res.Outcome == OutcomeSeriesTerminated {
			break
		}
		require.Equal(t, OutcomeSuccessorCreated, res.Outcome)
	}

	require.Len(t, chain, maxOccurrences)
	for i, task := range chain {
		assert.Equal(t, i+1, task.RecurrenceCount)
		assert.Equal(t, "series-41", task.RecurrenceSeriesID)
	}
}
