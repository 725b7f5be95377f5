package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addTask(t *testing.T, a *testApp, name, due, priority string) models.Task {
	t.Helper()
	newScript(t).text(name, "", due, priority, "home, errands ,")
	require.NoError(t, a.AddTask(context.Background()))

	tasks, err := a.store.Tasks().Load(context.Background(), a.email)
	require.NoError(t, err)
	return tasks[len(tasks)-1]
}

func TestAddTask(t *testing.T) {
	a := newTestApp(t)
	registerAnn(t, a)

	origNow := nowFn
	nowFn = func() time.Time { return time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { nowFn = origNow })

	task := addTask(t, a, "Buy milk", "2026-04-03", "")

	assert.Len(t, task.ID, 36)
	assert.Equal(t, "Buy milk", task.Name)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, []string{"home", "errands"}, task.Tags)
	assert.Equal(t, time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC), task.CreatedAt)
	assert.False(t, task.Completed)
}

func TestAddTask_InvalidInput(t *testing.T) {
	a := newTestApp(t)
	registerAnn(t, a)
	ctx := context.Background()

	newScript(t).text("")
	assert.Error(t, a.AddTask(ctx))

	newScript(t).text("x", "", "tomorrow")
	assert.Error(t, a.AddTask(ctx))

	newScript(t).text("x", "", "", "urgent")
	assert.Error(t, a.AddTask(ctx))

	raw, err := a.store.GetUserTasks(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestListTasks_FilterAndSort(t *testing.T) {
	a := newTestApp(t)
	registerAnn(t, a)
	ctx := context.Background()

	addTask(t, a, "Write report", "2026-05-10", "low")
	urgent := addTask(t, a, "Pay rent", "2026-05-01", "high")
	addTask(t, a, "Call mom", "", "medium")

	newScript(t)
	require.NoError(t, a.CompleteTask(ctx, []string{shortID(urgent.ID)}))

	s := newScript(t)
	require.NoError(t, a.ListTasks(ctx, []string{"-sort", "dueDate"}))
	lines := strings.Split(s.output(), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "PRIORITY")
	assert.Contains(t, lines[1], "Pay rent")
	assert.Contains(t, lines[1], "[x]")
	assert.Contains(t, lines[2], "Write report")
	assert.Contains(t, lines[3], "Call mom")

	s = newScript(t)
	require.NoError(t, a.ListTasks(ctx, []string{"-status", "active", "-sort", "name"}))
	lines = strings.Split(s.output(), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Call mom")
	assert.Contains(t, lines[2], "Write report")

	s = newScript(t)
	require.NoError(t, a.ListTasks(ctx, []string{"-priority", "high", "-status", "active"}))
	assert.Equal(t, "No tasks", s.output())

	assert.Error(t, a.ListTasks(ctx, []string{"-bogus"}))
}

func TestCompleteAndRemoveTask(t *testing.T) {
	a := newTestApp(t)
	registerAnn(t, a)
	ctx := context.Background()

	task := addTask(t, a, "Buy milk", "", "")

	s := newScript(t)
	require.NoError(t, a.CompleteTask(ctx, []string{task.ID[:4]}))
	require.NoError(t, a.CompleteTask(ctx, []string{task.ID[:4]}))
	assert.Equal(t, "Completed Buy milk\nReopened Buy milk", s.output())

	assert.Error(t, a.RemoveTask(ctx, nil))
	assert.Error(t, a.RemoveTask(ctx, []string{"not-an-id"}))

	require.NoError(t, a.RemoveTask(ctx, []string{task.ID}))
	tasks, err := a.store.Tasks().Load(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestFindTask(t *testing.T) {
	tasks := []models.Task{{ID: "abc123"}, {ID: "abd456"}, {ID: "xyz789"}}

	i, err := findTask(tasks, "abc")
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	_, err = findTask(tasks, "ab")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = findTask(tasks, "q")
	assert.ErrorContains(t, err, "no task")
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    models.Priority
		wantErr bool
	}{
		{"", models.PriorityMedium, false},
		{"HIGH", models.PriorityHigh, false},
		{" low ", models.PriorityLow, false},
		{"asap", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePriority(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "01234567", shortID("0123456789"))
}
