package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
	"github.com/dmitrijs2005/taskkeeper/internal/storage"
)

const emptyTaskList = "[]"

// TaskService persists one task list per email under common.TasksKey. The
// raw methods treat the list as an opaque JSON document; Load and Save
// decode it for the client.
type TaskService interface {
	GetUserTasks(ctx context.Context, email string) (string, error)
	SaveUserTasks(ctx context.Context, email, raw string) error
	DeleteUserTasks(ctx context.Context, email string) error

	Load(ctx context.Context, email string) ([]models.Task, error)
	Save(ctx context.Context, email string, tasks []models.Task) error
}

type taskService struct {
	store storage.Store
	log   logging.Logger
}

func NewTaskService(store storage.Store, log logging.Logger) TaskService {
	if log == nil {
		log = logging.NewDiscard()
	}
	return &taskService{store: store, log: log}
}

// GetUserTasks returns the stored list, or "[]" when email has none.
func (s *taskService) GetUserTasks(ctx context.Context, email string) (string, error) {
	data, ok, err := s.store.Get(ctx, common.TasksKey(email))
	if err != nil {
		s.log.Error(ctx, "task list read failed", "email", email, "error", err)
		return "", fmt.Errorf("failed to load tasks: %w", err)
	}
	if !ok {
		return emptyTaskList, nil
	}
	return string(data), nil
}

// SaveUserTasks overwrites the list of email with raw as is.
func (s *taskService) SaveUserTasks(ctx context.Context, email, raw string) error {
	if err := s.store.Set(ctx, common.TasksKey(email), []byte(raw)); err != nil {
		s.log.Error(ctx, "task list write failed", "email", email, "error", err)
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	return nil
}

// DeleteUserTasks removes the list of email. Removing a missing list is not
// an error.
func (s *taskService) DeleteUserTasks(ctx context.Context, email string) error {
	if err := s.store.Delete(ctx, common.TasksKey(email)); err != nil {
		s.log.Error(ctx, "task list delete failed", "email", email, "error", err)
		return fmt.Errorf("failed to delete tasks: %w", err)
	}
	return nil
}

func (s *taskService) Load(ctx context.Context, email string) ([]models.Task, error) {
	raw, err := s.GetUserTasks(ctx, email)
	if err != nil {
		return nil, err
	}
	tasks := []models.Task{}
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, fmt.Errorf("task list of %s is not valid JSON: %w", email, err)
	}
	return tasks, nil
}

func (s *taskService) Save(ctx context.Context, email string, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("task list encoding: %w", err)
	}
	return s.SaveUserTasks(ctx, email, string(data))
}

// Status filters for FilterTasks.
const (
	StatusAll       = "all"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Sort keys for SortTasks.
const (
	SortByDueDate  = "dueDate"
	SortByPriority = "priority"
	SortByName     = "name"
)

// FilterTasks returns the tasks matching status (all, active, completed)
// and priority ("all" or "" matches any). The input is not modified.
func FilterTasks(tasks []models.Task, status string, priority string) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		switch status {
		case StatusCompleted:
			if !t.Completed {
				continue
			}
		case StatusActive:
			if t.Completed {
				continue
			}
		}
		if priority != "" && priority != StatusAll && string(t.Priority) != priority {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SortTasks orders tasks in place by dueDate, priority (high first) or
// name. Unknown keys keep the current order. Tasks without a parseable due
// date sort after dated ones.
func SortTasks(tasks []models.Task, by string) {
	var less func(a, b models.Task) bool
	switch by {
	case SortByDueDate:
		less = func(a, b models.Task) bool {
			da, okA := parseDueDate(a.DueDate)
			db, okB := parseDueDate(b.DueDate)
			if okA != okB {
				return okA
			}
			return da.Before(db)
		}
	case SortByPriority:
		less = func(a, b models.Task) bool { return a.Priority.Rank() < b.Priority.Rank() }
	case SortByName:
		less = func(a, b models.Task) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	default:
		return
	}
	sort.SliceStable(tasks, func(i, j int) bool { return less(tasks[i], tasks[j]) })
}

func parseDueDate(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
