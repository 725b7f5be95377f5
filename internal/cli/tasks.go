package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/models"
	"github.com/dmitrijs2005/taskkeeper/internal/services"
	"github.com/google/uuid"
)

// shortIDLen is how much of a task id the list shows. Any unique prefix
// selects a task.
const shortIDLen = 8

// nowFn is a test seam for task timestamps.
var nowFn = time.Now

func (a *App) AddTask(ctx context.Context) error {
	email, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "Task name", a.out)
	if err != nil {
		return err
	}
	if name == "" {
		return errors.New("task name is required")
	}
	description, err := getSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}
	due, err := getSimpleText(a.reader, "Due date YYYY-MM-DD (optional)", a.out)
	if err != nil {
		return err
	}
	if due != "" {
		if _, err := time.Parse(time.DateOnly, due); err != nil {
			return fmt.Errorf("invalid due date %q", due)
		}
	}
	priority, err := getSimpleText(a.reader, "Priority high/medium/low [medium]", a.out)
	if err != nil {
		return err
	}
	p, err := parsePriority(priority)
	if err != nil {
		return err
	}
	tags, err := getSimpleText(a.reader, "Tags, comma separated (optional)", a.out)
	if err != nil {
		return err
	}

	tasks, err := a.store.Tasks().Load(ctx, email)
	if err != nil {
		return err
	}
	task := models.Task{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		DueDate:     due,
		Priority:    p,
		Tags:        splitTags(tags),
		CreatedAt:   nowFn().UTC(),
	}
	if err := a.store.Tasks().Save(ctx, email, append(tasks, task)); err != nil {
		return err
	}
	printlnFn("Added", shortID(task.ID))
	return nil
}

// ListTasks prints the task list, filtered by -status and -priority and
// ordered by -sort.
func (a *App) ListTasks(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	status := fs.String("status", services.StatusAll, "all, active or completed")
	priority := fs.String("priority", services.StatusAll, "all, high, medium or low")
	sortBy := fs.String("sort", services.SortByDueDate, "dueDate, priority or name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	email, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	tasks, err := a.store.Tasks().Load(ctx, email)
	if err != nil {
		return err
	}

	tasks = services.FilterTasks(tasks, *status, *priority)
	services.SortTasks(tasks, *sortBy)
	if len(tasks) == 0 {
		printlnFn("No tasks")
		return nil
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tPRIORITY\tDUE\tNAME\tTAGS")
	for _, t := range tasks {
		done := " "
		if t.Completed {
			done = "x"
		}
		fmt.Fprintf(tw, "%s\t[%s]\t%s\t%s\t%s\t%s\n",
			shortID(t.ID), done, t.Priority, t.DueDate, t.Name, strings.Join(t.Tags, ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	printlnFn(strings.TrimRight(sb.String(), "\n"))
	return nil
}

// CompleteTask toggles the completed flag of the task with the given id prefix.
func (a *App) CompleteTask(ctx context.Context, args []string) error {
	return a.editTask(ctx, args, "done", func(tasks []models.Task, i int) []models.Task {
		tasks[i].Completed = !tasks[i].Completed
		if tasks[i].Completed {
			printlnFn("Completed", tasks[i].Name)
		} else {
			printlnFn("Reopened", tasks[i].Name)
		}
		return tasks
	})
}

// RemoveTask deletes the task with the given id prefix.
func (a *App) RemoveTask(ctx context.Context, args []string) error {
	return a.editTask(ctx, args, "rm", func(tasks []models.Task, i int) []models.Task {
		printlnFn("Removed", tasks[i].Name)
		return append(tasks[:i], tasks[i+1:]...)
	})
}

func (a *App) editTask(ctx context.Context, args []string, cmd string, edit func([]models.Task, int) []models.Task) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s <id>", cmd)
	}
	email, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	tasks, err := a.store.Tasks().Load(ctx, email)
	if err != nil {
		return err
	}
	i, err := findTask(tasks, args[0])
	if err != nil {
		return err
	}
	return a.store.Tasks().Save(ctx, email, edit(tasks, i))
}

func findTask(tasks []models.Task, prefix string) (int, error) {
	found := -1
	for i, t := range tasks {
		if !strings.HasPrefix(t.ID, prefix) {
			continue
		}
		if found >= 0 {
			return -1, fmt.Errorf("task id %q is ambiguous", prefix)
		}
		found = i
	}
	if found < 0 {
		return -1, fmt.Errorf("no task with id %q", prefix)
	}
	return found, nil
}

func parsePriority(s string) (models.Priority, error) {
	switch p := models.Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return models.PriorityMedium, nil
	case models.PriorityHigh, models.PriorityMedium, models.PriorityLow:
		return p, nil
	default:
		return "", fmt.Errorf("unknown priority %q", s)
	}
}

func splitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}
