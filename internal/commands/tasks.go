package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tgienger/tick/internal/app"
	"github.com/tgienger/tick/internal/live"
	"github.com/tgienger/tick/internal/models"
	"github.com/tgienger/tick/internal/repository"
)

func newAddCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a new task",
		Args:  cobra.MinimumNArgs(1),
		RunE: opts.withLogin(func(cmd *cobra.Command, args []string, a *app.App) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return errors.New("title cannot be empty")
			}
			desc, _ := cmd.Flags().GetString("desc")
			p, _ := cmd.Flags().GetString("priority")
			priority, err := models.ParsePriority(p)
			if err != nil {
				return err
			}

			task := models.NewTask(title, strings.TrimSpace(desc), priority)
			if err := a.Repo.InsertTask(&task).Wait(); err != nil {
				return fmt.Errorf("failed to add task: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added task #%d: %s (%s)\n", task.ID, task.Title, task.PriorityText())
			return nil
		}),
	}
	cmd.Flags().StringP("desc", "d", "", "description")
	cmd.Flags().StringP("priority", "p", "medium", "priority: low, medium, high")
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks",
		Long:    "List tasks in the saved order (priority by default). --alpha or --priority override it and are remembered.",
		Args:    cobra.NoArgs,
		RunE: opts.withLogin(func(cmd *cobra.Command, _ []string, a *app.App) error {
			ctx := cmd.Context()
			sort := a.Repo.TaskSort(ctx)
			alpha, _ := cmd.Flags().GetBool("alpha")
			byPriority, _ := cmd.Flags().GetBool("priority")
			switch {
			case alpha:
				sort = repository.SortAlphabetical
			case byPriority:
				sort = repository.SortPriority
			}
			if alpha || byPriority {
				a.Repo.SetTaskSort(sort)
			}

			tasks, err := snapshot(ctx, func(ctx context.Context) *live.Query[[]models.Task] {
				return a.Repo.Tasks(ctx, sort)
			})
			if err != nil {
				return fmt.Errorf("error fetching tasks: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks found. Use 'tick add \"task title\"' to create your first task.")
				return nil
			}

			fmt.Fprintf(out, "%-5s %-4s %-8s %s\n", "ID", "DONE", "PRIORITY", "TITLE")
			fmt.Fprintln(out, strings.Repeat("-", 60))
			for _, t := range tasks {
				done := "[ ]"
				if t.Completed {
					done = "[x]"
				}
				fmt.Fprintf(out, "%-5d %-4s %-8s %s\n", t.ID, done, t.PriorityText(), truncate(t.Title, 45))
			}
			return nil
		}),
	}
	cmd.Flags().BoolP("alpha", "a", false, "sort by title")
	cmd.Flags().Bool("priority", false, "sort by priority")
	cmd.MarkFlagsMutuallyExclusive("alpha", "priority")
	return cmd
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [task-id]",
		Short: "Show a task and its comments",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withLogin(func(cmd *cobra.Command, args []string, a *app.App) error {
			task, err := loadTask(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			comments, err := snapshot(cmd.Context(), func(ctx context.Context) *live.Query[[]models.Comment] {
				return a.Repo.CommentsForTask(ctx, task.ID)
			})
			if err != nil {
				return fmt.Errorf("error fetching comments: %w", err)
			}

			out := cmd.OutOrStdout()
			status := "open"
			if task.Completed {
				status = "completed"
			}
			fmt.Fprintf(out, "#%d %s\n", task.ID, task.Title)
			fmt.Fprintf(out, "Priority: %s  Status: %s\n", task.PriorityText(), status)
			if task.Description != "" {
				fmt.Fprintf(out, "\n%s\n", task.Description)
			}
			fmt.Fprintf(out, "\nComments (%d)\n", len(comments))
			printComments(cmd, comments)
			return nil
		}),
	}
}

// newDoneCmd builds "done" or "undone"
func newDoneCmd(opts *rootOptions, completed bool) *cobra.Command {
	use, short, verb := "done [task-id]", "Mark a task as completed", "done"
	if !completed {
		use, short, verb = "undone [task-id]", "Mark a completed task as open again", "open"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: opts.withLogin(func(cmd *cobra.Command, args []string, a *app.App) error {
			task, err := loadTask(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}

			task.Completed = completed
			if err := a.Repo.UpdateTask(*task).Wait(); err != nil {
				return fmt.Errorf("failed to update task: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked task #%d as %s: %s\n", task.ID, verb, task.Title)
			return nil
		}),
	}
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [task-id]",
		Short: "Edit a task's title, description or priority",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withLogin(func(cmd *cobra.Command, args []string, a *app.App) error {
			task, err := loadTask(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("title") {
				title, _ := flags.GetString("title")
				title = strings.TrimSpace(title)
				if title == "" {
					return errors.New("title cannot be empty")
				}
				task.Title = title
			}
			if flags.Changed("desc") {
				desc, _ := flags.GetString("desc")
				task.Description = strings.TrimSpace(desc)
			}
			if flags.Changed("priority") {
				p, _ := flags.GetString("priority")
				if task.Priority, err = models.ParsePriority(p); err != nil {
					return err
				}
			}

			if err := a.Repo.UpdateTask(*task).Wait(); err != nil {
				return fmt.Errorf("failed to update task: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task #%d: %s (%s)\n", task.ID, task.Title, task.PriorityText())
			return nil
		}),
	}
	cmd.Flags().StringP("title", "t", "", "new title")
	cmd.Flags().StringP("desc", "d", "", "new description")
	cmd.Flags().StringP("priority", "p", "", "new priority: low, medium, high")
	return cmd
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm [task-id]",
		Aliases: []string{"delete"},
		Short:   "Delete a task and its comments",
		Args:    cobra.ExactArgs(1),
		RunE: opts.withLogin(func(cmd *cobra.Command, args []string, a *app.App) error {
			task, err := loadTask(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			if err := a.Repo.DeleteTask(*task).Wait(); err != nil {
				return fmt.Errorf("failed to delete task: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%d: %s\n", task.ID, task.Title)
			return nil
		}),
	}
}

func newClearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every completed task",
		Args:  cobra.NoArgs,
		RunE: opts.withLogin(func(cmd *cobra.Command, _ []string, a *app.App) error {
			if err := a.Repo.DeleteCompletedTasks().Wait(); err != nil {
				return fmt.Errorf("failed to clear completed tasks: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared completed tasks")
			return nil
		}),
	}
}

func loadTask(ctx context.Context, a *app.App, arg string) (*models.Task, error) {
	id, err := parseID(arg)
	if err != nil {
		return nil, err
	}
	task, err := a.Repo.Task(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("task #%d not found", id)
	}
	return task, err
}
