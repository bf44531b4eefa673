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
)

func newCommentCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "comment [task-id] [text]",
		Short: "Comment on a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: opts.withLogin(func(cmd *cobra.Command, args []string, a *app.App) error {
			task, err := loadTask(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			text := strings.TrimSpace(strings.Join(args[1:], " "))
			if text == "" {
				return errors.New("comment cannot be empty")
			}

			userID := a.Session.UserID()
			c := models.NewComment(task.ID, &userID, a.Session.FullName(), text)
			if err := a.Repo.InsertComment(&c).Wait(); err != nil {
				return fmt.Errorf("failed to add comment: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added comment to task #%d\n", task.ID)
			return nil
		}),
	}
}

func newCommentsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "comments [task-id]",
		Short: "List the comments on a task, newest first",
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
			printComments(cmd, comments)
			return nil
		}),
	}
}

func printComments(cmd *cobra.Command, comments []models.Comment) {
	out := cmd.OutOrStdout()
	if len(comments) == 0 {
		fmt.Fprintln(out, "No comments yet")
		return
	}
	for _, c := range comments {
		fmt.Fprintf(out, "%s  %s\n    %s\n", c.FormattedTime(), c.Author(), c.Text)
	}
}
