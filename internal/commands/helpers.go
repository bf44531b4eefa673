package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tgienger/tick/internal/live"
)

var errNotLoggedIn = errors.New("not logged in, run 'tick login' first")

// snapshotTimeout bounds how long a one-shot command waits for a live query
const snapshotTimeout = 5 * time.Second

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID '%s'", arg)
	}
	return id, nil
}

// snapshot takes the first result of a live query
func snapshot[T any](ctx context.Context, watch func(context.Context) *live.Query[T]) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	var zero T
	q := watch(ctx)
	select {
	case v, ok := <-q.Updates():
		if !ok {
			return zero, errors.New("query stopped before returning a result")
		}
		return v, nil
	case <-ctx.Done():
		return zero, fmt.Errorf("query did not return a result: %w", ctx.Err())
	}
}

// flagOrPrompt returns the flag value, asking on stdin when it was not given
func flagOrPrompt(cmd *cobra.Command, in *bufio.Reader, flag, label string) (string, error) {
	value, err := cmd.Flags().GetString(flag)
	if err != nil {
		return "", err
	}
	if value != "" {
		return value, nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: ", label)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
