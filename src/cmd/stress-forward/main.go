package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"screen-pds/src/action"
	"screen-pds/src/config"
	"screen-pds/src/singleinstance"
)

type stressOptions struct {
	n        int
	action   string
	deadline time.Duration
}

type counts struct {
	ok, busy, absent, err int32
}

type forwardFunc func(ctx context.Context, a action.Action) (bool, error)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-forward",
		Short:         "Stress test action forwarding to the resident instance",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := action.Parse(opts.action)
			if err != nil {
				return err
			}
			forward := func(ctx context.Context, a action.Action) (bool, error) {
				return singleinstance.Forward(ctx, config.AppName, a)
			}
			c, elapsed := stress(opts.n, opts.deadline, a, forward)
			report(cmd.OutOrStdout(), opts.n, c, elapsed)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().StringVar(&opts.action, "action", "undo", "action each client forwards")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")

	return cmd
}

func stress(n int, deadline time.Duration, a action.Action, forward forwardFunc) (counts, time.Duration) {
	var wg sync.WaitGroup
	var c counts

	start := time.Now()
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), deadline)
			defer cancel()
			delegated, err := forward(ctx, a)
			switch {
			case err != nil && strings.Contains(strings.ToLower(err.Error()), "busy"):
				atomic.AddInt32(&c.busy, 1)
			case err != nil:
				atomic.AddInt32(&c.err, 1)
			case delegated:
				atomic.AddInt32(&c.ok, 1)
			default:
				atomic.AddInt32(&c.absent, 1)
			}
		}()
	}
	wg.Wait()
	return c, time.Since(start)
}

func report(w io.Writer, n int, c counts, elapsed time.Duration) {
	fmt.Fprintf(w, "launched=%d ok=%d busy=%d absent=%d err=%d elapsed=%s\n", n, c.ok, c.busy, c.absent, c.err, elapsed)
}
