package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"screen-pds/src/action"
)

func TestNewRootCmdDefaults(t *testing.T) {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.n != 50 {
		t.Fatalf("Expected default n=50, got %d", opts.n)
	}
	if opts.action != "undo" {
		t.Fatalf("Expected default action=undo, got %q", opts.action)
	}
	if opts.deadline != 5*time.Second {
		t.Fatalf("Expected default deadline=5s, got %v", opts.deadline)
	}
}

func TestNewRootCmdCustomFlags(t *testing.T) {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--n", "3", "--action", "redo", "--deadline", "7s"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.n != 3 || opts.action != "redo" || opts.deadline != 7*time.Second {
		t.Fatalf("Unexpected options %+v", *opts)
	}
}

func TestStressClassifiesResults(t *testing.T) {
	var i int32
	forward := func(ctx context.Context, a action.Action) (bool, error) {
		switch atomic.AddInt32(&i, 1) % 4 {
		case 0:
			return true, nil
		case 1:
			return true, errors.New("busy, please retry")
		case 2:
			return false, nil
		default:
			return true, errors.New("broken pipe")
		}
	}
	c, _ := stress(8, time.Second, action.Undo, forward)
	if c.ok != 2 || c.busy != 2 || c.absent != 2 || c.err != 2 {
		t.Fatalf("Unexpected counts %+v", c)
	}

	var out bytes.Buffer
	report(&out, 8, c, time.Second)
	if !strings.HasPrefix(out.String(), "launched=8 ok=2 busy=2 absent=2 err=2") {
		t.Fatalf("Unexpected report %q", out.String())
	}
}
