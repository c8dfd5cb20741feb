package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"screen-pds/src/action"
	"screen-pds/src/hotkey"
	"screen-pds/src/settings"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"screen-pds", "-settings", "/tmp/s.yaml", "-verbose"},
			out:  []string{"screen-pds", "--settings", "/tmp/s.yaml", "--verbose"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"screen-pds", "-tick=500ms", "-action=new"},
			out:  []string{"screen-pds", "--tick=500ms", "--action=new"},
		},
		{
			name: "Leaves other flags unchanged",
			in:   []string{"screen-pds", "--action", "undo", "-v", "--other"},
			out:  []string{"screen-pds", "--action", "undo", "-v", "--other"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLegacyArgs(tt.in)
			if len(got) != len(tt.out) {
				t.Fatalf("Expected len=%d, got %d", len(tt.out), len(got))
			}
			for i := range got {
				if got[i] != tt.out[i] {
					t.Fatalf("Expected arg[%d]=%q, got %q", i, tt.out[i], got[i])
				}
			}
		})
	}
}

func TestNormalizeLegacyArgsDoesNotMutateInput(t *testing.T) {
	in := []string{"screen-pds", "-verbose"}
	_ = normalizeLegacyArgs(in)
	if in[1] != "-verbose" {
		t.Fatal("Input slice was modified")
	}
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--settings", "/tmp/s.yaml", "--tick", "250ms", "-v", "--action", "new"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.settingsPath != "/tmp/s.yaml" {
		t.Fatalf("Expected settingsPath=/tmp/s.yaml, got %q", opts.settingsPath)
	}
	if opts.tick != 250*time.Millisecond {
		t.Fatalf("Expected tick=250ms, got %s", opts.tick)
	}
	if !opts.verbose {
		t.Fatal("Expected verbose=true")
	}
	if opts.action != "new" {
		t.Fatalf("Expected action=new, got %q", opts.action)
	}
}

func TestRunRejectsUnknownAction(t *testing.T) {
	t.Setenv("SETTINGS_FILE", "")
	err := runWithArgs([]string{"screen-pds", "--action", "explode"})
	if err == nil {
		t.Fatal("Expected an error for an unknown action")
	}
}

type fakeForwarder struct {
	delegated bool
	err       error
	called    bool
	got       action.Action
}

func (f *fakeForwarder) Forward(ctx context.Context, a action.Action) (bool, error) {
	f.called = true
	f.got = a
	return f.delegated, f.err
}

func TestHandleActionWithDelegation_Delegated(t *testing.T) {
	client := &fakeForwarder{delegated: true}
	fallbackCalled := false

	handleActionWithDelegation(action.New, client, func() {
		fallbackCalled = true
	})

	if !client.called || client.got != action.New {
		t.Fatalf("Expected Forward(new), called=%v got=%s", client.called, client.got)
	}
	if fallbackCalled {
		t.Fatal("Did not expect fallback when delegation succeeds")
	}
}

func TestHandleActionWithDelegation_NoResidentFallback(t *testing.T) {
	client := &fakeForwarder{delegated: false}
	fallbackCalled := false

	handleActionWithDelegation(action.Save, client, func() {
		fallbackCalled = true
	})

	if !fallbackCalled {
		t.Fatal("Expected fallback when no resident is delegated")
	}
}

func TestHandleActionWithDelegation_DelegationErrorFallback(t *testing.T) {
	client := &fakeForwarder{err: errors.New("busy")}
	fallbackCalled := false

	handleActionWithDelegation(action.Cancel, client, func() {
		fallbackCalled = true
	})

	if !fallbackCalled {
		t.Fatal("Expected fallback when delegation returns an error")
	}
}

func TestKeepBindingsFreshRefreshesOnPeriod(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var loads atomic.Int32
	load := func() settings.Settings {
		loads.Add(1)
		return settings.Default()
	}
	keepBindingsFresh(ctx, hotkey.NewListener(nil), path, 10*time.Millisecond, load, nil)

	// The watcher is running on path and the file never changes, so every
	// load past the first two (startup and the first Refresh) comes from the
	// timer.
	deadline := time.After(2 * time.Second)
	for loads.Load() < 6 {
		select {
		case <-deadline:
			t.Fatalf("Expected periodic reloads, got %d loads", loads.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestReportStatus(t *testing.T) {
	var buf bytes.Buffer
	reportStatus(&buf, func(string) bool { return false })
	if got := buf.String(); got != "screen-pds is not running\n" {
		t.Fatalf("Unexpected status %q", got)
	}

	buf.Reset()
	var asked string
	reportStatus(&buf, func(name string) bool { asked = name; return true })
	if asked != "screen-pds" {
		t.Fatalf("Expected probe for screen-pds, got %q", asked)
	}
	if !strings.HasPrefix(buf.String(), "screen-pds is running on 127.0.0.1:") {
		t.Fatalf("Unexpected status %q", buf.String())
	}
}

func TestNewRootCmdParsesStatus(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--status"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if !opts.status {
		t.Fatal("Expected status=true")
	}
}
