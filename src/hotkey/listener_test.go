package hotkey

import (
	"context"
	"sync"
	"testing"
	"time"

	gohook "github.com/robotn/gohook"

	"screen-pds/src/action"
	"screen-pds/src/settings"
)

type recorder struct {
	mu  sync.Mutex
	got []action.Action
}

func (r *recorder) Post(a action.Action) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, a)
	return true
}

func (r *recorder) actions() []action.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]action.Action(nil), r.got...)
}

func code(t *testing.T, name string) uint16 {
	t.Helper()
	codes := codesFor(name)
	if len(codes) == 0 {
		t.Fatalf("no code for %q", name)
	}
	return codes[0]
}

func down(c uint16) gohook.Event {
	return gohook.Event{Kind: gohook.KeyDown, Rawcode: c, Keycode: c}
}

func up(c uint16) gohook.Event {
	return gohook.Event{Kind: gohook.KeyUp, Rawcode: c, Keycode: c}
}

func TestBindingsForDefaults(t *testing.T) {
	bs := BindingsFor(settings.Default())
	want := map[action.Action]string{
		action.New:    "Ctrl+N",
		action.Save:   "Ctrl+S",
		action.Undo:   "Ctrl+Z",
		action.Redo:   "Ctrl+Y",
		action.Cancel: "Ctrl+E",
	}
	if len(bs) != len(want) {
		t.Fatalf("Expected %d bindings, got %d", len(want), len(bs))
	}
	for _, b := range bs {
		if want[b.Action] != b.Combo {
			t.Errorf("%s bound to %q, expected %q", b.Action, b.Combo, want[b.Action])
		}
	}
}

func TestComboPostsAction(t *testing.T) {
	rec := &recorder{}
	l := NewListener(rec)
	if n := l.SetBindings(BindingsFor(settings.Default())); n != 5 {
		t.Fatalf("Expected 5 bindings, got %d", n)
	}

	ctrl, z := code(t, "ctrl"), code(t, "z")
	l.handle(down(ctrl))
	l.handle(down(z))
	l.handle(up(z))
	l.handle(up(ctrl))

	got := rec.actions()
	if len(got) != 1 || got[0] != action.Undo {
		t.Fatalf("Expected [undo], got %v", got)
	}
}

func TestAutoRepeatFiresOnce(t *testing.T) {
	rec := &recorder{}
	l := NewListener(rec)
	l.SetBindings([]Binding{{Action: action.New, Combo: "Ctrl+N"}})

	ctrl, n := code(t, "ctrl"), code(t, "n")
	l.handle(down(ctrl))
	l.handle(down(n))
	l.handle(down(n))
	l.handle(down(n))
	l.handle(up(n))
	l.handle(down(n))

	if got := rec.actions(); len(got) != 2 {
		t.Fatalf("Expected two presses to post twice, got %v", got)
	}
}

func TestKeyWithoutModifierIgnored(t *testing.T) {
	rec := &recorder{}
	l := NewListener(rec)
	l.SetBindings([]Binding{{Action: action.Save, Combo: "Ctrl+S"}})

	l.handle(down(code(t, "s")))
	if got := rec.actions(); len(got) != 0 {
		t.Fatalf("Expected nothing without Ctrl, got %v", got)
	}
}

func TestForeignModifierBlocksCombo(t *testing.T) {
	rec := &recorder{}
	l := NewListener(rec)
	l.SetBindings([]Binding{
		{Action: action.New, Combo: "Ctrl+N"},
		{Action: action.Save, Combo: "Shift+N"},
	})

	l.handle(down(code(t, "ctrl")))
	l.handle(down(code(t, "shift")))
	l.handle(down(code(t, "n")))
	if got := rec.actions(); len(got) != 0 {
		t.Fatalf("Expected Ctrl+Shift+N to match neither binding, got %v", got)
	}
}

func TestRightModifierMatches(t *testing.T) {
	rec := &recorder{}
	l := NewListener(rec)
	l.SetBindings([]Binding{{Action: action.Redo, Combo: "Ctrl+Y"}})

	codes := codesFor("ctrl")
	l.handle(down(codes[len(codes)-1]))
	l.handle(down(code(t, "y")))
	if got := rec.actions(); len(got) != 1 || got[0] != action.Redo {
		t.Fatalf("Expected [redo], got %v", got)
	}
}

func TestSetBindingsReplacesTable(t *testing.T) {
	rec := &recorder{}
	l := NewListener(rec)
	l.SetBindings([]Binding{{Action: action.New, Combo: "Ctrl+N"}})
	l.SetBindings([]Binding{{Action: action.New, Combo: "Alt+M"}})

	ctrl, n := code(t, "ctrl"), code(t, "n")
	l.handle(down(ctrl))
	l.handle(down(n))
	l.handle(up(n))
	l.handle(up(ctrl))
	if got := rec.actions(); len(got) != 0 {
		t.Fatalf("Old binding still active: %v", got)
	}

	alt, m := code(t, "alt"), code(t, "m")
	l.handle(down(alt))
	l.handle(down(m))
	if got := rec.actions(); len(got) != 1 || got[0] != action.New {
		t.Fatalf("Expected [new] from new binding, got %v", got)
	}
}

func TestSetBindingsSkipsUnmappable(t *testing.T) {
	l := NewListener(&recorder{})
	n := l.SetBindings([]Binding{
		{Action: action.New, Combo: "Ctrl+N"},
		{Action: action.Save, Combo: "Ctrl+NoSuchKey"},
	})
	if n != 1 {
		t.Fatalf("Expected 1 usable binding, got %d", n)
	}
}

func TestMouseEventsIgnored(t *testing.T) {
	rec := &recorder{}
	l := NewListener(rec)
	l.SetBindings([]Binding{{Action: action.New, Combo: "Ctrl+N"}})
	l.handle(gohook.Event{Kind: gohook.MouseDown})
	if len(l.pressed) != 0 {
		t.Fatal("Mouse events must not change key state")
	}
}

func TestConsumeStopsOnCancel(t *testing.T) {
	rec := &recorder{}
	l := NewListener(rec)
	l.SetBindings([]Binding{{Action: action.Cancel, Combo: "Ctrl+E"}})

	events := make(chan gohook.Event, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.consume(ctx, events) }()

	events <- down(code(t, "ctrl"))
	events <- down(code(t, "e"))

	deadline := time.After(time.Second)
	for len(rec.actions()) == 0 {
		select {
		case <-deadline:
			t.Fatal("Timed out waiting for cancel action")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("consume did not return after cancel")
	}
}

func TestConsumeReturnsWhenChannelCloses(t *testing.T) {
	l := NewListener(&recorder{})
	events := make(chan gohook.Event)
	close(events)
	if err := l.consume(context.Background(), events); err != nil {
		t.Fatalf("Expected nil on closed channel, got %v", err)
	}
}

func TestRefreshReloadsBindings(t *testing.T) {
	rec := &recorder{}
	l := NewListener(rec)

	var mu sync.Mutex
	combo := "Ctrl+N"
	load := func() []Binding {
		mu.Lock()
		defer mu.Unlock()
		return []Binding{{Action: action.New, Combo: combo}}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Refresh(ctx, load, 10*time.Millisecond)

	mu.Lock()
	combo = "Alt+Q"
	mu.Unlock()

	deadline := time.After(2 * time.Second)
	for {
		l.mu.Lock()
		sig := l.signature
		l.mu.Unlock()
		if sig == "new=Alt+Q" {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("Refresh never picked up new combo, signature %q", sig)
		case <-time.After(5 * time.Millisecond):
		}
	}
}
