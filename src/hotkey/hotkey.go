package hotkey

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	gohook "github.com/robotn/gohook"

	"screen-pds/src/action"
	"screen-pds/src/settings"
)

var ErrHookUnavailable = errors.New("global keyboard hook unavailable")

// Poster receives the action of every recognised combination.
type Poster interface {
	Post(a action.Action) bool
}

// Binding ties a combination such as "Ctrl+N" to an action.
type Binding struct {
	Action action.Action
	Combo  string
}

// BindingsFor converts the configured shortcuts into bindings in action order.
func BindingsFor(s settings.Settings) []Binding {
	shortcuts := s.Shortcuts()
	out := make([]Binding, 0, len(shortcuts))
	for _, a := range action.All {
		if sc, ok := shortcuts[a]; ok {
			out = append(out, Binding{Action: a, Combo: sc.Combo()})
		}
	}
	return out
}

type keyGroup struct {
	name  string
	codes []uint16
}

type combo struct {
	action    action.Action
	text      string
	keys      []keyGroup
	modifiers map[string]bool
}

var modifierNames = []string{"ctrl", "alt", "shift"}

func isModifier(name string) bool {
	for _, m := range modifierNames {
		if m == name {
			return true
		}
	}
	return false
}

// Listener matches key events from the global hook against the current
// binding table. The table can be replaced at any time.
type Listener struct {
	poster Poster

	mu        sync.Mutex
	combos    []combo
	signature string
	pressed   map[uint16]bool
	modCodes  map[string][]uint16
}

func NewListener(p Poster) *Listener {
	l := &Listener{
		poster:   p,
		pressed:  make(map[uint16]bool),
		modCodes: make(map[string][]uint16),
	}
	for _, m := range modifierNames {
		l.modCodes[m] = codesFor(m)
	}
	return l
}

// SetBindings replaces the binding table and returns the number of
// combinations that could be mapped to key codes.
func (l *Listener) SetBindings(bs []Binding) int {
	var combos []combo
	var sig []string
	for _, b := range bs {
		c, ok := buildCombo(b)
		if !ok {
			log.Printf("ERROR: No valid keys in hotkey configuration '%s' for %s", b.Combo, b.Action)
			continue
		}
		combos = append(combos, c)
		sig = append(sig, b.Action.String()+"="+c.text)
	}
	signature := strings.Join(sig, ",")

	l.mu.Lock()
	changed := signature != l.signature
	l.combos = combos
	l.signature = signature
	l.mu.Unlock()

	if changed {
		log.Printf("Hotkey bindings registered: %s", signature)
	}
	return len(combos)
}

func buildCombo(b Binding) (combo, bool) {
	c := combo{action: b.Action, text: b.Combo, modifiers: make(map[string]bool)}
	for _, name := range parseHotkey(b.Combo) {
		codes := codesFor(name)
		if len(codes) == 0 {
			return combo{}, false
		}
		if isModifier(name) {
			c.modifiers[name] = true
		}
		c.keys = append(c.keys, keyGroup{name: name, codes: codes})
	}
	return c, len(c.keys) > 0
}

func (l *Listener) handle(ev gohook.Event) {
	if ev.Kind != gohook.KeyDown && ev.Kind != gohook.KeyUp {
		return
	}
	code := eventCode(ev)

	if ev.Kind == gohook.KeyUp {
		l.mu.Lock()
		delete(l.pressed, code)
		l.mu.Unlock()
		return
	}

	l.mu.Lock()
	if l.pressed[code] {
		// auto-repeat
		l.mu.Unlock()
		return
	}
	l.pressed[code] = true
	var fired []combo
	for _, c := range l.combos {
		if l.matches(c, code) {
			fired = append(fired, c)
		}
	}
	l.mu.Unlock()

	for _, c := range fired {
		log.Printf("Hotkey %s detected for %s", c.text, c.action)
		if l.poster != nil && !l.poster.Post(c.action) {
			log.Printf("Hotkey %s dropped", c.action)
		}
	}
}

// matches reports whether trigger completes c with no foreign modifiers held.
// Caller holds l.mu.
func (l *Listener) matches(c combo, trigger uint16) bool {
	hit := false
	for _, k := range c.keys {
		down := false
		for _, code := range k.codes {
			if l.pressed[code] {
				down = true
			}
			if code == trigger {
				hit = true
			}
		}
		if !down {
			return false
		}
	}
	if !hit {
		return false
	}
	for _, m := range modifierNames {
		if c.modifiers[m] {
			continue
		}
		for _, code := range l.modCodes[m] {
			if l.pressed[code] {
				return false
			}
		}
	}
	return true
}

// Run consumes the global hook until ctx is cancelled or the hook stops.
func (l *Listener) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in hotkey listener: %v", r)
			err = ErrHookUnavailable
		}
	}()

	log.Printf("Starting gohook event loop...")
	evChan := gohook.Start()
	if evChan == nil {
		return ErrHookUnavailable
	}
	defer gohook.End()
	return l.consume(ctx, evChan)
}

func (l *Listener) consume(ctx context.Context, events <-chan gohook.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				log.Printf("Event channel closed")
				return nil
			}
			l.handle(ev)
		}
	}
}

// Refresh reloads the bindings immediately and then every interval so edits
// to the settings file take effect without a restart.
func (l *Listener) Refresh(ctx context.Context, load func() []Binding, every time.Duration) {
	l.SetBindings(load())
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.SetBindings(load())
		}
	}
}

// parseHotkey converts a combo such as "Ctrl+N" to lower-case key names.
func parseHotkey(hotkeyConfig string) []string {
	parts := strings.Split(strings.ToLower(hotkeyConfig), "+")
	var keys []string

	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "ctrl", "control":
			keys = append(keys, "ctrl")
		case "alt":
			keys = append(keys, "alt")
		case "shift":
			keys = append(keys, "shift")
		default:
			keys = append(keys, part)
		}
	}

	return keys
}
